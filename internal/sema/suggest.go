// # internal/sema/suggest.go
package sema

// editDistance is the Levenshtein distance between a and b, computed over a
// single rolling row.
func editDistance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, min(cur[j-1]+1, prev[j-1]+cost))
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// closest returns the in-scope symbol nearest to name within the edit
// distance threshold, or nil. Ties go to the earlier declaration.
func closest(name string, candidates []*Symbol, threshold int) *Symbol {
	var best *Symbol
	bestDist := threshold + 1
	for _, c := range candidates {
		if c.Name == name {
			continue
		}
		d := editDistance(name, c.Name)
		if d < bestDist || (d == bestDist && best != nil && c.Order < best.Order) {
			best = c
			bestDist = d
		}
	}
	if bestDist > threshold {
		return nil
	}
	return best
}

// closestName is closest over plain strings, for field and attribute names.
func closestName(name string, candidates []string, threshold int) string {
	best := ""
	bestDist := threshold + 1
	for _, c := range candidates {
		if c == name {
			continue
		}
		if d := editDistance(name, c); d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

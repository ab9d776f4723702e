// # internal/reactive/graph.go
package reactive

import (
	"sort"

	"jounce/internal/sema"
)

// Graph is the reactive dependency graph: nodes are signal/computed symbols
// keyed by symbol id, edges point from a computed to the reactive values its
// defining expression reads. Signals have no outgoing edges.
type Graph struct {
	nodes map[int]*sema.Symbol
	reads map[int][]int
}

func newGraph() *Graph {
	return &Graph{nodes: map[int]*sema.Symbol{}, reads: map[int][]int{}}
}

func (g *Graph) addNode(sym *sema.Symbol) { g.nodes[sym.ID] = sym }

func (g *Graph) addRead(from, to int) {
	for _, id := range g.reads[from] {
		if id == to {
			return
		}
	}
	g.reads[from] = append(g.reads[from], to)
}

// Node returns the symbol for an id, or nil.
func (g *Graph) Node(id int) *sema.Symbol { return g.nodes[id] }

// DetectCycles finds every dependency cycle among computed definitions via
// depth-first visitation with an on-stack marker. Each cycle is reported in
// dependency order starting from its first-declared member.
func (g *Graph) DetectCycles() [][]*sema.Symbol {
	ids := make([]int, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var cycles [][]*sema.Symbol
	visited := make(map[int]bool)
	onStack := make(map[int]bool)

	for _, id := range ids {
		if !visited[id] {
			g.findCycles(id, visited, onStack, nil, &cycles)
		}
	}
	return cycles
}

func (g *Graph) findCycles(curr int, visited, onStack map[int]bool, path []int, cycles *[][]*sema.Symbol) {
	visited[curr] = true
	onStack[curr] = true
	path = append(path, curr)

	for _, next := range g.reads[curr] {
		if onStack[next] {
			start := -1
			for i, id := range path {
				if id == next {
					start = i
					break
				}
			}
			if start != -1 {
				cycle := make([]*sema.Symbol, 0, len(path)-start)
				for _, id := range path[start:] {
					cycle = append(cycle, g.nodes[id])
				}
				*cycles = append(*cycles, cycle)
			}
		} else if !visited[next] {
			g.findCycles(next, visited, onStack, path, cycles)
		}
	}

	onStack[curr] = false
}

// closure expands a set of directly-read symbols to everything reachable
// through computed definitions, returned in symbol-id order.
func (g *Graph) closure(direct []*sema.Symbol) []*sema.Symbol {
	seen := map[int]bool{}
	queue := make([]int, 0, len(direct))
	for _, sym := range direct {
		if !seen[sym.ID] {
			seen[sym.ID] = true
			queue = append(queue, sym.ID)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range g.reads[id] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]*sema.Symbol, 0, len(ids))
	for _, id := range ids {
		if sym := g.nodes[id]; sym != nil {
			out = append(out, sym)
		}
	}
	return out
}

// # internal/cache/cache_test.go
package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestCache_HitAfterCompile(t *testing.T) {
	c := New[string](4)
	compiles := 0
	compile := func() (string, error) {
		compiles++
		return "out", nil
	}

	v, err := c.GetOrCompile("fp1", compile)
	if err != nil || v != "out" {
		t.Fatalf("Unexpected result: %q, %v", v, err)
	}
	v, err = c.GetOrCompile("fp1", compile)
	if err != nil || v != "out" {
		t.Fatalf("Unexpected cached result: %q, %v", v, err)
	}
	if compiles != 1 {
		t.Errorf("Expected 1 compilation, got %d", compiles)
	}

	st := c.Stats()
	if st.Hits != 1 || st.Misses != 1 {
		t.Errorf("Expected 1 hit and 1 miss, got %d/%d", st.Hits, st.Misses)
	}
}

func TestCache_SingleFlight(t *testing.T) {
	c := New[string](4)
	var compiles atomic.Int64
	started := make(chan struct{})
	release := make(chan struct{})

	compile := func() (string, error) {
		compiles.Add(1)
		close(started)
		<-release
		return "out", nil
	}

	var wg sync.WaitGroup
	results := make([]string, 8)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = c.GetOrCompile("fp", compile)
	}()
	<-started

	for i := 1; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = c.GetOrCompile("fp", func() (string, error) {
				compiles.Add(1)
				return "out", nil
			})
		}(i)
	}

	// Give the waiters time to attach to the in-flight compilation before
	// it completes.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := compiles.Load(); n != 1 {
		t.Errorf("Expected a single compilation, got %d", n)
	}
	for i, r := range results {
		if r != "out" {
			t.Errorf("Caller %d got %q", i, r)
		}
	}
}

func TestCache_FailureNotCached(t *testing.T) {
	c := New[string](4)
	boom := errors.New("boom")
	calls := 0

	_, err := c.GetOrCompile("fp", func() (string, error) {
		calls++
		return "", boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected compile error, got %v", err)
	}
	if c.Len() != 0 {
		t.Error("Failed compilation must not be cached")
	}

	v, err := c.GetOrCompile("fp", func() (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil || v != "ok" {
		t.Fatalf("Expected recompile to succeed: %q, %v", v, err)
	}
	if calls != 2 {
		t.Errorf("Expected 2 compile attempts, got %d", calls)
	}
}

func TestCache_LRUEviction(t *testing.T) {
	c := New[int](2)
	put := func(fp string, v int) {
		if _, err := c.GetOrCompile(fp, func() (int, error) { return v, nil }); err != nil {
			t.Fatal(err)
		}
	}

	put("a", 1)
	put("b", 2)
	// Touch a so b becomes the eviction candidate.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("Expected a to be cached")
	}
	put("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("Expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("Expected a to survive eviction")
	}
	if c.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", c.Len())
	}
	if st := c.Stats(); st.Evictions != 1 {
		t.Errorf("Expected 1 eviction, got %d", st.Evictions)
	}
}

func TestCache_Invalidate(t *testing.T) {
	c := New[string](4)
	calls := 0
	compile := func() (string, error) {
		calls++
		return "out", nil
	}

	_, _ = c.GetOrCompile("fp", compile)
	c.Invalidate("fp")
	_, _ = c.GetOrCompile("fp", compile)

	if calls != 2 {
		t.Errorf("Expected recompilation after invalidation, got %d calls", calls)
	}
	if st := c.Stats(); st.Invalidations != 1 {
		t.Errorf("Expected 1 invalidation, got %d", st.Invalidations)
	}
}

func TestCache_PurgeAndPut(t *testing.T) {
	c := New[string](4)
	c.Put("fp", "warm")
	if v, ok := c.Get("fp"); !ok || v != "warm" {
		t.Fatalf("Expected warmed entry, got %q/%v", v, ok)
	}
	c.Purge()
	if c.Len() != 0 {
		t.Error("Expected empty cache after purge")
	}
}

func TestStats_HitRate(t *testing.T) {
	if r := (Stats{}).HitRate(); r != 0 {
		t.Errorf("Empty stats must report 0, got %f", r)
	}
	if r := (Stats{Hits: 3, Misses: 1}).HitRate(); r != 0.75 {
		t.Errorf("Expected 0.75, got %f", r)
	}
}

func TestCache_CapacityFloor(t *testing.T) {
	c := New[int](0)
	_, _ = c.GetOrCompile("a", func() (int, error) { return 1, nil })
	_, _ = c.GetOrCompile("b", func() (int, error) { return 2, nil })
	if c.Len() != 1 {
		t.Errorf("Capacity below 1 is clamped to 1, got %d entries", c.Len())
	}
}

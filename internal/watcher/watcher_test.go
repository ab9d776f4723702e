// # internal/watcher/watcher_test.go
package watcher

import (
	"sort"
	"testing"
	"time"
)

func newTestWatcher(t *testing.T, opts Options, onChange func([]string)) *Watcher {
	t.Helper()
	if onChange == nil {
		onChange = func([]string) {}
	}
	w, err := New(opts, onChange)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestRelevant_SourceFilter(t *testing.T) {
	w := newTestWatcher(t, Options{
		ExcludeDirs:  []string{"**/node_modules", "**/dist"},
		ExcludeFiles: []string{"*_gen.jnc"},
	}, nil)

	cases := []struct {
		path string
		want bool
	}{
		{"src/app.jnc", true},
		{"src/app.go", false},
		{"src/notes.txt", false},
		{"src/widgets_gen.jnc", false},
		{"proj/node_modules/pkg/index.jnc", false},
		{"proj/dist/app.jnc", false},
	}
	for _, c := range cases {
		if got := w.relevant(c.path); got != c.want {
			t.Errorf("relevant(%q): expected %v, got %v", c.path, c.want, got)
		}
	}
}

func TestExcludedDir(t *testing.T) {
	w := newTestWatcher(t, Options{ExcludeDirs: []string{"**/node_modules", ".git"}}, nil)

	if !w.excludedDir("proj/node_modules") {
		t.Error("Expected node_modules to be excluded")
	}
	if !w.excludedDir("proj/.git") {
		t.Error("Expected .git to be excluded by base name")
	}
	if w.excludedDir("proj/src") {
		t.Error("Expected src to be watched")
	}
}

func TestScheduleChange_DebounceBatches(t *testing.T) {
	batches := make(chan []string, 4)
	w := newTestWatcher(t, Options{Debounce: 10 * time.Millisecond}, func(paths []string) {
		batches <- paths
	})

	w.scheduleChange("a.jnc")
	w.scheduleChange("b.jnc")
	w.scheduleChange("a.jnc") // duplicate collapses

	select {
	case got := <-batches:
		sort.Strings(got)
		if len(got) != 2 || got[0] != "a.jnc" || got[1] != "b.jnc" {
			t.Errorf("Expected batch [a.jnc b.jnc], got %v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for the debounced batch")
	}

	select {
	case got := <-batches:
		t.Errorf("Unexpected second batch: %v", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestScheduleChange_ResetsTimer(t *testing.T) {
	batches := make(chan []string, 4)
	w := newTestWatcher(t, Options{Debounce: 40 * time.Millisecond}, func(paths []string) {
		batches <- paths
	})

	w.scheduleChange("a.jnc")
	time.Sleep(20 * time.Millisecond)
	w.scheduleChange("b.jnc") // restarts the window, so one batch carries both

	select {
	case got := <-batches:
		if len(got) != 2 {
			t.Errorf("Expected both paths in one batch, got %v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for the batch")
	}
}

func TestFlush_ThrottledChangesStillDeliver(t *testing.T) {
	batches := make(chan []string, 4)
	w := newTestWatcher(t, Options{
		Debounce:          5 * time.Millisecond,
		RebuildsPerSecond: 50,
		RebuildBurst:      1,
	}, func(paths []string) {
		batches <- paths
	})

	w.scheduleChange("a.jnc")
	select {
	case <-batches:
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for the first batch")
	}

	// The second flush exceeds the burst and must wait, not drop.
	w.scheduleChange("b.jnc")
	select {
	case got := <-batches:
		if len(got) != 1 || got[0] != "b.jnc" {
			t.Errorf("Expected throttled batch [b.jnc], got %v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Throttled batch was dropped")
	}
}

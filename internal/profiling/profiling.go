package profiling

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Lightweight per-frame CPU profiler plus monotonic counters.

var (
	mu          sync.Mutex
	frameTotals = make(map[string]time.Duration)
	counters    = make(map[string]int64)
)

// Track returns a stop function that records the elapsed time under the given name.
// Usage: defer profiling.Track("subsystem.Operation")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		frameTotals[name] += d
		mu.Unlock()
	}
}

// ResetFrame clears current per-frame totals. Call at the start of each frame.
// Counters are not affected.
func ResetFrame() {
	mu.Lock()
	for k := range frameTotals {
		delete(frameTotals, k)
	}
	mu.Unlock()
}

// Snapshot returns a copy of current per-frame totals.
func Snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]time.Duration, len(frameTotals))
	for k, v := range frameTotals {
		out[k] = v
	}
	return out
}

// SumWithPrefix totals every tracked duration whose name starts with prefix.
func SumWithPrefix(prefix string) time.Duration {
	mu.Lock()
	defer mu.Unlock()
	var total time.Duration
	for k, v := range frameTotals {
		if strings.HasPrefix(k, prefix) {
			total += v
		}
	}
	return total
}

// Add increments a named counter, e.g. profiling.Add("meshing.ChunkRebuilds", 1).
func Add(name string, delta int64) {
	mu.Lock()
	counters[name] += delta
	mu.Unlock()
}

// Counter returns the current value of a named counter.
func Counter(name string) int64 {
	mu.Lock()
	defer mu.Unlock()
	return counters[name]
}

// Counters returns a copy of all counters.
func Counters() map[string]int64 {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]int64, len(counters))
	for k, v := range counters {
		out[k] = v
	}
	return out
}

// TopN formats top N durations from the current frame totals.
// Example: "meshing.RebuildChunk:4.2ms, culling.New:0.1ms"
func TopN(n int) string {
	ss := Snapshot()
	type pair struct {
		name string
		dur  time.Duration
	}
	list := make([]pair, 0, len(ss))
	for k, v := range ss {
		list = append(list, pair{name: k, dur: v})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].dur == list[j].dur {
			return list[i].name < list[j].name
		}
		return list[i].dur > list[j].dur
	})
	if n > len(list) {
		n = len(list)
	}
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		parts = append(parts, list[i].name+":"+formatMs(list[i].dur))
	}
	return strings.Join(parts, ", ")
}

func formatMs(d time.Duration) string {
	ms := float64(d.Microseconds()) / 1000.0
	s := fmt.Sprintf("%.1f", ms)
	return strings.TrimSuffix(s, ".0") + "ms"
}

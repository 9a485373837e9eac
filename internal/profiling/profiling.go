// Package profiling keeps per-frame CPU timers and event counters.
package profiling

import (
	"cmp"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"
)

var (
	mu     sync.Mutex
	timers = make(map[string]time.Duration)
	counts = make(map[string]int)
)

// Track returns a stop function that records the elapsed time under name.
// Usage: defer profiling.Track("sprite.Draw")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		timers[name] += d
		mu.Unlock()
	}
}

// Count adds n to the named counter for the current frame.
func Count(name string, n int) {
	mu.Lock()
	counts[name] += n
	mu.Unlock()
}

// ResetFrame clears timers and counters. Call at the start of each frame.
func ResetFrame() {
	mu.Lock()
	clear(timers)
	clear(counts)
	mu.Unlock()
}

// Snapshot returns a copy of the current frame's timers.
func Snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	return maps.Clone(timers)
}

// Counts returns a copy of the current frame's counters.
func Counts() map[string]int {
	mu.Lock()
	defer mu.Unlock()
	return maps.Clone(counts)
}

// TopN formats the n slowest timers of the current frame, slowest first.
// Example: "renderer.Render:4.2ms, sprite.Draw:0.3ms"
func TopN(n int) string {
	ss := Snapshot()
	names := slices.Collect(maps.Keys(ss))
	slices.SortFunc(names, func(a, b string) int {
		return cmp.Or(cmp.Compare(ss[b], ss[a]), strings.Compare(a, b))
	})
	n = min(max(n, 0), len(names))

	parts := make([]string, 0, n)
	for _, name := range names[:n] {
		parts = append(parts, fmt.Sprintf("%s:%.1fms", name, float64(ss[name].Microseconds())/1000))
	}
	return strings.Join(parts, ", ")
}

// Frame is a point-in-time copy of the current frame's measurements.
type Frame struct {
	Timers map[string]time.Duration
	Counts map[string]int
}

// Current copies the timers and counters recorded since the last ResetFrame.
func Current() Frame {
	mu.Lock()
	defer mu.Unlock()
	return Frame{Timers: maps.Clone(timers), Counts: maps.Clone(counts)}
}

// LogValue renders counters as attributes and timers as milliseconds, both
// in name order.
func (f Frame) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(f.Counts)+len(f.Timers))
	for _, name := range slices.Sorted(maps.Keys(f.Counts)) {
		attrs = append(attrs, slog.Int(name, f.Counts[name]))
	}
	for _, name := range slices.Sorted(maps.Keys(f.Timers)) {
		attrs = append(attrs, slog.Float64(name+".ms", float64(f.Timers[name].Microseconds())/1000))
	}
	return slog.GroupValue(attrs...)
}

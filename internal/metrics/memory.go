package metrics

import "sync"

// MemorySink accumulates every recorded Point in memory; the test harness
// (spec.md §9) uses it in place of a real telemetry transport.
type MemorySink struct {
	mu     sync.Mutex
	points []Point
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// RecordPoint appends p.
func (m *MemorySink) RecordPoint(p Point) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.points = append(m.points, p)
}

// Points returns a copy of every point recorded so far.
func (m *MemorySink) Points() []Point {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Point, len(m.points))
	copy(out, m.points)
	return out
}

// Last returns the most recently recorded point named name, and whether
// one was found.
func (m *MemorySink) Last(name string) (Point, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.points) - 1; i >= 0; i-- {
		if m.points[i].Name == name {
			return m.points[i], true
		}
	}
	return Point{}, false
}

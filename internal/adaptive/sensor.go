// Package adaptive implements the online job-duration sensor and the
// gradient-ascent parallelism controller that tunes an onnxengine.Engine's
// capacity against observed throughput.
package adaptive

import (
	"sort"
	"sync"
	"time"
)

// Token is an opaque, totally ordered identifier for one sensor
// observation; callers typically use a monotonically increasing counter.
type Token uint64

type interval struct {
	start, end time.Time
}

// Sensor records (start, end) pairs keyed by token and answers windowed
// throughput/parallelism queries. Safe for concurrent use.
type Sensor struct {
	mu   sync.Mutex
	data map[Token]interval
}

// NewSensor returns an empty sensor.
func NewSensor() *Sensor {
	return &Sensor{data: make(map[Token]interval)}
}

// Start records the beginning of a call under token.
func (s *Sensor) Start(tok Token, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[tok] = interval{start: at}
}

// End records the completion of a call under token. Calling End without a
// matching Start is a no-op.
func (s *Sensor) End(tok Token, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	iv, ok := s.data[tok]
	if !ok {
		return
	}
	iv.end = at
	s.data[tok] = iv
}

// Prune removes pairs whose end lies strictly before `before`. Pairs still
// in flight (zero end time) are never pruned.
func (s *Sensor) Prune(before time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for tok, iv := range s.data {
		if !iv.end.IsZero() && iv.end.Before(before) {
			delete(s.data, tok)
		}
	}
}

// Summary is the windowed statistics returned by Summarize.
type Summary struct {
	AvgDuration     time.Duration
	Throughput      float64 // completions per second
	BoxedThroughput float64 // fully-enclosed completions per second
	AvgParallelism  float64
}

// Summarize computes statistics over [start, end]. AvgDuration and
// BoxedThroughput only consider pairs fully enclosed in the window;
// Throughput counts any end event landing inside the window regardless of
// where its start fell; AvgParallelism is the time-weighted average
// concurrency via a sweep line over start/end events clipped to the
// window.
func (s *Sensor) Summarize(start, end time.Time) Summary {
	s.mu.Lock()
	snapshot := make([]interval, 0, len(s.data))
	for _, iv := range s.data {
		snapshot = append(snapshot, iv)
	}
	s.mu.Unlock()

	windowSecs := end.Sub(start).Seconds()
	if windowSecs <= 0 {
		return Summary{}
	}

	var (
		enclosedCount int
		enclosedDur   time.Duration
		endsInWindow  int
	)
	for _, iv := range snapshot {
		if iv.end.IsZero() {
			continue
		}
		if !iv.end.Before(start) && !iv.end.After(end) {
			endsInWindow++
		}
		if !iv.start.Before(start) && !iv.end.After(end) {
			enclosedCount++
			enclosedDur += iv.end.Sub(iv.start)
		}
	}

	summary := Summary{
		Throughput:      float64(endsInWindow) / windowSecs,
		BoxedThroughput: float64(enclosedCount) / windowSecs,
	}
	if enclosedCount > 0 {
		summary.AvgDuration = enclosedDur / time.Duration(enclosedCount)
	}
	summary.AvgParallelism = avgParallelism(snapshot, start, end)
	return summary
}

// avgParallelism sweeps +1/-1 events clipped to [start, end] and returns
// the time-weighted average concurrent-job count.
func avgParallelism(snapshot []interval, start, end time.Time) float64 {
	type event struct {
		at    time.Time
		delta int
	}
	events := make([]event, 0, 2*len(snapshot))
	for _, iv := range snapshot {
		s0 := iv.start
		if s0.Before(start) {
			s0 = start
		}
		e0 := iv.end
		if e0.IsZero() || e0.After(end) {
			e0 = end
		}
		if e0.Before(s0) {
			continue
		}
		events = append(events, event{at: s0, delta: 1}, event{at: e0, delta: -1})
	}
	if len(events) == 0 {
		return 0
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].at.Equal(events[j].at) {
			return events[i].delta < events[j].delta // process ends before starts at same instant
		}
		return events[i].at.Before(events[j].at)
	})

	var (
		weighted float64
		last     = start
		count    int
	)
	for _, e := range events {
		weighted += float64(count) * e.at.Sub(last).Seconds()
		last = e.at
		count += e.delta
	}
	weighted += float64(count) * end.Sub(last).Seconds()

	total := end.Sub(start).Seconds()
	if total <= 0 {
		return 0
	}
	return weighted / total
}

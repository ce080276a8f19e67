// Package metrics implements the spec's dependency-injected metric sink
// (spec.md §9 "Global mutable state"): rather than a process-wide static
// recorder, every component that emits metrics takes a Sink capability and
// the caller decides what backs it (Prometheus, an in-memory slice for
// tests, or nothing at all).
package metrics

import "time"

// Point is one observation: a timestamped name/value pair with tags, per
// spec.md §3 "Metric point".
type Point struct {
	Time  time.Time
	Name  string
	Value float64
	Tags  map[string]string
}

// Sink receives metric points. Implementations must be safe for concurrent
// use; spec.md §5 models the reference recorder as a single-producer/
// multi-consumer channel that drops oldest on overflow, so callers should
// not assume RecordPoint blocks or that delivery is guaranteed.
type Sink interface {
	RecordPoint(p Point)
}

// Metric name constants from spec.md §6.
const (
	InferenceDuration       = "speedreader.inference.duration"
	InferenceParallelism    = "speedreader.inference.parallelism"
	InferenceMaxParallel    = "speedreader.inference.max_parallelism"
	InferenceCounter        = "speedreader.inference.counter"
	ProcessMemoryWorkingSet = "process.memory.working_set_bytes"
	ProcessCPUUsageCores    = "process.cpu.usage_cores"
)

// Record is a convenience wrapper that builds a Point from the current
// time and records it on sink, tolerating a nil sink so every call site
// can pass an optional sink without a nil check.
func Record(sink Sink, name string, value float64, tags map[string]string) {
	if sink == nil {
		return
	}
	sink.RecordPoint(Point{Time: time.Now(), Name: name, Value: value, Tags: tags})
}

// NopSink discards every point. It is the zero-configuration default.
type NopSink struct{}

// RecordPoint implements Sink by discarding p.
func (NopSink) RecordPoint(Point) {}

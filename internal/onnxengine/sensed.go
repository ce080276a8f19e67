package onnxengine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/MeKo-Tech/pogo/internal/adaptive"
	"github.com/MeKo-Tech/pogo/internal/metrics"
)

// SensedKernel wraps an Engine and records each Run call's (start, end)
// pair into an adaptive.Sensor, so a Controller can observe real inference
// timing (spec.md C6) without the detector/recognizer stages knowing the
// controller exists. Capacity control (Increment/DecrementParallelism)
// passes straight through to the wrapped engine. If a metrics.Sink is
// attached, every call also emits speedreader.inference.duration and
// speedreader.inference.counter (spec.md §6); a nil sink is a silent
// no-op, so metrics are opt-in.
type SensedKernel struct {
	Engine
	sensor *adaptive.Sensor
	sink   metrics.Sink
	tags   map[string]string
	next   atomic.Uint64
	count  atomic.Uint64
}

// NewSensedKernel wraps inner, recording every call onto sensor.
func NewSensedKernel(inner Engine, sensor *adaptive.Sensor) *SensedKernel {
	return &SensedKernel{Engine: inner, sensor: sensor, sink: metrics.NopSink{}}
}

// WithMetrics attaches sink to the kernel, tagging every emitted point
// with tags (e.g. {"stage": "detector"}). Returns k for chaining.
func (k *SensedKernel) WithMetrics(sink metrics.Sink, tags map[string]string) *SensedKernel {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	k.sink = sink
	k.tags = tags
	return k
}

// Run records the call's (start, end) span before delegating to the
// wrapped engine, regardless of whether it errors.
func (k *SensedKernel) Run(ctx context.Context, input Tensor) (Tensor, error) {
	tok := adaptive.Token(k.next.Add(1))
	start := time.Now()
	k.sensor.Start(tok, start)
	out, err := k.Engine.Run(ctx, input)
	end := time.Now()
	k.sensor.End(tok, end)

	metrics.Record(k.sink, metrics.InferenceDuration, float64(end.Sub(start).Milliseconds()), k.tags)
	metrics.Record(k.sink, metrics.InferenceCounter, float64(k.count.Add(1)), k.tags)
	return out, err
}

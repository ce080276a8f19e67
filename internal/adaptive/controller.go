package adaptive

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/MeKo-Tech/pogo/internal/metrics"
)

// Engine is the subset of onnxengine.Engine the controller manipulates;
// declared locally to avoid an import cycle with the engine package.
type Engine interface {
	CurrentMaxCapacity() int
	IncrementParallelism()
	DecrementParallelism(ctx context.Context) error
}

type action int

const (
	actionNone action = iota
	actionIncrease
	actionDecrease
)

// Controller runs a gradient-ascent loop against one Engine, nudging its
// parallelism toward the capacity that maximizes boxed throughput.
type Controller struct {
	engine               Engine
	sensor               *Sensor
	oscillationThreshold int
	sink                 metrics.Sink
	tags                 map[string]string

	lastThroughput float64
	lastAction     action
	oscillations   int
	firstObserved  bool

	isOscillating atomic.Bool
}

// NewController builds a controller over engine, sampling sensor.
func NewController(engine Engine, sensor *Sensor, oscillationThreshold int) *Controller {
	if oscillationThreshold <= 0 {
		oscillationThreshold = 3
	}
	return &Controller{engine: engine, sensor: sensor, oscillationThreshold: oscillationThreshold, sink: metrics.NopSink{}}
}

// WithMetrics attaches a metrics.Sink that receives
// speedreader.inference.parallelism and .max_parallelism after every tick
// (spec.md §6), tagged with tags. Returns c for chaining.
func (c *Controller) WithMetrics(sink metrics.Sink, tags map[string]string) *Controller {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	c.sink = sink
	c.tags = tags
	return c
}

// IsOscillating reports whether the controller has flipped direction more
// than its configured threshold.
func (c *Controller) IsOscillating() bool { return c.isOscillating.Load() }

// Run executes the tuning loop until ctx is cancelled.
func (c *Controller) Run(ctx context.Context) {
	for {
		if err := c.tick(ctx); err != nil {
			return
		}
	}
}

// tick performs one sample-wait-decide cycle; it is a separate (unexported)
// method so package tests can drive a single cycle without running Run's loop.
func (c *Controller) tick(ctx context.Context) error {
	t0 := time.Now()
	s := c.sensor.Summarize(t0, time.Now())

	waitStep := 20 * time.Millisecond
	if s.AvgDuration > 0 {
		waitStep = s.AvgDuration
	}
	target := t0.Add(8 * waitStep)
	if s.AvgDuration == 0 {
		target = t0.Add(waitStep)
	}

	for {
		now := time.Now()
		if !now.Before(target) {
			s = c.sensor.Summarize(t0, now)
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitStep):
		}
		s = c.sensor.Summarize(t0, time.Now())
		if s.AvgDuration > 0 {
			waitStep = s.AvgDuration
			target = t0.Add(8 * s.AvgDuration)
		}
	}

	c.decide(ctx, s)
	now := time.Now()
	c.lastThroughput = s.BoxedThroughput
	c.sensor.Prune(now)

	metrics.Record(c.sink, metrics.InferenceParallelism, s.AvgParallelism, c.tags)
	metrics.Record(c.sink, metrics.InferenceMaxParallel, float64(c.engine.CurrentMaxCapacity()), c.tags)
	return nil
}

func (c *Controller) decide(ctx context.Context, s Summary) {
	capacity := c.engine.CurrentMaxCapacity()

	if s.AvgParallelism < float64(capacity)-2 {
		if err := c.engine.DecrementParallelism(ctx); err != nil {
			slog.Warn("adaptive: decrement failed", "err", err)
		}
		c.oscillations = 0
		c.lastAction = actionNone
		c.isOscillating.Store(false)
		return
	}

	if !c.firstObserved {
		c.firstObserved = true
		c.engine.IncrementParallelism()
		c.lastAction = actionIncrease
		return
	}

	dt := 0.0
	if c.lastThroughput > 0 {
		dt = (s.BoxedThroughput - c.lastThroughput) / c.lastThroughput
	}

	switch c.lastAction {
	case actionIncrease:
		if dt > 0.05 {
			c.engine.IncrementParallelism()
		} else {
			if err := c.engine.DecrementParallelism(ctx); err != nil {
				slog.Warn("adaptive: decrement failed", "err", err)
			}
			c.lastAction = actionDecrease
			c.oscillations++
		}
	case actionDecrease:
		if dt > 0.05 {
			if err := c.engine.DecrementParallelism(ctx); err != nil {
				slog.Warn("adaptive: decrement failed", "err", err)
			}
		} else {
			c.engine.IncrementParallelism()
			c.lastAction = actionIncrease
			c.oscillations++
		}
	default:
		c.engine.IncrementParallelism()
		c.lastAction = actionIncrease
	}

	c.isOscillating.Store(c.oscillations > c.oscillationThreshold)
}

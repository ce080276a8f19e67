// Package onnxengine implements the inference-engine façade (spec.md C5):
// a thread-safe run(tensor, shape) -> (tensor, shape) call plus a current
// max-capacity counter, backed by three interchangeable kernels (real,
// cached, null).
package onnxengine

import "context"

// Tensor is a row-major float32 buffer with its shape, typically NCHW.
type Tensor struct {
	Data  []float32
	Shape []int64
}

// Engine is the capability interface every stage depends on; concrete
// kernels (real/cached/null) satisfy it interchangeably.
type Engine interface {
	// Run executes one inference call. Safe for concurrent use.
	Run(ctx context.Context, input Tensor) (Tensor, error)
	// CurrentMaxCapacity returns the number of concurrent calls currently
	// admitted; may change across the engine's lifetime due to controller
	// action.
	CurrentMaxCapacity() int
	// IncrementParallelism raises the capacity by one; non-blocking.
	IncrementParallelism()
	// DecrementParallelism lowers the capacity by one, never below 1; may
	// block until an outstanding permit is returned.
	DecrementParallelism(ctx context.Context) error
	// Dispose releases kernel resources.
	Dispose() error
}

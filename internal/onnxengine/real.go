package onnxengine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	ort "github.com/yalue/onnxruntime_go"
)

// SessionOptions configures the real kernel's underlying onnxruntime_go
// session.
type SessionOptions struct {
	ModelPath       string
	InputName       string
	OutputName      string
	IntraOpThreads  int
	InterOpThreads  int
	EnableProfiling bool
	InitialCapacity int // initial permit count (default runtime.NumCPU())

	GPU GPUConfig // CUDA execution provider; zero value means CPU-only
}

// RealKernel wraps an onnxruntime_go DynamicAdvancedSession behind a
// counting-semaphore permit gate so at most CurrentMaxCapacity() calls run
// concurrently. When SessionOptions.InitialCapacity is unset, the initial
// permit count is runtime.NumCPU(), read once at construction. Threads are
// not pinned to cores, and no L2-cache or core-frequency topology is probed
// (Go does not expose it; see DESIGN.md).
type RealKernel struct {
	session *ort.DynamicAdvancedSession
	input   string
	output  string

	permits *permitPool
}

// NewRealKernel creates a session from opts and initializes its permit
// pool. The caller is responsible for having called
// ort.InitializeEnvironment beforehand.
func NewRealKernel(opts SessionOptions) (*RealKernel, error) {
	sessionOptions, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnxengine: session options: %w", err)
	}
	defer func() { _ = sessionOptions.Destroy() }()

	if opts.IntraOpThreads > 0 {
		if err := sessionOptions.SetIntraOpNumThreads(opts.IntraOpThreads); err != nil {
			return nil, fmt.Errorf("onnxengine: intra-op threads: %w", err)
		}
	}
	if opts.InterOpThreads > 0 {
		if err := sessionOptions.SetInterOpNumThreads(opts.InterOpThreads); err != nil {
			return nil, fmt.Errorf("onnxengine: inter-op threads: %w", err)
		}
	}
	if opts.GPU.UseGPU {
		if err := ConfigureSessionForGPU(sessionOptions, opts.GPU); err != nil {
			slog.Warn("onnxengine: GPU unavailable, falling back to CPU", "err", err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(opts.ModelPath,
		[]string{opts.InputName}, []string{opts.OutputName}, sessionOptions)
	if err != nil {
		return nil, fmt.Errorf("onnxengine: create session: %w", err)
	}

	capacity := opts.InitialCapacity
	if capacity <= 0 {
		capacity = pinnedCoreCount()
		if capacity < 1 {
			capacity = 1
		}
	}

	k := &RealKernel{
		session: session,
		input:   opts.InputName,
		output:  opts.OutputName,
		permits: newPermitPool(capacity),
	}

	slog.Debug("onnxengine: real kernel ready", "model", opts.ModelPath, "capacity", capacity)
	return k, nil
}

// pinnedCoreCount stands in for a probe of "one thread per L2 cache,
// highest-frequency cores first": Go's runtime does not expose per-core
// cache or frequency topology, so NumCPU is the closest available proxy.
func pinnedCoreCount() int { return runtime.NumCPU() }

func (k *RealKernel) Run(ctx context.Context, input Tensor) (Tensor, error) {
	if err := k.permits.acquire(ctx); err != nil {
		return Tensor{}, err
	}
	defer k.permits.release()

	inputTensor, err := ort.NewTensor(ort.NewShape(input.Shape...), input.Data)
	if err != nil {
		return Tensor{}, fmt.Errorf("onnxengine: input tensor: %w", err)
	}
	defer func() { _ = inputTensor.Destroy() }()

	outputs := []ort.Value{nil}
	if err := k.session.Run([]ort.Value{inputTensor}, outputs); err != nil {
		return Tensor{}, fmt.Errorf("onnxengine: inference: %w", err)
	}
	defer func() {
		for _, o := range outputs {
			if o != nil {
				_ = o.Destroy()
			}
		}
	}()

	floatTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return Tensor{}, fmt.Errorf("onnxengine: expected float32 output, got %T", outputs[0])
	}
	data := append([]float32(nil), floatTensor.GetData()...)
	shape := append([]int64(nil), floatTensor.GetShape()...)
	return Tensor{Data: data, Shape: shape}, nil
}

func (k *RealKernel) CurrentMaxCapacity() int {
	return k.permits.current()
}

func (k *RealKernel) IncrementParallelism() {
	k.permits.increment()
}

func (k *RealKernel) DecrementParallelism(ctx context.Context) error {
	return k.permits.decrement(ctx)
}

func (k *RealKernel) Dispose() error {
	if k.session == nil {
		return nil
	}
	if err := k.session.Destroy(); err != nil {
		return fmt.Errorf("onnxengine: destroy session: %w", err)
	}
	k.session = nil
	return nil
}

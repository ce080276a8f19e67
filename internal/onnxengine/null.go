package onnxengine

import (
	"context"
	"fmt"
)

// NullKernel validates that each Run's input matches a declared shape and
// returns a zero-filled buffer of a declared output shape. It never loads a
// model or touches onnxruntime, so it is used to exercise the pipeline
// end-to-end (tiling, NMS, batching, CTC decode of an all-blank sequence)
// without a real model file on disk.
type NullKernel struct {
	inputShape  []int64
	outputShape []int64

	permits *permitPool
}

// NewNullKernel builds a kernel that only accepts input of inputShape and
// always answers with a zero buffer of outputShape, sized product(shape).
// A -1 in outputShape takes the input's size at the same index.
func NewNullKernel(inputShape, outputShape []int64, capacity int) *NullKernel {
	return &NullKernel{
		inputShape:  append([]int64(nil), inputShape...),
		outputShape: append([]int64(nil), outputShape...),
		permits:     newPermitPool(capacity),
	}
}

func (k *NullKernel) Run(ctx context.Context, input Tensor) (Tensor, error) {
	if !shapeMatches(input.Shape, k.inputShape) {
		return Tensor{}, fmt.Errorf("onnxengine: null kernel expected input shape %v, got %v", k.inputShape, input.Shape)
	}

	if err := k.permits.acquire(ctx); err != nil {
		return Tensor{}, err
	}
	defer k.permits.release()

	shape := append([]int64(nil), k.outputShape...)
	size := int64(1)
	for i, d := range shape {
		if d == -1 && i < len(input.Shape) {
			shape[i] = input.Shape[i]
		}
		size *= shape[i]
	}
	return Tensor{Data: make([]float32, size), Shape: shape}, nil
}

// shapeMatches allows a declared dimension of -1 to match any size, so
// batch dimensions can be declared as wildcards.
func shapeMatches(got, want []int64) bool {
	if len(got) != len(want) {
		return false
	}
	for i, w := range want {
		if w != -1 && w != got[i] {
			return false
		}
	}
	return true
}

func (k *NullKernel) CurrentMaxCapacity() int {
	return k.permits.current()
}

func (k *NullKernel) IncrementParallelism() {
	k.permits.increment()
}

func (k *NullKernel) DecrementParallelism(ctx context.Context) error {
	return k.permits.decrement(ctx)
}

func (k *NullKernel) Dispose() error { return nil }

package onnxengine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullKernel_ShapeValidationAndZeroOutput(t *testing.T) {
	k := NewNullKernel([]int64{1, 3, 32, 32}, []int64{1, 1, 8, 8}, 2)
	defer func() { _ = k.Dispose() }()

	out, err := k.Run(context.Background(), Tensor{Data: make([]float32, 3*32*32), Shape: []int64{1, 3, 32, 32}})
	require.NoError(t, err)
	assert.Len(t, out.Data, 64)
	for _, v := range out.Data {
		assert.Equal(t, float32(0), v)
	}

	_, err = k.Run(context.Background(), Tensor{Data: []float32{1}, Shape: []int64{1, 1}})
	assert.Error(t, err)
}

func TestNullKernel_WildcardBatchDimension(t *testing.T) {
	k := NewNullKernel([]int64{-1, 3, 32, 32}, []int64{-1, 1, 8, 8}, 1)
	defer func() { _ = k.Dispose() }()

	_, err := k.Run(context.Background(), Tensor{Data: make([]float32, 2*3*32*32), Shape: []int64{2, 3, 32, 32}})
	require.NoError(t, err)
}

func TestNullKernel_ParallelismControl(t *testing.T) {
	k := NewNullKernel([]int64{1}, []int64{1}, 1)
	defer func() { _ = k.Dispose() }()

	assert.Equal(t, 1, k.CurrentMaxCapacity())
	k.IncrementParallelism()
	assert.Equal(t, 2, k.CurrentMaxCapacity())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, k.DecrementParallelism(ctx))
	assert.Equal(t, 1, k.CurrentMaxCapacity())

	// capacity floor is 1
	require.NoError(t, k.DecrementParallelism(context.Background()))
	assert.Equal(t, 1, k.CurrentMaxCapacity())
}

func TestCachedKernel_RepeatsFirstResult(t *testing.T) {
	inner := NewNullKernel([]int64{1}, []int64{2}, 1)
	cached := NewCachedKernel(inner)

	first, err := cached.Run(context.Background(), Tensor{Data: []float32{1}, Shape: []int64{1}})
	require.NoError(t, err)

	second, err := cached.Run(context.Background(), Tensor{Data: []float32{99}, Shape: []int64{1}})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegionsFromProbability_SingleRect(t *testing.T) {
	w, h := 100, 80
	prob := make([]float32, w*h)
	for y := 20; y < 50; y++ {
		for x := 10; x < 60; x++ {
			prob[y*w+x] = 0.9
		}
	}
	opts := DefaultOptions()

	regions := regionsFromProbability(prob, w, h, opts)
	require.Len(t, regions, 1)
	assert.InDelta(t, 0.9, regions[0].Confidence, 1e-6)
	assert.Greater(t, regions[0].AxisAligned.Width, 0.0)
	assert.Greater(t, regions[0].AxisAligned.Height, 0.0)
}

func TestRegionsFromProbability_DiscardsTinyComponents(t *testing.T) {
	w, h := 50, 50
	prob := make([]float32, w*h)
	prob[0] = 0.9 // single isolated pixel, area 1 < MinComponentArea

	opts := DefaultOptions()
	regions := regionsFromProbability(prob, w, h, opts)
	assert.Empty(t, regions)
}

func TestSuppressAcrossTiles_KeepsHigherConfidence(t *testing.T) {
	a := BoundingBox{AxisAligned: rectAt(0, 0, 10, 10), Confidence: 0.9}
	b := BoundingBox{AxisAligned: rectAt(1, 1, 10, 10), Confidence: 0.5}

	kept := suppressAcrossTiles([]BoundingBox{b, a}, 0.3)
	require.Len(t, kept, 1)
	assert.InDelta(t, 0.9, kept[0].Confidence, 1e-6)
}

func TestSortReadingOrder_TopToBottomLeftToRight(t *testing.T) {
	boxes := []BoundingBox{
		{Rotated: rotAt(50, 10)},
		{Rotated: rotAt(10, 10)},
		{Rotated: rotAt(10, 100)},
	}
	sortReadingOrder(boxes)
	assert.Equal(t, 10.0, boxes[0].Rotated.X)
	assert.Equal(t, 10.0, boxes[0].Rotated.Y)
	assert.Equal(t, 50.0, boxes[1].Rotated.X)
	assert.Equal(t, 10.0, boxes[2].Rotated.X)
	assert.Equal(t, 100.0, boxes[2].Rotated.Y)
}

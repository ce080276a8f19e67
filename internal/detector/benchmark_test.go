package detector

import (
	"context"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetector_DetectTimedMatchesDetect(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 150))
	for y := range 150 {
		for x := range 200 {
			img.Set(x, y, color.White)
		}
	}

	eng := blobEngine{mw: 224, mh: 160}
	det := New(eng, DefaultOptions())

	boxes, timing, err := det.DetectTimed(context.Background(), img)
	require.NoError(t, err)
	assert.Equal(t, 1, timing.TileCount)
	assert.Equal(t, len(boxes), timing.BoundingBoxes)
	assert.GreaterOrEqual(t, timing.Inference.Duration(), time.Duration(0)) // stopped, non-negative
}

func TestDetector_DetectTimedEmptyTilingShortCircuits(t *testing.T) {
	det := New(blobEngine{mw: 32, mh: 32}, DefaultOptions())
	boxes, timing, err := det.DetectTimed(context.Background(), image.NewRGBA(image.Rect(0, 0, 0, 0)))
	require.NoError(t, err)
	assert.Nil(t, boxes)
	assert.Equal(t, 0, timing.TileCount)
}

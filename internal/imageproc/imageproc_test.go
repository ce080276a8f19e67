package imageproc

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestAspectResizeIntoCanvas_PreservesAspectAndPads(t *testing.T) {
	src := solidImage(100, 50, color.White)
	out, err := AspectResizeIntoCanvas(src, 64, 64)
	require.NoError(t, err)
	assert.Equal(t, 64, out.Bounds().Dx())
	assert.Equal(t, 64, out.Bounds().Dy())

	// Padded region (bottom) should remain black.
	r, g, b, _ := out.At(0, 63).RGBA()
	assert.Equal(t, uint32(0), r)
	assert.Equal(t, uint32(0), g)
	assert.Equal(t, uint32(0), b)
}

func TestScaleToHeight_ClampsWidth(t *testing.T) {
	src := solidImage(1000, 48, color.White)
	out, usedW, err := ScaleToHeight(src, 48, 12, 320, 320)
	require.NoError(t, err)
	assert.Equal(t, 320, usedW)
	assert.Equal(t, 320, out.Bounds().Dx())
	assert.Equal(t, 48, out.Bounds().Dy())
}

func TestToCHW_ChannelOrder(t *testing.T) {
	src := solidImage(2, 2, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	chw := ToCHW(src, nil)
	require.Len(t, chw, 12)
	assert.Equal(t, float32(10), chw[0])
	assert.Equal(t, float32(20), chw[4])
	assert.Equal(t, float32(30), chw[8])
}

func TestNormalize_AppliesPerChannel(t *testing.T) {
	buf := []float32{10, 10, 20, 20, 30, 30}
	Normalize(buf, 2, [3]float32{0, 0, 0}, [3]float32{10, 10, 10})
	assert.Equal(t, float32(1), buf[0])
	assert.Equal(t, float32(2), buf[2])
	assert.Equal(t, float32(3), buf[4])
}

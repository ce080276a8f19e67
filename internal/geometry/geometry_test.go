package geometry

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimplify_PreservesOrderAndShrinks(t *testing.T) {
	poly := Polygon{{0, 0}, {1, 0.01}, {2, 0}, {3, 0.01}, {4, 0}, {4, 10}, {0, 10}}
	out := Simplify(poly, 1.0)
	assert.LessOrEqual(t, len(out), len(poly))
	assert.GreaterOrEqual(t, len(out), 3)
}

func TestSimplify_SmallPolygonUnchanged(t *testing.T) {
	poly := Polygon{{0, 0}, {1, 0}, {0, 1}}
	out := Simplify(poly, 1.0)
	assert.Equal(t, poly, out)
}

func TestDilate_ZeroRatioPreservesArea(t *testing.T) {
	square := Polygon{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	out, ok := Dilate(square, 0)
	require.True(t, ok)
	assert.InDelta(t, math.Abs(square.Area()), math.Abs(Polygon(out).Area()), 1e-6)
}

func TestDilate_DegenerateInputReturnsFalse(t *testing.T) {
	_, ok := Dilate(Polygon{{0, 0}, {1, 1}}, 1.5)
	assert.False(t, ok)
}

func TestMinAreaRect_AxisAlignedSquare(t *testing.T) {
	pts := []PointF{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	rect, ok := MinAreaRect(pts)
	require.True(t, ok)
	assert.InDelta(t, 10, rect.Width, 1e-6)
	assert.InDelta(t, 10, rect.Height, 1e-6)
	assert.InDelta(t, 0, rect.Angle, 1e-6)
}

func TestIoUBoxes_IdenticalIsOne(t *testing.T) {
	box := AxisAlignedRectangle{X: 0, Y: 0, Width: 5, Height: 5}
	assert.InDelta(t, 1.0, IoUBoxes(box, box), 1e-9)
}

func TestIoUBoxes_DisjointIsZero(t *testing.T) {
	a := AxisAlignedRectangle{X: 0, Y: 0, Width: 1, Height: 1}
	b := AxisAlignedRectangle{X: 10, Y: 10, Width: 1, Height: 1}
	assert.Equal(t, 0.0, IoUBoxes(a, b))
}

// gradientImage fills R with local y and G with local x, scaled to [0,255]
// ("(R,G) encode local (y,x)"), used by the oriented-crop round-trip test
// below (spec.md §8 property 3).
func gradientImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			r := uint8(float64(y) / float64(h-1) * 255)
			g := uint8(float64(x) / float64(w-1) * 255)
			img.Set(x, y, color.RGBA{R: r, G: g, B: 0, A: 255})
		}
	}
	return img
}

func TestOrientedCrop_AxisAlignedRoundTrip(t *testing.T) {
	src := gradientImage(200, 200)
	const tau = 20
	rect := RotatedRectangle{X: 50, Y: 60, Width: 40, Height: 20, Angle: 0}
	out := OrientedCrop(src, rect)
	b := out.Bounds()

	tl := color.NRGBAModel.Convert(out.At(b.Min.X, b.Min.Y)).(color.NRGBA)
	tr := color.NRGBAModel.Convert(out.At(b.Max.X-1, b.Min.Y)).(color.NRGBA)
	br := color.NRGBAModel.Convert(out.At(b.Max.X-1, b.Max.Y-1)).(color.NRGBA)
	bl := color.NRGBAModel.Convert(out.At(b.Min.X, b.Max.Y-1)).(color.NRGBA)

	assert.Less(t, int(tl.R), tau)
	assert.Less(t, int(tl.G), tau)

	assert.Less(t, int(tr.R), tau)
	assert.Greater(t, int(tr.G), 255-tau)

	assert.Greater(t, int(br.R), 255-tau)
	assert.Greater(t, int(br.G), 255-tau)

	assert.Greater(t, int(bl.R), 255-tau)
	assert.Less(t, int(bl.G), tau)
}

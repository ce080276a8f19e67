package geometry

import (
	"image"
	"image/color"
	"math"
)

// OrientedCrop extracts the region described by rect from src into a new
// image of ceil(rect.Width) x ceil(rect.Height). Output pixel (u, v) maps
// to source coordinate (x + u*cos(theta) - v*sin(theta), y + u*sin(theta) +
// v*cos(theta)); out-of-bounds samples use edge clamping. Sampling is
// bicubic.
//
// Neither disintegration/imaging nor golang.org/x/image/draw exposes a
// generalized affine-bicubic sampler (imaging.Rotate only rotates whole
// images about their center with a fixed background fill, not an
// arbitrary-origin oriented crop with edge clamp), so the resampling loop
// below is hand-written; see DESIGN.md for the justification.
func OrientedCrop(src image.Image, rect RotatedRectangle) image.Image {
	outW := int(math.Ceil(rect.Width))
	outH := int(math.Ceil(rect.Height))
	if outW <= 0 {
		outW = 1
	}
	if outH <= 0 {
		outH = 1
	}

	sampler := newClampSampler(src)
	cos, sin := math.Cos(rect.Angle), math.Sin(rect.Angle)
	out := image.NewRGBA(image.Rect(0, 0, outW, outH))

	for v := range outH {
		for u := range outW {
			sx := rect.X + float64(u)*cos - float64(v)*sin
			sy := rect.Y + float64(u)*sin + float64(v)*cos
			out.Set(u, v, sampler.bicubicAt(sx, sy))
		}
	}
	return out
}

// clampSampler samples an image.Image at fractional coordinates, clamping
// out-of-bounds pixel lookups to the nearest edge pixel.
type clampSampler struct {
	img          image.Image
	minX, minY   int
	maxX, maxY   int
}

func newClampSampler(img image.Image) *clampSampler {
	b := img.Bounds()
	return &clampSampler{img: img, minX: b.Min.X, minY: b.Min.Y, maxX: b.Max.X - 1, maxY: b.Max.Y - 1}
}

func (s *clampSampler) at(x, y int) color.NRGBA {
	if x < s.minX {
		x = s.minX
	}
	if x > s.maxX {
		x = s.maxX
	}
	if y < s.minY {
		y = s.minY
	}
	if y > s.maxY {
		y = s.maxY
	}
	return color.NRGBAModel.Convert(s.img.At(x, y)).(color.NRGBA) //nolint:forcetypeassert // NRGBAModel.Convert always yields NRGBA
}

// cubicKernel is the Catmull-Rom convolution kernel (a = -0.5).
func cubicKernel(x float64) float64 {
	const a = -0.5
	x = math.Abs(x)
	switch {
	case x <= 1:
		return (a+2)*x*x*x - (a+3)*x*x + 1
	case x < 2:
		return a*x*x*x - 5*a*x*x + 8*a*x - 4*a
	default:
		return 0
	}
}

func (s *clampSampler) bicubicAt(fx, fy float64) color.NRGBA {
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	var r, g, b, aSum, wSum float64
	for j := -1; j <= 2; j++ {
		wy := cubicKernel(fy - float64(y0+j))
		for i := -1; i <= 2; i++ {
			wx := cubicKernel(fx - float64(x0+i))
			w := wx * wy
			if w == 0 {
				continue
			}
			c := s.at(x0+i, y0+j)
			r += w * float64(c.R)
			g += w * float64(c.G)
			b += w * float64(c.B)
			aSum += w * float64(c.A)
			wSum += w
		}
	}
	clamp := func(v float64) uint8 {
		if wSum != 0 {
			v /= wSum
		}
		if v < 0 {
			return 0
		}
		if v > 255 {
			return 255
		}
		return uint8(math.Round(v))
	}
	return color.NRGBA{R: clamp(r), G: clamp(g), B: clamp(b), A: clamp(aSum)}
}

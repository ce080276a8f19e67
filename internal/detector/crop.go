package detector

import (
	"image"
	"image/draw"

	"github.com/MeKo-Tech/pogo/internal/geometry"
)

// cropRect extracts the axis-aligned region rect from img, clamped to
// img's bounds. Uses SubImage when available, otherwise draws into a fresh
// RGBA buffer.
func cropRect(img image.Image, rect geometry.AxisAlignedRectangle) image.Image {
	b := img.Bounds()
	r := image.Rect(
		b.Min.X+int(rect.X), b.Min.Y+int(rect.Y),
		b.Min.X+int(rect.X+rect.Width), b.Min.Y+int(rect.Y+rect.Height),
	).Intersect(b)
	if r.Empty() {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}

	if sub, ok := img.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		return sub.SubImage(r)
	}

	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), img, r.Min, draw.Src)
	return out
}

package detector

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// resizeProbabilityMap clips a model-space probability map (mw x mh, the
// full padded canvas AspectResizeIntoCanvas produced) to its non-padded
// fitted region (fitW x fitH, top-left aligned) and resizes that region
// back to (dstW, dstH) via bicubic interpolation, returning probabilities
// in [0,1].
func resizeProbabilityMap(prob []float32, mw, mh, fitW, fitH, dstW, dstH int) []float32 {
	if fitW > mw {
		fitW = mw
	}
	if fitH > mh {
		fitH = mh
	}

	gray := image.NewGray16(image.Rect(0, 0, fitW, fitH))
	for y := range fitH {
		for x := range fitW {
			gray.SetGray16(x, y, grayFromUnit(prob[y*mw+x]))
		}
	}

	resized := imaging.Resize(gray, dstW, dstH, imaging.CatmullRom)
	out := make([]float32, dstW*dstH)
	for y := range dstH {
		for x := range dstW {
			r, _, _, _ := resized.At(x, y).RGBA()
			out[y*dstW+x] = float32(r) / 65535.0
		}
	}
	return out
}

func grayFromUnit(v float32) color.Gray16 {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return color.Gray16{Y: uint16(v * 65535.0)}
}

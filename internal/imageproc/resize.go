// Package imageproc implements the aspect-preserving resize, layout
// conversion and normalization kernels shared by the detector and
// recognizer preprocessing stages.
package imageproc

import (
	"errors"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// ErrEmptyImage is returned when an operation is given a zero-sized image.
var ErrEmptyImage = errors.New("imageproc: zero-sized image")

// AspectResizeIntoCanvas resizes src to fit within (dstW, dstH) preserving
// aspect ratio (s = min(dstW/srcW, dstH/srcH)), then copies the result into
// the top-left of a dstW x dstH canvas, padding the remainder with black.
func AspectResizeIntoCanvas(src image.Image, dstW, dstH int) (image.Image, error) {
	b := src.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return nil, ErrEmptyImage
	}

	scale := math.Min(float64(dstW)/float64(srcW), float64(dstH)/float64(srcH))
	newW := int(math.Round(float64(srcW) * scale))
	newH := int(math.Round(float64(srcH) * scale))
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	resized := imaging.Resize(src, newW, newH, imaging.CatmullRom)
	canvas := imaging.New(dstW, dstH, color.Black)
	return imaging.Paste(canvas, resized, image.Pt(0, 0)), nil
}

// ScaleToHeight resizes src to the given fixed height, preserving aspect
// ratio, clamping the resulting width into [minW, maxW], then pads a
// dstW-wide canvas by copying the resize to the left and zero-filling the
// remainder. Used by the recognizer to batch variable-width crops.
func ScaleToHeight(src image.Image, height, minW, maxW, dstW int) (image.Image, int, error) {
	b := src.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW <= 0 || srcH <= 0 || height <= 0 {
		return nil, 0, ErrEmptyImage
	}

	aspect := float64(srcW) / float64(srcH)
	targetW := int(math.Round(aspect * float64(height)))
	targetW = clamp(targetW, minW, maxW)
	if targetW > dstW {
		targetW = dstW
	}

	resized := imaging.Resize(src, targetW, height, imaging.CatmullRom)
	canvas := imaging.New(dstW, height, color.Black)
	return imaging.Paste(canvas, resized, image.Pt(0, 0)), targetW, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

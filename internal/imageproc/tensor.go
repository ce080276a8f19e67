package imageproc

import "image"

// ToCHW converts an image into a row-major CHW float32 buffer, values in
// [0, 255]. dst must have capacity for 3*w*h floats; a fresh slice is
// allocated otherwise.
func ToCHW(img image.Image, dst []float32) []float32 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	needed := 3 * w * h
	if cap(dst) < needed {
		dst = make([]float32, needed)
	}
	buf := dst[:needed]

	plane := w * h
	for y := range h {
		for x := range w {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			idx := y*w + x
			buf[idx] = float32(r >> 8)
			buf[plane+idx] = float32(g >> 8)
			buf[2*plane+idx] = float32(bl >> 8)
		}
	}
	return buf
}

// Normalize applies per-channel (x-mean)/std in place over a CHW buffer of
// 3 channels, each of size `planeSize`.
func Normalize(chw []float32, planeSize int, means, stds [3]float32) {
	for c := range 3 {
		start := c * planeSize
		mean, std := means[c], stds[c]
		for i := start; i < start+planeSize; i++ {
			chw[i] = (chw[i] - mean) / std
		}
	}
}

// NormalizeSymmetric applies x/scale - 1 in place over the whole buffer,
// mapping [0,255] to roughly [-1,1]. Used by the recognizer (scale=127.5).
func NormalizeSymmetric(chw []float32, scale float32) {
	for i, v := range chw {
		chw[i] = v/scale - 1
	}
}

// Package mock synthesizes ONNX-shaped detector and recognizer outputs for
// tests that need predictable geometry or text without running a real
// model. Pair it with onnxengine.NullKernel or a hand-rolled Engine that
// answers with one of these buffers.
package mock

import "math"

// ProbabilityMap is a synthetic detector output with NCHW shape [1,1,H,W].
type ProbabilityMap struct {
	Data   []float32
	Width  int
	Height int
}

// NewUniformMap creates a uniform probability map of size WxH.
func NewUniformMap(w, h int, value float32) ProbabilityMap {
	if w <= 0 || h <= 0 {
		return ProbabilityMap{}
	}
	data := make([]float32, w*h)
	v := clamp01(value)
	for i := range data {
		data[i] = v
	}
	return ProbabilityMap{Data: data, Width: w, Height: h}
}

// NewBlobMap creates a Gaussian-like blob of the given peak probability,
// centered at (cx, cy) with spread sigma — useful for exercising a
// detector's single-word path.
func NewBlobMap(w, h int, cx, cy float64, peak float32, sigma float64) ProbabilityMap {
	if w <= 0 || h <= 0 {
		return ProbabilityMap{}
	}
	data := make([]float32, w*h)
	inv2s2 := 1.0 / (2.0 * sigma * sigma)
	for y := range h {
		for x := range w {
			dx := float64(x) - cx
			dy := float64(y) - cy
			v := float32(math.Exp(-(dx*dx+dy*dy)*inv2s2)) * peak
			data[y*w+x] = clamp01(v)
		}
	}
	return ProbabilityMap{Data: data, Width: w, Height: h}
}

// NewRectMap marks a solid axis-aligned rectangle at the given probability,
// background at lo — the minimal shape a connected-component pass needs to
// find a single word box.
func NewRectMap(w, h, rx, ry, rw, rh int, hi, lo float32) ProbabilityMap {
	if w <= 0 || h <= 0 {
		return ProbabilityMap{}
	}
	data := make([]float32, w*h)
	for i := range data {
		data[i] = clamp01(lo)
	}
	for y := ry; y < ry+rh && y < h; y++ {
		if y < 0 {
			continue
		}
		for x := rx; x < rx+rw && x < w; x++ {
			if x < 0 {
				continue
			}
			data[y*w+x] = clamp01(hi)
		}
	}
	return ProbabilityMap{Data: data, Width: w, Height: h}
}

// Logits is synthetic recognizer output, typically shape [1, T, C] or
// [1, C, T].
type Logits struct {
	Data  []float32
	Shape []int64
}

// NewGreedyPathLogits builds logits over T=len(indices) timesteps and C
// classes such that greedy CTC argmax reproduces indices exactly (index 0
// is conventionally the CTC blank).
func NewGreedyPathLogits(indices []int, classes int, classesFirst bool, high, low float32) Logits {
	if classes <= 0 || len(indices) == 0 {
		return Logits{}
	}
	t := len(indices)
	if classesFirst {
		shape := []int64{1, int64(classes), int64(t)}
		data := make([]float32, classes*t)
		for ti, c := range indices {
			for cls := range classes {
				v := low
				if cls == c {
					v = high
				}
				data[cls*t+ti] = v
			}
		}
		return Logits{Data: data, Shape: shape}
	}

	shape := []int64{1, int64(t), int64(classes)}
	data := make([]float32, t*classes)
	for ti, c := range indices {
		for cls := range classes {
			v := low
			if cls == c {
				v = high
			}
			data[ti*classes+cls] = v
		}
	}
	return Logits{Data: data, Shape: shape}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

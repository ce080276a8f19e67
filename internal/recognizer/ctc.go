package recognizer

import "math"

// BlankIndex is the CTC blank class, always index 0 per spec §4.4/§6.
const BlankIndex = 0

// Recognition is one decoded text line.
type Recognition struct {
	Text       string
	Confidence float64
}

// argmax returns the index of the largest value in v.
func argmax(v []float32) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

// DecodeGreedy runs CTC greedy decoding over a (N, T, V) logits tensor and
// maps surviving indices through dict. classesFirst selects between
// (N, T, V) and (N, V, T) layouts.
func DecodeGreedy(logits []float32, shape []int64, dict *Dictionary, classesFirst bool) []Recognition {
	if len(shape) != 3 {
		return nil
	}
	n := int(shape[0])
	var tDim, vDim int
	if classesFirst {
		vDim, tDim = int(shape[1]), int(shape[2])
	} else {
		tDim, vDim = int(shape[1]), int(shape[2])
	}
	if n <= 0 || tDim <= 0 || vDim <= 0 {
		return nil
	}

	results := make([]Recognition, n)
	perBatch := tDim * vDim
	for b := range n {
		start := b * perBatch
		results[b] = decodeOne(logits, start, tDim, vDim, classesFirst, dict)
	}
	return results
}

func decodeOne(logits []float32, start, tDim, vDim int, classesFirst bool, dict *Dictionary) Recognition {
	var (
		sb         []byte
		logProbSum float64
		survivors  int
		prevIdx    = -1
	)

	for t := range tDim {
		row := classSlice(logits, start, t, tDim, vDim, classesFirst)
		idx := argmax(row)

		if idx == prevIdx {
			prevIdx = idx
			continue
		}
		prevIdx = idx
		if idx == BlankIndex {
			continue
		}

		p := softmaxAt(row, idx)
		if p <= 0 {
			p = 1e-12
		}
		logProbSum += math.Log(p)
		survivors++
		sb = append(sb, dict.Token(idx)...)
	}

	if survivors == 0 {
		return Recognition{Text: "", Confidence: 0}
	}
	confidence := math.Exp(logProbSum / float64(survivors))
	return Recognition{Text: string(sb), Confidence: confidence}
}

// classSlice extracts the V-length class vector at timestep t from a
// (T, V) or (V, T) flattened block starting at `start`.
func classSlice(logits []float32, start, t, tDim, vDim int, classesFirst bool) []float32 {
	if classesFirst {
		out := make([]float32, vDim)
		for k := range vDim {
			out[k] = logits[start+k*tDim+t]
		}
		return out
	}
	off := start + t*vDim
	return logits[off : off+vDim]
}

// softmaxAt computes the softmax probability of v[idx] via a numerically
// stable computation, unless v already looks like a probability
// distribution (sums to ~1, all in [0,1]), in which case v[idx] is used
// directly.
func softmaxAt(v []float32, idx int) float64 {
	if looksNormalized(v) {
		return float64(v[idx])
	}
	m := v[0]
	for _, x := range v[1:] {
		if x > m {
			m = x
		}
	}
	var denom float64
	for _, x := range v {
		denom += math.Exp(float64(x - m))
	}
	if denom == 0 {
		return 0
	}
	return math.Exp(float64(v[idx]-m)) / denom
}

func looksNormalized(v []float32) bool {
	var sum float32
	for _, x := range v {
		if x < 0 || x > 1 {
			return false
		}
		sum += x
	}
	return sum > 0.99 && sum < 1.01
}

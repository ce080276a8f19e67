package detector

import (
	"math"

	"github.com/MeKo-Tech/pogo/internal/geometry"
)

// SoftNMS re-scores overlapping boxes by a Gaussian IoU penalty instead of
// discarding them outright, then drops anything under scoreThreshold. This
// supplements the hard cross-tile NMS in Postprocess for callers that want
// softer suppression on dense text (e.g. small-font tables). It has no
// Options field and Postprocess never calls it; callers invoke it directly.
func SoftNMS(boxes []BoundingBox, sigma, scoreThreshold float64) []BoundingBox {
	n := len(boxes)
	if n <= 1 {
		return boxes
	}
	working := make([]BoundingBox, n)
	copy(working, boxes)

	for i := range working {
		best := i
		for j := i + 1; j < n; j++ {
			if working[j].Confidence > working[best].Confidence {
				best = j
			}
		}
		working[i], working[best] = working[best], working[i]

		for j := i + 1; j < n; j++ {
			iou := geometry.IoUBoxes(working[i].AxisAligned, working[j].AxisAligned)
			decay := math.Exp(-(iou * iou) / sigma)
			working[j].Confidence *= decay
		}
	}

	kept := make([]BoundingBox, 0, n)
	for _, b := range working {
		if b.Confidence >= scoreThreshold {
			kept = append(kept, b)
		}
	}
	return kept
}

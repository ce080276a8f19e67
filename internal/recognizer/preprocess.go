package recognizer

import (
	"fmt"
	"image"

	"github.com/MeKo-Tech/pogo/internal/detector"
	"github.com/MeKo-Tech/pogo/internal/geometry"
	"github.com/MeKo-Tech/pogo/internal/imageproc"
	"github.com/MeKo-Tech/pogo/internal/mempool"
	"github.com/MeKo-Tech/pogo/internal/onnxengine"
)

// PreprocessOptions carries the recognizer's fixed crop dimensions (spec
// §4.4): height 48, width clamped to [12, 320].
type PreprocessOptions struct {
	Height   int
	MinWidth int
	MaxWidth int
}

// DefaultPreprocessOptions returns the spec's literal crop constants.
func DefaultPreprocessOptions() PreprocessOptions {
	return PreprocessOptions{Height: 48, MinWidth: 12, MaxWidth: 320}
}

// Preprocess oriented-crops each box out of img, resizes every crop to a
// fixed height preserving aspect (width clamped to [MinWidth, MaxWidth]),
// and batches them right-padded to the widest crop in the batch. Returns
// the batched (N, 3, H, W_b) tensor and the unpadded width used for each
// row. Recognize does not use the widths; the padded columns are decoded
// along with each crop.
func Preprocess(boxes []detector.BoundingBox, img image.Image, opts PreprocessOptions) (onnxengine.Tensor, []int, error) {
	if len(boxes) == 0 {
		return onnxengine.Tensor{}, nil, nil
	}

	crops := make([]image.Image, len(boxes))
	widths := make([]int, len(boxes))
	maxWidth := 0
	for i, box := range boxes {
		crop := geometry.OrientedCrop(img, box.Rotated)
		resized, usedW, err := imageproc.ScaleToHeight(crop, opts.Height, opts.MinWidth, opts.MaxWidth, opts.MaxWidth)
		if err != nil {
			return onnxengine.Tensor{}, nil, fmt.Errorf("recognizer: preprocess box %d: %w", i, err)
		}
		crops[i] = resized
		widths[i] = usedW
		if usedW > maxWidth {
			maxWidth = usedW
		}
	}
	if maxWidth < opts.MinWidth {
		maxWidth = opts.MinWidth
	}

	planeSize := opts.Height * maxWidth
	// data is drawn from internal/mempool's arena (spec.md §9's arena-style
	// buffer design note); Recognize returns it via mempool.PutFloat32 once
	// the engine has consumed it.
	data := mempool.GetFloat32(len(boxes) * 3 * planeSize)
	for i, crop := range crops {
		// Each crop was padded to a opts.MaxWidth-wide canvas with zeros
		// past its real content; narrow it to the batch's actual max width
		// so the batch isn't wider than it needs to be.
		narrowed := crop.(interface {
			SubImage(image.Rectangle) image.Image
		}).SubImage(image.Rect(0, 0, maxWidth, opts.Height))
		chw := imageproc.ToCHW(narrowed, nil)
		imageproc.NormalizeSymmetric(chw, 127.5)
		copy(data[i*3*planeSize:(i+1)*3*planeSize], chw)
	}

	shape := []int64{int64(len(boxes)), 3, int64(opts.Height), int64(maxWidth)}
	return onnxengine.Tensor{Data: data, Shape: shape}, widths, nil
}

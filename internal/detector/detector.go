package detector

import (
	"context"
	"fmt"
	"image"

	"github.com/MeKo-Tech/pogo/internal/mempool"
	"github.com/MeKo-Tech/pogo/internal/onnxengine"
)

// Detector composes tiling, preprocessing, inference and postprocessing
// into a single Detect call over an onnxengine.Engine.
type Detector struct {
	engine onnxengine.Engine
	opts   Options
}

// New builds a Detector over engine using opts; pass DefaultOptions() for
// the spec's literal constants.
func New(engine onnxengine.Engine, opts Options) *Detector {
	return &Detector{engine: engine, opts: opts}
}

// Detect runs the full detect pipeline over one image and returns its
// bounding boxes in reading order.
func (d *Detector) Detect(ctx context.Context, img image.Image) ([]BoundingBox, error) {
	tiling := TileImage(img, d.opts)
	if len(tiling.Tiles) == 0 {
		return nil, nil
	}

	input, err := Preprocess(img, tiling, d.opts)
	if err != nil {
		return nil, fmt.Errorf("detector: preprocess: %w", err)
	}
	defer mempool.PutFloat32(input.Data)

	output, err := d.engine.Run(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("detector: inference: %w", err)
	}

	return Postprocess(output, tiling, img, d.opts), nil
}

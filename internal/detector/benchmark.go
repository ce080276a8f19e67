package detector

import (
	"context"
	"image"

	"github.com/MeKo-Tech/pogo/internal/common"
)

// StageTiming is the per-stage wall-clock breakdown of one Detect call
// (EXPANSION C "benchmark harness"), grounded on internal/common/timer.go's
// Timer.
type StageTiming struct {
	Tiling        common.Timer
	Preprocess    common.Timer
	Inference     common.Timer
	Postprocess   common.Timer
	TileCount     int
	BoundingBoxes int
}

// DetectTimed runs the same steps as Detect but records each stage's
// duration, for cmd/ocr's bench subcommand and ad hoc profiling.
func (d *Detector) DetectTimed(ctx context.Context, img image.Image) ([]BoundingBox, StageTiming, error) {
	var timing StageTiming

	tilingTimer := common.NewNamedTimer("tiling")
	tiling := TileImage(img, d.opts)
	tilingTimer.Stop()
	timing.Tiling = *tilingTimer
	timing.TileCount = len(tiling.Tiles)

	if len(tiling.Tiles) == 0 {
		return nil, timing, nil
	}

	preTimer := common.NewNamedTimer("preprocess")
	input, err := Preprocess(img, tiling, d.opts)
	preTimer.Stop()
	timing.Preprocess = *preTimer
	if err != nil {
		return nil, timing, err
	}

	infTimer := common.NewNamedTimer("inference")
	output, err := d.engine.Run(ctx, input)
	infTimer.Stop()
	timing.Inference = *infTimer
	if err != nil {
		return nil, timing, err
	}

	postTimer := common.NewNamedTimer("postprocess")
	boxes := Postprocess(output, tiling, img, d.opts)
	postTimer.Stop()
	timing.Postprocess = *postTimer
	timing.BoundingBoxes = len(boxes)

	return boxes, timing, nil
}

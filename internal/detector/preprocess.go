package detector

import (
	"fmt"
	"image"

	"github.com/MeKo-Tech/pogo/internal/imageproc"
	"github.com/MeKo-Tech/pogo/internal/mempool"
	"github.com/MeKo-Tech/pogo/internal/onnxengine"
)

// Preprocess builds a batched CHW input tensor for tiling, one (3, H, W)
// slice per tile, each crop extracted from img at its source_rect, resized
// into the tile's model dimensions, and normalized with opts.Means/Stds.
// All tiles must share ModelWidth/ModelHeight for the batch to be
// rectangular, which holds because TileImage assigns a uniform tile size
// per tiling strategy.
//
// The returned tensor's Data is drawn from internal/mempool's arena (spec.md
// §9's "preallocate a pool of float tensors sized to max detection ...
// batches to avoid per-job allocation"); Detect returns it via
// mempool.PutFloat32 once the engine has consumed it.
func Preprocess(img image.Image, tiling Tiling, opts Options) (onnxengine.Tensor, error) {
	if len(tiling.Tiles) == 0 {
		return onnxengine.Tensor{}, fmt.Errorf("detector: empty tiling")
	}

	mw, mh := tiling.Tiles[0].ModelWidth, tiling.Tiles[0].ModelHeight
	planeSize := mw * mh
	tileLen := 3 * planeSize
	data := mempool.GetFloat32(len(tiling.Tiles) * tileLen)

	for i, tile := range tiling.Tiles {
		sub := cropRect(img, tile.SourceRect)
		resized, err := imageproc.AspectResizeIntoCanvas(sub, tile.ModelWidth, tile.ModelHeight)
		if err != nil {
			mempool.PutFloat32(data)
			return onnxengine.Tensor{}, fmt.Errorf("detector: preprocess tile: %w", err)
		}
		chw := imageproc.ToCHW(resized, nil)
		imageproc.Normalize(chw, planeSize, opts.Means, opts.Stds)
		copy(data[i*tileLen:(i+1)*tileLen], chw)
	}

	shape := []int64{int64(len(tiling.Tiles)), 3, int64(mh), int64(mw)}
	return onnxengine.Tensor{Data: data, Shape: shape}, nil
}

// Package detector implements text-region detection (spec.md C3): image
// tiling, per-tile pre/postprocessing around a segmentation model, and
// cross-tile non-maximum suppression into a final set of bounding boxes.
package detector

import "github.com/MeKo-Tech/pogo/internal/geometry"

// Tile identifies one segmentation-model input region.
type Tile struct {
	SourceRect  geometry.AxisAlignedRectangle // region in original image coordinates
	ModelWidth  int
	ModelHeight int
	Scale       float64 // source pixels per model pixel
}

// Tiling is the set of tiles covering one image.
type Tiling struct {
	Tiles []Tile
}

// BoundingBox carries the same region at three levels of fidelity, as
// required by the detector's public contract.
type BoundingBox struct {
	Polygon     geometry.Polygon
	Rotated     geometry.RotatedRectangle
	AxisAligned geometry.AxisAlignedRectangle
	Confidence  float64
}

// Options configures postprocessing thresholds; fields map directly onto
// spec.md §4.3's numeric constants but are exposed so tests and the
// adaptive-threshold supplement (EXPANSION C) can override them.
type Options struct {
	BinarizeThreshold  float32 // default 0.2
	MinComponentArea   int     // default 9
	SimplifyAggression float64 // default 1.0
	DilationRatio      float64 // default 1.5
	NMSIoUThreshold    float64 // default 0.5

	ModelFitWidth  int     // default 1333
	ModelFitHeight int     // default 736
	TileSize       int     // default 640
	TileOverlap    float64 // minimum fractional overlap per axis, default 0.5

	Means [3]float32 // default (123.675, 116.28, 103.53)
	Stds  [3]float32 // default (58.395, 57.12, 57.375)

	// AdaptiveThreshold replaces the fixed BinarizeThreshold cutoff with a
	// local-mean threshold (EXPANSION C); off by default per spec §9's
	// note that the fixed threshold is the canonical constant.
	UseAdaptiveThreshold  bool
	AdaptiveThresholdWin  int     // neighborhood half-size in pixels, default 15
	AdaptiveThresholdBias float32 // added to the local mean, default 0.02

	// MorphologyRadius, if > 0, runs a binary open+close over the mask
	// before connected-component labeling (EXPANSION C). 0 disables it.
	MorphologyRadius int

	// MultiScaleUpscale upscales images smaller than this threshold (on
	// both axes, in pixels) by MultiScaleFactor before tiling, improving
	// recall on small source images without changing §4.3's tiling
	// contract for normally-sized images (EXPANSION C).
	MultiScaleUpscale int     // default 0 (disabled)
	MultiScaleFactor  float64 // default 2.0
}

// DefaultOptions returns the numeric constants literally specified for the
// detector's tiling and postprocessing stages.
func DefaultOptions() Options {
	return Options{
		BinarizeThreshold:  0.2,
		MinComponentArea:   9,
		SimplifyAggression: 1.0,
		DilationRatio:      1.5,
		NMSIoUThreshold:    0.5,
		ModelFitWidth:      1333,
		ModelFitHeight:     736,
		TileSize:           640,
		TileOverlap:        0.5,
		Means:              [3]float32{123.675, 116.28, 103.53},
		Stds:               [3]float32{58.395, 57.12, 57.375},

		UseAdaptiveThreshold:  false,
		AdaptiveThresholdWin:  15,
		AdaptiveThresholdBias: 0.02,
		MorphologyRadius:      0,
		MultiScaleUpscale:     0,
		MultiScaleFactor:      2.0,
	}
}

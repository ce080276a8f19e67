package detector

import "math"

// multiScaleFitSize scales up the model fit canvas for small images so
// they get more model pixels per source pixel instead of being squeezed
// into the same 1333x736 canvas as a full-size page (EXPANSION C
// "multi-scale tiling" — a third tier below the single-tile/overlapping-
// tile split in spec §4.3). Disabled (returns fitW, fitH unchanged) unless
// opts.MultiScaleUpscale > 0 and the image is smaller than that threshold
// on both axes.
func multiScaleFitSize(srcW, srcH, fitW, fitH int, opts Options) (int, int) {
	if opts.MultiScaleUpscale <= 0 || opts.MultiScaleFactor <= 1 {
		return fitW, fitH
	}
	if srcW >= opts.MultiScaleUpscale || srcH >= opts.MultiScaleUpscale {
		return fitW, fitH
	}
	return int(math.Round(float64(fitW) * opts.MultiScaleFactor)), int(math.Round(float64(fitH) * opts.MultiScaleFactor))
}

package detector

import (
	"image"
	"math"

	"github.com/MeKo-Tech/pogo/internal/geometry"
)

// roundUpToMultiple rounds v up to the nearest positive multiple of m.
func roundUpToMultiple(v, m int) int {
	if v <= 0 {
		return m
	}
	if r := v % m; r != 0 {
		v += m - r
	}
	return v
}

// TileImage partitions an image into one or more model input regions. Images
// that fit within ModelFitWidth x ModelFitHeight (after aspect-preserving
// scaling) become a single tile; larger images are covered by overlapping
// fixed-size tiles.
func TileImage(img image.Image, opts Options) Tiling {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return Tiling{}
	}

	fitScale := math.Min(float64(opts.ModelFitWidth)/float64(w), float64(opts.ModelFitHeight)/float64(h))
	if fitScale >= 1.0 {
		mw, mh := multiScaleFitSize(w, h, roundUpToMultiple(w, 32), roundUpToMultiple(h, 32), opts)
		return Tiling{Tiles: []Tile{{
			SourceRect:  geometry.AxisAlignedRectangle{X: 0, Y: 0, Width: float64(w), Height: float64(h)},
			ModelWidth:  mw,
			ModelHeight: mh,
			Scale:       1.0,
		}}}
	}

	scaledW := float64(w) * fitScale
	scaledH := float64(h) * fitScale
	if scaledW <= float64(opts.ModelFitWidth) && scaledH <= float64(opts.ModelFitHeight) {
		mw, mh := multiScaleFitSize(w, h,
			roundUpToMultiple(int(math.Ceil(scaledW)), 32), roundUpToMultiple(int(math.Ceil(scaledH)), 32), opts)
		return Tiling{Tiles: []Tile{{
			SourceRect:  geometry.AxisAlignedRectangle{X: 0, Y: 0, Width: float64(w), Height: float64(h)},
			ModelWidth:  mw,
			ModelHeight: mh,
			Scale:       1.0 / fitScale,
		}}}
	}

	return tileOverlapping(w, h, opts)
}

// tileOverlapping covers a w x h image with TileSize x TileSize windows
// whose stride yields at least TileOverlap fractional overlap on each axis.
func tileOverlapping(w, h int, opts Options) Tiling {
	size := opts.TileSize
	stride := int(math.Floor(float64(size) * (1 - opts.TileOverlap)))
	if stride < 1 {
		stride = 1
	}

	xs := tileStarts(w, size, stride)
	ys := tileStarts(h, size, stride)

	tiles := make([]Tile, 0, len(xs)*len(ys))
	for _, y := range ys {
		th := size
		if th > h {
			th = h
		}
		for _, x := range xs {
			tw := size
			if tw > w {
				tw = w
			}
			tiles = append(tiles, Tile{
				SourceRect:  geometry.AxisAlignedRectangle{X: float64(x), Y: float64(y), Width: float64(tw), Height: float64(th)},
				ModelWidth:  roundUpToMultiple(tw, 32),
				ModelHeight: roundUpToMultiple(th, 32),
				Scale:       1.0,
			})
		}
	}
	return Tiling{Tiles: tiles}
}

// tileStarts returns tile-start offsets covering [0, total) with the given
// size and stride. Every start except possibly the first satisfies
// start+size <= total, so every tile keeps the full requested size; the
// final tile is flush against the far edge when size doesn't evenly divide
// the stride sequence.
func tileStarts(total, size, stride int) []int {
	if total <= size {
		return []int{0}
	}
	var starts []int
	x := 0
	for {
		starts = append(starts, x)
		if x+size >= total {
			break
		}
		x += stride
		if x+size > total {
			x = total - size
		}
	}
	return starts
}

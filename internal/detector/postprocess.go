package detector

import (
	"image"
	"math"
	"sort"

	"github.com/MeKo-Tech/pogo/internal/geometry"
	"github.com/MeKo-Tech/pogo/internal/onnxengine"
)

// computeFitSize mirrors imageproc.AspectResizeIntoCanvas's scale
// computation so postprocessing can locate the non-padded region within a
// tile's model-space probability map without threading extra state through
// Tile.
func computeFitSize(srcW, srcH, dstW, dstH int) (int, int) {
	if srcW <= 0 || srcH <= 0 {
		return dstW, dstH
	}
	scale := math.Min(float64(dstW)/float64(srcW), float64(dstH)/float64(srcH))
	fitW := int(math.Round(float64(srcW) * scale))
	fitH := int(math.Round(float64(srcH) * scale))
	if fitW < 1 {
		fitW = 1
	}
	if fitH < 1 {
		fitH = 1
	}
	return fitW, fitH
}

// Postprocess turns a batch of per-tile probability maps into bounding
// boxes in original image coordinates, merging across tiles with NMS.
func Postprocess(output onnxengine.Tensor, tiling Tiling, img image.Image, opts Options) []BoundingBox {
	b := img.Bounds()
	imgW, imgH := b.Dx(), b.Dy()

	if len(output.Shape) != 4 {
		return nil
	}
	mh, mw := int(output.Shape[2]), int(output.Shape[3])
	planeSize := mw * mh

	var all []BoundingBox
	for t, tile := range tiling.Tiles {
		if (t+1)*planeSize > len(output.Data) {
			break
		}
		probModel := output.Data[t*planeSize : (t+1)*planeSize]

		srcW := int(math.Round(tile.SourceRect.Width))
		srcH := int(math.Round(tile.SourceRect.Height))
		fitW, fitH := computeFitSize(srcW, srcH, mw, mh)

		probSource := resizeProbabilityMap(probModel, mw, mh, fitW, fitH, srcW, srcH)
		regions := regionsFromProbability(probSource, srcW, srcH, opts)

		for i := range regions {
			translateAndClamp(&regions[i], tile.SourceRect.X, tile.SourceRect.Y, imgW, imgH)
		}
		all = append(all, regions...)
	}

	merged := suppressAcrossTiles(all, opts.NMSIoUThreshold)
	sortReadingOrder(merged)
	return merged
}

// regionsFromProbability runs the binarize -> connected-components ->
// contour -> simplify -> hull -> dilate -> rotating-calipers pipeline over
// one tile's probability map, already in that tile's source-rect pixel
// space.
func regionsFromProbability(prob []float32, w, h int, opts Options) []BoundingBox {
	var mask []bool
	if opts.UseAdaptiveThreshold {
		win := opts.AdaptiveThresholdWin
		if win <= 0 {
			win = 15
		}
		mask = adaptiveThreshold(prob, w, h, win, opts.AdaptiveThresholdBias)
	} else {
		mask = binarize(prob, opts.BinarizeThreshold)
	}
	mask = morphologyClean(mask, w, h, opts.MorphologyRadius)

	comps, labels := connectedComponents(mask, prob, w, h)

	boxes := make([]BoundingBox, 0, len(comps))
	for i, c := range comps {
		if c.area() < opts.MinComponentArea {
			continue
		}
		label := i + 1
		contour := traceContourMoore(labels, w, h, label, c)
		if len(contour) < 3 {
			continue
		}

		simplified := geometry.Simplify(contour, opts.SimplifyAggression)
		hull, ok := geometry.Hull(simplified)
		if !ok {
			continue
		}

		dilated, ok := geometry.Dilate(geometry.Polygon(hull), opts.DilationRatio)
		if !ok || len(dilated) < 4 {
			continue
		}

		rect, ok := geometry.MinAreaRect(dilated)
		if !ok {
			continue
		}
		aabb, ok := geometry.BoundingBoxOf(dilated)
		if !ok {
			continue
		}

		boxes = append(boxes, BoundingBox{
			Polygon:     dilated,
			Rotated:     rect,
			AxisAligned: aabb,
			Confidence:  c.meanProbability(),
		})
	}
	return boxes
}

// translateAndClamp shifts a box from tile-local coordinates into image
// coordinates and clamps the polygon to image bounds.
func translateAndClamp(box *BoundingBox, dx, dy float64, imgW, imgH int) {
	box.Polygon = box.Polygon.Clone()
	for i := range box.Polygon {
		box.Polygon[i].X += dx
		box.Polygon[i].Y += dy
	}
	box.Polygon = box.Polygon.ClampToBounds(float64(imgW), float64(imgH))

	box.Rotated.X += dx
	box.Rotated.Y += dy

	box.AxisAligned.X += dx
	box.AxisAligned.Y += dy
	box.AxisAligned = clampAABB(box.AxisAligned, imgW, imgH)
}

func clampAABB(r geometry.AxisAlignedRectangle, imgW, imgH int) geometry.AxisAlignedRectangle {
	x0 := math.Max(0, r.X)
	y0 := math.Max(0, r.Y)
	x1 := math.Min(float64(imgW), r.X+r.Width)
	y1 := math.Min(float64(imgH), r.Y+r.Height)
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	return geometry.AxisAlignedRectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// suppressAcrossTiles runs greedy NMS over AxisAligned boxes keyed by IoU,
// tie-breaking overlapping pairs by the higher mean tile-region
// probability (spec §4.3 step 8).
func suppressAcrossTiles(boxes []BoundingBox, iouThreshold float64) []BoundingBox {
	if len(boxes) <= 1 {
		return boxes
	}
	order := make([]int, len(boxes))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return boxes[order[i]].Confidence > boxes[order[j]].Confidence
	})

	suppressed := make([]bool, len(boxes))
	kept := make([]BoundingBox, 0, len(boxes))
	for _, a := range order {
		if suppressed[a] {
			continue
		}
		kept = append(kept, boxes[a])
		for _, b := range order {
			if a == b || suppressed[b] {
				continue
			}
			if geometry.IoUBoxes(boxes[a].AxisAligned, boxes[b].AxisAligned) > iouThreshold {
				suppressed[b] = true
			}
		}
	}
	return kept
}

// sortReadingOrder orders results top-to-bottom then left-to-right on each
// box's rotated rectangle's (x, y) corner (spec §4.3 step 9).
func sortReadingOrder(boxes []BoundingBox) {
	sort.SliceStable(boxes, func(i, j int) bool {
		a, b := boxes[i].Rotated, boxes[j].Rotated
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
}

// Package resultfmt renders a pipeline.Result into the page/result JSON
// shape spec.md §6 requires callers (CLI output, HTTP responses, WebSocket
// frames) to produce bit-exact, regardless of which surface is serializing
// it.
package resultfmt

import (
	"github.com/MeKo-Tech/pogo/internal/detector"
	"github.com/MeKo-Tech/pogo/internal/geometry"
	"github.com/MeKo-Tech/pogo/internal/pipeline"
	"github.com/MeKo-Tech/pogo/internal/recognizer"
)

// PointJSON is one polygon vertex.
type PointJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PolygonJSON is an ordered list of vertices.
type PolygonJSON struct {
	Points []PointJSON `json:"points"`
}

// RotatedRectangleJSON is a rectangle in its own rotated frame.
type RotatedRectangleJSON struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Angle  float64 `json:"angle"`
}

// RectangleJSON is the axis-aligned envelope.
type RectangleJSON struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// BoundingBoxJSON carries the same region at the three fidelities detector.BoundingBox does.
type BoundingBoxJSON struct {
	Polygon          PolygonJSON          `json:"polygon"`
	RotatedRectangle RotatedRectangleJSON `json:"rotatedRectangle"`
	Rectangle        RectangleJSON        `json:"rectangle"`
}

// RegionJSON is one recognized text line.
type RegionJSON struct {
	Text        string          `json:"text"`
	Confidence  float64         `json:"confidence"`
	BoundingBox BoundingBoxJSON `json:"boundingBox"`
}

// PageJSON is one image's full OCR result.
type PageJSON struct {
	PageNumber int          `json:"pageNumber"`
	Results    []RegionJSON `json:"results"`
}

// Page converts res into the page/result shape for pageNumber (1-based,
// per §6; callers processing a single image pass 1).
func Page(pageNumber int, res pipeline.Result) PageJSON {
	n := len(res.Recognitions)
	if len(res.Boxes) < n {
		n = len(res.Boxes)
	}
	results := make([]RegionJSON, n)
	for i := range n {
		results[i] = region(res.Boxes[i], res.Recognitions[i])
	}
	return PageJSON{PageNumber: pageNumber, Results: results}
}

func region(box detector.BoundingBox, rec recognizer.Recognition) RegionJSON {
	return RegionJSON{
		Text:        rec.Text,
		Confidence:  rec.Confidence,
		BoundingBox: boundingBox(box),
	}
}

func boundingBox(box detector.BoundingBox) BoundingBoxJSON {
	aa := box.AxisAligned
	return BoundingBoxJSON{
		Polygon: PolygonJSON{Points: polygonPoints(box.Polygon)},
		RotatedRectangle: RotatedRectangleJSON{
			X: box.Rotated.X, Y: box.Rotated.Y,
			Width: box.Rotated.Width, Height: box.Rotated.Height,
			Angle: box.Rotated.Angle,
		},
		Rectangle: RectangleJSON{X: aa.X, Y: aa.Y, Width: aa.Width, Height: aa.Height},
	}
}

func polygonPoints(poly geometry.Polygon) []PointJSON {
	pts := make([]PointJSON, len(poly))
	for i, p := range poly {
		pts[i] = PointJSON{X: p.X, Y: p.Y}
	}
	return pts
}

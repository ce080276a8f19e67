// Package geometry implements the point, polygon, convex hull, rotated
// rectangle, dilation, simplification and oriented-crop primitives shared
// by the detector and recognizer stages.
package geometry

import "math"

// Point is an integer pixel coordinate, always >= 0 in valid image space.
type Point struct {
	X, Y int
}

// PointF is a floating point coordinate.
type PointF struct {
	X, Y float64
}

// ToPointF converts a Point to PointF losslessly.
func (p Point) ToPointF() PointF { return PointF{X: float64(p.X), Y: float64(p.Y)} }

// ToPoint rounds a PointF to the nearest Point.
func (p PointF) ToPoint() Point {
	return Point{X: int(math.Round(p.X)), Y: int(math.Round(p.Y))}
}

// Add returns p+q.
func (p PointF) Add(q PointF) PointF { return PointF{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p-q.
func (p PointF) Sub(q PointF) PointF { return PointF{X: p.X - q.X, Y: p.Y - q.Y} }

// Scale returns p scaled by s.
func (p PointF) Scale(s float64) PointF { return PointF{X: p.X * s, Y: p.Y * s} }

// Dot returns the dot product of p and q.
func (p PointF) Dot(q PointF) float64 { return p.X*q.X + p.Y*q.Y }

// Hypot returns the Euclidean length of p treated as a vector.
func (p PointF) Hypot() float64 { return math.Hypot(p.X, p.Y) }

// Dist returns the Euclidean distance between p and q.
func (p PointF) Dist(q PointF) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Polygon is an ordered sequence of points, implicitly closed (last point
// connects back to the first). Fewer than 3 points is a degenerate polygon.
type Polygon []PointF

// Clone returns an independent copy of the polygon.
func (poly Polygon) Clone() Polygon {
	out := make(Polygon, len(poly))
	copy(out, poly)
	return out
}

// Area returns the signed shoelace area; positive for CCW winding.
func (poly Polygon) Area() float64 {
	if len(poly) < 3 {
		return 0
	}
	var sum float64
	n := len(poly)
	for i := range n {
		j := (i + 1) % n
		sum += poly[i].X*poly[j].Y - poly[j].X*poly[i].Y
	}
	return sum / 2
}

// Perimeter returns the closed-loop perimeter length.
func (poly Polygon) Perimeter() float64 {
	if len(poly) < 2 {
		return 0
	}
	var sum float64
	n := len(poly)
	for i := range n {
		j := (i + 1) % n
		sum += poly[i].Dist(poly[j])
	}
	return sum
}

// Centroid returns the arithmetic mean of the polygon's vertices. For
// degenerate (empty) polygons it returns the zero point.
func (poly Polygon) Centroid() PointF {
	if len(poly) == 0 {
		return PointF{}
	}
	var cx, cy float64
	for _, p := range poly {
		cx += p.X
		cy += p.Y
	}
	n := float64(len(poly))
	return PointF{X: cx / n, Y: cy / n}
}

// BoundingBoxOf returns the axis-aligned envelope of a set of points.
// Returns false if pts is empty.
func BoundingBoxOf(pts []PointF) (AxisAlignedRectangle, bool) {
	if len(pts) == 0 {
		return AxisAlignedRectangle{}, false
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := pts[0].X, pts[0].Y
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return AxisAlignedRectangle{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true
}

// ClampToBounds clamps every polygon point into [0, width] x [0, height].
func (poly Polygon) ClampToBounds(width, height float64) Polygon {
	out := make(Polygon, len(poly))
	for i, p := range poly {
		out[i] = PointF{
			X: math.Min(math.Max(p.X, 0), width),
			Y: math.Min(math.Max(p.Y, 0), height),
		}
	}
	return out
}

// Scale returns a copy of poly scaled by (sx, sy) about the origin.
func (poly Polygon) Scale(sx, sy float64) Polygon {
	out := make(Polygon, len(poly))
	for i, p := range poly {
		out[i] = PointF{X: p.X * sx, Y: p.Y * sy}
	}
	return out
}

// Offset returns a copy of poly translated by (dx, dy).
func (poly Polygon) Offset(dx, dy float64) Polygon {
	out := make(Polygon, len(poly))
	for i, p := range poly {
		out[i] = PointF{X: p.X + dx, Y: p.Y + dy}
	}
	return out
}

func cross(o, a, b PointF) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

package geometry

import "math"

// IoUBoxes returns the intersection-over-union of two axis-aligned
// rectangles.
func IoUBoxes(a, b AxisAlignedRectangle) float64 {
	x1 := math.Max(a.X, b.X)
	y1 := math.Max(a.Y, b.Y)
	x2 := math.Min(a.X+a.Width, b.X+b.Width)
	y2 := math.Min(a.Y+a.Height, b.Y+b.Height)
	if x2 <= x1 || y2 <= y1 {
		return 0
	}
	inter := (x2 - x1) * (y2 - y1)
	union := a.Width*a.Height + b.Width*b.Height - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// IoUPolygons returns the intersection-over-union of two polygons via
// Sutherland-Hodgman clipping of a against b, falling back to 0 when either
// polygon is degenerate. a may be non-convex; b is used as the clip polygon,
// so the intersection is exact only when b is convex.
func IoUPolygons(a, b Polygon) float64 {
	if len(a) < 3 || len(b) < 3 {
		return 0
	}
	areaA := math.Abs(a.Area())
	areaB := math.Abs(b.Area())
	if areaA == 0 || areaB == 0 {
		return 0
	}
	clip := ensureCCW(b)
	subject := ensureCCW(a)
	inter := clipPolygon(subject, clip)
	interArea := math.Abs(inter.Area())
	union := areaA + areaB - interArea
	if union <= 0 {
		return 0
	}
	return interArea / union
}

func ensureCCW(p Polygon) Polygon {
	if p.Area() < 0 {
		out := make(Polygon, len(p))
		for i, pt := range p {
			out[len(p)-1-i] = pt
		}
		return out
	}
	return p.Clone()
}

// clipPolygon runs Sutherland-Hodgman clipping of subject against the
// convex clip polygon clipPoly.
func clipPolygon(subject, clipPoly Polygon) Polygon {
	output := subject
	n := len(clipPoly)
	for i := 0; i < n && len(output) > 0; i++ {
		a := clipPoly[i]
		b := clipPoly[(i+1)%n]
		output = clipEdge(output, a, b)
	}
	return output
}

func clipEdge(poly Polygon, a, b PointF) Polygon {
	if len(poly) == 0 {
		return poly
	}
	out := make(Polygon, 0, len(poly)+1)
	n := len(poly)
	for i := range n {
		cur := poly[i]
		prev := poly[(i-1+n)%n]
		curIn := cross(a, b, cur) >= 0
		prevIn := cross(a, b, prev) >= 0
		if curIn {
			if !prevIn {
				if p, ok := lineIntersect(a, b, prev, cur); ok {
					out = append(out, p)
				}
			}
			out = append(out, cur)
		} else if prevIn {
			if p, ok := lineIntersect(a, b, prev, cur); ok {
				out = append(out, p)
			}
		}
	}
	return out
}

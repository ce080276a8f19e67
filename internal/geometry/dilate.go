package geometry

import "math"

// arcSegments controls how many line segments approximate a round join; a
// fixed count is enough fidelity for text-region dilation at typical sizes.
const arcSegments = 8

// Dilate offsets poly outward by distance d = poly.Area() * ratio /
// poly.Perimeter(), using round joins (Vatti-style offsetting) for growth
// and mitered corners for shrinkage. poly is assumed convex (the detector
// calls Dilate on a convex hull); a perimeter of zero, or fewer than 3
// points, is degenerate and returns false.
func Dilate(poly Polygon, ratio float64) (Polygon, bool) {
	if len(poly) < 3 {
		return nil, false
	}
	perimeter := poly.Perimeter()
	if perimeter == 0 {
		return nil, false
	}
	area := math.Abs(poly.Area())
	d := area * ratio / perimeter
	return offset(poly, d), true
}

type offsetEdge struct {
	a, b   PointF
	nx, ny float64
}

// offset moves every edge of poly outward by d along its outward normal and
// reconnects them, using round joins for d > 0 and mitered joins for d < 0.
func offset(poly Polygon, d float64) Polygon {
	n := len(poly)
	if d == 0 {
		return poly.Clone()
	}

	ccw := poly.Area() >= 0

	edges := make([]offsetEdge, n)
	for i := range n {
		a := poly[i]
		b := poly[(i+1)%n]
		ex, ey := b.X-a.X, b.Y-a.Y
		length := math.Hypot(ex, ey)
		if length == 0 {
			edges[i] = offsetEdge{a: a, b: b, nx: 0, ny: 0}
			continue
		}
		// Outward normal for a CCW polygon is the edge direction rotated -90°;
		// for CW input it's rotated +90°.
		var nx, ny float64
		if ccw {
			nx, ny = ey/length, -ex/length
		} else {
			nx, ny = -ey/length, ex/length
		}
		edges[i] = offsetEdge{
			a:  PointF{X: a.X + nx*d, Y: a.Y + ny*d},
			b:  PointF{X: b.X + nx*d, Y: b.Y + ny*d},
			nx: nx, ny: ny,
		}
	}

	out := make(Polygon, 0, n*(arcSegments+1))
	for i := range n {
		prev := edges[(i+n-1)%n]
		cur := edges[i]
		vertex := poly[i]

		if d > 0 {
			out = append(out, roundJoin(vertex, prev.b, cur.a, d)...)
		} else {
			out = append(out, miterJoin(prev, cur, vertex))
		}
		out = append(out, cur.a, cur.b)
	}
	return out
}

// roundJoin returns points approximating a circular arc of radius |d|
// centered at vertex, sweeping from "from" to "to".
func roundJoin(vertex, from, to PointF, d float64) []PointF {
	a0 := math.Atan2(from.Y-vertex.Y, from.X-vertex.X)
	a1 := math.Atan2(to.Y-vertex.Y, to.X-vertex.X)
	delta := a1 - a0
	for delta <= -math.Pi {
		delta += 2 * math.Pi
	}
	for delta > math.Pi {
		delta -= 2 * math.Pi
	}
	r := math.Abs(d)
	pts := make([]PointF, 0, arcSegments+1)
	pts = append(pts, from)
	for s := 1; s < arcSegments; s++ {
		t := a0 + delta*float64(s)/float64(arcSegments)
		pts = append(pts, PointF{X: vertex.X + r*math.Cos(t), Y: vertex.Y + r*math.Sin(t)})
	}
	return pts
}

// miterJoin returns the intersection of the two offset edges meeting at
// vertex; falls back to the vertex itself if the edges are parallel.
func miterJoin(prev, cur offsetEdge, vertex PointF) PointF {
	p, ok := lineIntersect(prev.a, prev.b, cur.a, cur.b)
	if !ok {
		return vertex
	}
	return p
}

func lineIntersect(a1, a2, b1, b2 PointF) (PointF, bool) {
	d1x, d1y := a2.X-a1.X, a2.Y-a1.Y
	d2x, d2y := b2.X-b1.X, b2.Y-b1.Y
	denom := d1x*d2y - d1y*d2x
	if math.Abs(denom) < 1e-12 {
		return PointF{}, false
	}
	t := ((b1.X-a1.X)*d2y - (b1.Y-a1.Y)*d2x) / denom
	return PointF{X: a1.X + t*d1x, Y: a1.Y + t*d1y}, true
}

package geometry

import "math"

// AxisAlignedRectangle is (x, y, width, height) with (x, y) the top-left
// corner. Width and height must be > 0 for a non-degenerate rectangle.
type AxisAlignedRectangle struct {
	X, Y, Width, Height float64
}

// Contains reports whether p lies within the rectangle (inclusive).
func (r AxisAlignedRectangle) Contains(p PointF) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// RotatedRectangle is (x, y, width, height, angle). (x, y) is the top-left
// corner of the rectangle's own local frame; width runs along
// (cos angle, sin angle) and height runs perpendicular to it.
type RotatedRectangle struct {
	X, Y, Width, Height, Angle float64
}

// Corners returns the 4 corners of the rectangle in clockwise order,
// starting at (X, Y).
func (r RotatedRectangle) Corners() [4]PointF {
	cos, sin := math.Cos(r.Angle), math.Sin(r.Angle)
	origin := PointF{X: r.X, Y: r.Y}
	wVec := PointF{X: r.Width * cos, Y: r.Width * sin}
	hVec := PointF{X: -r.Height * sin, Y: r.Height * cos}
	return [4]PointF{
		origin,
		origin.Add(wVec),
		origin.Add(wVec).Add(hVec),
		origin.Add(hVec),
	}
}

// AxisAligned returns the axis-aligned envelope of the rectangle's corners.
func (r RotatedRectangle) AxisAligned() AxisAlignedRectangle {
	corners := r.Corners()
	box, _ := BoundingBoxOf(corners[:])
	return box
}

// Polygon returns the rectangle's 4 corners as a Polygon (clockwise).
func (r RotatedRectangle) Polygon() Polygon {
	c := r.Corners()
	return Polygon{c[0], c[1], c[2], c[3]}
}

// MinAreaRect computes the minimum-area enclosing rectangle of a point set
// using rotating calipers over the convex hull: for each hull edge, project
// every hull point onto the edge direction and its perpendicular, take the
// axis-aligned envelope in that rotated frame, and keep the envelope with
// smallest area. Ties are broken by preferring the orientation whose angle
// is nearest to zero.
func MinAreaRect(pts []PointF) (RotatedRectangle, bool) {
	hull, ok := Hull(pts)
	if !ok {
		return RotatedRectangle{}, false
	}

	const epsArea = 1e-9
	bestArea := math.Inf(1)
	var best RotatedRectangle
	haveBest := false

	n := len(hull)
	for i := range n {
		a := hull[i]
		b := hull[(i+1)%n]
		dx, dy := b.X-a.X, b.Y-a.Y
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		ux, uy := dx/length, dy/length // edge direction
		vx, vy := -uy, ux              // perpendicular

		minS, maxS := math.Inf(1), math.Inf(-1)
		minT, maxT := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			s := p.X*ux + p.Y*uy
			t := p.X*vx + p.Y*vy
			minS, maxS = math.Min(minS, s), math.Max(maxS, s)
			minT, maxT = math.Min(minT, t), math.Max(maxT, t)
		}

		width := maxS - minS
		height := maxT - minT
		area := width * height

		candidate := rectFromFrame(ux, uy, vx, vy, minS, maxS, minT, maxT)

		switch {
		case !haveBest:
			best, bestArea, haveBest = candidate, area, true
		case area < bestArea-epsArea:
			best, bestArea = candidate, area
		case math.Abs(area-bestArea) <= epsArea && math.Abs(normalizeAngle(candidate.Angle)) < math.Abs(normalizeAngle(best.Angle)):
			best, bestArea = candidate, area
		}
	}

	if !haveBest {
		return RotatedRectangle{}, false
	}
	return canonicalize(best), true
}

// rectFromFrame reconstructs a RotatedRectangle from a projection frame
// (u, v axes and their [min,max] extents) back into world coordinates. The
// longer extent becomes width, with angle measured along that axis.
func rectFromFrame(ux, uy, vx, vy, minS, maxS, minT, maxT float64) RotatedRectangle {
	corner := PointF{X: ux*minS + vx*minT, Y: uy*minS + vy*minT}
	sExtent := maxS - minS
	tExtent := maxT - minT

	if sExtent >= tExtent {
		return RotatedRectangle{
			X: corner.X, Y: corner.Y,
			Width: sExtent, Height: tExtent,
			Angle: math.Atan2(uy, ux),
		}
	}
	// Rotate the local frame by 90 degrees so width runs along the longer
	// extent; the new origin is the corner that was previously "top-right".
	newOrigin := PointF{X: ux*maxS + vx*minT, Y: uy*maxS + vy*minT}
	return RotatedRectangle{
		X: newOrigin.X, Y: newOrigin.Y,
		Width: tExtent, Height: sExtent,
		Angle: math.Atan2(vy, vx),
	}
}

// canonicalize normalizes the angle into (-pi/2, pi/2] by turning the local
// frame half a turn when needed (the origin moves to the opposite corner),
// so that |angle| is minimized without changing the rectangle's geometry.
func canonicalize(r RotatedRectangle) RotatedRectangle {
	angle := normalizeAngle(r.Angle)
	if angle == r.Angle {
		return r
	}
	corners := r.Corners()
	return RotatedRectangle{
		X: corners[2].X, Y: corners[2].Y,
		Width: r.Width, Height: r.Height,
		Angle: angle,
	}
}

// normalizeAngle wraps an angle into (-pi/2, pi/2], the natural range for a
// rectangle orientation (width axis only, no directionality).
func normalizeAngle(angle float64) float64 {
	for angle > math.Pi/2 {
		angle -= math.Pi
	}
	for angle <= -math.Pi/2 {
		angle += math.Pi
	}
	return angle
}

// RectFromClockwiseCorners reconstructs a RotatedRectangle from 4 corners
// given in clockwise order. It verifies two pairs of parallel sides and
// picks the longer pair as width; the "top edge" is the long edge with the
// smaller y-midpoint. Kept only as a validator: MinAreaRect is the
// canonical construction path (the corners-only reconstruction has a known
// edge-case ambiguity when both edge pairs tie in length).
func RectFromClockwiseCorners(c [4]PointF) (RotatedRectangle, bool) {
	side := func(i int) PointF { return c[(i+1)%4].Sub(c[i]) }
	s0, s1, s2, s3 := side(0), side(1), side(2), side(3)

	if !roughlyParallel(s0, s2) || !roughlyParallel(s1, s3) {
		return RotatedRectangle{}, false
	}

	len0, len1 := s0.Hypot(), s1.Hypot()
	var widthSide int
	if len0 >= len1 {
		widthSide = 0
	} else {
		widthSide = 1
	}

	// The two candidate long edges are (widthSide) and (widthSide+2); pick
	// the one with the smaller y-midpoint as "top".
	edgeA := widthSide
	edgeB := widthSide + 2
	midA := (c[edgeA].Y + c[(edgeA+1)%4].Y) / 2
	midB := (c[edgeB].Y + c[(edgeB+1)%4].Y) / 2
	top := edgeA
	if midB < midA {
		top = edgeB
	}

	start := c[top]
	end := c[(top+1)%4]
	vec := end.Sub(start)
	width := vec.Hypot()
	angle := math.Atan2(vec.Y, vec.X)

	// Height is the perpendicular extent: distance from the opposite corner.
	opposite := c[(top+3)%4]
	vx, vy := -math.Sin(angle), math.Cos(angle)
	height := math.Abs((opposite.X-start.X)*vx + (opposite.Y-start.Y)*vy)

	return RotatedRectangle{X: start.X, Y: start.Y, Width: width, Height: height, Angle: angle}, true
}

func roughlyParallel(a, b PointF) bool {
	crossProd := a.X*b.Y - a.Y*b.X
	la, lb := a.Hypot(), b.Hypot()
	if la == 0 || lb == 0 {
		return false
	}
	return math.Abs(crossProd/(la*lb)) < 1e-3
}

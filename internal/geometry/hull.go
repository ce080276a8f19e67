package geometry

import (
	"math"
	"sort"
)

// ConvexHull is a Polygon with the additional invariant that it is strictly
// convex, wound counter-clockwise, has at least 3 points, and contains no
// three collinear points.
type ConvexHull Polygon

// Hull computes the convex hull of a point set using a Graham scan: pick the
// anchor with the smallest y (ties broken by smallest x), sort the rest by
// polar angle around the anchor (collinear points ordered by ascending
// distance), then scan keeping only left turns. Degenerate input (fewer than
// 3 points after scanning, including collinear-only input) returns false.
func Hull(pts []PointF) (ConvexHull, bool) {
	uniq := dedup(pts)
	if len(uniq) < 3 {
		return nil, false
	}

	anchor := uniq[0]
	for _, p := range uniq[1:] {
		if p.Y < anchor.Y || (p.Y == anchor.Y && p.X < anchor.X) {
			anchor = p
		}
	}

	rest := make([]PointF, 0, len(uniq)-1)
	for _, p := range uniq {
		if p != anchor {
			rest = append(rest, p)
		}
	}

	sort.Slice(rest, func(i, j int) bool {
		ai, aj := polarAngle(anchor, rest[i]), polarAngle(anchor, rest[j])
		if ai != aj {
			return ai < aj
		}
		return anchor.Dist(rest[i]) < anchor.Dist(rest[j])
	})

	stack := make([]PointF, 0, len(rest)+1)
	stack = append(stack, anchor)
	for _, p := range rest {
		for len(stack) >= 2 && cross(stack[len(stack)-2], stack[len(stack)-1], p) <= 0 {
			stack = stack[:len(stack)-1]
		}
		stack = append(stack, p)
	}

	if len(stack) < 3 {
		return nil, false
	}
	return ConvexHull(stack), true
}

func polarAngle(anchor, p PointF) float64 {
	return math.Atan2(p.Y-anchor.Y, p.X-anchor.X)
}

func dedup(pts []PointF) []PointF {
	seen := make(map[PointF]struct{}, len(pts))
	out := make([]PointF, 0, len(pts))
	for _, p := range pts {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Contains reports whether p lies inside or on the boundary of the hull.
// Assumes h is wound CCW per the Hull invariant.
func (h ConvexHull) Contains(p PointF) bool {
	n := len(h)
	if n < 3 {
		return false
	}
	for i := range n {
		a := h[i]
		b := h[(i+1)%n]
		if cross(a, b, p) < -1e-9 {
			return false
		}
	}
	return true
}

package geometry

import "math"

// Simplify reduces poly using Visvalingam-Whyatt: each vertex is scored by
// the area of the triangle it forms with its two neighbors, and the
// smallest-area vertex is repeatedly removed (recomputing its neighbors'
// scores) until the next smallest area exceeds aggressiveness or only 3
// vertices remain. Vertex order is preserved.
func Simplify(poly Polygon, aggressiveness float64) Polygon {
	n := len(poly)
	if n <= 3 {
		return poly.Clone()
	}

	type node struct {
		pt         PointF
		prev, next int
		alive      bool
		area       float64
	}

	nodes := make([]node, n)
	for i, p := range poly {
		nodes[i] = node{
			pt:    p,
			prev:  (i - 1 + n) % n,
			next:  (i + 1) % n,
			alive: true,
		}
	}
	triArea := func(a, b, c PointF) float64 {
		return math.Abs((b.X-a.X)*(c.Y-a.Y)-(c.X-a.X)*(b.Y-a.Y)) / 2
	}
	for i := range nodes {
		nodes[i].area = triArea(nodes[nodes[i].prev].pt, nodes[i].pt, nodes[nodes[i].next].pt)
	}

	alive := n
	for alive > 3 {
		minIdx := -1
		minArea := math.Inf(1)
		for i := range nodes {
			if nodes[i].alive && nodes[i].area < minArea {
				minArea = nodes[i].area
				minIdx = i
			}
		}
		if minIdx == -1 || minArea > aggressiveness {
			break
		}

		prev, next := nodes[minIdx].prev, nodes[minIdx].next
		nodes[minIdx].alive = false
		nodes[prev].next = next
		nodes[next].prev = prev
		nodes[prev].area = triArea(nodes[nodes[prev].prev].pt, nodes[prev].pt, nodes[next].pt)
		nodes[next].area = triArea(nodes[prev].pt, nodes[next].pt, nodes[nodes[next].next].pt)
		alive--
	}

	out := make(Polygon, 0, alive)
	// Walk the remaining ring from an arbitrary surviving node to preserve order.
	start := -1
	for i := range nodes {
		if nodes[i].alive {
			start = i
			break
		}
	}
	if start == -1 {
		return poly.Clone()
	}
	cur := start
	for {
		out = append(out, nodes[cur].pt)
		cur = nodes[cur].next
		if cur == start {
			break
		}
	}
	return out
}

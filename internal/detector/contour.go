package detector

import "github.com/MeKo-Tech/pogo/internal/geometry"

// traceContourMoore extracts the boundary of a labeled component via
// Moore-neighborhood tracing, starting from the first boundary pixel found
// within the component's bounding box. Returns pixel-center coordinates in
// clockwise order; collinear interior points are dropped as they are
// pushed.
func traceContourMoore(labels []int, w, h, label int, st componentStats) geometry.Polygon {
	inBounds := func(x, y int) bool { return x >= 0 && y >= 0 && x < w && y < h }
	isLabel := func(x, y int) bool { return inBounds(x, y) && labels[y*w+x] == label }
	isBoundary := func(x, y int) bool {
		if !isLabel(x, y) {
			return false
		}
		return !isLabel(x+1, y) || !isLabel(x-1, y) || !isLabel(x, y+1) || !isLabel(x, y-1)
	}

	sx, sy := -1, -1
	for y := st.minY; y <= st.maxY && sx == -1; y++ {
		for x := st.minX; x <= st.maxX; x++ {
			if isBoundary(x, y) {
				sx, sy = x, y
				break
			}
		}
	}
	if sx == -1 {
		return nil
	}

	// 8-neighborhood in clockwise order starting East.
	ndx := [8]int{1, 1, 0, -1, -1, -1, 0, 1}
	ndy := [8]int{0, 1, 1, 1, 0, -1, -1, -1}
	dirIndex := func(dx, dy int) int {
		for i := range 8 {
			if ndx[i] == dx && ndy[i] == dy {
				return i
			}
		}
		return 0
	}

	cx, cy := sx, sy
	bx, by := sx-1, sy
	startCx, startCy, startBx, startBy := cx, cy, bx, by

	pts := make(geometry.Polygon, 0, 64)
	push := func(x, y int) {
		p := geometry.PointF{X: float64(x), Y: float64(y)}
		if n := len(pts); n >= 2 {
			a, b := pts[n-2], pts[n-1]
			v1x, v1y := b.X-a.X, b.Y-a.Y
			v2x, v2y := p.X-b.X, p.Y-b.Y
			if v1x*v2y-v1y*v2x == 0 {
				pts = pts[:n-1]
			}
		}
		pts = append(pts, p)
	}
	push(cx, cy)

	maxSteps := w*h*4 + 8
	for steps := 0; steps < maxSteps; steps++ {
		dx, dy := bx-cx, by-cy
		start := (dirIndex(dx, dy) + 1) % 8
		found := false
		for k := range 8 {
			i := (start + k) % 8
			tx, ty := cx+ndx[i], cy+ndy[i]
			if isLabel(tx, ty) {
				bx, by = cx, cy
				cx, cy = tx, ty
				if n := len(pts); n == 0 || pts[n-1].X != float64(cx) || pts[n-1].Y != float64(cy) {
					push(cx, cy)
				}
				found = true
				break
			}
			bx, by = tx, ty
		}
		if !found {
			break
		}
		if cx == startCx && cy == startCy && bx == startBx && by == startBy {
			break
		}
	}

	if n := len(pts); n >= 2 && pts[0].X == pts[n-1].X && pts[0].Y == pts[n-1].Y {
		pts = pts[:n-1]
	}
	return pts
}

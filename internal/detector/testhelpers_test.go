package detector

import "github.com/MeKo-Tech/pogo/internal/geometry"

func rectAt(x, y, w, h float64) geometry.AxisAlignedRectangle {
	return geometry.AxisAlignedRectangle{X: x, Y: y, Width: w, Height: h}
}

func rotAt(x, y float64) geometry.RotatedRectangle {
	return geometry.RotatedRectangle{X: x, Y: y, Width: 10, Height: 10}
}

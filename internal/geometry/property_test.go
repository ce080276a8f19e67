package geometry

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func genPointF() gopter.Gen {
	return gopter.CombineGens(
		gen.Float64Range(-100, 100),
		gen.Float64Range(-100, 100),
	).Map(func(vals []interface{}) PointF {
		return PointF{X: vals[0].(float64), Y: vals[1].(float64)}
	})
}

func genPolygon(n int) gopter.Gen {
	return gen.SliceOfN(n, genPointF())
}

func TestProperty_HullSubsetAndCCW(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("hull points come from the input set", prop.ForAll(
		func(pts []PointF) bool {
			hull, ok := Hull(pts)
			if !ok {
				return true
			}
			set := make(map[PointF]bool, len(pts))
			for _, p := range pts {
				set[p] = true
			}
			for _, p := range hull {
				if !set[p] {
					return false
				}
			}
			return Polygon(hull).Area() > 0 // CCW winding has positive signed area
		},
		genPolygon(10),
	))

	properties.TestingRun(t)
}

func TestProperty_DilationMonotonicity(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("positive ratio strictly grows area, negative strictly shrinks", prop.ForAll(
		func(ratio float64) bool {
			square := Polygon{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
			base := math.Abs(square.Area())

			grown, ok := Dilate(square, math.Abs(ratio)+0.05)
			if !ok {
				return false
			}
			if math.Abs(Polygon(grown).Area()) <= base {
				return false
			}

			shrunk, ok := Dilate(square, -(math.Abs(ratio)*0.5 + 0.01))
			if !ok {
				return false
			}
			return math.Abs(Polygon(shrunk).Area()) < base
		},
		gen.Float64Range(0.01, 0.3),
	))

	properties.TestingRun(t)
}

func TestProperty_RotatedRectAxisAlignedEnvelope(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("AxisAligned equals the envelope of Corners()", prop.ForAll(
		func(x, y, w, h, angle float64) bool {
			r := RotatedRectangle{X: x, Y: y, Width: w + 1, Height: h + 1, Angle: angle}
			box := r.AxisAligned()
			corners := r.Corners()
			want, _ := BoundingBoxOf(corners[:])
			return math.Abs(box.X-want.X) < 1e-9 &&
				math.Abs(box.Y-want.Y) < 1e-9 &&
				math.Abs(box.Width-want.Width) < 1e-9 &&
				math.Abs(box.Height-want.Height) < 1e-9
		},
		gen.Float64Range(-50, 50),
		gen.Float64Range(-50, 50),
		gen.Float64Range(0, 50),
		gen.Float64Range(0, 50),
		gen.Float64Range(-math.Pi, math.Pi),
	))

	properties.TestingRun(t)
}

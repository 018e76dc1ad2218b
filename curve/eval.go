package curve

import (
	"math"
	"sort"
)

// Linear returns a piecewise-linear evaluator over the knots. Outside the
// knot range the end values are held. An empty curve evaluates to NaN, which
// the synthesizer treats as silence.
func Linear(a Ascending) Func {
	pts := a.points
	return func(x float64) float64 {
		n := len(pts)
		if n == 0 || math.IsNaN(x) {
			return math.NaN()
		}
		if x <= pts[0].X {
			return pts[0].Y
		}
		if x >= pts[n-1].X {
			return pts[n-1].Y
		}
		i := sort.Search(n, func(i int) bool { return pts[i].X > x })
		p0, p1 := pts[i-1], pts[i]
		dx := p1.X - p0.X
		if dx <= 0 {
			return p1.Y
		}
		return p0.Y + (x-p0.X)/dx*(p1.Y-p0.Y)
	}
}

// Sampled returns an evaluator that reads arr at round(x*scale), the way a
// spectrum array is addressed by frequency. Out of range positions yield NaN.
func Sampled(arr []float64, scale float64) Func {
	return func(x float64) float64 {
		i := int(math.Round(x * scale))
		if i < 0 || i >= len(arr) {
			return math.NaN()
		}
		return arr[i]
	}
}

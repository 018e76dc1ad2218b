// Package curve holds the knot-based curve types shared by the codec, the
// state descriptor and the synthesizer.
package curve

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrNotAscending is returned when a curve's x values are out of order.
var ErrNotAscending = errors.New("curve x values are not ascending")

// Point is a single knot of a curve.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Curve is an ordered sequence of knots.
type Curve []Point

// Func evaluates a curve at a position (time in s or frequency in Hz).
type Func func(x float64) float64

// Xs returns the x values of the knots.
func (c Curve) Xs() []float64 {
	out := make([]float64, len(c))
	for i, p := range c {
		out[i] = p.X
	}
	return out
}

// Ys returns the y values of the knots.
func (c Curve) Ys() []float64 {
	out := make([]float64, len(c))
	for i, p := range c {
		out[i] = p.Y
	}
	return out
}

// LastX returns the x value of the last knot.
func (c Curve) LastX() (float64, bool) {
	if len(c) == 0 {
		return 0, false
	}
	return c[len(c)-1].X, true
}

// Equal reports whether both curves have the same knots within eps per coordinate.
func (c Curve) Equal(other Curve, eps float64) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if math.Abs(c[i].X-other[i].X) > eps || math.Abs(c[i].Y-other[i].Y) > eps {
			return false
		}
	}
	return true
}

// Clone returns a copy that does not share the backing array.
func (c Curve) Clone() Curve {
	if c == nil {
		return nil
	}
	return append(Curve(nil), c...)
}

// FromPairs builds a curve from {x, y} literal pairs.
func FromPairs(pairs [][2]float64) Curve {
	out := make(Curve, len(pairs))
	for i, p := range pairs {
		out[i] = Point{X: p[0], Y: p[1]}
	}
	return out
}

// FromXY zips two equally long value slices into a curve.
func FromXY(xs, ys []float64) (Curve, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("x/y length mismatch: %d != %d", len(xs), len(ys))
	}
	out := make(Curve, len(xs))
	for i := range xs {
		out[i] = Point{X: xs[i], Y: ys[i]}
	}
	return out, nil
}

// Ascending is a curve whose x values are known to be non-decreasing.
// The zero value is an empty curve.
type Ascending struct {
	points Curve
}

// NewAscending validates the knot order and returns the checked curve.
func NewAscending(points Curve) (Ascending, error) {
	for i := 1; i < len(points); i++ {
		if !(points[i].X >= points[i-1].X) {
			return Ascending{}, fmt.Errorf("knot %d (x=%g) after x=%g: %w", i, points[i].X, points[i-1].X, ErrNotAscending)
		}
	}
	return Ascending{points: points.Clone()}, nil
}

// SortAscending returns a checked curve with the knots sorted by x.
// The sort is stable so knots sharing an x keep their relative order.
func SortAscending(points Curve) Ascending {
	sorted := points.Clone()
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })
	return Ascending{points: sorted}
}

// MustAscending is NewAscending for literal knot tables.
func MustAscending(points Curve) Ascending {
	a, err := NewAscending(points)
	if err != nil {
		panic(err)
	}
	return a
}

// Points returns a copy of the knots.
func (a Ascending) Points() Curve {
	return a.points.Clone()
}

// Len returns the number of knots.
func (a Ascending) Len() int {
	return len(a.points)
}

package dsp

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// MinDb is the level below which dB values are treated as silence.
const MinDb = -200.0

// AmplitudeToDb converts a linear amplitude to dB.
func AmplitudeToDb(a float64) float64 {
	return 20 * math.Log10(a)
}

// PowerToDb converts a power value to dB. Zero power yields -Inf.
func PowerToDb(p float64) float64 {
	return 10 * math.Log10(p)
}

// DbToAmplitude converts dB to a linear amplitude.
func DbToAmplitude(db float64) float64 {
	return math.Pow(10, db/20)
}

// DbToPower converts dB to a power value.
func DbToPower(db float64) float64 {
	return math.Pow(10, db/10)
}

// DbToAmplitudeOr0 is DbToAmplitude with non-finite input and levels below
// MinDb mapped to exactly 0.
func DbToAmplitudeOr0(db float64) float64 {
	if !isFinite(db) || db < MinDb {
		return 0
	}
	a := DbToAmplitude(db)
	if !isFinite(a) {
		return 0
	}
	return a
}

// DbToPowerOr0 is DbToPower with the same silence rules as DbToAmplitudeOr0.
func DbToPowerOr0(db float64) float64 {
	if !isFinite(db) || db < MinDb {
		return 0
	}
	p := DbToPower(db)
	if !isFinite(p) {
		return 0
	}
	return p
}

// Map applies f to every element and returns a new slice.
func Map(x []float64, f func(float64) float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = f(v)
	}
	return out
}

// RMS returns the root mean square of x, 0 for an empty slice.
func RMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(x, x) / float64(len(x)))
}

// MaxAbs returns the largest absolute sample value, 0 for an empty slice.
func MaxAbs(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return floats.Norm(x, math.Inf(1))
}

// SimpleMovingAverage returns the centered moving average of x over width
// samples. Near the edges only the samples inside the array are averaged.
func SimpleMovingAverage(x []float64, width int) []float64 {
	n := len(x)
	out := make([]float64, n)
	if width <= 1 {
		copy(out, x)
		return out
	}
	// prefix[i] is the sum of x[:i].
	prefix := make([]float64, n+1)
	for i, v := range x {
		prefix[i+1] = prefix[i] + v
	}
	half := width / 2
	for i := 0; i < n; i++ {
		lo := max(i-half, 0)
		hi := min(i-half+width, n)
		out[i] = (prefix[hi] - prefix[lo]) / float64(hi-lo)
	}
	return out
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

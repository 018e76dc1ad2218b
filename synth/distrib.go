package synth

import (
	"math"

	"github.com/cwbudde/algo-approx"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-specsyn/curve"
	"github.com/cwbudde/algo-specsyn/dsp"
)

// DistribParams configures ComputeDistrib.
type DistribParams struct {
	Amplitude     curve.Func // time [s] -> overall level [dB]
	Frequency     curve.Func // time [s] -> f0 [Hz]
	EvenAmplShift float64    // level shift for even harmonics [dB]
	Duration      float64    // [s]
	MaxFreq       float64    // upper frequency of the histogram [Hz]
	Resolution    int        // number of histogram slots
	StepWidth     float64    // time step [s]
}

// DefaultDistribParams returns the histogram settings of the spectrum view:
// 500 slots up to 5.5 kHz, sampled every 5 ms.
func DefaultDistribParams() DistribParams {
	return DistribParams{
		MaxFreq:    5500,
		Resolution: 500,
		StepWidth:  0.005,
	}
}

// slotEpsilon keeps harmonics that land exactly on a slot boundary in the
// upper slot despite rounding.
const slotEpsilon = 1e-6

// ComputeDistrib returns the relative energy distribution of the harmonics
// over frequency. Slot i covers [i*d, (i+1)*d) with d = MaxFreq/Resolution.
// Values are in dB, shifted so that the maximum is 0. Empty slots are -Inf.
// Only relative energy is meaningful; the result drives a visual overlay.
func ComputeDistrib(p DistribParams) []float64 {
	if p.Resolution <= 0 {
		return nil
	}
	acc := make([]float64, p.Resolution)
	if p.StepWidth > 0 && p.MaxFreq > 0 {
		d := p.MaxFreq / float64(p.Resolution)
		steps := int(math.Floor(p.Duration / p.StepWidth))
		for step := 0; step < steps; step++ {
			t := float64(step) * p.StepWidth
			a0Db := p.Amplitude(t)
			powerOdd := fastDbToPowerOr0(a0Db)
			powerEven := fastDbToPowerOr0(a0Db + p.EvenAmplShift)
			f0 := p.Frequency(t)
			if !isFinite(f0) || f0 <= MinF0 {
				continue
			}
			harmonics := int(math.Floor(p.MaxFreq / f0))
			for h := 1; h <= harmonics; h++ {
				f := f0 * float64(h)
				i := int(math.Floor((f + slotEpsilon) / d))
				if i <= 0 || i >= p.Resolution {
					continue
				}
				if h%2 == 0 {
					acc[i] += powerEven
				} else {
					acc[i] += powerOdd
				}
			}
		}
	}
	out := dsp.Map(acc, dsp.PowerToDb)
	normalizeToMax(out, 0)
	return out
}

// normalizeToMax shifts a so that its largest finite value becomes newMax.
func normalizeToMax(a []float64, newMax float64) {
	oldMax := floats.Max(a)
	if !isFinite(oldMax) {
		return
	}
	floats.AddConst(newMax-oldMax, a)
}

// fastDbToPowerOr0 converts dB to power with the fast exponential
// approximation; the distribution is only used for display.
func fastDbToPowerOr0(db float64) float64 {
	if !isFinite(db) || db < dsp.MinDb {
		return 0
	}
	const ln10Over10 = math.Ln10 / 10
	p := float64(approx.FastExp(float32(db * ln10Over10)))
	if !isFinite(p) {
		return 0
	}
	return p
}

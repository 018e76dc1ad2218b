package appstate

import (
	"math"

	"github.com/cwbudde/algo-specsyn/curve"
	"github.com/cwbudde/algo-specsyn/synth"
)

// defaultDuration is used when a time curve has no knots [s].
const defaultDuration = 1.0

// Interpolator turns a knot list into a curve evaluator.
type Interpolator func(curve.Ascending) curve.Func

// Duration returns the sound length: the smaller of the last amplitude
// and frequency knot times.
func (s AppState) Duration() float64 {
	a, okA := s.AmplitudeCurve.Points().LastX()
	f, okF := s.FrequencyCurve.Points().LastX()
	switch {
	case okA && okF:
		d := math.Min(a, f)
		if d > 0 {
			return d
		}
	case okA && a > 0:
		return a
	case okF && f > 0:
		return f
	}
	return defaultDuration
}

// AdjustedFrequencyFunc scales the frequency curve by f0Multiplier.
func AdjustedFrequencyFunc(frequency curve.Func, f0Multiplier float64) curve.Func {
	if f0Multiplier == 1 {
		return frequency
	}
	return func(t float64) float64 {
		return frequency(t) * f0Multiplier
	}
}

// AdjustedSpectrumFunc stretches the spectrum curve by specMultiplier and
// moves it up by specShift Hz.
func AdjustedSpectrumFunc(spectrum curve.Func, specMultiplier, specShift float64) curve.Func {
	if specMultiplier == 1 && specShift == 0 {
		return spectrum
	}
	return func(f float64) float64 {
		return spectrum(f/specMultiplier - specShift)
	}
}

// ShiftedFunc adds a constant level in dB.
func ShiftedFunc(fn curve.Func, shiftDb float64) curve.Func {
	if shiftDb == 0 {
		return fn
	}
	return func(x float64) float64 {
		return fn(x) + shiftDb
	}
}

// SynthParams assembles the synthesizer input. A nil interp selects
// piecewise-linear interpolation.
func (s AppState) SynthParams(interp Interpolator) synth.Params {
	if interp == nil {
		interp = curve.Linear
	}
	spectrum := AdjustedSpectrumFunc(interp(s.SpectrumCurve), s.SpecMultiplier, s.SpecShift)
	return synth.Params{
		SpectrumOdd:  spectrum,
		SpectrumEven: ShiftedFunc(spectrum, s.EvenAmplShift),
		Amplitude:    interp(s.AmplitudeCurve),
		Frequency:    AdjustedFrequencyFunc(interp(s.FrequencyCurve), s.F0Multiplier),
		Duration:     s.Duration(),
		SampleRate:   s.SampleRate,
		AgcRmsLevel:  s.AgcRmsLevel,
	}
}

// DistribParams assembles the harmonic distribution input with the
// default histogram settings.
func (s AppState) DistribParams(interp Interpolator) synth.DistribParams {
	if interp == nil {
		interp = curve.Linear
	}
	p := synth.DefaultDistribParams()
	p.Amplitude = interp(s.AmplitudeCurve)
	p.Frequency = AdjustedFrequencyFunc(interp(s.FrequencyCurve), s.F0Multiplier)
	p.EvenAmplShift = s.EvenAmplShift
	p.Duration = s.Duration()
	return p
}

package spectral

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-specsyn/curve"
	"github.com/cwbudde/algo-specsyn/dsp"
)

// PitchParams configures the harmonic-sum pitch estimator.
type PitchParams struct {
	MinF0        float64 // search range [Hz]
	MaxF0        float64
	Harmonics    int     // harmonics summed per candidate
	MaxFreq      float64 // harmonics above this frequency are ignored [Hz]
	WindowLength float64 // analysis segment length [s]
	Resolution   float64 // candidate step [Hz]
}

// DefaultPitchParams covers the voice and most melodic instruments.
func DefaultPitchParams() PitchParams {
	return PitchParams{
		MinF0:        50,
		MaxF0:        1000,
		Harmonics:    10,
		MaxFreq:      5000,
		WindowLength: 0.1,
		Resolution:   0.25,
	}
}

// silenceRMS is the segment level below which no pitch is reported.
const silenceRMS = 1e-4

// EstimatePitch returns the f0 [Hz] of the segment centered at pos [s], or
// NaN when the segment is silent or no candidate has harmonic energy.
func EstimatePitch(signal []float64, sampleRate, pos float64, p PitchParams) (float64, error) {
	if sampleRate <= 0 {
		return math.NaN(), fmt.Errorf("invalid sample rate %g", sampleRate)
	}
	if p.MinF0 <= 0 || p.MaxF0 <= p.MinF0 || p.Resolution <= 0 || p.Harmonics < 1 {
		return math.NaN(), fmt.Errorf("invalid pitch search parameters")
	}
	half := int(math.Round(p.WindowLength * sampleRate / 2))
	center := int(math.Round(pos * sampleRate))
	lo, hi := center-half, center+half
	if lo < 0 {
		lo = 0
	}
	if hi > len(signal) {
		hi = len(signal)
	}
	if hi-lo < 4 {
		return math.NaN(), nil
	}
	segment := signal[lo:hi]
	if dsp.RMS(segment) < silenceRMS {
		return math.NaN(), nil
	}

	// Zero padding to four times the segment length interpolates the spectrum.
	padded := make([]float64, nextPow2(len(segment))*4)
	copy(padded, dsp.WindowHann.Apply(segment))
	mags, scale, err := magnitudeSpectrum(padded, sampleRate, dsp.WindowNone)
	if err != nil {
		return math.NaN(), err
	}

	best := math.NaN()
	bestScore := 0.0
	for f0 := p.MinF0; f0 <= p.MaxF0; f0 += p.Resolution {
		score := harmonicSum(mags, scale, f0, p.Harmonics, p.MaxFreq)
		if score > bestScore {
			bestScore = score
			best = f0
		}
	}
	return best, nil
}

func harmonicSum(mags []float64, scale, f0 float64, harmonics int, maxFreq float64) float64 {
	var sum float64
	for h := 1; h <= harmonics; h++ {
		f := f0 * float64(h)
		if f > maxFreq {
			break
		}
		sum += interpolate(mags, f*scale)
	}
	return sum
}

func interpolate(a []float64, x float64) float64 {
	i := int(math.Floor(x))
	if i < 0 || i+1 >= len(a) {
		return 0
	}
	frac := x - float64(i)
	return a[i] + frac*(a[i+1]-a[i])
}

// AnalyzeFrequency tracks f0 every stepWidth seconds. The search is limited
// to half an octave around f0Reference to avoid octave jumps. Silent steps
// produce no knot.
func AnalyzeFrequency(signal []float64, sampleRate, f0Reference, stepWidth float64, p PitchParams) (curve.Curve, error) {
	if f0Reference <= 0 || stepWidth <= 0 {
		return nil, fmt.Errorf("invalid frequency analysis parameters: f0 %g, step %g", f0Reference, stepWidth)
	}
	p.MinF0 = f0Reference / math.Sqrt2
	p.MaxF0 = f0Reference * math.Sqrt2
	duration := float64(len(signal)) / sampleRate
	var pts curve.Curve
	for i := 0; ; i++ {
		t := float64(i) * stepWidth
		if t >= duration {
			break
		}
		f0, err := EstimatePitch(signal, sampleRate, t, p)
		if err != nil {
			return nil, err
		}
		if isFinite(f0) {
			pts = append(pts, curve.Point{X: t, Y: f0})
		}
	}
	return pts, nil
}

package spectral

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"

	"github.com/cwbudde/algo-specsyn/curve"
	"github.com/cwbudde/algo-specsyn/dsp"
)

// Params configures AnalyzeSpectrum.
type Params struct {
	SmoothParams
	MaxFreq        float64    // upper limit for generated knots [Hz]
	StepWidth      float64    // knot spacing [Hz]
	AnalysisWindow dsp.Window // applied to the signal before the FFT
}

// DefaultParams returns the analysis settings used by the command-line tools.
func DefaultParams(f0Reference float64) Params {
	return Params{
		SmoothParams: SmoothParams{
			F0Reference: f0Reference,
			Method:      MethodFIRPowerLog,
			Width1:      1,
			Window1:     dsp.WindowParabolic,
			Width2:      1,
			Window2:     dsp.WindowParabolic,
		},
		MaxFreq:        5500,
		StepWidth:      50,
		AnalysisWindow: dsp.WindowHann,
	}
}

// Result is the outcome of AnalyzeSpectrum.
type Result struct {
	Knots    curve.Curve // editable spectrum curve, frequency [Hz] -> level [dB]
	Envelope []float64   // smoothed dB envelope indexed by round(f*Scale)
	Scale    float64     // bins per Hz of the zero-padded FFT
}

// EnvelopeFunc evaluates the unsampled smoothed envelope.
func (r Result) EnvelopeFunc() curve.Func {
	return curve.Sampled(r.Envelope, r.Scale)
}

// AnalyzeSpectrum computes the smoothed spectral envelope of a mono signal
// and samples it into curve knots.
func AnalyzeSpectrum(signal []float64, sampleRate float64, p Params) (Result, error) {
	if sampleRate <= 0 {
		return Result{}, fmt.Errorf("invalid sample rate %g", sampleRate)
	}
	if p.StepWidth <= 0 {
		return Result{}, fmt.Errorf("step width must be > 0")
	}
	spectrum, scale, err := magnitudeSpectrum(signal, sampleRate, p.AnalysisWindow)
	if err != nil {
		return Result{}, err
	}
	env, err := Smooth(spectrum, scale, p.SmoothParams)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Knots:    SpectrumPoints(env, scale, p.StepWidth, p.MaxFreq),
		Envelope: env,
		Scale:    scale,
	}, nil
}

// SpectrumPoints samples a dB envelope every stepWidth Hz below maxFreq.
// Positions outside the array and non-finite values are skipped.
func SpectrumPoints(env []float64, scale, stepWidth, maxFreq float64) curve.Curve {
	var pts curve.Curve
	for f := stepWidth; f < maxFreq; f += stepWidth {
		i := int(math.Round(f * scale))
		if i <= 0 || i >= len(env) {
			continue
		}
		y := env[i]
		if isFinite(y) {
			pts = append(pts, curve.Point{X: f, Y: y})
		}
	}
	return pts
}

// magnitudeSpectrum returns the linear amplitude spectrum of the windowed
// signal and the bins-per-Hz scaling factor. The signal is trimmed to an even
// length and zero padded to the next power of two. The scale follows the
// padded size, so bin k lies at k/scale Hz rather than k*sampleRate/N.
func magnitudeSpectrum(signal []float64, sampleRate float64, w dsp.Window) ([]float64, float64, error) {
	n := len(signal) / 2 * 2
	if n < 2 {
		return nil, 0, fmt.Errorf("signal too short for spectrum analysis: %d samples", len(signal))
	}
	windowed := w.Apply(signal[:n])
	size := nextPow2(n)
	buf := make([]float64, size)
	copy(buf, windowed)

	plan, err := algofft.NewPlanReal64(size)
	if err != nil {
		return nil, 0, fmt.Errorf("fft plan: %w", err)
	}
	spec := make([]complex128, size/2+1)
	if err := plan.Forward(spec, buf); err != nil {
		return nil, 0, fmt.Errorf("fft: %w", err)
	}

	mags := make([]float64, len(spec))
	for k, c := range spec {
		mags[k] = cmplx.Abs(c)
	}
	return mags, float64(size) / sampleRate, nil
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Package synth renders periodic sounds from spectrum, amplitude and
// frequency curves by additive harmonic synthesis.
package synth

import (
	"math"

	"github.com/cwbudde/algo-specsyn/curve"
	"github.com/cwbudde/algo-specsyn/dsp"
)

const (
	// MinF0 is the voicing threshold. Samples with a lower or non-finite
	// fundamental frequency are rendered as silence.
	MinF0 = 25.0
	// nyquistGuard keeps the highest harmonic this far below Nyquist [Hz].
	nyquistGuard = 1000.0
	// clipCeiling is the peak level AdjustGain falls back to when the RMS
	// target would clip.
	clipCeiling = 0.99

	twoPi = 2 * math.Pi
)

// Params bundles the curve evaluators and scalar controls for one render.
type Params struct {
	SpectrumOdd  curve.Func // frequency [Hz] -> level [dB] for odd harmonics
	SpectrumEven curve.Func // frequency [Hz] -> level [dB] for even harmonics
	Amplitude    curve.Func // time [s] -> overall level [dB]
	Frequency    curve.Func // time [s] -> f0 [Hz]
	Duration     float64    // [s]
	SampleRate   float64    // [Hz]
	AgcRmsLevel  float64    // target RMS, 0 disables gain control
}

// SampleCount returns round(Duration * SampleRate).
func (p Params) SampleCount() int {
	n := int(math.Round(p.Duration * p.SampleRate))
	if n < 0 {
		return 0
	}
	return n
}

// HarmonicCount returns how many harmonics of f0 fit below Nyquist minus a
// 1 kHz guard band.
func HarmonicCount(sampleRate, f0 float64) int {
	h := int(math.Floor((sampleRate/2 - nyquistGuard) / f0))
	if h < 0 {
		return 0
	}
	return h
}

// Synthesize renders a mono buffer. The harmonic sum is normalized by the
// sum of the harmonic amplitudes, so the overall level follows the
// amplitude curve regardless of how many harmonics are audible. Non-finite
// curve values never reach the output.
func Synthesize(p Params) []float64 {
	n := p.SampleCount()
	out := make([]float64, n)
	if p.SampleRate <= 0 {
		return out
	}
	w := 0.0 // phase of the fundamental
	for pos := 0; pos < n; pos++ {
		t := float64(pos) / p.SampleRate
		a0 := dsp.DbToAmplitudeOr0(p.Amplitude(t))
		f0 := p.Frequency(t)
		if !isFinite(f0) || f0 <= MinF0 {
			continue
		}
		harmonics := HarmonicCount(p.SampleRate, f0)
		var signalSum, analyticSum float64
		for h := 1; h <= harmonics; h++ {
			f := f0 * float64(h)
			spectrum := p.SpectrumOdd
			if h%2 == 0 {
				spectrum = p.SpectrumEven
			}
			a := dsp.DbToAmplitudeOr0(spectrum(f))
			analyticSum += a
			signalSum += a * math.Sin(w*float64(h))
		}
		if analyticSum > 0 {
			out[pos] = a0 * signalSum / analyticSum
		}
		w += twoPi * f0 / p.SampleRate
		w = math.Mod(w, twoPi)
	}
	if p.AgcRmsLevel > 0 {
		AdjustGain(out, p.AgcRmsLevel)
	}
	return out
}

// AdjustGain scales buf in place towards targetRms. When the target would
// push the peak to 1.0 or above, the peak is set to 0.99 instead. Silent
// buffers are left unchanged.
func AdjustGain(buf []float64, targetRms float64) {
	if len(buf) == 0 {
		return
	}
	rms := dsp.RMS(buf)
	if rms == 0 || !isFinite(rms) {
		return
	}
	r := targetRms / rms
	maxAbs := dsp.MaxAbs(buf)
	if r*maxAbs >= 1 {
		r = clipCeiling / maxAbs
	}
	for i := range buf {
		buf[i] *= r
	}
}

// averageF0Step is the sampling interval of AverageF0 [s].
const averageF0Step = 0.005

// AverageF0 returns the amplitude-weighted mean fundamental frequency over
// the voiced, audible part of the sound. Points with a level outside
// [-30, 30] dB are ignored; the weight is the level above -30 dB. NaN is
// returned when no point qualifies.
func AverageF0(p Params) float64 {
	const minDb, maxDb = -30.0, 30.0
	steps := int(math.Floor(p.Duration / averageF0Step))
	var sum, weights float64
	for i := 0; i < steps; i++ {
		t := float64(i) * averageF0Step
		a := p.Amplitude(t)
		if !isFinite(a) || a < minDb || a > maxDb {
			continue
		}
		f := p.Frequency(t)
		if !isFinite(f) || f <= MinF0 {
			continue
		}
		w := a - minDb
		sum += w * f
		weights += w
	}
	if weights == 0 {
		return math.NaN()
	}
	return sum / weights
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

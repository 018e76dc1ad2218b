// Package analysis measures how closely a resynthesized sound matches the
// recording it was analyzed from.
package analysis

import (
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-specsyn/dsp"
)

const (
	envelopeFrame = 256
	envelopeHop   = 128
	spectrumFrame = 4096
	minFrames     = 1024
	maxSeconds    = 12
	// relevantRangeDb limits the spectral comparison to bins within this
	// range of the reference maximum.
	relevantRangeDb = 60.0
	silenceRatio    = 0.01
	targetRMS       = 0.1
)

// Metrics contains distance and similarity measurements between a reference
// recording and a synthesized candidate.
type Metrics struct {
	SampleRate int `json:"sample_rate"`

	ReferenceFrames int `json:"reference_frames"`
	CandidateFrames int `json:"candidate_frames"`
	AlignedFrames   int `json:"aligned_frames"`

	EnvelopeRMSEDB  float64 `json:"envelope_rmse_db"`
	SpectralRMSEDB  float64 `json:"spectral_rmse_db"`
	RefCentroidHz   float64 `json:"ref_centroid_hz"`
	CandCentroidHz  float64 `json:"cand_centroid_hz"`
	CentroidDiffOct float64 `json:"centroid_diff_oct"`

	Score      float64 `json:"score"`
	Similarity float64 `json:"similarity"`
}

// Compare returns objective distance metrics and a combined score in [0,1].
// Both signals are compared by level envelope and long-term spectrum only,
// so the phases of the synthesized harmonics do not matter.
func Compare(reference []float64, candidate []float64, sampleRate int) Metrics {
	m := Metrics{
		SampleRate:      sampleRate,
		ReferenceFrames: len(reference),
		CandidateFrames: len(candidate),
		Score:           1.0,
	}
	if sampleRate <= 0 || len(reference) == 0 || len(candidate) == 0 {
		return m
	}

	ref := trimLeadingSilence(reference, silenceRatio*dsp.MaxAbs(reference))
	cand := trimLeadingSilence(candidate, silenceRatio*dsp.MaxAbs(candidate))
	n := min(len(ref), len(cand), sampleRate*maxSeconds)
	if n < minFrames {
		return m
	}
	ref = normalizeRMS(ref[:n], targetRMS)
	cand = normalizeRMS(cand[:n], targetRMS)
	m.AlignedFrames = n

	m.EnvelopeRMSEDB = envelopeRMSEDB(ref, cand)

	refSpec := averagedPowerSpectrum(ref)
	candSpec := averagedPowerSpectrum(cand)
	m.SpectralRMSEDB = spectralRMSEDB(refSpec, candSpec)

	binHz := float64(sampleRate) / float64(2*(len(refSpec)-1))
	m.RefCentroidHz = centroid(refSpec, binHz)
	m.CandCentroidHz = centroid(candSpec, binHz)
	if m.RefCentroidHz > 0 && m.CandCentroidHz > 0 {
		m.CentroidDiffOct = math.Abs(math.Log2(m.CandCentroidHz / m.RefCentroidHz))
	}

	envNorm := clamp01(m.EnvelopeRMSEDB / 30.0)
	specNorm := clamp01(m.SpectralRMSEDB / 30.0)
	centNorm := clamp01(m.CentroidDiffOct)
	m.Score = clamp01(0.35*envNorm + 0.45*specNorm + 0.20*centNorm)
	m.Similarity = clamp01(math.Exp(-4.0 * m.Score))
	return m
}

func trimLeadingSilence(x []float64, threshold float64) []float64 {
	for i := 0; i < len(x); i++ {
		if math.Abs(x[i]) > threshold {
			return x[i:]
		}
	}
	return nil
}

func normalizeRMS(x []float64, target float64) []float64 {
	out := append([]float64(nil), x...)
	r := dsp.RMS(x)
	if r <= 1e-12 {
		return out
	}
	floats.Scale(target/r, out)
	return out
}

func envelopeRMSEDB(a, b []float64) float64 {
	ea := rmsEnvelope(a, envelopeFrame, envelopeHop)
	eb := rmsEnvelope(b, envelopeFrame, envelopeHop)
	n := min(len(ea), len(eb))
	if n == 0 {
		return 0
	}
	diff := make([]float64, n)
	for i := range diff {
		diff[i] = linToDB(ea[i]) - linToDB(eb[i])
	}
	return dsp.RMS(diff)
}

func rmsEnvelope(x []float64, frame int, hop int) []float64 {
	if frame <= 0 || hop <= 0 || len(x) < frame {
		return nil
	}
	n := 1 + (len(x)-frame)/hop
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		start := i * hop
		out[i] = dsp.RMS(x[start : start+frame])
	}
	return out
}

// averagedPowerSpectrum returns the mean power spectrum of Hann windowed
// frames with 50% overlap. The frame shrinks to the largest power of two
// that fits into x.
func averagedPowerSpectrum(x []float64) []float64 {
	frame := spectrumFrame
	for frame > len(x) {
		frame >>= 1
	}
	plan, err := algofft.NewPlanReal64(frame)
	if err != nil {
		return nil
	}
	win := dsp.WindowHann.Coefficients(frame)
	buf := make([]float64, frame)
	spec := make([]complex128, frame/2+1)
	acc := make([]float64, len(spec))
	frames := 0
	for start := 0; start+frame <= len(x); start += frame / 2 {
		floats.MulTo(buf, x[start:start+frame], win)
		if err := plan.Forward(spec, buf); err != nil {
			return nil
		}
		for k, c := range spec {
			a := cmplx.Abs(c)
			acc[k] += a * a
		}
		frames++
	}
	if frames > 0 {
		floats.Scale(1/float64(frames), acc)
	}
	return acc
}

func spectralRMSEDB(ref, cand []float64) float64 {
	n := min(len(ref), len(cand))
	if n < 2 {
		return 0
	}
	refDb := dsp.Map(ref[1:n], powerToDB)
	candDb := dsp.Map(cand[1:n], powerToDB)
	floor := floats.Max(refDb) - relevantRangeDb
	var sum float64
	var count int
	for k := range refDb {
		if refDb[k] < floor {
			continue
		}
		d := refDb[k] - math.Max(candDb[k], floor-20)
		sum += d * d
		count++
	}
	if count == 0 {
		return 0
	}
	return math.Sqrt(sum / float64(count))
}

func centroid(power []float64, binHz float64) float64 {
	var num, den float64
	for k, p := range power {
		num += float64(k) * binHz * p
		den += p
	}
	if den <= 0 {
		return 0
	}
	return num / den
}

func linToDB(x float64) float64 {
	if x < 1e-12 {
		x = 1e-12
	}
	return 20.0 * math.Log10(x)
}

func powerToDB(p float64) float64 {
	if p < 1e-24 {
		p = 1e-24
	}
	return dsp.PowerToDb(p)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

package spectral

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-specsyn/curve"
	"github.com/cwbudde/algo-specsyn/dsp"
)

// stepToMinFactor places the first kernel minimum at three times the step
// rate: high enough to follow the envelope, low enough to suppress 2*f0 ripple.
const stepToMinFactor = 3

// AnalyzeAmplitude returns the signal power envelope in dB, sampled every
// stepWidth seconds at the centers of the steps.
func AnalyzeAmplitude(signal []float64, sampleRate, stepWidth float64) (curve.Curve, error) {
	if sampleRate <= 0 || stepWidth <= 0 {
		return nil, fmt.Errorf("invalid amplitude analysis parameters: sample rate %g, step %g", sampleRate, stepWidth)
	}
	energy := dsp.Map(signal, square)
	duration := float64(len(energy)) / sampleRate
	firstMinFreq := stepToMinFactor / stepWidth
	kernel := dsp.NewFIRKernelFirstMin(dsp.WindowBlackman, firstMinFreq/sampleRate)

	var pts curve.Curve
	for t := stepWidth / 2; t <= duration-stepWidth/2; t += stepWidth {
		p := int(math.Round(t * sampleRate))
		y := dsp.PowerToDb(kernel.ApplyAt(energy, p))
		if isFinite(y) {
			pts = append(pts, curve.Point{X: t, Y: y})
		}
	}
	return pts, nil
}

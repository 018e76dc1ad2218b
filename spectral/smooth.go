// Package spectral derives editable curves from a recorded signal: the
// smoothed spectral envelope, the amplitude envelope and the f0 track.
package spectral

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-specsyn/dsp"
)

var (
	// ErrInsufficientWidth is returned when the first smoothing width is too
	// small to produce a usable envelope.
	ErrInsufficientWidth = errors.New("smoothing width too small")
	// ErrUnknownStrategy is returned for unrecognized smoothing method or
	// window function ids.
	ErrUnknownStrategy = errors.New("unknown smoothing strategy")
)

// MinSMAWidth is the smallest first-stage width accepted by MethodSMAPowerLog2.
const MinSMAWidth = 8

// dbFloor limits log values before the second FIR stage.
const dbFloor = -100.0

// Method selects the spectrum smoothing algorithm.
type Method int

const (
	// MethodSMAPowerLog2 is a moving average over power values followed by
	// two moving averages over dB values.
	MethodSMAPowerLog2 Method = iota
	// MethodFIRPowerLog is a windowed FIR low-pass over power values
	// followed by a second one over dB values.
	MethodFIRPowerLog
)

func (m Method) String() string {
	switch m {
	case MethodSMAPowerLog2:
		return "smaPwrLog2"
	case MethodFIRPowerLog:
		return "firLpPwrLog"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod maps a method id to its Method.
func ParseMethod(id string) (Method, error) {
	switch id {
	case "smaPwrLog2":
		return MethodSMAPowerLog2, nil
	case "firLpPwrLog":
		return MethodFIRPowerLog, nil
	default:
		return 0, fmt.Errorf("%w: method %q", ErrUnknownStrategy, id)
	}
}

// ParseWindow wraps dsp.ParseWindow so that unknown ids surface as
// ErrUnknownStrategy as well as dsp.ErrUnknownWindow.
func ParseWindow(id string) (dsp.Window, error) {
	w, err := dsp.ParseWindow(id)
	if err != nil {
		return w, fmt.Errorf("%w: %w", ErrUnknownStrategy, err)
	}
	return w, nil
}

// SmoothParams configures Smooth. Widths are relative to F0Reference, so a
// width of 1 spans one harmonic spacing.
type SmoothParams struct {
	F0Reference float64
	Method      Method
	Width1      float64
	Window1     dsp.Window // first FIR stage, MethodFIRPowerLog only
	Width2      float64    // MethodFIRPowerLog only
	Window2     dsp.Window // MethodFIRPowerLog only
}

// Widths returns the first and second stage widths in spectrum bins.
func (p SmoothParams) Widths(scale float64) (int, int) {
	w1 := int(math.Round(p.Width1 * p.F0Reference * scale))
	w2 := int(math.Round(p.Width2 * p.F0Reference * scale))
	return w1, w2
}

// Smooth converts a linear amplitude spectrum into a smoothed dB envelope.
// scale maps frequency in Hz to a spectrum index.
func Smooth(spectrum []float64, scale float64, p SmoothParams) ([]float64, error) {
	w1, w2 := p.Widths(scale)
	switch p.Method {
	case MethodSMAPowerLog2:
		return smaPowerLog2(spectrum, w1)
	case MethodFIRPowerLog:
		return firPowerLog(spectrum, w1, p.Window1, w2, p.Window2)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, p.Method)
	}
}

func smaPowerLog2(spectrum []float64, width int) ([]float64, error) {
	if width < MinSMAWidth {
		return nil, fmt.Errorf("%w: %d < %d", ErrInsufficientWidth, width, MinSMAWidth)
	}
	power := dsp.Map(spectrum, square)
	avg := dsp.SimpleMovingAverage(power, width)
	log1 := dsp.Map(avg, dsp.PowerToDb)
	width2 := int(math.Round(float64(width) / 2))
	log2 := dsp.SimpleMovingAverage(log1, width2)
	width3 := int(math.Round(float64(width2) / 2))
	return dsp.SimpleMovingAverage(log2, width3), nil
}

func firPowerLog(spectrum []float64, width1 int, win1 dsp.Window, width2 int, win2 dsp.Window) ([]float64, error) {
	power := dsp.Map(spectrum, square)
	a, err := dsp.LowPass(power, width1, win1)
	if err != nil {
		return nil, err
	}
	for i, v := range a {
		// flat top kernels have negative lobes
		a[i] = math.Max(0, v)
	}
	logs := dsp.Map(a, dsp.PowerToDb)
	for i, v := range logs {
		logs[i] = math.Max(dbFloor, v)
	}
	return dsp.LowPass(logs, width2, win2)
}

func square(x float64) float64 {
	return x * x
}

package dsp

import (
	"errors"
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/window"
)

// ErrUnknownWindow is returned by ParseWindow for unrecognized ids.
var ErrUnknownWindow = errors.New("unknown window function")

// Window selects a window function.
type Window int

const (
	WindowNone Window = iota // pass-through, no filtering
	WindowRect
	WindowHann
	WindowHamming
	WindowBlackman
	WindowBlackmanNuttall
	WindowFlatTop
	WindowBartlett
	WindowParabolic
)

var windowIDs = map[Window]string{
	WindowNone:            "none",
	WindowRect:            "rect",
	WindowHann:            "hann",
	WindowHamming:         "hamming",
	WindowBlackman:        "blackman",
	WindowBlackmanNuttall: "blackmanNuttall",
	WindowFlatTop:         "flatTop",
	WindowBartlett:        "bartlett",
	WindowParabolic:       "parabolic",
}

// ParseWindow maps a window id to its Window.
func ParseWindow(id string) (Window, error) {
	for w, s := range windowIDs {
		if s == id {
			return w, nil
		}
	}
	return WindowNone, fmt.Errorf("%w: %q", ErrUnknownWindow, id)
}

func (w Window) String() string {
	if s, ok := windowIDs[w]; ok {
		return s
	}
	return fmt.Sprintf("Window(%d)", int(w))
}

// Coefficients returns the window shape of length n. WindowNone and
// WindowRect both yield all ones.
func (w Window) Coefficients(n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{1}
	}
	switch w {
	case WindowHann:
		return window.Hann(n)
	case WindowHamming:
		return window.Hamming(n)
	case WindowBlackman:
		return window.Blackman(n)
	case WindowBlackmanNuttall:
		return blackmanNuttall(n)
	case WindowFlatTop:
		return window.FlatTop(n)
	case WindowBartlett:
		return window.Bartlett(n)
	case WindowParabolic:
		return parabolic(n)
	default:
		return window.Rectangular(n)
	}
}

// FirstMinBins is the position of the first zero of the window spectrum in
// bins (multiples of 1/n cycles per sample).
func (w Window) FirstMinBins() float64 {
	switch w {
	case WindowHann, WindowHamming, WindowBartlett:
		return 2
	case WindowBlackman:
		return 3
	case WindowBlackmanNuttall:
		return 4
	case WindowFlatTop:
		return 5
	case WindowParabolic:
		return 1.43
	default:
		return 1
	}
}

// Apply returns x multiplied by the window. WindowNone returns a copy.
func (w Window) Apply(x []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	if w == WindowNone || w == WindowRect || len(x) < 2 {
		return out
	}
	window.Apply(out, w.Coefficients)
	return out
}

// blackmanNuttall is the four-term Blackman-Nuttall window.
func blackmanNuttall(n int) []float64 {
	const (
		a0 = 0.3635819
		a1 = 0.4891775
		a2 = 0.1365995
		a3 = 0.0106411
	)
	out := make([]float64, n)
	m := float64(n - 1)
	for i := range out {
		x := 2 * math.Pi * float64(i) / m
		out[i] = a0 - a1*math.Cos(x) + a2*math.Cos(2*x) - a3*math.Cos(3*x)
	}
	return out
}

// parabolic is the Welch window 1 - ((i-c)/h)^2 with h = (n+1)/2, which
// keeps the end points above zero.
func parabolic(n int) []float64 {
	out := make([]float64, n)
	c := float64(n-1) / 2
	h := float64(n+1) / 2
	for i := range out {
		d := (float64(i) - c) / h
		out[i] = 1 - d*d
	}
	return out
}

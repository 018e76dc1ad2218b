package dsp

import (
	"fmt"
	"math"

	algofft "github.com/cwbudde/algo-fft"
)

// FIRKernel is a centered, unit-sum FIR kernel shaped by a window function.
type FIRKernel []float64

// NewFIRKernel returns a low-pass kernel of the given width.
func NewFIRKernel(w Window, width int) FIRKernel {
	if width < 1 {
		width = 1
	}
	k := w.Coefficients(width)
	var sum float64
	for _, v := range k {
		sum += v
	}
	if sum != 0 {
		for i := range k {
			k[i] /= sum
		}
	}
	return FIRKernel(k)
}

// NewFIRKernelFirstMin returns a low-pass kernel whose first spectral
// minimum lies at normFirstMinFreq (cycles per sample).
func NewFIRKernelFirstMin(w Window, normFirstMinFreq float64) FIRKernel {
	width := int(math.Round(w.FirstMinBins() / normFirstMinFreq))
	return NewFIRKernel(w, width)
}

// ApplyAt evaluates the kernel centered at position pos of x. Kernel taps
// falling outside x are skipped and the remaining weights renormalized.
func (k FIRKernel) ApplyAt(x []float64, pos int) float64 {
	center := (len(k) - 1) / 2
	var acc, wsum float64
	for j, c := range k {
		p := pos + j - center
		if p < 0 || p >= len(x) {
			continue
		}
		acc += c * x[p]
		wsum += c
	}
	if wsum == 0 {
		return math.NaN()
	}
	return acc / wsum
}

// LowPass filters x with a centered window-shaped FIR kernel of the given
// width. The output has the same length as x and no phase shift.
// WindowNone returns an unfiltered copy.
func LowPass(x []float64, width int, w Window) ([]float64, error) {
	out := make([]float64, len(x))
	if w == WindowNone || width <= 1 || len(x) == 0 {
		copy(out, x)
		return out, nil
	}
	k := NewFIRKernel(w, width)
	center := (len(k) - 1) / 2

	full, err := convolve(x, k)
	if err != nil {
		return nil, err
	}
	ones := make([]float64, len(x))
	for i := range ones {
		ones[i] = 1
	}
	norm, err := convolve(ones, k)
	if err != nil {
		return nil, err
	}

	for i := range out {
		wsum := norm[i+center]
		if math.Abs(wsum) < 1e-12 {
			out[i] = full[i+center]
			continue
		}
		out[i] = full[i+center] / wsum
	}
	return out, nil
}

// convolve returns the full linear convolution of x and k. It runs through
// the complex128 FFT path so that the dB stage keeps double precision.
func convolve(x []float64, k FIRKernel) ([]float64, error) {
	a := make([]complex128, len(x))
	for i, v := range x {
		a[i] = complex(v, 0)
	}
	b := make([]complex128, len(k))
	for i, v := range k {
		b[i] = complex(v, 0)
	}
	dst := make([]complex128, len(a)+len(b)-1)
	if err := algofft.Convolve128(dst, a, b); err != nil {
		return nil, fmt.Errorf("fir convolve: %w", err)
	}
	out := make([]float64, len(dst))
	for i, c := range dst {
		out[i] = real(c)
	}
	return out, nil
}

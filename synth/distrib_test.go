package synth

import (
	"math"
	"testing"
)

func distribParams(f0, amplDb float64) DistribParams {
	p := DefaultDistribParams()
	p.Amplitude = constant(amplDb)
	p.Frequency = constant(f0)
	p.Duration = 1
	return p
}

func TestComputeDistribMaxIsZero(t *testing.T) {
	for _, f0 := range []float64{80, 100, 233.3, 440} {
		p := distribParams(f0, -12)
		p.Frequency = func(t float64) float64 { return f0 * (1 + 0.2*t) }
		out := ComputeDistrib(p)
		if len(out) != p.Resolution {
			t.Fatalf("len = %d, want %d", len(out), p.Resolution)
		}
		m := math.Inf(-1)
		for _, v := range out {
			if math.IsNaN(v) {
				t.Fatalf("NaN in distribution")
			}
			m = math.Max(m, v)
		}
		if math.Abs(m) > 1e-9 {
			t.Fatalf("f0=%g: max = %g, want 0", f0, m)
		}
	}
}

func TestComputeDistribSlots(t *testing.T) {
	out := ComputeDistrib(distribParams(100, 0))
	// d = 11 Hz, harmonic h lands in slot floor(100h/11)
	for h := 1; h < 55; h++ {
		i := int(math.Floor(100 * float64(h) / 11))
		if math.IsInf(out[i], -1) {
			t.Fatalf("slot %d of harmonic %d is empty", i, h)
		}
	}
	if !math.IsInf(out[0], -1) || !math.IsInf(out[10], -1) {
		t.Fatalf("expected empty slots between harmonics")
	}
}

func TestComputeDistribEvenShift(t *testing.T) {
	p := distribParams(100, 0)
	p.EvenAmplShift = -10
	out := ComputeDistrib(p)
	odd := out[9]   // 100 Hz
	even := out[18] // 200 Hz
	if math.Abs((odd-even)-10) > 0.5 {
		t.Fatalf("odd-even difference = %g dB, want 10", odd-even)
	}
}

func TestComputeDistribUnvoiced(t *testing.T) {
	out := ComputeDistrib(distribParams(20, 0))
	for i, v := range out {
		if !math.IsInf(v, -1) {
			t.Fatalf("slot %d = %g, want -Inf", i, v)
		}
	}
}

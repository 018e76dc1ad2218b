package dsp

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestDbConversions(t *testing.T) {
	if got := DbToAmplitude(-20); math.Abs(got-0.1) > 1e-12 {
		t.Fatalf("DbToAmplitude(-20) = %g", got)
	}
	if got := DbToPower(-20); math.Abs(got-0.01) > 1e-12 {
		t.Fatalf("DbToPower(-20) = %g", got)
	}
	if got := PowerToDb(0.001); math.Abs(got+30) > 1e-9 {
		t.Fatalf("PowerToDb(0.001) = %g", got)
	}
	if got := AmplitudeToDb(10); math.Abs(got-20) > 1e-9 {
		t.Fatalf("AmplitudeToDb(10) = %g", got)
	}
	if !math.IsInf(PowerToDb(0), -1) {
		t.Fatalf("PowerToDb(0) must be -Inf")
	}
}

func TestDbToAmplitudeOr0(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -200.5, -1000} {
		if got := DbToAmplitudeOr0(v); got != 0 {
			t.Fatalf("DbToAmplitudeOr0(%g) = %g, want 0", v, got)
		}
		if got := DbToPowerOr0(v); got != 0 {
			t.Fatalf("DbToPowerOr0(%g) = %g, want 0", v, got)
		}
	}
	if got := DbToAmplitudeOr0(0); got != 1 {
		t.Fatalf("DbToAmplitudeOr0(0) = %g, want 1", got)
	}
	if got := DbToAmplitudeOr0(-200); got <= 0 {
		t.Fatalf("-200 dB is still audible by definition, got %g", got)
	}
}

func TestSimpleMovingAverage(t *testing.T) {
	x := []float64{0, 0, 3, 0, 0}
	got := SimpleMovingAverage(x, 3)
	want := []float64{0, 1, 1, 1, 0}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("sma[%d] = %g, want %g", i, got[i], want[i])
		}
	}
	flat := SimpleMovingAverage([]float64{2, 2, 2, 2, 2, 2}, 4)
	for i, v := range flat {
		if math.Abs(v-2) > 1e-12 {
			t.Fatalf("flat sma[%d] = %g", i, v)
		}
	}
}

func TestSimpleMovingAverageMatchesDirectSum(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	x := make([]float64, 300)
	for i := range x {
		x[i] = rng.Float64()*2 - 1
	}
	for _, width := range []int{2, 7, 64, 301} {
		got := SimpleMovingAverage(x, width)
		half := width / 2
		for i := range x {
			lo := max(i-half, 0)
			hi := min(i-half+width, len(x))
			var sum float64
			for j := lo; j < hi; j++ {
				sum += x[j]
			}
			if want := sum / float64(hi-lo); math.Abs(got[i]-want) > 1e-9 {
				t.Fatalf("width %d: sma[%d] = %g, want %g", width, i, got[i], want)
			}
		}
	}
}

func TestRMSAndMaxAbs(t *testing.T) {
	x := []float64{1, -1, 1, -1}
	if got := RMS(x); math.Abs(got-1) > 1e-12 {
		t.Fatalf("RMS = %g", got)
	}
	if got := MaxAbs([]float64{0.2, -0.7, 0.5}); got != 0.7 {
		t.Fatalf("MaxAbs = %g", got)
	}
	if RMS(nil) != 0 || MaxAbs(nil) != 0 {
		t.Fatalf("empty input must yield 0")
	}
}

func TestParseWindow(t *testing.T) {
	for w, id := range windowIDs {
		got, err := ParseWindow(id)
		if err != nil || got != w {
			t.Fatalf("ParseWindow(%q) = %v, %v", id, got, err)
		}
	}
	if _, err := ParseWindow("kaiser"); !errors.Is(err, ErrUnknownWindow) {
		t.Fatalf("expected ErrUnknownWindow, got %v", err)
	}
}

func TestBlackmanNuttallCoefficients(t *testing.T) {
	c := WindowBlackmanNuttall.Coefficients(65)
	if math.Abs(c[0]-0.0003628) > 1e-6 || math.Abs(c[64]-c[0]) > 1e-12 {
		t.Fatalf("end points = %g, %g, want 0.0003628", c[0], c[64])
	}
	if math.Abs(c[32]-1) > 1e-6 {
		t.Fatalf("center = %g, want 1", c[32])
	}
	for i := 0; i < 32; i++ {
		if math.Abs(c[i]-c[64-i]) > 1e-12 {
			t.Fatalf("not symmetric at %d: %g vs %g", i, c[i], c[64-i])
		}
	}
}

func TestLowPassMatchesDirectConvolution(t *testing.T) {
	x := make([]float64, 500)
	for i := range x {
		x[i] = math.Exp(-float64(i)/80) * math.Cos(float64(i)*0.2)
	}
	y, err := LowPass(x, 33, WindowBlackmanNuttall)
	if err != nil {
		t.Fatalf("LowPass: %v", err)
	}
	k := NewFIRKernel(WindowBlackmanNuttall, 33)
	for p := range x {
		if want := k.ApplyAt(x, p); math.Abs(y[p]-want) > 1e-10 {
			t.Fatalf("y[%d] = %.15g, direct = %.15g", p, y[p], want)
		}
	}
}

func TestLowPassPreservesConstant(t *testing.T) {
	x := make([]float64, 200)
	for i := range x {
		x[i] = 5
	}
	for _, w := range []Window{WindowRect, WindowHann, WindowHamming, WindowBlackman, WindowBlackmanNuttall, WindowBartlett, WindowParabolic} {
		y, err := LowPass(x, 21, w)
		if err != nil {
			t.Fatalf("LowPass(%s): %v", w, err)
		}
		if len(y) != len(x) {
			t.Fatalf("LowPass(%s) length %d", w, len(y))
		}
		for i, v := range y {
			if math.Abs(v-5) > 1e-6 {
				t.Fatalf("LowPass(%s)[%d] = %g, want 5", w, i, v)
			}
		}
	}
}

func TestLowPassNoneIsPassThrough(t *testing.T) {
	x := []float64{1, 5, -2, 8}
	y, err := LowPass(x, 3, WindowNone)
	if err != nil {
		t.Fatalf("LowPass: %v", err)
	}
	for i := range x {
		if y[i] != x[i] {
			t.Fatalf("y[%d] = %g, want %g", i, y[i], x[i])
		}
	}
	y[0] = 100
	if x[0] == 100 {
		t.Fatalf("pass-through must not alias its input")
	}
}

func TestLowPassIsCentered(t *testing.T) {
	x := make([]float64, 101)
	x[50] = 1
	y, err := LowPass(x, 11, WindowHann)
	if err != nil {
		t.Fatalf("LowPass: %v", err)
	}
	peak := 0
	for i := range y {
		if y[i] > y[peak] {
			peak = i
		}
	}
	if peak != 50 {
		t.Fatalf("impulse response peak at %d, want 50", peak)
	}
	if math.Abs(y[45]-y[55]) > 1e-9 {
		t.Fatalf("impulse response not symmetric: %g vs %g", y[45], y[55])
	}
}

func TestFIRKernelApplyAtMatchesLowPass(t *testing.T) {
	x := make([]float64, 64)
	for i := range x {
		x[i] = math.Sin(float64(i) * 0.3)
	}
	y, err := LowPass(x, 9, WindowBlackman)
	if err != nil {
		t.Fatalf("LowPass: %v", err)
	}
	k := NewFIRKernel(WindowBlackman, 9)
	for _, p := range []int{0, 3, 30, 63} {
		if got := k.ApplyAt(x, p); math.Abs(got-y[p]) > 1e-9 {
			t.Fatalf("ApplyAt(%d) = %g, LowPass = %g", p, got, y[p])
		}
	}
}

func TestNewFIRKernelFirstMin(t *testing.T) {
	k := NewFIRKernelFirstMin(WindowBlackman, 3.0/101)
	if len(k) != 101 {
		t.Fatalf("kernel width %d, want 101", len(k))
	}
	var sum float64
	for _, v := range k {
		sum += v
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Fatalf("kernel sum %g, want 1", sum)
	}
}

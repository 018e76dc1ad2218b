package curvecodec

import (
	"math"
)

// Quantize clamps x into the profile range and scales it to a fixed-point
// integer. Halves round towards +Inf. NaN maps to 0.
func Quantize(x float64, p Profile) int32 {
	if math.IsNaN(x) {
		return 0
	}
	x = math.Max(p.Min, math.Min(p.Max, x))
	return int32(math.Floor(x*pow10(p.DecimalDigits) + 0.5))
}

// Dequantize converts a fixed-point integer back to a float.
func Dequantize(q int32, decimalDigits uint) float64 {
	return float64(q) / pow10(decimalDigits)
}

func QuantizeAll(values []float64, p Profile) []int32 {
	out := make([]int32, len(values))
	for i, v := range values {
		out[i] = Quantize(v, p)
	}
	return out
}

func DequantizeAll(q []int32, decimalDigits uint) []float64 {
	out := make([]float64, len(q))
	for i, v := range q {
		out[i] = Dequantize(v, decimalDigits)
	}
	return out
}

// Differentiate returns d[i] = q[i] - q[i-1] with q[-1] = 0.
func Differentiate(q []int32) []int32 {
	out := make([]int32, len(q))
	var prev int32
	for i, v := range q {
		out[i] = v - prev
		prev = v
	}
	return out
}

// Integrate is the inverse of Differentiate.
func Integrate(d []int32) []int32 {
	out := make([]int32, len(d))
	var acc int32
	for i, v := range d {
		acc += v
		out[i] = acc
	}
	return out
}

// WrapSign maps a signed value onto the non-negative integers:
// v >= 0 becomes 2v, v < 0 becomes -2v+1.
func WrapSign(v int32) uint64 {
	w := int64(v)
	if w < 0 {
		return uint64(-w*2 + 1)
	}
	return uint64(w * 2)
}

// UnwrapSign is the inverse of WrapSign.
func UnwrapSign(u uint64) int32 {
	h := int64(u >> 1)
	if u&1 != 0 {
		return int32(-h)
	}
	return int32(h)
}

func pow10(digits uint) float64 {
	return math.Pow(10, float64(digits))
}

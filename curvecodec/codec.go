// Package curvecodec packs curve knots into short URL-safe strings.
//
// Each axis of a curve is quantized to fixed point, delta coded, zig-zag
// wrapped when the axis is not ascending, written as LEB128 varints, deflated
// at the highest compression level and finally base64url encoded without
// padding. The two axis strings are joined with Separator:
//
//	xPart*yPart
//
// Decoding reverses every stage. The result matches the input within half a
// quantization step per coordinate.
package curvecodec

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-specsyn/curve"
)

// Separator joins the encoded x and y parts. It is not part of the base64url alphabet.
const Separator = "*"

var (
	// ErrStructure reports a malformed encoded curve: wrong part count or
	// x/y length mismatch after decoding.
	ErrStructure = errors.New("invalid encoded curve structure")
	// ErrPayload reports an undecodable part: bad base64url, corrupt deflate
	// stream or truncated varint sequence.
	ErrPayload = errors.New("invalid encoded curve payload")
	// ErrNegativeVarint reports a negative value reaching the varint stage.
	// It always indicates a logic defect upstream, never bad user input.
	ErrNegativeVarint = errors.New("negative varint value")
)

// DataType selects the quantization profile of one curve axis.
type DataType int

const (
	TimeAscending      DataType = iota // time in s, ascending
	Frequency                          // frequency in Hz
	FrequencyAscending                 // frequency in Hz, ascending
	Decibel                            // level in dB
)

func (t DataType) String() string {
	switch t {
	case TimeAscending:
		return "timeAsc"
	case Frequency:
		return "freq"
	case FrequencyAscending:
		return "freqAsc"
	case Decibel:
		return "db"
	default:
		return fmt.Sprintf("DataType(%d)", int(t))
	}
}

// Profile fixes the fixed-point resolution and clamping range of an axis.
type Profile struct {
	DecimalDigits uint
	Ascending     bool
	Min           float64
	Max           float64
}

var profiles = [...]Profile{
	TimeAscending:      {DecimalDigits: 3, Ascending: true, Min: 0, Max: 36000},
	Frequency:          {DecimalDigits: 0, Ascending: false, Min: 0, Max: 100000},
	FrequencyAscending: {DecimalDigits: 0, Ascending: true, Min: 0, Max: 100000},
	Decibel:            {DecimalDigits: 1, Ascending: false, Min: -200, Max: 200},
}

// Profile returns the quantization profile of the data type.
func (t DataType) Profile() Profile {
	if t < 0 || int(t) >= len(profiles) {
		panic(fmt.Sprintf("curvecodec: unknown data type %d", int(t)))
	}
	return profiles[t]
}

// Encode serializes a checked ascending curve.
func Encode(points curve.Ascending, xType, yType DataType) (string, error) {
	return EncodeUnchecked(points.Points(), xType, yType)
}

// EncodeUnchecked serializes knots without verifying the x order. A
// descending x axis with an ascending profile yields ErrNegativeVarint.
func EncodeUnchecked(points curve.Curve, xType, yType DataType) (string, error) {
	xs, err := EncodeValues(points.Xs(), xType)
	if err != nil {
		return "", fmt.Errorf("x values: %w", err)
	}
	ys, err := EncodeValues(points.Ys(), yType)
	if err != nil {
		return "", fmt.Errorf("y values: %w", err)
	}
	return xs + Separator + ys, nil
}

// Decode parses a string produced by Encode.
func Decode(s string, xType, yType DataType) (curve.Curve, error) {
	parts := strings.Split(s, Separator)
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: expected 2 parts, got %d", ErrStructure, len(parts))
	}
	xs, err := DecodeValues(parts[0], xType)
	if err != nil {
		return nil, fmt.Errorf("x values: %w", err)
	}
	ys, err := DecodeValues(parts[1], yType)
	if err != nil {
		return nil, fmt.Errorf("y values: %w", err)
	}
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: %d x values, %d y values", ErrStructure, len(xs), len(ys))
	}
	return curve.FromXY(xs, ys)
}

// EncodeValues runs the full single-axis pipeline.
func EncodeValues(values []float64, t DataType) (string, error) {
	p := t.Profile()
	deltas := Differentiate(QuantizeAll(values, p))
	wide := make([]int64, len(deltas))
	for i, d := range deltas {
		if p.Ascending {
			wide[i] = int64(d)
		} else {
			wide[i] = int64(WrapSign(d))
		}
	}
	raw, err := EncodeVarints(wide)
	if err != nil {
		return "", fmt.Errorf("%s: %w", t, err)
	}
	packed, err := deflate(raw)
	if err != nil {
		return "", err
	}
	return encodeBase64URL(packed), nil
}

// DecodeValues reverses EncodeValues.
func DecodeValues(s string, t DataType) ([]float64, error) {
	p := t.Profile()
	packed, err := decodeBase64URL(s)
	if err != nil {
		return nil, err
	}
	raw, err := inflate(packed)
	if err != nil {
		return nil, err
	}
	wide, err := DecodeVarints(raw)
	if err != nil {
		return nil, err
	}
	deltas := make([]int32, len(wide))
	for i, v := range wide {
		if p.Ascending {
			if v > math.MaxInt32 {
				return nil, fmt.Errorf("%w: %s delta %d out of range", ErrPayload, t, v)
			}
			deltas[i] = int32(v)
		} else {
			deltas[i] = UnwrapSign(uint64(v))
		}
	}
	return DequantizeAll(Integrate(deltas), p.DecimalDigits), nil
}

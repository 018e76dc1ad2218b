package curvecodec

import (
	"encoding/binary"
	"errors"
	"math"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/cwbudde/algo-specsyn/curve"
)

func TestRoundTripWithinHalfStep(t *testing.T) {
	pairs := []struct {
		x, y DataType
	}{
		{FrequencyAscending, Decibel},
		{TimeAscending, Decibel},
		{TimeAscending, Frequency},
	}
	rng := rand.New(rand.NewSource(3))
	for _, pair := range pairs {
		xp := pair.x.Profile()
		yp := pair.y.Profile()
		for iter := 0; iter < 50; iter++ {
			n := rng.Intn(40)
			xs := make([]float64, n)
			for i := range xs {
				xs[i] = xp.Min + rng.Float64()*(xp.Max-xp.Min)
			}
			sort.Float64s(xs)
			pts := make(curve.Curve, n)
			for i := range pts {
				pts[i] = curve.Point{X: xs[i], Y: yp.Min + rng.Float64()*(yp.Max-yp.Min)}
			}

			s, err := Encode(curve.MustAscending(pts), pair.x, pair.y)
			if err != nil {
				t.Fatalf("Encode(%s,%s): %v", pair.x, pair.y, err)
			}
			got, err := Decode(s, pair.x, pair.y)
			if err != nil {
				t.Fatalf("Decode(%s,%s): %v", pair.x, pair.y, err)
			}
			if len(got) != n {
				t.Fatalf("decoded %d points, want %d", len(got), n)
			}
			xTol := 0.5*math.Pow(10, -float64(xp.DecimalDigits)) + 1e-9
			yTol := 0.5*math.Pow(10, -float64(yp.DecimalDigits)) + 1e-9
			for i := range got {
				if math.Abs(got[i].X-pts[i].X) > xTol || math.Abs(got[i].Y-pts[i].Y) > yTol {
					t.Fatalf("point %d: got %+v, want %+v", i, got[i], pts[i])
				}
			}
		}
	}
}

func TestEncodedStringIsURLSafe(t *testing.T) {
	pts := curve.FromPairs([][2]float64{{70, -62}, {1100, -25}, {2600, -68}, {4200, -40}, {5500, -71}})
	s, err := Encode(curve.MustAscending(pts), FrequencyAscending, Decibel)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if strings.Count(s, Separator) != 1 {
		t.Fatalf("expected exactly one separator in %q", s)
	}
	for _, c := range s {
		ok := c == '*' || c == '-' || c == '_' ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if !ok {
			t.Fatalf("unexpected character %q in %q", c, s)
		}
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	pts := curve.FromPairs([][2]float64{{0, 200}, {1.5, 600}, {3, 200}})
	a, err := EncodeUnchecked(pts, TimeAscending, Frequency)
	if err != nil {
		t.Fatalf("EncodeUnchecked: %v", err)
	}
	b, err := EncodeUnchecked(pts, TimeAscending, Frequency)
	if err != nil {
		t.Fatalf("EncodeUnchecked: %v", err)
	}
	if a != b {
		t.Fatalf("encoding differs between calls: %q vs %q", a, b)
	}
}

func TestEncodeUncheckedDescendingFails(t *testing.T) {
	pts := curve.FromPairs([][2]float64{{2, 0}, {1, 0}})
	_, err := EncodeUnchecked(pts, TimeAscending, Decibel)
	if !errors.Is(err, ErrNegativeVarint) {
		t.Fatalf("expected ErrNegativeVarint, got %v", err)
	}
}

func TestDecodeStructureErrors(t *testing.T) {
	three, err := EncodeUnchecked(curve.FromPairs([][2]float64{{0, 1}, {1, 2}, {2, 3}}), TimeAscending, Decibel)
	if err != nil {
		t.Fatalf("EncodeUnchecked: %v", err)
	}
	two, err := EncodeUnchecked(curve.FromPairs([][2]float64{{0, 1}, {1, 2}}), TimeAscending, Decibel)
	if err != nil {
		t.Fatalf("EncodeUnchecked: %v", err)
	}
	mixed := strings.Split(three, Separator)[0] + Separator + strings.Split(two, Separator)[1]

	cases := []string{
		"abc",
		"a*b*c",
		mixed,
	}
	for _, s := range cases {
		if _, err := Decode(s, TimeAscending, Decibel); !errors.Is(err, ErrStructure) {
			t.Fatalf("Decode(%q): expected ErrStructure, got %v", s, err)
		}
	}
}

func TestDecodePayloadErrors(t *testing.T) {
	cases := []string{
		"!!!*AAAA",
		"*",
		"AAAA*AAAA",
	}
	for _, s := range cases {
		if _, err := Decode(s, TimeAscending, Decibel); !errors.Is(err, ErrPayload) {
			t.Fatalf("Decode(%q): expected ErrPayload, got %v", s, err)
		}
	}
}

func TestDecodeAcceptsPadding(t *testing.T) {
	pts := curve.FromPairs([][2]float64{{0, -50}, {0.15, -27}})
	s, err := EncodeUnchecked(pts, TimeAscending, Decibel)
	if err != nil {
		t.Fatalf("EncodeUnchecked: %v", err)
	}
	parts := strings.Split(s, Separator)
	padded := parts[0] + "==" + Separator + parts[1] + "="
	got, err := Decode(padded, TimeAscending, Decibel)
	if err != nil {
		t.Fatalf("Decode padded: %v", err)
	}
	if !got.Equal(pts, 1e-9) {
		t.Fatalf("padded decode mismatch: %v", got)
	}
}

func TestEmptyCurveRoundTrip(t *testing.T) {
	s, err := Encode(curve.Ascending{}, TimeAscending, Frequency)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(s, TimeAscending, Frequency)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty curve, got %v", got)
	}
}

func TestClampedValuesDecodeToRangeLimits(t *testing.T) {
	pts := curve.FromPairs([][2]float64{{-5, -1000}, {50000, 1000}})
	s, err := EncodeUnchecked(pts, TimeAscending, Decibel)
	if err != nil {
		t.Fatalf("EncodeUnchecked: %v", err)
	}
	got, err := Decode(s, TimeAscending, Decibel)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := curve.FromPairs([][2]float64{{0, -200}, {36000, 200}})
	if !got.Equal(want, 1e-9) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDataTypeProfiles(t *testing.T) {
	cases := []struct {
		t    DataType
		want Profile
	}{
		{TimeAscending, Profile{DecimalDigits: 3, Ascending: true, Min: 0, Max: 36000}},
		{Frequency, Profile{DecimalDigits: 0, Ascending: false, Min: 0, Max: 100000}},
		{FrequencyAscending, Profile{DecimalDigits: 0, Ascending: true, Min: 0, Max: 100000}},
		{Decibel, Profile{DecimalDigits: 1, Ascending: false, Min: -200, Max: 200}},
	}
	for _, c := range cases {
		if got := c.t.Profile(); got != c.want {
			t.Fatalf("%s profile = %+v, want %+v", c.t, got, c.want)
		}
	}
}

func packVarints(t *testing.T, values ...uint64) string {
	t.Helper()
	var raw []byte
	for _, v := range values {
		raw = binary.AppendUvarint(raw, v)
	}
	packed, err := deflate(raw)
	if err != nil {
		t.Fatalf("deflate: %v", err)
	}
	return encodeBase64URL(packed)
}

func TestDecodeValuesRejectsOverflow(t *testing.T) {
	tests := []struct {
		name  string
		value uint64
		dt    DataType
	}{
		{name: "above uint32", value: 1<<32 + 5, dt: TimeAscending},
		{name: "above uint32 zig-zag", value: 1<<32 + 5, dt: Decibel},
		{name: "above int32 ascending", value: math.MaxInt32 + 1, dt: FrequencyAscending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeValues(packVarints(t, 3, tt.value), tt.dt)
			if !errors.Is(err, ErrPayload) {
				t.Fatalf("expected ErrPayload, got %v (values %v)", err, got)
			}
		})
	}
}

func TestDecodeValuesAcceptsMaxUint32ZigZag(t *testing.T) {
	got, err := DecodeValues(packVarints(t, math.MaxUint32), Frequency)
	if err != nil {
		t.Fatalf("DecodeValues: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d values, want 1", len(got))
	}
}

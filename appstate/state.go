// Package appstate holds the complete parameter set of a synthesized sound
// and serializes it to a compact URL parameter string.
//
// Parameters equal to their default are omitted, so the default state
// encodes to the empty string. Curves are stored with the curvecodec
// pipeline as "<x>*<y>".
package appstate

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-specsyn/curve"
	"github.com/cwbudde/algo-specsyn/curvecodec"
)

// URL parameter keys.
const (
	KeySampleRate     = "sampleRate"
	KeyAgcRmsLevel    = "agcRmsLevel"
	KeyF0Multiplier   = "f0Multiplier"
	KeySpecMultiplier = "specMultiplier"
	KeySpecShift      = "specShift"
	KeyEvenAmplShift  = "evenAmplShift"
	KeyReference      = "ref"
	KeySpectrumCurve  = "spectrumCurve"
	KeyAmplitudeCurve = "amplitudeCurve"
	KeyFrequencyCurve = "frequencyCurve"
)

// knotEpsilon is the per-coordinate tolerance for detecting default curves.
const knotEpsilon = 1e-6

// AppState is the full set of synthesis parameters.
type AppState struct {
	SampleRate     float64 // [Hz]
	AgcRmsLevel    float64 // 0 disables gain control
	F0Multiplier   float64
	SpecMultiplier float64
	SpecShift      float64 // [Hz]
	EvenAmplShift  float64 // [dB]
	Reference      string  // optional reference recording
	SpectrumCurve  curve.Ascending
	AmplitudeCurve curve.Ascending
	FrequencyCurve curve.Ascending
}

// Curve slot data types: x axis, y axis.
type slot struct {
	key   string
	xType curvecodec.DataType
	yType curvecodec.DataType
}

var (
	spectrumSlot  = slot{KeySpectrumCurve, curvecodec.FrequencyAscending, curvecodec.Decibel}
	amplitudeSlot = slot{KeyAmplitudeCurve, curvecodec.TimeAscending, curvecodec.Decibel}
	frequencySlot = slot{KeyFrequencyCurve, curvecodec.TimeAscending, curvecodec.Frequency}
)

var (
	defaultSpectrumKnots = curve.FromPairs([][2]float64{
		{70, -62}, {1100, -25}, {2600, -68}, {4200, -40}, {5500, -71},
	})
	defaultAmplitudeKnots = curve.FromPairs([][2]float64{
		{0, -50}, {0.15, -27}, {0.4, -10}, {1, -5}, {2, -5}, {2.7, -12}, {2.9, -30}, {3, -50},
	})
	defaultFrequencyKnots = curve.FromPairs([][2]float64{
		{0, 200}, {1.5, 600}, {3, 200},
	})
)

// Defaults returns the state that encodes to the empty string.
func Defaults() AppState {
	return AppState{
		SampleRate:     44100,
		AgcRmsLevel:    0.18,
		F0Multiplier:   1,
		SpecMultiplier: 1,
		SpecShift:      0,
		EvenAmplShift:  0,
		SpectrumCurve:  curve.MustAscending(defaultSpectrumKnots),
		AmplitudeCurve: curve.MustAscending(defaultAmplitudeKnots),
		FrequencyCurve: curve.MustAscending(defaultFrequencyKnots),
	}
}

// Values converts the state to URL parameters, leaving out defaults.
func (s AppState) Values() (url.Values, error) {
	d := Defaults()
	v := url.Values{}
	setNum(v, KeySampleRate, s.SampleRate, d.SampleRate)
	setNum(v, KeyAgcRmsLevel, s.AgcRmsLevel, d.AgcRmsLevel)
	setNum(v, KeyF0Multiplier, s.F0Multiplier, d.F0Multiplier)
	setNum(v, KeySpecMultiplier, s.SpecMultiplier, d.SpecMultiplier)
	setNum(v, KeySpecShift, s.SpecShift, d.SpecShift)
	setNum(v, KeyEvenAmplShift, s.EvenAmplShift, d.EvenAmplShift)
	if s.Reference != "" {
		v.Set(KeyReference, s.Reference)
	}
	if err := setKnots(v, spectrumSlot, s.SpectrumCurve, d.SpectrumCurve); err != nil {
		return nil, err
	}
	if err := setKnots(v, amplitudeSlot, s.AmplitudeCurve, d.AmplitudeCurve); err != nil {
		return nil, err
	}
	if err := setKnots(v, frequencySlot, s.FrequencyCurve, d.FrequencyCurve); err != nil {
		return nil, err
	}
	return v, nil
}

// Encode returns the URL parameter string of s. Keys are sorted.
func Encode(s AppState) (string, error) {
	v, err := s.Values()
	if err != nil {
		return "", err
	}
	return v.Encode(), nil
}

// Decode parses a parameter string produced by Encode. A leading "#" is
// ignored so a URL fragment can be passed as is. Absent or empty
// parameters take their default value.
func Decode(s string) (AppState, error) {
	v, err := url.ParseQuery(strings.TrimPrefix(s, "#"))
	if err != nil {
		return AppState{}, fmt.Errorf("parse parameters: %w", err)
	}
	return FromValues(v)
}

// DecodeOrDefault is Decode that falls back to the complete default state
// on any error. The error is still returned for reporting.
func DecodeOrDefault(s string) (AppState, error) {
	st, err := Decode(s)
	if err != nil {
		return Defaults(), err
	}
	return st, nil
}

// FromValues builds a state from already parsed URL parameters.
func FromValues(v url.Values) (AppState, error) {
	s := Defaults()
	var err error
	nums := []struct {
		key string
		dst *float64
	}{
		{KeySampleRate, &s.SampleRate},
		{KeyAgcRmsLevel, &s.AgcRmsLevel},
		{KeyF0Multiplier, &s.F0Multiplier},
		{KeySpecMultiplier, &s.SpecMultiplier},
		{KeySpecShift, &s.SpecShift},
		{KeyEvenAmplShift, &s.EvenAmplShift},
	}
	for _, n := range nums {
		if *n.dst, err = getNum(v, n.key, *n.dst); err != nil {
			return AppState{}, err
		}
	}
	s.Reference = v.Get(KeyReference)
	if s.SpectrumCurve, err = getKnots(v, spectrumSlot, s.SpectrumCurve); err != nil {
		return AppState{}, err
	}
	if s.AmplitudeCurve, err = getKnots(v, amplitudeSlot, s.AmplitudeCurve); err != nil {
		return AppState{}, err
	}
	if s.FrequencyCurve, err = getKnots(v, frequencySlot, s.FrequencyCurve); err != nil {
		return AppState{}, err
	}
	return s, nil
}

func setNum(v url.Values, key string, value, def float64) {
	if math.IsNaN(value) || value == def {
		return
	}
	v.Set(key, strconv.FormatFloat(value, 'f', -1, 64))
}

func getNum(v url.Values, key string, def float64) (float64, error) {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return def, nil
	}
	x, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(x) {
		return 0, fmt.Errorf("invalid value %q for numeric parameter %q", s, key)
	}
	return x, nil
}

func setKnots(v url.Values, sl slot, knots, def curve.Ascending) error {
	if knots.Points().Equal(def.Points(), knotEpsilon) {
		return nil
	}
	s, err := curvecodec.Encode(knots, sl.xType, sl.yType)
	if err != nil {
		return fmt.Errorf("encode %s: %w", sl.key, err)
	}
	v.Set(sl.key, s)
	return nil
}

func getKnots(v url.Values, sl slot, def curve.Ascending) (curve.Ascending, error) {
	s := v.Get(sl.key)
	if s == "" {
		return def, nil
	}
	c, err := curvecodec.Decode(s, sl.xType, sl.yType)
	if err != nil {
		return curve.Ascending{}, fmt.Errorf("decode %s: %w", sl.key, err)
	}
	return curve.NewAscending(c)
}

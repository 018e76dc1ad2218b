package appstate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-specsyn/curve"
)

// File is the JSON schema for sound presets. Absent fields keep the value
// of the state the file is applied to.
type File struct {
	SampleRate     *float64    `json:"sample_rate,omitempty"`
	AgcRmsLevel    *float64    `json:"agc_rms_level,omitempty"`
	F0Multiplier   *float64    `json:"f0_multiplier,omitempty"`
	SpecMultiplier *float64    `json:"spec_multiplier,omitempty"`
	SpecShift      *float64    `json:"spec_shift,omitempty"`
	EvenAmplShift  *float64    `json:"even_ampl_shift,omitempty"`
	Reference      string      `json:"reference,omitempty"`
	SpectrumCurve  curve.Curve `json:"spectrum_curve,omitempty"`
	AmplitudeCurve curve.Curve `json:"amplitude_curve,omitempty"`
	FrequencyCurve curve.Curve `json:"frequency_curve,omitempty"`
}

// LoadJSON loads a preset JSON file and applies it on top of Defaults.
// A relative reference path is resolved against the preset directory.
func LoadJSON(path string) (*AppState, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}

	s := Defaults()
	if err := ApplyFile(&s, &f); err != nil {
		return nil, err
	}

	if s.Reference != "" && !filepath.IsAbs(s.Reference) && !strings.Contains(s.Reference, "://") {
		base := filepath.Dir(path)
		s.Reference = filepath.Clean(filepath.Join(base, s.Reference))
	}
	return &s, nil
}

// ApplyFile applies a parsed preset file onto an existing state.
func ApplyFile(dst *AppState, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination state")
	}
	if f == nil {
		return nil
	}

	if f.SampleRate != nil {
		if *f.SampleRate <= 0 {
			return fmt.Errorf("sample_rate must be > 0")
		}
		dst.SampleRate = *f.SampleRate
	}
	if f.AgcRmsLevel != nil {
		if *f.AgcRmsLevel < 0 || *f.AgcRmsLevel >= 1 {
			return fmt.Errorf("agc_rms_level must be in [0,1)")
		}
		dst.AgcRmsLevel = *f.AgcRmsLevel
	}
	if f.F0Multiplier != nil {
		if *f.F0Multiplier <= 0 {
			return fmt.Errorf("f0_multiplier must be > 0")
		}
		dst.F0Multiplier = *f.F0Multiplier
	}
	if f.SpecMultiplier != nil {
		if *f.SpecMultiplier <= 0 {
			return fmt.Errorf("spec_multiplier must be > 0")
		}
		dst.SpecMultiplier = *f.SpecMultiplier
	}
	if f.SpecShift != nil {
		dst.SpecShift = *f.SpecShift
	}
	if f.EvenAmplShift != nil {
		dst.EvenAmplShift = *f.EvenAmplShift
	}
	if f.Reference != "" {
		dst.Reference = strings.TrimSpace(f.Reference)
	}

	curves := []struct {
		name string
		src  curve.Curve
		dst  *curve.Ascending
	}{
		{"spectrum_curve", f.SpectrumCurve, &dst.SpectrumCurve},
		{"amplitude_curve", f.AmplitudeCurve, &dst.AmplitudeCurve},
		{"frequency_curve", f.FrequencyCurve, &dst.FrequencyCurve},
	}
	for _, c := range curves {
		if len(c.src) == 0 {
			continue
		}
		a, err := curve.NewAscending(c.src)
		if err != nil {
			return fmt.Errorf("%s: %w", c.name, err)
		}
		*c.dst = a
	}
	return nil
}

// ToFile converts a state to the preset schema with every field set.
func ToFile(s AppState) File {
	return File{
		SampleRate:     ptr(s.SampleRate),
		AgcRmsLevel:    ptr(s.AgcRmsLevel),
		F0Multiplier:   ptr(s.F0Multiplier),
		SpecMultiplier: ptr(s.SpecMultiplier),
		SpecShift:      ptr(s.SpecShift),
		EvenAmplShift:  ptr(s.EvenAmplShift),
		Reference:      s.Reference,
		SpectrumCurve:  s.SpectrumCurve.Points(),
		AmplitudeCurve: s.AmplitudeCurve.Points(),
		FrequencyCurve: s.FrequencyCurve.Points(),
	}
}

// SaveJSON writes s as an indented preset file, creating parent directories.
func SaveJSON(path string, s AppState) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(ToFile(s), "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return os.WriteFile(path, b, 0o644)
}

func ptr(v float64) *float64 {
	return &v
}

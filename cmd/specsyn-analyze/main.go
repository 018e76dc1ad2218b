package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-specsyn/analysis"
	"github.com/cwbudde/algo-specsyn/appstate"
	"github.com/cwbudde/algo-specsyn/curve"
	"github.com/cwbudde/algo-specsyn/dsp"
	fitcommon "github.com/cwbudde/algo-specsyn/internal/fitcommon"
	"github.com/cwbudde/algo-specsyn/internal/logging"
	"github.com/cwbudde/algo-specsyn/spectral"
	"github.com/cwbudde/algo-specsyn/synth"
)

type options struct {
	input        string
	sampleRate   int
	f0           float64
	pitchPos     float64
	method       string
	width1       float64
	window1      string
	width2       float64
	window2      string
	maxFreq      float64
	specStep     float64
	ampStep      float64
	freqStep     float64
	outputPreset string
	compare      bool
	compareWAV   string
	report       string
}

type report struct {
	Input      string            `json:"input"`
	SampleRate int               `json:"sample_rate"`
	F0         float64           `json:"f0_reference"`
	State      string            `json:"state"`
	Metrics    *analysis.Metrics `json:"metrics,omitempty"`
}

func main() {
	var o options
	flag.StringVar(&o.input, "input", "", "Input WAV path (required)")
	flag.IntVar(&o.sampleRate, "sample-rate", 0, "Resample the input to this rate before analysis (0 keeps the file rate)")
	flag.Float64Var(&o.f0, "f0", 0, "Reference fundamental frequency in Hz (0 estimates it)")
	flag.Float64Var(&o.pitchPos, "pitch-pos", -1, "Position in seconds for f0 estimation (<0 uses the middle)")
	flag.StringVar(&o.method, "method", spectral.MethodFIRPowerLog.String(), "Smoothing method: smaPwrLog2|firLpPwrLog")
	flag.Float64Var(&o.width1, "width1", 1, "First smoothing width relative to f0")
	flag.StringVar(&o.window1, "window1", dsp.WindowParabolic.String(), "First FIR window function")
	flag.Float64Var(&o.width2, "width2", 1, "Second smoothing width relative to f0")
	flag.StringVar(&o.window2, "window2", dsp.WindowParabolic.String(), "Second FIR window function")
	flag.Float64Var(&o.maxFreq, "max-freq", 5500, "Upper frequency of the spectrum curve in Hz")
	flag.Float64Var(&o.specStep, "spec-step", 50, "Spectrum knot spacing in Hz")
	flag.Float64Var(&o.ampStep, "amp-step", 0.02, "Amplitude knot spacing in seconds")
	flag.Float64Var(&o.freqStep, "freq-step", 0.05, "Frequency knot spacing in seconds")
	flag.StringVar(&o.outputPreset, "output-preset", "", "Optional preset JSON output path")
	flag.BoolVar(&o.compare, "compare", false, "Resynthesize and compare against the input")
	flag.StringVar(&o.compareWAV, "compare-wav", "", "Optional path for the resynthesized WAV")
	flag.StringVar(&o.report, "report", "", "Optional report JSON path")
	logLevel := flag.String("log-level", "info", "Log level: debug|info|warn|error")
	logJSON := flag.Bool("log-json", false, "Log as JSON")
	flag.Parse()

	log := logging.NewForTool("specsyn-analyze", *logLevel, *logJSON)
	defer log.Sync() //nolint:errcheck

	if err := run(o, log); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(o options, log *zap.Logger) error {
	if o.input == "" {
		return errors.New("-input is required")
	}
	signal, sr, err := fitcommon.ReadWAVMono(o.input)
	if err != nil {
		return fmt.Errorf("read %s: %w", o.input, err)
	}
	if o.sampleRate > 0 && o.sampleRate != sr {
		log.Info("resampling input", zap.Int("from", sr), zap.Int("to", o.sampleRate))
		if signal, err = fitcommon.ResampleIfNeeded(signal, sr, o.sampleRate); err != nil {
			return fmt.Errorf("resample: %w", err)
		}
		sr = o.sampleRate
	}

	st, f0, err := analyze(signal, float64(sr), o, log)
	if err != nil {
		return err
	}
	st.Reference = o.input

	enc, err := appstate.Encode(st)
	if err != nil {
		return err
	}
	fmt.Println("#" + enc)

	if o.outputPreset != "" {
		if err := appstate.SaveJSON(o.outputPreset, st); err != nil {
			return fmt.Errorf("write %s: %w", o.outputPreset, err)
		}
		log.Info("wrote preset", zap.String("path", o.outputPreset))
	}

	rep := report{Input: o.input, SampleRate: sr, F0: f0, State: enc}
	if o.compare {
		resynth := synth.Synthesize(st.SynthParams(nil))
		m := analysis.Compare(signal, resynth, sr)
		rep.Metrics = &m
		fmt.Printf("Score=%.4f similarity=%.2f%% spectral=%.2fdB envelope=%.2fdB\n",
			m.Score, m.Similarity*100, m.SpectralRMSEDB, m.EnvelopeRMSEDB)
		if o.compareWAV != "" {
			if err := fitcommon.WriteMonoWAV(o.compareWAV, resynth, sr); err != nil {
				return fmt.Errorf("write %s: %w", o.compareWAV, err)
			}
		}
	}
	if o.report != "" {
		if err := writeJSON(o.report, rep); err != nil {
			return fmt.Errorf("write %s: %w", o.report, err)
		}
	}
	return nil
}

// analyze derives all three curves of a state from a recording.
func analyze(signal []float64, sampleRate float64, o options, log *zap.Logger) (appstate.AppState, float64, error) {
	st := appstate.Defaults()
	st.SampleRate = sampleRate

	f0 := o.f0
	if f0 <= 0 {
		pos := o.pitchPos
		if pos < 0 {
			pos = float64(len(signal)) / sampleRate / 2
		}
		est, err := spectral.EstimatePitch(signal, sampleRate, pos, spectral.DefaultPitchParams())
		if err != nil {
			return st, 0, fmt.Errorf("estimate f0: %w", err)
		}
		if math.IsNaN(est) {
			return st, 0, errors.New("no pitch found, pass -f0")
		}
		f0 = est
		log.Info("estimated f0", zap.Float64("hz", f0), zap.Float64("pos_s", pos))
	}

	p, err := spectrumParams(f0, o)
	if err != nil {
		return st, 0, err
	}
	spec, err := spectral.AnalyzeSpectrum(signal, sampleRate, p)
	if err != nil {
		return st, 0, fmt.Errorf("spectrum: %w", err)
	}
	amp, err := spectral.AnalyzeAmplitude(signal, sampleRate, o.ampStep)
	if err != nil {
		return st, 0, fmt.Errorf("amplitude: %w", err)
	}
	freq, err := spectral.AnalyzeFrequency(signal, sampleRate, f0, o.freqStep, spectral.DefaultPitchParams())
	if err != nil {
		return st, 0, fmt.Errorf("frequency: %w", err)
	}
	log.Debug("analysis done",
		zap.Int("spectrum_knots", len(spec.Knots)),
		zap.Int("amplitude_knots", len(amp)),
		zap.Int("frequency_knots", len(freq)),
	)

	slots := []struct {
		name string
		src  curve.Curve
		dst  *curve.Ascending
	}{
		{"spectrum", spec.Knots, &st.SpectrumCurve},
		{"amplitude", amp, &st.AmplitudeCurve},
		{"frequency", freq, &st.FrequencyCurve},
	}
	for _, s := range slots {
		if len(s.src) == 0 {
			log.Warn("empty curve, keeping default", zap.String("curve", s.name))
			continue
		}
		a, err := curve.NewAscending(s.src)
		if err != nil {
			return st, 0, fmt.Errorf("%s curve: %w", s.name, err)
		}
		*s.dst = a
	}
	return st, f0, nil
}

func spectrumParams(f0 float64, o options) (spectral.Params, error) {
	p := spectral.DefaultParams(f0)
	var err error
	if p.Method, err = spectral.ParseMethod(o.method); err != nil {
		return p, err
	}
	if p.Window1, err = spectral.ParseWindow(o.window1); err != nil {
		return p, err
	}
	if p.Window2, err = spectral.ParseWindow(o.window2); err != nil {
		return p, err
	}
	p.Width1 = o.width1
	p.Width2 = o.width2
	p.MaxFreq = o.maxFreq
	p.StepWidth = o.specStep
	return p, nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return os.WriteFile(path, b, 0o644)
}

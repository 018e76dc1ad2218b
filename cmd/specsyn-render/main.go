package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-specsyn/appstate"
	fitcommon "github.com/cwbudde/algo-specsyn/internal/fitcommon"
	"github.com/cwbudde/algo-specsyn/internal/logging"
	"github.com/cwbudde/algo-specsyn/synth"
)

type options struct {
	state      string
	presetPath string
	output     string
	sampleRate int
	play       bool
	distrib    string
	printState bool
}

func main() {
	var o options
	flag.StringVar(&o.state, "state", "", "Encoded parameter string (URL fragment, leading '#' allowed)")
	flag.StringVar(&o.presetPath, "preset", "", "Preset JSON file path (alternative to -state)")
	flag.StringVar(&o.output, "output", "output.wav", "Output WAV file path (empty disables writing)")
	flag.IntVar(&o.sampleRate, "sample-rate", 0, "Sample rate override in Hz (0 uses the state)")
	flag.BoolVar(&o.play, "play", false, "Play the rendered sound")
	flag.StringVar(&o.distrib, "distrib", "", "Optional CSV path for the harmonic energy distribution")
	flag.BoolVar(&o.printState, "print-state", false, "Print the encoded parameter string")
	logLevel := flag.String("log-level", "info", "Log level: debug|info|warn|error")
	logJSON := flag.Bool("log-json", false, "Log as JSON")
	flag.Parse()

	log := logging.NewForTool("specsyn-render", *logLevel, *logJSON)
	defer log.Sync() //nolint:errcheck

	if err := run(o, log); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(o options, log *zap.Logger) error {
	st, err := loadState(o.state, o.presetPath)
	if err != nil {
		return err
	}
	if o.sampleRate > 0 {
		st.SampleRate = float64(o.sampleRate)
	}
	if st.SampleRate <= 0 || st.SampleRate != math.Trunc(st.SampleRate) {
		return fmt.Errorf("sample rate must be a positive integer, got %g", st.SampleRate)
	}

	if o.printState {
		enc, err := appstate.Encode(st)
		if err != nil {
			return err
		}
		fmt.Println("#" + enc)
	}

	params := st.SynthParams(nil)
	log.Info("rendering",
		zap.Float64("duration_s", params.Duration),
		zap.Float64("sample_rate", params.SampleRate),
		zap.Float64("agc_rms", params.AgcRmsLevel),
	)
	samples := synth.Synthesize(params)

	if f0 := synth.AverageF0(params); !math.IsNaN(f0) {
		fmt.Printf("Average f0: %.1f Hz\n", f0)
	}

	if o.output != "" {
		if err := fitcommon.WriteMonoWAV(o.output, samples, int(st.SampleRate)); err != nil {
			return fmt.Errorf("write %s: %w", o.output, err)
		}
		log.Info("wrote output", zap.String("path", o.output), zap.Int("frames", len(samples)))
	}

	if o.distrib != "" {
		dp := st.DistribParams(nil)
		if err := writeDistribCSV(o.distrib, synth.ComputeDistrib(dp), dp.MaxFreq); err != nil {
			return fmt.Errorf("write %s: %w", o.distrib, err)
		}
		log.Info("wrote distribution", zap.String("path", o.distrib))
	}

	if o.play {
		log.Debug("playback started")
		if err := play(samples, int(st.SampleRate)); err != nil {
			return fmt.Errorf("playback: %w", err)
		}
	}
	return nil
}

// loadState builds the state from an encoded string or a preset file.
// With neither, the defaults are used.
func loadState(encoded, presetPath string) (appstate.AppState, error) {
	switch {
	case encoded != "" && presetPath != "":
		return appstate.AppState{}, errors.New("use either -state or -preset, not both")
	case presetPath != "":
		st, err := appstate.LoadJSON(presetPath)
		if err != nil {
			return appstate.AppState{}, fmt.Errorf("load preset %q: %w", presetPath, err)
		}
		return *st, nil
	default:
		st, err := appstate.Decode(encoded)
		if err != nil {
			return appstate.AppState{}, fmt.Errorf("decode state: %w", err)
		}
		return st, nil
	}
}

// writeDistribCSV writes one "frequency_hz,level_db" row per slot. Empty
// slots are written with an empty level.
func writeDistribCSV(path string, distrib []float64, maxFreq float64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"frequency_hz", "level_db"}); err != nil {
		return err
	}
	d := maxFreq / float64(len(distrib))
	for i, v := range distrib {
		level := ""
		if !math.IsInf(v, 0) && !math.IsNaN(v) {
			level = strconv.FormatFloat(v, 'f', 2, 64)
		}
		freq := strconv.FormatFloat(float64(i)*d, 'f', 1, 64)
		if err := w.Write([]string{freq, level}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

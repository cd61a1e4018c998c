package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/proegssilb/tiesr-dialer-sub000/feature"
	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated
// Config. It wraps LoadFromReader.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r over the defaults of the
// preset it names, then validates the result. An empty document gives the
// live defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}

	var head struct {
		Preset Preset `yaml:"preset"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if head.Preset != "" && !head.Preset.IsValid() {
		return nil, fmt.Errorf("config: preset %q is invalid; valid values: live, file", head.Preset)
	}

	cfg := PresetConfig(head.Preset)
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if !cfg.Preset.IsValid() {
		errs = append(errs, fmt.Errorf("preset %q is invalid; valid values: live, file", cfg.Preset))
	}

	// Front end
	if _, err := feature.NewDims(cfg.FrontEnd.NMFCC); err != nil {
		errs = append(errs, fmt.Errorf("frontend.n_mfcc %d is invalid; valid values: 8, 10, 13, 16", cfg.FrontEnd.NMFCC))
	}
	if cfg.FrontEnd.Preemphasis < 0 || cfg.FrontEnd.Preemphasis >= 1 {
		errs = append(errs, fmt.Errorf("frontend.preemphasis %.3f is out of range [0, 1)", cfg.FrontEnd.Preemphasis))
	}

	// Noise
	if !cfg.Noise.Strategy.IsValid() {
		errs = append(errs, fmt.Errorf("noise.strategy %q is invalid; valid values: none, plain, probabilistic", cfg.Noise.Strategy))
	}
	if cfg.Noise.Alpha < 0 || cfg.Noise.Alpha >= 1 {
		errs = append(errs, fmt.Errorf("noise.alpha %.3f is out of range [0, 1)", cfg.Noise.Alpha))
	}
	if cfg.Noise.MaxAttenuationDB < 0 {
		errs = append(errs, fmt.Errorf("noise.max_attenuation_db %.1f must not be negative", cfg.Noise.MaxAttenuationDB))
	} else if cfg.Noise.MaxAttenuationDB > 30 {
		slog.Warn("noise.max_attenuation_db is unusually high; musical noise is likely", "value", cfg.Noise.MaxAttenuationDB)
	}

	// Utterance detector
	if cfg.VAD.MinBeginFrames < 1 {
		errs = append(errs, fmt.Errorf("vad.min_begin_frames %d must be at least 1", cfg.VAD.MinBeginFrames))
	}
	if cfg.VAD.MinEndFrames < 1 {
		errs = append(errs, fmt.Errorf("vad.min_end_frames %d must be at least 1", cfg.VAD.MinEndFrames))
	}
	if cfg.VAD.SpeechDelta < 0 {
		errs = append(errs, fmt.Errorf("vad.speech_delta %d must not be negative", cfg.VAD.SpeechDelta))
	}
	if cfg.VAD.MinSpeechDB > 90 {
		slog.Warn("vad.min_speech_db is above the 16-bit dynamic range; no speech will be detected", "value", cfg.VAD.MinSpeechDB)
	}

	// JAC
	if cfg.JAC.VectorsPerFrame < 1 {
		errs = append(errs, fmt.Errorf("jac.vectors_per_frame %d must be at least 1", cfg.JAC.VectorsPerFrame))
	}
	if cfg.JAC.NoiseWait < 0 {
		errs = append(errs, fmt.Errorf("jac.noise_wait %d must not be negative", cfg.JAC.NoiseWait))
	}
	if !cfg.JAC.Enabled && cfg.SVA.Mode != "" && cfg.SVA.Mode != SVAOff {
		slog.Warn("sva is enabled while jac is disabled; variances adapt but means stay clean", "mode", cfg.SVA.Mode)
	}

	// SVA
	if !cfg.SVA.Mode.IsValid() {
		errs = append(errs, fmt.Errorf("sva.mode %q is invalid; valid values: off, sva, wsva", cfg.SVA.Mode))
	}
	if cfg.SVA.ForgetFactor < 0 || cfg.SVA.ForgetFactor > 1 {
		errs = append(errs, fmt.Errorf("sva.forget_factor %.3f is out of range [0, 1]", cfg.SVA.ForgetFactor))
	}

	// Model
	if !cfg.Model.MeanCodec.IsValid() {
		errs = append(errs, fmt.Errorf("model.mean_codec %q is invalid; valid values: short, byte", cfg.Model.MeanCodec))
	}

	// State
	if !cfg.State.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("state.backend %q is invalid; valid values: none, file, badger", cfg.State.Backend))
	}
	if (cfg.State.Backend == BackendFile || cfg.State.Backend == BackendBadger) && cfg.State.Path == "" {
		errs = append(errs, fmt.Errorf("state.path is required when backend is %s", cfg.State.Backend))
	}
	if cfg.State.Backend != BackendNone && cfg.State.Key == "" {
		errs = append(errs, errors.New("state.key is required when a state backend is set"))
	}

	return errors.Join(errs...)
}

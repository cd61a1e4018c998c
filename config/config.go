// Package config loads the YAML settings of an adaptation session.
package config

import (
	"math"

	tiesr "github.com/proegssilb/tiesr-dialer-sub000"
	"github.com/proegssilb/tiesr-dialer-sub000/acoustic"
	"github.com/proegssilb/tiesr-dialer-sub000/compensate"
	"github.com/proegssilb/tiesr-dialer-sub000/noise"
	"github.com/proegssilb/tiesr-dialer-sub000/vad"
)

// Preset names a set of defaults.
type Preset string

const (
	PresetLive Preset = "live"
	PresetFile Preset = "file"
)

func (p Preset) IsValid() bool { return p == PresetLive || p == PresetFile }

// NoiseStrategy is the spectral cleaning of the feature path.
type NoiseStrategy string

const (
	NoiseNone          NoiseStrategy = "none"
	NoisePlain         NoiseStrategy = "plain"
	NoiseProbabilistic NoiseStrategy = "probabilistic"
)

func (n NoiseStrategy) IsValid() bool {
	switch n {
	case NoiseNone, NoisePlain, NoiseProbabilistic:
		return true
	}
	return false
}

// SVAMode is the variance adaptation mode.
type SVAMode string

const (
	SVAOff      SVAMode = "off"
	SVAPlain    SVAMode = "sva"
	SVAWeighted SVAMode = "wsva"
)

func (m SVAMode) IsValid() bool { return m == SVAOff || m == SVAPlain || m == SVAWeighted }

// MeanCodec is the storage format of model means.
type MeanCodec string

const (
	CodecShort MeanCodec = "short"
	CodecByte  MeanCodec = "byte"
)

func (c MeanCodec) IsValid() bool { return c == CodecShort || c == CodecByte }

// Backend is where adaptation state is persisted.
type Backend string

const (
	BackendNone   Backend = "none"
	BackendFile   Backend = "file"
	BackendBadger Backend = "badger"
)

func (b Backend) IsValid() bool { return b == BackendNone || b == BackendFile || b == BackendBadger }

// Config is the top-level configuration.
type Config struct {
	Preset   Preset         `yaml:"preset"`
	FrontEnd FrontEndConfig `yaml:"frontend"`
	Noise    NoiseConfig    `yaml:"noise"`
	VAD      VADConfig      `yaml:"vad"`
	JAC      JACConfig      `yaml:"jac"`
	SVA      SVAConfig      `yaml:"sva"`
	Model    ModelConfig    `yaml:"model"`
	State    StateConfig    `yaml:"state"`
}

type FrontEndConfig struct {
	NMFCC int `yaml:"n_mfcc"`
	// Preemphasis is the pre-emphasis coefficient in [0, 1).
	Preemphasis float64 `yaml:"preemphasis"`
	FastDCT     bool    `yaml:"fast_dct"`
}

type NoiseConfig struct {
	Strategy NoiseStrategy `yaml:"strategy"`
	// Alpha smooths the speech presence probability, in [0, 1).
	Alpha float64 `yaml:"alpha"`
	// MaxAttenuationDB limits the spectral gain.
	MaxAttenuationDB float64 `yaml:"max_attenuation_db"`
}

type VADConfig struct {
	NoiseFloor     int `yaml:"noise_floor"`
	SpeechDelta    int `yaml:"speech_delta"`
	MinSpeechDB    int `yaml:"min_speech_db"`
	MinBeginFrames int `yaml:"min_begin_frames"`
	MinEndFrames   int `yaml:"min_end_frames"`
}

type JACConfig struct {
	Enabled         bool `yaml:"enabled"`
	VectorsPerFrame int  `yaml:"vectors_per_frame"`
	NoiseWait       int  `yaml:"noise_wait"`
	// NaturalLog selects natural log cepstra for compensation instead of
	// the log10 front end scale.
	NaturalLog bool `yaml:"natural_log"`
}

type SVAConfig struct {
	Mode SVAMode `yaml:"mode"`
	// ForgetFactor weights the previous variance scales, in [0, 1].
	ForgetFactor float64 `yaml:"forget_factor"`
}

type ModelConfig struct {
	Path      string    `yaml:"path"`
	MeanCodec MeanCodec `yaml:"mean_codec"`
}

type StateConfig struct {
	Backend Backend `yaml:"backend"`
	Path    string  `yaml:"path"`
	Key     string  `yaml:"key"`
}

// Live returns the defaults for live input.
func Live() Config {
	th := vad.Live.Defaults()
	return Config{
		Preset: PresetLive,
		FrontEnd: FrontEndConfig{
			NMFCC:       10,
			Preemphasis: 0.96,
		},
		Noise: NoiseConfig{
			Strategy:         NoiseProbabilistic,
			Alpha:            0.9,
			MaxAttenuationDB: 8,
		},
		VAD: VADConfig{
			NoiseFloor:     int(th.NoiseFloor),
			SpeechDelta:    int(th.SpeechDelta),
			MinSpeechDB:    int(th.MinSpeechDB),
			MinBeginFrames: th.MinBeginFrames,
			MinEndFrames:   th.MinEndFrames,
		},
		JAC: JACConfig{
			Enabled:         true,
			VectorsPerFrame: 100,
			NoiseWait:       10,
			NaturalLog:      true,
		},
		SVA: SVAConfig{
			Mode:         SVAOff,
			ForgetFactor: 0.9,
		},
		Model: ModelConfig{MeanCodec: CodecShort},
		State: StateConfig{Backend: BackendNone, Key: "default"},
	}
}

// File returns the defaults for recorded input. Only the end of utterance
// wait differs from Live.
func File() Config {
	c := Live()
	c.Preset = PresetFile
	c.VAD.MinEndFrames = vad.File.Defaults().MinEndFrames
	return c
}

// PresetConfig returns the defaults of p. Unknown presets give Live.
func PresetConfig(p Preset) Config {
	if p == PresetFile {
		return File()
	}
	return Live()
}

// Thresholds converts the vad section.
func (c *Config) Thresholds() vad.Thresholds {
	return vad.Thresholds{
		NoiseFloor:     int16(c.VAD.NoiseFloor),
		SpeechDelta:    int16(c.VAD.SpeechDelta),
		MinSpeechDB:    int16(c.VAD.MinSpeechDB),
		MinBeginFrames: c.VAD.MinBeginFrames,
		MinEndFrames:   c.VAD.MinEndFrames,
	}
}

// NoiseParams converts the noise section to fixed point.
func (c *Config) NoiseParams() noise.Params {
	// 10*log10(2) dB per log2 unit, Q9
	beta := -math.Round(c.Noise.MaxAttenuationDB * 512 / (10 * math.Log10(2)))
	return noise.Params{
		Alpha: q15(c.Noise.Alpha),
		Beta:  int16(max(beta, math.MinInt16)),
	}
}

// Scheduler converts the jac and sva sections.
func (c *Config) Scheduler() compensate.Config {
	cfg := compensate.Config{
		Rate:      c.JAC.VectorsPerFrame,
		NoiseWait: c.JAC.NoiseWait,
		JAC:       c.JAC.Enabled,
		Noise:     compensate.LiveNoise,
		Domain:    compensate.Log10,
	}
	if c.Preset == PresetFile {
		cfg.Noise = compensate.FileNoise
	}
	if c.JAC.NaturalLog {
		cfg.Domain = compensate.Natural
	}
	switch c.SVA.Mode {
	case SVAPlain:
		cfg.SVA = compensate.SVAPlain
	case SVAWeighted:
		cfg.SVA = compensate.SVAWeighted
	}
	return cfg
}

// Codec returns the mean codec for new models.
func (c *Config) Codec() acoustic.MeanVectorCodec {
	if c.Model.MeanCodec == CodecByte {
		return acoustic.ByteCodec{}
	}
	return acoustic.ShortCodec{}
}

// SessionOptions converts c to session options.
func (c *Config) SessionOptions() []tiesr.Option {
	strategy := tiesr.ProbabilisticNoise
	switch c.Noise.Strategy {
	case NoiseNone:
		strategy = tiesr.NoNoise
	case NoisePlain:
		strategy = tiesr.PlainNoise
	}
	return []tiesr.Option{
		tiesr.WithPreemphasis(int16(min(q15(c.FrontEnd.Preemphasis), math.MaxInt16))),
		tiesr.WithFastDCT(c.FrontEnd.FastDCT),
		tiesr.WithNoiseStrategy(strategy),
		tiesr.WithNoiseParams(c.NoiseParams()),
		tiesr.WithThresholds(c.Thresholds()),
		tiesr.WithScheduler(c.Scheduler()),
		tiesr.WithSVAForget(q15(c.SVA.ForgetFactor)),
	}
}

// q15 converts v in [0, 1] to Q15, saturating at 1.
func q15(v float64) uint16 {
	return uint16(min(max(math.Round(v*32768), 0), 32767))
}

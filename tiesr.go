// Package tiesr runs noise robust adaptation of a fixed-point Gaussian
// model against a live or recorded 8 kHz signal. A Session strings the
// front end, noise tracking, cepstrum, utterance detection and model
// compensation together for one stream.
package tiesr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/proegssilb/tiesr-dialer-sub000/acoustic"
	"github.com/proegssilb/tiesr-dialer-sub000/audio"
	"github.com/proegssilb/tiesr-dialer-sub000/compensate"
	"github.com/proegssilb/tiesr-dialer-sub000/feature"
	"github.com/proegssilb/tiesr-dialer-sub000/internal/observe"
	"github.com/proegssilb/tiesr-dialer-sub000/noise"
	"github.com/proegssilb/tiesr-dialer-sub000/vad"
)

// NoiseStrategy selects the spectral cleaning applied before the cepstrum.
type NoiseStrategy int

const (
	// NoNoise takes the mel energies straight from the FFT.
	NoNoise NoiseStrategy = iota
	PlainNoise
	ProbabilisticNoise
)

func (n NoiseStrategy) String() string {
	switch n {
	case NoNoise:
		return "none"
	case PlainNoise:
		return "plain"
	case ProbabilisticNoise:
		return "probabilistic"
	}
	return fmt.Sprintf("NoiseStrategy(%d)", int(n))
}

// Session adapts one model to one stream. It is not safe for concurrent
// use; run one Session per stream.
type Session struct {
	model   *acoustic.Model
	dims    *feature.Dims
	logger  *slog.Logger
	metrics *observe.Metrics

	preemphasis int16
	fastDCT     bool
	strategy    NoiseStrategy
	noiseParams noise.Params
	thresholds  vad.Thresholds
	schedCfg    compensate.Config
	forget      uint16

	fe      *feature.FrontEnd
	ex      *feature.Extractor
	sub     noise.Subtractor
	prob    *noise.Probabilistic
	energy  *noise.EnergyTracker
	det     *vad.Detector
	sched   *compensate.Scheduler
	channel *compensate.ChannelAccumulator

	spec   feature.Spectrum
	clean  [feature.WindowLen / 2]int16
	static [feature.MaxMFCC]int16
	feat   [2 * feature.MaxMFCC]int16

	frame int
	onset bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger for session events.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records session instruments on m.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithPreemphasis sets the Q15 pre-emphasis coefficient.
func WithPreemphasis(coef int16) Option {
	return func(s *Session) { s.preemphasis = coef }
}

// WithFastDCT selects the factored inverse cosine transform.
func WithFastDCT(fast bool) Option {
	return func(s *Session) { s.fastDCT = fast }
}

// WithNoiseStrategy selects the spectral cleaning of the feature path.
func WithNoiseStrategy(n NoiseStrategy) Option {
	return func(s *Session) { s.strategy = n }
}

// WithNoiseParams sets the gains of the probabilistic subtractor.
func WithNoiseParams(p noise.Params) Option {
	return func(s *Session) { s.noiseParams = p }
}

// WithThresholds sets the utterance detector thresholds.
func WithThresholds(th vad.Thresholds) Option {
	return func(s *Session) { s.thresholds = th }
}

// WithScheduler sets the compensation schedule.
func WithScheduler(cfg compensate.Config) Option {
	return func(s *Session) { s.schedCfg = cfg }
}

// WithSVAForget sets the Q15 forget factor of variance updates.
func WithSVAForget(f uint16) Option {
	return func(s *Session) { s.forget = f }
}

// NewSession creates a Session that compensates m in place.
func NewSession(m *acoustic.Model, opts ...Option) (*Session, error) {
	if m == nil {
		return nil, compensate.ErrNoModel
	}
	s := &Session{
		model:       m,
		dims:        m.Dims(),
		logger:      slog.Default(),
		preemphasis: feature.PreemphasisDefault,
		strategy:    ProbabilisticNoise,
		noiseParams: noise.DefaultParams,
		thresholds:  vad.Live.Defaults(),
		schedCfg:    compensate.DefaultConfig(),
		forget:      compensate.DefaultForget,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		met, err := observe.GlobalMetrics()
		if err != nil {
			return nil, fmt.Errorf("create metrics: %w", err)
		}
		s.metrics = met
	}

	sched, err := compensate.NewScheduler(m, s.schedCfg)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	sched.SVA().Forget = s.forget
	s.sched = sched

	s.fe = feature.NewFrontEnd(s.preemphasis)
	s.ex = feature.NewExtractor(s.dims, s.fastDCT)
	switch s.strategy {
	case ProbabilisticNoise:
		s.prob = noise.NewProbabilistic(s.noiseParams)
		s.sub = s.prob
		s.energy = s.prob.Energy()
	case PlainNoise:
		s.sub = noise.NewPlain()
		s.energy = noise.NewEnergyTracker()
	default:
		s.energy = noise.NewEnergyTracker()
	}
	sched.AttachEnergy(s.energy)
	s.det = vad.NewDetector(s.thresholds, nil)
	s.channel = compensate.NewChannelAccumulator(s.dims.NFilter, s.schedCfg.Domain)
	return s, nil
}

// NewSessionFromFile loads a model written by acoustic.Model.Save and
// creates a Session for it.
func NewSessionFromFile(modelPath string, opts ...Option) (*Session, error) {
	f, err := os.Open(modelPath)
	if err != nil {
		return nil, fmt.Errorf("open model: %w", err)
	}
	defer f.Close()
	m, err := acoustic.Load(f)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	return NewSession(m, opts...)
}

// FrameResult is the outcome of one ProcessFrame call. Static and Feature
// point into session buffers and are only valid until the next call.
type FrameResult struct {
	Frame int
	// Static is the static cepstrum of this frame, Q11.
	Static []int16
	// Feature is the next static+delta vector. It lags the input by the
	// regression look-ahead and is nil until one is ready.
	Feature []int16

	State          vad.State
	Speech         bool
	SpeechDetected bool
	Ended          bool
	BeginFrame     int
	EndFrame       int

	Compensated int
	CursorIndex int
	Cycles      int
	Adapted     bool
	SVAApplied  bool
}

// ProcessFrame runs one window of feature.WindowLen samples through the
// front end, noise tracker, cepstrum, utterance detector and scheduler.
func (s *Session) ProcessFrame(ctx context.Context, window []int16) (FrameResult, error) {
	if err := ctx.Err(); err != nil {
		return FrameResult{}, err
	}
	if err := s.fe.Process(window, &s.spec); err != nil {
		return FrameResult{}, err
	}
	shift := s.spec.Norm.PowerShift()

	var clean []int16
	if s.sub != nil {
		copy(s.clean[:], s.spec.Power[:])
		s.sub.Subtract(s.clean[:], shift)
		clean = s.clean[:]
	}
	if s.prob == nil {
		s.energy.Observe(s.spec.Power[:], shift)
	}

	n := s.dims.NMFCC
	static := s.static[:n]
	s.ex.Static(&s.spec, clean, static)

	res := FrameResult{Frame: s.frame, Static: static}
	if v := s.feat[:s.dims.VecSize()]; s.ex.Push(static, v) {
		res.Feature = v
	}

	res.State = s.det.Process(s.spec.Power[:], s.spec.Norm)
	res.Speech = s.det.IsSpeech()
	res.SpeechDetected = s.det.SpeechDetected()
	res.Ended = s.det.Ended()
	res.BeginFrame = s.det.BeginFrame()
	res.EndFrame = s.det.EndFrame()

	step, err := s.sched.Frame(static, res.SpeechDetected)
	if err != nil {
		return res, err
	}
	cur := s.sched.Cursor()
	res.Compensated = step.Compensated
	res.SVAApplied = step.SVAApplied
	res.CursorIndex = cur.Index()
	res.Cycles = cur.Cycles()
	res.Adapted = s.sched.Adapted()

	s.record(ctx, res, step)
	s.frame++
	return res, nil
}

func (s *Session) record(ctx context.Context, res FrameResult, step compensate.Step) {
	m := s.metrics
	m.RecordFrame(ctx, s.energy.FrameEn())
	if res.SpeechDetected && !s.onset {
		s.onset = true
		m.SpeechOnsets.Add(ctx, 1)
	}
	if step.Compensated > 0 {
		m.JACVectors.Add(ctx, int64(step.Compensated))
	}
	if step.Wrapped {
		m.JACCycles.Add(ctx, 1)
		if res.Cycles == 1 {
			s.logger.Debug("first adaptation cycle complete", "frame", res.Frame, "vectors", s.model.NumMeans())
		}
	}
	if step.SVAApplied {
		m.SVAUpdates.Add(ctx, 1)
		s.logger.Debug("variance adaptation applied", "frame", res.Frame, "mode", s.schedCfg.SVA, "mean_en", s.energy.MeanEn())
	}
	if s.energy.Count() == noiseLatchFrame+1 {
		s.logger.Debug("noise level latched", "frame", res.Frame, "level", s.energy.NoiseLevel())
	}
}

// noiseLatchFrame is the frame at which the energy tracker fixes the
// utterance noise level.
const noiseLatchFrame = 10

// Flush releases the static+delta vectors still held for regression
// look-ahead at the end of an utterance.
func (s *Session) Flush() [][]int16 {
	var out [][]int16
	for {
		v := make([]int16, s.dims.VecSize())
		if !s.ex.Drain(v) {
			return out
		}
		out = append(out, v)
	}
}

// StartUtterance resets the per-utterance state: pre-emphasis memory,
// regression history, noise floors, the utterance detector and the noise
// estimate. The channel, variance multipliers and cursor carry over.
func (s *Session) StartUtterance() {
	s.fe.Reset()
	s.ex.Reset()
	if s.sub != nil {
		s.sub.Reset()
	}
	if s.prob == nil {
		s.energy.Reset()
	}
	s.det.Reset()
	s.sched.StartUtterance()
	s.frame = 0
	s.onset = false
}

// Result summarises a processed signal.
type Result struct {
	Frames         int
	Features       [][]int16
	SpeechDetected bool
	BeginFrame     int
	EndFrame       int
	Compensated    int
	Cycles         int
	Adapted        bool
}

// ProcessSamples runs a whole 8 kHz utterance through the session.
func (s *Session) ProcessSamples(ctx context.Context, samples []int16) (*Result, error) {
	frames := feature.Frames(samples)
	if len(frames) == 0 {
		return nil, fmt.Errorf("no samples")
	}
	s.StartUtterance()
	r := &Result{Features: make([][]int16, 0, len(frames))}
	for _, w := range frames {
		fr, err := s.ProcessFrame(ctx, w)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", r.Frames, err)
		}
		r.Frames++
		r.Compensated += fr.Compensated
		r.SpeechDetected = fr.SpeechDetected
		r.BeginFrame = fr.BeginFrame
		r.EndFrame = fr.EndFrame
		r.Cycles = fr.Cycles
		r.Adapted = fr.Adapted
		if fr.Feature != nil {
			r.Features = append(r.Features, slices.Clone(fr.Feature))
		}
	}
	r.Features = append(r.Features, s.Flush()...)
	return r, nil
}

// ProcessFile reads a mono 16-bit WAV file, resamples it to 8 kHz when
// needed and processes it as one utterance.
func (s *Session) ProcessFile(ctx context.Context, wavPath string) (*Result, error) {
	samples, hdr, err := audio.ReadWAVFile(wavPath)
	if err != nil {
		return nil, fmt.Errorf("read WAV: %w", err)
	}
	if hdr.SampleRate != feature.SampleRate {
		samples, err = audio.Resample(samples, int(hdr.SampleRate), feature.SampleRate)
		if err != nil {
			return nil, err
		}
	}
	return s.ProcessSamples(ctx, samples)
}

// Model returns the model being compensated.
func (s *Session) Model() *acoustic.Model { return s.model }

// Scheduler returns the compensation scheduler.
func (s *Session) Scheduler() *compensate.Scheduler { return s.sched }

// Channel returns the channel estimation sums. An external aligner feeds
// them through Accumulate; UpdateChannel applies them.
func (s *Session) Channel() *compensate.ChannelAccumulator { return s.channel }

// UpdateChannel moves the channel estimate by the accumulated sums.
func (s *Session) UpdateChannel() compensate.Status {
	return s.channel.Update(s.sched.LogH)
}

// Energy returns the frame energy tracker.
func (s *Session) Energy() *noise.EnergyTracker { return s.energy }

// SetNoiseParams changes the probabilistic subtractor gains.
func (s *Session) SetNoiseParams(p noise.Params) {
	s.noiseParams = p
	if s.prob != nil {
		s.prob.SetParams(p)
	}
}

// NoiseParams returns the probabilistic subtractor gains.
func (s *Session) NoiseParams() noise.Params { return s.noiseParams }

// SetSAD changes the utterance detector thresholds.
func (s *Session) SetSAD(th vad.Thresholds) {
	s.thresholds = th
	s.det.SetThresholds(th)
}

// SAD returns the utterance detector thresholds.
func (s *Session) SAD() vad.Thresholds { return s.thresholds }

// SetJACRate changes the number of means compensated per frame.
func (s *Session) SetJACRate(n int) {
	s.sched.SetRate(n)
	s.schedCfg.Rate = s.sched.Config().Rate
}

// JACRate returns the number of means compensated per frame.
func (s *Session) JACRate() int { return s.sched.Config().Rate }

// SetSVAForget changes the Q15 forget factor of variance updates.
func (s *Session) SetSVAForget(f uint16) {
	s.forget = f
	s.sched.SVA().Forget = f
}

// SVAForget returns the Q15 forget factor of variance updates.
func (s *Session) SVAForget() uint16 { return s.forget }

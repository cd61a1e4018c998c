package compensate

import (
	"fmt"

	"github.com/proegssilb/tiesr-dialer-sub000/acoustic"
	"github.com/proegssilb/tiesr-dialer-sub000/feature"
	"github.com/proegssilb/tiesr-dialer-sub000/noise"
)

// NoiseMode selects how the noise cepstrum is tracked.
type NoiseMode int

const (
	// LiveNoise averages the first frames, then follows the input with a
	// 1:15 low-pass filter.
	LiveNoise NoiseMode = iota
	// FileNoise averages the leading frames of a recording, freezes the
	// estimate and compensates the whole model once.
	FileNoise
)

func (m NoiseMode) String() string {
	if m == FileNoise {
		return "file"
	}
	return "live"
}

const (
	// liveAverageFrames matches the regression buffer length.
	liveAverageFrames = 14
	fileAverageFrames = 10
	// svaFrame is the frame at which the noise level is first usable.
	svaFrame = 10
)

// Config holds the scheduler settings.
type Config struct {
	// Rate is the number of mean vectors compensated per frame.
	Rate int
	// NoiseWait is the number of frames observed before compensation
	// starts, unless speech is detected earlier.
	NoiseWait int
	JAC       bool
	Noise     NoiseMode
	Domain    Domain
	SVA       SVAMode
}

// DefaultConfig returns the live settings.
func DefaultConfig() Config {
	return Config{
		Rate:      100,
		NoiseWait: 10,
		JAC:       true,
		Noise:     LiveNoise,
		Domain:    Natural,
		SVA:       SVAOff,
	}
}

// Step reports what one Frame call did.
type Step struct {
	Compensated int
	// Wrapped is set when the cursor completed a cycle during this frame.
	Wrapped    bool
	SVAApplied bool
}

// Scheduler spreads model compensation over incoming frames. It tracks
// the noise cepstrum, converts it to a log-mel noise estimate and
// compensates a fixed quota of means per frame, catching up on the rest
// as soon as speech is detected.
type Scheduler struct {
	cfg   Config
	model *acoustic.Model
	comp  *Compensator
	dims  *feature.Dims

	cursor Cursor
	sva    *SVA
	energy *noise.EnergyTracker

	// LogH is the channel log-mel spectrum, Q9.
	LogH []int16
	logN [feature.MaxFilters]int16

	noiseCep [feature.MaxMFCC]int16
	noiseAcc [feature.MaxMFCC]int32

	frames   int
	svaDone  bool
	passDone bool
}

// NewScheduler returns a scheduler that compensates m in place.
func NewScheduler(m *acoustic.Model, cfg Config) (*Scheduler, error) {
	if m == nil {
		return nil, ErrNoModel
	}
	if cfg.Rate < 1 {
		return nil, fmt.Errorf("compensate: rate %d must be positive", cfg.Rate)
	}
	comp, err := NewCompensator(m, cfg.Domain)
	if err != nil {
		return nil, err
	}
	d := m.Dims()
	return &Scheduler{
		cfg:    cfg,
		model:  m,
		comp:   comp,
		dims:   d,
		cursor: NewCursor(m.NumMeans()),
		sva:    NewSVA(m.VecSize(), cfg.SVA),
		LogH:   make([]int16, d.NFilter),
	}, nil
}

// AttachEnergy gives weighted SVA access to the noise energy of the
// current and previous utterance. nil detaches it.
func (s *Scheduler) AttachEnergy(e *noise.EnergyTracker) { s.energy = e }

// Config returns the current settings.
func (s *Scheduler) Config() Config { return s.cfg }

// SetRate changes the per-frame quota. Values below 1 are ignored.
func (s *Scheduler) SetRate(rate int) {
	if rate >= 1 {
		s.cfg.Rate = rate
	}
}

// Cursor returns the compensation cursor.
func (s *Scheduler) Cursor() *Cursor { return &s.cursor }

// SVA returns the variance adapter.
func (s *Scheduler) SVA() *SVA { return s.sva }

// LogN returns the current noise log-mel spectrum, Q9.
func (s *Scheduler) LogN() []int16 { return s.logN[:s.dims.NFilter] }

// NoiseCepstrum returns the current static noise cepstrum, Q11.
func (s *Scheduler) NoiseCepstrum() []int16 { return s.noiseCep[:s.dims.NMFCC] }

// Frames is the number of frames seen in this utterance.
func (s *Scheduler) Frames() int { return s.frames }

// Adapted reports whether every mean has been compensated at least once.
func (s *Scheduler) Adapted() bool { return s.cursor.Cycles() > 0 }

// StartUtterance restarts noise estimation and re-arms SVA. The cursor,
// channel and variance multipliers carry over.
func (s *Scheduler) StartUtterance() {
	s.frames = 0
	s.svaDone = false
	s.passDone = false
	clear(s.noiseAcc[:])
}

// Frame processes the static cepstrum of one input frame (Q11, at least
// NMFCC values). speech reports whether the utterance detector has seen
// speech.
func (s *Scheduler) Frame(mfcc []int16, speech bool) (Step, error) {
	var st Step
	n := s.dims.NMFCC
	if len(mfcc) < n {
		return st, fail(StatusFail, fmt.Errorf("%w: %d coefficients, want %d", ErrModelDimension, len(mfcc), n))
	}
	defer func() { s.frames++ }()

	if !s.svaDone && s.sva.Mode != SVAOff && (s.frames == svaFrame || speech) {
		if err := s.sva.Apply(s.model, s.energy); err != nil {
			return st, err
		}
		s.svaDone = true
		st.SVAApplied = true
	}

	s.trackNoise(mfcc[:n])
	if !s.cfg.JAC {
		return st, nil
	}
	s.dims.CosTransform(s.noiseCep[:n], s.dims.MuScaleP2[:n], s.logN[:s.dims.NFilter])

	if s.frames < s.cfg.NoiseWait && !speech {
		return st, nil
	}
	quota := min(s.cfg.Rate, s.cursor.Len())
	switch {
	case s.cfg.Noise == FileNoise:
		// the estimate is frozen, so one full pass per utterance
		if s.passDone {
			return st, nil
		}
		quota = s.cursor.Len()
		s.passDone = true
	case speech && s.cursor.Cycles() == 0:
		quota = s.cursor.Remaining()
	}
	for range quota {
		if err := s.comp.CompensateMean(s.model, s.cursor.Index(), s.LogN(), s.LogH); err != nil {
			return st, fail(StatusFail, err)
		}
		st.Compensated++
		if s.cursor.Advance() {
			st.Wrapped = true
		}
	}
	return st, nil
}

func (s *Scheduler) trackNoise(mfcc []int16) {
	avgFrames := liveAverageFrames
	if s.cfg.Noise == FileNoise {
		avgFrames = fileAverageFrames + 1
	}
	if s.frames >= avgFrames {
		if s.cfg.Noise == LiveNoise {
			for i, v := range mfcc {
				s.noiseCep[i] = int16((int32(v) + 15*int32(s.noiseCep[i])) >> 4)
			}
		}
		return
	}
	for i, v := range mfcc {
		if s.frames == 0 {
			s.noiseAcc[i] = int32(v)
		} else {
			s.noiseAcc[i] += int32(v)
		}
		s.noiseCep[i] = int16(s.noiseAcc[i] / int32(s.frames+1))
	}
}

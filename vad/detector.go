// Package vad implements the utterance detector: a speech decision from
// the smoothed pitch-band autocorrelation peak, followed by a four state
// machine that adds onset and offset hysteresis.
package vad

import (
	"github.com/proegssilb/tiesr-dialer-sub000/feature"
	"github.com/proegssilb/tiesr-dialer-sub000/internal/fixedpoint"
	"github.com/proegssilb/tiesr-dialer-sub000/noise"
)

// State is the utterance detector state.
type State int

const (
	NonSpeech State = iota
	PreSpeech
	InSpeech
	PreNonSpeech
)

func (s State) String() string {
	switch s {
	case NonSpeech:
		return "non-speech"
	case PreSpeech:
		return "pre-speech"
	case InSpeech:
		return "in-speech"
	case PreNonSpeech:
		return "pre-non-speech"
	}
	return "unknown"
}

// Thresholds are the detector settings. Levels are in dB.
type Thresholds struct {
	NoiseFloor     int16 // lowest noise level the speech threshold is based on
	SpeechDelta    int16 // margin above the noise level for a speech frame
	MinSpeechDB    int16 // absolute level below which nothing is speech
	MinBeginFrames int   // speech frames needed to confirm an onset
	MinEndFrames   int   // non-speech frames needed to confirm the end
}

// Preset names a set of default thresholds.
type Preset int

const (
	// Live favours low end-of-utterance latency.
	Live Preset = iota
	// File tolerates longer pauses inside recorded utterances.
	File
)

// Defaults returns the thresholds of preset p.
func (p Preset) Defaults() Thresholds {
	t := Thresholds{
		NoiseFloor:     0,
		SpeechDelta:    10,
		MinSpeechDB:    50,
		MinBeginFrames: 5,
		MinEndFrames:   35,
	}
	if p == File {
		t.MinEndFrames = 70
	}
	return t
}

func (p Preset) String() string {
	if p == File {
		return "file"
	}
	return "live"
}

const (
	// dB to the Q6 autocorrelation scale.
	acScale = 64
	// Initial noise and speech level, dB.
	initLevel = 70

	// autocorrelation smoothing weight of the new value, Q15
	smoothWeight int16 = 16384

	// Level tracker time constants, Q15 weights on the old value.
	speechUp   int16 = 12055 // exp(-1)
	speechDown int16 = 32119 // exp(-1/50)
	noiseUp          = speechDown
	noiseDown        = speechUp

	// Bins attenuated geometrically below lowCut and above highCut.
	lowCut   = 13
	highCut  = 86
	lowRate  = 22938 // 0.70, Q15
	highRate = 27853 // 0.85, Q15

	// Autocorrelation lags searched for the pitch peak: 400 Hz down to
	// about 67 Hz.
	lagBegin = 20
	lagEnd   = 120
)

// Detector is one utterance detector. It owns a private noise subtractor
// so that its spectral cleaning does not interact with the feature path.
type Detector struct {
	th  Thresholds
	sub noise.Subtractor

	state          State
	frame          int
	cnt            int
	deltaAcc       int32
	begFrame       int
	endFrame       int
	speechDetected bool
	isSpeech       bool

	smAutoc     int16
	speechLevel int16
	noiseLevel  int16

	re [feature.WindowLen]int16
	im [feature.WindowLen]int16
}

// NewDetector returns a detector with thresholds th. A nil sub uses a
// plain spectral subtractor.
func NewDetector(th Thresholds, sub noise.Subtractor) *Detector {
	if sub == nil {
		sub = noise.NewPlain()
	}
	d := &Detector{th: th, sub: sub}
	d.Reset()
	return d
}

// Reset starts a new utterance.
func (d *Detector) Reset() {
	d.smAutoc = initLevel * acScale
	d.noiseLevel = initLevel * acScale
	d.speechLevel = initLevel * acScale
	d.state = NonSpeech
	d.speechDetected = false
	d.isSpeech = false
	d.frame = 0
	d.cnt = 0
	d.deltaAcc = 0
	d.begFrame = -1
	d.endFrame = -1
	d.sub.Reset()
}

// SetThresholds replaces the thresholds; it takes effect on the next frame.
func (d *Detector) SetThresholds(th Thresholds) { d.th = th }

// Thresholds returns the thresholds in use.
func (d *Detector) Thresholds() Thresholds { return d.th }

// Process runs one frame. ps is the front end power spectrum and is left
// untouched.
func (d *Detector) Process(ps []int16, norm feature.NormTriple) State {
	d.isSpeech = d.speechFrame(ps, norm)
	return d.Step(d.isSpeech)
}

func (d *Detector) speechFrame(ps []int16, norm feature.NormTriple) bool {
	const half = feature.WindowLen / 2
	n3 := norm.PowerShift()

	copy(d.re[:half], ps[:half])
	d.sub.Subtract(d.re[:half], n3)
	shape(d.re[:])

	n4 := fixedpoint.Headroom(int64(fixedpoint.MaxAbs16(d.re[:])), fixedpoint.Norm16Target)
	for i := range d.re {
		d.re[i] <<= uint(n4)
		d.im[i] = 0
	}
	n3 += n4

	// the spectrum is real and symmetric, so its FFT is the autocorrelation
	feature.FFT(d.re[:], d.im[:])

	peak := d.re[lagBegin]
	for i := lagBegin; i < lagEnd; i++ {
		if d.re[i] > peak {
			peak = d.re[i]
		}
	}

	// 10*log10(peak) in Q6
	l := int64(fixedpoint.LogPolyfit(int32(peak), n3))
	autoc := int16((l * fixedpoint.Log2ToLog10 * 10) >> 18)

	d.smAutoc = fixedpoint.Sat16(fixedpoint.RoundShift(noise.Smooth(d.smAutoc, smoothWeight, autoc), 15))
	d.speechLevel = noise.UpdateLevel(d.smAutoc, d.speechLevel, speechUp, speechDown)
	d.noiseLevel = noise.UpdateLevel(d.smAutoc, d.noiseLevel, noiseUp, noiseDown)

	t := int32(d.smAutoc)
	t += t >> 4
	t += t >> 5

	base := int32(d.th.NoiseFloor) * acScale
	if int32(d.noiseLevel) > base {
		base = int32(d.noiseLevel)
	}
	return t > base+int32(d.th.SpeechDelta)*acScale && t > int32(d.th.MinSpeechDB)*acScale
}

// shape attenuates the band edges of the first half of sig and mirrors it
// into the second half.
func shape(sig []int16) {
	const half = feature.WindowLen / 2
	alpha := int32(fixedpoint.OneQ15)
	for i := lowCut; i >= 0; i-- {
		sig[i] = int16((int32(sig[i]) * alpha) >> 15)
		alpha = (alpha * lowRate) >> 15
	}
	alpha = fixedpoint.OneQ15
	for i := highCut; i < half; i++ {
		sig[i] = int16((int32(sig[i]) * alpha) >> 15)
		alpha = (alpha * highRate) >> 15
	}
	sig[half] = 0
	for i := 1; i < half; i++ {
		sig[half+i] = sig[half-i]
	}
}

// Step advances the state machine with one speech decision.
func (d *Detector) Step(isSpeech bool) State {
	frame := d.frame
	d.frame++
	delta := int32(d.smAutoc) - int32(d.noiseLevel)

	switch d.state {
	case NonSpeech:
		if isSpeech {
			d.cnt = 1
			d.begFrame = frame
			d.deltaAcc = delta
			d.state = PreSpeech
		}
	case PreSpeech:
		if !isSpeech {
			d.state = NonSpeech
			break
		}
		d.cnt++
		d.deltaAcc += delta
		// average evidence above 1.25 times the speech delta
		sd := int32(d.th.SpeechDelta)
		strong := d.deltaAcc > (sd+sd>>2)*acScale*int32(d.cnt) && d.cnt >= d.th.MinBeginFrames-2
		if d.cnt >= d.th.MinBeginFrames || strong {
			d.state = InSpeech
			d.speechDetected = true
		}
	case InSpeech:
		if !isSpeech {
			d.endFrame = frame
			d.cnt = 1
			d.state = PreNonSpeech
		}
	case PreNonSpeech:
		if isSpeech {
			d.state = InSpeech
			break
		}
		d.cnt++
		if d.cnt >= d.th.MinEndFrames {
			d.state = NonSpeech
		}
	}
	return d.state
}

// State is the current state.
func (d *Detector) State() State { return d.state }

// IsSpeech is the speech decision of the last processed frame.
func (d *Detector) IsSpeech() bool { return d.isSpeech }

// SpeechDetected reports whether InSpeech has been entered since Reset.
func (d *Detector) SpeechDetected() bool { return d.speechDetected }

// Ended reports whether speech was detected and the end has been confirmed.
func (d *Detector) Ended() bool { return d.speechDetected && d.state == NonSpeech }

// BeginFrame is the first frame of the detected onset, or -1.
func (d *Detector) BeginFrame() int { return d.begFrame }

// EndFrame is the first non-speech frame after the last speech, or -1.
func (d *Detector) EndFrame() int { return d.endFrame }

// Levels returns the smoothed autocorrelation, speech level and noise
// level, dB in Q6.
func (d *Detector) Levels() (autoc, speech, noiseLevel int16) {
	return d.smAutoc, d.speechLevel, d.noiseLevel
}

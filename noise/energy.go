package noise

import "github.com/proegssilb/tiesr-dialer-sub000/internal/fixedpoint"

const (
	// Frames using the fast 1/(n+1) mean energy update.
	minFrame = 10
	// Frame whose mean energy is latched as the utterance noise level.
	noiseLevelFrame = 10

	lambdaLTE        uint16 = 983 // 0.03, Q15
	lambdaLTEHigherE uint16 = 328 // 0.01, Q15

	// log2 differences, Q9.
	snrThresholdUpdate = 1701 // 10 dB
	snrThresholdVAD    = 1024 // 6 dB

	energyFloor       int16 = -5120
	minFrameEnergy    int16 = -5120
	speechForHangover       = 4
	hangoverFrames          = 5
)

// coefDownTo1Over10 is 1/(n+1) in Q15 for the first minFrame frames.
var coefDownTo1Over10 = [minFrame]uint16{32767, 16384, 10923, 8192, 6554, 5461, 4681, 4096, 3641, 3277}

// FrameEnergy returns log2 of the largest bin of ps, Q9, or a fixed floor
// for an all-zero spectrum.
func FrameEnergy(ps []int16, norm int) int16 {
	var peak int32
	for i := 0; i < NumBins && i < len(ps); i++ {
		if int32(ps[i]) > peak {
			peak = int32(ps[i])
		}
	}
	if peak <= 0 {
		return minFrameEnergy
	}
	return fixedpoint.LogPolyfit(peak, norm)
}

// EnergyTracker follows the long term mean frame energy and makes a simple
// energy based speech decision with hangover. The mean energy of the last
// utterance survives Reset so that a sudden change in noise level between
// utterances can be detected.
type EnergyTracker struct {
	meanEn     int16
	prevMeanEn int16
	noiseLevel int16
	frameEn    int16

	count      int
	nbSpeech   int
	hangover   int
	lastSpeech bool
}

// NewEnergyTracker returns a tracker with zero mean energy.
func NewEnergyTracker() *EnergyTracker { return &EnergyTracker{} }

// Reset starts a new utterance.
func (e *EnergyTracker) Reset() {
	e.prevMeanEn = e.meanEn
	e.count = 0
	e.nbSpeech = 0
	e.hangover = 0
	e.lastSpeech = false
}

// Update folds one frame energy (from FrameEnergy) into the mean and returns
// the frame energy on the tracker's scale.
func (e *EnergyTracker) Update(energy int16) int16 {
	frmEn := fixedpoint.Sat16(16 + int32(energy))
	e.frameEn = frmEn

	lambda := lambdaLTE
	early := e.count < minFrame
	if early {
		lambda = coefDownTo1Over10[e.count]
	}
	diff := int32(frmEn) - int32(e.meanEn)
	if diff < snrThresholdUpdate || early {
		if frmEn >= e.meanEn && !early {
			lambda = lambdaLTEHigherE
		}
		m := int32(e.meanEn) + fixedpoint.Q15Mul(lambda, diff)
		if m < int32(energyFloor) {
			m = int32(energyFloor)
		}
		e.meanEn = fixedpoint.Sat16(m)
	}
	if e.count == noiseLevelFrame {
		e.noiseLevel = e.meanEn
	}
	return frmEn
}

// Speech decides whether frmEn, as returned by Update, is speech. Frames
// before the fifth are never speech. A run of more than four speech frames
// keeps the decision on for five more frames.
func (e *EnergyTracker) Speech(frmEn int16) bool {
	speech := false
	if e.count > 4 {
		if int32(frmEn)-int32(e.meanEn) > snrThresholdVAD {
			speech = true
			e.nbSpeech++
		} else {
			if e.nbSpeech > speechForHangover {
				e.hangover = hangoverFrames
			}
			e.nbSpeech = 0
			if e.hangover != 0 {
				e.hangover--
				speech = true
			}
		}
	}
	e.lastSpeech = speech
	return speech
}

// Observe runs FrameEnergy and Update on ps and finishes the frame. It is
// used when the tracker runs without a subtractor.
func (e *EnergyTracker) Observe(ps []int16, norm int) int16 {
	frmEn := e.Update(FrameEnergy(ps, norm))
	e.Next()
	return frmEn
}

// Next finishes the current frame.
func (e *EnergyTracker) Next() { e.count++ }

// Count is the number of frames seen in this utterance.
func (e *EnergyTracker) Count() int { return e.count }

// MeanEn is the long term mean frame energy, log2 Q9.
func (e *EnergyTracker) MeanEn() int16 { return e.meanEn }

// PrevMeanEn is MeanEn as it stood when the previous utterance ended.
func (e *EnergyTracker) PrevMeanEn() int16 { return e.prevMeanEn }

// NoiseLevel is the mean energy latched early in the utterance.
func (e *EnergyTracker) NoiseLevel() int16 { return e.noiseLevel }

// FrameEn is the frame energy of the last Update.
func (e *EnergyTracker) FrameEn() int16 { return e.frameEn }

// LastSpeech is the result of the last Speech call.
func (e *EnergyTracker) LastSpeech() bool { return e.lastSpeech }

// SetMeanEn restores a persisted mean energy.
func (e *EnergyTracker) SetMeanEn(meanEn, prevMeanEn int16) {
	e.meanEn = meanEn
	e.prevMeanEn = prevMeanEn
}

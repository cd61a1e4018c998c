package noise

import "github.com/proegssilb/tiesr-dialer-sub000/internal/fixedpoint"

// Params are the tunable gains of the probabilistic subtractor.
type Params struct {
	// Alpha is the Q15 smoothing factor of the speech presence
	// probability.
	Alpha uint16
	// Beta is the most negative spectral gain, log2 Q9.
	Beta int16
}

// DefaultParams gives an 8 dB maximum attenuation.
var DefaultParams = Params{Alpha: 29491, Beta: -1361}

const (
	// Frames averaged with 1-1/(n+1) weights before the floor adapts.
	warmupFrames = 10
	// Speech presence probability below which the floor may move, Q15.
	probUpdateLimit = 6553
	// Bounds of the adaptive floor smoothing factor, Q15.
	minFloorAlpha = 9830
	maxFloorAlpha = 31785
	// Long term noise smoothing after warm-up, Q15.
	longTermAlpha uint16 = 29491
	// SNR smoothing weights, Q15.
	snrOld uint16 = 3276
	snrNew uint16 = 29491
	// Negated SNR at or above which the full attenuation applies, Q9.
	lowSNRLimit = -127
	// log2(0.01), Q9, for empty bins in the first frame.
	emptyBinLevel int16 = -3401
)

// Probabilistic is spectral subtraction whose noise floor only adapts
// while an energy based detector considers speech unlikely. The gain per
// bin is derived from a smoothed a posteriori SNR and smoothed across
// frequency.
type Probabilistic struct {
	params Params
	energy *EnergyTracker

	floor    [NumBins]int16
	longTerm [NumBins]int16
	snr      [NumBins]int16
	probSp   int32
}

// NewProbabilistic returns a subtractor with the given parameters. The
// energy tracker is created here and exposed through Energy.
func NewProbabilistic(p Params) *Probabilistic {
	return &Probabilistic{params: p, energy: NewEnergyTracker()}
}

// Reset starts a new utterance. The energy tracker keeps its mean energy.
func (s *Probabilistic) Reset() {
	s.probSp = 0
	s.energy.Reset()
}

// SetParams replaces the gains.
func (s *Probabilistic) SetParams(p Params) { s.params = p }

// Params returns the gains in use.
func (s *Probabilistic) Params() Params { return s.params }

// Energy returns the frame energy tracker.
func (s *Probabilistic) Energy() *EnergyTracker { return s.energy }

// SpeechProb is the smoothed speech presence probability, Q15.
func (s *Probabilistic) SpeechProb() int32 { return s.probSp }

// Floor returns the current log2 noise floor, Q9.
func (s *Probabilistic) Floor() []int16 { return s.floor[:] }

// Subtract cleans ps in place.
func (s *Probabilistic) Subtract(ps []int16, norm int) {
	e := s.energy
	count := e.Count()

	var indic int32
	if e.Speech(e.Update(FrameEnergy(ps, norm))) {
		indic = fixedpoint.OneQ15
	}
	alpha := s.params.Alpha
	s.probSp = fixedpoint.Q15Mul(fixedpoint.OneQ15-alpha, indic) + fixedpoint.Q15Mul(alpha, s.probSp)

	var prevGain int32
	for i := 0; i < NumBins; i++ {
		var sig int16
		switch {
		case ps[i] > 0:
			sig = fixedpoint.LogPolyfit(int32(ps[i]), norm)
		case count == 0:
			sig = emptyBinLevel
		default:
			sig = s.floor[i]
		}
		s.updateFloor(i, sig, count)

		diff := int32(sig) - int32(s.floor[i])
		if count == 0 {
			s.snr[i] = fixedpoint.Sat16(diff)
		} else {
			s.snr[i] = fixedpoint.Sat16(fixedpoint.Q15Mul(snrOld, int32(s.snr[i])) + fixedpoint.Q15Mul(snrNew, diff))
		}

		g := s.gain(-int32(s.snr[i]))
		if i > 0 {
			g = (7*g + prevGain) >> 3
		}
		prevGain = g

		ps[i] = toLinear(int32(sig)+g, norm)
	}

	if count <= warmupFrames {
		e.noiseLevel = e.meanEn
	}
	e.Next()
}

func (s *Probabilistic) updateFloor(i int, sig int16, count int) {
	if count == 0 {
		s.floor[i] = sig
		s.longTerm[i] = sig
		return
	}
	if count <= warmupFrames {
		s.floor[i] = blend(warmupAlpha(count), s.floor[i], sig)
	} else if s.probSp < probUpdateLimit {
		s.floor[i] = blend(s.floorAlpha(i, sig), s.floor[i], sig)
	}

	a := longTermAlpha
	if count <= warmupFrames {
		a = warmupAlpha(count)
	}
	s.longTerm[i] = blend(a, s.longTerm[i], s.floor[i])
}

// floorAlpha weighs the old floor by how far the frame and the floor sit
// from the long term noise, relative to the larger of frame and long term
// noise.
func (s *Probabilistic) floorAlpha(i int, sig int16) uint16 {
	lt := int32(s.longTerm[i])
	y := int32(sig)
	den := y
	var r int32
	if lt <= y {
		r = fixedpoint.Div32Q(lt, y, 9)
	} else {
		r = fixedpoint.Div32Q(y, lt, 9)
		den = lt
	}
	t := int64(512 - int64(r))
	gain := (t * t) >> 9

	t2 := int64(fixedpoint.Div32Q(int32(s.floor[i])-lt, den, 9))
	t2 = (t2*t2)>>9 + gain

	var a int32
	if t2 != 0 {
		a = fixedpoint.Div32Q(fixedpoint.Sat32(gain), fixedpoint.Sat32(t2), 15)
	}
	if a < minFloorAlpha {
		a = minFloorAlpha
	}
	if a > maxFloorAlpha {
		a = maxFloorAlpha
	}
	return uint16(a)
}

// gain returns the log2 spectral gain, Q9, for a negated SNR nsr.
func (s *Probabilistic) gain(nsr int32) int32 {
	beta := int32(s.params.Beta)
	if nsr >= lowSNRLimit {
		return beta
	}
	// N/Y = exp(ln2 * nsr)
	x := fixedpoint.Sat16((fixedpoint.Ln2Q9 * nsr) >> 9)
	ratio := int32(fixedpoint.Expn(x, 9))
	g := int32(fixedpoint.LogPolyfit(fixedpoint.OneQ15-ratio, 15))
	if g < beta {
		g = beta
	}
	return g
}

func warmupAlpha(count int) uint16 {
	return uint16((int32(count) << 15) / int32(count+1))
}

func blend(a uint16, old, next int16) int16 {
	return fixedpoint.Sat16(fixedpoint.Q15Mul(a, int32(old)) + fixedpoint.Q15Mul(uint16(32768-int32(a)), int32(next)))
}

func toLinear(v int32, norm int) int16 {
	normPow := fixedpoint.PowNorm(v)
	lin := int64(fixedpoint.PowPolyfit(fixedpoint.Sat16(v - 512*int32(normPow))))
	return fixedpoint.Sat16L(fixedpoint.Shift64(lin, normPow+norm))
}

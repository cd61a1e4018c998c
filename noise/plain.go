package noise

import "github.com/proegssilb/tiesr-dialer-sub000/internal/fixedpoint"

const (
	// Weight of the new frame in the smoothed noisy spectrum, Q15. The
	// first frames adapt with noiseSmooth, later ones with minSmooth.
	noiseSmooth int16 = 16384
	minSmooth   int16 = 9830
	// Frame after which the smoothing switches to minSmooth.
	fastFrames = 9

	// Floor time constants on the old floor, Q15: rise slowly, fall fast.
	floorUp   int16 = 32604
	floorDown int16 = 19874

	// Oversubtraction factor applied to the noise floor.
	oversubtract = 2

	// log2 value, Q9, used for empty bins before any floor exists.
	initialBinLevel = 20 << 9
)

// Plain is magnitude spectral subtraction against a floor that follows the
// smoothed noisy spectrum with asymmetric time constants.
type Plain struct {
	smoothed [NumBins]int16
	floor    [NumBins]int16
	count    int
	ns       int16
}

// NewPlain returns a Plain subtractor ready for the first frame.
func NewPlain() *Plain {
	p := &Plain{}
	p.Reset()
	return p
}

// Reset forgets the noise estimate.
func (p *Plain) Reset() {
	p.count = 0
	p.ns = noiseSmooth
}

// Floor returns the current log2 noise floor, Q9.
func (p *Plain) Floor() []int16 { return p.floor[:] }

// Smoothed returns the smoothed log2 noisy spectrum, Q9.
func (p *Plain) Smoothed() []int16 { return p.smoothed[:] }

// Subtract replaces each bin by max(noise/8, signal - 2*noise), where the
// noise is the tracked floor, and updates the floor.
func (p *Plain) Subtract(ps []int16, norm int) {
	for i := 0; i < NumBins; i++ {
		var sig int16
		switch {
		case ps[i] > 0:
			sig = fixedpoint.LogPolyfit(int32(ps[i]), norm)
		case p.count == 0:
			sig = initialBinLevel
		default:
			sig = p.floor[i]
		}
		if p.count == 0 {
			p.smoothed[i] = sig
			p.floor[i] = sig
		}
		p.smoothed[i] = fixedpoint.Sat16(fixedpoint.RoundShift(Smooth(p.smoothed[i], p.ns, sig), 15))
		p.floor[i] = UpdateLevel(p.smoothed[i], p.floor[i], floorUp, floorDown)

		ps[i] = subtractBin(sig, p.floor[i], norm)
	}
	if p.count == fastFrames {
		p.ns = minSmooth
	}
	p.count++
}

func subtractBin(sig, noise int16, norm int) int16 {
	top := int32(sig)
	if int32(noise) > top {
		top = int32(noise)
	}
	normPow := fixedpoint.PowNorm(top)
	sigLin := int64(fixedpoint.PowPolyfit(fixedpoint.Sat16(int32(sig) - 512*int32(normPow))))
	noiseLin := int64(fixedpoint.PowPolyfit(fixedpoint.Sat16(int32(noise) - 512*int32(normPow))))

	clean := noiseLin >> 3
	if d := sigLin - oversubtract*noiseLin; d > clean {
		clean = d
	}
	clean = fixedpoint.Shift64(clean, normPow+norm)
	if clean > fixedpoint.MaxInt16 {
		clean = fixedpoint.MaxInt16
	}
	return int16(clean)
}

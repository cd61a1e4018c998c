// Package compensate adapts a Gaussian model to the current noise and
// channel: parallel model combination of the means (PMC and its
// incremental JAC scheduling) and sequential variance adaptation (SVA).
package compensate

import (
	"github.com/proegssilb/tiesr-dialer-sub000/internal/fixedpoint"
)

// Domain is the logarithm base of the cepstra being compensated.
type Domain int

const (
	// Log10 cepstra, as produced by the front end. Plain PMC.
	Log10 Domain = iota
	// Natural log cepstra. This is the JAC convention.
	Natural
)

const (
	// log-add differences below -10 (Q9) leave the larger term unchanged
	pmcLimit = -5120
	logSplit = -2560
	loOffset = -3840
	hiOffset = -1280
)

// log2(1 + 2^x): first row Q19 for -10 <= x < -5, second Q15 for -5 <= x <= 0
var coefLog = [2][4]int16{
	{265, 1223, 2826, 4014},
	{211, 1503, 4955, 7665},
}

// 2^-x in Q15 for 0 <= x < 1
var coefTwoMx = [3]int16{5615, -21873, 32702}

// LogAdd approximates log2(2^speech + 2^noise) for Q9 log2 inputs. It also
// returns beta, the share of the sum due to the speech term, in Q15.
func LogAdd(speech, noise int32) (sum int16, beta int16) {
	a := fixedpoint.Sat16(speech)
	b := fixedpoint.Sat16(noise)
	s := a

	var diff int32
	if a >= b {
		diff = int32(b) - int32(a)
		if diff < pmcLimit {
			return a, fixedpoint.MaxInt16
		}
	} else {
		diff = int32(a) - int32(b)
		if diff < pmcLimit {
			return b, 0
		}
		a, b = b, a
	}

	poly := 1
	x := diff - hiOffset
	if diff < logSplit {
		poly = 0
		x = diff - loOffset
	}
	c := int32(coefLog[poly][0])
	for _, k := range coefLog[poly][1:] {
		c = int32(int16(fixedpoint.RoundShift(c*x+int32(k)<<9, 9)))
	}
	var corr int32
	if poly == 0 {
		corr = int32(uint16(c+1<<9) >> 10)
	} else {
		corr = int32(uint16(c+1<<5) >> 6)
	}
	sum = fixedpoint.Sat16(corr + int32(a))

	sdiff := int32(s) - int32(sum)
	if sdiff >= 0 {
		return sum, fixedpoint.MaxInt16
	}
	sdiff = -sdiff
	frac := (sdiff & 0x1ff) << 6
	r := int32(coefTwoMx[0])
	for _, k := range coefTwoMx[1:] {
		r = int32(int16(fixedpoint.RoundShift(r*frac+int32(k)<<15, 15)))
	}
	k := uint(sdiff >> 9)
	if k == 0 {
		return sum, int16(r)
	}
	return sum, int16((uint32(uint16(r)) + 1<<(k-1)) >> k)
}

// LogSpectralCompensation combines a clean log-mel spectrum sp (Q9) plus
// channel logH with the noise spectrum logN into out. The delta spectrum
// regSp is scaled by the speech share of each filter into regOut. logH may
// be nil.
func LogSpectralCompensation(dom Domain, sp, regSp, logN, logH []int16, out, regOut []int16) {
	scale := int32(fixedpoint.Log10ToLog2)
	if dom == Natural {
		scale = fixedpoint.Log2eQ13
	}
	for i := range out {
		v := int32(sp[i])
		if logH != nil {
			v = int32(fixedpoint.Sat16(v + int32(logH[i])))
		}
		spLog := fixedpoint.RoundShift(v*scale, 13)
		nLog := fixedpoint.RoundShift(int32(logN[i])*scale, 13)

		sum, beta := LogAdd(spLog, nLog)

		t := fixedpoint.RoundShift(int32(sum)*fixedpoint.Log2ToLog10, 15)
		if dom == Natural {
			t = fixedpoint.RoundShift(t*fixedpoint.Ln10Q13, 13)
		}
		out[i] = int16(t)

		if regOut != nil {
			regOut[i] = int16(fixedpoint.Q15Mul(uint16(beta), int32(regSp[i])))
		}
	}
}

// SpeechShare writes the per-filter beta of LogSpectralCompensation without
// producing the compensated spectrum. Channel estimation weights its
// residuals with it.
func SpeechShare(dom Domain, sp, logN, logH []int16, beta []int16) {
	scale := int32(fixedpoint.Log10ToLog2)
	if dom == Natural {
		scale = fixedpoint.Log2eQ13
	}
	for i := range beta {
		v := int32(sp[i])
		if logH != nil {
			v = int32(fixedpoint.Sat16(v + int32(logH[i])))
		}
		_, beta[i] = LogAdd(fixedpoint.RoundShift(v*scale, 13), fixedpoint.RoundShift(int32(logN[i])*scale, 13))
	}
}

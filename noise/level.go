// Package noise tracks the background noise spectrum and removes it from
// the power spectrum by spectral subtraction. All spectra are the 128 bin
// int16 power spectra produced by the feature front end, interpreted with
// the caller's binary scale.
package noise

import "github.com/proegssilb/tiesr-dialer-sub000/internal/fixedpoint"

// NumBins is the number of power spectrum bins handled per frame.
const NumBins = 128

// Smooth returns (1-w)*a + w*b with w in Q15, still scaled by 2^15.
func Smooth(a int16, w int16, b int16) int32 {
	return (fixedpoint.OneQ15-int32(w))*int32(a) + int32(w)*int32(b)
}

// UpdateLevel moves old toward next with the time constant up when next is
// above old and down otherwise. Both constants are Q15 weights on old, so
// a constant near 1 makes that direction slow. A level equal to next is
// returned unchanged; Smooth's weights sum to 32767, which would otherwise
// pull levels above 2^14 in magnitude toward zero.
func UpdateLevel(next, old int16, up, down int16) int16 {
	if next == old {
		return old
	}
	tc := down
	if next > old {
		tc = up
	}
	return fixedpoint.Sat16(fixedpoint.RoundShift(Smooth(next, tc, old), 15))
}

// Subtractor removes an estimate of the noise from a power spectrum in
// place. norm is the binary scale of ps as passed to LogPolyfit.
type Subtractor interface {
	Subtract(ps []int16, norm int)
	Reset()
}

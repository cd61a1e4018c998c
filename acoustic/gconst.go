package acoustic

import "github.com/proegssilb/tiesr-dialer-sub000/internal/fixedpoint"

// GaussDetConst returns the log Gaussian constant, Q6, of a Gaussian with
// inverse variances invVar (Q9):
//
//	N*ln(2*pi) - sum(ln(invVar)) + powerFactor*ln(2)*sum(muScaleP2)
//
// The last term undoes the per-dimension scaling of the stored means.
// muScaleP2 may be nil.
func GaussDetConst(invVar []int16, powerFactor int, muScaleP2 []int16) int16 {
	var sum, sumc int64
	for d := range invVar {
		sum -= int64(fixedpoint.LogPolyfit(int32(invVar[d]), 9))
		if muScaleP2 != nil {
			sumc += int64(muScaleP2[d])
		}
	}
	// log2 Q9 to ln Q21
	sum *= fixedpoint.Ln2Q12
	sum += int64(len(invVar))*fixedpoint.Ln2PiQ21 + (int64(powerFactor)*fixedpoint.Ln2Q12*sumc)<<9
	return fixedpoint.Sat16L(sum >> 15)
}

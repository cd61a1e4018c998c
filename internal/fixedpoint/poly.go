package fixedpoint

// 8th order fit of log2(x) over [0.5, 1.0), scaled by 1/94.15 so every
// coefficient fits in an int16.
var coefLogPoly = [9]int16{-781, 5338, -16182, 28637, -32768, 25419, -13767, 5640, -1536}

// 94.15 in Q8, the scale removed from coefLogPoly.
const maxCoefLogPoly = 24103

// 4th order Taylor fit of 2^x over [0, 1) in Q14.
var coefPowPoly = [5]int16{158, 909, 3936, 11357, 16384}

// PowCeiling is the largest Q9 exponent PowPolyfit can represent without
// overflowing a positive int32.
const PowCeiling = 15870

// LogFloorInput is substituted for non-positive inputs to LogPolyfit.
const LogFloorInput = 1

// LogPolyfit returns log2(value) in Q9. compensate is the number of binary
// places the caller has already shifted value left by, so the result is
// log2(value) - compensate. Non-positive inputs are treated as 1; callers
// that care substitute their own floor before calling.
func LogPolyfit(value int32, compensate int) int16 {
	v := int64(value)
	if v <= 0 {
		v = LogFloorInput
	}
	norm := NormShift(v, Norm32Target)
	v <<= uint(norm)

	// Q15 mantissa in [0.5, 1)
	data := int64(int16(v >> 16))

	result := int64(coefLogPoly[0])
	for i := 1; i < len(coefLogPoly); i++ {
		tmp := result * data
		tmp <<= 1
		tmp += int64(coefLogPoly[i]) << 16
		result = int64(int16(RoundShift64(tmp, 16)))
	}

	tmp := result * maxCoefLogPoly // Q15 * Q8
	tmp <<= 8                      // Q31
	tmp >>= 6                      // Q25
	tmp -= int64(norm) << 25
	tmp -= int64(compensate) << 25
	tmp += 31 << 25
	return Sat16L(RoundShift64(tmp, 16))
}

// PowPolyfit returns 2^value for value in Q9, as a plain integer. Inputs
// below -1.0 return 0, inputs in (-1, 0] return 1, and inputs above
// PowCeiling saturate to the largest int32.
func PowPolyfit(value int16) int32 {
	if value < -512 {
		return 0
	}
	if value <= 0 {
		return 1
	}
	if value > PowCeiling {
		return 1<<31 - 1
	}

	norm := int(value) >> 9
	data := int32(value) & 0x1ff

	result := int32(coefPowPoly[0])
	for i := 1; i < len(coefPowPoly); i++ {
		tmp := result*data + int32(coefPowPoly[i])<<9
		result = RoundShift(tmp, 9)
	}

	// result is 2^frac in Q14
	if norm > 14 {
		return result << uint(norm-14)
	}
	sh := uint(14 - norm)
	if sh == 0 {
		return result
	}
	return RoundShift(result, sh)
}

// PowNorm returns how many octaves must be removed from a Q9 log2 value
// before PowPolyfit can convert it without clipping.
func PowNorm(v int32) int {
	over := v - PowCeiling
	switch {
	case over < 0:
		return 0
	case over == 0:
		return 1
	default:
		return int(over>>9) + 1
	}
}

// Pow2x returns 2^x for x in Q9 over the full int32 range of results,
// splitting off the part of the exponent that PowPolyfit cannot reach.
func Pow2x(x int32) int32 {
	normPow := PowNorm(x)
	v := PowPolyfit(Sat16(x - 512*int32(normPow)))
	return Sat32(int64(v) << uint(normPow))
}

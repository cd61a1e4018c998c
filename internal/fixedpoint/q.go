// Package fixedpoint implements the saturating Q-format arithmetic shared by
// the front end, the noise tracker and model compensation.
//
// Values carry their binary point implicitly; every function documents the
// Q-format of its inputs and outputs. Nothing here allocates.
package fixedpoint

import "math/bits"

const (
	MaxInt16 = 32767
	MinInt16 = -32768

	// One in Q15, saturated to the int16 range.
	OneQ15 = 32767

	Ln2Q9  = 355   // ln(2)
	Ln2Q12 = 2839  // ln(2)
	Ln2e   = 23637 // log2(e) in Q14

	Log2ToLog10 = 9864  // log10(2) in Q15
	Log10ToLog2 = 27213 // log2(10) in Q13
	Log2eQ13    = 11818 // log2(e) in Q13
	Ln10Q13     = 18863 // ln(10)

	// ln(2*pi) in Q21, the per-dimension term of the Gaussian constant.
	Ln2PiQ21 = 3854289

	// 0x40000000, the normalisation target for 32-bit accumulators.
	Norm32Target = 1 << 30
	// 0x4000, the normalisation target for 16-bit samples.
	Norm16Target = 1 << 14
)

// Sat16 clamps a 32-bit value to the int16 range.
func Sat16(v int32) int16 {
	if v > MaxInt16 {
		return MaxInt16
	}
	if v < MinInt16 {
		return MinInt16
	}
	return int16(v)
}

// Sat16L clamps a 64-bit value to the int16 range.
func Sat16L(v int64) int16 {
	if v > MaxInt16 {
		return MaxInt16
	}
	if v < MinInt16 {
		return MinInt16
	}
	return int16(v)
}

// Sat32 clamps a 64-bit value to the int32 range.
func Sat32(v int64) int32 {
	if v > 1<<31-1 {
		return 1<<31 - 1
	}
	if v < -(1 << 31) {
		return -(1 << 31)
	}
	return int32(v)
}

// RoundShift shifts v right by n bits with rounding to nearest. n must be > 0.
func RoundShift(v int32, n uint) int32 {
	return (v + 1<<(n-1)) >> n
}

// RoundShift64 is RoundShift on a 64-bit accumulator.
func RoundShift64(v int64, n uint) int64 {
	return (v + 1<<(n-1)) >> n
}

// Shift shifts left for n >= 0 and arithmetically right for n < 0.
func Shift(v int32, n int) int32 {
	if n >= 0 {
		return v << uint(n)
	}
	return v >> uint(-n)
}

// Shift64 is Shift on a 64-bit value.
func Shift64(v int64, n int) int64 {
	if n >= 0 {
		return v << uint(n)
	}
	return v >> uint(-n)
}

// NormShift returns how many left shifts bring a positive v up to at least
// target, where target is a power of two. It returns 0 for v <= 0 or
// v >= target.
func NormShift(v int64, target int64) int {
	if v <= 0 || v >= target {
		return 0
	}
	n := bits.LeadingZeros64(uint64(v)) - bits.LeadingZeros64(uint64(target))
	if n < 0 {
		return 0
	}
	return n
}

// Headroom is NormShift less one guard bit, floored at zero. The front end
// uses it so that a subsequent subtraction cannot overflow.
func Headroom(max int64, target int64) int {
	if max <= 0 {
		return 0
	}
	n := NormShift(max, target)
	if n > 0 {
		n--
	}
	return n
}

// MaxAbs16 returns the largest magnitude in x as an int32, so that -32768
// is represented exactly.
func MaxAbs16(x []int16) int32 {
	var max int32
	for _, v := range x {
		a := int32(v)
		if a < 0 {
			a = -a
		}
		if a > max {
			max = a
		}
	}
	return max
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

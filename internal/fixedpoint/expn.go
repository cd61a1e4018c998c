package fixedpoint

// 4th order fit of ln(1+x) over [0, 1] in Q15.
var coefLnOnePlusX = [5]int16{-1801, 7104, -15220, 32623, 4}

// ln(2) in Q15, the value of ln(1+x) at x = 1.
const ln2Q15 = 22713

// Expn returns exp(x) as an unsigned Q15 value for x <= 0 given in Q qpt
// (0 <= qpt <= 15). Positive inputs are treated as 0. Results below 2^-16
// return 0.
func Expn(x int16, qpt uint) uint16 {
	if x > 0 {
		x = 0
	}
	q := qpt + 14

	// base two exponent in Q(qpt+14), made positive
	temp := -(int32(Ln2e) * int32(x))

	itemp := temp >> q
	if itemp >= 16 {
		return 0
	}
	result := uint32(32768) >> uint(itemp)

	ftemp := uint32(temp) &^ (uint32(itemp) << q)
	if q <= 15 {
		ftemp <<= 15 - q
	} else {
		ftemp += 1 << (q - 16)
		ftemp >>= q - 15
	}

	// fraction in [-0.5, 0.5)
	frac := int32(ftemp)
	if frac >= 16384 {
		result >>= 1
		frac -= 32768
	}
	frac = -frac

	s := int32(coefPowPoly[0])
	for i := 1; i < len(coefPowPoly); i++ {
		t := s*frac + int32(coefPowPoly[i])<<15
		t += 1 << 14
		s = t >> 15
	}

	// Q15 * Q14
	t := result * uint32(s)
	t += 1 << 13
	return uint16(t >> 14)
}

// LogOne returns ln(1 + x) in Q15 for x in [0, 1] given as unsigned Q15.
func LogOne(x uint16) int16 {
	if x >= 32768 {
		return ln2Q15
	}
	data := int64(x)
	s := int64(coefLnOnePlusX[0])
	for i := 1; i < len(coefLnOnePlusX); i++ {
		t := s*data + int64(coefLnOnePlusX[i])<<15
		t += 1 << 14
		s = int64(int16(t >> 15))
	}
	return int16(s)
}

// LogSum returns ln(a + b) in Q6 given ln(a) and ln(b) in Q6. Terms more
// than 7 nepers below the larger one are ignored.
func LogSum(lna, lnb int16) int16 {
	if lna < lnb {
		lna, lnb = lnb, lna
	}
	diff := int32(lnb) - int32(lna)
	if diff < -448 {
		return lna
	}
	adb := Expn(int16(diff), 6)
	r := int32(LogOne(adb))
	r += int32(lna) << 9
	r += 1 << 8
	r >>= 9
	return Sat16(r)
}

// Q15Mul multiplies b by the unsigned Q15 fraction a. The result keeps the
// Q-format of b. b is renormalised first so the 16-bit product loses as
// little precision as possible.
func Q15Mul(a uint16, b int32) int32 {
	if b == 0 {
		return 0
	}
	t := abs64(int64(b))
	norm := NormShift(t, Norm32Target)
	t <<= uint(norm)
	ts := t >> 16
	r := int64(a) * ts // Q15 * Q-16
	r <<= 1
	r >>= uint(norm)
	if b < 0 {
		r = -r
	}
	return int32(r)
}

// Q14Mul multiplies b by the signed Q14 factor a, keeping the Q-format of b.
func Q14Mul(a int16, b int32) int32 {
	if b == 0 {
		return 0
	}
	t := abs64(int64(b))
	norm := NormShift(t, Norm32Target)
	t <<= uint(norm)
	ts := t >> 16
	r := int64(a) * ts
	r <<= 2
	r >>= uint(norm)
	if b < 0 {
		r = -r
	}
	return int32(r)
}

// Div32Q returns num/den in Q q. Both operands are normalised first so the
// 32-bit division keeps maximum precision. A zero denominator is treated
// as 1.
func Div32Q(num, den int32, q uint) int32 {
	if num == 0 {
		return 0
	}
	t1 := abs64(int64(num))
	t2 := abs64(int64(den))
	if t2 < 1 {
		t2 = 1
	}
	normN := NormShift(t1, Norm32Target)
	t1 <<= uint(normN)
	normD := NormShift(t2, Norm32Target)
	t2 <<= uint(normD)
	t2 >>= q
	if t2 == 0 {
		t2 = 1
	}
	t3 := t1 / t2
	t3 = Shift64(t3, normD-normN)
	if (num < 0) != (den < 0) {
		t3 = -t3
	}
	return Sat32(t3)
}

// Sqrt returns the integer square root of x by Newton iteration. x <= 0
// returns 0.
func Sqrt(x int32) int32 {
	if x <= 0 {
		return 0
	}
	y1 := x >> 1
	if y1 == 0 {
		return x
	}
	for {
		y0 := y1
		z := x / y0
		y1 = (y0 + z) >> 1
		d := y0 - y1
		if d < 0 {
			d = -d
		}
		if d <= 1 {
			return y1
		}
	}
}

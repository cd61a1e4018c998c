package feature

import "github.com/proegssilb/tiesr-dialer-sub000/internal/fixedpoint"

// CosTransform maps a cepstrum (Q11, first NMFCC entries, each dimension
// pre-scaled by scale[j]) back to NFilter log-mel energies in Q9.
func (d *Dims) CosTransform(mfcc []int16, scale []int16, logMel []int16) {
	var sum [MaxFilters]int32
	for i := 0; i < d.NFilter; i++ {
		for j := 0; j < d.NMFCC; j++ {
			m := int32(mfcc[j])
			if j == 0 {
				m >>= 1
			}
			sh := uint(17 - scale[j])
			sum[i] += fixedpoint.RoundShift(int32(d.cos[j][i])*m, sh)
		}
	}
	n := int32(d.NFilter)
	for i := 0; i < d.NFilter; i++ {
		logMel[i] = int16((sum[i] / n) << 1)
	}
}

// InverseCosTransform maps NFilter log-mel energies (Q9) to NMFCC cepstral
// coefficients in Q11, applying the per-dimension scale.
func (d *Dims) InverseCosTransform(logMel []int16, scale []int16, mfcc []int16) {
	for i := 0; i < d.NMFCC; i++ {
		var sum int32
		sh := uint(13 + scale[i])
		for j := 0; j < d.NFilter; j++ {
			sum += fixedpoint.RoundShift(int32(d.cos[i][j])*int32(logMel[j]), sh)
		}
		mfcc[i] = fixedpoint.Sat16(sum)
	}
}

// FastCosTransform is CosTransform with the per-term rounding removed and
// the division by NFilter replaced by a multiply.
func (d *Dims) FastCosTransform(mfcc []int16, scale []int16, logMel []int16) {
	k := d.fastScale
	for i := 0; i < d.NFilter; i++ {
		var sum int64
		for j := 0; j < d.NMFCC; j++ {
			m := int64(mfcc[j])
			if j == 0 {
				m >>= 1
			}
			sum += (int64(d.cos[j][i]) * m) >> uint(13-scale[j])
		}
		logMel[i] = int16((sum * k) >> 21)
	}
}

// FastInverseCosTransform halves the multiplies of InverseCosTransform using
// the even/odd symmetry of the cosine rows about the middle filter.
func (d *Dims) FastInverseCosTransform(logMel []int16, scale []int16, mfcc []int16) {
	n := d.NFilter
	half := n >> 1
	for i := 0; i < d.NMFCC; i++ {
		var sum int32
		if i&1 == 0 {
			for j := 0; j < half; j++ {
				t := (int32(d.cos[i][j]) >> 1) * (int32(logMel[j]) + int32(logMel[n-1-j]))
				sum += t >> uint(7+scale[i])
			}
		} else {
			for j := 0; j < half; j++ {
				t := int64(d.cos[i][j]) * (int64(logMel[j]) - int64(logMel[n-1-j]))
				sum += int32(t >> uint(8+scale[i]))
			}
		}
		mfcc[i] = int16((sum + 16) >> 5)
	}
}

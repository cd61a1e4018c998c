package feature

import "github.com/proegssilb/tiesr-dialer-sub000/internal/fixedpoint"

// FFT computes an in-place radix-2 decimation-in-time FFT of WindowLen
// points. Inputs are Q15; every stage halves the magnitude, so the output
// is the DFT scaled by 1/WindowLen.
func FFT(re, im []int16) {
	bitReverse(re, im)

	groupCnt := WindowLen >> 1
	groupSize := 2
	for stage := 0; stage < fftStages; stage++ {
		half := groupSize / 2
		for i := 0; i < groupCnt; i++ {
			for j := 0; j < half; j++ {
				idx1 := groupSize*i + j
				idx2 := idx1 + half
				w := groupCnt * j

				r1 := int64(re[idx1]) << 15 // Q30
				i1 := int64(im[idx1]) << 15

				wr, wi := int64(twiddleRe[w]), int64(twiddleIm[w])
				xr, xi := int64(re[idx2]), int64(im[idx2])
				r2 := xr*wr - xi*wi
				i2 := xr*wi + xi*wr

				re[idx1] = fixedpoint.Sat16L(fixedpoint.RoundShift64(r1+r2, 16))
				im[idx1] = fixedpoint.Sat16L(fixedpoint.RoundShift64(i1+i2, 16))
				re[idx2] = fixedpoint.Sat16L(fixedpoint.RoundShift64(r1-r2, 16))
				im[idx2] = fixedpoint.Sat16L(fixedpoint.RoundShift64(i1-i2, 16))
			}
		}
		groupCnt /= 2
		groupSize *= 2
	}
}

// bitReverse permutes both arrays into bit-reversed index order.
func bitReverse(re, im []int16) {
	for i := 1; i < WindowLen-1; i++ {
		j := reverseBits(i, fftStages)
		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}
}

func reverseBits(x, bits int) int {
	var result int
	for i := 0; i < bits; i++ {
		result = (result << 1) | (x & 1)
		x >>= 1
	}
	return result
}

package feature

import (
	"errors"
	"fmt"
	"math"

	"github.com/proegssilb/tiesr-dialer-sub000/internal/fixedpoint"
)

const (
	NumFilter20 = 20
	NumFilter26 = 26
	// MaxFilters bounds every per-filter buffer.
	MaxFilters = NumFilter26
	// MaxMFCC bounds the static part of a cepstrum vector.
	MaxMFCC = 16
)

var ErrUnsupportedDim = errors.New("feature: unsupported MFCC dimension")

// melBin describes how one FFT bin splits between filter num (weight x1)
// and filter num-1 (weight x2), both Q14.
type melBin struct {
	num int16
	x1  int16
	x2  int16
}

// Dims selects the filter bank, cosine table and per-dimension scales for
// a static cepstrum dimension. Dimensions 13 and 16 use 26 filters, 8 and
// 10 use 20.
type Dims struct {
	NMFCC   int
	NFilter int
	// MuScaleP2 holds the extra left shift of each static (first NMFCC) and
	// delta (last NMFCC) dimension.
	MuScaleP2 []int16

	mel *[WindowLen / 2]melBin
	cos [][]int16
	// fastScale is 2^21/(8*NFilter): the 2/n normalisation of CosTransform
	// with the four bits the fast path drops early folded in.
	fastScale int64
}

var (
	muScaleStatic = [6]int16{4, 2, 2, 1, 1, 1}
	muScaleDelta  = [6]int16{2, 1, 1, 0, 0, 0}
)

// NewDims returns the tables for nMFCC static coefficients.
func NewDims(nMFCC int) (*Dims, error) {
	d := &Dims{NMFCC: nMFCC}
	switch nMFCC {
	case 13, 16:
		d.NFilter = NumFilter26
		d.fastScale = 10082
		d.mel = &melFilter26
		d.cos = make([][]int16, nMFCC)
		for i := range d.cos {
			d.cos[i] = cosXfm26[i][:]
		}
	case 8, 10:
		d.NFilter = NumFilter20
		d.fastScale = 13107
		d.mel = &melFilter20
		d.cos = make([][]int16, nMFCC)
		for i := range d.cos {
			d.cos[i] = cosXfm20[i][:]
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedDim, nMFCC)
	}
	d.MuScaleP2 = make([]int16, 2*nMFCC)
	for i := range muScaleStatic {
		d.MuScaleP2[i] = muScaleStatic[i]
		d.MuScaleP2[i+nMFCC] = muScaleDelta[i]
	}
	return d, nil
}

// VecSize is the length of a static plus delta vector.
func (d *Dims) VecSize() int { return 2 * d.NMFCC }

// MelScale accumulates power spectrum bins into NFilter triangular filters.
// The result carries the power spectrum scale plus 14 bits.
func (d *Dims) MelScale(ps []int16, mel []int64) {
	for i := 0; i < d.NFilter; i++ {
		mel[i] = 0
	}
	for i := 0; i < WindowLen/2; i++ {
		b := d.mel[i]
		cur := int(b.num)
		if cur-1 >= 0 {
			mel[cur-1] += int64(b.x2) * int64(ps[i])
		}
		if cur < d.NFilter {
			mel[cur] += int64(b.x1) * int64(ps[i])
		}
	}
}

// MelScaleFFT accumulates filter energies straight from the complex FFT
// output, squaring after weighting. The result is Q24 relative to the
// windowed signal.
func (d *Dims) MelScaleFFT(re, im []int16, mel []int64) {
	for i := 0; i < d.NFilter; i++ {
		mel[i] = 0
	}
	acc := func(w, x int16) int64 {
		t := int32(fixedpoint.Sat16(fixedpoint.RoundShift(int32(w)*int32(x), 14)))
		return int64(fixedpoint.RoundShift(t*t, 4))
	}
	for i := 0; i < WindowLen/2; i++ {
		b := d.mel[i]
		cur := int(b.num)
		if cur-1 >= 0 {
			mel[cur-1] += acc(b.x2, re[i]) + acc(b.x2, im[i])
		}
		if cur < d.NFilter {
			mel[cur] += acc(b.x1, re[i]) + acc(b.x1, im[i])
		}
	}
}

// LogMel converts filter energies to log10 in Q9. compensate is the binary
// scale of mel. Empty filters take half the smallest non-empty one.
func (d *Dims) LogMel(mel []int64, compensate int, out []int16) {
	floor := int64(math.MaxInt64)
	for i := 0; i < d.NFilter; i++ {
		if mel[i] != 0 && mel[i] < floor {
			floor = mel[i]
		}
	}
	if floor == math.MaxInt64 {
		floor = 0
	}
	if floor >= 2 {
		floor >>= 1
	}
	for i := 0; i < d.NFilter; i++ {
		e := mel[i]
		if e == 0 {
			e = floor
		}
		// keep the top 31 bits of very large accumulators
		c := compensate
		for e > math.MaxInt32 {
			e >>= 1
			c--
		}
		l := int32(fixedpoint.LogPolyfit(int32(e), c))
		out[i] = int16(fixedpoint.RoundShift(l*fixedpoint.Log2ToLog10, 15))
	}
}

// PowerCompensate is the LogMel compensate value for MelScale output.
func PowerCompensate(n NormTriple) int {
	return 2*(n.Norm0+n.Norm1-windowPwr) + n.Norm2 - 3
}

// FFTCompensate is the LogMel compensate value for MelScaleFFT output.
func FFTCompensate(n NormTriple) int {
	return 2*n.Norm0 + 2*n.Norm1 - 20
}

package feature

import "github.com/proegssilb/tiesr-dialer-sub000/internal/fixedpoint"

const (
	// RegBufSize is the number of static vectors kept for regression.
	RegBufSize = 14
	// RegSpan is the number of frames on each side of the regression.
	RegSpan = 2
	// regFactor is 1/(2*(1^2+2^2)) in Q15.
	regFactor = 3276
)

// Regression turns a stream of static cepstra into static+delta vectors.
// A vector is released once RegSpan future frames have arrived, so output
// lags input by RegSpan frames until Drain is called.
type Regression struct {
	dims    *Dims
	buf     [RegBufSize][MaxMFCC]int16
	count   int // frames pushed
	emitted int // frames released
}

// NewRegression returns an empty regression buffer for d.
func NewRegression(d *Dims) *Regression {
	return &Regression{dims: d}
}

// Reset forgets all buffered frames.
func (r *Regression) Reset() {
	r.count = 0
	r.emitted = 0
}

// Push stores one static vector.
func (r *Regression) Push(static []int16) {
	copy(r.buf[circIdx(r.count)][:r.dims.NMFCC], static)
	r.count++
}

// Next writes the oldest unreleased frame into out (length VecSize) when
// its full regression window is available.
func (r *Regression) Next(out []int16) bool {
	k := r.emitted
	if k >= r.count || k+RegSpan > r.count-1 {
		return false
	}
	if k < RegSpan {
		r.simpleDiff(k, k+1, k, out)
	} else {
		r.full(k, out)
	}
	r.emitted++
	return true
}

// Drain releases buffered frames at the end of input, falling back to a
// backward difference where the forward frames are missing.
func (r *Regression) Drain(out []int16) bool {
	if r.Next(out) {
		return true
	}
	k := r.emitted
	if k >= r.count {
		return false
	}
	switch {
	case k > 0:
		r.simpleDiff(k, k, k-1, out)
	case r.count > 1:
		r.simpleDiff(k, k+1, k, out)
	default:
		n := r.dims.NMFCC
		copy(out[:n], r.buf[circIdx(k)][:n])
		for i := n; i < 2*n; i++ {
			out[i] = 0
		}
	}
	r.emitted++
	return true
}

func (r *Regression) simpleDiff(k, a, b int, out []int16) {
	n := r.dims.NMFCC
	sc := r.dims.MuScaleP2
	cur := &r.buf[circIdx(k)]
	va, vb := &r.buf[circIdx(a)], &r.buf[circIdx(b)]
	copy(out[:n], cur[:n])
	for i := 0; i < n; i++ {
		d := int32(va[i]) - int32(vb[i])
		out[n+i] = fixedpoint.Sat16(fixedpoint.Shift(d, int(sc[i]-sc[i+n])))
	}
}

func (r *Regression) full(k int, out []int16) {
	n := r.dims.NMFCC
	sc := r.dims.MuScaleP2
	copy(out[:n], r.buf[circIdx(k)][:n])
	for i := 0; i < n; i++ {
		var sum int32
		for j := 1; j <= RegSpan; j++ {
			adv := r.buf[circIdx(k+j)][i]
			lag := r.buf[circIdx(k-j)][i]
			sum += int32(j) * (int32(adv) - int32(lag))
		}
		sum = fixedpoint.Shift(sum, int(sc[i]-sc[i+n]))
		out[n+i] = fixedpoint.Sat16L(fixedpoint.RoundShift64(regFactor*int64(sum), 15))
	}
}

func circIdx(i int) int {
	i %= RegBufSize
	if i < 0 {
		i += RegBufSize
	}
	return i
}

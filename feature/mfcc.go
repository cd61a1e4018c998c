package feature

import "fmt"

// Extractor turns front end spectra into static cepstra and, through its
// Regression, into static+delta vectors. All buffers are owned by the
// Extractor, so one per stream.
type Extractor struct {
	Dims *Dims
	Fast bool

	reg    *Regression
	mel    [MaxFilters]int64
	logMel [MaxFilters]int16
}

// NewExtractor returns an extractor for d. fast selects the factored
// inverse cosine transform.
func NewExtractor(d *Dims, fast bool) *Extractor {
	return &Extractor{Dims: d, Fast: fast, reg: NewRegression(d)}
}

// Static computes the static cepstrum (Q11, per-dimension scaled) of s into
// mfcc. When clean is non-nil it is a noise subtracted power spectrum with
// the same scale as s.Power and is used instead of the FFT output.
func (e *Extractor) Static(s *Spectrum, clean []int16, mfcc []int16) {
	d := e.Dims
	if clean != nil {
		d.MelScale(clean, e.mel[:])
		d.LogMel(e.mel[:], PowerCompensate(s.Norm), e.logMel[:])
	} else {
		d.MelScaleFFT(s.Real[:], s.Imag[:], e.mel[:])
		d.LogMel(e.mel[:], FFTCompensate(s.Norm), e.logMel[:])
	}
	if e.Fast {
		d.FastInverseCosTransform(e.logMel[:], d.MuScaleP2, mfcc)
	} else {
		d.InverseCosTransform(e.logMel[:], d.MuScaleP2, mfcc)
	}
}

// LogMel returns the log-mel energies of the last Static call.
func (e *Extractor) LogMel() []int16 { return e.logMel[:e.Dims.NFilter] }

// Push feeds a static vector and writes the next complete static+delta
// vector into out when one is ready.
func (e *Extractor) Push(static []int16, out []int16) bool {
	e.reg.Push(static)
	return e.reg.Next(out)
}

// Drain releases the frames still held for regression look-ahead.
func (e *Extractor) Drain(out []int16) bool { return e.reg.Drain(out) }

// Reset clears the regression history.
func (e *Extractor) Reset() { e.reg.Reset() }

// Extract runs the front end and cepstrum transform over a whole signal
// and returns one static+delta vector per frame.
func Extract(samples []int16, nMFCC int) ([][]int16, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("empty samples")
	}
	d, err := NewDims(nMFCC)
	if err != nil {
		return nil, err
	}
	fe := NewFrontEnd(PreemphasisDefault)
	ex := NewExtractor(d, false)

	frames := Frames(samples)
	out := make([][]int16, 0, len(frames))
	buf := make([]int16, len(frames)*d.VecSize())
	var spec Spectrum
	static := make([]int16, nMFCC)
	next := func() []int16 {
		return buf[len(out)*d.VecSize() : (len(out)+1)*d.VecSize()]
	}
	for _, w := range frames {
		if err := fe.Process(w, &spec); err != nil {
			return nil, err
		}
		ex.Static(&spec, nil, static)
		if v := next(); ex.Push(static, v) {
			out = append(out, v)
		}
	}
	for len(out) < len(frames) {
		v := next()
		if !ex.Drain(v) {
			break
		}
		out = append(out, v)
	}
	return out, nil
}

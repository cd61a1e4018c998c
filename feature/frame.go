package feature

import (
	"errors"
	"fmt"

	"github.com/proegssilb/tiesr-dialer-sub000/internal/fixedpoint"
)

const (
	// WindowLen is the analysis window, also the FFT size.
	WindowLen = 256
	// FrameLen is the hop between consecutive windows (20 ms at 8 kHz).
	FrameLen = 160
	// SampleRate is the only rate the tables are designed for.
	SampleRate = 8000

	fftStages = 8
	// windowPwr is log2 of WindowLen, used when undoing normalisation.
	windowPwr = 8
)

// Pre-emphasis coefficients in Q15.
const (
	PreemphasisDefault int16 = 31457 // 0.96
	// PreemphasisCapture is used when the capture path already emphasises.
	PreemphasisCapture int16 = 33 // ~0.001
)

var ErrFrameLength = errors.New("feature: window must hold WindowLen samples")

// NormTriple records the left shifts applied by pre-emphasis (Norm0), the
// Hamming window (Norm1) and the power spectrum (Norm2). Every spectrum
// value is meaningless without it.
type NormTriple struct {
	Norm0 int
	Norm1 int
	Norm2 int
}

// PowerShift is the net binary scale of Spectrum.Power, to be passed as the
// compensate argument of LogPolyfit.
func (n NormTriple) PowerShift() int {
	return (n.Norm0+n.Norm1-windowPwr)*2 + (n.Norm2 - 2) - 15
}

// Spectrum is the output of one front end pass.
type Spectrum struct {
	Real  [WindowLen]int16
	Imag  [WindowLen]int16
	Power [WindowLen / 2]int16
	Norm  NormTriple
}

// FrontEnd turns a window of samples into a normalised power spectrum. It
// carries the last sample of the previous frame for pre-emphasis.
type FrontEnd struct {
	coef int16
	last int16
}

// NewFrontEnd returns a front end using the given Q15 pre-emphasis
// coefficient.
func NewFrontEnd(coef int16) *FrontEnd {
	return &FrontEnd{coef: coef}
}

// Reset clears the pre-emphasis memory.
func (f *FrontEnd) Reset() { f.last = 0 }

// Process runs pre-emphasis, windowing, FFT and power spectrum on one
// window of WindowLen samples. Only the first FrameLen samples are new; the
// rest overlap the next window.
func (f *FrontEnd) Process(window []int16, out *Spectrum) error {
	if len(window) != WindowLen {
		return fmt.Errorf("%w: got %d", ErrFrameLength, len(window))
	}
	out.Norm.Norm0 = f.Preemphasis(window, out.Real[:])
	out.Norm.Norm1 = HammingWindow(out.Real[:])
	for i := range out.Imag {
		out.Imag[i] = 0
	}
	FFT(out.Real[:], out.Imag[:])
	out.Norm.Norm2 = PowerSpectrum(out.Real[:], out.Imag[:], out.Power[:])
	return nil
}

// Preemphasis computes y[n] = x[n] - coef*x[n-1] into out after scaling the
// input up as far as possible below 0x4000. It returns that shift (norm0).
func (f *FrontEnd) Preemphasis(in, out []int16) int {
	peak := int32(f.last)
	if peak < 0 {
		peak = -peak
	}
	if m := fixedpoint.MaxAbs16(in[:WindowLen]); m > peak {
		peak = m
	}
	norm0 := fixedpoint.Headroom(int64(peak), fixedpoint.Norm16Target)

	prev := int32(f.last)
	for i := 0; i < WindowLen; i++ {
		cur := int32(in[i])
		t1 := (prev << uint(norm0)) * int32(f.coef)
		t2 := (cur << uint(norm0)) << 15
		out[i] = fixedpoint.Sat16(fixedpoint.RoundShift(t2-t1, 15))
		prev = cur
	}
	f.last = in[FrameLen-1]
	return norm0
}

// HammingWindow applies the Q15 Hamming table in place with a dynamic
// gain. It returns the gain shift (norm1).
func HammingWindow(sig []int16) int {
	var peak int64
	for i := 0; i < WindowLen; i++ {
		t := int64(sig[i]) * int64(hamming[i])
		if t < 0 {
			t = -t
		}
		if t > peak {
			peak = t
		}
	}
	norm1 := fixedpoint.Headroom(peak, fixedpoint.Norm32Target)
	for i := 0; i < WindowLen; i++ {
		t := (int64(sig[i]) * int64(hamming[i])) << uint(norm1)
		sig[i] = fixedpoint.Sat16L(fixedpoint.RoundShift64(t, 15))
	}
	return norm1
}

// PowerSpectrum writes re^2+im^2 for the first WindowLen/2 bins, scaled up
// to use the full 16 bits. It returns the scale (norm2); an all-zero input
// returns 2 so that the spectrum is left unscaled.
func PowerSpectrum(re, im []int16, ps []int16) int {
	var peak int64
	for i := 0; i < WindowLen/2; i++ {
		t := (int64(re[i])*int64(re[i]) + int64(im[i])*int64(im[i])) << 1
		if t > peak {
			peak = t
		}
	}
	norm2 := 2
	if peak > 0 {
		norm2 = fixedpoint.NormShift(peak, fixedpoint.Norm32Target)
	}
	for i := 0; i < WindowLen/2; i++ {
		t := (int64(re[i])*int64(re[i]) + int64(im[i])*int64(im[i])) << 1
		t = fixedpoint.Shift64(t, norm2-2)
		ps[i] = fixedpoint.Sat16L(fixedpoint.RoundShift64(t, 16))
	}
	return norm2
}

// Frames splits a sample stream into windows of WindowLen advancing by
// FrameLen. The tail is zero padded so every sample lands in some frame.
func Frames(samples []int16) [][]int16 {
	if len(samples) == 0 {
		return nil
	}
	n := (len(samples) + FrameLen - 1) / FrameLen
	frames := make([][]int16, n)
	buf := make([]int16, n*WindowLen)
	for i := 0; i < n; i++ {
		w := buf[i*WindowLen : (i+1)*WindowLen]
		start := i * FrameLen
		end := start + WindowLen
		if end > len(samples) {
			end = len(samples)
		}
		copy(w, samples[start:end])
		frames[i] = w
	}
	return frames
}

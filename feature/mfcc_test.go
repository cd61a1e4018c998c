package feature

import (
	"errors"
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

func TestFFTImpulse(t *testing.T) {
	var re, im [WindowLen]int16
	re[0] = 16384
	FFT(re[:], im[:])
	// every stage halves, so the flat spectrum is 16384/256
	for k := 0; k < WindowLen; k++ {
		if re[k] != 64 || im[k] != 0 {
			t.Fatalf("bin %d = (%d, %d), want (64, 0)", k, re[k], im[k])
		}
	}
}

func TestFFTMatchesReference(t *testing.T) {
	x := make([]float64, WindowLen)
	var re, im [WindowLen]int16
	for n := range x {
		v := math.Round(8000*math.Cos(2*math.Pi*8*float64(n)/WindowLen) +
			3000*math.Cos(2*math.Pi*37*float64(n)/WindowLen))
		x[n] = v
		re[n] = int16(v)
	}
	FFT(re[:], im[:])
	ref := fft.FFTReal(x)

	peak := 0.0
	for _, v := range ref {
		peak = math.Max(peak, cmplx.Abs(v))
	}
	for k := range ref {
		got := cmplx.Abs(complex(float64(re[k]), float64(im[k]))) * WindowLen
		if d := math.Abs(got - cmplx.Abs(ref[k])); d > 0.02*peak {
			t.Errorf("bin %d magnitude = %.0f, want %.0f", k, got, cmplx.Abs(ref[k]))
		}
	}
	if re[8] != 4000 {
		t.Errorf("bin 8 = %d, want 4000", re[8])
	}
}

func TestHammingTable(t *testing.T) {
	w := window.Hamming(WindowLen)
	for i, v := range w {
		want := math.Round(v * 32768)
		if d := math.Abs(float64(hamming[i]) - want); d > 2 {
			t.Errorf("hamming[%d] = %d, want %.0f", i, hamming[i], want)
		}
	}
}

func TestFrontEndRejectsShortWindow(t *testing.T) {
	fe := NewFrontEnd(PreemphasisDefault)
	var s Spectrum
	err := fe.Process(make([]int16, FrameLen), &s)
	if !errors.Is(err, ErrFrameLength) {
		t.Errorf("Process(short) error = %v, want ErrFrameLength", err)
	}
}

func TestPreemphasisCarriesLastSample(t *testing.T) {
	fe := NewFrontEnd(PreemphasisDefault)
	w := make([]int16, WindowLen)
	for i := range w {
		w[i] = int16(i * 10)
	}
	out := make([]int16, WindowLen)
	fe.Preemphasis(w, out)
	if fe.last != w[FrameLen-1] {
		t.Errorf("last = %d, want %d", fe.last, w[FrameLen-1])
	}
}

func TestPreemphasisAllZero(t *testing.T) {
	fe := NewFrontEnd(PreemphasisDefault)
	out := make([]int16, WindowLen)
	if n := fe.Preemphasis(make([]int16, WindowLen), out); n != 0 {
		t.Errorf("norm0 = %d, want 0", n)
	}
	for i, v := range out {
		if v != 0 {
			t.Fatalf("out[%d] = %d, want 0", i, v)
		}
	}
}

func TestPowerSpectrumSilence(t *testing.T) {
	var re, im [WindowLen]int16
	ps := make([]int16, WindowLen/2)
	if n := PowerSpectrum(re[:], im[:], ps); n != 2 {
		t.Errorf("norm2 = %d, want 2", n)
	}
}

func testSignal(amp float64) []int16 {
	w := make([]int16, WindowLen)
	for n := range w {
		x := float64(n) / SampleRate
		w[n] = int16(amp*math.Sin(2*math.Pi*440*x) +
			amp*0.5*math.Sin(2*math.Pi*1250*x) +
			amp*0.2*math.Sin(2*math.Pi*2900*x))
	}
	return w
}

// Doubling the input must raise every log-mel energy by log10(4) in Q9,
// whatever normalisation shifts the front end picked.
func TestLogMelTracksGain(t *testing.T) {
	d, err := NewDims(16)
	if err != nil {
		t.Fatal(err)
	}
	for _, amp := range []float64{500, 1000, 3000} {
		w1 := testSignal(amp)
		w2 := make([]int16, WindowLen)
		for i, v := range w1 {
			w2[i] = 2 * v
		}
		var logs [2][MaxFilters]int16
		for k, w := range [][]int16{w1, w2} {
			var s Spectrum
			if err := NewFrontEnd(PreemphasisDefault).Process(w, &s); err != nil {
				t.Fatal(err)
			}
			var mel [MaxFilters]int64
			d.MelScale(s.Power[:], mel[:])
			d.LogMel(mel[:], PowerCompensate(s.Norm), logs[k][:])
		}
		for i := 0; i < d.NFilter; i++ {
			diff := int(logs[1][i]) - int(logs[0][i])
			if diff < 300 || diff > 316 {
				t.Errorf("amp %.0f filter %d: log-mel rose by %d, want ~308", amp, i, diff)
			}
		}
	}
}

func TestLogMelZeroFilters(t *testing.T) {
	d, _ := NewDims(10)
	mel := make([]int64, MaxFilters)
	mel[3] = 1000
	mel[7] = 4000
	out := make([]int16, MaxFilters)
	d.LogMel(mel, 0, out)
	// empty filters take half the smallest non-empty one
	want := out[3] - 154 // log10(2) in Q9
	for _, i := range []int{0, 5, 19} {
		if diff := int(out[i]) - int(want); diff < -2 || diff > 2 {
			t.Errorf("out[%d] = %d, want ~%d", i, out[i], want)
		}
	}
}

func TestNewDims(t *testing.T) {
	tests := []struct {
		n       int
		filters int
	}{
		{8, 20}, {10, 20}, {13, 26}, {16, 26},
	}
	for _, tt := range tests {
		d, err := NewDims(tt.n)
		if err != nil {
			t.Fatalf("NewDims(%d): %v", tt.n, err)
		}
		if d.NFilter != tt.filters {
			t.Errorf("NewDims(%d).NFilter = %d, want %d", tt.n, d.NFilter, tt.filters)
		}
		if d.MuScaleP2[0] != 4 || d.MuScaleP2[tt.n] != 2 {
			t.Errorf("NewDims(%d) scale = %v", tt.n, d.MuScaleP2)
		}
	}
	if _, err := NewDims(12); !errors.Is(err, ErrUnsupportedDim) {
		t.Errorf("NewDims(12) error = %v, want ErrUnsupportedDim", err)
	}
}

func randomLogMel(r *rand.Rand, n int) []int16 {
	out := make([]int16, MaxFilters)
	for i := 0; i < n; i++ {
		out[i] = int16(1000 + r.Intn(5000))
	}
	return out
}

func TestCosineRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for _, n := range []int{8, 10, 13, 16} {
		d, _ := NewDims(n)
		for trial := 0; trial < 20; trial++ {
			lm := randomLogMel(r, d.NFilter)
			mfcc := make([]int16, n)
			d.InverseCosTransform(lm, d.MuScaleP2, mfcc)

			back := make([]int16, MaxFilters)
			again := make([]int16, n)
			d.CosTransform(mfcc, d.MuScaleP2, back)
			d.InverseCosTransform(back, d.MuScaleP2, again)
			for i := range mfcc {
				if diff := int(again[i]) - int(mfcc[i]); diff < -48 || diff > 48 {
					t.Errorf("n=%d generic dim %d: %d -> %d", n, i, mfcc[i], again[i])
				}
			}

			d.FastCosTransform(mfcc, d.MuScaleP2, back)
			d.FastInverseCosTransform(back, d.MuScaleP2, again)
			for i := range mfcc {
				if diff := int(again[i]) - int(mfcc[i]); diff < -48 || diff > 48 {
					t.Errorf("n=%d fast dim %d: %d -> %d", n, i, mfcc[i], again[i])
				}
			}
		}
	}
}

func TestInverseCosTransformSaturates(t *testing.T) {
	d, _ := NewDims(10)
	lm := make([]int16, d.NFilter)
	for i := range lm {
		lm[i] = 20000
	}
	out := make([]int16, d.NMFCC)
	d.InverseCosTransform(lm, d.MuScaleP2, out)
	// c0 sums to about 100000
	if out[0] != math.MaxInt16 {
		t.Errorf("c0 = %d, want %d", out[0], math.MaxInt16)
	}
}

func TestFastCosineMatchesGeneric(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for _, n := range []int{10, 16} {
		d, _ := NewDims(n)
		for trial := 0; trial < 20; trial++ {
			lm := randomLogMel(r, d.NFilter)
			a := make([]int16, n)
			b := make([]int16, n)
			d.InverseCosTransform(lm, d.MuScaleP2, a)
			d.FastInverseCosTransform(lm, d.MuScaleP2, b)
			for i := range a {
				if diff := int(a[i]) - int(b[i]); diff < -16 || diff > 16 {
					t.Errorf("n=%d inverse dim %d: generic %d, fast %d", n, i, a[i], b[i])
				}
			}

			la := make([]int16, MaxFilters)
			lb := make([]int16, MaxFilters)
			d.CosTransform(a, d.MuScaleP2, la)
			d.FastCosTransform(a, d.MuScaleP2, lb)
			for i := 0; i < d.NFilter; i++ {
				if diff := int(la[i]) - int(lb[i]); diff < -4 || diff > 4 {
					t.Errorf("n=%d forward filter %d: generic %d, fast %d", n, i, la[i], lb[i])
				}
			}
		}
	}
}

func TestRegressionLinearRamp(t *testing.T) {
	d, _ := NewDims(10)
	reg := NewRegression(d)
	out := make([]int16, d.VecSize())
	var got [][]int16
	for f := 0; f < 8; f++ {
		v := make([]int16, d.NMFCC)
		for i := range v {
			v[i] = int16(f * 100)
		}
		reg.Push(v)
		if reg.Next(out) {
			got = append(got, append([]int16(nil), out...))
		}
	}
	for reg.Drain(out) {
		got = append(got, append([]int16(nil), out...))
	}
	if len(got) != 8 {
		t.Fatalf("released %d frames, want 8", len(got))
	}
	// slope 100 per frame; dimension 9 has no scale difference
	for f, v := range got {
		if v[9] != int16(f*100) {
			t.Errorf("frame %d static = %d, want %d", f, v[9], f*100)
		}
		if delta := v[d.NMFCC+9]; delta < 99 || delta > 101 {
			t.Errorf("frame %d delta = %d, want ~100", f, delta)
		}
	}
	// dimension 0 delta carries two extra bits
	if delta := got[4][d.NMFCC]; delta < 396 || delta > 404 {
		t.Errorf("frame 4 delta[0] = %d, want ~400", delta)
	}
}

func TestRegressionSingleFrame(t *testing.T) {
	d, _ := NewDims(8)
	reg := NewRegression(d)
	reg.Push([]int16{1, 2, 3, 4, 5, 6, 7, 8})
	out := make([]int16, d.VecSize())
	if reg.Next(out) {
		t.Fatal("Next released a frame without look-ahead")
	}
	if !reg.Drain(out) {
		t.Fatal("Drain released nothing")
	}
	for i := d.NMFCC; i < d.VecSize(); i++ {
		if out[i] != 0 {
			t.Errorf("delta[%d] = %d, want 0", i-d.NMFCC, out[i])
		}
	}
}

func TestExtract(t *testing.T) {
	samples := make([]int16, 8000)
	r := rand.New(rand.NewSource(3))
	for i := range samples {
		samples[i] = int16(3000*math.Sin(2*math.Pi*300*float64(i)/SampleRate) + r.NormFloat64()*200)
	}
	feats, err := Extract(samples, 13)
	if err != nil {
		t.Fatal(err)
	}
	if want := len(Frames(samples)); len(feats) != want {
		t.Fatalf("len(feats) = %d, want %d", len(feats), want)
	}
	for i, f := range feats {
		if len(f) != 26 {
			t.Fatalf("frame %d dim = %d, want 26", i, len(f))
		}
	}
	if _, err := Extract(nil, 13); err == nil {
		t.Error("Extract(nil) should fail")
	}
}

func TestFrames(t *testing.T) {
	samples := make([]int16, 1000)
	for i := range samples {
		samples[i] = int16(i)
	}
	frames := Frames(samples)
	if len(frames) != 7 {
		t.Fatalf("len(frames) = %d, want 7", len(frames))
	}
	if frames[1][0] != FrameLen {
		t.Errorf("frames[1][0] = %d, want %d", frames[1][0], FrameLen)
	}
	if last := frames[6]; last[WindowLen-1] != 0 {
		t.Errorf("tail not zero padded: %d", last[WindowLen-1])
	}
}

package acoustic

import (
	"bytes"
	"errors"
	"slices"
	"testing"
)

func TestQuantizeByte(t *testing.T) {
	cases := []struct {
		v     int16
		shift int
		want  int16
	}{
		{1000, 0, 1024},
		{-1000, 0, -1024},
		{100, 0, 0},
		{200, 0, 256},
		{32767, 0, 0x7f00},
		{1000, 4, 16128},
		{3000, 4, 0x7f00},
	}
	for _, c := range cases {
		if got := QuantizeByte(c.v, c.shift); got != c.want {
			t.Errorf("QuantizeByte(%d, %d) = %d, want %d", c.v, c.shift, got, c.want)
		}
	}
}

func TestByteCodecRoundTrip(t *testing.T) {
	v := []int16{1200, -700, 33, -5, 0, 250, -2047, 900}
	scale := FitByteScale([][]int16{v}, len(v))
	c := ByteCodec{Scale: scale}
	packed := make([]int16, c.Stride(len(v)/2))
	c.Pack(v, packed)
	got := make([]int16, len(v))
	c.Unpack(packed, got)
	for d := range v {
		step := int(256>>uint(scale[d])) + 1
		if diff := int(got[d]) - int(v[d]); diff < -step || diff > step {
			t.Errorf("dim %d: %d -> %d, scale %d", d, v[d], got[d], scale[d])
		}
	}
}

func TestFitByteScale(t *testing.T) {
	s := FitByteScale([][]int16{{1000, -3000}, {-1500, 100}}, 2)
	// 1500<<4 = 24000 fits, 3000<<3 = 24000 fits
	if s[0] != 4 || s[1] != 3 {
		t.Errorf("FitByteScale = %v, want [4 3]", s)
	}
}

func TestShortCodecIsIdentity(t *testing.T) {
	v := []int16{1, -2, 3, -4}
	var c ShortCodec
	packed := make([]int16, c.Stride(2))
	c.Pack(v, packed)
	got := make([]int16, 4)
	c.Unpack(packed, got)
	if !slices.Equal(got, v) {
		t.Errorf("round trip = %v, want %v", got, v)
	}
}

func TestGaussDetConstFallsWithPrecision(t *testing.T) {
	m, err := NewModel(13, nil)
	if err != nil {
		t.Fatal(err)
	}
	iv := make([]int16, m.VecSize())
	for d := range iv {
		iv[d] = 512
	}
	g1 := GaussDetConst(iv, 2, m.Dims().MuScaleP2)
	for d := range iv {
		iv[d] = 1024
	}
	g2 := GaussDetConst(iv, 2, m.Dims().MuScaleP2)
	// ln(2) per dimension in Q6
	if d := int(g1) - int(g2); d < 1100 || d > 1200 {
		t.Errorf("gconst drop = %d, want about %d", d, 26*44)
	}
}

func twoMeanModel(t *testing.T) *Model {
	t.Helper()
	m, err := NewModel(8, ShortCodec{})
	if err != nil {
		t.Fatal(err)
	}
	zero := make([]int16, m.VecSize())
	far := make([]int16, m.VecSize())
	iv := make([]int16, m.VecSize())
	for d := range far {
		far[d] = 4096
		iv[d] = 512
	}
	for _, v := range [][]int16{zero, far} {
		if _, err := m.AddMean(v); err != nil {
			t.Fatal(err)
		}
		if _, err := m.AddVar(iv); err != nil {
			t.Fatal(err)
		}
	}
	m.Mixtures = []Mixture{{{Mean: 0, Var: 0, LogWeight: -44}, {Mean: 1, Var: 1, LogWeight: -44}}}
	return m
}

func TestObsScore(t *testing.T) {
	m := twoMeanModel(t)
	feat := make([]int16, m.VecSize())

	vit, best := m.ObsScore(feat, m.Mixtures[0], Viterbi, nil)
	if best != 0 {
		t.Errorf("best = %d, want 0", best)
	}
	if want := -(m.GConst[0] >> 1) - 44; vit != want {
		t.Errorf("Viterbi score = %d, want %d", vit, want)
	}
	full, _ := m.ObsScore(feat, m.Mixtures[0], Full, nil)
	if full < vit || full > vit+2 {
		t.Errorf("Full score = %d, want about %d", full, vit)
	}

	m.Mu[0] = 2048
	moved, _ := m.ObsScore(feat, m.Mixtures[0], Viterbi, nil)
	if moved >= vit {
		t.Errorf("score after moving the mean = %d, want below %d", moved, vit)
	}
	m.Reset()
	if again, _ := m.ObsScore(feat, m.Mixtures[0], Viterbi, nil); again != vit {
		t.Errorf("score after Reset = %d, want %d", again, vit)
	}
}

func TestObsScoreScratch(t *testing.T) {
	m := twoMeanModel(t)
	feat := make([]int16, m.VecSize())
	want, _ := m.ObsScore(feat, m.Mixtures[0], Full, nil)

	scratch := make([]int16, m.VecSize())
	var got int16
	allocs := testing.AllocsPerRun(20, func() {
		got, _ = m.ObsScore(feat, m.Mixtures[0], Full, scratch)
	})
	if allocs != 0 {
		t.Errorf("allocs = %v, want 0", allocs)
	}
	if got != want {
		t.Errorf("score = %d, want %d", got, want)
	}
}

func TestAddMeanRejectsWrongSize(t *testing.T) {
	m, _ := NewModel(10, nil)
	if _, err := m.AddMean(make([]int16, 5)); !errors.Is(err, ErrBadVectorSize) {
		t.Errorf("err = %v, want ErrBadVectorSize", err)
	}
}

func TestValidateRejectsBadMixture(t *testing.T) {
	m := twoMeanModel(t)
	m.Mixtures = append(m.Mixtures, Mixture{{Mean: 5, Var: 0}})
	if err := m.Validate(); !errors.Is(err, ErrBadVectorSize) {
		t.Errorf("err = %v, want ErrBadVectorSize", err)
	}
}

func TestSaveLoad(t *testing.T) {
	m, err := Synthetic(10, 4, ByteCodec{}, 1)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := m.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Codec.Name() != "byte" {
		t.Errorf("codec = %s, want byte", got.Codec.Name())
	}
	if !slices.Equal(got.Codec.(ByteCodec).Scale, m.Codec.(ByteCodec).Scale) {
		t.Error("byte scale not preserved")
	}
	if !slices.Equal(got.MuOrig, m.MuOrig) || !slices.Equal(got.VarOrig, m.VarOrig) {
		t.Error("model arrays not preserved")
	}
	if !slices.Equal(got.GConst, m.GConst) {
		t.Error("gconst not recomputed identically")
	}
	if len(got.Mixtures) != 2 {
		t.Errorf("len(Mixtures) = %d, want 2", len(got.Mixtures))
	}
}

func TestSyntheticDeterministic(t *testing.T) {
	a, err := Synthetic(8, 3, ShortCodec{}, 42)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Synthetic(8, 3, ShortCodec{}, 42)
	if !slices.Equal(a.MuOrig, b.MuOrig) || !slices.Equal(a.VarOrig, b.VarOrig) {
		t.Error("same seed gave different models")
	}
	if a.NumMeans() != 3 || a.NumVars() != 3 {
		t.Errorf("NumMeans/NumVars = %d/%d, want 3/3", a.NumMeans(), a.NumVars())
	}
}

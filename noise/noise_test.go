package noise

import "testing"

func fill(v int16) []int16 {
	ps := make([]int16, NumBins)
	for i := range ps {
		ps[i] = v
	}
	return ps
}

func TestUpdateLevelSteadyState(t *testing.T) {
	for _, v := range []int16{-32768, -20000, -16385, -5000, -1, 0, 1, 100, 10240, 16000, 16385, 20000, 32767} {
		if got := UpdateLevel(v, v, floorUp, floorDown); got != v {
			t.Errorf("UpdateLevel(%d, %d) = %d, want %d", v, v, got, v)
		}
	}
}

func TestUpdateLevelDirection(t *testing.T) {
	up := UpdateLevel(1000, 0, floorUp, floorDown)
	if up < 0 || up > 20 {
		t.Errorf("slow rise = %d, want a small step above 0", up)
	}
	down := UpdateLevel(0, 1000, floorUp, floorDown)
	if down < 500 || down > 700 {
		t.Errorf("fast fall = %d, want about 607", down)
	}
}

func TestPlainFloorFollowsTimeConstant(t *testing.T) {
	p := NewPlain()
	p.Subtract(fill(200), 0)
	check := func(k int, v int16) {
		prev := p.Floor()[10]
		p.Subtract(fill(v), 0)
		f, sm := p.Floor()[10], p.Smoothed()[10]
		switch {
		case sm > prev && (f < prev-1 || f > sm):
			t.Fatalf("frame %d: rising floor moved from %d to %d toward %d", k, prev, f, sm)
		case sm < prev && (f > prev+1 || f < sm):
			t.Fatalf("frame %d: falling floor moved from %d to %d toward %d", k, prev, f, sm)
		}
	}
	for k := 0; k < 30; k++ {
		check(k, int16(250+50*k))
	}
	for k := 0; k < 40; k++ {
		check(30+k, int16(1650-40*k))
	}
}

func TestPlainSteadyNoise(t *testing.T) {
	p := NewPlain()
	var ps []int16
	for k := 0; k < 40; k++ {
		ps = fill(4000)
		p.Subtract(ps, 0)
	}
	for i, v := range ps {
		if v < 480 || v > 520 {
			t.Fatalf("bin %d = %d, want noise/8 = 500", i, v)
		}
	}
}

func TestPlainEmptyBins(t *testing.T) {
	p := NewPlain()
	ps := fill(0)
	p.Subtract(ps, 0)
	if f := p.Floor()[0]; f != initialBinLevel {
		t.Errorf("floor = %d, want %d", f, initialBinLevel)
	}
	for i, v := range ps {
		if v < 0 {
			t.Fatalf("bin %d = %d, want non-negative", i, v)
		}
	}
}

func TestProbabilisticAttenuatesNoise(t *testing.T) {
	s := NewProbabilistic(DefaultParams)
	var ps []int16
	for k := 0; k < 20; k++ {
		ps = fill(4000)
		s.Subtract(ps, 0)
	}
	// 2^(-1361/512) * 4000 = 634
	for i, v := range ps {
		if v < 600 || v > 670 {
			t.Fatalf("bin %d = %d, want about 634", i, v)
		}
	}
	if s.SpeechProb() != 0 {
		t.Errorf("SpeechProb = %d, want 0", s.SpeechProb())
	}

	ps = fill(30000)
	s.Subtract(ps, 0)
	if ps[40] < 20000 {
		t.Errorf("speech bin = %d, want mild attenuation of 30000", ps[40])
	}
	if !s.Energy().LastSpeech() {
		t.Error("loud frame not flagged as speech")
	}
}

func TestProbabilisticResetKeepsMeanEnergy(t *testing.T) {
	s := NewProbabilistic(DefaultParams)
	for k := 0; k < 15; k++ {
		s.Subtract(fill(4000), 0)
	}
	m := s.Energy().MeanEn()
	s.Reset()
	if got := s.Energy().PrevMeanEn(); got != m {
		t.Errorf("PrevMeanEn = %d, want %d", got, m)
	}
	if got := s.Energy().Count(); got != 0 {
		t.Errorf("Count = %d, want 0", got)
	}
}

func TestFrameEnergyAllZero(t *testing.T) {
	if got := FrameEnergy(fill(0), 0); got != minFrameEnergy {
		t.Errorf("FrameEnergy = %d, want %d", got, minFrameEnergy)
	}
}

func TestEnergyTrackerLatchesNoiseLevel(t *testing.T) {
	e := NewEnergyTracker()
	for k := 0; k < 12; k++ {
		e.Update(3000)
		e.Next()
	}
	if d := int(e.MeanEn()) - 3016; d < -3 || d > 3 {
		t.Errorf("MeanEn = %d, want about 3016", e.MeanEn())
	}
	if e.NoiseLevel() != e.MeanEn() {
		t.Errorf("NoiseLevel = %d, want %d", e.NoiseLevel(), e.MeanEn())
	}
}

func TestEnergyTrackerHangover(t *testing.T) {
	e := NewEnergyTracker()
	step := func(energy int16) bool {
		s := e.Speech(e.Update(energy))
		e.Next()
		return s
	}
	for k := 0; k < 10; k++ {
		if step(0) {
			t.Fatalf("quiet frame %d flagged as speech", k)
		}
	}
	for k := 0; k < 6; k++ {
		if !step(2000) {
			t.Fatalf("loud frame %d not flagged as speech", k)
		}
	}
	for k := 0; k < hangoverFrames; k++ {
		if !step(0) {
			t.Fatalf("hangover frame %d not flagged as speech", k)
		}
	}
	if step(0) {
		t.Error("speech flagged after hangover expired")
	}
}

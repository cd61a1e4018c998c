package commands

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/proegssilb/tiesr-dialer-sub000/adaptstate"
	"github.com/proegssilb/tiesr-dialer-sub000/audio"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestSynthRunAndState(t *testing.T) {
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "model.gob")
	stateDir := filepath.Join(dir, "state")
	cfgPath := filepath.Join(dir, "tiesr.yaml")
	yaml := "state:\n  backend: file\n  path: " + stateDir + "\n  key: spk\n"
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := execute(t, "--config", cfgPath, "model", "synth", "--out", modelPath, "--means", "16"); err != nil {
		t.Fatalf("model synth: %v", err)
	}

	// 16 kHz input exercises the resampler
	samples := make([]int16, 16000)
	for i := range samples {
		samples[i] = int16(6000 * math.Sin(2*math.Pi*300*float64(i)/16000))
	}
	wavs := []string{filepath.Join(dir, "a.wav"), filepath.Join(dir, "b.wav")}
	for _, p := range wavs {
		if err := audio.WriteWAVFile(p, samples, 16000); err != nil {
			t.Fatal(err)
		}
	}

	if err := execute(t, "--config", cfgPath, "run", "--model", modelPath, "--save", "-j", "2", wavs[0], wavs[1]); err != nil {
		t.Fatalf("run: %v", err)
	}
	st, err := adaptstate.Load(context.Background(), adaptstate.FileStore{Dir: stateDir}, "spk")
	if err != nil {
		t.Fatalf("state not saved: %v", err)
	}
	if st.NMFCC != 10 {
		t.Errorf("NMFCC = %d, want 10", st.NMFCC)
	}

	if err := execute(t, "--config", cfgPath, "state", "show"); err != nil {
		t.Fatalf("state show: %v", err)
	}
	if err := execute(t, "--config", cfgPath, "state", "clear"); err != nil {
		t.Fatalf("state clear: %v", err)
	}
	if err := execute(t, "--config", cfgPath, "state", "show"); err == nil {
		t.Error("state show after clear: expected error")
	}
	if err := execute(t, "--config", cfgPath, "state", "list"); err == nil {
		t.Error("state list on file backend: expected error")
	}
}

func TestRunRequiresModel(t *testing.T) {
	if err := execute(t, "--config", "", "run", "--model", "", "x.wav"); err == nil {
		t.Error("expected error without a model")
	}
}

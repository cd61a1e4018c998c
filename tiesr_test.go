package tiesr

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/proegssilb/tiesr-dialer-sub000/acoustic"
	"github.com/proegssilb/tiesr-dialer-sub000/adaptstate"
	"github.com/proegssilb/tiesr-dialer-sub000/compensate"
	"github.com/proegssilb/tiesr-dialer-sub000/feature"
	"github.com/proegssilb/tiesr-dialer-sub000/internal/observe"
	"github.com/proegssilb/tiesr-dialer-sub000/noise"
	"github.com/proegssilb/tiesr-dialer-sub000/vad"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func testModel(t *testing.T) *acoustic.Model {
	t.Helper()
	m, err := acoustic.Synthetic(10, 40, acoustic.ShortCodec{}, 1)
	if err != nil {
		t.Fatalf("Synthetic: %v", err)
	}
	return m
}

// testSignal is low level noise with a tone burst in the middle.
func testSignal(n int) []int16 {
	out := make([]int16, n)
	seed := uint32(12345)
	for i := range out {
		seed = seed*1664525 + 1013904223
		v := float64(int32(seed>>16)&0x1ff) - 256
		if i > n/4 && i < 3*n/4 {
			v += 8000 * math.Sin(2*math.Pi*600*float64(i)/8000)
		}
		out[i] = int16(v)
	}
	return out
}

func newTestSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	opts = append([]Option{WithLogger(quiet)}, opts...)
	s, err := NewSession(testModel(t), opts...)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func TestNewSessionNoModel(t *testing.T) {
	if _, err := NewSession(nil); !errors.Is(err, compensate.ErrNoModel) {
		t.Errorf("err = %v, want ErrNoModel", err)
	}
}

func TestProcessFrameShortWindow(t *testing.T) {
	s := newTestSession(t)
	_, err := s.ProcessFrame(context.Background(), make([]int16, 100))
	if !errors.Is(err, feature.ErrFrameLength) {
		t.Errorf("err = %v, want ErrFrameLength", err)
	}
}

func TestProcessFrameCancelled(t *testing.T) {
	s := newTestSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.ProcessFrame(ctx, make([]int16, feature.WindowLen)); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestProcessSamples(t *testing.T) {
	for _, strategy := range []NoiseStrategy{NoNoise, PlainNoise, ProbabilisticNoise} {
		t.Run(strategy.String(), func(t *testing.T) {
			s := newTestSession(t, WithNoiseStrategy(strategy))
			samples := testSignal(16000)
			r, err := s.ProcessSamples(context.Background(), samples)
			if err != nil {
				t.Fatalf("ProcessSamples: %v", err)
			}
			want := len(feature.Frames(samples))
			if r.Frames != want {
				t.Errorf("Frames = %d, want %d", r.Frames, want)
			}
			if len(r.Features) != want {
				t.Errorf("len(Features) = %d, want %d", len(r.Features), want)
			}
			if len(r.Features[0]) != 20 {
				t.Errorf("feature size = %d, want 20", len(r.Features[0]))
			}
			if !r.Adapted || r.Cycles < 1 {
				t.Errorf("Adapted = %v, Cycles = %d, want adapted", r.Adapted, r.Cycles)
			}
			if r.Compensated < 40 {
				t.Errorf("Compensated = %d, want at least 40", r.Compensated)
			}
		})
	}
}

func TestProcessSamplesChangesModel(t *testing.T) {
	s := newTestSession(t)
	m := s.Model()
	if _, err := s.ProcessSamples(context.Background(), testSignal(8000)); err != nil {
		t.Fatalf("ProcessSamples: %v", err)
	}
	changed := false
	for i := 0; i < m.NumMeans() && !changed; i++ {
		cur, orig := m.Mean(i), m.MeanOrig(i)
		for d := range cur {
			if cur[d] != orig[d] {
				changed = true
				break
			}
		}
	}
	if !changed {
		t.Error("no mean was compensated")
	}
}

func TestSessionMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	met, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	s := newTestSession(t, WithMetrics(met))
	ctx := context.Background()
	const n = 25
	w := make([]int16, feature.WindowLen)
	for range n {
		if _, err := s.ProcessFrame(ctx, w); err != nil {
			t.Fatalf("ProcessFrame: %v", err)
		}
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	got := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok && len(sum.DataPoints) > 0 {
				got[m.Name] = sum.DataPoints[0].Value
			}
		}
	}
	if got["tiesr.frames"] != n {
		t.Errorf("tiesr.frames = %d, want %d", got["tiesr.frames"], n)
	}
	if got["tiesr.jac.vectors"] < 40 {
		t.Errorf("tiesr.jac.vectors = %d, want at least 40", got["tiesr.jac.vectors"])
	}
	if got["tiesr.jac.cycles"] < 1 {
		t.Errorf("tiesr.jac.cycles = %d, want at least 1", got["tiesr.jac.cycles"])
	}
}

func TestStateRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := adaptstate.FileStore{Dir: t.TempDir()}

	s := newTestSession(t)
	st, err := s.LoadState(ctx, store, "spk")
	if err != nil || st != compensate.StatusReset {
		t.Fatalf("LoadState = %v, %v, want reset", st, err)
	}
	s.Scheduler().LogH[0] = 123
	s.Scheduler().SVA().LogVarRho[3] = -200
	s.Channel().Num[2] = 77
	s.Energy().SetMeanEn(4000, 3500)
	if err := s.SaveState(ctx, store, "spk"); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	s2 := newTestSession(t)
	st, err = s2.LoadState(ctx, store, "spk")
	if err != nil || st != compensate.StatusSuccess {
		t.Fatalf("LoadState = %v, %v, want success", st, err)
	}
	if got := s2.Scheduler().LogH[0]; got != 123 {
		t.Errorf("LogH[0] = %d, want 123", got)
	}
	if got := s2.Scheduler().SVA().LogVarRho[3]; got != -200 {
		t.Errorf("LogVarRho[3] = %d, want -200", got)
	}
	if got := s2.Channel().Num[2]; got != 77 {
		t.Errorf("Num[2] = %d, want 77", got)
	}
	if got := s2.Energy().MeanEn(); got != 4000 {
		t.Errorf("MeanEn = %d, want 4000", got)
	}
}

func TestLoadStateCorruptResets(t *testing.T) {
	ctx := context.Background()
	store := adaptstate.FileStore{Dir: t.TempDir()}
	if err := store.Set(ctx, "spk", []byte{0xc1}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	s := newTestSession(t)
	s.Scheduler().LogH[1] = 50
	st, err := s.LoadState(ctx, store, "spk")
	if err != nil || st != compensate.StatusReset {
		t.Fatalf("LoadState = %v, %v, want reset", st, err)
	}
	if got := s.Scheduler().LogH[1]; got != 0 {
		t.Errorf("LogH[1] = %d, want 0 after reset", got)
	}
}

func TestLoadStateWrongDims(t *testing.T) {
	ctx := context.Background()
	store := adaptstate.FileStore{Dir: t.TempDir()}
	if err := adaptstate.Save(ctx, store, "spk", adaptstate.Default(13, 26)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	s := newTestSession(t)
	if st, err := s.LoadState(ctx, store, "spk"); err != nil || st != compensate.StatusReset {
		t.Errorf("LoadState = %v, %v, want reset", st, err)
	}
}

func TestSaveStateFailure(t *testing.T) {
	s := newTestSession(t)
	err := s.SaveState(context.Background(), adaptstate.FileStore{Dir: t.TempDir()}, "../bad")
	var se *compensate.StatusError
	if !errors.As(err, &se) || se.Status != compensate.StatusSaveFail {
		t.Errorf("err = %v, want save fail", err)
	}
}

func TestAccessors(t *testing.T) {
	s := newTestSession(t)

	p := noise.Params{Alpha: 16384, Beta: -2000}
	s.SetNoiseParams(p)
	if s.NoiseParams() != p {
		t.Errorf("NoiseParams = %+v, want %+v", s.NoiseParams(), p)
	}

	th := vad.File.Defaults()
	s.SetSAD(th)
	if s.SAD() != th {
		t.Errorf("SAD = %+v, want %+v", s.SAD(), th)
	}

	s.SetJACRate(7)
	if got := s.JACRate(); got != 7 {
		t.Errorf("JACRate = %d, want 7", got)
	}
	s.SetJACRate(0)
	if got := s.JACRate(); got != 7 {
		t.Errorf("JACRate after 0 = %d, want 7", got)
	}

	s.SetSVAForget(16384)
	if got := s.SVAForget(); got != 16384 {
		t.Errorf("SVAForget = %d, want 16384", got)
	}
}

func TestUpdateChannelNoAlignment(t *testing.T) {
	s := newTestSession(t)
	if got := s.UpdateChannel(); got != compensate.StatusNoAlignment {
		t.Errorf("UpdateChannel = %v, want no alignment", got)
	}
}

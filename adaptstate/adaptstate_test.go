package adaptstate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func sampleState() *State {
	s := Default(10, 20)
	s.LogH[3] = -120
	s.ChannelNum[0] = 1 << 40
	s.ChannelDen[0] = 77
	s.LogVarRho[5] = 300
	s.MeanEn = 3016
	s.PrevMeanEn = 2900
	s.CursorIndex = 42
	s.Cycles = 3
	return s
}

func equalState(t *testing.T, got, want *State) {
	t.Helper()
	if got.NMFCC != want.NMFCC || got.MeanEn != want.MeanEn || got.PrevMeanEn != want.PrevMeanEn ||
		got.CursorIndex != want.CursorIndex || got.Cycles != want.Cycles {
		t.Errorf("scalars = %+v, want %+v", got, want)
	}
	if !slices.Equal(got.LogH, want.LogH) || !slices.Equal(got.LogVarRho, want.LogVarRho) {
		t.Error("vectors not preserved")
	}
	if !slices.Equal(got.ChannelNum, want.ChannelNum) || !slices.Equal(got.ChannelDen, want.ChannelDen) {
		t.Error("accumulators not preserved")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	want := sampleState()
	b, err := want.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	got, err := Unmarshal(b)
	if err != nil {
		t.Fatal(err)
	}
	equalState(t, got, want)
	if err := got.Check(10, 20); err != nil {
		t.Errorf("Check: %v", err)
	}
}

func TestUnmarshalCorrupt(t *testing.T) {
	if _, err := Unmarshal([]byte{0xc1, 0x00, 0x13}); !errors.Is(err, ErrCorrupt) {
		t.Errorf("err = %v, want ErrCorrupt", err)
	}
	s := sampleState()
	s.Version = 99
	b, _ := s.Marshal()
	if _, err := Unmarshal(b); !errors.Is(err, ErrCorrupt) {
		t.Errorf("wrong version err = %v, want ErrCorrupt", err)
	}
}

func TestCheckDimensions(t *testing.T) {
	s := sampleState()
	if err := s.Check(13, 26); !errors.Is(err, ErrCorrupt) {
		t.Errorf("err = %v, want ErrCorrupt", err)
	}
	s.LogVarRho = s.LogVarRho[:4]
	if err := s.Check(10, 20); !errors.Is(err, ErrCorrupt) {
		t.Errorf("short LogVarRho err = %v, want ErrCorrupt", err)
	}
}

func exerciseStore(t *testing.T, st Store) {
	t.Helper()
	ctx := context.Background()
	if _, err := Load(ctx, st, "alice"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load missing: err = %v, want ErrNotFound", err)
	}
	want := sampleState()
	if err := Save(ctx, st, "alice", want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(ctx, st, "alice")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	equalState(t, got, want)

	if err := st.Delete(ctx, "alice"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := st.Get(ctx, "alice"); !errors.Is(err, ErrNotFound) {
		t.Errorf("after Delete err = %v, want ErrNotFound", err)
	}
	if err := st.Delete(ctx, "alice"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	exerciseStore(t, FileStore{Dir: dir})

	st := FileStore{Dir: filepath.Join(dir, "nested")}
	if err := Save(context.Background(), st, "bob", sampleState()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "nested", "bob.jac")); err != nil {
		t.Errorf("state file missing: %v", err)
	}
	if err := st.Set(context.Background(), "../evil", nil); err == nil {
		t.Error("key with a path separator accepted")
	}
}

func TestBadgerStore(t *testing.T) {
	st, err := NewBadgerStore(BadgerOptions{InMemory: true})
	if err != nil {
		t.Fatalf("NewBadgerStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	exerciseStore(t, st)

	ctx := context.Background()
	for _, k := range []string{"b", "a"} {
		if err := Save(ctx, st, k, sampleState()); err != nil {
			t.Fatal(err)
		}
	}
	keys, err := st.Keys(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(keys, []string{"a", "b"}) {
		t.Errorf("Keys = %v, want [a b]", keys)
	}
}

func TestBadgerStoreRequiresDir(t *testing.T) {
	if _, err := NewBadgerStore(BadgerOptions{}); err == nil {
		t.Error("NewBadgerStore without Dir succeeded")
	}
}

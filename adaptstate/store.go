package adaptstate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store holds state blobs by key, typically one key per speaker and
// channel.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Load reads and decodes the state under key.
func Load(ctx context.Context, st Store, key string) (*State, error) {
	b, err := st.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return Unmarshal(b)
}

// Save encodes s and writes it under key.
func Save(ctx context.Context, st Store, key string, s *State) error {
	b, err := s.Marshal()
	if err != nil {
		return err
	}
	return st.Set(ctx, key, b)
}

// FileStore keeps one file per key in Dir.
type FileStore struct {
	Dir string
}

const fileExt = ".jac"

func (f FileStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("adaptstate: invalid key %q", key)
	}
	return filepath.Join(f.Dir, key+fileExt), nil
}

func (f FileStore) Get(_ context.Context, key string) ([]byte, error) {
	p, err := f.path(key)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return b, err
}

// Set writes through a temporary file so a crash never leaves a partial
// blob behind.
func (f FileStore) Set(_ context.Context, key string, value []byte) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.Dir, key+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), p)
}

func (f FileStore) Delete(_ context.Context, key string) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Package acoustic holds the fixed-point Gaussian model store that model
// compensation adapts: packed mean vectors, inverse variance vectors, their
// Gaussian constants, and untouched copies of the original means and
// variances.
package acoustic

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"

	"github.com/proegssilb/tiesr-dialer-sub000/feature"
)

var ErrBadVectorSize = errors.New("acoustic: vector size does not match model dimension")

// Model is the adaptable model store. Mu and Var are rewritten by
// compensation; MuOrig and VarOrig never change after loading.
type Model struct {
	NMFCC int
	Codec MeanVectorCodec

	Mu     []int16 // NumMeans * Codec.Stride(NMFCC)
	MuOrig []int16
	// Inverse variances, Q9, 2*NMFCC per vector.
	Var     []int16
	VarOrig []int16
	GConst  []int16 // one per variance vector, Q6

	Mixtures []Mixture

	dims *feature.Dims
}

// NewModel returns an empty model for nMFCC static coefficients.
func NewModel(nMFCC int, codec MeanVectorCodec) (*Model, error) {
	d, err := feature.NewDims(nMFCC)
	if err != nil {
		return nil, err
	}
	if codec == nil {
		codec = ShortCodec{}
	}
	return &Model{NMFCC: nMFCC, Codec: codec, dims: d}, nil
}

// Dims returns the feature tables matching the model dimension.
func (m *Model) Dims() *feature.Dims { return m.dims }

// VecSize is the unpacked vector length.
func (m *Model) VecSize() int { return 2 * m.NMFCC }

func (m *Model) stride() int { return m.Codec.Stride(m.NMFCC) }

// NumMeans is the number of mean vectors.
func (m *Model) NumMeans() int { return len(m.MuOrig) / m.stride() }

// NumVars is the number of inverse variance vectors.
func (m *Model) NumVars() int { return len(m.VarOrig) / m.VecSize() }

// Mean returns the stored (possibly packed) compensated mean i.
func (m *Model) Mean(i int) []int16 {
	s := m.stride()
	return m.Mu[i*s : (i+1)*s]
}

// MeanOrig returns the stored original mean i.
func (m *Model) MeanOrig(i int) []int16 {
	s := m.stride()
	return m.MuOrig[i*s : (i+1)*s]
}

// UnpackMean decodes compensated mean i into v.
func (m *Model) UnpackMean(i int, v []int16) { m.Codec.Unpack(m.Mean(i), v) }

// InvVar returns compensated inverse variance vector i.
func (m *Model) InvVar(i int) []int16 {
	n := m.VecSize()
	return m.Var[i*n : (i+1)*n]
}

// InvVarOrig returns original inverse variance vector i.
func (m *Model) InvVarOrig(i int) []int16 {
	n := m.VecSize()
	return m.VarOrig[i*n : (i+1)*n]
}

// AddMean appends an unpacked static+delta mean vector and returns its
// index.
func (m *Model) AddMean(v []int16) (int, error) {
	if len(v) != m.VecSize() {
		return 0, fmt.Errorf("%w: mean has %d values, want %d", ErrBadVectorSize, len(v), m.VecSize())
	}
	packed := make([]int16, m.stride())
	m.Codec.Pack(v, packed)
	m.MuOrig = append(m.MuOrig, packed...)
	m.Mu = append(m.Mu, packed...)
	return m.NumMeans() - 1, nil
}

// AddVar appends an inverse variance vector (Q9), computes its Gaussian
// constant and returns its index.
func (m *Model) AddVar(v []int16) (int, error) {
	if len(v) != m.VecSize() {
		return 0, fmt.Errorf("%w: variance has %d values, want %d", ErrBadVectorSize, len(v), m.VecSize())
	}
	m.VarOrig = append(m.VarOrig, v...)
	m.Var = append(m.Var, v...)
	m.GConst = append(m.GConst, GaussDetConst(v, 2, m.dims.MuScaleP2))
	return m.NumVars() - 1, nil
}

// Reset discards all compensation, restoring means, variances and
// constants from the originals.
func (m *Model) Reset() {
	copy(m.Mu, m.MuOrig)
	copy(m.Var, m.VarOrig)
	for i := 0; i < m.NumVars(); i++ {
		m.GConst[i] = GaussDetConst(m.InvVarOrig(i), 2, m.dims.MuScaleP2)
	}
}

// Validate checks that every array agrees with the model dimension.
func (m *Model) Validate() error {
	s := m.stride()
	switch {
	case len(m.MuOrig)%s != 0 || len(m.Mu) != len(m.MuOrig):
		return fmt.Errorf("%w: %d mean words, stride %d", ErrBadVectorSize, len(m.MuOrig), s)
	case len(m.VarOrig)%m.VecSize() != 0 || len(m.Var) != len(m.VarOrig):
		return fmt.Errorf("%w: %d variance words", ErrBadVectorSize, len(m.VarOrig))
	case len(m.GConst) != m.NumVars():
		return fmt.Errorf("%w: %d constants for %d variances", ErrBadVectorSize, len(m.GConst), m.NumVars())
	}
	for i, mix := range m.Mixtures {
		for _, c := range mix {
			if c.Mean < 0 || c.Mean >= m.NumMeans() || c.Var < 0 || c.Var >= m.NumVars() {
				return fmt.Errorf("%w: mixture %d refers to mean %d, variance %d", ErrBadVectorSize, i, c.Mean, c.Var)
			}
		}
	}
	return nil
}

// serializable form for gob encoding
type serializedModel struct {
	NMFCC     int
	Codec     string
	ByteScale []int16
	MuOrig    []int16
	VarOrig   []int16
	Mixtures  []Mixture
}

// Save writes the original model with gob encoding. Compensation state is
// not saved.
func (m *Model) Save(w io.Writer) error {
	sm := serializedModel{
		NMFCC:    m.NMFCC,
		Codec:    m.Codec.Name(),
		MuOrig:   m.MuOrig,
		VarOrig:  m.VarOrig,
		Mixtures: m.Mixtures,
	}
	if bc, ok := m.Codec.(ByteCodec); ok {
		sm.ByteScale = bc.Scale
	}
	return gob.NewEncoder(w).Encode(sm)
}

// Load reads a model written by Save.
func Load(r io.Reader) (*Model, error) {
	var sm serializedModel
	if err := gob.NewDecoder(r).Decode(&sm); err != nil {
		return nil, err
	}
	codec, ok := CodecByName(sm.Codec, sm.ByteScale)
	if !ok {
		return nil, fmt.Errorf("acoustic: unknown mean codec %q", sm.Codec)
	}
	m, err := NewModel(sm.NMFCC, codec)
	if err != nil {
		return nil, err
	}
	m.MuOrig = sm.MuOrig
	m.Mu = append([]int16(nil), sm.MuOrig...)
	m.VarOrig = sm.VarOrig
	m.Var = append([]int16(nil), sm.VarOrig...)
	m.GConst = make([]int16, m.NumVars())
	m.Mixtures = sm.Mixtures
	if err := m.Validate(); err != nil {
		return nil, err
	}
	m.Reset()
	return m, nil
}

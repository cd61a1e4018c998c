// Package adaptstate persists the adaptation state that carries over
// between sessions: the channel estimate, its accumulators, the variance
// multipliers and the noise level of the last utterance.
package adaptstate

import (
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Version is written into every blob. Blobs of another version are
// treated as corrupt.
const Version = 1

var (
	ErrNotFound = errors.New("adaptstate: not found")
	ErrCorrupt  = errors.New("adaptstate: corrupt state")
)

// State is the persisted adaptation state.
type State struct {
	Version int `msgpack:"version"`
	NMFCC   int `msgpack:"n_mfcc"`

	// Channel log-mel spectrum, Q9, one per filter.
	LogH []int16 `msgpack:"log_h"`
	// Channel estimation sums, Q15, one per filter.
	ChannelNum []int64 `msgpack:"channel_num"`
	ChannelDen []int64 `msgpack:"channel_den"`

	// SVA log variance scales, Q9, one per static and delta dimension.
	LogVarRho []int16 `msgpack:"log_var_rho"`

	MeanEn     int16 `msgpack:"mean_en"`
	PrevMeanEn int16 `msgpack:"prev_mean_en"`

	CursorIndex int `msgpack:"cursor_index"`
	Cycles      int `msgpack:"cycles"`
}

// Default returns the zero bias state for nMFCC coefficients and nFilter
// filters.
func Default(nMFCC, nFilter int) *State {
	return &State{
		Version:    Version,
		NMFCC:      nMFCC,
		LogH:       make([]int16, nFilter),
		ChannelNum: make([]int64, nFilter),
		ChannelDen: make([]int64, nFilter),
		LogVarRho:  make([]int16, 2*nMFCC),
	}
}

// Marshal encodes s with msgpack.
func (s *State) Marshal() ([]byte, error) {
	return msgpack.Marshal(s)
}

// Unmarshal decodes a blob written by Marshal. Undecodable blobs and
// version mismatches return ErrCorrupt.
func Unmarshal(b []byte) (*State, error) {
	var s State
	if err := msgpack.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if s.Version != Version {
		return nil, fmt.Errorf("%w: version %d", ErrCorrupt, s.Version)
	}
	return &s, nil
}

// Check verifies that s fits a model with nMFCC coefficients and nFilter
// filters.
func (s *State) Check(nMFCC, nFilter int) error {
	switch {
	case s.NMFCC != nMFCC:
		return fmt.Errorf("%w: saved for %d coefficients, model has %d", ErrCorrupt, s.NMFCC, nMFCC)
	case len(s.LogH) != nFilter || len(s.ChannelNum) != nFilter || len(s.ChannelDen) != nFilter:
		return fmt.Errorf("%w: channel has %d filters, want %d", ErrCorrupt, len(s.LogH), nFilter)
	case len(s.LogVarRho) != 2*nMFCC:
		return fmt.Errorf("%w: %d variance scales, want %d", ErrCorrupt, len(s.LogVarRho), 2*nMFCC)
	case s.CursorIndex < 0 || s.Cycles < 0:
		return fmt.Errorf("%w: cursor %d/%d", ErrCorrupt, s.CursorIndex, s.Cycles)
	}
	return nil
}

package compensate

import (
	"errors"
	"fmt"
)

var (
	ErrModelDimension = errors.New("compensate: vector size does not match model dimension")
	ErrNoModel        = errors.New("compensate: no model loaded")
)

// Status is the outcome of a JAC or SVA operation.
type Status int

const (
	StatusSuccess Status = iota
	StatusMemoryFail
	StatusLoadFail
	// StatusReset means persisted state could not be used and defaults
	// were installed instead. It is not a failure.
	StatusReset
	StatusSaveFail
	StatusSVAFail
	StatusFail
	StatusNoAlignment
)

var statusNames = [...]string{
	StatusSuccess:     "success",
	StatusMemoryFail:  "memory fail",
	StatusLoadFail:    "load fail",
	StatusReset:       "reset",
	StatusSaveFail:    "save fail",
	StatusSVAFail:     "sva fail",
	StatusFail:        "fail",
	StatusNoAlignment: "no alignment",
}

func (s Status) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Err returns nil for StatusSuccess and StatusReset and a *StatusError
// otherwise.
func (s Status) Err() error {
	if s == StatusSuccess || s == StatusReset {
		return nil
	}
	return &StatusError{Status: s}
}

// StatusError carries a failure status and the error that caused it.
type StatusError struct {
	Status Status
	Err    error
}

func (e *StatusError) Error() string {
	if e.Err == nil {
		return "compensate: " + e.Status.String()
	}
	return fmt.Sprintf("compensate: %s: %v", e.Status, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

func fail(s Status, err error) error {
	return &StatusError{Status: s, Err: err}
}

package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCorruptLedger is reported when the stored ledger cannot be decoded.
	ErrCorruptLedger = errors.New("stored ledger is corrupt")
	// ErrAnalysisInProgress is returned while another recognition is pending.
	ErrAnalysisInProgress = errors.New("an analysis is already in progress")
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("not found")
)

// PersistenceError means the durable store could not be read or written.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ValidationError means caller-supplied input was rejected before any work.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// RecognitionError covers every way a recognition call can fail: transport,
// non-2xx status, rate limiting and unusable model output.
type RecognitionError struct {
	Backend string
	Err     error
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("%s recognition failed: %v", e.Backend, e.Err)
}

func (e *RecognitionError) Unwrap() error { return e.Err }

package types

import (
	"errors"
	"fmt"
)

// ErrInvalidInput signals an empty or malformed payload. Not retryable; the
// caller must fix the input.
var ErrInvalidInput = errors.New("invalid input")

// ErrUnsupportedExport signals a decoded document that cannot be exported as
// text at all. Should not happen for a successfully decoded document.
var ErrUnsupportedExport = errors.New("document supports no text export")

// DecodeError wraps a failure to parse the uploaded document. Not retryable
// without different input or a different backend.
type DecodeError struct {
	Filename string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s: %v", e.Filename, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// BackendUnavailableError signals a missing external capability discovered at
// backend construction time, not per request.
type BackendUnavailableError struct {
	Backend string
	Reason  string
}

func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("backend %s unavailable: %s", e.Backend, e.Reason)
}

// ProcessingError wraps any other unexpected failure during processing,
// keeping the filename and the stage that failed.
type ProcessingError struct {
	Filename string
	Stage    string
	Err      error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("processing %s failed at %s: %v", e.Filename, e.Stage, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

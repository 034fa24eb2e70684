package extraction

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when an empty or whitespace-only transcript
// is submitted for extraction. The model is never called in that case.
var ErrInvalidInput = errors.New("transcript must not be empty")

// NetworkError wraps a failed or timed-out model call. It is retryable:
// the caller keeps the transcript and may resubmit immediately.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("extraction request failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ParseError means the model response could not be interpreted as an
// expense candidate even after fallback recovery. Raw carries the original
// response text for diagnostics.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparsable model response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

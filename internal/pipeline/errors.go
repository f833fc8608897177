package pipeline

import (
	"errors"
	"fmt"
)

// ErrorKind classifies analysis failures for the boundary layer.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindFetch      ErrorKind = "fetch"
	KindInternal   ErrorKind = "internal"
)

// ValidationError reports a malformed or out-of-bounds request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// FetchError reports a posting URL that could not be turned into text.
type FetchError struct {
	URL   string
	Cause error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// InternalError reports an unexpected failure inside an analysis stage.
type InternalError struct {
	Stage string
	Cause error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error in stage %s: %v", e.Stage, e.Cause)
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

// Kind returns the kind of an analysis error. Errors not produced by the
// analyzer are internal.
func Kind(err error) ErrorKind {
	var validationErr *ValidationError
	var fetchErr *FetchError
	switch {
	case errors.As(err, &validationErr):
		return KindValidation
	case errors.As(err, &fetchErr):
		return KindFetch
	default:
		return KindInternal
	}
}

package service

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers map them to HTTP status codes with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrStorage    = errors.New("storage failure")
	ErrExtraction = errors.New("extraction failed")
	ErrFormat     = errors.New("format failed")
	ErrNotFound   = errors.New("not found")
)

// Pipeline stages named in errors and metrics.
const (
	StageValidation = "validation"
	StageStorage    = "storage"
	StageExtraction = "extraction"
	StageFormat     = "format"
)

// Error is a classified failure. Message is safe to show to the caller; Details
// carries the field name or upstream detail when there is one.
type Error struct {
	Kind    error
	Stage   string
	Message string
	Details string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

// Is matches the error kind so callers can write errors.Is(err, ErrStorage).
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func validationError(field, msg string) *Error {
	return &Error{Kind: ErrValidation, Stage: StageValidation, Message: msg, Details: field}
}

func storageError(msg string, err error) *Error {
	return &Error{Kind: ErrStorage, Stage: StageStorage, Message: msg, Err: err}
}

func notFoundError(msg string, err error) *Error {
	return &Error{Kind: ErrNotFound, Stage: StageStorage, Message: msg, Err: err}
}

func formatError(msg string, err error) *Error {
	return &Error{Kind: ErrFormat, Stage: StageFormat, Message: msg, Err: err}
}

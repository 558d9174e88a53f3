package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("not found")
	// ErrConflict is returned when a family with the same name already exists.
	// The resolver absorbs it; handlers never see it.
	ErrConflict = errors.New("conflict")
)

type invalidError struct {
	msg string
}

func (e *invalidError) Error() string { return e.msg }

func (e *invalidError) Unwrap() error { return ErrInvalidRequest }

// Invalid returns an error that matches ErrInvalidRequest and whose message
// is safe to show to the caller.
func Invalid(format string, args ...any) error {
	return &invalidError{msg: fmt.Sprintf(format, args...)}
}

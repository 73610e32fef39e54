// Package errors holds the sentinel errors shared by the repository,
// service and transport layers.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound     = fmt.Errorf("not found")
	ErrConflict     = fmt.Errorf("conflict")
	ErrInvalidInput = fmt.Errorf("invalid input")
	ErrUnauthorized = fmt.Errorf("unauthorized")
)

// Invalid wraps ErrInvalidInput with a caller-facing message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// NotFound wraps ErrNotFound with a caller-facing message.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Conflict wraps ErrConflict with a caller-facing message.
func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// Message strips the sentinel prefix so only the caller-facing part of a
// wrapped error is returned. Bare sentinels come back unchanged.
func Message(err error) string {
	msg := err.Error()
	for _, s := range []error{ErrNotFound, ErrConflict, ErrInvalidInput, ErrUnauthorized} {
		if errors.Is(err, s) {
			if rest, ok := strings.CutPrefix(msg, s.Error()+": "); ok {
				return rest
			}
		}
	}
	return msg
}

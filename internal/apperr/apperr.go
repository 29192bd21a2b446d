// Package apperr holds the error kinds shared by the service layers.
// Callers wrap one of the sentinels with fmt.Errorf("%w: ...") and
// classify with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrPersistence     = errors.New("persistence failure")
	ErrExternalService = errors.New("external service failure")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrRateLimited     = errors.New("rate limited")
)

func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Persistence classifies a storage error. Errors that already carry a kind
// are returned unchanged so a not-found from the store stays a not-found.
func Persistence(msg string, err error) error {
	if err == nil {
		return nil
	}
	if Classified(err) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrPersistence, msg, err)
}

func External(msg string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrExternalService, msg, err)
}

func Classified(err error) bool {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrPersistence, ErrExternalService, ErrUnauthenticated, ErrForbidden, ErrRateLimited} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

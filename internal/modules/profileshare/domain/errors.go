package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound         = errors.New("profile share not found")
	ErrRecordExists           = errors.New("profile share already exists")
	ErrConcurrentUpdate       = errors.New("profile share was modified concurrently")
	ErrInvalidPatch           = errors.New("invalid profile share update")
	ErrInvalidDisplaySettings = errors.New("invalid display settings")
	ErrNoFile                 = errors.New("no file uploaded or unsupported type")
	ErrFileTooLarge           = errors.New("file too large")
	ErrInvalidFileType        = errors.New("only image files are allowed")
	ErrInvalidExtension       = errors.New("file extension is not allowed")
	ErrSnapshotTooLarge       = errors.New("qr code image too large")
	ErrEmptySnapshot          = errors.New("qr code image is required")
	ErrNothingToEncode        = errors.New("profile url is empty")
)

// ValidationError marks a rejection caused by client input.
type ValidationError struct {
	Err    error
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return e.Err.Error()
	}
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Err, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", e.Err, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err was caused by client input.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invalid(err error, field, reason string) error {
	return &ValidationError{Err: err, Field: field, Reason: reason}
}

// Reject wraps a sentinel as a client error without extra detail.
func Reject(err error) error {
	return &ValidationError{Err: err}
}

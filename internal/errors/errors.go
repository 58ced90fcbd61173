// Package errors defines the error taxonomy shared across the registry,
// the storage backends and the HTTP layer.
package errors

import (
	"errors"
	"fmt"
)

// ErrInvalidURL is returned when the destination URL is not a well-formed
// absolute URI. It is always raised before any storage access.
var ErrInvalidURL = errors.New("invalid URL format")

// ErrAliasConflict is returned when a custom alias resolves to a code that
// already exists in the store.
var ErrAliasConflict = errors.New("alias already in use")

// ErrShortCodeNotFound is returned when a code doesn't exist in the store.
var ErrShortCodeNotFound = errors.New("short code not found")

// ErrDuplicateCode is returned by a storage backend's insert when a record
// with the same code is already present. The registry translates it to
// ErrAliasConflict for custom aliases, or retries once for random codes.
var ErrDuplicateCode = errors.New("short code already exists")

// ErrShortCodeGenerationFailed is returned when a unique random code could
// not be produced within the allowed retry.
var ErrShortCodeGenerationFailed = errors.New("failed to generate unique short code")

// StorageError wraps a backend failure (unreachable store, write failure,
// timeout) with the backend name and the operation that failed.
type StorageError struct {
	Backend string
	Op      string
	Err     error
}

func (e StorageError) Error() string {
	return fmt.Sprintf("storage %s: %s: %v", e.Backend, e.Op, e.Err)
}

func (e StorageError) Unwrap() error {
	return e.Err
}

// ErrClickRecordingFailed is returned when an access event could not be
// appended. Callers swallow it; it only shows up in logs.
type ErrClickRecordingFailed struct {
	Code   string
	Reason string
}

func (e ErrClickRecordingFailed) Error() string {
	return fmt.Sprintf("failed to record click for code %s: %s", e.Code, e.Reason)
}

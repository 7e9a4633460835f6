// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"fmt"
)

// Error kinds shared by catalog, store, mapper and service layers.
var (
	// ErrNotFound indicates an unknown TLD, offer, country, remote domain or contact.
	ErrNotFound = errors.New("not found")

	// ErrInvalidPeriod indicates a period length absent from an offer's period table.
	ErrInvalidPeriod = fmt.Errorf("invalid period: %w", ErrNotFound)

	// ErrConflict indicates a write-once key that already exists.
	ErrConflict = errors.New("conflict")

	// ErrInvalidValue indicates malformed input (JSON, dates, integers).
	ErrInvalidValue = errors.New("invalid value")

	// ErrMissing indicates a required field or role absent from a response.
	ErrMissing = errors.New("missing")

	// ErrUnimplemented indicates an operation the connector does not support.
	ErrUnimplemented = errors.New("not implemented")
)

// KeyError carries the offending key and value alongside an error kind.
type KeyError struct {
	Kind  error
	Key   string
	Value string
}

func (e *KeyError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Key)
	}
	return fmt.Sprintf("%v: %s=%q", e.Kind, e.Key, e.Value)
}

// Unwrap exposes the kind to errors.Is.
func (e *KeyError) Unwrap() error { return e.Kind }

// NotFound returns a keyed ErrNotFound.
func NotFound(key, value string) error {
	return &KeyError{Kind: ErrNotFound, Key: key, Value: value}
}

// InvalidPeriod returns a keyed ErrInvalidPeriod.
func InvalidPeriod(key, value string) error {
	return &KeyError{Kind: ErrInvalidPeriod, Key: key, Value: value}
}

// Conflict returns a keyed ErrConflict.
func Conflict(key, value string) error {
	return &KeyError{Kind: ErrConflict, Key: key, Value: value}
}

// InvalidValue returns a keyed ErrInvalidValue.
func InvalidValue(key, value string) error {
	return &KeyError{Kind: ErrInvalidValue, Key: key, Value: value}
}

// Missing returns a keyed ErrMissing.
func Missing(key string) error {
	return &KeyError{Kind: ErrMissing, Key: key}
}

// Unimplemented returns a keyed ErrUnimplemented.
func Unimplemented(key string) error {
	return &KeyError{Kind: ErrUnimplemented, Key: key}
}

// Key extracts the offending key from err, if any.
func Key(err error) string {
	var ke *KeyError
	if errors.As(err, &ke) {
		return ke.Key
	}
	return ""
}

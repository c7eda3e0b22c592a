package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// ErrParse marks a malformed input document (unknown required fields,
	// contradictory constraints, undecodable bytes).
	ErrParse = errors.New("malformed input document")

	// ErrState marks an internally inconsistent schema, e.g. a domain kind
	// incompatible with the declared feature type.
	ErrState = errors.New("inconsistent schema")

	// ErrSerialization marks an output document that cannot be encoded.
	ErrSerialization = errors.New("output document cannot be encoded")
)

// Error constructors with context
func NewParseError(document string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrParse, document)
	}
	return fmt.Errorf("%w: %s: %v", ErrParse, document, cause)
}

func NewParseErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrParse, fmt.Sprintf(format, args...))
}

func NewStateError(path string, detail string) error {
	if path == "" {
		return fmt.Errorf("%w: %s", ErrState, detail)
	}
	return fmt.Errorf("%w: feature %q: %s", ErrState, path, detail)
}

func NewSerializationError(document string, cause error) error {
	return fmt.Errorf("%w: %s: %v", ErrSerialization, document, cause)
}

// Error checking helpers
func IsParseError(err error) bool {
	return errors.Is(err, ErrParse)
}

func IsStateError(err error) bool {
	return errors.Is(err, ErrState)
}

func IsSerializationError(err error) bool {
	return errors.Is(err, ErrSerialization)
}

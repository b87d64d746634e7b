package persistence

import "errors"

// Errors returned by the import decoders. Load paths never return errors;
// they fall back to defaults instead.
var (
	// ErrInvalidPayload reports an import payload that is not a JSON array.
	ErrInvalidPayload = errors.New("invalid import payload")
	// ErrUnknownShape reports decoded data that no migration step recognizes.
	ErrUnknownShape = errors.New("unknown record shape")
)

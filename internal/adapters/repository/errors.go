package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound          = errors.New("key not found")
	ErrEmptyKey          = errors.New("empty key")
	ErrUnsupportedDriver = errors.New("unsupported store driver")
	ErrClosed            = errors.New("store closed")
)

package model

import "errors"

// Sentinel error kinds shared by the domain packages. Callers match them with errors.Is.
var (
	// ErrNotFound reports a missing id or a violated parent/child relationship.
	ErrNotFound = errors.New("not found")
	// ErrInvalidName reports an empty (after trimming) name where one is required.
	ErrInvalidName = errors.New("invalid name")
	// ErrLastSetProtected reports an attempt to delete the only remaining score set.
	ErrLastSetProtected = errors.New("last score set is protected")
	// ErrMalformedPersistedState reports persisted data that could not be decoded.
	// It never leaves the persistence layer; the owning component falls back to its default.
	ErrMalformedPersistedState = errors.New("malformed persisted state")
)

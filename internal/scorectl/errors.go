package scorectl

import "errors"

// Sentinel error kinds for this package.
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrMissingFile    = errors.New("an input file is required")
	ErrUnknownFormat  = errors.New("unknown format")
	ErrAPI            = errors.New("api request failed")
)

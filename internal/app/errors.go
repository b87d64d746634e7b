package service

import "errors"

// ErrNotStarted reports an operation that needs the background writer before Start.
var ErrNotStarted = errors.New("service not started")

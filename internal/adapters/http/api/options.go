package api

import (
	"time"

	"github.com/okian/admitcalc/pkg/logger"
)

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithCORSOrigins enables CORS for the given origins.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

// WithRequestTimeout bounds the handling time of each request.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the server.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

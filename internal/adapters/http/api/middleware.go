package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/okian/admitcalc/pkg/logger"
	"github.com/okian/admitcalc/pkg/metrics"
)

// MetricsMiddleware records Prometheus metrics per route pattern.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		endpoint := routePattern(r)
		durationMs := float64(time.Since(start).Milliseconds())
		statusCodeStr := strconv.Itoa(status)

		metrics.RecordHTTPRequest(endpoint, r.Method, statusCodeStr)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, statusCodeStr, durationMs)
		if status >= http.StatusBadRequest {
			metrics.RecordErrorByEndpoint(endpoint, r.Method, errorType(status))
		}
	})
}

// routePattern keeps label cardinality bounded by using the matched pattern
// instead of the raw path.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func errorType(statusCode int) string {
	switch {
	case statusCode >= http.StatusInternalServerError:
		return "server_error"
	case statusCode == http.StatusNotFound:
		return "not_found"
	case statusCode == http.StatusConflict:
		return "conflict"
	default:
		return "client_error"
	}
}

// RequestLogger logs every request at debug level and server errors at warn.
func RequestLogger(l logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []logger.Field{
				logger.String("method", r.Method),
				logger.String("route", routePattern(r)),
				logger.Int("status", status),
				logger.Duration("duration", time.Since(start)),
				logger.String("requestID", middleware.GetReqID(r.Context())),
			}
			if status >= http.StatusInternalServerError {
				l.Warn(r.Context(), "request failed", fields...)
				return
			}
			l.Debug(r.Context(), "request served", fields...)
		})
	}
}

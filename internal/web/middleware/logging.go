package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/abadmin/internal/auth"
	"github.com/emiliopalmerini/abadmin/internal/ports"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// AccessLog logs one line per request and records request metrics.
// It must wrap the mux directly so the matched route pattern is visible.
func AccessLog(logger *zap.Logger, metrics ports.MetricsRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(rec, r)

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			duration := time.Since(start)
			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("route", route),
				zap.Int("status", status),
				zap.Int("bytes", rec.bytes),
				zap.Duration("duration", duration),
			}
			if p, ok := auth.PrincipalFrom(r.Context()); ok {
				fields = append(fields, zap.String("user_id", p.UserID))
			}

			switch {
			case status >= 500:
				logger.Error("request", fields...)
			case route == "GET /health":
				logger.Debug("request", fields...)
			default:
				logger.Info("request", fields...)
			}

			if metrics != nil {
				metrics.RecordRequest(r.Context(), r.Method, route, status, duration)
			}
		})
	}
}

// Package trace logs every API request and feeds status and latency metrics.
package trace

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"glowbook/internal/log"
)

// Recorder receives per-request measurements.
type Recorder interface {
	RecordHTTPStatus(statusCode int)
	RecordHTTPLatency(d time.Duration)
}

// Middleware handles request tracing and logging
type Middleware struct {
	extractIP func(*http.Request) string
	recorder  Recorder
	logger    *log.StructuredLogger
	now       func() time.Time
}

// NewMiddleware creates a trace middleware. recorder may be nil.
func NewMiddleware(logger *log.Logger, extractIP func(*http.Request) string, recorder Recorder) *Middleware {
	if logger == nil {
		logger = log.Component(log.ComponentHTTP)
	}
	return &Middleware{
		extractIP: extractIP,
		recorder:  recorder,
		logger:    log.NewStructuredLogger(logger),
		now:       time.Now,
	}
}

// Middleware attaches a request-scoped logger, then logs the outcome.
// It expects chi's RequestID middleware to run first.
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := m.now()

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		duration := m.now().Sub(start)

		if m.recorder != nil {
			m.recorder.RecordHTTPStatus(status)
			m.recorder.RecordHTTPLatency(duration)
		}
		m.logger.LogHTTPEnd(r.Context(), r, status, duration.Milliseconds(), clientIP)
	})
}

// RequestID returns the id chi assigned to the request.
func RequestID(r *http.Request) string {
	return chimw.GetReqID(r.Context())
}

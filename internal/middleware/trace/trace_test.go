package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"glowbook/internal/log"
)

type fakeRecorder struct {
	mu       sync.Mutex
	statuses []int
	calls    int
}

func (f *fakeRecorder) RecordHTTPStatus(code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, code)
}

func (f *fakeRecorder) RecordHTTPLatency(time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
}

func TestMiddlewareLogsAndRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{
		Handler:   slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		Component: log.ComponentHTTP,
	})
	rec := &fakeRecorder{}
	m := NewMiddleware(logger, func(*http.Request) string { return "203.0.113.5" }, rec)

	var seenID string
	h := chimw.RequestID(m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = RequestID(r)
		w.WriteHeader(http.StatusForbidden)
	})))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/reports?year=2026&month=3", nil))

	if seenID == "" {
		t.Error("expected a request id inside the handler")
	}
	if len(rec.statuses) != 1 || rec.statuses[0] != http.StatusForbidden {
		t.Errorf("statuses = %v, want [403]", rec.statuses)
	}
	if rec.calls != 1 {
		t.Errorf("latency calls = %d, want 1", rec.calls)
	}

	out := buf.String()
	for _, want := range []string{"HTTP request completed", "status_code=403", "client_ip=203.0.113.5", "path=/api/reports", "level=WARN"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestMiddlewareDefaultsToOK(t *testing.T) {
	rec := &fakeRecorder{}
	m := NewMiddleware(log.Discard(), nil, rec)
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if len(rec.statuses) != 1 || rec.statuses[0] != http.StatusOK {
		t.Errorf("statuses = %v, want [200]", rec.statuses)
	}
}

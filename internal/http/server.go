// Package http serves the local JSON API the dashboard UI drives.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"glowbook/internal/cache"
	"glowbook/internal/core"
	"glowbook/internal/insights"
	"glowbook/internal/ledger"
	"glowbook/internal/log"
	"glowbook/internal/middleware/ratelimit"
	"glowbook/internal/middleware/security"
	"glowbook/internal/middleware/trace"
	"glowbook/internal/settings"
	"glowbook/internal/stats"
	"glowbook/internal/vault"
)

// InsightProvider returns insight text for a set of appointments; it never fails.
type InsightProvider interface {
	Insights(ctx context.Context, apps []core.Appointment) insights.Result
}

// Deps are the collaborators behind the API.
type Deps struct {
	Ledger   *ledger.Store
	Settings *settings.Store
	Gate     *vault.Gate
	// Session is the single owner session; a fresh locked one is used when nil.
	Session  *vault.Session
	Insights InsightProvider

	// Recorder receives status and latency per request; may be nil.
	Recorder trace.Recorder
	// MetricsHandler is mounted on /metrics when set.
	MetricsHandler http.Handler

	RateLimit ratelimit.Config
	Logger    *log.Logger
	Now       func() time.Time
}

type Server struct {
	http.Server

	ledger   *ledger.Store
	stats    *stats.Engine
	settings *settings.Store
	gate     *vault.Gate
	session  *vault.Session
	insights InsightProvider

	limiter  *ratelimit.Limiter
	detector *security.Detector
	caches   *cache.Manager
	logger   *log.Logger
	slog     *log.StructuredLogger
	now      func() time.Time

	// Month requested by the reports action waiting for the passcode.
	periodMu      sync.Mutex
	pendingPeriod reportPeriod

	shutdownOnce sync.Once
}

const (
	maxBodyBytes   = 1 << 20
	maxImportBytes = 10 << 20

	cacheSweepInterval = 10 * time.Minute
)

// NewServer wires the router and returns a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.Component(log.ComponentHTTP)
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	session := deps.Session
	if session == nil {
		session = vault.NewSession()
	}

	s := &Server{
		ledger:   deps.Ledger,
		stats:    stats.NewEngine(deps.Ledger),
		settings: deps.Settings,
		gate:     deps.Gate,
		session:  session,
		insights: deps.Insights,
		limiter:  ratelimit.NewLimiter(deps.RateLimit),
		detector: security.NewDetector(logger.WithComponent(log.ComponentHTTP)),
		caches:   cache.NewManager(logger.WithComponent(log.ComponentStats)),
		logger:   logger,
		slog:     log.NewStructuredLogger(logger),
		now:      now,
	}
	s.caches.Register(s.stats.Caches()...)
	s.caches.StartCleanup(cacheSweepInterval)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.detector.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(trace.NewMiddleware(s.logger, s.detector.ExtractClientIP, deps.Recorder).Middleware)
	r.Use(log.Middleware(s.logger))
	r.Use(log.RequestIDMiddleware(trace.RequestID))

	r.Get("/healthz", handleHealth)
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusTooManyRequests, errRateLimited)
		}))

		r.Get("/dashboard", s.handleDashboard)
		r.Get("/calendar", s.handleCalendar)

		r.Route("/appointments", func(r chi.Router) {
			r.Get("/", s.handleListAppointments)
			r.Post("/", s.handleBook)
			r.Post("/{id}/status", s.handleUpdateStatus)
			r.Post("/{id}/complete", s.handleComplete)
		})

		r.Get("/clients", s.handleRoster)
		r.Get("/clients/{name}", s.handleClientHistory)

		r.Route("/vault", func(r chi.Router) {
			r.Get("/", s.handleVaultState)
			r.Post("/request", s.handleVaultRequest)
			r.Post("/passcode", s.handleVaultPasscode)
			r.Post("/lock", s.handleVaultLock)
		})

		r.Get("/reports", s.handleReports)
		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)

		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handlePutSettings)

		r.Post("/insights", s.handleInsights)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, errRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
	})

	return r
}

// Shutdown stops the background cleanups and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// Session exposes the owner session, e.g. for tests.
func (s *Server) Session() *vault.Session {
	return s.session
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

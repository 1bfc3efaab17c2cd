package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"agendalink/internal/backend"
	"agendalink/internal/config"
	"agendalink/internal/journal"
	"agendalink/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Server is the HTTP face of the gateway: the public widget endpoints with
// their per-session controllers, and the admin console passthrough.
type Server struct {
	cfg      *config.Config
	logger   *zerolog.Logger
	registry *Registry
	admin    *backend.AdminClient
	journal  *journal.Journal
	server   *http.Server
	limiters sync.Map // map[string]*rate.Limiter
}

func NewServer(cfg *config.Config, logger *zerolog.Logger, registry *Registry, admin *backend.AdminClient, jr *journal.Journal) *Server {
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		admin:    admin,
		journal:  jr,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/public/{token}/sessions", s.handleStartSession)
	mux.HandleFunc("GET /api/public/{token}/sessions/{id}", s.handleSnapshot)
	mux.HandleFunc("POST /api/public/{token}/sessions/{id}/availability", s.handleAvailability)
	mux.HandleFunc("POST /api/public/{token}/sessions/{id}/select", s.handleSelectSlot)
	mux.HandleFunc("POST /api/public/{token}/sessions/{id}/customer", s.handleCustomer)
	mux.HandleFunc("POST /api/public/{token}/sessions/{id}/submit", s.handleSubmit)
	mux.HandleFunc("POST /api/public/{token}/sessions/{id}/pix", s.handleStartPix)
	mux.HandleFunc("POST /api/public/{token}/sessions/{id}/refresh", s.handleRefresh)
	mux.HandleFunc("POST /api/public/{token}/sessions/{id}/copy", s.handleCopyPix)
	if cfg.Flow.DevPaymentApproval {
		mux.HandleFunc("POST /api/public/{token}/sessions/{id}/approve-dev", s.handleApproveDev)
	}

	mux.HandleFunc("POST /api/admin/login", s.handleLogin)
	mux.HandleFunc("POST /api/admin/register", s.handleRegister)
	mux.HandleFunc("GET /api/admin/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/admin/bookings", s.handleListBookings)
	mux.HandleFunc("GET /api/admin/bookings/export", s.handleExportBookings)
	mux.HandleFunc("GET /api/admin/services", s.handleListServices)
	mux.HandleFunc("POST /api/admin/services", s.handleCreateService)
	mux.HandleFunc("PUT /api/admin/services/{id}", s.handleUpdateService)
	mux.HandleFunc("DELETE /api/admin/services/{id}", s.handleDeleteService)
	mux.HandleFunc("GET /api/admin/business-hours", s.handleBusinessHours)
	mux.HandleFunc("PUT /api/admin/business-hours", s.handleUpdateBusinessHours)
	mux.HandleFunc("GET /api/admin/blocks", s.handleListBlocks)
	mux.HandleFunc("POST /api/admin/blocks", s.handleCreateBlock)
	mux.HandleFunc("DELETE /api/admin/blocks/{id}", s.handleDeleteBlock)
	mux.HandleFunc("GET /api/admin/links", s.handleListLinks)
	mux.HandleFunc("GET /api/admin/theme", s.handleTheme)
	mux.HandleFunc("PUT /api/admin/theme", s.handleUpdateTheme)
	mux.HandleFunc("DELETE /api/admin/theme", s.handleResetTheme)
	mux.HandleFunc("GET /api/admin/journal/{session}", s.handleJournal)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	if cfg.Monitoring.PrometheusEnabled {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	handler := s.loggingMiddleware(s.rateLimitMiddleware(mux))

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		metrics.IncHTTP(r.URL.Path)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

// rateLimitMiddleware throttles public endpoints per client IP. Admin
// traffic is authenticated upstream and left alone.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(r.URL.Path) >= 11 && r.URL.Path[:11] == "/api/public" {
			if !s.limiterFor(clientIP(r)).Allow() {
				writeError(w, http.StatusTooManyRequests, "muitas requisições, aguarde um momento")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) limiterFor(key string) *rate.Limiter {
	if v, ok := s.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	rps := s.cfg.HTTP.RateLimit.RPS
	burst := s.cfg.HTTP.RateLimit.Burst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(rps), burst)
	actual, loaded := s.limiters.LoadOrStore(key, lim)
	if loaded {
		return actual.(*rate.Limiter)
	}
	return lim
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// first hop is the client; the rest are proxies
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.registry.Len(),
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeBackendError maps an upstream API failure to the closest status.
func writeBackendError(w http.ResponseWriter, err error, fallback string) {
	status := http.StatusBadGateway
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode > 0 {
		status = apiErr.StatusCode
	}
	writeError(w, status, backend.Message(err, fallback))
}

func decodeBody(r *http.Request, out any) error {
	decoder := json.NewDecoder(r.Body)
	return decoder.Decode(out)
}

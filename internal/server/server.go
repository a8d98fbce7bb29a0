// Package server provides the HTTP REST API for the match lifecycle.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/jonathan/recruit-desk/internal/config"
	"github.com/jonathan/recruit-desk/internal/drafting"
	"github.com/jonathan/recruit-desk/internal/matching"
	"github.com/jonathan/recruit-desk/internal/server/middleware"
	"github.com/jonathan/recruit-desk/internal/server/ratelimit"
	"github.com/jonathan/recruit-desk/internal/types"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Drafter writes proposal text with a language model.
type Drafter interface {
	ProposalNote(ctx context.Context, m *types.Match, c drafting.Context) (*drafting.ProposalNote, error)
	StatusSummary(ctx context.Context, m *types.Match, c drafting.Context) (string, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	engine      *matching.Engine
	database    Pinger
	drafter     Drafter
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	now         func() time.Time
}

// Config holds server configuration
type Config struct {
	Port      int
	JWT       *config.JWTConfig
	RateLimit *ratelimit.Config
}

// Deps are the collaborators the handlers call. Database and Drafter may be nil.
type Deps struct {
	Engine   *matching.Engine
	Database Pinger
	Drafter  Drafter
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Engine == nil {
		return nil, fmt.Errorf("match engine is required")
	}
	if cfg.JWT == nil {
		return nil, fmt.Errorf("JWT config is required")
	}

	s := &Server{
		engine:      deps.Engine,
		database:    deps.Database,
		drafter:     deps.Drafter,
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
		jwtService:  NewJWTService(cfg.JWT),
		now:         time.Now,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // model calls and exports
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	authed := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, authed(h))
	}

	handle("POST /matches", s.handleCreateMatch)
	handle("GET /matches", s.handleListMatches)
	handle("GET /matches/export.xlsx", s.handleExportMatches)
	handle("GET /matches/{id}", s.handleGetMatch)
	handle("DELETE /matches/{id}", s.handleDeleteMatch)
	handle("POST /matches/{id}/status", s.handleUpdateStatus)
	handle("PUT /matches/{id}/employment", s.handleUpdateEmployment)
	handle("DELETE /matches/{id}/timeline/{entry_id}", s.handleDeleteTimelineEntry)

	handle("POST /matches/bulk/withdraw", s.handleBulkWithdraw)
	handle("POST /matches/bulk/status", s.handleBulkStatus)

	handle("GET /matches/{id}/calendar-link", s.handleCalendarLink)
	handle("POST /matches/{id}/draft-note", s.handleDraftNote)
	handle("POST /matches/{id}/status-summary", s.handleStatusSummary)

	return s.withRateLimit(s.withLogging(s.withCORS(mux)))
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[SERVER] Listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Println("[SERVER] Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.rateLimiter.Stop()
	log.Println("[SERVER] Stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects clients over their per-route budget with 429.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder remembers the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[%s] %s %d in %v", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// handleHealth reports liveness and, when configured, database reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.database != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.database.Ping(ctx); err != nil {
			log.Printf("[SERVER] Health check failed: %v", err)
			s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": "unreachable"})
			return
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to a status code. Internal failures are logged and
// reported without detail.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError && status != http.StatusNotImplemented {
		log.Printf("[SERVER] Request failed: %v", err)
		if status == http.StatusInternalServerError {
			s.errorResponse(w, status, "internal error")
			return
		}
	}
	body := map[string]string{"error": err.Error()}
	if kind := matching.KindOf(err); kind != matching.KindDependency {
		body["kind"] = string(kind)
	}
	s.jsonResponse(w, status, body)
}

// extractClientID returns the caller's IP address from RemoteAddr.
// Forwarded headers are ignored since they are trivially spoofed.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if secs := int(info.RetryAfter.Round(time.Second).Seconds()); secs > 0 {
		response["retry_after"] = secs
		w.Header().Set("Retry-After", fmt.Sprintf("%d", secs))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d", info.Limit, info.Remaining)
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

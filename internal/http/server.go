// Package http serves the JSON API: movement ledger, balances, commission
// rules, contribution entries, fund totals, reconciliation and export jobs.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"primanota/internal/store"
)

// ExportPublisher enqueues export jobs for the worker. Nil when the API runs
// without a broker; /api/exports then answers 503.
type ExportPublisher interface {
	PublishExportRequest(ctx context.Context, tenant string, year, month int) error
}

type Server struct {
	http.Server
	provider     store.Provider
	publisher    ExportPublisher
	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer configures routes and timeouts, returning a ready-to-run server.
func NewServer(addr string, provider store.Provider, publisher ExportPublisher) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		provider:    provider,
		publisher:   publisher,
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	api := func(h http.HandlerFunc) http.HandlerFunc {
		return s.withSecurityHeaders(h)
	}

	mux.HandleFunc("GET /api/movements", api(s.handleListMovements))
	mux.HandleFunc("POST /api/movements", api(s.handleCreateMovement))
	mux.HandleFunc("PUT /api/movements/{id}", api(s.handleUpdateMovement))
	mux.HandleFunc("DELETE /api/movements/{id}", api(s.handleDeleteMovement))
	mux.HandleFunc("POST /api/movements/{id}/storno", api(s.handleCreateStorno))
	mux.HandleFunc("GET /api/balance", api(s.handleBalance))

	mux.HandleFunc("GET /api/commission-rules", api(s.handleGetRules))
	mux.HandleFunc("PUT /api/commission-rules", api(s.handlePutRules))
	mux.HandleFunc("GET /api/opening-balance", api(s.handleGetOpeningBalance))
	mux.HandleFunc("PUT /api/opening-balance", api(s.handlePutOpeningBalance))

	mux.HandleFunc("GET /api/contributions", api(s.handleListContributions))
	mux.HandleFunc("POST /api/contributions", api(s.handleCreateContribution))
	mux.HandleFunc("PUT /api/contributions/replace", api(s.handleReplaceContributions))
	mux.HandleFunc("PUT /api/contributions/{id}", api(s.handleUpdateContribution))
	mux.HandleFunc("DELETE /api/contributions/{id}", api(s.handleDeleteContribution))

	mux.HandleFunc("GET /api/fund-totals", api(s.handleListFundTotals))
	mux.HandleFunc("POST /api/fund-totals", api(s.handleCreateFundTotal))
	mux.HandleFunc("PUT /api/fund-totals/{id}", api(s.handleUpdateFundTotal))
	mux.HandleFunc("DELETE /api/fund-totals/{id}", api(s.handleDeleteFundTotal))

	mux.HandleFunc("GET /api/reconciliation", api(s.handleReconciliation))
	mux.HandleFunc("GET /api/site-breakdown", api(s.handleSiteBreakdown))
	mux.HandleFunc("POST /api/exports", api(s.handleEnqueueExport))

	return s
}

// Shutdown stops the rate limiter cleanup goroutine and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting on writes, a
// request id and request logging.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

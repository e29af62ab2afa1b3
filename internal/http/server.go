// Package http exposes the ledger over a JSON API.
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

	"khata/internal/core"
	"khata/internal/ledger"
)

// Ledger is the command and query surface the handlers need. The concrete
// implementation is services.LedgerService.
type Ledger interface {
	CreateAccount(ctx context.Context, name string, typ core.AccountType, opening core.Money) (core.Account, error)
	Accounts(ctx context.Context) []core.Account
	AddTransaction(ctx context.Context, in ledger.TransactionInput) (core.Transaction, error)
	EditTransaction(ctx context.Context, id string, patch ledger.TransactionPatch) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	Transfer(ctx context.Context, sourceID, destID string, amount core.Money, description string, date time.Time) (core.Transaction, error)
	FilterTransactions(ctx context.Context, f core.Filter) []core.Transaction
	Summarize(ctx context.Context, p core.Period) core.Summary
	CategoryTotals(ctx context.Context) []core.CategoryTotal
	CategoryShares(ctx context.Context) []core.CategoryShare
}

type Server struct {
	http.Server
	ledger      Ledger
	rateLimiter *rateLimiter

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, lg Ledger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:           addr,
			Handler:        mux,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   15 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: 1 << 16,
		},
		ledger:      lg,
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /accounts/create", s.with(s.handleCreateAccount))
	mux.HandleFunc("GET /accounts", s.with(s.handleListAccounts))
	mux.HandleFunc("POST /accounts/transfer", s.with(s.handleTransfer))

	mux.HandleFunc("POST /transactions/add", s.with(s.handleAddTransaction))
	mux.HandleFunc("GET /transactions", s.with(s.handleListTransactions))
	mux.HandleFunc("PUT /transactions/edit/{id}", s.with(s.handleEditTransaction))
	mux.HandleFunc("DELETE /transactions/{id}", s.with(s.handleDeleteTransaction))
	mux.HandleFunc("GET /transactions/summary", s.with(s.handleSummary))
	mux.HandleFunc("GET /transactions/summary/categories", s.with(s.handleCategorySummary))

	return s
}

// Shutdown stops the rate limiter's cleanup goroutine along with the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		err = s.Server.Shutdown(ctx)
	})
	return err
}

type contextKey string

const requestIDKey contextKey = "request_id"

// with adds request logging and rate limiting on mutating methods.
func (s *Server) with(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")

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

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

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

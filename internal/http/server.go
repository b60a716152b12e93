package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"forest/internal/core"
	"forest/internal/log"
	"forest/internal/services"
	"forest/internal/storage"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "session"

type contextKey string

const userContextKey contextKey = "current_user"

// Options carries the server's runtime knobs.
type Options struct {
	Addr           string
	MaxUploadBytes int64
	SecureCookie   bool
}

// Server wires the HTTP surface to the service layer.
type Server struct {
	http.Server

	auth     *services.AuthService
	expenses *services.ExpenseService
	budgets  *services.BudgetService
	storage  *storage.SQLiteRepository

	opts        Options
	logger      *log.Logger
	structured  *log.StructuredLogger
	rateLimiter *rateLimiter
	metrics     *securityMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options, repo *storage.SQLiteRepository, authSvc *services.AuthService, expSvc *services.ExpenseService, budSvc *services.BudgetService, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		auth:        authSvc,
		expenses:    expSvc,
		budgets:     budSvc,
		storage:     repo,
		opts:        opts,
		logger:      logger.WithComponent(log.ComponentHTTP),
		rateLimiter: newRateLimiter(),
		metrics:     &securityMetrics{},
	}
	s.structured = log.NewStructuredLogger(s.logger)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /register", s.withMiddleware(s.handleRegister))
	mux.HandleFunc("GET /register", s.withMiddleware(s.handleAuthStatus))
	mux.HandleFunc("POST /login", s.withMiddleware(s.handleLogin))
	mux.HandleFunc("GET /login", s.withMiddleware(s.handleAuthStatus))
	mux.HandleFunc("GET /logout", s.withMiddleware(s.handleLogout))

	api := func(h http.HandlerFunc) http.HandlerFunc {
		return s.withMiddleware(s.requireSession(h))
	}

	mux.HandleFunc("GET /api/expenses", api(s.handleListExpenses))
	mux.HandleFunc("POST /api/expenses", api(s.handleCreateExpense))
	mux.HandleFunc("GET /api/expenses/{id}", api(s.handleGetExpense))
	mux.HandleFunc("PUT /api/expenses/{id}", api(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", api(s.handleDeleteExpense))

	mux.HandleFunc("GET /api/categories", api(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", api(s.handleCreateCategory))
	mux.HandleFunc("PUT /api/categories/{id}", api(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", api(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/budgets", api(s.handleListBudgets))
	mux.HandleFunc("POST /api/budgets", api(s.handleCreateBudget))
	mux.HandleFunc("GET /api/budgets/kpi", api(s.handleAllBudgetKPIs))
	mux.HandleFunc("GET /api/budgets/{id}", api(s.handleGetBudget))
	mux.HandleFunc("PUT /api/budgets/{id}", api(s.handleUpdateBudget))
	mux.HandleFunc("DELETE /api/budgets/{id}", api(s.handleDeleteBudget))
	mux.HandleFunc("GET /api/budgets/{id}/kpi", api(s.handleBudgetKPI))

	mux.HandleFunc("DELETE /api/receipts/{id}", api(s.handleDeleteReceipt))
	mux.HandleFunc("GET /uploads/{filename}", api(s.handleDownloadReceipt))

	mux.HandleFunc("GET /api/reports/monthly", api(s.handleMonthlyReport))
	mux.HandleFunc("GET /api/reports/category", api(s.handleCategoryReport))
	mux.HandleFunc("GET /api/reports/summary", api(s.handleSummaryReport))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}

		rateLimitHits, suspicious := s.metrics.snapshot()
		s.logger.Info("security counters",
			log.FieldOperation, log.OpShutdown,
			"rate_limit_hits", rateLimitHits,
			"suspicious_requests", suspicious)

		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withMiddleware adds security headers, rate limiting, request IDs and
// request logging to a handler.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ip := extractClientIP(r)
		requestID := generateRequestID()

		reqLogger := s.logger.With(log.FieldRequestID, requestID)
		ctx := context.WithValue(r.Context(), log.LoggerContextKey, reqLogger)
		r = r.WithContext(ctx)

		if detectSuspiciousRequest(r, s.metrics) {
			reqLogger.WarnContext(ctx, "suspicious request",
				log.FieldClientIP, ip,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
		}

		if isMutating(r.Method) && !s.rateLimiter.allow(ip, s.metrics) {
			reqLogger.WarnContext(ctx, "rate limit exceeded",
				log.FieldClientIP, ip,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			NewJSONResponse().Status(http.StatusTooManyRequests).Error("rate limit exceeded").Write(w)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.structured.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), ip)
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// requireSession resolves the session cookie into a user and rejects the
// request with 401 when there is no valid session. The cookie expiry
// slides forward together with the stored session.
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			UnauthorizedError("authentication required").Write(w)
			return
		}

		user, err := s.auth.ResolveSession(r.Context(), cookie.Value)
		if err != nil {
			s.clearSessionCookie(w)
			UnauthorizedError("authentication required").Write(w)
			return
		}

		s.setSessionCookie(w, cookie.Value)

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

// currentUser returns the authenticated user placed by requireSession.
func currentUser(r *http.Request) *core.User {
	user, _ := r.Context().Value(userContextKey).(*core.User)
	return user
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.auth.SessionTTL()),
		HttpOnly: true,
		Secure:   s.opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
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

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.storage.ListCategories(r.Context()); err != nil {
		InternalServerError("storage not ready").Write(w)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

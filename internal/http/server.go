// Package http serves the ledger and its derived dashboard views as a JSON
// API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"finboard/internal/ledger"
	"finboard/internal/log"
	"finboard/internal/middleware/ratelimit"
	"finboard/internal/middleware/security"
	"finboard/internal/middleware/trace"
	"finboard/internal/services"
)

// Deps are the collaborators the server routes to.
type Deps struct {
	Ledger    *ledger.Ledger
	Dashboard *services.DashboardService
	// Ping reports backend readiness. Nil means always ready.
	Ping      func(ctx context.Context) error
	Logger    *log.Logger
	RateLimit ratelimit.Config
	Headers   security.HeadersConfig
}

type Server struct {
	http.Server
	ledger    *ledger.Ledger
	dashboard *services.DashboardService
	ping      func(ctx context.Context) error
	limiter   *ratelimit.Limiter
	tracer    *trace.Middleware
	logger    *log.Logger
	started   time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server. Call Shutdown to stop it and its background cleanup.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.Nop()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	// Only mutating requests are rate limited.
	limits := deps.RateLimit
	if len(limits.Methods) == 0 {
		limits.Methods = ratelimit.DefaultConfig().Methods
	}
	headers := deps.Headers
	if headers == (security.HeadersConfig{}) {
		headers = security.DefaultHeadersConfig()
	}

	s := &Server{
		ledger:    deps.Ledger,
		dashboard: deps.Dashboard,
		ping:      deps.Ping,
		limiter:   ratelimit.NewLimiter(limits),
		tracer:    trace.NewMiddleware(logger, extractClientIP),
		logger:    logger,
		started:   time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/budgets", s.handleListBudgets)
	mux.HandleFunc("POST /api/budgets", s.handleCreateBudget)
	mux.HandleFunc("GET /api/budgets/{id}", s.handleGetBudget)
	mux.HandleFunc("PUT /api/budgets/{id}", s.handleUpdateBudget)
	mux.HandleFunc("DELETE /api/budgets/{id}", s.handleDeleteBudget)

	mux.HandleFunc("GET /api/categories", s.handleCategories)

	mux.HandleFunc("GET /api/dashboard/summary", s.handleSummary)
	mux.HandleFunc("GET /api/dashboard/monthly", s.handleMonthly)
	mux.HandleFunc("GET /api/dashboard/categories", s.handleCategoryBreakdown)
	mux.HandleFunc("GET /api/dashboard/budgets", s.handleBudgetVsActual)
	mux.HandleFunc("GET /api/dashboard/insights", s.handleInsights)
	mux.HandleFunc("GET /api/dashboard/recent", s.handleRecent)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(extractClientIP, s.onRateLimit)(handler)
	handler = security.NewHeadersMiddleware(headers).Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, extractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	writeError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

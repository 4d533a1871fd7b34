package http

import (
	"context"
	"net/http"
	"time"

	"finboard/internal/log"
)

const readinessTimeout = 2 * time.Second

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Uptime    string `json:"uptime"`
	Revision  uint64 `json:"revision"`
}

type check struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Detail any    `json:"detail,omitempty"`
}

type readinessResponse struct {
	Status string           `json:"status"`
	Checks map[string]check `json:"checks"`
}

// handleHealth reports liveness only.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Revision:  s.ledger.Revision(),
	})
}

// handleReady checks the storage backend and answers 503 when it cannot
// serve requests.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	resp := readinessResponse{Status: "ready", Checks: map[string]check{}}
	status := http.StatusOK

	storage := check{Status: "ok"}
	if s.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		err := s.ping(ctx)
		cancel()
		if err != nil {
			storage = check{Status: "failed", Error: err.Error()}
			resp.Status = "not ready"
			status = http.StatusServiceUnavailable
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed",
				"check", "storage", log.FieldError, err)
		}
	}
	resp.Checks["storage"] = storage

	metrics := s.limiter.GetMetrics()
	resp.Checks["rate_limiter"] = check{Status: "ok", Detail: map[string]int64{
		"active_clients": metrics.ClientCount,
		"limited_total":  metrics.TotalHits,
	}}
	traffic := s.tracer.GetMetrics()
	resp.Checks["requests"] = check{Status: "ok", Detail: map[string]int64{
		"total":         traffic.TotalRequests,
		"client_errors": traffic.ClientErrors,
		"server_errors": traffic.ServerErrors,
	}}

	writeJSON(w, status, resp)
}

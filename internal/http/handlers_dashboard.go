package http

import (
	"net/http"

	"finboard/internal/api"
	"finboard/internal/core"
	"finboard/internal/log"
	"finboard/internal/services"
)

// maxRecentLimit caps the recent list regardless of the requested limit.
const maxRecentLimit = 100

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.dashboard.Summary(r.Context())
	if err != nil {
		writeInternalError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromSummary(summary))
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	series, err := s.dashboard.MonthlySeries(r.Context())
	if err != nil {
		writeInternalError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromMonthlySeries(series))
}

// handleCategoryBreakdown defaults to expense categories.
func (s *Server) handleCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	t, err := parseTypeParam(r.URL.Query(), "type", core.Expense)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	shares, err := s.dashboard.CategoryBreakdown(r.Context(), t)
	if err != nil {
		writeInternalError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromCategoryBreakdown(t, shares))
}

func (s *Server) handleBudgetVsActual(w http.ResponseWriter, r *http.Request) {
	report, err := s.dashboard.BudgetVsActual(r.Context())
	if err != nil {
		writeInternalError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromBudgetReport(report))
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := s.dashboard.Insights(r.Context())
	if err != nil {
		writeInternalError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromInsights(insights))
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimitParam(r.URL.Query(), "limit", services.DefaultRecentLimit, maxRecentLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	txs, err := s.dashboard.Recent(r.Context(), limit)
	if err != nil {
		writeInternalError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, api.TransactionList{Transactions: api.FromTransactions(txs)})
}

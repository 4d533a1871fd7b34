package http

import (
	"context"
	"errors"
	"net/http"

	"finboard/internal/analytics"
	"finboard/internal/api"
	"finboard/internal/core"
	"finboard/internal/ledger"
	"finboard/internal/log"
	"finboard/internal/validator"
	"finboard/internal/window"
)

// persistWarning is set when a mutation was applied in memory but the
// backend write failed.
const persistWarning = `199 - "change applied but not persisted"`

// mutationFailed handles a ledger mutation error. It returns true when the
// response has been written and the handler must stop.
func mutationFailed(w http.ResponseWriter, r *http.Request, operation string, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ledger.ErrPersist):
		log.FromContext(r.Context()).WarnContext(r.Context(), "Mutation kept in memory only",
			log.FieldOperation, operation, log.FieldError, err)
		w.Header().Set("Warning", persistWarning)
		return false
	case isInputError(err):
		writeInputError(w, err)
		return true
	default:
		writeInternalError(w, r, operation, err)
		return true
	}
}

func isInputError(err error) bool {
	for _, target := range []error{
		core.ErrInvalidAmount, core.ErrInvalidDate, core.ErrInvalidMonth, core.ErrInvalidType, core.ErrEmptyDescription, core.ErrEmptyCategory,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// parseBody parses the request body or writes a 400.
func parseBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, bool) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return p, true
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	preds := []analytics.Predicate{}
	if q.Get("type") != "" {
		t, err := parseTypeParam(q, "type", "")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		preds = append(preds, analytics.OfType(t))
	}
	ym, ok, err := parseMonthParam(q, "month")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if ok {
		preds = append(preds, analytics.InWindow(window.Month(ym)))
	}
	if category := sanitizeInput(q.Get("category")); category != "" {
		preds = append(preds, analytics.InCategory(category))
	}

	txs := analytics.Filter(s.ledger.Transactions(), analytics.All(preds...))
	writeJSON(w, http.StatusOK, api.TransactionList{Transactions: api.FromTransactions(txs)})
}

// findTransaction looks id up, refreshing from storage on a miss so records
// another process just wrote are found before the next watch tick.
func (s *Server) findTransaction(ctx context.Context, id string) (core.Transaction, bool) {
	if t, ok := s.ledger.Transaction(id); ok {
		return t, true
	}
	if !s.refresh(ctx) {
		return core.Transaction{}, false
	}
	return s.ledger.Transaction(id)
}

func (s *Server) findBudget(ctx context.Context, id string) (core.Budget, bool) {
	if b, ok := s.ledger.Budget(id); ok {
		return b, true
	}
	if !s.refresh(ctx) {
		return core.Budget{}, false
	}
	return s.ledger.Budget(id)
}

func (s *Server) refresh(ctx context.Context) bool {
	changed, err := s.ledger.Refresh(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to refresh ledger from storage",
			log.NewFields().WithOperation(log.OpReload).WithErrorType(log.ErrorTypeDatabase).WithError(err).ToSlice()...)
	}
	return changed
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, ok := s.findTransaction(r.Context(), r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, api.FromTransaction(t))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	form, err := validator.Transaction(p.TransactionInput())
	if err != nil {
		writeInputError(w, err)
		return
	}
	t, err := s.ledger.AddTransaction(r.Context(), form)
	if mutationFailed(w, r, log.OpCreate, err) {
		return
	}
	writeJSON(w, http.StatusCreated, api.FromTransaction(t))
}

// handleUpdateTransaction answers 404 for an unknown id. The ledger itself
// treats that update as a no-op.
func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	form, err := validator.Transaction(p.TransactionInput())
	if err != nil {
		writeInputError(w, err)
		return
	}
	if _, exists := s.findTransaction(r.Context(), id); !exists {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if mutationFailed(w, r, log.OpUpdate, s.ledger.UpdateTransaction(r.Context(), id, form)) {
		return
	}
	t, ok := s.ledger.Transaction(id)
	if !ok {
		// Deleted concurrently.
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, api.FromTransaction(t))
}

// handleDeleteTransaction is idempotent: deleting an unknown id succeeds.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if mutationFailed(w, r, log.OpDelete, s.ledger.DeleteTransaction(r.Context(), r.PathValue("id"))) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	ym, filter, err := parseMonthParam(r.URL.Query(), "month")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	budgets := s.ledger.Budgets()
	if filter {
		kept := make([]core.Budget, 0, len(budgets))
		for _, b := range budgets {
			if b.Month == ym {
				kept = append(kept, b)
			}
		}
		budgets = kept
	}
	writeJSON(w, http.StatusOK, api.BudgetList{Budgets: api.FromBudgets(budgets)})
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	b, ok := s.findBudget(r.Context(), r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "budget not found")
		return
	}
	writeJSON(w, http.StatusOK, api.FromBudget(b))
}

// handleCreateBudget answers 201 for a new budget and 200 when an existing
// budget for the same category and month was overwritten.
func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	form, err := validator.Budget(p.BudgetInput())
	if err != nil {
		writeInputError(w, err)
		return
	}
	status := http.StatusCreated
	if ym, err := core.ParseYearMonth(form.Month); err == nil {
		if _, exists := s.ledger.BudgetFor(form.Category, ym); exists {
			status = http.StatusOK
		}
	}
	b, err := s.ledger.AddBudget(r.Context(), form)
	if mutationFailed(w, r, log.OpCreate, err) {
		return
	}
	writeJSON(w, status, api.FromBudget(b))
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	form, err := validator.Budget(p.BudgetInput())
	if err != nil {
		writeInputError(w, err)
		return
	}
	if _, exists := s.findBudget(r.Context(), id); !exists {
		writeError(w, http.StatusNotFound, "budget not found")
		return
	}
	if mutationFailed(w, r, log.OpUpdate, s.ledger.UpdateBudget(r.Context(), id, form)) {
		return
	}
	b, ok := s.ledger.Budget(id)
	if !ok {
		writeError(w, http.StatusNotFound, "budget not found")
		return
	}
	writeJSON(w, http.StatusOK, api.FromBudget(b))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if mutationFailed(w, r, log.OpDelete, s.ledger.DeleteBudget(r.Context(), r.PathValue("id"))) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.Categories{
		Expense: core.SuggestedCategories(core.Expense),
		Income:  core.SuggestedCategories(core.Income),
	})
}

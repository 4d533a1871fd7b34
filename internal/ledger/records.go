package ledger

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/core"
)

// Persisted shapes. Amounts are JSON numbers and dates ISO strings so that
// collections written by older clients load unchanged.
type (
	transactionRecord struct {
		ID          string      `json:"id"`
		Amount      json.Number `json:"amount"`
		Date        string      `json:"date"`
		Description string      `json:"description"`
		Type        string      `json:"type"`
		Category    string      `json:"category,omitempty"`
		CreatedAt   string      `json:"createdAt,omitempty"`
		UpdatedAt   string      `json:"updatedAt,omitempty"`
	}

	budgetRecord struct {
		ID        string      `json:"id"`
		Category  string      `json:"category"`
		Amount    json.Number `json:"amount"`
		Month     string      `json:"month"`
		CreatedAt string      `json:"createdAt,omitempty"`
		UpdatedAt string      `json:"updatedAt,omitempty"`
	}
)

func toTransactionRecord(t core.Transaction) transactionRecord {
	return transactionRecord{
		ID:          t.ID,
		Amount:      json.Number(t.Amount.String()),
		Date:        t.Date.String(),
		Description: t.Description,
		Type:        string(t.Type),
		Category:    t.Category,
		CreatedAt:   formatTimestamp(t.CreatedAt),
		UpdatedAt:   formatTimestamp(t.UpdatedAt),
	}
}

// transaction converts a stored record. Records without a category get
// core.DefaultCategory.
func (r transactionRecord) transaction() (core.Transaction, error) {
	amount, err := decimal.NewFromString(r.Amount.String())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s amount %q: %w", r.ID, r.Amount, core.ErrInvalidAmount)
	}
	date, err := core.ParseDate(r.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", r.ID, err)
	}
	typ, err := core.ParseTransactionType(r.Type)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", r.ID, err)
	}
	category := r.Category
	if category == "" {
		category = core.DefaultCategory
	}
	return core.Transaction{
		ID:          r.ID,
		Amount:      amount,
		Date:        date,
		Description: r.Description,
		Type:        typ,
		Category:    category,
		CreatedAt:   parseTimestamp(r.CreatedAt),
		UpdatedAt:   parseTimestamp(r.UpdatedAt),
	}, nil
}

func toBudgetRecord(b core.Budget) budgetRecord {
	return budgetRecord{
		ID:        b.ID,
		Category:  b.Category,
		Amount:    json.Number(b.Amount.String()),
		Month:     b.Month.String(),
		CreatedAt: formatTimestamp(b.CreatedAt),
		UpdatedAt: formatTimestamp(b.UpdatedAt),
	}
}

func (r budgetRecord) budget() (core.Budget, error) {
	amount, err := decimal.NewFromString(r.Amount.String())
	if err != nil {
		return core.Budget{}, fmt.Errorf("budget %s amount %q: %w", r.ID, r.Amount, core.ErrInvalidAmount)
	}
	month, err := core.ParseYearMonth(r.Month)
	if err != nil {
		return core.Budget{}, fmt.Errorf("budget %s: %w", r.ID, err)
	}
	return core.Budget{
		ID:        r.ID,
		Category:  r.Category,
		Amount:    amount,
		Month:     month,
		CreatedAt: parseTimestamp(r.CreatedAt),
		UpdatedAt: parseTimestamp(r.UpdatedAt),
	}, nil
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTimestamp is lenient: timestamps are informational only.
func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}

func encodeTransactions(txs []core.Transaction) (string, error) {
	records := make([]transactionRecord, 0, len(txs))
	for _, t := range txs {
		records = append(records, toTransactionRecord(t))
	}
	b, err := json.Marshal(records)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func encodeBudgets(budgets []core.Budget) (string, error) {
	records := make([]budgetRecord, 0, len(budgets))
	for _, b := range budgets {
		records = append(records, toBudgetRecord(b))
	}
	b, err := json.Marshal(records)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

package core

import "github.com/shopspring/decimal"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Category string
	Amount   decimal.Decimal
}

// TransactionForm is the form-shaped input for creating or editing a
// transaction. Amount and Date are still strings; the ledger parses them.
type TransactionForm struct {
	Amount      string
	Date        string
	Description string
	Type        TransactionType
	Category    string
}

// BudgetForm is the form-shaped input for creating or editing a budget.
type BudgetForm struct {
	Category string
	Amount   string
	Month    string // YYYY-MM
}

// Suggested categories offered to callers. They are never enforced.
var (
	ExpenseCategories = []string{
		"Food & Dining",
		"Transportation",
		"Shopping",
		"Entertainment",
		"Bills & Utilities",
		"Healthcare",
		"Education",
		"Travel",
		"Home & Garden",
		"Personal Care",
		"Insurance",
		"Investments",
		DefaultCategory,
	}

	IncomeCategories = []string{
		"Salary",
		"Freelance",
		"Business",
		"Investments",
		"Rental",
		"Gifts",
		DefaultCategory,
	}
)

// SuggestedCategories returns a copy of the suggestion list for t.
func SuggestedCategories(t TransactionType) []string {
	src := ExpenseCategories
	if t == Income {
		src = IncomeCategories
	}
	return append([]string(nil), src...)
}

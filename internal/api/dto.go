// Package api defines the JSON shapes shared by the HTTP API and the
// command-line client.
package api

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/analytics"
	"finboard/internal/core"
)

// Amount renders d as a JSON number carrying the exact decimal text, so
// amounts are never rounded through float64.
func Amount(d decimal.Decimal) json.Number { return json.Number(d.String()) }

// Percent rounds a percentage to two places.
func Percent(d decimal.Decimal) json.Number { return json.Number(d.Round(2).String()) }

func Timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

type Transaction struct {
	ID          string      `json:"id"`
	Amount      json.Number `json:"amount"`
	Date        string      `json:"date"`
	Description string      `json:"description"`
	Type        string      `json:"type"`
	Category    string      `json:"category"`
	CreatedAt   string      `json:"createdAt,omitempty"`
	UpdatedAt   string      `json:"updatedAt,omitempty"`
}

func FromTransaction(t core.Transaction) Transaction {
	return Transaction{
		ID:          t.ID,
		Amount:      Amount(t.Amount),
		Date:        t.Date.String(),
		Description: t.Description,
		Type:        string(t.Type),
		Category:    t.Category,
		CreatedAt:   Timestamp(t.CreatedAt),
		UpdatedAt:   Timestamp(t.UpdatedAt),
	}
}

func FromTransactions(txs []core.Transaction) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		out = append(out, FromTransaction(t))
	}
	return out
}

type Budget struct {
	ID        string      `json:"id"`
	Category  string      `json:"category"`
	Amount    json.Number `json:"amount"`
	Month     string      `json:"month"`
	CreatedAt string      `json:"createdAt,omitempty"`
	UpdatedAt string      `json:"updatedAt,omitempty"`
}

func FromBudget(b core.Budget) Budget {
	return Budget{
		ID:        b.ID,
		Category:  b.Category,
		Amount:    Amount(b.Amount),
		Month:     b.Month.String(),
		CreatedAt: Timestamp(b.CreatedAt),
		UpdatedAt: Timestamp(b.UpdatedAt),
	}
}

func FromBudgets(budgets []core.Budget) []Budget {
	out := make([]Budget, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, FromBudget(b))
	}
	return out
}

type Summary struct {
	TotalIncome     json.Number `json:"totalIncome"`
	TotalExpenses   json.Number `json:"totalExpenses"`
	Balance         json.Number `json:"balance"`
	MonthlyIncome   json.Number `json:"monthlyIncome"`
	MonthlyExpenses json.Number `json:"monthlyExpenses"`
	MonthlyNet      json.Number `json:"monthlyNet"`
	Month           string      `json:"month"`
}

func FromSummary(s analytics.Summary) Summary {
	return Summary{
		TotalIncome:     Amount(s.TotalIncome),
		TotalExpenses:   Amount(s.TotalExpenses),
		Balance:         Amount(s.Balance),
		MonthlyIncome:   Amount(s.MonthlyIncome),
		MonthlyExpenses: Amount(s.MonthlyExpenses),
		MonthlyNet:      Amount(s.MonthlyNet),
		Month:           s.MonthLabel,
	}
}

type MonthTotal struct {
	Month    string      `json:"month"`
	Label    string      `json:"label"`
	Expenses json.Number `json:"expenses"`
}

type MonthlySeries struct {
	Months []MonthTotal `json:"months"`
	Total  json.Number  `json:"total"`
}

func FromMonthlySeries(s analytics.MonthlySeries) MonthlySeries {
	out := MonthlySeries{Months: make([]MonthTotal, 0, len(s.Months)), Total: Amount(s.Total)}
	for _, m := range s.Months {
		out.Months = append(out.Months, MonthTotal{Month: m.Month.String(), Label: m.Label, Expenses: Amount(m.Expenses)})
	}
	return out
}

type CategoryShare struct {
	Category   string      `json:"category"`
	Amount     json.Number `json:"amount"`
	Percentage json.Number `json:"percentage"`
}

type CategoryBreakdown struct {
	Type       string          `json:"type"`
	Categories []CategoryShare `json:"categories"`
}

func FromCategoryBreakdown(t core.TransactionType, shares []analytics.CategoryShare) CategoryBreakdown {
	out := CategoryBreakdown{Type: string(t), Categories: make([]CategoryShare, 0, len(shares))}
	for _, s := range shares {
		out.Categories = append(out.Categories, CategoryShare{
			Category:   s.Category,
			Amount:     Amount(s.Amount),
			Percentage: Percent(s.Percentage),
		})
	}
	return out
}

type BudgetRow struct {
	Category   string      `json:"category"`
	Budget     json.Number `json:"budget"`
	Actual     json.Number `json:"actual"`
	Difference json.Number `json:"difference"`
	Percentage json.Number `json:"percentage"`
}

type BudgetReport struct {
	Month string      `json:"month"`
	Label string      `json:"label"`
	Rows  []BudgetRow `json:"rows"`
}

func FromBudgetReport(r analytics.BudgetReport) BudgetReport {
	out := BudgetReport{Month: r.Month.String(), Label: r.Label, Rows: make([]BudgetRow, 0, len(r.Rows))}
	for _, row := range r.Rows {
		out.Rows = append(out.Rows, BudgetRow{
			Category:   row.Category,
			Budget:     Amount(row.Budget),
			Actual:     Amount(row.Actual),
			Difference: Amount(row.Difference),
			Percentage: Percent(row.Percentage),
		})
	}
	return out
}

type CategoryAmount struct {
	Category string      `json:"category"`
	Amount   json.Number `json:"amount"`
}

type Insights struct {
	CurrentMonthExpenses json.Number     `json:"currentMonthExpenses"`
	LastMonthExpenses    json.Number     `json:"lastMonthExpenses"`
	MonthOverMonthChange json.Number     `json:"monthOverMonthChange"`
	CurrentWeekExpenses  json.Number     `json:"currentWeekExpenses"`
	AverageDailySpending json.Number     `json:"averageDailySpending"`
	DaysElapsed          int             `json:"daysElapsed"`
	TopCategory          *CategoryAmount `json:"topCategory"`
	MostRecentExpense    *Transaction    `json:"mostRecentExpense"`
	Flags                []string        `json:"flags"`
}

func FromInsights(in analytics.Insights) Insights {
	out := Insights{
		CurrentMonthExpenses: Amount(in.CurrentMonthExpenses),
		LastMonthExpenses:    Amount(in.LastMonthExpenses),
		MonthOverMonthChange: Percent(in.MonthOverMonthChange),
		CurrentWeekExpenses:  Amount(in.CurrentWeekExpenses),
		AverageDailySpending: Amount(in.AverageDailySpending.Round(2)),
		DaysElapsed:          in.DaysElapsed,
		Flags:                make([]string, 0, len(in.Flags)),
	}
	if in.TopCategory != nil {
		out.TopCategory = &CategoryAmount{Category: in.TopCategory.Category, Amount: Amount(in.TopCategory.Amount)}
	}
	if in.MostRecentExpense != nil {
		tx := FromTransaction(*in.MostRecentExpense)
		out.MostRecentExpense = &tx
	}
	for _, f := range in.Flags {
		out.Flags = append(out.Flags, string(f))
	}
	return out
}

type Categories struct {
	Expense []string `json:"expense"`
	Income  []string `json:"income"`
}

// TransactionList wraps list responses so they can grow fields later.
type TransactionList struct {
	Transactions []Transaction `json:"transactions"`
}

type BudgetList struct {
	Budgets []Budget `json:"budgets"`
}

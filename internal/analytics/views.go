package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/core"
	"finboard/internal/window"
)

// TrendMonths is the length of the monthly expense series.
const TrendMonths = 6

// Flag is an informational marker raised by BuildInsights.
type Flag string

const (
	FlagSpendingIncreased Flag = "spending_increased"
	FlagSpendingDecreased Flag = "spending_decreased"
	FlagHighDailyRate     Flag = "high_daily_rate"
)

// Options tune the thresholds used by BuildInsights.
type Options struct {
	WeekStart time.Weekday
	// HighDailySpend raises FlagHighDailyRate when the average daily
	// spending this month exceeds it.
	HighDailySpend decimal.Decimal
	// ChangeThreshold is the month-over-month percentage beyond which
	// spending is flagged as increased or decreased.
	ChangeThreshold decimal.Decimal
}

// DefaultOptions returns the dashboard's stock thresholds.
func DefaultOptions() Options {
	return Options{
		WeekStart:       window.DefaultWeekStart,
		HighDailySpend:  decimal.NewFromInt(100),
		ChangeThreshold: decimal.NewFromInt(20),
	}
}

type (
	Summary struct {
		TotalIncome     decimal.Decimal
		TotalExpenses   decimal.Decimal
		Balance         decimal.Decimal
		MonthlyIncome   decimal.Decimal
		MonthlyExpenses decimal.Decimal
		MonthlyNet      decimal.Decimal
		MonthLabel      string
	}

	MonthTotal struct {
		Month    core.YearMonth
		Label    string
		Expenses decimal.Decimal
	}

	MonthlySeries struct {
		Months []MonthTotal
		Total  decimal.Decimal
	}

	CategoryShare struct {
		Category   string
		Amount     decimal.Decimal
		Percentage decimal.Decimal
	}

	BudgetComparison struct {
		Category   string
		Budget     decimal.Decimal
		Actual     decimal.Decimal
		Difference decimal.Decimal
		Percentage decimal.Decimal
	}

	BudgetReport struct {
		Month core.YearMonth
		Label string
		Rows  []BudgetComparison
	}

	Insights struct {
		CurrentMonthExpenses decimal.Decimal
		LastMonthExpenses    decimal.Decimal
		MonthOverMonthChange decimal.Decimal
		CurrentWeekExpenses  decimal.Decimal
		AverageDailySpending decimal.Decimal
		DaysElapsed          int
		TopCategory          *core.CategoryAmount
		MostRecentExpense    *core.Transaction
		Flags                []Flag
	}
)

// Has reports whether f was raised.
func (in Insights) Has(f Flag) bool {
	for _, x := range in.Flags {
		if x == f {
			return true
		}
	}
	return false
}

// BuildSummary computes all-time totals and current-month figures.
func BuildSummary(txs []core.Transaction, now time.Time) Summary {
	month := window.CurrentMonth(now)
	s := Summary{
		TotalIncome:     SumBy(txs, OfType(core.Income)),
		TotalExpenses:   SumBy(txs, OfType(core.Expense)),
		MonthlyIncome:   SumBy(txs, All(OfType(core.Income), InWindow(month))),
		MonthlyExpenses: SumBy(txs, All(OfType(core.Expense), InWindow(month))),
		MonthLabel:      month.Label,
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpenses)
	s.MonthlyNet = s.MonthlyIncome.Sub(s.MonthlyExpenses)
	return s
}

// BuildMonthlySeries sums expenses for each of the trailing TrendMonths
// months, oldest first. Months without expenses are reported as zero.
func BuildMonthlySeries(txs []core.Transaction, now time.Time) MonthlySeries {
	windows := window.TrailingMonths(now, TrendMonths)
	series := MonthlySeries{
		Months: make([]MonthTotal, 0, len(windows)),
		Total:  decimal.Zero,
	}
	for _, w := range windows {
		total := SumBy(txs, All(OfType(core.Expense), InWindow(w)))
		series.Months = append(series.Months, MonthTotal{
			Month:    w.Start.YearMonth(),
			Label:    w.Label,
			Expenses: total,
		})
		series.Total = series.Total.Add(total)
	}
	return series
}

// BuildCategoryBreakdown groups the current month's transactions of type t
// by category, largest first, with each category's share of the total.
func BuildCategoryBreakdown(txs []core.Transaction, t core.TransactionType, now time.Time) []CategoryShare {
	selected := Filter(txs, All(OfType(t), InWindow(window.CurrentMonth(now))))
	grouped := RankByAmountDescending(GroupSumByCategory(selected))
	total := SumBy(selected, All())

	out := make([]CategoryShare, 0, len(grouped))
	for _, g := range grouped {
		out = append(out, CategoryShare{
			Category:   g.Category,
			Amount:     g.Amount,
			Percentage: PercentOf(g.Amount, total),
		})
	}
	return out
}

// BuildBudgetVsActual compares this month's budgets against this month's
// expenses. Every budgeted category and every category with spending gets
// one row; rows are ordered by budget amount, largest first.
//
// When several budgets share a category for the month, the first one in
// budgets wins.
func BuildBudgetVsActual(txs []core.Transaction, budgets []core.Budget, now time.Time) BudgetReport {
	ym := core.YearMonthOf(now)
	month := window.Month(ym)
	actual := GroupSumByCategory(Filter(txs, All(OfType(core.Expense), InWindow(month))))

	budgetFor := make(map[string]decimal.Decimal)
	var order []string
	for _, b := range budgets {
		if b.Month != ym {
			continue
		}
		if _, seen := budgetFor[b.Category]; seen {
			continue
		}
		budgetFor[b.Category] = b.Amount
		order = append(order, b.Category)
	}

	actualFor := make(map[string]decimal.Decimal, len(actual))
	for _, a := range actual {
		actualFor[a.Category] = a.Amount
		if _, budgeted := budgetFor[a.Category]; !budgeted {
			order = append(order, a.Category)
		}
	}

	rows := make([]BudgetComparison, 0, len(order))
	for _, category := range order {
		budget, ok := budgetFor[category]
		if !ok {
			budget = decimal.Zero
		}
		spent, ok := actualFor[category]
		if !ok {
			spent = decimal.Zero
		}
		rows = append(rows, BudgetComparison{
			Category:   category,
			Budget:     budget,
			Actual:     spent,
			Difference: budget.Sub(spent),
			Percentage: PercentOf(spent, budget),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Budget.GreaterThan(rows[j].Budget)
	})

	return BudgetReport{Month: ym, Label: month.Label, Rows: rows}
}

// BuildInsights assembles the spending report for the month containing now.
func BuildInsights(txs []core.Transaction, now time.Time, opts Options) Insights {
	expense := OfType(core.Expense)
	in := Insights{
		CurrentMonthExpenses: SumBy(txs, All(expense, InWindow(window.CurrentMonth(now)))),
		LastMonthExpenses:    SumBy(txs, All(expense, InWindow(window.LastMonth(now)))),
		CurrentWeekExpenses:  SumBy(txs, All(expense, InWindow(window.CurrentWeek(now, opts.WeekStart)))),
		DaysElapsed:          core.DateOf(now).Day(),
		Flags:                []Flag{},
	}
	if in.DaysElapsed < 1 {
		in.DaysElapsed = 1
	}
	in.MonthOverMonthChange = PercentOf(in.CurrentMonthExpenses.Sub(in.LastMonthExpenses), in.LastMonthExpenses)
	in.AverageDailySpending = in.CurrentMonthExpenses.Div(decimal.NewFromInt(int64(in.DaysElapsed)))

	if breakdown := BuildCategoryBreakdown(txs, core.Expense, now); len(breakdown) > 0 {
		in.TopCategory = &core.CategoryAmount{Category: breakdown[0].Category, Amount: breakdown[0].Amount}
	}
	in.MostRecentExpense = mostRecent(Filter(txs, expense))

	if in.MonthOverMonthChange.GreaterThan(opts.ChangeThreshold) {
		in.Flags = append(in.Flags, FlagSpendingIncreased)
	}
	if in.MonthOverMonthChange.LessThan(opts.ChangeThreshold.Neg()) {
		in.Flags = append(in.Flags, FlagSpendingDecreased)
	}
	if in.AverageDailySpending.GreaterThan(opts.HighDailySpend) {
		in.Flags = append(in.Flags, FlagHighDailyRate)
	}
	return in
}

// RecentTransactions returns up to limit transactions, newest date first.
// Transactions on the same date keep their collection order. A limit below
// one returns every transaction.
func RecentTransactions(txs []core.Transaction, limit int) []core.Transaction {
	out := append([]core.Transaction(nil), txs...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []core.Transaction{}
	}
	return out
}

func mostRecent(txs []core.Transaction) *core.Transaction {
	var best *core.Transaction
	for i := range txs {
		if best == nil || txs[i].Date.After(best.Date.Time) {
			best = &txs[i]
		}
	}
	if best == nil {
		return nil
	}
	found := *best
	return &found
}

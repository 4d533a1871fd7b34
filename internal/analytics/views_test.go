package analytics

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"finboard/internal/core"
	"finboard/internal/window"
)

// Thursday 2025-03-13: 13 days into the month.
var now = time.Date(2025, 3, 13, 18, 0, 0, 0, time.UTC)

func TestBuildSummary(t *testing.T) {
	t.Run("empty input is all zeros", func(t *testing.T) {
		s := BuildSummary(nil, now)
		for name, v := range map[string]decimal.Decimal{
			"income": s.TotalIncome, "expenses": s.TotalExpenses, "balance": s.Balance,
			"monthly income": s.MonthlyIncome, "monthly expenses": s.MonthlyExpenses, "monthly net": s.MonthlyNet,
		} {
			if !v.IsZero() {
				t.Errorf("%s = %s, want 0", name, v)
			}
		}
	})

	t.Run("totals and current month", func(t *testing.T) {
		txs := []core.Transaction{
			tx("a", core.Income, "2000", "2025-03-01", "Salary"),
			tx("b", core.Expense, "50.5", "2025-03-04", "Food"),
			tx("c", core.Income, "2000", "2025-02-01", "Salary"),
			tx("d", core.Expense, "700", "2025-02-11", "Bills & Utilities"),
		}
		s := BuildSummary(txs, now)
		want := Summary{
			TotalIncome:     dec("4000"),
			TotalExpenses:   dec("750.5"),
			Balance:         dec("3249.5"),
			MonthlyIncome:   dec("2000"),
			MonthlyExpenses: dec("50.5"),
			MonthlyNet:      dec("1949.5"),
			MonthLabel:      "Mar 2025",
		}
		if diff := cmp.Diff(want, s, decimalEqual); diff != "" {
			t.Fatalf("summary mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("balance is income minus expenses", func(t *testing.T) {
		sets := [][]core.Transaction{
			nil,
			{tx("x", core.Expense, "0.01", "2020-01-01", "Other")},
			{tx("x", core.Income, "1.1", "2024-01-01", "Other"), tx("y", core.Expense, "2.2", "2026-01-01", "Other")},
		}
		for i, txs := range sets {
			s := BuildSummary(txs, now)
			if !s.Balance.Equal(s.TotalIncome.Sub(s.TotalExpenses)) {
				t.Errorf("set %d: balance %s != %s - %s", i, s.Balance, s.TotalIncome, s.TotalExpenses)
			}
		}
	})
}

func TestBuildMonthlySeries(t *testing.T) {
	txs := []core.Transaction{
		tx("a", core.Expense, "10", "2024-10-01", "Food"),  // oldest month, first day
		tx("b", core.Expense, "5", "2024-09-30", "Food"),   // outside the span
		tx("c", core.Expense, "20", "2025-01-31", "Food"),  // last day of January
		tx("d", core.Income, "999", "2025-01-15", "Gifts"), // income ignored
		tx("e", core.Expense, "2.5", "2025-03-13", "Food"),
		tx("f", core.Expense, "100", "2025-04-01", "Food"), // future month
	}
	series := BuildMonthlySeries(txs, now)
	if len(series.Months) != TrendMonths {
		t.Fatalf("expected %d months, got %d", TrendMonths, len(series.Months))
	}

	type row struct {
		Label    string
		Expenses decimal.Decimal
	}
	var got []row
	for _, m := range series.Months {
		got = append(got, row{m.Label, m.Expenses})
	}
	want := []row{
		{"Oct 2024", dec("10")},
		{"Nov 2024", dec("0")},
		{"Dec 2024", dec("0")},
		{"Jan 2025", dec("20")},
		{"Feb 2025", dec("0")},
		{"Mar 2025", dec("2.5")},
	}
	if diff := cmp.Diff(want, got, decimalEqual); diff != "" {
		t.Fatalf("series mismatch (-want +got):\n%s", diff)
	}

	span, _ := window.Span(window.TrailingMonths(now, TrendMonths))
	if expected := SumBy(txs, All(OfType(core.Expense), InWindow(span))); !series.Total.Equal(expected) {
		t.Fatalf("series total %s != span sum %s", series.Total, expected)
	}
}

func TestBuildMonthlySeriesEmpty(t *testing.T) {
	series := BuildMonthlySeries(nil, now)
	if len(series.Months) != TrendMonths {
		t.Fatalf("expected %d entries, got %d", TrendMonths, len(series.Months))
	}
	for _, m := range series.Months {
		if !m.Expenses.IsZero() {
			t.Fatalf("%s: expected 0, got %s", m.Label, m.Expenses)
		}
	}
}

func TestBuildCategoryBreakdown(t *testing.T) {
	txs := []core.Transaction{
		tx("a", core.Expense, "10", "2025-03-01", "Shopping"),
		tx("b", core.Expense, "30", "2025-03-02", "Food & Dining"),
		tx("c", core.Expense, "10", "2025-03-03", "Travel"),
		tx("d", core.Expense, "50", "2025-02-03", "Travel"), // last month
		tx("e", core.Income, "500", "2025-03-03", "Salary"),
	}
	got := BuildCategoryBreakdown(txs, core.Expense, now)
	want := []CategoryShare{
		{Category: "Food & Dining", Amount: dec("30"), Percentage: dec("60")},
		{Category: "Shopping", Amount: dec("10"), Percentage: dec("20")},
		{Category: "Travel", Amount: dec("10"), Percentage: dec("20")},
	}
	if diff := cmp.Diff(want, got, decimalEqual); diff != "" {
		t.Fatalf("breakdown mismatch (-want +got):\n%s", diff)
	}

	income := BuildCategoryBreakdown(txs, core.Income, now)
	if len(income) != 1 || !income[0].Percentage.Equal(dec("100")) {
		t.Fatalf("unexpected income breakdown: %+v", income)
	}

	if empty := BuildCategoryBreakdown(nil, core.Expense, now); len(empty) != 0 {
		t.Fatalf("expected empty breakdown, got %+v", empty)
	}
}

func TestBuildCategoryBreakdownPercentagesSumTo100(t *testing.T) {
	txs := []core.Transaction{
		tx("a", core.Expense, "1", "2025-03-01", "A"),
		tx("b", core.Expense, "1", "2025-03-01", "B"),
		tx("c", core.Expense, "1", "2025-03-01", "C"),
	}
	total := decimal.Zero
	for _, s := range BuildCategoryBreakdown(txs, core.Expense, now) {
		total = total.Add(s.Percentage)
	}
	if total.Sub(dec("100")).Abs().GreaterThan(dec("0.000001")) {
		t.Fatalf("percentages sum to %s", total)
	}
}

func TestBuildBudgetVsActual(t *testing.T) {
	march := core.YearMonth{Year: 2025, Month: time.March}
	t.Run("scenario food budget", func(t *testing.T) {
		txs := []core.Transaction{
			tx("a", core.Expense, "30", "2025-03-02", "Food"),
			tx("b", core.Expense, "20", "2025-03-09", "Food"),
		}
		budgets := []core.Budget{{ID: "b1", Category: "Food", Amount: dec("100"), Month: march}}
		report := BuildBudgetVsActual(txs, budgets, now)
		want := []BudgetComparison{{Category: "Food", Budget: dec("100"), Actual: dec("50"), Difference: dec("50"), Percentage: dec("50")}}
		if diff := cmp.Diff(want, report.Rows, decimalEqual); diff != "" {
			t.Fatalf("rows mismatch (-want +got):\n%s", diff)
		}
		if report.Label != "Mar 2025" || report.Month != march {
			t.Fatalf("unexpected month %v %q", report.Month, report.Label)
		}
	})

	t.Run("union of budgets and spending", func(t *testing.T) {
		txs := []core.Transaction{
			tx("a", core.Expense, "40", "2025-03-02", "Shopping"),   // no budget
			tx("b", core.Expense, "80", "2025-03-03", "Travel"),     // over budget
			tx("c", core.Expense, "10", "2025-02-03", "Healthcare"), // last month only
			tx("d", core.Income, "900", "2025-03-03", "Healthcare"), // income ignored
		}
		budgets := []core.Budget{
			{ID: "1", Category: "Healthcare", Amount: dec("50"), Month: march}, // no spend
			{ID: "2", Category: "Travel", Amount: dec("60"), Month: march},
			{ID: "3", Category: "Travel", Amount: dec("500"), Month: core.YearMonth{Year: 2025, Month: time.February}},
			{ID: "4", Category: "Travel", Amount: dec("999"), Month: march}, // duplicate, first wins
		}
		report := BuildBudgetVsActual(txs, budgets, now)
		want := []BudgetComparison{
			{Category: "Travel", Budget: dec("60"), Actual: dec("80"), Difference: dec("-20"), Percentage: dec("133.3333333333333333")},
			{Category: "Healthcare", Budget: dec("50"), Actual: dec("0"), Difference: dec("50"), Percentage: dec("0")},
			{Category: "Shopping", Budget: dec("0"), Actual: dec("40"), Difference: dec("-40"), Percentage: dec("0")},
		}
		approx := cmp.Comparer(func(a, b decimal.Decimal) bool {
			return a.Sub(b).Abs().LessThan(dec("0.0000001"))
		})
		if diff := cmp.Diff(want, report.Rows, approx); diff != "" {
			t.Fatalf("rows mismatch (-want +got):\n%s", diff)
		}
		for _, r := range report.Rows {
			if !r.Difference.Equal(r.Budget.Sub(r.Actual)) {
				t.Errorf("%s: difference %s != %s - %s", r.Category, r.Difference, r.Budget, r.Actual)
			}
		}
	})

	t.Run("empty", func(t *testing.T) {
		if rows := BuildBudgetVsActual(nil, nil, now).Rows; len(rows) != 0 {
			t.Fatalf("expected no rows, got %+v", rows)
		}
	})
}

func TestBuildInsights(t *testing.T) {
	opts := DefaultOptions()

	t.Run("increase flagged", func(t *testing.T) {
		txs := []core.Transaction{
			tx("a", core.Expense, "200", "2025-02-10", "Food"),
			tx("b", core.Expense, "100", "2025-03-01", "Travel"),
			tx("c", core.Expense, "200", "2025-03-11", "Food"),
		}
		in := BuildInsights(txs, now, opts)
		if !in.MonthOverMonthChange.Equal(dec("50")) {
			t.Fatalf("month over month = %s, want 50", in.MonthOverMonthChange)
		}
		if !in.Has(FlagSpendingIncreased) || in.Has(FlagSpendingDecreased) {
			t.Fatalf("unexpected flags %v", in.Flags)
		}
		if !in.CurrentMonthExpenses.Equal(dec("300")) || !in.LastMonthExpenses.Equal(dec("200")) {
			t.Fatalf("month totals %s / %s", in.CurrentMonthExpenses, in.LastMonthExpenses)
		}
		// Week of Sunday 2025-03-09 .. Saturday 2025-03-15.
		if !in.CurrentWeekExpenses.Equal(dec("200")) {
			t.Fatalf("week total = %s, want 200", in.CurrentWeekExpenses)
		}
		if in.DaysElapsed != 13 {
			t.Fatalf("days elapsed = %d, want 13", in.DaysElapsed)
		}
		wantAvg := dec("300").Div(dec("13"))
		if !in.AverageDailySpending.Equal(wantAvg) {
			t.Fatalf("average = %s, want %s", in.AverageDailySpending, wantAvg)
		}
		if in.TopCategory == nil || in.TopCategory.Category != "Food" || !in.TopCategory.Amount.Equal(dec("200")) {
			t.Fatalf("unexpected top category %+v", in.TopCategory)
		}
		if in.MostRecentExpense == nil || in.MostRecentExpense.ID != "c" {
			t.Fatalf("unexpected most recent expense %+v", in.MostRecentExpense)
		}
	})

	t.Run("decrease and high daily rate", func(t *testing.T) {
		txs := []core.Transaction{
			tx("a", core.Expense, "5000", "2025-02-10", "Travel"),
			tx("b", core.Expense, "1400", "2025-03-02", "Travel"),
		}
		in := BuildInsights(txs, now, opts)
		if !in.Has(FlagSpendingDecreased) {
			t.Fatalf("expected decrease flag, got %v", in.Flags)
		}
		// 1400 / 13 > 100
		if !in.Has(FlagHighDailyRate) {
			t.Fatalf("expected high daily rate flag, got %v", in.Flags)
		}
	})

	t.Run("no last month means zero change", func(t *testing.T) {
		txs := []core.Transaction{tx("a", core.Expense, "10", "2025-03-02", "Food")}
		in := BuildInsights(txs, now, opts)
		if !in.MonthOverMonthChange.IsZero() || len(in.Flags) != 0 {
			t.Fatalf("change = %s flags = %v", in.MonthOverMonthChange, in.Flags)
		}
	})

	t.Run("empty", func(t *testing.T) {
		in := BuildInsights(nil, now, opts)
		if in.TopCategory != nil || in.MostRecentExpense != nil {
			t.Fatalf("expected no top category or recent expense: %+v", in)
		}
		if !in.AverageDailySpending.IsZero() {
			t.Fatalf("average = %s", in.AverageDailySpending)
		}
	})

	t.Run("monday week start", func(t *testing.T) {
		txs := []core.Transaction{tx("a", core.Expense, "10", "2025-03-09", "Food")} // a Sunday
		sunday := BuildInsights(txs, now, opts)
		mondayOpts := opts
		mondayOpts.WeekStart = time.Monday
		monday := BuildInsights(txs, now, mondayOpts)
		if !sunday.CurrentWeekExpenses.Equal(dec("10")) || !monday.CurrentWeekExpenses.IsZero() {
			t.Fatalf("sunday=%s monday=%s", sunday.CurrentWeekExpenses, monday.CurrentWeekExpenses)
		}
	})

	t.Run("most recent tie keeps collection order", func(t *testing.T) {
		txs := []core.Transaction{
			tx("first", core.Expense, "1", "2025-03-05", "A"),
			tx("second", core.Expense, "2", "2025-03-05", "B"),
			tx("older", core.Expense, "3", "2025-03-01", "C"),
		}
		in := BuildInsights(txs, now, opts)
		if in.MostRecentExpense.ID != "first" {
			t.Fatalf("expected first, got %s", in.MostRecentExpense.ID)
		}
	})
}

func TestRecentTransactions(t *testing.T) {
	txs := []core.Transaction{
		tx("a", core.Expense, "1", "2025-03-01", "A"),
		tx("b", core.Income, "1", "2025-03-05", "B"),
		tx("c", core.Expense, "1", "2025-03-05", "C"),
		tx("d", core.Expense, "1", "2025-02-01", "D"),
	}
	ids := func(in []core.Transaction) []string {
		var out []string
		for _, x := range in {
			out = append(out, x.ID)
		}
		return out
	}
	if diff := cmp.Diff([]string{"b", "c", "a"}, ids(RecentTransactions(txs, 3))); diff != "" {
		t.Fatalf("limit 3 mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b", "c", "a", "d"}, ids(RecentTransactions(txs, 0))); diff != "" {
		t.Fatalf("no limit mismatch (-want +got):\n%s", diff)
	}
	if got := RecentTransactions(nil, 5); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"finboard/internal/analytics"
	"finboard/internal/core"
)

func (a *app) table(header string, rows func(w *tabwriter.Writer)) error {
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, header)
	rows(w)
	return w.Flush()
}

func money(d decimal.Decimal) string { return core.FormatAmount(d) }

func pct(d decimal.Decimal) string { return d.StringFixed(1) + "%" }

func (a *app) printTransactions(txs []core.Transaction) error {
	if len(txs) == 0 {
		fmt.Fprintln(a.out, "No transactions")
		return nil
	}
	return a.table("ID\tDATE\tTYPE\tCATEGORY\tAMOUNT\tDESCRIPTION", func(w *tabwriter.Writer) {
		for _, t := range txs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.Date, t.Type, t.Category, money(t.Amount), t.Description)
		}
	})
}

func (a *app) printBudgets(budgets []core.Budget) error {
	if len(budgets) == 0 {
		fmt.Fprintln(a.out, "No budgets")
		return nil
	}
	return a.table("ID\tMONTH\tCATEGORY\tAMOUNT", func(w *tabwriter.Writer) {
		for _, b := range budgets {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", b.ID, b.Month, b.Category, money(b.Amount))
		}
	})
}

func (a *app) printSummary(s analytics.Summary) error {
	return a.table("\tALL TIME\t"+s.MonthLabel, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "Income\t%s\t%s\n", money(s.TotalIncome), money(s.MonthlyIncome))
		fmt.Fprintf(w, "Expenses\t%s\t%s\n", money(s.TotalExpenses), money(s.MonthlyExpenses))
		fmt.Fprintf(w, "Net\t%s\t%s\n", money(s.Balance), money(s.MonthlyNet))
	})
}

func (a *app) printMonthly(series analytics.MonthlySeries) error {
	return a.table("MONTH\tEXPENSES", func(w *tabwriter.Writer) {
		for _, m := range series.Months {
			fmt.Fprintf(w, "%s\t%s\n", m.Label, money(m.Expenses))
		}
		fmt.Fprintf(w, "Total\t%s\n", money(series.Total))
	})
}

func (a *app) printCategories(shares []analytics.CategoryShare) error {
	if len(shares) == 0 {
		fmt.Fprintln(a.out, "No transactions this month")
		return nil
	}
	return a.table("CATEGORY\tAMOUNT\tSHARE", func(w *tabwriter.Writer) {
		for _, s := range shares {
			fmt.Fprintf(w, "%s\t%s\t%s\n", s.Category, money(s.Amount), pct(s.Percentage))
		}
	})
}

func (a *app) printBudgetReport(r analytics.BudgetReport) error {
	if len(r.Rows) == 0 {
		fmt.Fprintf(a.out, "No budgets or expenses for %s\n", r.Label)
		return nil
	}
	fmt.Fprintln(a.out, r.Label)
	return a.table("CATEGORY\tBUDGET\tACTUAL\tREMAINING\tUSED", func(w *tabwriter.Writer) {
		for _, row := range r.Rows {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				row.Category, money(row.Budget), money(row.Actual), money(row.Difference), pct(row.Percentage))
		}
	})
}

var flagText = map[analytics.Flag]string{
	analytics.FlagSpendingIncreased: "Spending is up noticeably on last month",
	analytics.FlagSpendingDecreased: "Spending is down noticeably on last month",
	analytics.FlagHighDailyRate:     "Average daily spending is high",
}

func (a *app) printInsights(in analytics.Insights) error {
	err := a.table("\t", func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "This month\t%s\n", money(in.CurrentMonthExpenses))
		fmt.Fprintf(w, "Last month\t%s\n", money(in.LastMonthExpenses))
		fmt.Fprintf(w, "Change\t%s\n", pct(in.MonthOverMonthChange))
		fmt.Fprintf(w, "This week\t%s\n", money(in.CurrentWeekExpenses))
		fmt.Fprintf(w, "Daily average\t%s over %d days\n", money(in.AverageDailySpending), in.DaysElapsed)
		if in.TopCategory != nil {
			fmt.Fprintf(w, "Top category\t%s (%s)\n", in.TopCategory.Category, money(in.TopCategory.Amount))
		}
		if in.MostRecentExpense != nil {
			e := in.MostRecentExpense
			fmt.Fprintf(w, "Latest expense\t%s %s on %s\n", money(e.Amount), e.Description, e.Date)
		}
	})
	if err != nil {
		return err
	}
	for _, f := range in.Flags {
		fmt.Fprintf(a.out, "! %s\n", flagText[f])
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"finboard/internal/api"
	"finboard/internal/core"
	"finboard/internal/services"
)

func newReportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the dashboard views",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "summary",
			Short: "All-time totals and this month's income and expenses",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := a.dashboard.Summary(cmd.Context())
				if err != nil {
					return err
				}
				if a.jsonOut {
					return a.printJSON(api.FromSummary(s))
				}
				return a.printSummary(s)
			},
		},
		&cobra.Command{
			Use:   "monthly",
			Short: "Expenses for each of the last six months",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				series, err := a.dashboard.MonthlySeries(cmd.Context())
				if err != nil {
					return err
				}
				if a.jsonOut {
					return a.printJSON(api.FromMonthlySeries(series))
				}
				return a.printMonthly(series)
			},
		},
		newReportCategoriesCmd(a),
		&cobra.Command{
			Use:   "budgets",
			Short: "This month's budgets against actual spending",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				report, err := a.dashboard.BudgetVsActual(cmd.Context())
				if err != nil {
					return err
				}
				if a.jsonOut {
					return a.printJSON(api.FromBudgetReport(report))
				}
				return a.printBudgetReport(report)
			},
		},
		&cobra.Command{
			Use:   "insights",
			Short: "Spending trends and flags for this month",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				in, err := a.dashboard.Insights(cmd.Context())
				if err != nil {
					return err
				}
				if a.jsonOut {
					return a.printJSON(api.FromInsights(in))
				}
				return a.printInsights(in)
			},
		},
		newReportRecentCmd(a),
	)
	return cmd
}

func newReportCategoriesCmd(a *app) *cobra.Command {
	var txType string
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "This month's totals per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := core.ParseTransactionType(txType)
			if err != nil {
				return err
			}
			shares, err := a.dashboard.CategoryBreakdown(cmd.Context(), t)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(api.FromCategoryBreakdown(t, shares))
			}
			return a.printCategories(shares)
		},
	}
	cmd.Flags().StringVarP(&txType, "type", "t", string(core.Expense), "income or expense")
	return cmd
}

func newReportRecentCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "The latest transactions by date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return fmt.Errorf("limit must be a positive integer")
			}
			txs, err := a.dashboard.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(api.TransactionList{Transactions: api.FromTransactions(txs)})
			}
			return a.printTransactions(txs)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", services.DefaultRecentLimit, "Number of transactions")
	return cmd
}

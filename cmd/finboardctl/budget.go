package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"finboard/internal/api"
	"finboard/internal/core"
	"finboard/internal/validator"
)

func newBudgetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Set, list, update and remove monthly budgets",
	}
	cmd.AddCommand(newBudgetSetCmd(a), newBudgetListCmd(a), newBudgetUpdateCmd(a), newBudgetRemoveCmd(a))
	return cmd
}

func newBudgetSetCmd(a *app) *cobra.Command {
	var in validator.BudgetInput
	cmd := &cobra.Command{
		Use:     "set",
		Short:   "Set the budget for a category and month",
		Long:    "Set the budget for a category and month. An existing budget for the same pair is overwritten.",
		Example: `  finboardctl budget set -c Food -a 300 --month 2025-03`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Month == "" {
				in.Month = core.YearMonthOf(time.Now()).String()
			}
			form, err := validator.Budget(in)
			if err != nil {
				return err
			}
			b, err := a.ledger.AddBudget(cmd.Context(), form)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(api.FromBudget(b))
			}
			fmt.Fprintf(a.out, "Budget for %s in %s is %s (%s)\n", b.Category, b.Month, core.FormatAmount(b.Amount), b.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&in.Category, "category", "c", "", "Category")
	cmd.Flags().StringVarP(&in.Amount, "amount", "a", "", "Monthly ceiling")
	cmd.Flags().StringVar(&in.Month, "month", "", "Month as YYYY-MM (default current)")
	return cmd
}

func newBudgetListCmd(a *app) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List budgets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			budgets := a.ledger.Budgets()
			if month != "" {
				ym, err := core.ParseYearMonth(month)
				if err != nil {
					return err
				}
				kept := make([]core.Budget, 0, len(budgets))
				for _, b := range budgets {
					if b.Month == ym {
						kept = append(kept, b)
					}
				}
				budgets = kept
			}
			if a.jsonOut {
				return a.printJSON(api.BudgetList{Budgets: api.FromBudgets(budgets)})
			}
			return a.printBudgets(budgets)
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "Only this month, YYYY-MM")
	return cmd
}

func newBudgetUpdateCmd(a *app) *cobra.Command {
	var in validator.BudgetInput
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of an existing budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cur, ok := a.ledger.Budget(args[0])
			if !ok {
				return fmt.Errorf("budget %s not found", args[0])
			}
			flags := cmd.Flags()
			if !flags.Changed("category") {
				in.Category = cur.Category
			}
			if !flags.Changed("amount") {
				in.Amount = cur.Amount.String()
			}
			if !flags.Changed("month") {
				in.Month = cur.Month.String()
			}
			form, err := validator.Budget(in)
			if err != nil {
				return err
			}
			if err := a.ledger.UpdateBudget(cmd.Context(), args[0], form); err != nil {
				return err
			}
			updated, _ := a.ledger.Budget(args[0])
			if a.jsonOut {
				return a.printJSON(api.FromBudget(updated))
			}
			fmt.Fprintf(a.out, "Updated %s\n", updated.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&in.Category, "category", "c", "", "Category")
	cmd.Flags().StringVarP(&in.Amount, "amount", "a", "", "Monthly ceiling")
	cmd.Flags().StringVar(&in.Month, "month", "", "Month as YYYY-MM")
	return cmd
}

func newBudgetRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Remove a budget",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := a.ledger.Budget(args[0]); !ok {
				fmt.Fprintf(a.out, "Budget %s not found, nothing removed\n", args[0])
				return nil
			}
			if err := a.ledger.DeleteBudget(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Removed %s\n", args[0])
			return nil
		},
	}
}

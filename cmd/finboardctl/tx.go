package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"finboard/internal/analytics"
	"finboard/internal/api"
	"finboard/internal/core"
	"finboard/internal/validator"
	"finboard/internal/window"
)

type txFlags struct {
	amount      string
	date        string
	description string
	txType      string
	category    string
}

func (f *txFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.amount, "amount", "a", "", "Amount, dot or comma decimal separator")
	cmd.Flags().StringVarP(&f.date, "date", "d", "", "Date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&f.description, "description", "m", "", "Description")
	cmd.Flags().StringVarP(&f.txType, "type", "t", "", "income or expense (default expense)")
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "Category")
}

func newTxCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transaction"},
		Short:   "Add, list, update and remove transactions",
	}
	cmd.AddCommand(newTxAddCmd(a), newTxListCmd(a), newTxUpdateCmd(a), newTxRemoveCmd(a))
	return cmd
}

func newTxAddCmd(a *app) *cobra.Command {
	var f txFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new transaction",
		Example: `  finboardctl tx add -a 12.50 -m "Lunch" -c Food
  finboardctl tx add -a 2500 -t income -c Salary -m "March salary" -d 2025-03-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := validator.TransactionInput{
				Amount:      f.amount,
				Date:        f.date,
				Description: f.description,
				Type:        f.txType,
				Category:    f.category,
			}
			if in.Date == "" {
				in.Date = core.DateOf(time.Now()).String()
			}
			if in.Type == "" {
				in.Type = string(core.Expense)
			}
			form, err := validator.Transaction(in)
			if err != nil {
				return err
			}
			t, err := a.ledger.AddTransaction(cmd.Context(), form)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(api.FromTransaction(t))
			}
			fmt.Fprintf(a.out, "Added %s %s %s on %s (%s)\n", t.Type, core.FormatAmount(t.Amount), t.Category, t.Date, t.ID)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newTxListCmd(a *app) *cobra.Command {
	var txType, month, category string
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var preds []analytics.Predicate
			if txType != "" {
				t, err := core.ParseTransactionType(txType)
				if err != nil {
					return err
				}
				preds = append(preds, analytics.OfType(t))
			}
			if month != "" {
				ym, err := core.ParseYearMonth(month)
				if err != nil {
					return err
				}
				preds = append(preds, analytics.InWindow(window.Month(ym)))
			}
			if category != "" {
				preds = append(preds, analytics.InCategory(category))
			}
			txs := analytics.RecentTransactions(
				analytics.Filter(a.ledger.Transactions(), analytics.All(preds...)), limit)

			if a.jsonOut {
				return a.printJSON(api.TransactionList{Transactions: api.FromTransactions(txs)})
			}
			return a.printTransactions(txs)
		},
	}
	cmd.Flags().StringVarP(&txType, "type", "t", "", "Only income or expense")
	cmd.Flags().StringVar(&month, "month", "", "Only this month, YYYY-MM")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Only this category")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most n transactions (0 for all)")
	return cmd
}

func newTxUpdateCmd(a *app) *cobra.Command {
	var f txFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of an existing transaction",
		Long:  "Change fields of an existing transaction. Fields without a flag keep their current value.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cur, ok := a.ledger.Transaction(args[0])
			if !ok {
				return fmt.Errorf("transaction %s not found", args[0])
			}
			in := validator.TransactionInput{
				Amount:      cur.Amount.String(),
				Date:        cur.Date.String(),
				Description: cur.Description,
				Type:        string(cur.Type),
				Category:    cur.Category,
			}
			flags := cmd.Flags()
			if flags.Changed("amount") {
				in.Amount = f.amount
			}
			if flags.Changed("date") {
				in.Date = f.date
			}
			if flags.Changed("description") {
				in.Description = f.description
			}
			if flags.Changed("type") {
				in.Type = f.txType
			}
			if flags.Changed("category") {
				in.Category = f.category
			}
			form, err := validator.Transaction(in)
			if err != nil {
				return err
			}
			if err := a.ledger.UpdateTransaction(cmd.Context(), args[0], form); err != nil {
				return err
			}
			updated, _ := a.ledger.Transaction(args[0])
			if a.jsonOut {
				return a.printJSON(api.FromTransaction(updated))
			}
			fmt.Fprintf(a.out, "Updated %s\n", updated.ID)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newTxRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Remove a transaction",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := a.ledger.Transaction(args[0]); !ok {
				fmt.Fprintf(a.out, "Transaction %s not found, nothing removed\n", args[0])
				return nil
			}
			if err := a.ledger.DeleteTransaction(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Removed %s\n", args[0])
			return nil
		},
	}
}

package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"finboard/internal/core"
)

func TestTransaction(t *testing.T) {
	valid := TransactionInput{
		Amount:      "50.5",
		Date:        "2025-03-02",
		Description: "  groceries ",
		Type:        "expense",
		Category:    "Food & Dining",
	}

	form, err := Transaction(valid)
	if err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}
	want := core.TransactionForm{
		Amount: "50.5", Date: "2025-03-02", Description: "groceries", Type: core.Expense, Category: "Food & Dining",
	}
	if diff := cmp.Diff(want, form); diff != "" {
		t.Fatalf("form mismatch (-want +got):\n%s", diff)
	}

	tests := []struct {
		name   string
		mutate func(*TransactionInput)
		field  string
		msg    string
	}{
		{"missing amount", func(in *TransactionInput) { in.Amount = "" }, "amount", "Amount is required"},
		{"non numeric amount", func(in *TransactionInput) { in.Amount = "not-a-number" }, "amount", "Amount must be a number greater than 0"},
		{"negative amount", func(in *TransactionInput) { in.Amount = "-3" }, "amount", "Amount must be a number greater than 0"},
		{"bad date", func(in *TransactionInput) { in.Date = "02/03/2025" }, "date", "Date must be in YYYY-MM-DD format"},
		{"blank description", func(in *TransactionInput) { in.Description = "   " }, "description", "Description is required"},
		{"unknown type", func(in *TransactionInput) { in.Type = "transfer" }, "type", "Type must be one of: income expense"},
		{"missing category", func(in *TransactionInput) { in.Category = "" }, "category", "Category is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := Transaction(in)
			var verr *Error
			if !errors.As(err, &verr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if got := verr.Fields[tt.field]; got != tt.msg {
				t.Fatalf("field %s: got %q, want %q", tt.field, got, tt.msg)
			}
		})
	}
}

func TestBudgetReportsEveryField(t *testing.T) {
	_, err := Budget(BudgetInput{Amount: "0", Month: "March"})
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	want := map[string]string{
		"category": "Category is required",
		"amount":   "Amount must be a number greater than 0",
		"month":    "Month must be in YYYY-MM format",
	}
	if diff := cmp.Diff(want, verr.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasPrefix(err.Error(), "invalid input: ") {
		t.Fatalf("unexpected message %q", err.Error())
	}

	form, err := Budget(BudgetInput{Category: "Travel", Amount: "300", Month: "2025-07"})
	if err != nil || form.Month != "2025-07" {
		t.Fatalf("valid budget rejected: %+v %v", form, err)
	}
}

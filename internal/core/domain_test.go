package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want Date
		ok   bool
	}{
		{"2025-03-09", NewDate(2025, 3, 9), true},
		{" 2025-03-09 ", NewDate(2025, 3, 9), true},
		{"2025-03-09T23:30:00Z", NewDate(2025, 3, 9), true},
		{"2025-13-01", Date{}, false},
		{"09/03/2025", Date{}, false},
		{"", Date{}, false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(tc.want.Time) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.want, got, err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", tc.in, err)
		}
	}
}

func TestDateOfUsesLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	// 2025-01-31 20:00 UTC is already February 1st in UTC+10.
	now := time.Date(2025, 1, 31, 20, 0, 0, 0, time.UTC).In(loc)
	if got := DateOf(now); got.String() != "2025-02-01" {
		t.Fatalf("expected 2025-02-01, got %s", got)
	}
}

func TestYearMonth(t *testing.T) {
	ym, err := ParseYearMonth("2024-02")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ym.String() != "2024-02" {
		t.Fatalf("unexpected string %q", ym.String())
	}
	if got := ym.LastDay().String(); got != "2024-02-29" {
		t.Fatalf("leap year last day: got %s", got)
	}
	if got := ym.AddMonths(-2).String(); got != "2023-12" {
		t.Fatalf("AddMonths(-2): got %s", got)
	}
	if got := ym.AddMonths(11).String(); got != "2025-01" {
		t.Fatalf("AddMonths(11): got %s", got)
	}
	if _, err := ParseYearMonth("2024-2-1"); !errors.Is(err, ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
}

func TestParseTransactionType(t *testing.T) {
	if tt, err := ParseTransactionType(" Expense "); err != nil || tt != Expense {
		t.Fatalf("expected expense, got %q (err=%v)", tt, err)
	}
	if _, err := ParseTransactionType("transfer"); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Date:        NewDate(2025, 1, 1),
		Description: "ok",
		Amount:      decimal.NewFromInt(100),
		Type:        Expense,
		Category:    "Food & Dining",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Date: Date{}, Description: "a", Amount: decimal.NewFromInt(1), Type: Expense, Category: "c"},
		{Date: NewDate(2025, 1, 1), Description: " ", Amount: decimal.NewFromInt(1), Type: Expense, Category: "c"},
		{Date: NewDate(2025, 1, 1), Description: "a", Amount: decimal.Zero, Type: Expense, Category: "c"},
		{Date: NewDate(2025, 1, 1), Description: "a", Amount: decimal.NewFromInt(1), Type: "gift", Category: "c"},
		{Date: NewDate(2025, 1, 1), Description: "a", Amount: decimal.NewFromInt(1), Type: Income, Category: ""},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionSigned(t *testing.T) {
	in := Transaction{Amount: decimal.RequireFromString("12.5"), Type: Income}
	out := Transaction{Amount: decimal.RequireFromString("12.5"), Type: Expense}
	if !in.Signed().Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("income should count positive, got %s", in.Signed())
	}
	if !out.Signed().Equal(decimal.RequireFromString("-12.5")) {
		t.Fatalf("expense should count negative, got %s", out.Signed())
	}
}

func TestBudgetValidate(t *testing.T) {
	good := Budget{Category: "Travel", Amount: decimal.NewFromInt(300), Month: YearMonth{Year: 2025, Month: time.June}}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Budget{Category: "Travel", Amount: decimal.NewFromInt(1)}).Validate(); !errors.Is(err, ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
	if err := (Budget{Amount: decimal.NewFromInt(1), Month: good.Month}).Validate(); !errors.Is(err, ErrEmptyCategory) {
		t.Fatalf("expected ErrEmptyCategory, got %v", err)
	}
}

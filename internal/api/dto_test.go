package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"finboard/internal/analytics"
	"finboard/internal/core"
)

func TestAmountKeepsExactText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"50.5", "50.5"},
		{"0.1", "0.1"},
		{"12345678901234.99", "12345678901234.99"},
		{"100.00", "100"},
	}
	for _, tt := range tests {
		got, err := json.Marshal(struct {
			A json.Number `json:"a"`
		}{Amount(decimal.RequireFromString(tt.in))})
		if err != nil {
			t.Fatalf("marshal %s: %v", tt.in, err)
		}
		if want := `{"a":` + tt.want + `}`; string(got) != want {
			t.Errorf("Amount(%s) = %s, want %s", tt.in, got, want)
		}
	}
}

func TestPercentRoundsToTwoPlaces(t *testing.T) {
	if got := Percent(decimal.RequireFromString("33.33333")); got != "33.33" {
		t.Fatalf("got %s", got)
	}
}

func TestFromInsightsEmptyMonth(t *testing.T) {
	got := FromInsights(analytics.Insights{
		CurrentMonthExpenses: decimal.Zero,
		LastMonthExpenses:    decimal.Zero,
		MonthOverMonthChange: decimal.Zero,
		CurrentWeekExpenses:  decimal.Zero,
		AverageDailySpending: decimal.Zero,
		DaysElapsed:          1,
	})
	data, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["topCategory"] != nil || decoded["mostRecentExpense"] != nil {
		t.Fatalf("expected null pointers, got %s", data)
	}
	if flags, ok := decoded["flags"].([]any); !ok || len(flags) != 0 {
		t.Fatalf("flags should be an empty array, got %s", data)
	}
}

func TestFromTransaction(t *testing.T) {
	at := time.Date(2025, 3, 13, 9, 0, 0, 0, time.FixedZone("CET", 3600))
	got := FromTransaction(core.Transaction{
		ID:          "id-1",
		Amount:      decimal.RequireFromString("12.5"),
		Date:        core.NewDate(2025, 3, 10),
		Description: "Lunch",
		Type:        core.Expense,
		Category:    "Food",
		CreatedAt:   at,
		UpdatedAt:   at,
	})
	want := Transaction{
		ID:          "id-1",
		Amount:      "12.5",
		Date:        "2025-03-10",
		Description: "Lunch",
		Type:        "expense",
		Category:    "Food",
		CreatedAt:   "2025-03-13T08:00:00Z",
		UpdatedAt:   "2025-03-13T08:00:00Z",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestViewPayloadKeys(t *testing.T) {
	march := core.YearMonth{Year: 2025, Month: time.March}
	tests := []struct {
		name string
		v    any
		want string
	}{
		{
			name: "monthly series",
			v: FromMonthlySeries(analytics.MonthlySeries{
				Months: []analytics.MonthTotal{{Month: march, Label: "Mar 2025", Expenses: decimal.RequireFromString("12.5")}},
				Total:  decimal.RequireFromString("12.5"),
			}),
			want: `{"months":[{"month":"2025-03","label":"Mar 2025","expenses":12.5}],"total":12.5}`,
		},
		{
			name: "category breakdown",
			v: FromCategoryBreakdown(core.Expense, []analytics.CategoryShare{
				{Category: "Food", Amount: decimal.NewFromInt(30), Percentage: decimal.RequireFromString("33.3333")},
			}),
			want: `{"type":"expense","categories":[{"category":"Food","amount":30,"percentage":33.33}]}`,
		},
		{
			name: "budget report",
			v: FromBudgetReport(analytics.BudgetReport{
				Month: march,
				Label: "Mar 2025",
				Rows: []analytics.BudgetComparison{{
					Category:   "Travel",
					Budget:     decimal.NewFromInt(60),
					Actual:     decimal.NewFromInt(80),
					Difference: decimal.NewFromInt(-20),
					Percentage: decimal.RequireFromString("133.333"),
				}},
			}),
			want: `{"month":"2025-03","label":"Mar 2025","rows":[{"category":"Travel","budget":60,"actual":80,"difference":-20,"percentage":133.33}]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.v)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if diff := cmp.Diff(tt.want, string(raw)); diff != "" {
				t.Fatalf("payload mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"finboard/internal/core"
)

func TestRequestBodyParser_JSON(t *testing.T) {
	body := `{"amount": 50.50, "date": "2025-03-02", "description": " lunch ", "type": "expense", "category": "Food & Dining"}`
	req := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !parser.IsJSON() {
		t.Error("Expected IsJSON() to be true")
	}

	in := parser.TransactionInput()
	if in.Amount != "50.50" {
		t.Errorf("amount = %q, want the literal 50.50", in.Amount)
	}
	if in.Description != "lunch" {
		t.Errorf("description = %q, want trimmed", in.Description)
	}
	if in.Category != "Food & Dining" || in.Type != "expense" || in.Date != "2025-03-02" {
		t.Errorf("unexpected input %+v", in)
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	body := url.Values{"category": {"Travel"}, "amount": {"1.200,5"}, "month": {"2025-03"}}.Encode()
	req := httptest.NewRequest(http.MethodPost, "/api/budgets", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if parser.IsJSON() {
		t.Error("Expected IsJSON() to be false for form data")
	}
	in := parser.BudgetInput()
	if in.Category != "Travel" || in.Amount != "1.200,5" || in.Month != "2025-03" {
		t.Errorf("unexpected input %+v", in)
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/budgets", strings.NewReader(""))
	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if val := parser.Get("nonexistent"); val != "" {
		t.Errorf("Get('nonexistent') = %q, want empty string", val)
	}
}

func TestRequestBodyParser_Malformed(t *testing.T) {
	cases := map[string]struct {
		body        string
		contentType string
	}{
		"broken json":      {`{"amount": `, "application/json"},
		"json array":       {`[1,2]`, "application/json"},
		"trailing data":    {`{"a":"b"} {"c":"d"}`, "application/json"},
		"bad form escape":  {"amount=%zz", "application/x-www-form-urlencoded"},
		"oversized":        {"a=" + strings.Repeat("x", maxBodyBytes), "application/x-www-form-urlencoded"},
		"json by sniffing": {`{"amount": 1`, "text/plain"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", tc.contentType)
			err := NewRequestBodyParser(req).Parse()
			if !errors.Is(err, errMalformedBody) {
				t.Fatalf("expected errMalformedBody, got %v", err)
			}
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  a\x00b\tc\n "); got != "ab\tc" {
		t.Fatalf("sanitizeInput = %q", got)
	}
}

func TestQueryParams(t *testing.T) {
	q := url.Values{"type": {"income"}, "month": {"2025-02"}, "limit": {"500"}}

	typ, err := parseTypeParam(q, "type", core.Expense)
	if err != nil || typ != core.Income {
		t.Fatalf("type = %v %v", typ, err)
	}
	if typ, _ := parseTypeParam(url.Values{}, "type", core.Expense); typ != core.Expense {
		t.Fatalf("fallback type = %v", typ)
	}
	if _, err := parseTypeParam(url.Values{"type": {"transfer"}}, "type", core.Expense); err == nil {
		t.Fatal("expected error for unknown type")
	}

	ym, ok, err := parseMonthParam(q, "month")
	if err != nil || !ok || ym != (core.YearMonth{Year: 2025, Month: time.February}) {
		t.Fatalf("month = %v %v %v", ym, ok, err)
	}
	if _, ok, err := parseMonthParam(url.Values{}, "month"); ok || err != nil {
		t.Fatal("absent month should be ok=false without error")
	}
	if _, _, err := parseMonthParam(url.Values{"month": {"2025-13"}}, "month"); err == nil {
		t.Fatal("expected error for month 13")
	}

	if n, err := parseLimitParam(q, "limit", 5, 100); err != nil || n != 100 {
		t.Fatalf("limit = %d %v, want capped 100", n, err)
	}
	if n, _ := parseLimitParam(url.Values{}, "limit", 5, 100); n != 5 {
		t.Fatalf("fallback limit = %d", n)
	}
	if _, err := parseLimitParam(url.Values{"limit": {"0"}}, "limit", 5, 100); err == nil {
		t.Fatal("expected error for zero limit")
	}
}

// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from form strings
// into exact decimals and formatting them back for display.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a form-encoded amount into an exact decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and keeps
// every fractional digit the caller supplied. Returns ErrInvalidAmount for
// empty, malformed, signed, zero or negative input.
//
// Examples:
//
//	ParseAmount("50.5")  -> 50.5, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-1")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders an amount with two fractional digits for display.
// Calculations never go through this representation.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

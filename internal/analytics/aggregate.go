// Package analytics reduces transaction and budget records into the
// dashboard's derived views.
//
// The primitives in this file never filter by time on their own: callers pass
// pre-filtered slices or compose predicates with All.
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"finboard/internal/core"
	"finboard/internal/window"
)

var hundred = decimal.NewFromInt(100)

// Predicate selects transactions.
type Predicate func(core.Transaction) bool

// OfType selects transactions of the given type.
func OfType(t core.TransactionType) Predicate {
	return func(tx core.Transaction) bool { return tx.Type == t }
}

// InWindow selects transactions dated inside w.
func InWindow(w window.Window) Predicate {
	return func(tx core.Transaction) bool { return w.Contains(tx.Date) }
}

// InCategory selects transactions whose category matches exactly.
func InCategory(category string) Predicate {
	return func(tx core.Transaction) bool { return tx.Category == category }
}

// All is the conjunction of preds. With no predicates it selects everything.
func All(preds ...Predicate) Predicate {
	return func(tx core.Transaction) bool {
		for _, p := range preds {
			if !p(tx) {
				return false
			}
		}
		return true
	}
}

// Filter returns the transactions matching pred, preserving order.
func Filter(txs []core.Transaction, pred Predicate) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if pred(tx) {
			out = append(out, tx)
		}
	}
	return out
}

// SumBy adds the amounts of every transaction matching pred.
func SumBy(txs []core.Transaction, pred Predicate) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if pred(tx) {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// GroupSumByCategory sums amounts per distinct category. Categories are
// compared byte-for-byte and returned in order of first appearance.
func GroupSumByCategory(txs []core.Transaction) []core.CategoryAmount {
	index := make(map[string]int)
	out := make([]core.CategoryAmount, 0)
	for _, tx := range txs {
		i, ok := index[tx.Category]
		if !ok {
			index[tx.Category] = len(out)
			out = append(out, core.CategoryAmount{Category: tx.Category, Amount: tx.Amount})
			continue
		}
		out[i].Amount = out[i].Amount.Add(tx.Amount)
	}
	return out
}

// RankByAmountDescending returns a copy of items ordered by amount, largest
// first. Equal amounts keep their input order.
func RankByAmountDescending(items []core.CategoryAmount) []core.CategoryAmount {
	out := append([]core.CategoryAmount(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.GreaterThan(out[j].Amount)
	})
	return out
}

// PercentOf returns part as a percentage of whole. A zero whole yields zero.
func PercentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

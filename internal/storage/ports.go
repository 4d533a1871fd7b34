// Package storage defines the persistence port the ledger writes through.
package storage

import (
	"context"
	"errors"
)

// Fixed namespaces for the two record collections.
const (
	TransactionsKey = "personal-finance-transactions"
	BudgetsKey      = "personal-finance-budgets"
)

// ErrClosed is returned by backends used after Close.
var ErrClosed = errors.New("storage: closed")

// KeyValue stores one opaque string value per key.
//
// Get reports ok=false for a key that was never written; that is not an
// error. Set replaces the whole value.
type KeyValue interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

package ledger

import (
	"context"
	"fmt"

	"finboard/internal/core"
	"finboard/internal/log"
)

// parseTransactionForm returns a transaction holding the form's mutable
// fields. Id and timestamps are left for the caller. Forms arrive validated
// (see package validator); only the amount and date text are parsed here.
func parseTransactionForm(form core.TransactionForm) (core.Transaction, error) {
	amount, err := core.ParseAmount(form.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := core.ParseDate(form.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		Amount:      amount,
		Date:        date,
		Description: form.Description,
		Type:        form.Type,
		Category:    form.Category,
	}, nil
}

// Transaction looks up a transaction by id.
func (l *Ledger) Transaction(id string) (core.Transaction, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i := l.transactionIndex(id); i >= 0 {
		return l.transactions[i], true
	}
	return core.Transaction{}, false
}

// AddTransaction parses form into a new transaction with a fresh id and
// timestamps and prepends it to the collection.
//
// A returned error wrapping ErrPersist means the transaction was added but
// not saved.
func (l *Ledger) AddTransaction(ctx context.Context, form core.TransactionForm) (core.Transaction, error) {
	t, err := parseTransactionForm(form)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}

	l.mu.Lock()
	l.beginWrite(ctx)
	now := l.now()
	t.ID = l.newID()
	t.CreatedAt = now
	t.UpdatedAt = now
	l.transactions = append([]core.Transaction{t}, l.transactions...)
	perr := l.persistTransactions(ctx)
	change := l.bump(KindTransaction, OpCreate, t.ID)
	l.mu.Unlock()

	l.logger.InfoContext(ctx, "Transaction created",
		log.NewFields().
			WithOperation(log.OpCreate).
			WithTransaction(t.ID, string(t.Type), t.Category, core.FormatAmount(t.Amount)).
			ToSlice()...,
	)
	l.notify(change)
	return t, perr
}

// UpdateTransaction overwrites every mutable field of the transaction with
// the given id, keeping its position and creation time. An unknown id is a
// no-op.
func (l *Ledger) UpdateTransaction(ctx context.Context, id string, form core.TransactionForm) error {
	parsed, err := parseTransactionForm(form)
	if err != nil {
		return fmt.Errorf("update transaction %s: %w", id, err)
	}

	l.mu.Lock()
	l.beginWrite(ctx)
	i := l.transactionIndex(id)
	if i < 0 {
		l.mu.Unlock()
		l.logger.DebugContext(ctx, "Update of unknown transaction ignored", log.FieldRecordID, id)
		return nil
	}
	cur := &l.transactions[i]
	cur.Amount = parsed.Amount
	cur.Date = parsed.Date
	cur.Description = parsed.Description
	cur.Type = parsed.Type
	cur.Category = parsed.Category
	cur.UpdatedAt = l.now()
	updated := *cur
	perr := l.persistTransactions(ctx)
	change := l.bump(KindTransaction, OpUpdate, id)
	l.mu.Unlock()

	l.logger.InfoContext(ctx, "Transaction updated",
		log.NewFields().
			WithOperation(log.OpUpdate).
			WithTransaction(id, string(updated.Type), updated.Category, core.FormatAmount(updated.Amount)).
			ToSlice()...,
	)
	l.notify(change)
	return perr
}

// DeleteTransaction removes the transaction with the given id. An unknown id
// is a no-op.
func (l *Ledger) DeleteTransaction(ctx context.Context, id string) error {
	l.mu.Lock()
	l.beginWrite(ctx)
	i := l.transactionIndex(id)
	if i < 0 {
		l.mu.Unlock()
		return nil
	}
	l.transactions = append(l.transactions[:i:i], l.transactions[i+1:]...)
	perr := l.persistTransactions(ctx)
	change := l.bump(KindTransaction, OpDelete, id)
	l.mu.Unlock()

	l.logger.InfoContext(ctx, "Transaction deleted",
		log.NewFields().WithOperation(log.OpDelete).WithRecord(string(KindTransaction), id).ToSlice()...)
	l.notify(change)
	return perr
}

func (l *Ledger) transactionIndex(id string) int {
	for i := range l.transactions {
		if l.transactions[i].ID == id {
			return i
		}
	}
	return -1
}

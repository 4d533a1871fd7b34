// Package ledger is the authoritative record store: the transaction and
// budget collections, their persistence through a storage.KeyValue, and
// change notification for everything derived from them.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"finboard/internal/core"
	"finboard/internal/log"
	"finboard/internal/storage"
)

// ErrPersist marks a mutation that was applied in memory but could not be
// written to storage. The in-memory state stays authoritative.
var ErrPersist = errors.New("ledger: persist failed")

type Kind string

const (
	KindTransaction Kind = "transaction"
	KindBudget      Kind = "budget"
	KindAll         Kind = "all"
)

type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpReload Op = "reload"
)

// Change describes one applied mutation.
type Change struct {
	Kind     Kind
	Op       Op
	ID       string
	Revision uint64
	At       time.Time
}

// Snapshot is a consistent copy of both collections.
type Snapshot struct {
	Transactions []core.Transaction
	Budgets      []core.Budget
	Revision     uint64
}

type Option func(*Ledger)

// WithClock replaces time.Now for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDGenerator replaces the uuid generator for new record ids.
func WithIDGenerator(gen func() string) Option {
	return func(l *Ledger) { l.newID = gen }
}

func WithLogger(logger *log.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

type Ledger struct {
	kv     storage.KeyValue
	now    func() time.Time
	newID  func() string
	logger *log.Logger

	mu           sync.RWMutex
	transactions []core.Transaction
	budgets      []core.Budget
	revision     uint64

	// Raw collections as last read from or written to kv.
	seenTransactions string
	seenBudgets      string

	obsMu     sync.Mutex
	observers map[int]func(Change)
	nextObs   int
}

// Open loads both collections from kv. Storage errors fail Open; malformed
// stored data is logged and treated as an empty collection.
func Open(ctx context.Context, kv storage.KeyValue, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		kv:        kv,
		now:       time.Now,
		newID:     uuid.NewString,
		observers: make(map[int]func(Change)),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = log.FromContext(ctx)
	}
	l.logger = l.logger.WithComponent(log.ComponentLedger)

	s, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	l.adopt(s)
	l.logger.InfoContext(ctx, "Ledger loaded",
		"transactions", len(s.transactions),
		"budgets", len(s.budgets))
	return l, nil
}

// Reload replaces both collections with what is currently stored.
func (l *Ledger) Reload(ctx context.Context) error {
	s, err := l.load(ctx)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.adopt(s)
	change := l.bump(KindAll, OpReload, "")
	l.mu.Unlock()

	l.logger.DebugContext(ctx, "Ledger reloaded", log.FieldRevision, change.Revision)
	l.notify(change)
	return nil
}

// Refresh adopts whatever another process wrote to storage since this
// ledger last read or wrote it. Observers see a reload change only when
// something was adopted. Refresh reports whether that happened.
func (l *Ledger) Refresh(ctx context.Context) (bool, error) {
	l.mu.Lock()
	changed, err := l.syncLocked(ctx)
	var change Change
	if changed {
		change = l.bump(KindAll, OpReload, "")
	}
	l.mu.Unlock()

	if err != nil {
		return false, err
	}
	if changed {
		l.logger.DebugContext(ctx, "Picked up external changes", log.FieldRevision, change.Revision)
		l.notify(change)
	}
	return changed, nil
}

// Watch calls Refresh every interval until ctx is done. Refresh errors are
// logged and retried on the next tick.
func (l *Ledger) Watch(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := l.Refresh(ctx); err != nil && ctx.Err() == nil {
				l.logger.WarnContext(ctx, "Failed to refresh ledger from storage",
					log.NewFields().WithOperation(log.OpReload).WithErrorType(log.ErrorTypeDatabase).WithError(err).ToSlice()...)
			}
		}
	}
}

// Subscribe registers fn to run after every applied mutation and reload.
// Observers run synchronously on the mutating goroutine, outside the store
// lock, so they may read from the ledger. The returned func unsubscribes.
func (l *Ledger) Subscribe(fn func(Change)) func() {
	l.obsMu.Lock()
	id := l.nextObs
	l.nextObs++
	l.observers[id] = fn
	l.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.obsMu.Lock()
			delete(l.observers, id)
			l.obsMu.Unlock()
		})
	}
}

// Revision increases on every mutation and reload.
func (l *Ledger) Revision() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.revision
}

// Transactions returns a copy of the transactions, newest insertion first.
func (l *Ledger) Transactions() []core.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]core.Transaction(nil), l.transactions...)
}

// Budgets returns a copy of the budgets, newest insertion first.
func (l *Ledger) Budgets() []core.Budget {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]core.Budget(nil), l.budgets...)
}

func (l *Ledger) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Snapshot{
		Transactions: append([]core.Transaction(nil), l.transactions...),
		Budgets:      append([]core.Budget(nil), l.budgets...),
		Revision:     l.revision,
	}
}

type stored struct {
	transactions    []core.Transaction
	budgets         []core.Budget
	rawTransactions string
	rawBudgets      string
}

func (l *Ledger) load(ctx context.Context) (stored, error) {
	var s stored
	raw, ok, err := l.kv.Get(ctx, storage.TransactionsKey)
	if err != nil {
		return stored{}, fmt.Errorf("load transactions: %w", err)
	}
	if ok {
		s.transactions = l.decodeTransactions(ctx, raw)
		s.rawTransactions = raw
	}

	raw, ok, err = l.kv.Get(ctx, storage.BudgetsKey)
	if err != nil {
		return stored{}, fmt.Errorf("load budgets: %w", err)
	}
	if ok {
		s.budgets = l.decodeBudgets(ctx, raw)
		s.rawBudgets = raw
	}
	return s, nil
}

// adopt replaces both collections. Caller holds l.mu or owns l exclusively.
func (l *Ledger) adopt(s stored) {
	l.transactions = s.transactions
	l.budgets = s.budgets
	l.seenTransactions = s.rawTransactions
	l.seenBudgets = s.rawBudgets
}

// syncLocked re-reads both collections and adopts each one whose stored
// form differs from what this ledger last read or wrote. Every mutation
// calls it first, so records written by another process on the same
// backend are kept instead of overwritten. Caller holds l.mu.
func (l *Ledger) syncLocked(ctx context.Context) (bool, error) {
	rawTx, okTx, err := l.kv.Get(ctx, storage.TransactionsKey)
	if err != nil {
		return false, fmt.Errorf("sync transactions: %w", err)
	}
	rawBudgets, okBudgets, err := l.kv.Get(ctx, storage.BudgetsKey)
	if err != nil {
		return false, fmt.Errorf("sync budgets: %w", err)
	}

	changed := false
	if okTx && rawTx != l.seenTransactions {
		l.transactions = l.decodeTransactions(ctx, rawTx)
		l.seenTransactions = rawTx
		changed = true
	}
	if okBudgets && rawBudgets != l.seenBudgets {
		l.budgets = l.decodeBudgets(ctx, rawBudgets)
		l.seenBudgets = rawBudgets
		changed = true
	}
	return changed, nil
}

// beginWrite syncs with storage before a mutation. A failed read keeps the
// in-memory state, which then stays authoritative. Caller holds l.mu.
func (l *Ledger) beginWrite(ctx context.Context) {
	changed, err := l.syncLocked(ctx)
	if err != nil {
		l.logger.WarnContext(ctx, "Could not re-read storage before write, using in-memory state",
			log.NewFields().WithOperation(log.OpLoad).WithErrorType(log.ErrorTypeDatabase).WithError(err).ToSlice()...)
		return
	}
	if changed {
		l.logger.DebugContext(ctx, "Adopted external changes before write")
	}
}

func (l *Ledger) decodeTransactions(ctx context.Context, raw string) []core.Transaction {
	var records []transactionRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		l.logger.WarnContext(ctx, "Stored transactions are malformed, starting empty",
			log.NewFields().WithOperation(log.OpLoad).WithError(err).ToSlice()...)
		return nil
	}
	txs := make([]core.Transaction, 0, len(records))
	for _, r := range records {
		t, err := r.transaction()
		if err != nil {
			l.logger.WarnContext(ctx, "Skipping unreadable transaction",
				log.NewFields().WithOperation(log.OpLoad).WithRecord(string(KindTransaction), r.ID).WithError(err).ToSlice()...)
			continue
		}
		txs = append(txs, t)
	}
	return txs
}

func (l *Ledger) decodeBudgets(ctx context.Context, raw string) []core.Budget {
	var records []budgetRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		l.logger.WarnContext(ctx, "Stored budgets are malformed, starting empty",
			log.NewFields().WithOperation(log.OpLoad).WithError(err).ToSlice()...)
		return nil
	}
	budgets := make([]core.Budget, 0, len(records))
	for _, r := range records {
		b, err := r.budget()
		if err != nil {
			l.logger.WarnContext(ctx, "Skipping unreadable budget",
				log.NewFields().WithOperation(log.OpLoad).WithRecord(string(KindBudget), r.ID).WithError(err).ToSlice()...)
			continue
		}
		budgets = append(budgets, b)
	}
	return budgets
}

// persistTransactions writes the full collection. Caller holds l.mu.
func (l *Ledger) persistTransactions(ctx context.Context) error {
	raw, err := encodeTransactions(l.transactions)
	if err == nil {
		err = l.kv.Set(ctx, storage.TransactionsKey, raw)
	}
	if err == nil {
		l.seenTransactions = raw
	}
	return l.persistErr(ctx, KindTransaction, err)
}

// persistBudgets writes the full collection. Caller holds l.mu.
func (l *Ledger) persistBudgets(ctx context.Context) error {
	raw, err := encodeBudgets(l.budgets)
	if err == nil {
		err = l.kv.Set(ctx, storage.BudgetsKey, raw)
	}
	if err == nil {
		l.seenBudgets = raw
	}
	return l.persistErr(ctx, KindBudget, err)
}

func (l *Ledger) persistErr(ctx context.Context, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	l.logger.ErrorContext(ctx, "Failed to persist collection",
		log.NewFields().
			WithOperation(log.OpPersist).
			WithErrorType(log.ErrorTypeDatabase).
			WithError(err).
			ToSlice()...,
	)
	return fmt.Errorf("%w: %s: %w", ErrPersist, kind, err)
}

// bump advances the revision. Caller holds l.mu.
func (l *Ledger) bump(kind Kind, op Op, id string) Change {
	l.revision++
	return Change{Kind: kind, Op: op, ID: id, Revision: l.revision, At: l.now()}
}

func (l *Ledger) notify(c Change) {
	l.obsMu.Lock()
	fns := make([]func(Change), 0, len(l.observers))
	for i := 0; i < l.nextObs; i++ {
		if fn, ok := l.observers[i]; ok {
			fns = append(fns, fn)
		}
	}
	l.obsMu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}

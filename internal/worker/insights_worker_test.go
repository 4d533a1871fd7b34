package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/analytics"
	"finboard/internal/core"
	"finboard/internal/ledger"
	"finboard/internal/log"
	"finboard/internal/storage/memory"
)

var now = time.Date(2025, 3, 13, 12, 0, 0, 0, time.UTC)

type brokenStore struct{}

func (brokenStore) Reload(context.Context) error { return errors.New("backend unreachable") }
func (brokenStore) Snapshot() ledger.Snapshot    { return ledger.Snapshot{} }

func openLedger(t *testing.T, kv *memory.Store) *ledger.Ledger {
	t.Helper()
	l, err := ledger.Open(context.Background(), kv, ledger.WithLogger(log.Nop()))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return l
}

func TestHandleLedgerChangeReloadsSharedState(t *testing.T) {
	ctx := context.Background()
	kv := memory.New(nil)
	api := openLedger(t, kv)
	workerLedger := openLedger(t, kv)

	w := NewInsightsWorker(workerLedger, analytics.DefaultOptions(), nil).WithClock(func() time.Time { return now })

	for _, f := range []core.TransactionForm{
		{Amount: "200", Date: "2025-02-10", Description: "rent share", Type: core.Expense, Category: "Bills & Utilities"},
		{Amount: "1400", Date: "2025-03-02", Description: "flights", Type: core.Expense, Category: "Travel"},
	} {
		if _, err := api.AddTransaction(ctx, f); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	msg := amqp.NewLedgerChangeMessage("transaction", "create", "x", api.Revision(), now)
	if err := w.HandleLedgerChange(ctx, msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	in, n := w.Last()
	if n != 1 {
		t.Fatalf("processed = %d", n)
	}
	if !in.Has(analytics.FlagSpendingIncreased) || !in.Has(analytics.FlagHighDailyRate) {
		t.Fatalf("expected increase and high daily rate flags, got %v", in.Flags)
	}
	if in.TopCategory == nil || in.TopCategory.Category != "Travel" {
		t.Fatalf("unexpected top category %+v", in.TopCategory)
	}
}

func TestHandleLedgerChangeReturnsReloadErrors(t *testing.T) {
	w := NewInsightsWorker(brokenStore{}, analytics.DefaultOptions(), nil)
	msg := amqp.NewLedgerChangeMessage("budget", "delete", "b", 1, now)
	if err := w.HandleLedgerChange(context.Background(), msg); err == nil {
		t.Fatal("expected error so the message is requeued")
	}
	if err := w.StartupCheck(context.Background()); err == nil {
		t.Fatal("expected startup check to fail")
	}
	if _, n := w.Last(); n != 0 {
		t.Fatalf("failed refreshes must not count, got %d", n)
	}
}

func TestRunPeriodicStopsWithContext(t *testing.T) {
	w := NewInsightsWorker(openLedger(t, memory.New(nil)), analytics.DefaultOptions(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.RunPeriodic(ctx, time.Millisecond) }()

	deadline := time.After(2 * time.Second)
	for {
		if _, n := w.Last(); n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("periodic refresh never ran")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("RunPeriodic returned %v", err)
	}
}

// Package worker reacts to ledger change events outside the API process.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/analytics"
	"finboard/internal/core"
	"finboard/internal/ledger"
	"finboard/internal/log"
)

// Store is the part of the ledger the worker needs.
type Store interface {
	Reload(ctx context.Context) error
	Snapshot() ledger.Snapshot
}

// InsightsWorker reloads the shared ledger on every change event and
// reports the spending insights it derives.
type InsightsWorker struct {
	store  Store
	opts   analytics.Options
	now    func() time.Time
	logger *log.Logger

	mu        sync.Mutex
	last      analytics.Insights
	processed int
}

func NewInsightsWorker(store Store, opts analytics.Options, logger *log.Logger) *InsightsWorker {
	if logger == nil {
		logger = log.Nop()
	}
	return &InsightsWorker{
		store:  store,
		opts:   opts,
		now:    time.Now,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// WithClock replaces time.Now. Intended for tests.
func (w *InsightsWorker) WithClock(now func() time.Time) *InsightsWorker {
	w.now = now
	return w
}

// HandleLedgerChange processes one change event. A reload failure is
// returned so the message is requeued.
func (w *InsightsWorker) HandleLedgerChange(ctx context.Context, msg *amqp.LedgerChangeMessage) error {
	w.logger.InfoContext(ctx, "Processing ledger change",
		log.FieldRecordKind, msg.Kind,
		log.FieldOperation, msg.Op,
		log.FieldRecordID, msg.ID,
		log.FieldRevision, msg.Revision)

	if err := w.refresh(ctx); err != nil {
		return fmt.Errorf("handle %s %s: %w", msg.Kind, msg.Op, err)
	}
	return nil
}

// StartupCheck computes insights once so a freshly started worker reports
// the current state without waiting for an event.
func (w *InsightsWorker) StartupCheck(ctx context.Context) error {
	if err := w.refresh(ctx); err != nil {
		return fmt.Errorf("startup check: %w", err)
	}
	return nil
}

// RunPeriodic refreshes every interval until ctx is done. It is the backup
// path for events lost while the worker was down.
func (w *InsightsWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.refresh(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Periodic refresh failed", log.FieldError, err)
			}
		}
	}
}

// Last returns the most recent insights and how many refreshes produced
// them.
func (w *InsightsWorker) Last() (analytics.Insights, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last, w.processed
}

func (w *InsightsWorker) refresh(ctx context.Context) error {
	if err := w.store.Reload(ctx); err != nil {
		return fmt.Errorf("reload ledger: %w", err)
	}
	snap := w.store.Snapshot()
	in := analytics.BuildInsights(snap.Transactions, w.now(), w.opts)

	w.mu.Lock()
	w.last = in
	w.processed++
	w.mu.Unlock()

	w.report(ctx, snap.Revision, in)
	return nil
}

func (w *InsightsWorker) report(ctx context.Context, revision uint64, in analytics.Insights) {
	args := []any{
		log.FieldRevision, revision,
		"current_month", core.FormatAmount(in.CurrentMonthExpenses),
		"last_month", core.FormatAmount(in.LastMonthExpenses),
		"change_pct", in.MonthOverMonthChange.StringFixed(1),
		"current_week", core.FormatAmount(in.CurrentWeekExpenses),
		"daily_average", core.FormatAmount(in.AverageDailySpending),
	}
	if in.TopCategory != nil {
		args = append(args, "top_category", in.TopCategory.Category)
	}
	w.logger.InfoContext(ctx, "Insights refreshed", args...)

	for _, f := range in.Flags {
		w.logger.WarnContext(ctx, "Spending flag raised",
			"flag", string(f),
			"change_pct", in.MonthOverMonthChange.StringFixed(1),
			"daily_average", core.FormatAmount(in.AverageDailySpending))
	}
}

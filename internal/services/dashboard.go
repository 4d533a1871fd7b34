// Package services composes the ledger, the analytics views and the outer
// transports into the operations the commands expose.
package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"finboard/internal/analytics"
	"finboard/internal/cache"
	"finboard/internal/core"
	"finboard/internal/ledger"
	"finboard/internal/log"
)

// DefaultRecentLimit is the number of transactions in the recent list.
const DefaultRecentLimit = 5

// SnapshotSource provides consistent copies of the record collections.
type SnapshotSource interface {
	Snapshot() ledger.Snapshot
}

// DashboardService computes the derived views from the current ledger
// contents. Results are cached per ledger revision and calendar day, and
// concurrent requests for the same view share one computation.
type DashboardService struct {
	source SnapshotSource
	opts   analytics.Options
	now    func() time.Time
	cache  cache.Cache[any]
	group  singleflight.Group
	logger *log.Logger
}

type DashboardOption func(*DashboardService)

func WithDashboardClock(now func() time.Time) DashboardOption {
	return func(s *DashboardService) { s.now = now }
}

// WithViewCache replaces the default cache. A nil cache disables caching.
func WithViewCache(c cache.Cache[any]) DashboardOption {
	return func(s *DashboardService) { s.cache = c }
}

func WithDashboardLogger(logger *log.Logger) DashboardOption {
	return func(s *DashboardService) { s.logger = logger }
}

func NewDashboardService(source SnapshotSource, opts analytics.Options, options ...DashboardOption) *DashboardService {
	s := &DashboardService{
		source: source,
		opts:   opts,
		now:    time.Now,
		cache:  cache.NewLRUCache[any](64, 5*time.Minute),
		logger: log.Nop(),
	}
	for _, o := range options {
		o(s)
	}
	s.logger = s.logger.WithComponent(log.ComponentDashboard)
	return s
}

// Invalidate drops every cached view. Attach it to ledger changes to free
// memory early; stale entries are unreachable anyway once the revision moves.
func (s *DashboardService) Invalidate(ledger.Change) {
	if s.cache != nil {
		s.cache.Purge()
	}
}

func (s *DashboardService) Summary(ctx context.Context) (analytics.Summary, error) {
	return view(ctx, s, "summary", func(snap ledger.Snapshot, now time.Time) analytics.Summary {
		return analytics.BuildSummary(snap.Transactions, now)
	})
}

func (s *DashboardService) MonthlySeries(ctx context.Context) (analytics.MonthlySeries, error) {
	return view(ctx, s, "monthly", func(snap ledger.Snapshot, now time.Time) analytics.MonthlySeries {
		return analytics.BuildMonthlySeries(snap.Transactions, now)
	})
}

func (s *DashboardService) CategoryBreakdown(ctx context.Context, t core.TransactionType) ([]analytics.CategoryShare, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("category breakdown: %w", core.ErrInvalidType)
	}
	return view(ctx, s, "categories:"+string(t), func(snap ledger.Snapshot, now time.Time) []analytics.CategoryShare {
		return analytics.BuildCategoryBreakdown(snap.Transactions, t, now)
	})
}

func (s *DashboardService) BudgetVsActual(ctx context.Context) (analytics.BudgetReport, error) {
	return view(ctx, s, "budgets", func(snap ledger.Snapshot, now time.Time) analytics.BudgetReport {
		return analytics.BuildBudgetVsActual(snap.Transactions, snap.Budgets, now)
	})
}

func (s *DashboardService) Insights(ctx context.Context) (analytics.Insights, error) {
	return view(ctx, s, "insights", func(snap ledger.Snapshot, now time.Time) analytics.Insights {
		return analytics.BuildInsights(snap.Transactions, now, s.opts)
	})
}

// Recent returns the latest transactions by date. A limit below one uses
// DefaultRecentLimit.
func (s *DashboardService) Recent(ctx context.Context, limit int) ([]core.Transaction, error) {
	if limit < 1 {
		limit = DefaultRecentLimit
	}
	return view(ctx, s, fmt.Sprintf("recent:%d", limit), func(snap ledger.Snapshot, _ time.Time) []core.Transaction {
		return analytics.RecentTransactions(snap.Transactions, limit)
	})
}

// view computes name from a fresh snapshot, going through the cache and the
// singleflight group. Results are shared between callers and must be
// treated as read-only.
func view[T any](ctx context.Context, s *DashboardService, name string, build func(ledger.Snapshot, time.Time) T) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	now := s.now()
	snap := s.source.Snapshot()
	key := fmt.Sprintf("%s|%d|%s", name, snap.Revision, now.Format("2006-01-02"))

	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			if typed, ok := v.(T); ok {
				return typed, nil
			}
		}
	}

	v, err, shared := s.group.Do(key, func() (any, error) {
		start := time.Now()
		result := build(snap, now)
		if s.cache != nil {
			s.cache.Set(key, result)
		}
		s.logger.DebugContext(ctx, "View computed",
			log.FieldView, name,
			log.FieldRevision, snap.Revision,
			log.FieldDuration, time.Since(start).Milliseconds())
		return result, nil
	})
	if err != nil {
		return zero, err
	}
	if shared {
		s.logger.DebugContext(ctx, "View computation shared", log.FieldView, name)
	}
	return v.(T), nil
}

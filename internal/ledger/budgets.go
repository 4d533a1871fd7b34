package ledger

import (
	"context"
	"fmt"

	"finboard/internal/core"
	"finboard/internal/log"
)

// parseBudgetForm parses the amount and month of an already validated form.
func parseBudgetForm(form core.BudgetForm) (core.Budget, error) {
	amount, err := core.ParseAmount(form.Amount)
	if err != nil {
		return core.Budget{}, err
	}
	month, err := core.ParseYearMonth(form.Month)
	if err != nil {
		return core.Budget{}, err
	}
	return core.Budget{Category: form.Category, Amount: amount, Month: month}, nil
}

// Budget looks up a budget by id.
func (l *Ledger) Budget(id string) (core.Budget, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i := l.budgetIndex(id); i >= 0 {
		return l.budgets[i], true
	}
	return core.Budget{}, false
}

// BudgetFor returns the first budget for category in month.
func (l *Ledger) BudgetFor(category string, month core.YearMonth) (core.Budget, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i := l.budgetSlot(category, month); i >= 0 {
		return l.budgets[i], true
	}
	return core.Budget{}, false
}

// AddBudget creates a budget for the form's category and month. When one
// already exists for that pair its amount is overwritten in place and the
// existing record is returned instead.
func (l *Ledger) AddBudget(ctx context.Context, form core.BudgetForm) (core.Budget, error) {
	b, err := parseBudgetForm(form)
	if err != nil {
		return core.Budget{}, fmt.Errorf("add budget: %w", err)
	}

	l.mu.Lock()
	l.beginWrite(ctx)
	now := l.now()
	op := OpCreate
	if i := l.budgetSlot(b.Category, b.Month); i >= 0 {
		l.budgets[i].Amount = b.Amount
		l.budgets[i].UpdatedAt = now
		b = l.budgets[i]
		op = OpUpdate
	} else {
		b.ID = l.newID()
		b.CreatedAt = now
		b.UpdatedAt = now
		l.budgets = append([]core.Budget{b}, l.budgets...)
	}
	perr := l.persistBudgets(ctx)
	change := l.bump(KindBudget, op, b.ID)
	l.mu.Unlock()

	msg := "Budget created"
	if op == OpUpdate {
		msg = "Budget overwritten for existing category and month"
	}
	l.logger.InfoContext(ctx, msg,
		log.NewFields().
			WithOperation(string(op)).
			WithBudget(b.ID, b.Category, b.Month.String(), core.FormatAmount(b.Amount)).
			ToSlice()...,
	)
	l.notify(change)
	return b, perr
}

// UpdateBudget overwrites the budget with the given id. Any other budget
// already holding the new category and month is removed. An unknown id is a
// no-op.
func (l *Ledger) UpdateBudget(ctx context.Context, id string, form core.BudgetForm) error {
	parsed, err := parseBudgetForm(form)
	if err != nil {
		return fmt.Errorf("update budget %s: %w", id, err)
	}

	l.mu.Lock()
	l.beginWrite(ctx)
	if l.budgetIndex(id) < 0 {
		l.mu.Unlock()
		l.logger.DebugContext(ctx, "Update of unknown budget ignored", log.FieldRecordID, id)
		return nil
	}
	kept := l.budgets[:0:0]
	for _, b := range l.budgets {
		if b.ID != id && b.Category == parsed.Category && b.Month == parsed.Month {
			l.logger.InfoContext(ctx, "Dropping budget superseded by update",
				log.NewFields().WithBudget(b.ID, b.Category, b.Month.String(), core.FormatAmount(b.Amount)).ToSlice()...)
			continue
		}
		if b.ID == id {
			b.Category = parsed.Category
			b.Amount = parsed.Amount
			b.Month = parsed.Month
			b.UpdatedAt = l.now()
		}
		kept = append(kept, b)
	}
	l.budgets = kept
	perr := l.persistBudgets(ctx)
	change := l.bump(KindBudget, OpUpdate, id)
	l.mu.Unlock()

	l.logger.InfoContext(ctx, "Budget updated",
		log.NewFields().
			WithOperation(log.OpUpdate).
			WithBudget(id, parsed.Category, parsed.Month.String(), core.FormatAmount(parsed.Amount)).
			ToSlice()...,
	)
	l.notify(change)
	return perr
}

// DeleteBudget removes the budget with the given id. An unknown id is a
// no-op.
func (l *Ledger) DeleteBudget(ctx context.Context, id string) error {
	l.mu.Lock()
	l.beginWrite(ctx)
	i := l.budgetIndex(id)
	if i < 0 {
		l.mu.Unlock()
		return nil
	}
	l.budgets = append(l.budgets[:i:i], l.budgets[i+1:]...)
	perr := l.persistBudgets(ctx)
	change := l.bump(KindBudget, OpDelete, id)
	l.mu.Unlock()

	l.logger.InfoContext(ctx, "Budget deleted",
		log.NewFields().WithOperation(log.OpDelete).WithRecord(string(KindBudget), id).ToSlice()...)
	l.notify(change)
	return perr
}

func (l *Ledger) budgetIndex(id string) int {
	for i := range l.budgets {
		if l.budgets[i].ID == id {
			return i
		}
	}
	return -1
}

// budgetSlot finds the first budget for (category, month).
func (l *Ledger) budgetSlot(category string, month core.YearMonth) int {
	for i := range l.budgets {
		if b := l.budgets[i]; b.Category == category && b.Month == month {
			return i
		}
	}
	return -1
}

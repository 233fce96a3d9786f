package services

import (
	"context"
	"fmt"
	"log/slog"

	"carteira/internal/cache"
	"carteira/internal/core"
	"carteira/internal/dashboard"
	"carteira/internal/records"
	"carteira/internal/sheets"
)

// ExpenseService handles one-off expenses. Expenses carry no pending
// state: they are paid by definition.
type ExpenseService struct {
	base
	backend sheets.ExpenseStore
	list    records.ListCache[core.Expense]
}

func NewExpenseService(backend sheets.ExpenseStore, store *cache.Store, publisher InvalidationPublisher) *ExpenseService {
	return &ExpenseService{
		base:    base{store: store, publisher: publisher},
		backend: backend,
		list:    records.Expenses(),
	}
}

func (s *ExpenseService) Create(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("validate expense: %w", err)
	}

	year := yearOf(e.PaymentDate)
	rowIndex, err := s.backend.AppendExpense(ctx, year, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("append expense: %w", err)
	}
	e.RowIndex = rowIndex

	key := cache.RecordsKey(cache.Expenses, year)
	cached := cache.Records[core.Expense](s.store, key)
	s.store.SetOptimistic(key, s.list.AfterCreate(cached, e))

	s.patchDashboard(year, func(d core.Dashboard) core.Dashboard {
		return dashboard.ExpenseCreated(d, e)
	})
	s.finish(ctx, cache.Expenses, year)

	slog.InfoContext(ctx, "Expense created",
		"year", year, "row_index", e.RowIndex,
		"description", e.Description, "amount_cents", e.Amount.Cents)
	return e, nil
}

func (s *ExpenseService) Update(ctx context.Context, old core.Expense, newAmount core.Money) (core.Expense, error) {
	updated := old
	updated.Amount = newAmount

	year := yearOf(old.PaymentDate)
	if err := s.backend.UpdateExpense(ctx, year, updated); err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}

	key := cache.RecordsKey(cache.Expenses, year)
	cached := cache.Records[core.Expense](s.store, key)
	s.store.SetOptimistic(key, s.list.AfterEdit(cached, old, func(e core.Expense) core.Expense {
		e.Amount = newAmount
		return e
	}))

	s.patchDashboard(year, func(d core.Dashboard) core.Dashboard {
		return dashboard.ExpenseEdited(d, old, newAmount)
	})
	s.finish(ctx, cache.Expenses, year)

	slog.InfoContext(ctx, "Expense updated",
		"year", year, "row_index", old.RowIndex, "amount_cents", newAmount.Cents)
	return updated, nil
}

func (s *ExpenseService) Delete(ctx context.Context, victims []core.Expense) error {
	if len(victims) == 0 {
		return nil
	}

	year := yearOf(victims[0].PaymentDate)
	rowIndexes := make([]int, len(victims))
	for i, v := range victims {
		rowIndexes[i] = v.RowIndex
	}

	if err := s.backend.DeleteExpenses(ctx, year, rowIndexes); err != nil {
		return fmt.Errorf("delete expenses: %w", err)
	}

	key := cache.RecordsKey(cache.Expenses, year)
	cached := cache.Records[core.Expense](s.store, key)
	s.store.SetOptimistic(key, s.list.AfterDelete(cached, victims))

	s.patchDashboard(year, func(d core.Dashboard) core.Dashboard {
		for _, v := range victims {
			d = dashboard.ExpenseDeleted(d, v)
		}
		return d
	})
	s.finish(ctx, cache.Expenses, year)

	slog.InfoContext(ctx, "Expenses deleted", "year", year, "count", len(victims))
	return nil
}

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

// IncomeService handles expected and received incomes.
type IncomeService struct {
	base
	backend sheets.IncomeStore
	list    records.ListCache[core.Income]
}

func NewIncomeService(backend sheets.IncomeStore, store *cache.Store, publisher InvalidationPublisher) *IncomeService {
	return &IncomeService{
		base:    base{store: store, publisher: publisher},
		backend: backend,
		list:    records.Incomes(),
	}
}

func (s *IncomeService) Create(ctx context.Context, i core.Income) (core.Income, error) {
	if err := i.Validate(); err != nil {
		return core.Income{}, fmt.Errorf("validate income: %w", err)
	}

	year := yearOf(i.ExpectedDate)
	rowIndex, err := s.backend.AppendIncome(ctx, year, i)
	if err != nil {
		return core.Income{}, fmt.Errorf("append income: %w", err)
	}
	i.RowIndex = rowIndex

	key := cache.RecordsKey(cache.Incomes, year)
	cached := cache.Records[core.Income](s.store, key)
	s.store.SetOptimistic(key, s.list.AfterCreate(cached, i))

	s.patchDashboard(year, func(d core.Dashboard) core.Dashboard {
		return dashboard.IncomeCreated(d, i)
	})
	s.finish(ctx, cache.Incomes, year)

	slog.InfoContext(ctx, "Income created",
		"year", year, "row_index", i.RowIndex,
		"description", i.Description, "amount_cents", i.Amount.Cents)
	return i, nil
}

func (s *IncomeService) Update(ctx context.Context, old core.Income, newAmount core.Money, newReceivedDate string) (core.Income, error) {
	updated := old
	updated.Amount = newAmount
	updated.ReceivedDate = newReceivedDate

	year := yearOf(old.ExpectedDate)
	if err := s.backend.UpdateIncome(ctx, year, updated); err != nil {
		return core.Income{}, fmt.Errorf("update income: %w", err)
	}

	key := cache.RecordsKey(cache.Incomes, year)
	cached := cache.Records[core.Income](s.store, key)
	s.store.SetOptimistic(key, s.list.AfterEdit(cached, old, func(i core.Income) core.Income {
		i.Amount = newAmount
		i.ReceivedDate = newReceivedDate
		return i
	}))

	s.patchDashboard(year, func(d core.Dashboard) core.Dashboard {
		return dashboard.IncomeEdited(d, old, newAmount, newReceivedDate)
	})
	s.finish(ctx, cache.Incomes, year)

	slog.InfoContext(ctx, "Income updated",
		"year", year, "row_index", old.RowIndex, "amount_cents", newAmount.Cents)
	return updated, nil
}

func (s *IncomeService) Delete(ctx context.Context, victims []core.Income) error {
	if len(victims) == 0 {
		return nil
	}

	year := yearOf(victims[0].ExpectedDate)
	rowIndexes := make([]int, len(victims))
	for i, v := range victims {
		rowIndexes[i] = v.RowIndex
	}

	if err := s.backend.DeleteIncomes(ctx, year, rowIndexes); err != nil {
		return fmt.Errorf("delete incomes: %w", err)
	}

	key := cache.RecordsKey(cache.Incomes, year)
	cached := cache.Records[core.Income](s.store, key)
	s.store.SetOptimistic(key, s.list.AfterDelete(cached, victims))

	s.patchDashboard(year, func(d core.Dashboard) core.Dashboard {
		for _, v := range victims {
			d = dashboard.IncomeDeleted(d, v)
		}
		return d
	})
	s.finish(ctx, cache.Incomes, year)

	slog.InfoContext(ctx, "Incomes deleted", "year", year, "count", len(victims))
	return nil
}

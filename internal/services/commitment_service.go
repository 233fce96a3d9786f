package services

import (
	"context"
	"fmt"
	"log/slog"

	"carteira/internal/alerts"
	"carteira/internal/cache"
	"carteira/internal/core"
	"carteira/internal/dashboard"
	"carteira/internal/records"
	"carteira/internal/sheets"
)

// CommitmentService handles bills, fixed costs and card installments.
type CommitmentService struct {
	base
	backend sheets.CommitmentStore
	list    records.ListCache[core.Commitment]
}

func NewCommitmentService(backend sheets.CommitmentStore, store *cache.Store, publisher InvalidationPublisher) *CommitmentService {
	return &CommitmentService{
		base:    base{store: store, publisher: publisher},
		backend: backend,
		list:    records.Commitments(),
	}
}

// Create writes the commitment to the backend and reconciles the caches
// with the row index the backend assigned.
func (s *CommitmentService) Create(ctx context.Context, c core.Commitment) (core.Commitment, error) {
	if err := c.Validate(); err != nil {
		return core.Commitment{}, fmt.Errorf("validate commitment: %w", err)
	}

	year := yearOf(c.DueDate)
	rowIndex, err := s.backend.AppendCommitment(ctx, year, c)
	if err != nil {
		return core.Commitment{}, fmt.Errorf("append commitment: %w", err)
	}
	c.RowIndex = rowIndex

	key := cache.RecordsKey(cache.Commitments, year)
	cached := cache.Records[core.Commitment](s.store, key)
	s.store.SetOptimistic(key, s.list.AfterCreate(cached, c))

	s.patchDashboard(year, func(d core.Dashboard) core.Dashboard {
		return dashboard.CommitmentCreated(d, c)
	})
	s.finish(ctx, cache.Commitments, year)

	slog.InfoContext(ctx, "Commitment created",
		"year", year, "row_index", c.RowIndex,
		"description", c.Description, "amount_cents", c.Amount.Cents)
	return c, nil
}

// CreateFixedSeries expands a fixed commitment into one record per month,
// starting at the commitment's due date. Each occurrence goes through the
// normal create path so caches of every touched year stay consistent.
func (s *CommitmentService) CreateFixedSeries(ctx context.Context, c core.Commitment, months int) ([]core.Commitment, error) {
	if c.Type != core.Fixed {
		return nil, fmt.Errorf("series creation requires a fixed commitment, got %q", c.Type)
	}
	if months < 1 {
		return nil, fmt.Errorf("series length must be positive, got %d", months)
	}

	created := make([]core.Commitment, 0, months)
	for i := 0; i < months; i++ {
		occurrence := c
		occurrence.DueDate = addMonths(c.DueDate, i)
		out, err := s.Create(ctx, occurrence)
		if err != nil {
			return created, fmt.Errorf("create occurrence %d/%d: %w", i+1, months, err)
		}
		created = append(created, out)
	}
	return created, nil
}

// Update applies a new amount and payment date to an existing commitment.
// The old record must be the state captured before the mutation; the
// dashboard delta arithmetic depends on it.
func (s *CommitmentService) Update(ctx context.Context, old core.Commitment, newAmount core.Money, newPaymentDate string) (core.Commitment, error) {
	updated := old
	updated.Amount = newAmount
	updated.PaymentDate = newPaymentDate

	year := yearOf(old.DueDate)
	if err := s.backend.UpdateCommitment(ctx, year, updated); err != nil {
		return core.Commitment{}, fmt.Errorf("update commitment: %w", err)
	}

	key := cache.RecordsKey(cache.Commitments, year)
	cached := cache.Records[core.Commitment](s.store, key)
	s.store.SetOptimistic(key, s.list.AfterEdit(cached, old, func(c core.Commitment) core.Commitment {
		c.Amount = newAmount
		c.PaymentDate = newPaymentDate
		return c
	}))

	s.patchDashboard(year, func(d core.Dashboard) core.Dashboard {
		return dashboard.CommitmentEdited(d, old, newAmount, newPaymentDate)
	})
	s.finish(ctx, cache.Commitments, year)

	slog.InfoContext(ctx, "Commitment updated",
		"year", year, "row_index", old.RowIndex, "amount_cents", newAmount.Cents)
	return updated, nil
}

// Delete removes one or more commitments of the same year in a single
// batch, renumbering the cached survivors.
func (s *CommitmentService) Delete(ctx context.Context, victims []core.Commitment) error {
	if len(victims) == 0 {
		return nil
	}

	year := yearOf(victims[0].DueDate)
	rowIndexes := make([]int, len(victims))
	for i, v := range victims {
		rowIndexes[i] = v.RowIndex
	}

	if err := s.backend.DeleteCommitments(ctx, year, rowIndexes); err != nil {
		return fmt.Errorf("delete commitments: %w", err)
	}

	key := cache.RecordsKey(cache.Commitments, year)
	cached := cache.Records[core.Commitment](s.store, key)
	s.store.SetOptimistic(key, s.list.AfterDelete(cached, victims))

	s.patchDashboard(year, func(d core.Dashboard) core.Dashboard {
		for _, v := range victims {
			d = dashboard.CommitmentDeleted(d, v)
		}
		return d
	})
	s.finish(ctx, cache.Commitments, year)

	slog.InfoContext(ctx, "Commitments deleted", "year", year, "count", len(victims))
	return nil
}

// PendingAlerts derives the alert groups from the cached commitments of a
// year. An unfetched year yields an empty partition.
func (s *CommitmentService) PendingAlerts(year string) alerts.Grouped {
	cached := cache.Records[core.Commitment](s.store, cache.RecordsKey(cache.Commitments, year))
	return alerts.GroupPending(cached)
}

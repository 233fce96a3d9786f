// Package services orchestrates record mutations: the spreadsheet backend
// is written first, and only a confirmed write reconciles the local caches
// and the dashboard aggregate. A failed backend call leaves every cache
// untouched, so no rollback logic exists here.
package services

import (
	"context"
	"log/slog"

	"carteira/internal/cache"
	"carteira/internal/core"
)

// InvalidationPublisher notifies the refresh worker that derived caches
// went stale. The AMQP client implements it; tests use fakes.
type InvalidationPublisher interface {
	PublishInvalidation(ctx context.Context, collection, year string) error
}

// base carries the pieces every record service shares.
type base struct {
	store     *cache.Store
	publisher InvalidationPublisher
}

// finish runs the invalidation steps common to every successful mutation:
// flag the derived caches stale and notify the worker. A publish failure
// is logged, not returned; the local mutation already succeeded and the
// periodic refresh will cover the gap.
func (b base) finish(ctx context.Context, collection cache.Collection, year string) {
	b.store.InvalidateDerived(year)

	if b.publisher == nil {
		slog.WarnContext(ctx, "No invalidation publisher configured, relying on periodic refresh",
			"collection", collection, "year", year)
		return
	}
	if err := b.publisher.PublishInvalidation(ctx, string(collection), year); err != nil {
		slog.ErrorContext(ctx, "Failed to publish invalidation",
			"collection", collection, "year", year, "error", err)
	}
}

// patchDashboard applies fn to the cached dashboard of a year, when one is
// cached. An absent dashboard stays absent; the next authoritative fetch
// populates it.
func (b base) patchDashboard(year string, fn func(core.Dashboard) core.Dashboard) {
	key := cache.DashboardKey(year)
	v, ok := b.store.Get(key)
	if !ok {
		return
	}
	d, ok := v.(core.Dashboard)
	if !ok {
		return
	}
	b.store.SetOptimistic(key, fn(d))
}

// yearOf buckets a record by the year of its driving date.
func yearOf(dateText string) string {
	_, year := core.MonthYearOf(dateText)
	return year
}

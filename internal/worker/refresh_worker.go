// Package worker replaces stale caches with authoritative spreadsheet
// state. It reacts to invalidation messages and also runs a periodic
// refresh as a safety net for lost messages.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"carteira/internal/amqp"
	"carteira/internal/cache"
	"carteira/internal/core"
	"carteira/internal/sheets"
	"carteira/internal/storage"
)

// RefreshWorker refetches collections from the spreadsheet backend,
// promotes them to authoritative cache entries and persists a snapshot.
// Snapshots are optional; a nil repository disables persistence.
type RefreshWorker struct {
	backend   sheets.Backend
	store     *cache.Store
	snapshots *storage.SnapshotRepository

	mu    sync.Mutex
	years map[string]struct{}
}

func NewRefreshWorker(backend sheets.Backend, store *cache.Store, snapshots *storage.SnapshotRepository) *RefreshWorker {
	return &RefreshWorker{
		backend:   backend,
		store:     store,
		snapshots: snapshots,
		years:     make(map[string]struct{}),
	}
}

// Track registers a year for the periodic refresh. Invalidation messages
// track their year automatically.
func (w *RefreshWorker) Track(year string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.years[year] = struct{}{}
}

func (w *RefreshWorker) trackedYears() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.years))
	for y := range w.years {
		out = append(out, y)
	}
	return out
}

// HandleInvalidation refreshes the invalidated collection and, since every
// record mutation leaves the aggregates stale, the year's dashboard too.
func (w *RefreshWorker) HandleInvalidation(ctx context.Context, msg *amqp.InvalidationMessage) error {
	slog.InfoContext(ctx, "Processing invalidation",
		"collection", msg.Collection, "year", msg.Year)
	w.Track(msg.Year)

	switch cache.Collection(msg.Collection) {
	case cache.Commitments:
		if err := w.refreshCommitments(ctx, msg.Year); err != nil {
			return err
		}
	case cache.Expenses:
		if err := w.refreshExpenses(ctx, msg.Year); err != nil {
			return err
		}
	case cache.Incomes:
		if err := w.refreshIncomes(ctx, msg.Year); err != nil {
			return err
		}
	case cache.Dashboards, cache.Summaries:
		// Only the dashboard refresh below.
	default:
		slog.WarnContext(ctx, "Unknown collection in invalidation, refreshing everything",
			"collection", msg.Collection)
		return w.RefreshYear(ctx, msg.Year)
	}

	return w.refreshDashboard(ctx, msg.Year)
}

// RefreshYear refetches every collection of a year concurrently.
func (w *RefreshWorker) RefreshYear(ctx context.Context, year string) error {
	w.Track(year)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.refreshCommitments(gctx, year) })
	g.Go(func() error { return w.refreshExpenses(gctx, year) })
	g.Go(func() error { return w.refreshIncomes(gctx, year) })
	g.Go(func() error { return w.refreshDashboard(gctx, year) })
	if err := g.Wait(); err != nil {
		return fmt.Errorf("refresh year %s: %w", year, err)
	}

	slog.InfoContext(ctx, "Year refreshed", "year", year)
	return nil
}

// Run refreshes every tracked year at the given interval until the
// context is cancelled. Failures are logged and retried next tick.
func (w *RefreshWorker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Refresh worker stopping")
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *RefreshWorker) tick(ctx context.Context) {
	for _, year := range w.trackedYears() {
		if err := w.RefreshYear(ctx, year); err != nil {
			slog.ErrorContext(ctx, "Periodic refresh failed",
				"year", year, "error", err)
		}
	}
	if sweeper, ok := w.backend.(interface{ CleanExpired() int }); ok {
		if dropped := sweeper.CleanExpired(); dropped > 0 {
			slog.DebugContext(ctx, "Swept expired read-cache entries", "count", dropped)
		}
	}
}

// WarmFromSnapshots seeds the caches from the last persisted snapshot so
// data is available before the first backend round trip. Entries are
// flagged stale immediately; a real refresh should follow.
func (w *RefreshWorker) WarmFromSnapshots(ctx context.Context, year string) error {
	if w.snapshots == nil {
		return nil
	}
	w.Track(year)

	commitments, err := w.snapshots.LoadCommitments(ctx, year)
	if err != nil {
		return fmt.Errorf("load commitments snapshot: %w", err)
	}
	expenses, err := w.snapshots.LoadExpenses(ctx, year)
	if err != nil {
		return fmt.Errorf("load expenses snapshot: %w", err)
	}
	incomes, err := w.snapshots.LoadIncomes(ctx, year)
	if err != nil {
		return fmt.Errorf("load incomes snapshot: %w", err)
	}

	w.seedStale(cache.RecordsKey(cache.Commitments, year), commitments)
	w.seedStale(cache.RecordsKey(cache.Expenses, year), expenses)
	w.seedStale(cache.RecordsKey(cache.Incomes, year), incomes)

	d, err := w.snapshots.LoadDashboard(ctx, year)
	if err == nil {
		w.seedStale(cache.DashboardKey(year), d)
	}

	slog.InfoContext(ctx, "Caches warmed from snapshots", "year", year,
		"commitments", len(commitments), "expenses", len(expenses), "incomes", len(incomes))
	return nil
}

func (w *RefreshWorker) seedStale(key cache.Key, v any) {
	w.store.SetAuthoritative(key, v)
	w.store.Invalidate(key)
}

func (w *RefreshWorker) refreshCommitments(ctx context.Context, year string) error {
	records, err := w.backend.ListCommitments(ctx, year)
	if err != nil {
		return fmt.Errorf("list commitments: %w", err)
	}
	w.store.SetAuthoritative(cache.RecordsKey(cache.Commitments, year), records)

	if w.snapshots != nil {
		if err := w.snapshots.SaveCommitments(ctx, year, records); err != nil {
			slog.ErrorContext(ctx, "Failed to persist commitments snapshot",
				"year", year, "error", err)
		}
	}
	return nil
}

func (w *RefreshWorker) refreshExpenses(ctx context.Context, year string) error {
	records, err := w.backend.ListExpenses(ctx, year)
	if err != nil {
		return fmt.Errorf("list expenses: %w", err)
	}
	w.store.SetAuthoritative(cache.RecordsKey(cache.Expenses, year), records)

	if w.snapshots != nil {
		if err := w.snapshots.SaveExpenses(ctx, year, records); err != nil {
			slog.ErrorContext(ctx, "Failed to persist expenses snapshot",
				"year", year, "error", err)
		}
	}
	return nil
}

func (w *RefreshWorker) refreshIncomes(ctx context.Context, year string) error {
	records, err := w.backend.ListIncomes(ctx, year)
	if err != nil {
		return fmt.Errorf("list incomes: %w", err)
	}
	w.store.SetAuthoritative(cache.RecordsKey(cache.Incomes, year), records)

	if w.snapshots != nil {
		if err := w.snapshots.SaveIncomes(ctx, year, records); err != nil {
			slog.ErrorContext(ctx, "Failed to persist incomes snapshot",
				"year", year, "error", err)
		}
	}
	return nil
}

func (w *RefreshWorker) refreshDashboard(ctx context.Context, year string) error {
	// Bypass any read-side cache the adapter keeps: an invalidated
	// dashboard must come from the source.
	if f, ok := w.backend.(interface{ ForgetDashboard(year string) }); ok {
		f.ForgetDashboard(year)
	}

	d, err := w.backend.ReadDashboard(ctx, year)
	if err != nil {
		return fmt.Errorf("read dashboard: %w", err)
	}
	w.store.SetAuthoritative(cache.DashboardKey(year), d)
	w.store.SetAuthoritative(cache.SummaryKey(year), summarize(d))

	if w.snapshots != nil {
		if err := w.snapshots.SaveDashboard(ctx, year, d); err != nil {
			slog.ErrorContext(ctx, "Failed to persist dashboard snapshot",
				"year", year, "error", err)
		}
	}
	return nil
}

// summarize condenses the dashboard into the small header figures shown
// on every screen.
func summarize(d core.Dashboard) core.Summary {
	var s core.Summary
	if n := len(d.MonthlyBalance); n > 0 {
		s.CurrentBalance = d.MonthlyBalance[n-1].Balance
	}
	for _, card := range d.Cards {
		s.TotalStatement = s.TotalStatement.Add(card.StatementTotal)
		s.TotalAvailableLimit = s.TotalAvailableLimit.Add(card.AvailableLimit)
	}
	return s
}

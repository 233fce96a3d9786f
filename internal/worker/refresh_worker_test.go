package worker

import (
	"context"
	"testing"

	"carteira/internal/amqp"
	"carteira/internal/cache"
	"carteira/internal/core"
	"carteira/internal/sheets/memory"
)

func seededBackend(t *testing.T) *memory.Store {
	t.Helper()
	backend := memory.New()
	ctx := context.Background()

	if _, err := backend.AppendCommitment(ctx, "2026", core.Commitment{
		Description: "Internet",
		Category:    "Casa",
		Amount:      core.Money{Cents: 12000},
		DueDate:     "05/01/2026",
		Type:        core.Fixed,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := backend.AppendExpense(ctx, "2026", core.Expense{
		Description: "Padaria",
		Category:    "Alimentação",
		Amount:      core.Money{Cents: 1500},
		PaymentDate: "03/01/2026",
	}); err != nil {
		t.Fatal(err)
	}

	backend.SeedDashboard("2026", core.Dashboard{
		MonthlyBalance: []core.MonthBalance{
			{Date: "2026-01", Balance: core.Money{Cents: 50000}},
			{Date: "2026-02", Balance: core.Money{Cents: 60000}},
		},
		TopCategories: map[string]core.Money{"Casa": {Cents: 12000}},
		Cards: map[string]core.CardSummary{
			"Nubank": {
				TotalLimit:     core.Money{Cents: 100000},
				AvailableLimit: core.Money{Cents: 40000},
				StatementTotal: core.Money{Cents: 25000},
				UsedPercentage: 60,
			},
		},
	})
	return backend
}

func TestHandleInvalidationPromotesAuthoritative(t *testing.T) {
	backend := seededBackend(t)
	store := cache.NewStore()
	w := NewRefreshWorker(backend, store, nil)

	// Stale optimistic state the refresh must replace.
	key := cache.RecordsKey(cache.Commitments, "2026")
	store.SetOptimistic(key, []core.Commitment{{RowIndex: 99, Description: "fantasma"}})
	store.Invalidate(key)

	err := w.HandleInvalidation(context.Background(), &amqp.InvalidationMessage{
		Collection: "commitments", Year: "2026",
	})
	if err != nil {
		t.Fatal(err)
	}

	got := cache.Records[core.Commitment](store, key)
	if len(got) != 1 || got[0].Description != "Internet" {
		t.Fatalf("commitments = %+v", got)
	}
	if store.IsStale(key) {
		t.Fatal("authoritative set must clear the stale flag")
	}
	if store.IsStale(cache.DashboardKey("2026")) {
		t.Fatal("dashboard must be refreshed alongside the records")
	}
}

func TestHandleInvalidationComputesSummary(t *testing.T) {
	backend := seededBackend(t)
	store := cache.NewStore()
	w := NewRefreshWorker(backend, store, nil)

	err := w.HandleInvalidation(context.Background(), &amqp.InvalidationMessage{
		Collection: "dashboard", Year: "2026",
	})
	if err != nil {
		t.Fatal(err)
	}

	v, ok := store.Get(cache.SummaryKey("2026"))
	if !ok {
		t.Fatal("summary missing")
	}
	s := v.(core.Summary)
	if s.CurrentBalance.Cents != 60000 {
		t.Fatalf("current balance = %d", s.CurrentBalance.Cents)
	}
	if s.TotalStatement.Cents != 25000 || s.TotalAvailableLimit.Cents != 40000 {
		t.Fatalf("summary = %+v", s)
	}
}

func TestRefreshYearFetchesEverything(t *testing.T) {
	backend := seededBackend(t)
	store := cache.NewStore()
	w := NewRefreshWorker(backend, store, nil)

	if err := w.RefreshYear(context.Background(), "2026"); err != nil {
		t.Fatal(err)
	}

	for _, key := range []cache.Key{
		cache.RecordsKey(cache.Commitments, "2026"),
		cache.RecordsKey(cache.Expenses, "2026"),
		cache.RecordsKey(cache.Incomes, "2026"),
		cache.DashboardKey("2026"),
		cache.SummaryKey("2026"),
	} {
		if _, ok := store.Get(key); !ok {
			t.Fatalf("key %s not populated", key)
		}
		if store.IsStale(key) {
			t.Fatalf("key %s still stale", key)
		}
	}

	years := w.trackedYears()
	if len(years) != 1 || years[0] != "2026" {
		t.Fatalf("tracked years = %v", years)
	}
}

// sweepingBackend mimics an adapter that keeps a TTL read cache and
// exposes a sweep, like the Sheets client does.
type sweepingBackend struct {
	*memory.Store
	sweeps int
}

func (b *sweepingBackend) CleanExpired() int {
	b.sweeps++
	return 2
}

func TestTickSweepsBackendReadCache(t *testing.T) {
	backend := &sweepingBackend{Store: seededBackend(t)}
	store := cache.NewStore()
	w := NewRefreshWorker(backend, store, nil)
	w.Track("2026")

	w.tick(context.Background())

	if backend.sweeps != 1 {
		t.Fatalf("sweeps = %d, want 1", backend.sweeps)
	}
	if store.IsStale(cache.DashboardKey("2026")) {
		t.Fatal("tick must still refresh the tracked year")
	}
}

func TestRefreshEmptyYear(t *testing.T) {
	backend := memory.New()
	store := cache.NewStore()
	w := NewRefreshWorker(backend, store, nil)

	if err := w.RefreshYear(context.Background(), "1999"); err != nil {
		t.Fatal(err)
	}

	// An empty year still becomes authoritative: empty is an answer.
	key := cache.RecordsKey(cache.Commitments, "1999")
	if store.IsStale(key) {
		t.Fatal("empty refresh must clear the stale flag")
	}
	if got := cache.Records[core.Commitment](store, key); len(got) != 0 {
		t.Fatalf("commitments = %+v", got)
	}
}

package services

import (
	"context"
	"sync"
	"testing"

	"carteira/internal/cache"
	"carteira/internal/core"
	"carteira/internal/sheets/memory"
)

type fakePublisher struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakePublisher) PublishInvalidation(_ context.Context, collection, year string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, collection+":"+year)
	return nil
}

func seededStore(t *testing.T) *cache.Store {
	t.Helper()
	store := cache.NewStore()
	store.SetAuthoritative(cache.DashboardKey("2026"), core.Dashboard{
		MonthlyBalance: []core.MonthBalance{
			{Date: "2026-01", Balance: core.Money{Cents: 1000000}},
			{Date: "2026-02", Balance: core.Money{Cents: 1000000}},
			{Date: "2026-03", Balance: core.Money{Cents: 1000000}},
		},
		TopCategories: map[string]core.Money{},
		Cards: map[string]core.CardSummary{
			"Bradesco": {TotalLimit: core.Money{Cents: 3000000}, AvailableLimit: core.Money{Cents: 3000000}},
		},
	})
	return store
}

func storedDashboard(t *testing.T, store *cache.Store, year string) core.Dashboard {
	t.Helper()
	v, ok := store.Get(cache.DashboardKey(year))
	if !ok {
		t.Fatal("dashboard missing from store")
	}
	return v.(core.Dashboard)
}

func TestCommitmentCreateReconcilesEverything(t *testing.T) {
	backend := memory.New()
	store := seededStore(t)
	pub := &fakePublisher{}
	svc := NewCommitmentService(backend, store, pub)
	ctx := context.Background()

	created, err := svc.Create(ctx, core.Commitment{
		Description:       "Notebook",
		Category:          "Eletrônicos",
		Amount:            core.Money{Cents: 150000},
		DueDate:           "10/01/2026",
		Type:              core.Card,
		CardName:          "Bradesco",
		Installment:       1,
		TotalInstallments: 10,
	})
	if err != nil {
		t.Fatal(err)
	}
	if created.RowIndex != 1 {
		t.Fatalf("row index = %d", created.RowIndex)
	}

	cached := cache.Records[core.Commitment](store, cache.RecordsKey(cache.Commitments, "2026"))
	if len(cached) != 1 || cached[0].Description != "Notebook" {
		t.Fatalf("cache = %+v", cached)
	}

	d := storedDashboard(t, store, "2026")
	card := d.Cards["Bradesco"]
	if card.StatementTotal.Cents != 150000 || card.AvailableLimit.Cents != 1500000 {
		t.Fatalf("card = %+v", card)
	}
	if d.TopCategories["Eletrônicos"].Cents != 150000 {
		t.Fatalf("categories = %+v", d.TopCategories)
	}

	if !store.IsStale(cache.DashboardKey("2026")) || !store.IsStale(cache.SummaryKey("2026")) {
		t.Fatal("derived caches must be stale after a mutation")
	}
	if len(pub.messages) != 1 || pub.messages[0] != "commitments:2026" {
		t.Fatalf("published = %v", pub.messages)
	}
}

func TestCommitmentUpdatePayInstallment(t *testing.T) {
	backend := memory.New()
	store := seededStore(t)
	svc := NewCommitmentService(backend, store, &fakePublisher{})
	ctx := context.Background()

	created, err := svc.Create(ctx, core.Commitment{
		Description:       "Notebook",
		Category:          "Eletrônicos",
		Amount:            core.Money{Cents: 150000},
		DueDate:           "10/01/2026",
		Type:              core.Card,
		CardName:          "Bradesco",
		Installment:       1,
		TotalInstallments: 10,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Paying an unchanged amount frees the hold without moving the statement.
	if _, err := svc.Update(ctx, created, created.Amount, "12/01/2026"); err != nil {
		t.Fatal(err)
	}

	d := storedDashboard(t, store, "2026")
	card := d.Cards["Bradesco"]
	if card.StatementTotal.Cents != 150000 {
		t.Fatalf("statement = %d", card.StatementTotal.Cents)
	}
	if card.AvailableLimit.Cents != 1650000 {
		t.Fatalf("available = %d", card.AvailableLimit.Cents)
	}
	if d.MonthlyBalance[0].Balance.Cents != 850000 {
		t.Fatalf("balance = %d", d.MonthlyBalance[0].Balance.Cents)
	}

	cached := cache.Records[core.Commitment](store, cache.RecordsKey(cache.Commitments, "2026"))
	if cached[0].PaymentDate != "12/01/2026" {
		t.Fatalf("cache not patched: %+v", cached[0])
	}

	backendList, _ := backend.ListCommitments(ctx, "2026")
	if backendList[0].PaymentDate != "12/01/2026" {
		t.Fatalf("backend not updated: %+v", backendList[0])
	}
}

func TestCommitmentDeleteBatchRenumbers(t *testing.T) {
	backend := memory.New()
	store := seededStore(t)
	svc := NewCommitmentService(backend, store, &fakePublisher{})
	ctx := context.Background()

	var all []core.Commitment
	for _, desc := range []string{"A", "B", "C"} {
		c, err := svc.Create(ctx, core.Commitment{
			Description: desc,
			Category:    "Casa",
			Amount:      core.Money{Cents: 10000},
			DueDate:     "10/01/2026",
			Type:        core.Variable,
		})
		if err != nil {
			t.Fatal(err)
		}
		all = append(all, c)
	}

	if err := svc.Delete(ctx, []core.Commitment{all[1]}); err != nil {
		t.Fatal(err)
	}

	cached := cache.Records[core.Commitment](store, cache.RecordsKey(cache.Commitments, "2026"))
	if len(cached) != 2 {
		t.Fatalf("len = %d", len(cached))
	}
	if cached[0].Description != "A" || cached[0].RowIndex != 1 {
		t.Fatalf("first = %+v", cached[0])
	}
	if cached[1].Description != "C" || cached[1].RowIndex != 2 {
		t.Fatalf("second = %+v", cached[1])
	}
}

func TestCreateFixedSeriesSpansMonths(t *testing.T) {
	backend := memory.New()
	store := seededStore(t)
	svc := NewCommitmentService(backend, store, &fakePublisher{})

	created, err := svc.CreateFixedSeries(context.Background(), core.Commitment{
		Description: "Aluguel",
		Category:    "Casa",
		Amount:      core.Money{Cents: 200000},
		DueDate:     "31/01/2026",
		Type:        core.Fixed,
	}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(created) != 3 {
		t.Fatalf("len = %d", len(created))
	}

	wantDates := []string{"31/01/2026", "28/02/2026", "31/03/2026"}
	for i, c := range created {
		if c.DueDate != wantDates[i] {
			t.Fatalf("occurrence %d due %q, want %q", i, c.DueDate, wantDates[i])
		}
	}

	d := storedDashboard(t, store, "2026")
	if d.TopCategories["Casa"].Cents != 600000 {
		t.Fatalf("category = %d", d.TopCategories["Casa"].Cents)
	}
}

func TestCreateFixedSeriesRejectsNonFixed(t *testing.T) {
	svc := NewCommitmentService(memory.New(), cache.NewStore(), nil)
	_, err := svc.CreateFixedSeries(context.Background(), core.Commitment{Type: core.Variable}, 3)
	if err == nil {
		t.Fatal("variable commitments must not expand into a series")
	}
}

func TestPendingAlertsFromCache(t *testing.T) {
	backend := memory.New()
	store := seededStore(t)
	svc := NewCommitmentService(backend, store, &fakePublisher{})
	ctx := context.Background()

	for _, desc := range []string{"Fone", "Tênis"} {
		if _, err := svc.Create(ctx, core.Commitment{
			Description:       desc,
			Category:          "Compras",
			Amount:            core.Money{Cents: 40000},
			DueDate:           "10/01/2026",
			Type:              core.Card,
			CardName:          "Nubank",
			Installment:       1,
			TotalInstallments: 2,
		}); err != nil {
			t.Fatal(err)
		}
	}

	grouped := svc.PendingAlerts("2026")
	if len(grouped.CardGroups) != 1 || grouped.CardGroups[0].Total.Cents != 80000 {
		t.Fatalf("grouped = %+v", grouped)
	}

	if empty := svc.PendingAlerts("1999"); len(empty.CardGroups) != 0 || len(empty.Standalone) != 0 {
		t.Fatalf("unfetched year must be empty, got %+v", empty)
	}
}

func TestCreateWithoutDashboardCache(t *testing.T) {
	// First-load race: a mutation lands before any dashboard fetch.
	backend := memory.New()
	store := cache.NewStore()
	svc := NewCommitmentService(backend, store, &fakePublisher{})

	if _, err := svc.Create(context.Background(), core.Commitment{
		Description: "Água",
		Category:    "Casa",
		Amount:      core.Money{Cents: 9000},
		DueDate:     "10/01/2026",
		Type:        core.Fixed,
	}); err != nil {
		t.Fatal(err)
	}

	if _, ok := store.Get(cache.DashboardKey("2026")); ok {
		t.Fatal("an absent dashboard must stay absent until fetched")
	}
	cached := cache.Records[core.Commitment](store, cache.RecordsKey(cache.Commitments, "2026"))
	if len(cached) != 1 {
		t.Fatalf("record cache must still reconcile, got %+v", cached)
	}
}

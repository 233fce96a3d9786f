package services

import (
	"context"
	"testing"

	"carteira/internal/cache"
	"carteira/internal/core"
	"carteira/internal/sheets/memory"
)

func TestExpenseLifecycle(t *testing.T) {
	backend := memory.New()
	store := seededStore(t)
	svc := NewExpenseService(backend, store, &fakePublisher{})
	ctx := context.Background()

	created, err := svc.Create(ctx, core.Expense{
		Description: "Mercado",
		Category:    "Alimentação",
		Amount:      core.Money{Cents: 35000},
		PaymentDate: "05/02/2026",
	})
	if err != nil {
		t.Fatal(err)
	}

	d := storedDashboard(t, store, "2026")
	if d.MonthlyBalance[1].Balance.Cents != 965000 {
		t.Fatalf("february balance = %d", d.MonthlyBalance[1].Balance.Cents)
	}
	if d.TopCategories["Alimentação"].Cents != 35000 {
		t.Fatalf("category = %d", d.TopCategories["Alimentação"].Cents)
	}

	if _, err := svc.Update(ctx, created, core.Money{Cents: 42000}); err != nil {
		t.Fatal(err)
	}
	d = storedDashboard(t, store, "2026")
	if d.MonthlyBalance[1].Balance.Cents != 958000 {
		t.Fatalf("balance after edit = %d", d.MonthlyBalance[1].Balance.Cents)
	}
	if d.TopCategories["Alimentação"].Cents != 42000 {
		t.Fatalf("category after edit = %d", d.TopCategories["Alimentação"].Cents)
	}

	// Deletes undo the edited amount, not the original one.
	edited := created
	edited.Amount = core.Money{Cents: 42000}
	if err := svc.Delete(ctx, []core.Expense{edited}); err != nil {
		t.Fatal(err)
	}
	d = storedDashboard(t, store, "2026")
	if d.MonthlyBalance[1].Balance.Cents != 1000000 {
		t.Fatalf("balance after delete = %d", d.MonthlyBalance[1].Balance.Cents)
	}
	if _, ok := d.TopCategories["Alimentação"]; ok {
		t.Fatal("emptied category must disappear")
	}
	if got := cache.Records[core.Expense](store, cache.RecordsKey(cache.Expenses, "2026")); len(got) != 0 {
		t.Fatalf("records after delete = %+v", got)
	}
}

func TestExpenseCreateRejectsInvalid(t *testing.T) {
	backend := memory.New()
	store := cache.NewStore()
	svc := NewExpenseService(backend, store, &fakePublisher{})

	_, err := svc.Create(context.Background(), core.Expense{
		Category:    "Alimentação",
		Amount:      core.Money{Cents: 1000},
		PaymentDate: "05/02/2026",
	})
	if err == nil {
		t.Fatal("expected a validation error for the missing description")
	}
	if got, _ := backend.ListExpenses(context.Background(), "2026"); len(got) != 0 {
		t.Fatal("a rejected expense must never reach the backend")
	}
}

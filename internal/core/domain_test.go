package core

import (
	"errors"
	"testing"
)

func TestCommitmentValidate(t *testing.T) {
	valid := Commitment{
		Description: "Internet",
		Category:    "Casa",
		Amount:      Money{Cents: 9990},
		DueDate:     "10/01/2026",
		Type:        Fixed,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Commitment)
		want   error
	}{
		{"empty description", func(c *Commitment) { c.Description = " " }, ErrEmptyDescription},
		{"empty category", func(c *Commitment) { c.Category = "" }, ErrEmptyCategory},
		{"zero amount", func(c *Commitment) { c.Amount = Money{} }, ErrInvalidAmount},
		{"empty due date", func(c *Commitment) { c.DueDate = "" }, ErrEmptyDueDate},
		{"card without name", func(c *Commitment) { c.Type = Card; c.Installment = 1; c.TotalInstallments = 3 }, ErrEmptyCardName},
		{"card bad installment", func(c *Commitment) {
			c.Type = Card
			c.CardName = "Nubank"
			c.Installment = 4
			c.TotalInstallments = 3
		}, ErrBadInstallment},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid
			tc.mutate(&c)
			if err := c.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestIncomeValidate(t *testing.T) {
	base := Income{
		Description:  "Salário",
		Amount:       Money{Cents: 500000},
		ExpectedDate: "01/03/2026",
	}
	// No category: incomes never feed the category totals.
	if err := base.Validate(); err != nil {
		t.Fatalf("income without category rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Income)
	}{
		{"empty description", func(i *Income) { i.Description = " " }},
		{"zero amount", func(i *Income) { i.Amount = Money{} }},
		{"empty expected date", func(i *Income) { i.ExpectedDate = "" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			i := base
			tc.mutate(&i)
			if err := i.Validate(); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}
}

func TestPendingSettled(t *testing.T) {
	c := Commitment{DueDate: "10/01/2026"}
	if !c.Pending() || c.Settled() {
		t.Fatal("commitment without payment date must be pending")
	}
	c.PaymentDate = "09/01/2026"
	if c.Pending() || !c.Settled() {
		t.Fatal("commitment with payment date must be settled")
	}

	i := Income{ExpectedDate: "05/01/2026"}
	if i.Received() {
		t.Fatal("income without received date must not be received")
	}
	i.ReceivedDate = "05/01/2026"
	if !i.Received() {
		t.Fatal("income with received date must be received")
	}
}

func TestDashboardClone(t *testing.T) {
	d := Dashboard{
		MonthlyBalance: []MonthBalance{{Date: "2026-01", Balance: Money{Cents: 100}}},
		TopCategories:  map[string]Money{"Casa": {Cents: 200}},
		Cards:          map[string]CardSummary{"Nubank": {TotalLimit: Money{Cents: 1000}}},
	}
	c := d.Clone()
	c.MonthlyBalance[0].Balance = Money{Cents: 999}
	c.TopCategories["Casa"] = Money{Cents: 999}
	c.Cards["Nubank"] = CardSummary{}

	if d.MonthlyBalance[0].Balance.Cents != 100 {
		t.Fatal("clone shares monthly balance backing array")
	}
	if d.TopCategories["Casa"].Cents != 200 {
		t.Fatal("clone shares category map")
	}
	if d.Cards["Nubank"].TotalLimit.Cents != 1000 {
		t.Fatal("clone shares card map")
	}
}

package google

import (
	"testing"

	"carteira/internal/core"
)

func TestParseCommitments(t *testing.T) {
	values := [][]any{
		{"Notebook", "Eletrônicos", "R$ 1.500,00", "10/01/2026", "", "Cartão", "Bradesco", "1", "10"},
		{"Aluguel", "Casa", "R$ 2.000,00", "05/01/2026", "05/01/2026", "Fixo"},
		{""}, // deleted row left blank
		{"Encanador", "Casa", "120", "15/01/2026", "", "Variável"},
	}

	out := parseCommitments(values)
	if len(out) != 3 {
		t.Fatalf("len = %d", len(out))
	}

	nb := out[0]
	if nb.RowIndex != 1 || nb.Type != core.Card || nb.CardName != "Bradesco" {
		t.Fatalf("notebook = %+v", nb)
	}
	if nb.Amount.Cents != 150000 || nb.Installment != 1 || nb.TotalInstallments != 10 {
		t.Fatalf("notebook numbers = %+v", nb)
	}
	if !nb.Pending() {
		t.Fatal("notebook must be pending")
	}

	rent := out[1]
	if rent.RowIndex != 2 || !rent.Settled() || rent.Type != core.Fixed {
		t.Fatalf("rent = %+v", rent)
	}

	if out[2].RowIndex != 3 || out[2].Amount.Cents != 12000 {
		t.Fatalf("plumber = %+v", out[2])
	}
}

func TestParseExpensesAndIncomes(t *testing.T) {
	expenses := parseExpenses([][]any{
		{"Mercado", "Alimentação", "R$ 450,00", "08/01/2026"},
	})
	if len(expenses) != 1 || expenses[0].Amount.Cents != 45000 || expenses[0].PaymentDate != "08/01/2026" {
		t.Fatalf("expenses = %+v", expenses)
	}

	incomes := parseIncomes([][]any{
		{"Salário", "Trabalho", "R$ 7.000,00", "05/01/2026", "05/01/2026"},
		{"Freela", "Trabalho", "R$ 1.200,00", "20/01/2026", ""},
	})
	if len(incomes) != 2 {
		t.Fatalf("incomes = %+v", incomes)
	}
	if !incomes[0].Received() || incomes[1].Received() {
		t.Fatal("received flags wrong")
	}
}

func TestParseDashboard(t *testing.T) {
	balances := [][]any{
		{"2026-01", "R$ 10.000,00"},
		{"2026-02", "R$ 8.500,00"},
	}
	categories := [][]any{
		{"Casa", "R$ 2.000,00"},
		{"Alimentação", "R$ 450,00"},
	}
	cards := [][]any{
		{"Bradesco", "R$ 30.000,00", "R$ 15.000,00", "R$ 1.500,00"},
	}

	d := parseDashboard(balances, categories, cards)

	if len(d.MonthlyBalance) != 2 || d.MonthlyBalance[0].Balance.Cents != 1000000 {
		t.Fatalf("balances = %+v", d.MonthlyBalance)
	}
	if d.TopCategories["Casa"].Cents != 200000 {
		t.Fatalf("categories = %+v", d.TopCategories)
	}
	card := d.Cards["Bradesco"]
	if card.TotalLimit.Cents != 3000000 || card.AvailableLimit.Cents != 1500000 {
		t.Fatalf("card = %+v", card)
	}
	if card.StatementTotal.Cents != 150000 {
		t.Fatalf("statement = %d", card.StatementTotal.Cents)
	}
	if card.UsedPercentage != 50 {
		t.Fatalf("used = %d", card.UsedPercentage)
	}
}

func TestRowIndexFromRange(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"2026 Despesas!A7:D7", 6},
		{"Receitas!A2:E2", 1},
		{"A1:B1", 0}, // header row is never a record
		{"garbage", 0},
	}
	for _, tc := range cases {
		if got := rowIndexFromRange(tc.in); got != tc.want {
			t.Fatalf("rowIndexFromRange(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

package google

import (
	"strconv"
	"strings"

	"carteira/internal/core"
)

// Row layouts, data starting at sheet row 2 (row 1 is the header).
// Commitments: description, category, amount, due date, payment date,
// type, card, installment, total installments.
// Expenses: description, category, amount, payment date.
// Incomes: description, category, amount, expected date, received date.

func commitmentToRow(c core.Commitment) []any {
	return []any{
		c.Description,
		c.Category,
		c.Amount.Format(),
		c.DueDate,
		c.PaymentDate,
		string(c.Type),
		c.CardName,
		c.Installment,
		c.TotalInstallments,
	}
}

func expenseToRow(e core.Expense) []any {
	return []any{e.Description, e.Category, e.Amount.Format(), e.PaymentDate}
}

func incomeToRow(i core.Income) []any {
	return []any{i.Description, i.Category, i.Amount.Format(), i.ExpectedDate, i.ReceivedDate}
}

// parseCommitments converts a values matrix (as returned by the Sheets
// API, without the header row) into commitments. Row indexes are assigned
// from the matrix position; blank description rows are skipped the way the
// spreadsheet leaves deleted rows.
func parseCommitments(values [][]any) []core.Commitment {
	out := make([]core.Commitment, 0, len(values))
	for _, row := range values {
		desc := cellString(row, 0)
		if desc == "" {
			continue
		}
		out = append(out, core.Commitment{
			RowIndex:          len(out) + 1,
			Description:       desc,
			Category:          cellString(row, 1),
			Amount:            core.ParseCurrency(cellString(row, 2)),
			DueDate:           cellString(row, 3),
			PaymentDate:       cellString(row, 4),
			Type:              core.CommitmentType(cellString(row, 5)),
			CardName:          cellString(row, 6),
			Installment:       cellInt(row, 7),
			TotalInstallments: cellInt(row, 8),
		})
	}
	return out
}

func parseExpenses(values [][]any) []core.Expense {
	out := make([]core.Expense, 0, len(values))
	for _, row := range values {
		desc := cellString(row, 0)
		if desc == "" {
			continue
		}
		out = append(out, core.Expense{
			RowIndex:    len(out) + 1,
			Description: desc,
			Category:    cellString(row, 1),
			Amount:      core.ParseCurrency(cellString(row, 2)),
			PaymentDate: cellString(row, 3),
		})
	}
	return out
}

func parseIncomes(values [][]any) []core.Income {
	out := make([]core.Income, 0, len(values))
	for _, row := range values {
		desc := cellString(row, 0)
		if desc == "" {
			continue
		}
		out = append(out, core.Income{
			RowIndex:     len(out) + 1,
			Description:  desc,
			Category:     cellString(row, 1),
			Amount:       core.ParseCurrency(cellString(row, 2)),
			ExpectedDate: cellString(row, 3),
			ReceivedDate: cellString(row, 4),
		})
	}
	return out
}

// parseDashboard assembles a dashboard from the three ranges of the
// dashboard tab: month balances (date, balance), category totals
// (name, total) and card summaries (name, total limit, available limit,
// statement total). The used percentage is derived, never read.
func parseDashboard(balances, categories, cards [][]any) core.Dashboard {
	d := core.Dashboard{
		TopCategories: map[string]core.Money{},
		Cards:         map[string]core.CardSummary{},
	}

	for _, row := range balances {
		date := cellString(row, 0)
		if date == "" {
			continue
		}
		d.MonthlyBalance = append(d.MonthlyBalance, core.MonthBalance{
			Date:    date,
			Balance: core.ParseCurrency(cellString(row, 1)),
		})
	}

	for _, row := range categories {
		name := cellString(row, 0)
		if name == "" {
			continue
		}
		d.TopCategories[name] = core.ParseCurrency(cellString(row, 1))
	}

	for _, row := range cards {
		name := cellString(row, 0)
		if name == "" {
			continue
		}
		total := core.ParseCurrency(cellString(row, 1))
		available := core.ParseCurrency(cellString(row, 2))
		d.Cards[name] = core.CardSummary{
			TotalLimit:     total,
			AvailableLimit: available,
			StatementTotal: core.ParseCurrency(cellString(row, 3)),
			UsedPercentage: usedPercent(total, available),
		}
	}
	return d
}

func usedPercent(totalLimit, availableLimit core.Money) int {
	if totalLimit.Cents == 0 {
		return 0
	}
	used := totalLimit.Cents - availableLimit.Cents
	// Round half away from zero on integer cents.
	return int((used*200 + totalLimit.Cents) / (2 * totalLimit.Cents))
}

func cellString(row []any, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	switch v := row[i].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

func cellInt(row []any, i int) int {
	s := cellString(row, i)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

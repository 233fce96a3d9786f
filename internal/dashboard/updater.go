// Package dashboard keeps the locally cached dashboard aggregate consistent
// with record mutations without refetching from the spreadsheet backend.
//
// Every function is pure: it takes a snapshot, returns a new snapshot and
// never mutates its input, so callers may hold references to older
// snapshots. Missing months, categories or cards make the corresponding
// update a no-op rather than an error; the aggregate is approximate by
// design and is superseded by the next authoritative refetch.
package dashboard

import (
	"math"

	"carteira/internal/core"
)

// AdjustMonthlyBalance adds a signed delta to the balance of the month at
// monthIndex. An out-of-range index leaves the snapshot unchanged.
func AdjustMonthlyBalance(d core.Dashboard, monthIndex int, delta core.Money) core.Dashboard {
	if monthIndex < 0 || monthIndex >= len(d.MonthlyBalance) {
		return d
	}
	out := d.Clone()
	out.MonthlyBalance[monthIndex].Balance = out.MonthlyBalance[monthIndex].Balance.Add(delta)
	return out
}

// AddToCategory creates the category with the given total when absent,
// otherwise accumulates into the existing total.
func AddToCategory(d core.Dashboard, category string, amount core.Money) core.Dashboard {
	out := d.Clone()
	if out.TopCategories == nil {
		out.TopCategories = map[string]core.Money{}
	}
	out.TopCategories[category] = out.TopCategories[category].Add(amount)
	return out
}

// UpdateCategory adds a signed difference to an existing category total.
// Absent categories are left alone.
func UpdateCategory(d core.Dashboard, category string, difference core.Money) core.Dashboard {
	current, ok := d.TopCategories[category]
	if !ok {
		return d
	}
	out := d.Clone()
	out.TopCategories[category] = current.Add(difference)
	return out
}

// RemoveFromCategory subtracts the amount from a category total, dropping
// the entry entirely once the total reaches zero or below. Zero and
// negative totals carry no signal and must not linger.
func RemoveFromCategory(d core.Dashboard, category string, amount core.Money) core.Dashboard {
	current, ok := d.TopCategories[category]
	if !ok {
		return d
	}
	out := d.Clone()
	remaining := current.Sub(amount)
	if remaining.Cents <= 0 {
		delete(out.TopCategories, category)
	} else {
		out.TopCategories[category] = remaining
	}
	return out
}

// AdjustCard applies a statement delta and a limit delta to the named card
// and recomputes its used percentage. Unknown cards are a no-op.
func AdjustCard(d core.Dashboard, cardName string, statementDelta, limitDelta core.Money) core.Dashboard {
	card, ok := d.Cards[cardName]
	if !ok {
		return d
	}
	out := d.Clone()
	card.StatementTotal = card.StatementTotal.Add(statementDelta)
	card.AvailableLimit = card.AvailableLimit.Add(limitDelta)
	card.UsedPercentage = usedPercent(card.TotalLimit, card.AvailableLimit)
	out.Cards[cardName] = card
	return out
}

// ApplyCardPurchase registers a new installment purchase: the current
// statement grows by one installment while the whole purchase total is
// reserved against the available limit at creation time.
func ApplyCardPurchase(d core.Dashboard, cardName string, installmentAmount, totalPurchaseAmount core.Money) core.Dashboard {
	return AdjustCard(d, cardName, installmentAmount, totalPurchaseAmount.Neg())
}

// ReverseCardPurchase undoes one installment's contribution. The limit is
// restored only when the installment had not been paid; a paid installment
// already freed its hold and must not be double-freed.
func ReverseCardPurchase(d core.Dashboard, cardName string, installmentAmount core.Money, wasAlreadyPaid bool) core.Dashboard {
	limitDelta := core.Money{}
	if !wasAlreadyPaid {
		limitDelta = installmentAmount
	}
	return AdjustCard(d, cardName, installmentAmount.Neg(), limitDelta)
}

// usedPercent derives the used-limit percentage. A zero total limit yields
// zero rather than dividing by it.
func usedPercent(totalLimit, availableLimit core.Money) int {
	if totalLimit.Cents == 0 {
		return 0
	}
	used := float64(totalLimit.Cents - availableLimit.Cents)
	return int(math.Round(used / float64(totalLimit.Cents) * 100))
}

// MonthIndexOf finds the MonthlyBalance position whose date matches the
// month and year of the given date text, or -1 when the aggregate does not
// cover that month.
func MonthIndexOf(d core.Dashboard, dateText string) int {
	month, year := core.MonthYearOf(dateText)
	if month == "" || year == "" {
		return -1
	}
	key := year + "-" + pad2(month)
	for i, mb := range d.MonthlyBalance {
		if mb.Date == key {
			return i
		}
	}
	return -1
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

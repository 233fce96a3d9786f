package dashboard

import (
	"strings"

	"carteira/internal/core"
)

// The reconciliation functions below translate a confirmed record mutation
// into aggregate updates. Callers pass the record state captured before the
// mutation plus the newly written values; the delta arithmetic depends on
// both sides.

// CommitmentCreated applies a freshly created commitment to the aggregate.
//
// Card purchases reserve the full remaining purchase total against the
// limit at creation time, while only the single installment enters the
// statement. Non-card commitments touch the month balance only when they
// are already settled at creation.
func CommitmentCreated(d core.Dashboard, c core.Commitment) core.Dashboard {
	d = AddToCategory(d, c.Category, c.Amount)

	if c.Type == core.Card {
		remaining := c.TotalInstallments - c.Installment + 1
		if remaining < 1 {
			remaining = 1
		}
		return ApplyCardPurchase(d, c.CardName, c.Amount, c.Amount.Mul(remaining))
	}

	if c.Settled() {
		d = AdjustMonthlyBalance(d, MonthIndexOf(d, c.PaymentDate), c.Amount.Neg())
	}
	return d
}

// CommitmentEdited reconciles an amount and/or payment-date change.
//
// Unlike creation, an edit of a card installment only moves that single
// installment's reservation, never the full purchase total.
func CommitmentEdited(d core.Dashboard, old core.Commitment, newAmount core.Money, newPaymentDate string) core.Dashboard {
	wasPaid := old.Settled()
	isPaid := strings.TrimSpace(newPaymentDate) != ""
	amountChanged := newAmount != old.Amount

	switch {
	case !wasPaid && isPaid:
		d = AdjustMonthlyBalance(d, MonthIndexOf(d, newPaymentDate), newAmount.Neg())
	case wasPaid && !isPaid:
		d = AdjustMonthlyBalance(d, MonthIndexOf(d, old.PaymentDate), old.Amount)
	case wasPaid && isPaid && amountChanged:
		d = AdjustMonthlyBalance(d, MonthIndexOf(d, old.PaymentDate), old.Amount.Sub(newAmount))
	}

	if old.Type != core.Card {
		return d
	}

	diff := newAmount.Sub(old.Amount)
	var statementDelta, limitDelta core.Money
	switch {
	case !wasPaid && isPaid:
		// Paying frees the hold based on the pre-edit reserved amount.
		statementDelta = diff
		limitDelta = old.Amount
	case wasPaid && !isPaid:
		// Reverting to unpaid re-reserves the original amount.
		limitDelta = old.Amount.Neg()
	case !wasPaid && !isPaid && amountChanged:
		statementDelta = diff
		limitDelta = diff.Neg()
	case wasPaid && isPaid && amountChanged:
		statementDelta = diff
	default:
		return d
	}
	return AdjustCard(d, old.CardName, statementDelta, limitDelta)
}

// CommitmentDeleted reverses a commitment's contribution to the aggregate.
func CommitmentDeleted(d core.Dashboard, c core.Commitment) core.Dashboard {
	d = RemoveFromCategory(d, c.Category, c.Amount)
	if c.Settled() {
		d = AdjustMonthlyBalance(d, MonthIndexOf(d, c.PaymentDate), c.Amount)
	}
	if c.Type == core.Card {
		d = ReverseCardPurchase(d, c.CardName, c.Amount, c.Settled())
	}
	return d
}

// ExpenseCreated applies a new expense. Expenses have no pending state:
// they always hit the month balance immediately.
func ExpenseCreated(d core.Dashboard, e core.Expense) core.Dashboard {
	d = AdjustMonthlyBalance(d, MonthIndexOf(d, e.PaymentDate), e.Amount.Neg())
	return AddToCategory(d, e.Category, e.Amount)
}

// ExpenseEdited reconciles an expense amount change.
func ExpenseEdited(d core.Dashboard, old core.Expense, newAmount core.Money) core.Dashboard {
	d = AdjustMonthlyBalance(d, MonthIndexOf(d, old.PaymentDate), old.Amount.Sub(newAmount))
	return UpdateCategory(d, old.Category, newAmount.Sub(old.Amount))
}

// ExpenseDeleted reverses an expense's contribution.
func ExpenseDeleted(d core.Dashboard, e core.Expense) core.Dashboard {
	d = AdjustMonthlyBalance(d, MonthIndexOf(d, e.PaymentDate), e.Amount)
	return RemoveFromCategory(d, e.Category, e.Amount)
}

// IncomeCreated applies a new income to the month balance.
func IncomeCreated(d core.Dashboard, i core.Income) core.Dashboard {
	return AdjustMonthlyBalance(d, MonthIndexOf(d, i.ExpectedDate), i.Amount)
}

// IncomeEdited reconciles an income amount and/or received-date change.
func IncomeEdited(d core.Dashboard, old core.Income, newAmount core.Money, newReceivedDate string) core.Dashboard {
	wasReceived := old.Received()
	isReceived := strings.TrimSpace(newReceivedDate) != ""
	idx := MonthIndexOf(d, old.ExpectedDate)

	switch {
	case wasReceived && isReceived:
		return AdjustMonthlyBalance(d, idx, newAmount.Sub(old.Amount))
	case !wasReceived && isReceived:
		return AdjustMonthlyBalance(d, idx, newAmount)
	case wasReceived && !isReceived:
		return AdjustMonthlyBalance(d, idx, old.Amount.Neg())
	}
	return d
}

// IncomeDeleted reverses an income's contribution when it had been received.
func IncomeDeleted(d core.Dashboard, i core.Income) core.Dashboard {
	if !i.Received() {
		return d
	}
	return AdjustMonthlyBalance(d, MonthIndexOf(d, i.ExpectedDate), i.Amount.Neg())
}

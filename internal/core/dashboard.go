package core

// MonthBalance is one month's running net balance. Date is "YYYY-MM".
type MonthBalance struct {
	Date    string
	Balance Money
}

// CardSummary tracks a credit card's limit usage and current statement.
//
// StatementTotal is the sum of unpaid, due-this-cycle installment amounts.
// AvailableLimit is TotalLimit minus the outstanding principal reserved
// across every installment, not just the current statement; the two move
// independently. UsedPercentage is always derived from the limits, never
// stored on its own.
type CardSummary struct {
	TotalLimit     Money
	AvailableLimit Money
	StatementTotal Money
	UsedPercentage int
}

// Summary holds the header figures shown on every screen, condensed from
// the dashboard.
type Summary struct {
	CurrentBalance      Money
	TotalStatement      Money
	TotalAvailableLimit Money
}

// Dashboard is the derived, locally cached summary distinct from the
// authoritative server-computed one. It is patched incrementally after
// every record mutation until the next authoritative refetch.
type Dashboard struct {
	MonthlyBalance []MonthBalance
	TopCategories  map[string]Money
	Cards          map[string]CardSummary
}

// Clone returns a deep copy. Updater functions return fresh snapshots so
// callers may keep references to older ones.
func (d Dashboard) Clone() Dashboard {
	out := Dashboard{
		MonthlyBalance: make([]MonthBalance, len(d.MonthlyBalance)),
		TopCategories:  make(map[string]Money, len(d.TopCategories)),
		Cards:          make(map[string]CardSummary, len(d.Cards)),
	}
	copy(out.MonthlyBalance, d.MonthlyBalance)
	for k, v := range d.TopCategories {
		out.TopCategories[k] = v
	}
	for k, v := range d.Cards {
		out.Cards[k] = v
	}
	return out
}

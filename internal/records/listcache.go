// Package records maintains the sorted, row-indexed record lists cached
// per year. One generic implementation serves commitments, expenses and
// incomes; each instantiation only differs in which date field drives the
// sort order.
//
// Every operation returns a fresh slice and leaves its input untouched.
// A nil cached slice means the year was never fetched; reconciliation
// still proceeds and yields a singleton or empty result, since a later
// authoritative refetch supersedes whatever is produced here.
package records

import (
	"sort"

	"carteira/internal/core"
)

// Accessors describes the record shape to the generic cache: its identity
// key, the date field that drives sorting and the tie-break description.
type Accessors[T any] struct {
	RowIndex     func(T) int
	WithRowIndex func(T, int) T
	SortDate     func(T) string // DD/MM/YYYY text
	Description  func(T) string
}

type ListCache[T any] struct {
	acc Accessors[T]
}

func New[T any](acc Accessors[T]) ListCache[T] {
	return ListCache[T]{acc: acc}
}

// AfterCreate appends the new record and re-establishes the sort order.
func (lc ListCache[T]) AfterCreate(cached []T, rec T) []T {
	out := make([]T, 0, len(cached)+1)
	out = append(out, cached...)
	out = append(out, rec)
	lc.sortRecords(out)
	return out
}

// AfterEdit replaces the entry whose row index matches old, applying the
// patch to the cached entry. The list is not re-sorted: edits touch
// amounts and settle dates, never the sort-date field.
func (lc ListCache[T]) AfterEdit(cached []T, old T, patch func(T) T) []T {
	out := make([]T, len(cached))
	oldIndex := lc.acc.RowIndex(old)
	for i, rec := range cached {
		if lc.acc.RowIndex(rec) == oldIndex {
			out[i] = patch(rec)
		} else {
			out[i] = rec
		}
	}
	return out
}

// AfterDelete removes every entry whose row index is among the deleted
// records, renumbers the survivors down by the count of deleted indices
// below their own, and re-sorts. Row indices stay dense: exactly 1..N.
func (lc ListCache[T]) AfterDelete(cached []T, deleted []T) []T {
	removed := make(map[int]bool, len(deleted))
	for _, rec := range deleted {
		removed[lc.acc.RowIndex(rec)] = true
	}

	out := make([]T, 0, len(cached))
	for _, rec := range cached {
		idx := lc.acc.RowIndex(rec)
		if removed[idx] {
			continue
		}
		shift := 0
		for deletedIdx := range removed {
			if deletedIdx < idx {
				shift++
			}
		}
		out = append(out, lc.acc.WithRowIndex(rec, idx-shift))
	}
	lc.sortRecords(out)
	return out
}

func (lc ListCache[T]) sortRecords(list []T) {
	sort.SliceStable(list, func(i, j int) bool {
		di := core.DateToISO(lc.acc.SortDate(list[i]))
		dj := core.DateToISO(lc.acc.SortDate(list[j]))
		if di != dj {
			return di < dj
		}
		return lc.acc.Description(list[i]) < lc.acc.Description(list[j])
	})
}

// Commitments returns the cache instance sorted by due date.
func Commitments() ListCache[core.Commitment] {
	return New(Accessors[core.Commitment]{
		RowIndex: func(c core.Commitment) int { return c.RowIndex },
		WithRowIndex: func(c core.Commitment, i int) core.Commitment {
			c.RowIndex = i
			return c
		},
		SortDate:    func(c core.Commitment) string { return c.DueDate },
		Description: func(c core.Commitment) string { return c.Description },
	})
}

// Expenses returns the cache instance sorted by payment date.
func Expenses() ListCache[core.Expense] {
	return New(Accessors[core.Expense]{
		RowIndex: func(e core.Expense) int { return e.RowIndex },
		WithRowIndex: func(e core.Expense, i int) core.Expense {
			e.RowIndex = i
			return e
		},
		SortDate:    func(e core.Expense) string { return e.PaymentDate },
		Description: func(e core.Expense) string { return e.Description },
	})
}

// Incomes returns the cache instance sorted by expected date.
func Incomes() ListCache[core.Income] {
	return New(Accessors[core.Income]{
		RowIndex: func(i core.Income) int { return i.RowIndex },
		WithRowIndex: func(inc core.Income, i int) core.Income {
			inc.RowIndex = i
			return inc
		},
		SortDate:    func(i core.Income) string { return i.ExpectedDate },
		Description: func(i core.Income) string { return i.Description },
	})
}

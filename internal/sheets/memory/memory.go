// Package memory is an in-process backend used by tests and as the default
// when no spreadsheet is configured. It mimics the spreadsheet's behavior
// of assigning dense row indexes on append.
package memory

import (
	"context"
	"fmt"
	"sync"

	"carteira/internal/core"
	"carteira/internal/sheets"
)

type Store struct {
	mu          sync.Mutex
	commitments map[string][]core.Commitment
	expenses    map[string][]core.Expense
	incomes     map[string][]core.Income
	dashboards  map[string]core.Dashboard
}

var _ sheets.Backend = (*Store)(nil)

func New() *Store {
	return &Store{
		commitments: map[string][]core.Commitment{},
		expenses:    map[string][]core.Expense{},
		incomes:     map[string][]core.Income{},
		dashboards:  map[string]core.Dashboard{},
	}
}

// SeedDashboard installs a dashboard snapshot for a year.
func (s *Store) SeedDashboard(year string, d core.Dashboard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dashboards[year] = d
}

func (s *Store) AppendCommitment(_ context.Context, year string, c core.Commitment) (int, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c.RowIndex = len(s.commitments[year]) + 1
	s.commitments[year] = append(s.commitments[year], c)
	return c.RowIndex, nil
}

func (s *Store) UpdateCommitment(_ context.Context, year string, c core.Commitment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.commitments[year]
	for i := range list {
		if list[i].RowIndex == c.RowIndex {
			list[i] = c
			return nil
		}
	}
	return fmt.Errorf("commitment %d not found in %s", c.RowIndex, year)
}

func (s *Store) DeleteCommitments(_ context.Context, year string, rowIndexes []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitments[year] = deleteRows(s.commitments[year],
		func(c core.Commitment) int { return c.RowIndex },
		func(c core.Commitment, i int) core.Commitment { c.RowIndex = i; return c },
		rowIndexes)
	return nil
}

func (s *Store) ListCommitments(_ context.Context, year string) ([]core.Commitment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Commitment(nil), s.commitments[year]...), nil
}

func (s *Store) AppendExpense(_ context.Context, year string, e core.Expense) (int, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e.RowIndex = len(s.expenses[year]) + 1
	s.expenses[year] = append(s.expenses[year], e)
	return e.RowIndex, nil
}

func (s *Store) UpdateExpense(_ context.Context, year string, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.expenses[year]
	for i := range list {
		if list[i].RowIndex == e.RowIndex {
			list[i] = e
			return nil
		}
	}
	return fmt.Errorf("expense %d not found in %s", e.RowIndex, year)
}

func (s *Store) DeleteExpenses(_ context.Context, year string, rowIndexes []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses[year] = deleteRows(s.expenses[year],
		func(e core.Expense) int { return e.RowIndex },
		func(e core.Expense, i int) core.Expense { e.RowIndex = i; return e },
		rowIndexes)
	return nil
}

func (s *Store) ListExpenses(_ context.Context, year string) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.expenses[year]...), nil
}

func (s *Store) AppendIncome(_ context.Context, year string, i core.Income) (int, error) {
	if err := i.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i.RowIndex = len(s.incomes[year]) + 1
	s.incomes[year] = append(s.incomes[year], i)
	return i.RowIndex, nil
}

func (s *Store) UpdateIncome(_ context.Context, year string, inc core.Income) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.incomes[year]
	for i := range list {
		if list[i].RowIndex == inc.RowIndex {
			list[i] = inc
			return nil
		}
	}
	return fmt.Errorf("income %d not found in %s", inc.RowIndex, year)
}

func (s *Store) DeleteIncomes(_ context.Context, year string, rowIndexes []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incomes[year] = deleteRows(s.incomes[year],
		func(i core.Income) int { return i.RowIndex },
		func(inc core.Income, i int) core.Income { inc.RowIndex = i; return inc },
		rowIndexes)
	return nil
}

func (s *Store) ListIncomes(_ context.Context, year string) ([]core.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Income(nil), s.incomes[year]...), nil
}

// ReadDashboard returns the seeded dashboard for the year, or an empty one.
func (s *Store) ReadDashboard(_ context.Context, year string) (core.Dashboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.dashboards[year]; ok {
		return d.Clone(), nil
	}
	return core.Dashboard{
		TopCategories: map[string]core.Money{},
		Cards:         map[string]core.CardSummary{},
	}, nil
}

// deleteRows drops the named row indexes and renumbers survivors densely,
// matching the spreadsheet's row-shift behavior.
func deleteRows[T any](list []T, rowIndex func(T) int, withRowIndex func(T, int) T, rowIndexes []int) []T {
	removed := make(map[int]bool, len(rowIndexes))
	for _, i := range rowIndexes {
		removed[i] = true
	}
	out := make([]T, 0, len(list))
	next := 1
	for _, rec := range list {
		if removed[rowIndex(rec)] {
			continue
		}
		out = append(out, withRowIndex(rec, next))
		next++
	}
	return out
}

// Package cache provides the in-memory stores shared by the reconciliation
// services: a two-tier key-value store for record lists and dashboard
// snapshots, plus a TTL'd LRU used for read-side caching in the spreadsheet
// adapter.
package cache

import (
	"fmt"
	"sync"
)

type Collection string

const (
	Commitments Collection = "commitments"
	Expenses    Collection = "expenses"
	Incomes     Collection = "incomes"
	Dashboards  Collection = "dashboard"
	Summaries   Collection = "summary"
)

// Key addresses one cached collection, scoped by year.
type Key struct {
	Collection Collection
	Year       string
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s", k.Collection, k.Year)
}

// RecordsKey builds the key for a record list collection.
func RecordsKey(c Collection, year string) Key {
	return Key{Collection: c, Year: year}
}

// DashboardKey builds the key for the derived dashboard of a year.
func DashboardKey(year string) Key {
	return Key{Collection: Dashboards, Year: year}
}

// SummaryKey builds the key for the authoritative summary of a year.
func SummaryKey(year string) Key {
	return Key{Collection: Summaries, Year: year}
}

type tier int

const (
	tierOptimistic tier = iota
	tierAuthoritative
)

type entry struct {
	value any
	tier  tier
	stale bool
}

// Store is a two-tier key-value store. Optimistic values are patched in
// locally after each confirmed mutation; authoritative values are installed
// by a fetch and clear the stale flag. The store is an explicit handle
// owned by the application context, never package-level state.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
}

func NewStore() *Store {
	return &Store{entries: make(map[string]entry)}
}

// Get returns the cached value for the key. Absent keys read as
// (nil, false), which callers treat as an empty collection.
func (s *Store) Get(k Key) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[k.String()]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// SetOptimistic installs a locally patched value while keeping any stale
// marking: optimism never cancels a pending refetch.
func (s *Store) SetOptimistic(k Key, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.entries[k.String()]
	s.entries[k.String()] = entry{value: v, tier: tierOptimistic, stale: prev.stale}
}

// SetAuthoritative installs a fetched value, replacing any optimistic one
// and clearing the stale flag.
func (s *Store) SetAuthoritative(k Key, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[k.String()] = entry{value: v, tier: tierAuthoritative}
}

// Invalidate marks a key as needing an authoritative refetch. The cached
// value stays readable until the refetch replaces it.
func (s *Store) Invalidate(k Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entries[k.String()]
	e.stale = true
	s.entries[k.String()] = e
}

// IsStale reports whether the key was invalidated since its last
// authoritative install. Unknown keys are stale: they have never been
// fetched.
func (s *Store) IsStale(k Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[k.String()]
	if !ok {
		return true
	}
	return e.stale
}

// InvalidateDerived flags the derived summary and dashboard entries of a
// year as stale. It is called unconditionally after every successful
// mutation and bounds the divergence of the optimistic arithmetic to
// "until the next refetch".
func (s *Store) InvalidateDerived(year string) {
	s.Invalidate(DashboardKey(year))
	s.Invalidate(SummaryKey(year))
}

// Records reads a typed record list from the store. Absent or
// differently-typed entries read as nil, never as an error.
func Records[T any](s *Store, k Key) []T {
	v, ok := s.Get(k)
	if !ok {
		return nil
	}
	list, _ := v.([]T)
	return list
}

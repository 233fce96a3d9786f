package cache

import (
	"testing"
	"time"
)

func TestStoreAbsentKeyReadsEmpty(t *testing.T) {
	s := NewStore()
	k := RecordsKey(Commitments, "2026")
	if v, ok := s.Get(k); ok || v != nil {
		t.Fatalf("absent key: got (%v, %v)", v, ok)
	}
	if list := Records[string](s, k); list != nil {
		t.Fatalf("absent record list must be nil, got %v", list)
	}
	if !s.IsStale(k) {
		t.Fatal("never-fetched key must read as stale")
	}
}

func TestStoreTiers(t *testing.T) {
	s := NewStore()
	k := RecordsKey(Expenses, "2026")

	s.SetAuthoritative(k, []string{"a"})
	if s.IsStale(k) {
		t.Fatal("authoritative install must clear stale")
	}

	s.Invalidate(k)
	if !s.IsStale(k) {
		t.Fatal("invalidate must mark stale")
	}
	if v, ok := s.Get(k); !ok || len(v.([]string)) != 1 {
		t.Fatal("stale value must stay readable until replaced")
	}

	// Optimistic patches never cancel a pending refetch.
	s.SetOptimistic(k, []string{"a", "b"})
	if !s.IsStale(k) {
		t.Fatal("optimistic install must keep stale flag")
	}
	if got := Records[string](s, k); len(got) != 2 {
		t.Fatalf("optimistic value not visible: %v", got)
	}

	s.SetAuthoritative(k, []string{"c"})
	if s.IsStale(k) {
		t.Fatal("refetch must clear stale")
	}
}

func TestInvalidateDerived(t *testing.T) {
	s := NewStore()
	s.SetAuthoritative(DashboardKey("2026"), struct{}{})
	s.SetAuthoritative(SummaryKey("2026"), struct{}{})
	s.SetAuthoritative(DashboardKey("2025"), struct{}{})

	s.InvalidateDerived("2026")

	if !s.IsStale(DashboardKey("2026")) || !s.IsStale(SummaryKey("2026")) {
		t.Fatal("derived entries of the year must be stale")
	}
	if s.IsStale(DashboardKey("2025")) {
		t.Fatal("other years must be untouched")
	}
}

func TestRecordsTypeMismatch(t *testing.T) {
	s := NewStore()
	k := RecordsKey(Incomes, "2026")
	s.SetAuthoritative(k, "not a list")
	if got := Records[int](s, k); got != nil {
		t.Fatalf("type mismatch must read as nil, got %v", got)
	}
}

func TestLRUCacheBasics(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3) // evicts "a"

	if _, ok := c.Get("a"); ok {
		t.Fatal("oldest entry must be evicted")
	}
	if v, ok := c.Get("b"); !ok || v != 2 {
		t.Fatalf("get b = (%d, %v)", v, ok)
	}
	if c.Size() != 2 {
		t.Fatalf("size = %d", c.Size())
	}

	c.Delete("b")
	if _, ok := c.Get("b"); ok {
		t.Fatal("deleted entry must be gone")
	}
}

func TestLRUCacheTTL(t *testing.T) {
	c := NewLRUCache[int](10, -time.Second) // already expired
	c.Set("a", 1)
	if _, ok := c.Get("a"); ok {
		t.Fatal("expired entry must not be returned")
	}

	c.Set("b", 2)
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("CleanExpired = %d", n)
	}
	if c.Size() != 0 {
		t.Fatalf("size after cleanup = %d", c.Size())
	}
}

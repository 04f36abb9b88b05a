package main

import "testing"

func TestQuiescenceCacheRoundTrip(t *testing.T) {
	q := NewQuiescenceCache(64, QCacheEvictLRU)
	q.Store(0xfeed, 42, 3, BoundExact)
	score, depth, bound, ok := q.Probe(0xfeed)
	if !ok || score != 42 || depth != 3 || bound != BoundExact {
		t.Fatalf("probe mismatch: score=%d depth=%d bound=%v ok=%v", score, depth, bound, ok)
	}
	if _, _, _, ok := q.Probe(0xbeef); ok {
		t.Fatalf("unexpected hit for unknown key")
	}
}

func TestQuiescenceCacheInPlaceUpdateKeepsDeeper(t *testing.T) {
	q := NewQuiescenceCache(64, QCacheEvictDepth)
	q.Store(0x1, 10, 5, BoundExact)
	q.Store(0x1, 99, 2, BoundLower)
	score, depth, _, _ := q.Probe(0x1)
	if depth != 5 || score != 10 {
		t.Fatalf("shallower store should not replace deeper entry: score=%d depth=%d", score, depth)
	}
}

func TestQuiescenceCacheStaysBounded(t *testing.T) {
	q := NewQuiescenceCache(64, QCacheEvictLRU)
	for i := uint64(0); i < 1000; i++ {
		q.Store(i, int(i), 1, BoundExact)
	}
	if _, _, entries := q.Stats(); entries > 64 {
		t.Fatalf("cache exceeded its limit: %d entries", entries)
	}
}

func TestQuiescenceCacheDepthEvictionPrefersDeepEntries(t *testing.T) {
	q := NewQuiescenceCache(16, QCacheEvictDepth)
	q.Store(0xaaaa, 1, 9, BoundExact)
	for i := uint64(1); i < 200; i++ {
		q.Store(i, int(i), 1, BoundExact)
	}
	if _, depth, _, ok := q.Probe(0xaaaa); !ok || depth != 9 {
		t.Fatalf("deep entry should survive depth-policy eviction sweeps, ok=%v", ok)
	}
}

func TestQuiescenceCacheLRUEvictionPrefersRecent(t *testing.T) {
	q := NewQuiescenceCache(16, QCacheEvictLRU)
	for i := uint64(0); i < 16; i++ {
		q.Store(i, int(i), 1, BoundExact)
	}
	// Touch key 0 so it is the most recently used when the sweep runs.
	q.Probe(0)
	for i := uint64(100); i < 104; i++ {
		q.Store(i, int(i), 1, BoundExact)
	}
	if _, _, _, ok := q.Probe(0); !ok {
		t.Fatalf("recently used entry should survive an lru sweep")
	}
}

func TestQuiescenceCacheClear(t *testing.T) {
	q := NewQuiescenceCache(16, QCacheEvictHybrid)
	q.Store(0x1, 1, 1, BoundExact)
	q.Clear()
	if _, _, entries := q.Stats(); entries != 0 {
		t.Fatalf("expected empty cache after clear, got %d", entries)
	}
}

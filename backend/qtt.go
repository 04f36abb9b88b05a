package main

import "sync"

type qcacheEntry struct {
	key   uint64
	score int
	depth int
	bound Bound
	tick  uint64
}

// QuiescenceCache is a small bounded cache for quiescence results, separate
// from the main table so tactical churn never evicts deep main-line entries.
// A plain mutex is enough at this size; quiescence probes are cheap relative
// to move generation.
type QuiescenceCache struct {
	mu      sync.Mutex
	entries map[uint64]qcacheEntry
	limit   int
	policy  string
	clock   uint64

	hits   uint64
	misses uint64
}

func NewQuiescenceCache(limit int, policy string) *QuiescenceCache {
	if limit < 16 {
		limit = 16
	}
	return &QuiescenceCache{
		entries: make(map[uint64]qcacheEntry, limit),
		limit:   limit,
		policy:  policy,
	}
}

func (q *QuiescenceCache) Probe(key uint64) (score, depth int, bound Bound, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, found := q.entries[key]
	if !found || e.key != key {
		q.misses++
		return 0, 0, BoundExact, false
	}
	q.clock++
	e.tick = q.clock
	q.entries[key] = e
	q.hits++
	return e.score, e.depth, e.bound, true
}

func (q *QuiescenceCache) Store(key uint64, score, depth int, bound Bound) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.clock++
	if old, found := q.entries[key]; found {
		if depth >= old.depth {
			q.entries[key] = qcacheEntry{key: key, score: score, depth: depth, bound: bound, tick: q.clock}
		}
		return
	}
	if len(q.entries) >= q.limit {
		q.evictLocked()
	}
	q.entries[key] = qcacheEntry{key: key, score: score, depth: depth, bound: bound, tick: q.clock}
}

// evictLocked removes roughly a quarter of the cache according to the
// configured policy. Sweeping in batches keeps the amortized cost of a store
// constant.
func (q *QuiescenceCache) evictLocked() {
	target := q.limit / 4
	if target < 1 {
		target = 1
	}
	for removed := 0; removed < target && len(q.entries) > 0; removed++ {
		var victim uint64
		first := true
		var worst qcacheEntry
		for k, e := range q.entries {
			if first || q.worseLocked(e, worst) {
				victim = k
				worst = e
				first = false
			}
		}
		delete(q.entries, victim)
	}
}

func (q *QuiescenceCache) worseLocked(a, b qcacheEntry) bool {
	switch q.policy {
	case QCacheEvictDepth:
		if a.depth != b.depth {
			return a.depth < b.depth
		}
		return a.tick < b.tick
	case QCacheEvictLRU:
		return a.tick < b.tick
	default: // hybrid: least-recent half-life weighted by depth
		return a.tick+uint64(a.depth)*64 < b.tick+uint64(b.depth)*64
	}
}

func (q *QuiescenceCache) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = make(map[uint64]qcacheEntry, q.limit)
	q.clock = 0
	q.hits = 0
	q.misses = 0
}

func (q *QuiescenceCache) Stats() (hits, misses uint64, entries int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.hits, q.misses, len(q.entries)
}

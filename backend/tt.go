package main

import (
	"sync"
	"sync/atomic"
)

type Bound uint8

const (
	BoundExact Bound = iota
	BoundLower
	BoundUpper
)

// EntrySource tags which search layer produced an entry. Results from the
// reduced auxiliary searches are less trustworthy than main-line results of
// the same depth, and the replacement policy accounts for that.
type EntrySource uint8

const (
	MainSearch EntrySource = iota
	NullMoveSearch
	IIDSearch
	QuiescenceSearch
)

func (s EntrySource) String() string {
	switch s {
	case MainSearch:
		return "main"
	case NullMoveSearch:
		return "nullmove"
	case IIDSearch:
		return "iid"
	default:
		return "quiescence"
	}
}

type TTEntry struct {
	Key     uint64
	Score   int
	Depth   int
	Bound   Bound
	Move    Move
	HasMove bool
	Source  EntrySource
	Age     uint32
	Valid   bool
}

type ttBucket struct {
	entries []TTEntry
}

// TranspositionTable is a fixed-size bucketed hash map with striped locking.
// Each stripe guards a contiguous range of buckets, so concurrent workers
// probing distinct regions never contend.
type TranspositionTable struct {
	buckets    []ttBucket
	stripes    []sync.RWMutex
	mask       uint64
	stripeMask uint64
	bucketSize int
	generation atomic.Uint32

	hits    atomic.Uint64
	misses  atomic.Uint64
	stores  atomic.Uint64
	rejects atomic.Uint64
}

func nextPowerOfTwo(n int) int {
	if n < 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func NewTranspositionTable(size, bucketSize, stripeCount int) *TranspositionTable {
	size = nextPowerOfTwo(size)
	stripeCount = nextPowerOfTwo(stripeCount)
	if stripeCount > size {
		stripeCount = size
	}
	if bucketSize < 1 {
		bucketSize = 1
	}
	t := &TranspositionTable{
		buckets:    make([]ttBucket, size),
		stripes:    make([]sync.RWMutex, stripeCount),
		mask:       uint64(size - 1),
		stripeMask: uint64(stripeCount - 1),
		bucketSize: bucketSize,
	}
	for i := range t.buckets {
		t.buckets[i].entries = make([]TTEntry, bucketSize)
	}
	return t
}

func (t *TranspositionTable) stripeFor(key uint64) *sync.RWMutex {
	return &t.stripes[key&t.stripeMask]
}

// Probe returns the entry stored for key, if any. The full hash is compared
// so an index collision between distinct positions reads as a miss rather
// than a wrong-position hit.
func (t *TranspositionTable) Probe(key uint64) (TTEntry, bool) {
	idx := key & t.mask
	mu := t.stripeFor(key)
	mu.RLock()
	defer mu.RUnlock()
	for i := range t.buckets[idx].entries {
		e := &t.buckets[idx].entries[i]
		if e.Valid && e.Key == key {
			t.hits.Add(1)
			return *e, true
		}
	}
	t.misses.Add(1)
	return TTEntry{}, false
}

// replaces reports whether candidate may take over the slot occupied by old.
// Priority is one-directional: a main-search result always may, while an
// auxiliary result never displaces a main-search entry searched at least as
// deep as itself. Between peers, deeper wins, then newer.
func replaces(cand, old *TTEntry) bool {
	if !old.Valid {
		return true
	}
	if cand.Source != MainSearch && old.Source == MainSearch && old.Depth >= cand.Depth {
		return false
	}
	if cand.Source == MainSearch && old.Source != MainSearch {
		return true
	}
	if cand.Depth != old.Depth {
		return cand.Depth > old.Depth
	}
	return cand.Age >= old.Age
}

// Store records a search result. Within the bucket the same key is updated
// in place when the priority rule allows it; otherwise the weakest
// replaceable slot is taken.
func (t *TranspositionTable) Store(key uint64, score, depth int, bound Bound, move Move, hasMove bool, source EntrySource) {
	cand := TTEntry{
		Key:     key,
		Score:   score,
		Depth:   depth,
		Bound:   bound,
		Move:    move,
		HasMove: hasMove,
		Source:  source,
		Age:     t.generation.Load(),
		Valid:   true,
	}
	idx := key & t.mask
	mu := t.stripeFor(key)
	mu.Lock()
	defer mu.Unlock()

	bucket := t.buckets[idx].entries
	// Same position already present: the priority rule decides in place.
	for i := range bucket {
		if bucket[i].Valid && bucket[i].Key == key {
			if replaces(&cand, &bucket[i]) {
				bucket[i] = cand
				t.stores.Add(1)
			} else {
				t.rejects.Add(1)
			}
			return
		}
	}
	victim := -1
	for i := range bucket {
		if !replaces(&cand, &bucket[i]) {
			continue
		}
		if victim < 0 || weaker(&bucket[i], &bucket[victim]) {
			victim = i
		}
	}
	if victim < 0 {
		t.rejects.Add(1)
		return
	}
	bucket[victim] = cand
	t.stores.Add(1)
}

// weaker orders eviction candidates: stale generations go first, then
// auxiliary sources, then shallower depth.
func weaker(a, b *TTEntry) bool {
	if a.Valid != b.Valid {
		return !a.Valid
	}
	if a.Age != b.Age {
		return a.Age < b.Age
	}
	if (a.Source == MainSearch) != (b.Source == MainSearch) {
		return a.Source != MainSearch
	}
	return a.Depth < b.Depth
}

// NextGeneration ages every stored entry relative to new stores. Called once
// per root search.
func (t *TranspositionTable) NextGeneration() {
	t.generation.Add(1)
}

func (t *TranspositionTable) lockAllStripes() {
	for i := range t.stripes {
		t.stripes[i].Lock()
	}
}

func (t *TranspositionTable) unlockAllStripes() {
	for i := range t.stripes {
		t.stripes[i].Unlock()
	}
}

// Clear empties the table. All stripes are held for the duration so a
// concurrent reader never observes a half-cleared bucket.
func (t *TranspositionTable) Clear() {
	t.lockAllStripes()
	defer t.unlockAllStripes()
	for i := range t.buckets {
		for j := range t.buckets[i].entries {
			t.buckets[i].entries[j] = TTEntry{}
		}
	}
	t.generation.Store(0)
	t.hits.Store(0)
	t.misses.Store(0)
	t.stores.Store(0)
	t.rejects.Store(0)
}

type TTStats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Stores  uint64 `json:"stores"`
	Rejects uint64 `json:"rejects"`
	Entries int    `json:"entries"`
	Size    int    `json:"size"`
}

func (t *TranspositionTable) Stats() TTStats {
	s := TTStats{
		Hits:    t.hits.Load(),
		Misses:  t.misses.Load(),
		Stores:  t.stores.Load(),
		Rejects: t.rejects.Load(),
		Size:    len(t.buckets) * t.bucketSize,
	}
	t.lockAllStripes()
	for i := range t.buckets {
		for j := range t.buckets[i].entries {
			if t.buckets[i].entries[j].Valid {
				s.Entries++
			}
		}
	}
	t.unlockAllStripes()
	return s
}

// snapshotEntries copies every valid entry out under full lock, for
// persistence.
func (t *TranspositionTable) snapshotEntries() []TTEntry {
	t.lockAllStripes()
	defer t.unlockAllStripes()
	out := make([]TTEntry, 0, 1024)
	for i := range t.buckets {
		for j := range t.buckets[i].entries {
			if t.buckets[i].entries[j].Valid {
				out = append(out, t.buckets[i].entries[j])
			}
		}
	}
	return out
}

// loadEntries reinserts snapshot entries through the normal replacement
// policy, so a snapshot from a differently-sized table still loads cleanly.
func (t *TranspositionTable) loadEntries(entries []TTEntry) {
	for _, e := range entries {
		t.Store(e.Key, e.Score, e.Depth, e.Bound, e.Move, e.HasMove, e.Source)
	}
}

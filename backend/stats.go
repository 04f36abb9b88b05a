package main

import (
	"sync"
	"sync/atomic"
	"time"
)

// SearchStats counts what the search actually did. All counters are atomic
// so parallel workers update them without coordination and the websocket
// stream can snapshot mid-search without blocking anyone.
type SearchStats struct {
	Nodes            atomic.Uint64
	QNodes           atomic.Uint64
	NullMoveTries    atomic.Uint64
	NullMoveCutoffs  atomic.Uint64
	NullMoveVerifies atomic.Uint64
	IIDSearches      atomic.Uint64
	LMRReductions    atomic.Uint64
	LMRResearches    atomic.Uint64
	BetaCutoffs      atomic.Uint64
	StandPatCutoffs  atomic.Uint64
	DeltaPrunes      atomic.Uint64

	mu             sync.Mutex
	depthDurations map[int]time.Duration
}

type StatsSnapshot struct {
	Nodes            uint64                `json:"nodes"`
	QNodes           uint64                `json:"qnodes"`
	NullMoveTries    uint64                `json:"null_move_tries"`
	NullMoveCutoffs  uint64                `json:"null_move_cutoffs"`
	NullMoveVerifies uint64                `json:"null_move_verifies"`
	IIDSearches      uint64                `json:"iid_searches"`
	LMRReductions    uint64                `json:"lmr_reductions"`
	LMRResearches    uint64                `json:"lmr_researches"`
	BetaCutoffs      uint64                `json:"beta_cutoffs"`
	StandPatCutoffs  uint64                `json:"stand_pat_cutoffs"`
	DeltaPrunes      uint64                `json:"delta_prunes"`
	DepthDurations   map[int]time.Duration `json:"depth_durations,omitempty"`
}

func NewSearchStats() *SearchStats {
	return &SearchStats{depthDurations: make(map[int]time.Duration)}
}

func (s *SearchStats) RecordDepth(depth int, d time.Duration) {
	s.mu.Lock()
	s.depthDurations[depth] = d
	s.mu.Unlock()
}

func (s *SearchStats) Snapshot() StatsSnapshot {
	snap := StatsSnapshot{
		Nodes:            s.Nodes.Load(),
		QNodes:           s.QNodes.Load(),
		NullMoveTries:    s.NullMoveTries.Load(),
		NullMoveCutoffs:  s.NullMoveCutoffs.Load(),
		NullMoveVerifies: s.NullMoveVerifies.Load(),
		IIDSearches:      s.IIDSearches.Load(),
		LMRReductions:    s.LMRReductions.Load(),
		LMRResearches:    s.LMRResearches.Load(),
		BetaCutoffs:      s.BetaCutoffs.Load(),
		StandPatCutoffs:  s.StandPatCutoffs.Load(),
		DeltaPrunes:      s.DeltaPrunes.Load(),
	}
	s.mu.Lock()
	if len(s.depthDurations) > 0 {
		snap.DepthDurations = make(map[int]time.Duration, len(s.depthDurations))
		for k, v := range s.depthDurations {
			snap.DepthDurations[k] = v
		}
	}
	s.mu.Unlock()
	return snap
}

func (s *SearchStats) Reset() {
	s.Nodes.Store(0)
	s.QNodes.Store(0)
	s.NullMoveTries.Store(0)
	s.NullMoveCutoffs.Store(0)
	s.NullMoveVerifies.Store(0)
	s.IIDSearches.Store(0)
	s.LMRReductions.Store(0)
	s.LMRResearches.Store(0)
	s.BetaCutoffs.Store(0)
	s.StandPatCutoffs.Store(0)
	s.DeltaPrunes.Store(0)
	s.mu.Lock()
	s.depthDurations = make(map[int]time.Duration)
	s.mu.Unlock()
}

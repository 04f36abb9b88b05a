package main

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

const backlogPollInterval = 200 * time.Millisecond

type backlogTask struct {
	fen     string
	hash    uint64
	depth   int
	created time.Time
}

type BacklogEntry struct {
	FEN       string `json:"fen"`
	Depth     int    `json:"depth"`
	Hits      int    `json:"hits"`
	Analyzing bool   `json:"analyzing"`
}

type BacklogResult struct {
	FEN    string       `json:"fen"`
	Result SearchResult `json:"result"`
}

// AnalysisBacklog holds positions to analyze whenever the engine is idle.
// Duplicate submissions bump a hit counter instead of growing the queue,
// and finished analyses land in the shared table so later interactive
// searches of the same positions start warm.
type AnalysisBacklog struct {
	mu       sync.Mutex
	queue    []backlogTask
	present  map[uint64]int
	active   *backlogTask
	engine   *EngineController
	hub      *Hub
	stopWork atomic.Bool
}

const backlogQueueLimit = 256

func NewAnalysisBacklog(engine *EngineController, hub *Hub) *AnalysisBacklog {
	return &AnalysisBacklog{
		present: make(map[uint64]int),
		engine:  engine,
		hub:     hub,
	}
}

// Enqueue adds a position for background analysis. Returns false when the
// FEN is invalid or the queue is full.
func (b *AnalysisBacklog) Enqueue(fen string, depth int) bool {
	pos := NewChessPositionFEN(fen)
	if pos == nil {
		return false
	}
	hash := pos.Hash()
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, seen := b.present[hash]; seen {
		b.present[hash]++
		return true
	}
	if len(b.queue) >= backlogQueueLimit {
		return false
	}
	b.present[hash] = 1
	b.queue = append(b.queue, backlogTask{fen: fen, hash: hash, depth: depth, created: time.Now()})
	return true
}

func (b *AnalysisBacklog) Snapshot() []BacklogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]BacklogEntry, 0, len(b.queue)+1)
	if b.active != nil {
		out = append(out, BacklogEntry{FEN: b.active.fen, Depth: b.active.depth, Hits: b.present[b.active.hash], Analyzing: true})
	}
	for _, t := range b.queue {
		out = append(out, BacklogEntry{FEN: t.fen, Depth: t.depth, Hits: b.present[t.hash]})
	}
	return out
}

func (b *AnalysisBacklog) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

func (b *AnalysisBacklog) RequestStop() {
	b.stopWork.Store(true)
	b.engine.RequestStop()
}

func (b *AnalysisBacklog) pop() (backlogTask, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queue) == 0 {
		return backlogTask{}, false
	}
	task := b.queue[0]
	b.queue = b.queue[1:]
	b.active = &task
	return task, true
}

func (b *AnalysisBacklog) finish(task backlogTask) {
	b.mu.Lock()
	delete(b.present, task.hash)
	b.active = nil
	b.mu.Unlock()
}

// Run drains the queue on a single worker, yielding to interactive
// searches: a task only starts when the engine is idle, and a stop request
// pauses the drain until the next poll.
func (b *AnalysisBacklog) Run(done <-chan struct{}) {
	ticker := time.NewTicker(backlogPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
		}
		if b.stopWork.Load() {
			b.stopWork.Store(false)
			continue
		}
		if b.engine.searching.Load() {
			continue
		}
		task, ok := b.pop()
		if !ok {
			continue
		}
		saved := b.engine.Status().FEN
		if err := b.engine.SetPositionFEN(task.fen); err != nil {
			b.finish(task)
			continue
		}
		result, err := b.engine.Search(SearchParams{Depth: task.depth})
		if restoreErr := b.engine.SetPositionFEN(saved); restoreErr != nil {
			log.Warn().Err(restoreErr).Msg("backlog failed to restore position")
		}
		b.finish(task)
		if err != nil {
			continue
		}
		log.Debug().Str("fen", task.fen).Str("move", result.Move).
			Int("depth", result.Depth).Msg("backlog analysis done")
		if b.hub != nil {
			b.hub.PublishResult(result)
		}
	}
}

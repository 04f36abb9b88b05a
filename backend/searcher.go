package main

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

type SearchResult struct {
	BestMove  Move          `json:"-"`
	HasMove   bool          `json:"has_move"`
	Move      string        `json:"move"`
	Score     int           `json:"score"`
	Depth     int           `json:"depth"`
	Completed bool          `json:"completed"`
	Nodes     uint64        `json:"nodes"`
	PV        []string      `json:"pv,omitempty"`
	FromBook  bool          `json:"from_book,omitempty"`
	FromTB    bool          `json:"from_tablebase,omitempty"`
	Elapsed   time.Duration `json:"elapsed_ns"`
}

type IterationInfo struct {
	Depth   int           `json:"depth"`
	Score   int           `json:"score"`
	Move    string        `json:"move"`
	Nodes   uint64        `json:"nodes"`
	Elapsed time.Duration `json:"elapsed_ns"`
	PV      []string      `json:"pv,omitempty"`
}

// Searcher owns the shared search state: the table and quiescence cache
// survive across root calls so later searches start warm. One RootSearch
// runs at a time; the table is a pure performance cache, so results do not
// depend on what it happens to contain.
type Searcher struct {
	gen     MoveGenerator
	eval    Evaluator
	orderer MoveOrderer
	tt      *TranspositionTable
	qcache  *QuiescenceCache
	book    OpeningBook
	tb      Tablebase
	stats   *SearchStats

	// OnIteration, when set, is called after every completed depth.
	OnIteration func(IterationInfo)
}

func NewSearcher(gen MoveGenerator, eval Evaluator, cfg Config) *Searcher {
	return &Searcher{
		gen:     gen,
		eval:    eval,
		orderer: NewDefaultOrderer(eval),
		tt:      NewTranspositionTable(cfg.TTSize, cfg.TTBuckets, cfg.TTShards),
		qcache:  NewQuiescenceCache(cfg.QSCacheSize, cfg.QSCacheEvictPolicy),
		stats:   NewSearchStats(),
	}
}

func (s *Searcher) SetBook(b OpeningBook)    { s.book = b }
func (s *Searcher) SetTablebase(t Tablebase) { s.tb = t }

func (s *Searcher) Table() *TranspositionTable { return s.tt }
func (s *Searcher) Stats() *SearchStats        { return s.stats }

func (s *Searcher) newContext(pos Position, cfg Config, budget *TimeBudget, stopped *atomic.Bool) *searchContext {
	return &searchContext{
		pos:     pos,
		gen:     s.gen,
		eval:    s.eval,
		orderer: s.orderer,
		tt:      s.tt,
		qcache:  s.qcache,
		cfg:     cfg,
		budget:  budget,
		stats:   s.stats,
		stopped: stopped,
		source:  MainSearch,
	}
}

// RootSearch runs iterative deepening on pos until depthLimit or the budget
// runs out, whichever comes first. The returned move is always from the
// deepest fully completed iteration; a half-searched depth is discarded.
func (s *Searcher) RootSearch(pos Position, budget *TimeBudget, depthLimit int, stop *atomic.Bool) SearchResult {
	started := time.Now()
	cfg := GetConfig()
	s.stats.Reset()
	s.tt.NextGeneration()

	if s.book != nil {
		if m, ok := s.book.Probe(pos); ok {
			return SearchResult{BestMove: m, HasMove: true, Move: m.String(), FromBook: true, Completed: true, Elapsed: time.Since(started)}
		}
	}
	if s.tb != nil {
		if r, ok := s.tb.Probe(pos); ok {
			return SearchResult{BestMove: r.Move, HasMove: true, Move: r.Move.String(), Score: r.Score, FromTB: true, Completed: true, Elapsed: time.Since(started)}
		}
	}

	rootMoves := s.gen.LegalMoves(pos)
	if len(rootMoves) == 0 {
		return SearchResult{Elapsed: time.Since(started)}
	}

	stopped := stop
	if stopped == nil {
		stopped = &atomic.Bool{}
	}

	result := SearchResult{}
	prevScore := 0
	for depth := 1; depth <= depthLimit; depth++ {
		depthStart := time.Now()
		alpha, beta := -scoreInfinity, scoreInfinity
		if cfg.AspirationEnabled && depth > 1 {
			alpha = maxInt(-scoreInfinity, prevScore-cfg.AspirationWindow)
			beta = minInt(scoreInfinity, prevScore+cfg.AspirationWindow)
		}
		var score int
		var best Move
		var ok bool
		for {
			score, best, ok = s.searchRoot(pos, rootMoves, depth, alpha, beta, cfg, budget, stopped)
			if !ok {
				break
			}
			// An aspiration miss widens the failed side and repeats the
			// same depth with the narrow side kept.
			if score <= alpha && alpha > -scoreInfinity {
				alpha = -scoreInfinity
				continue
			}
			if score >= beta && beta < scoreInfinity {
				beta = scoreInfinity
				continue
			}
			break
		}
		if !ok {
			break
		}
		prevScore = score
		result.BestMove = best
		result.HasMove = true
		result.Move = best.String()
		result.Score = score
		result.Depth = depth
		result.PV = s.principalVariation(pos, depth)
		rootMoves = moveToFront(rootMoves, best)
		s.stats.RecordDepth(depth, time.Since(depthStart))

		if s.OnIteration != nil {
			s.OnIteration(IterationInfo{
				Depth:   depth,
				Score:   score,
				Move:    best.String(),
				Nodes:   s.stats.Nodes.Load(),
				Elapsed: time.Since(started),
				PV:      result.PV,
			})
		}
		if cfg.LogSearchStats {
			log.Debug().Int("depth", depth).Int("score", score).
				Str("move", best.String()).Uint64("nodes", s.stats.Nodes.Load()).
				Dur("elapsed", time.Since(started)).Msg("iteration complete")
		}
		if isMateScore(score) {
			break
		}
		if stopped.Load() || budget.Expired() {
			break
		}
	}
	result.Completed = !stopped.Load() && !budget.Expired()
	result.Nodes = s.stats.Nodes.Load() + s.stats.QNodes.Load()
	result.Elapsed = time.Since(started)
	return result
}

// searchRoot searches one depth over the root moves. The first move is
// searched alone with the full window; once it has established a score the
// remaining siblings are distributed across workers with zero-window
// scouts. ok is false when the deadline fired before the depth finished.
func (s *Searcher) searchRoot(pos Position, moves []Move, depth, alpha, beta int, cfg Config, budget *TimeBudget, stopped *atomic.Bool) (int, Move, bool) {
	first := s.newContext(pos.Clone(), cfg, budget, stopped)
	first.pos.MakeMove(moves[0])
	score := -first.search(depth-1, 1, -beta, -alpha, true)
	first.pos.Unmake()
	if stopped.Load() {
		return 0, NoMove, false
	}

	var mu sync.Mutex
	best, bestMove := score, moves[0]
	if score > alpha {
		alpha = score
	}
	if alpha >= beta {
		return best, bestMove, true
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(moves)-1 && len(moves) > 1 {
		workers = len(moves) - 1
	}

	var next atomic.Int64
	next.Store(1)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx := s.newContext(pos.Clone(), cfg, budget, stopped)
			for {
				i := int(next.Add(1)) - 1
				if i >= len(moves) || ctx.timedOut() {
					return
				}
				m := moves[i]
				mu.Lock()
				a := alpha
				mu.Unlock()
				if a >= beta {
					return
				}
				ctx.pos.MakeMove(m)
				sc := -ctx.search(depth-1, 1, -a-1, -a, false)
				if sc > a && sc < beta && !stopped.Load() {
					sc = -ctx.search(depth-1, 1, -beta, -a, true)
				}
				ctx.pos.Unmake()
				if stopped.Load() {
					return
				}
				mu.Lock()
				if sc > best {
					best, bestMove = sc, m
				}
				if sc > alpha {
					alpha = sc
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if stopped.Load() {
		return 0, NoMove, false
	}
	return best, bestMove, true
}

// principalVariation reconstructs the best line by walking table moves from
// the root. A repeated hash ends the walk so a cached cycle cannot loop.
func (s *Searcher) principalVariation(pos Position, depth int) []string {
	walk := pos.Clone()
	seen := map[uint64]bool{}
	pv := make([]string, 0, depth)
	for len(pv) < depth {
		h := walk.Hash()
		if seen[h] {
			break
		}
		seen[h] = true
		entry, ok := s.tt.Probe(h)
		if !ok || !entry.HasMove {
			break
		}
		legal := false
		for _, m := range s.gen.LegalMoves(walk) {
			if m == entry.Move {
				legal = true
				break
			}
		}
		if !legal {
			break
		}
		pv = append(pv, entry.Move.String())
		walk.MakeMove(entry.Move)
	}
	return pv
}

func moveToFront(moves []Move, m Move) []Move {
	for i, x := range moves {
		if x == m {
			copy(moves[1:i+1], moves[:i])
			moves[0] = m
			return moves
		}
	}
	return moves
}

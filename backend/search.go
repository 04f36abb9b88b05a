package main

import (
	"fmt"
	"sync/atomic"
)

// searchContext holds everything one worker needs to search its own clone
// of the position. The table, cache, stats and stop flag are shared between
// workers; the position and killers are private.
type searchContext struct {
	pos     Position
	gen     MoveGenerator
	eval    Evaluator
	orderer MoveOrderer
	tt      *TranspositionTable
	qcache  *QuiescenceCache
	cfg     Config
	budget  *TimeBudget
	stats   *SearchStats
	stopped *atomic.Bool

	killers [maxPly][2]Move

	// source tags every table store made below this point. The driver
	// flips it to the auxiliary value for the duration of a null-move or
	// preliminary-deepening subtree and restores it on the way out.
	source EntrySource
}

// timedOut checks the hard deadline and latches the shared stop flag so
// every worker unwinds together. Running out of time is a normal outcome,
// never an error.
func (ctx *searchContext) timedOut() bool {
	if ctx.stopped.Load() {
		return true
	}
	if ctx.budget.Expired() {
		ctx.stopped.Store(true)
		return true
	}
	return false
}

// ttWindow applies a stored bound to the current window. Exact scores and
// bounds that already clear the window cut off; an in-window bound tightens
// the side it proves and the search continues with the narrower window.
func ttWindow(entry TTEntry, ply, alpha, beta int) (newAlpha, newBeta, score int, cutoff bool) {
	score = scoreFromTT(entry.Score, ply)
	switch entry.Bound {
	case BoundExact:
		return alpha, beta, score, true
	case BoundLower:
		if score >= beta {
			return alpha, beta, score, true
		}
		if score > alpha {
			alpha = score
		}
	case BoundUpper:
		if score <= alpha {
			return alpha, beta, score, true
		}
		if score < beta {
			beta = score
		}
	}
	return alpha, beta, score, false
}

func (ctx *searchContext) updateKillers(ply int, m Move) {
	if m.Capture || ctx.killers[ply][0] == m {
		return
	}
	ctx.killers[ply][1] = ctx.killers[ply][0]
	ctx.killers[ply][0] = m
}

// search is the principal-variation driver: the first move of a node gets
// the full window, every sibling a zero-window scout, and a scout that
// lands inside an open window is re-searched with the full one.
func (ctx *searchContext) search(depth, ply, alpha, beta int, isPV bool) int {
	if alpha >= beta {
		panic(fmt.Sprintf("search window inverted: alpha=%d beta=%d depth=%d ply=%d", alpha, beta, depth, ply))
	}
	if depth <= 0 || ply >= maxPly {
		return ctx.quiescence(ply, 0, alpha, beta)
	}
	ctx.stats.Nodes.Add(1)

	pressure := ctx.budget.Pressure()

	ttMove := NoMove
	hasTTMove := false
	if entry, ok := ctx.tt.Probe(ctx.pos.Hash()); ok {
		ttMove, hasTTMove = entry.Move, entry.HasMove
		if !isPV && entry.Depth >= depth {
			var score int
			var cut bool
			alpha, beta, score, cut = ttWindow(entry, ply, alpha, beta)
			if cut {
				return score
			}
		}
	}
	alphaOrig := alpha

	inCheck := ctx.gen.IsInCheck(ctx.pos, ctx.pos.SideToMove())

	// One static evaluation per node, shared by every pruning decision.
	staticEval := ctx.eval.Evaluate(ctx.pos)

	if allowNullMove(ctx.cfg, depth, isPV, inCheck, staticEval, beta, pressure) {
		ctx.stats.NullMoveTries.Add(1)
		r := nullMoveReduction(depth, ctx.cfg)
		saved := ctx.source
		ctx.source = NullMoveSearch
		ctx.pos.MakeNullMove()
		score := -ctx.search(depth-1-r, ply+1, -beta, -beta+1, false)
		ctx.pos.Unmake()
		ctx.source = saved
		if ctx.stopped.Load() {
			return alpha
		}
		if score >= beta {
			if nullMoveNeedsVerify(ctx.cfg, score, beta) {
				ctx.stats.NullMoveVerifies.Add(1)
				saved = ctx.source
				ctx.source = NullMoveSearch
				verified := ctx.search(depth-1, ply, beta-1, beta, false)
				ctx.source = saved
				if verified >= beta {
					ctx.stats.NullMoveCutoffs.Add(1)
					return beta
				}
			} else {
				ctx.stats.NullMoveCutoffs.Add(1)
				return beta
			}
		}
	}

	iidMove := NoMove
	hasIID := false
	if allowIID(ctx.cfg, depth, hasTTMove, pressure) {
		ctx.stats.IIDSearches.Add(1)
		saved := ctx.source
		ctx.source = IIDSearch
		ctx.search(depth-iidReduction(ctx.cfg, depth), ply, alpha, beta, isPV)
		ctx.source = saved
		if ctx.stopped.Load() {
			return alpha
		}
		if entry, ok := ctx.tt.Probe(ctx.pos.Hash()); ok && entry.HasMove {
			iidMove, hasIID = entry.Move, true
		}
	}

	moves := ctx.gen.LegalMoves(ctx.pos)
	if len(moves) == 0 {
		if inCheck {
			return matedIn(ply)
		}
		return scoreDraw
	}
	tactical := tacticalPosition(ctx.cfg, moves)

	hints := OrderHints{
		TTMove:    ttMove,
		HasTTMove: hasTTMove,
		IIDMove:   iidMove,
		HasIID:    hasIID,
		Killers:   ctx.killers[ply],
		Ply:       ply,
	}
	ordered := ctx.orderer.Order(ctx.pos, moves, hints)

	best := -scoreInfinity
	bestMove := NoMove
	hasBest := false

	for i, m := range ordered {
		if ctx.timedOut() {
			return alpha
		}
		ctx.pos.MakeMove(m)
		var score int
		if i == 0 {
			score = -ctx.search(depth-1, ply+1, -beta, -alpha, isPV)
		} else {
			r := lmrReduction(ctx.cfg, depth, i, m, hints, inCheck, ctx, ply)
			if r > 0 {
				ctx.stats.LMRReductions.Add(1)
				score = -ctx.search(depth-1-r, ply+1, -alpha-1, -alpha, false)
				if score > alpha-lmrResearchMargin(ctx.cfg, tactical) && !ctx.stopped.Load() {
					ctx.stats.LMRResearches.Add(1)
					score = -ctx.search(depth-1, ply+1, -alpha-1, -alpha, false)
				}
			} else {
				score = -ctx.search(depth-1, ply+1, -alpha-1, -alpha, false)
			}
			if score > alpha && score < beta && isPV && !ctx.stopped.Load() {
				score = -ctx.search(depth-1, ply+1, -beta, -alpha, true)
			}
		}
		ctx.pos.Unmake()
		if ctx.stopped.Load() {
			return alpha
		}
		if score > best {
			best, bestMove, hasBest = score, m, true
		}
		if score > alpha {
			alpha = score
			if alpha >= beta {
				ctx.stats.BetaCutoffs.Add(1)
				ctx.updateKillers(ply, m)
				break
			}
		}
	}

	bound := BoundExact
	switch {
	case best >= beta:
		bound = BoundLower
	case best <= alphaOrig:
		bound = BoundUpper
	}
	ctx.tt.Store(ctx.pos.Hash(), scoreToTT(best, ply), depth, bound, bestMove, hasBest, ctx.source)
	return best
}

package main

import "fmt"

// quiescence resolves the tactical dust at the horizon: only captures,
// promotions and checks are searched, so the tree bottoms out as soon as
// the position goes quiet. qdepth counts plies inside quiescence and bounds
// both the capture chase and the check extensions.
func (ctx *searchContext) quiescence(ply, qdepth, alpha, beta int) int {
	if alpha >= beta {
		panic(fmt.Sprintf("quiescence window inverted: alpha=%d beta=%d ply=%d", alpha, beta, ply))
	}
	ctx.stats.QNodes.Add(1)
	if ctx.stopped.Load() {
		return alpha
	}
	if ply >= maxPly {
		return ctx.eval.Evaluate(ctx.pos)
	}

	// remaining is the extension budget below this node; cached results are
	// trusted only when they were computed with at least as much budget.
	remaining := ctx.cfg.QSMaxDepth - qdepth
	if remaining < 0 {
		remaining = 0
	}
	key := ctx.pos.Hash()
	if score, depth, bound, ok := ctx.qcache.Probe(key); ok && depth >= remaining {
		score = scoreFromTT(score, ply)
		switch bound {
		case BoundExact:
			return score
		case BoundLower:
			if score >= beta {
				return score
			}
		case BoundUpper:
			if score <= alpha {
				return score
			}
		}
	}

	inCheck := ctx.gen.IsInCheck(ctx.pos, ctx.pos.SideToMove())
	alphaOrig := alpha

	standPat := -scoreInfinity
	if !inCheck {
		standPat = ctx.eval.Evaluate(ctx.pos)
		if standPat >= beta {
			ctx.stats.StandPatCutoffs.Add(1)
			ctx.qcache.Store(key, scoreToTT(standPat, ply), remaining, BoundLower)
			return standPat
		}
		if standPat > alpha {
			alpha = standPat
		}
		if qdepth >= ctx.cfg.QSMaxDepth {
			return standPat
		}
	}

	var moves []Move
	if inCheck {
		// In check every evasion is searched; the quiescence budget does
		// not apply to getting out of check, only QSCheckDepth caps how
		// long a checking sequence may run.
		moves = ctx.gen.LegalMoves(ctx.pos)
		if len(moves) == 0 {
			return matedIn(ply)
		}
	} else {
		moves = ctx.gen.TacticalMoves(ctx.pos)
	}

	best := standPat
	bestMove := NoMove
	hasBest := false
	deltaMargin, futilityMargin := qsMargins(ctx.cfg, remaining, len(moves))

	for _, m := range moves {
		if !inCheck {
			if m.GivesCheck && qdepth >= ctx.cfg.QSCheckDepth {
				continue
			}
			// Delta pruning: a capture that cannot raise the score back to
			// alpha even with a full margin is hopeless. Checking moves and
			// captures of the most valuable pieces are exempt because they
			// can swing far beyond the captured material.
			if !m.GivesCheck && ctx.eval.PieceValue(m.Victim) < ctx.cfg.QSHighValueCapture {
				if standPat+ctx.eval.PieceValue(m.Victim)+deltaMargin <= alpha {
					ctx.stats.DeltaPrunes.Add(1)
					continue
				}
				if standPat+futilityMargin <= alpha {
					ctx.stats.DeltaPrunes.Add(1)
					continue
				}
			}
		}
		// A checking move keeps its depth: the check is searched as an
		// extension rather than consuming the capture budget. QSCheckDepth
		// caps how many such holds a line may accumulate.
		next := qdepth + 1
		if !inCheck && m.GivesCheck {
			next = qdepth
		}
		ctx.pos.MakeMove(m)
		score := -ctx.quiescence(ply+1, next, -beta, -alpha)
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
	ctx.qcache.Store(key, scoreToTT(best, ply), remaining, bound)
	ctx.tt.Store(key, scoreToTT(best, ply), 0, bound, bestMove, hasBest, QuiescenceSearch)
	return best
}

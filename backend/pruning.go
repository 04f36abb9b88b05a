package main

// nullMoveReduction picks the depth reduction for a null-move probe.
func nullMoveReduction(depth int, cfg Config) int {
	switch cfg.NullMoveFormula {
	case NullFormulaStatic:
		return cfg.NullMoveBaseReduction
	case NullFormulaStepped:
		r := cfg.NullMoveBaseReduction
		if depth >= 6 {
			r++
		}
		if depth >= 12 {
			r++
		}
		return r
	default:
		// smooth: grow with depth, rounded to the nearest step
		return cfg.NullMoveBaseReduction + (depth+3)/6
	}
}

// allowNullMove gates the null-move probe. Skipped on PV nodes, in check,
// near mate bounds, when the evaluation already fails low, and under high
// time pressure where a wrong cutoff cannot be re-searched away. Unlike
// IID the probe still runs at medium pressure: it saves nodes rather than
// spending them.
func allowNullMove(cfg Config, depth int, isPV, inCheck bool, staticEval, beta int, pressure TimePressureLevel) bool {
	if !cfg.NullMoveEnabled {
		return false
	}
	if isPV || inCheck {
		return false
	}
	if depth < cfg.NullMoveMinDepth {
		return false
	}
	if pressure == PressureHigh {
		return false
	}
	if isMateScore(beta) {
		return false
	}
	return staticEval >= beta
}

// nullMoveNeedsVerify reports whether a fail-high from the null-move probe
// must be confirmed by a reduced real search before it is trusted. The
// mate-threat margin is checked first: a probe score near the mate bound
// means zugzwang-like traps are plausible and always needs verification,
// regardless of how far the score cleared beta.
func nullMoveNeedsVerify(cfg Config, score, beta int) bool {
	if score >= scoreWin-cfg.MateThreatMargin {
		return true
	}
	return score < beta+cfg.NullVerificationMargin
}

// iidReduction picks how much shallower the preliminary search runs. Deeper
// nodes afford a deeper hint, but the gap widens with depth so the hint
// search never approaches the cost of the real one.
func iidReduction(cfg Config, depth int) int {
	return cfg.IIDBaseReduction + depth/4
}

// allowIID gates internal iterative deepening: only when the table offered
// no move to try first, only at depths where the preliminary search pays for
// itself, and never once the clock starts to bite.
func allowIID(cfg Config, depth int, hasTTMove bool, pressure TimePressureLevel) bool {
	if !cfg.IIDEnabled || hasTTMove {
		return false
	}
	if depth < cfg.IIDMinDepth {
		return false
	}
	return pressure == PressureNone || pressure == PressureLow
}

// lmrExempt reports whether a move must be searched at full depth. The
// checks run in a fixed order; the preliminary-deepening move is matched by
// value, not by its position in the ordered list, so a hostile ordering
// cannot smuggle it into the reduced tail.
func lmrExempt(m Move, hints OrderHints, inCheck bool, ctx *searchContext, ply int) bool {
	if inCheck {
		return true
	}
	if hints.HasIID && m == hints.IIDMove {
		return true
	}
	if hints.HasTTMove && m == hints.TTMove {
		return true
	}
	for _, k := range ctx.killers[ply] {
		if m == k {
			return true
		}
	}
	if m.Capture || m.Promotion || m.GivesCheck {
		return true
	}
	return false
}

// lmrReduction returns the reduction to apply to a late quiet move, or 0
// when the move keeps full depth.
func lmrReduction(cfg Config, depth, moveIndex int, m Move, hints OrderHints, inCheck bool, ctx *searchContext, ply int) int {
	if !cfg.LMREnabled {
		return 0
	}
	if depth < cfg.LMRMinDepth || moveIndex < cfg.LMRMoveThreshold {
		return 0
	}
	if lmrExempt(m, hints, inCheck, ctx, ply) {
		return 0
	}
	r := 1
	if moveIndex >= cfg.LMRMoveThreshold*2 {
		r++
	}
	if r >= depth {
		r = depth - 1
	}
	return r
}

// lmrResearchMargin scales the re-search trigger with volatility: a reduced
// search that lands near alpha in a tactical position is less trustworthy
// than the same score in a quiet one, so the tactical margin is wider.
func lmrResearchMargin(cfg Config, tactical bool) int {
	if tactical {
		return cfg.LMRResearchMarginTactical
	}
	return cfg.LMRResearchMarginQuiet
}

// qsMargins widens the quiescence pruning margins with the remaining
// extension budget and the number of forcing moves on hand: the more search
// is left and the more tactics are in the air, the more a capture can still
// swing, so the harder it is to prune.
func qsMargins(cfg Config, remaining, moveCount int) (delta, futility int) {
	delta = cfg.QSDeltaMargin + remaining*12 + moveCount*4
	futility = cfg.QSFutilityMargin + remaining*8 + moveCount*2
	return delta, futility
}

// tacticalPosition classifies a node by how many of its moves are captures
// or checks. Used only to pick the re-search margin.
func tacticalPosition(cfg Config, moves []Move) bool {
	n := 0
	for _, m := range moves {
		if m.Capture || m.GivesCheck {
			n++
		}
	}
	return n*100 >= len(moves)*cfg.TacticalMoveThreshold
}

package main

import "sort"

// DefaultOrderer ranks moves by expected usefulness: the table move first,
// then the preliminary-deepening hint, captures by victim value, killers,
// then the rest. The search treats the result as advice only.
type DefaultOrderer struct {
	eval Evaluator
}

func NewDefaultOrderer(eval Evaluator) *DefaultOrderer {
	return &DefaultOrderer{eval: eval}
}

func (o *DefaultOrderer) Order(pos Position, moves []Move, hints OrderHints) []Move {
	type scored struct {
		m Move
		s int
	}
	ranked := make([]scored, len(moves))
	for i, m := range moves {
		s := 0
		switch {
		case hints.HasTTMove && m == hints.TTMove:
			s = 1 << 20
		case hints.HasIID && m == hints.IIDMove:
			s = 1 << 19
		case m.Capture:
			s = 1<<16 + o.eval.PieceValue(m.Victim)*8 - o.eval.PieceValue(m.Piece)
		case m == hints.Killers[0]:
			s = 1<<15 + 1
		case m == hints.Killers[1]:
			s = 1 << 15
		default:
			if m.GivesCheck {
				s = 1 << 10
			}
			if m.Promotion {
				s += 1 << 9
			}
		}
		ranked[i] = scored{m, s}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].s > ranked[j].s })
	out := make([]Move, len(moves))
	for i, r := range ranked {
		out[i] = r.m
	}
	return out
}

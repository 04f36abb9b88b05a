package main

import (
	"sort"

	"github.com/notnil/chess"
	"github.com/notnil/opening"
)

// ECOBook answers root probes from the ECO opening catalogue. Only games
// played from the standard starting position without null moves in the
// history can be matched against book lines.
type ECOBook struct {
	book     *opening.BookECO
	maxPlies int
}

func NewECOBook(maxPlies int) *ECOBook {
	return &ECOBook{book: opening.NewBookECO(), maxPlies: maxPlies}
}

func (b *ECOBook) Probe(pos Position) (Move, bool) {
	cp, ok := pos.(*ChessPosition)
	if !ok {
		return NoMove, false
	}
	history := cp.bookHistory()
	if history == nil || len(history) >= b.maxPlies {
		return NoMove, false
	}
	candidates := b.book.Possible(history)
	// Longest matching line first: the most specific known theory wins.
	sort.Slice(candidates, func(i, j int) bool {
		return len(candidates[i].PGN()) > len(candidates[j].PGN())
	})
	for _, op := range candidates {
		line := op.Game().Moves()
		if len(line) <= len(history) {
			continue
		}
		match := true
		for i, played := range history {
			if line[i].String() != played.String() {
				match = false
				break
			}
		}
		if !match {
			continue
		}
		next := line[len(history)]
		m, convOK := ChessMoveGen{}.convert(cp.current(), findValidMove(cp.current(), next))
		if !convOK {
			continue
		}
		return m, true
	}
	return NoMove, false
}

// findValidMove re-resolves a book move against the generator so its tags
// (capture, check) are populated for this position.
func findValidMove(pos *chess.Position, want *chess.Move) *chess.Move {
	for _, cm := range pos.ValidMoves() {
		if cm.S1() == want.S1() && cm.S2() == want.S2() && cm.Promo() == want.Promo() {
			return cm
		}
	}
	return want
}

// BareKingsTablebase recognizes the one endgame that needs no search at
// all: nothing but the two kings on the board is a dead draw, and any legal
// move preserves it.
type BareKingsTablebase struct {
	gen MoveGenerator
}

func NewBareKingsTablebase(gen MoveGenerator) *BareKingsTablebase {
	return &BareKingsTablebase{gen: gen}
}

func (t *BareKingsTablebase) Probe(pos Position) (TablebaseResult, bool) {
	cp, ok := pos.(*ChessPosition)
	if !ok {
		return TablebaseResult{}, false
	}
	board := cp.current().Board()
	for sq := 0; sq < 64; sq++ {
		piece := board.Piece(chess.Square(sq))
		if piece != chess.NoPiece && piece.Type() != chess.King {
			return TablebaseResult{}, false
		}
	}
	moves := t.gen.LegalMoves(pos)
	if len(moves) == 0 {
		return TablebaseResult{}, false
	}
	return TablebaseResult{Move: moves[0], Score: scoreDraw}, true
}

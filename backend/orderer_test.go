package main

import "testing"

func TestOrdererPutsTableMoveFirst(t *testing.T) {
	o := NewDefaultOrderer(ChessEvaluator{})
	quiet := Move{From: 1, To: 17, Piece: 6}
	capture := Move{From: 2, To: 18, Piece: 6, Capture: true, Victim: 2}
	ttMove := Move{From: 3, To: 19, Piece: 6}

	ordered := o.Order(nil, []Move{quiet, capture, ttMove}, OrderHints{TTMove: ttMove, HasTTMove: true})
	if ordered[0] != ttMove {
		t.Fatalf("table move must come first, got %v", ordered[0])
	}
	if ordered[1] != capture {
		t.Fatalf("capture must precede quiet moves, got %v", ordered[1])
	}
}

func TestOrdererRanksCapturesByVictim(t *testing.T) {
	o := NewDefaultOrderer(ChessEvaluator{})
	pawnTakesQueen := Move{From: 1, To: 17, Piece: 6, Capture: true, Victim: 2}
	queenTakesPawn := Move{From: 2, To: 18, Piece: 2, Capture: true, Victim: 6}

	ordered := o.Order(nil, []Move{queenTakesPawn, pawnTakesQueen}, OrderHints{})
	if ordered[0] != pawnTakesQueen {
		t.Fatalf("winning the queen with a pawn outranks winning a pawn with the queen")
	}
}

func TestOrdererRanksKillersAboveQuiet(t *testing.T) {
	o := NewDefaultOrderer(ChessEvaluator{})
	quiet := Move{From: 1, To: 17, Piece: 6}
	killer := Move{From: 2, To: 18, Piece: 6}

	ordered := o.Order(nil, []Move{quiet, killer}, OrderHints{Killers: [2]Move{killer, NoMove}})
	if ordered[0] != killer {
		t.Fatalf("killer must precede plain quiet moves")
	}
}

func TestOrdererIsAPermutation(t *testing.T) {
	o := NewDefaultOrderer(ChessEvaluator{})
	pos := NewChessPosition()
	moves := ChessMoveGen{}.LegalMoves(pos)
	ordered := o.Order(pos, moves, OrderHints{})
	if len(ordered) != len(moves) {
		t.Fatalf("ordering changed the move count: %d vs %d", len(ordered), len(moves))
	}
	seen := make(map[Move]bool, len(ordered))
	for _, m := range ordered {
		seen[m] = true
	}
	for _, m := range moves {
		if !seen[m] {
			t.Fatalf("move %s lost in ordering", m)
		}
	}
}

package main

import "testing"

func TestStartingPositionMoveCount(t *testing.T) {
	pos := NewChessPosition()
	moves := ChessMoveGen{}.LegalMoves(pos)
	if len(moves) != 20 {
		t.Fatalf("expected 20 opening moves, got %d", len(moves))
	}
}

func TestMakeUnmakeRestoresPosition(t *testing.T) {
	pos := NewChessPosition()
	gen := ChessMoveGen{}
	fen, hash := pos.FEN(), pos.Hash()

	moves := gen.LegalMoves(pos)
	for _, m := range moves[:5] {
		pos.MakeMove(m)
		if pos.Hash() == hash {
			t.Fatalf("hash unchanged after %s", m)
		}
		pos.Unmake()
		if pos.FEN() != fen || pos.Hash() != hash {
			t.Fatalf("unmake did not restore the position after %s", m)
		}
	}
}

func TestNullMoveFlipsSideAndHash(t *testing.T) {
	pos := NewChessPosition()
	side, hash := pos.SideToMove(), pos.Hash()

	pos.MakeNullMove()
	if pos.SideToMove() != side.Other() {
		t.Fatalf("null move must flip the side to move")
	}
	if pos.Hash() == hash {
		t.Fatalf("null move must change the hash")
	}
	pos.Unmake()
	if pos.SideToMove() != side || pos.Hash() != hash {
		t.Fatalf("unmake of a null move did not restore the position")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	pos := NewChessPosition()
	clone := pos.Clone()
	clone.MakeMove(ChessMoveGen{}.LegalMoves(clone)[0])
	if pos.Hash() == clone.Hash() {
		t.Fatalf("clone shares state with the original")
	}
	if len(pos.history) != 0 {
		t.Fatalf("moving on the clone touched the original history")
	}
}

func TestIsInCheckDetection(t *testing.T) {
	gen := ChessMoveGen{}
	checked := NewChessPositionFEN(matedFEN)
	if !gen.IsInCheck(checked, SideWhite) {
		t.Fatalf("white is in check from the queen on h4")
	}
	if gen.IsInCheck(checked, SideBlack) {
		t.Fatalf("black is not in check")
	}
	quiet := NewChessPosition()
	if gen.IsInCheck(quiet, SideWhite) || gen.IsInCheck(quiet, SideBlack) {
		t.Fatalf("nobody is in check at the start")
	}
}

func TestTacticalMovesAreTagged(t *testing.T) {
	gen := ChessMoveGen{}
	pos := NewChessPositionFEN("r1bqkb1r/ppp2ppp/2n2n2/3p4/3P4/2N2N2/PPP2PPP/R1BQKB1R w KQkq - 0 6")
	tactical := gen.TacticalMoves(pos)
	if len(tactical) == 0 {
		t.Fatalf("expected captures on d5")
	}
	legal := gen.LegalMoves(pos)
	for _, m := range tactical {
		if !m.Capture && !m.Promotion && !m.GivesCheck {
			t.Errorf("non-tactical move %s in tactical list", m)
		}
		found := false
		for _, l := range legal {
			if l == m {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("tactical move %s missing from legal moves", m)
		}
	}
}

func TestPromotionsAreQueenOnly(t *testing.T) {
	pos := NewChessPositionFEN("8/P7/8/8/8/8/k6K/8 w - - 0 1")
	moves := ChessMoveGen{}.LegalMoves(pos)
	promos := 0
	for _, m := range moves {
		if m.Promotion {
			promos++
		}
	}
	if promos != 1 {
		t.Fatalf("expected exactly one promotion per target square, got %d", promos)
	}
}

func TestCaptureVictimIsRecorded(t *testing.T) {
	eval := ChessEvaluator{}
	pos := NewChessPositionFEN("rnb1kbnr/pppp1ppp/8/4q3/3P4/8/PPP1PPPP/RNBQKBNR w KQkq - 0 3")
	moves := ChessMoveGen{}.LegalMoves(pos)
	foundQueenCapture := false
	for _, m := range moves {
		if m.Capture && eval.PieceValue(m.Victim) == 900 {
			foundQueenCapture = true
		}
	}
	if !foundQueenCapture {
		t.Fatalf("expected a capture of the queen on e5 with its victim recorded")
	}
}

func TestParseCoordinateMove(t *testing.T) {
	gen := ChessMoveGen{}
	pos := NewChessPosition()
	m, err := parseCoordinateMove(gen, pos, "e2e4")
	if err != nil {
		t.Fatalf("e2e4 must parse: %v", err)
	}
	pos.MakeMove(m)
	if pos.SideToMove() != SideBlack {
		t.Fatalf("after e2e4 black is to move")
	}

	if _, err := parseCoordinateMove(gen, pos, "e2e4"); err == nil {
		t.Fatalf("e2e4 is not legal for black")
	}
	if _, err := parseCoordinateMove(gen, pos, "bogus"); err == nil {
		t.Fatalf("malformed input must error")
	}
	if _, err := parseCoordinateMove(gen, pos, "e7e8r"); err == nil {
		t.Fatalf("underpromotions are rejected")
	}
}

func TestZobristStability(t *testing.T) {
	a := NewChessPosition()
	b := NewChessPosition()
	if a.Hash() != b.Hash() {
		t.Fatalf("equal positions must hash equally")
	}
	// Transposition: the same position reached by different move orders.
	gen := ChessMoveGen{}
	playSequence := func(pos *ChessPosition, seq []string) {
		for _, raw := range seq {
			m, err := parseCoordinateMove(gen, pos, raw)
			if err != nil {
				t.Fatalf("bad sequence move %s: %v", raw, err)
			}
			pos.MakeMove(m)
		}
	}
	playSequence(a, []string{"g1f3", "g8f6", "b1c3", "b8c6"})
	playSequence(b, []string{"b1c3", "b8c6", "g1f3", "g8f6"})
	if a.Hash() != b.Hash() {
		t.Fatalf("transpositions must hash equally")
	}
}

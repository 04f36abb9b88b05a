package main

import "testing"

func TestECOBookProbeAtStart(t *testing.T) {
	book := NewECOBook(20)
	pos := NewChessPosition()
	m, ok := book.Probe(pos)
	if !ok {
		t.Fatalf("the catalogue knows the starting position")
	}
	legal := false
	for _, l := range (ChessMoveGen{}).LegalMoves(pos) {
		if l == m {
			legal = true
			break
		}
	}
	if !legal {
		t.Fatalf("book move %s is not legal", m)
	}
}

func TestECOBookFollowsPlayedLine(t *testing.T) {
	book := NewECOBook(20)
	gen := ChessMoveGen{}
	pos := NewChessPosition()
	m, err := parseCoordinateMove(gen, pos, "e2e4")
	if err != nil {
		t.Fatal(err)
	}
	pos.MakeMove(m)
	reply, ok := book.Probe(pos)
	if !ok {
		t.Fatalf("expected a book reply to e4")
	}
	legal := false
	for _, l := range gen.LegalMoves(pos) {
		if l == reply {
			legal = true
			break
		}
	}
	if !legal {
		t.Fatalf("book reply %s is not legal", reply)
	}
}

func TestECOBookDeclinesAfterNullMoveOrCustomStart(t *testing.T) {
	book := NewECOBook(20)

	custom := NewChessPositionFEN(italianFEN)
	if _, ok := book.Probe(custom); ok {
		t.Fatalf("games not started from the initial position have no history to match")
	}

	pos := NewChessPosition()
	pos.MakeNullMove()
	if _, ok := book.Probe(pos); ok {
		t.Fatalf("a null move in the history invalidates book matching")
	}
}

func TestBareKingsTablebase(t *testing.T) {
	gen := ChessMoveGen{}
	tb := NewBareKingsTablebase(gen)

	bare := NewChessPositionFEN("8/8/8/4k3/8/8/8/4K3 w - - 0 1")
	result, ok := tb.Probe(bare)
	if !ok {
		t.Fatalf("two lone kings are a known draw")
	}
	if result.Score != scoreDraw || !result.Move.IsValid() {
		t.Fatalf("expected a drawing move, got %+v", result)
	}

	withPawn := NewChessPositionFEN("8/8/8/4k3/8/8/4P3/4K3 w - - 0 1")
	if _, ok := tb.Probe(withPawn); ok {
		t.Fatalf("material on the board is outside the tablebase")
	}
}

func TestSearcherUsesBookBeforeSearching(t *testing.T) {
	cfg := DefaultConfig()
	withConfig(t, cfg)
	s := NewSearcher(ChessMoveGen{}, ChessEvaluator{}, cfg)
	s.SetBook(NewECOBook(20))
	result := s.RootSearch(NewChessPosition(), NewTimeBudget(0, cfg), 6, nil)
	if !result.FromBook {
		t.Fatalf("the starting position should be answered from the book")
	}
	if result.Nodes != 0 {
		t.Fatalf("a book hit must not search: %d nodes", result.Nodes)
	}
}

package main

import "testing"

func TestEngineControllerPositionAndMoves(t *testing.T) {
	cfg := DefaultConfig()
	withConfig(t, cfg)
	e := NewEngineController(cfg)

	if err := e.SetPositionFEN("this is not fen"); err == nil {
		t.Fatalf("invalid FEN must be rejected")
	}
	if err := e.ApplyMove("e2e4"); err != nil {
		t.Fatalf("e2e4 from the start: %v", err)
	}
	if err := e.ApplyMove("e2e4"); err == nil {
		t.Fatalf("repeating e2e4 is illegal")
	}

	status := e.Status()
	if status.SideToMove != "black" {
		t.Fatalf("after e2e4 black is to move, got %s", status.SideToMove)
	}
	if len(status.History) != 1 || status.History[0] != "e2e4" {
		t.Fatalf("history mismatch: %v", status.History)
	}
	if status.LegalMoves != 20 {
		t.Fatalf("black has 20 replies, got %d", status.LegalMoves)
	}
}

func TestEngineControllerSearchProducesMove(t *testing.T) {
	cfg := DefaultConfig()
	withConfig(t, cfg)
	e := NewEngineController(cfg)
	if err := e.SetPositionFEN(backRankMateFEN); err != nil {
		t.Fatal(err)
	}
	result, err := e.Search(SearchParams{Depth: 3})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.Move != "e1e8" {
		t.Fatalf("expected e1e8, got %s", result.Move)
	}
	status := e.Status()
	if status.LastResult == nil || status.LastResult.Move != "e1e8" {
		t.Fatalf("last result not recorded: %+v", status.LastResult)
	}
}

func TestEngineControllerResetRestoresStart(t *testing.T) {
	cfg := DefaultConfig()
	withConfig(t, cfg)
	e := NewEngineController(cfg)
	if err := e.ApplyMove("e2e4"); err != nil {
		t.Fatal(err)
	}
	e.Reset()
	status := e.Status()
	if status.FEN != startingFEN {
		t.Fatalf("reset must restore the starting position, got %s", status.FEN)
	}
	if len(status.History) != 0 || status.LastResult != nil {
		t.Fatalf("reset must clear history and results")
	}
}

func TestAnalysisBacklogQueueing(t *testing.T) {
	cfg := DefaultConfig()
	withConfig(t, cfg)
	e := NewEngineController(cfg)
	b := NewAnalysisBacklog(e, nil)

	if b.Enqueue("garbage", 4) {
		t.Fatalf("invalid FEN must not enqueue")
	}
	if !b.Enqueue(italianFEN, 4) {
		t.Fatalf("valid FEN must enqueue")
	}
	if !b.Enqueue(italianFEN, 4) {
		t.Fatalf("duplicate submissions are accepted and counted")
	}
	if b.Len() != 1 {
		t.Fatalf("duplicates must not grow the queue, got %d", b.Len())
	}
	snap := b.Snapshot()
	if len(snap) != 1 || snap[0].Hits != 2 {
		t.Fatalf("expected one entry with two hits: %+v", snap)
	}
}

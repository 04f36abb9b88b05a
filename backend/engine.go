package main

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	errSearchRunning = errors.New("a search is already running")
	errNoPosition    = errors.New("no position set")
)

type EngineStatus struct {
	FEN        string        `json:"fen"`
	SideToMove string        `json:"side_to_move"`
	InCheck    bool          `json:"in_check"`
	LegalMoves int           `json:"legal_moves"`
	Searching  bool          `json:"searching"`
	Config     Config        `json:"config"`
	LastResult *SearchResult `json:"last_result,omitempty"`
	Stats      StatsSnapshot `json:"stats"`
	TT         TTStats       `json:"tt"`
	History    []string      `json:"history"`
}

type SearchParams struct {
	MoveTimeMs int `json:"move_time_ms"`
	Depth      int `json:"depth"`
}

// EngineController serializes access to the engine: one position, one
// searcher, at most one search in flight. HTTP handlers and the analysis
// backlog both go through it.
type EngineController struct {
	mu         sync.Mutex
	pos        *ChessPosition
	history    []string
	searcher   *Searcher
	gen        ChessMoveGen
	searching  atomic.Bool
	stop       *atomic.Bool
	lastResult *SearchResult
}

func NewEngineController(cfg Config) *EngineController {
	gen := ChessMoveGen{}
	searcher := NewSearcher(gen, ChessEvaluator{}, cfg)
	searcher.SetBook(NewECOBook(20))
	searcher.SetTablebase(NewBareKingsTablebase(gen))
	return &EngineController{
		pos:      NewChessPosition(),
		searcher: searcher,
		gen:      gen,
		stop:     &atomic.Bool{},
	}
}

func (e *EngineController) Searcher() *Searcher { return e.searcher }

func (e *EngineController) SetPositionFEN(fen string) error {
	if e.searching.Load() {
		return errSearchRunning
	}
	pos := NewChessPositionFEN(fen)
	if pos == nil {
		return fmt.Errorf("invalid FEN %q", fen)
	}
	e.mu.Lock()
	e.pos = pos
	e.history = nil
	e.mu.Unlock()
	return nil
}

func (e *EngineController) Reset() {
	e.RequestStop()
	e.mu.Lock()
	e.pos = NewChessPosition()
	e.history = nil
	e.lastResult = nil
	e.mu.Unlock()
}

// parseCoordinateMove turns "e2e4" / "e7e8q" into a legal move for pos.
func parseCoordinateMove(gen ChessMoveGen, pos *ChessPosition, raw string) (Move, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if len(raw) != 4 && len(raw) != 5 {
		return NoMove, fmt.Errorf("malformed move %q", raw)
	}
	sq := func(s string) (Square, bool) {
		file := int(s[0] - 'a')
		rank := int(s[1] - '1')
		if file < 0 || file > 7 || rank < 0 || rank > 7 {
			return SquareNone, false
		}
		return Square(rank*8 + file), true
	}
	from, ok1 := sq(raw[:2])
	to, ok2 := sq(raw[2:4])
	if !ok1 || !ok2 {
		return NoMove, fmt.Errorf("malformed move %q", raw)
	}
	promo := len(raw) == 5
	if promo && raw[4] != 'q' {
		return NoMove, fmt.Errorf("only queen promotions are supported, got %q", raw)
	}
	for _, m := range gen.LegalMoves(pos) {
		if m.From == from && m.To == to && m.Promotion == promo {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("illegal move %q", raw)
}

func (e *EngineController) ApplyMove(raw string) error {
	if e.searching.Load() {
		return errSearchRunning
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	m, err := parseCoordinateMove(e.gen, e.pos, raw)
	if err != nil {
		return err
	}
	e.pos.MakeMove(m)
	e.history = append(e.history, raw)
	return nil
}

// Search runs one root search on the current position. Blocks until the
// search completes or is stopped; concurrent callers get errSearchRunning
// instead of queueing.
func (e *EngineController) Search(params SearchParams) (SearchResult, error) {
	if !e.searching.CompareAndSwap(false, true) {
		return SearchResult{}, errSearchRunning
	}
	defer e.searching.Store(false)

	e.mu.Lock()
	if e.pos == nil {
		e.mu.Unlock()
		return SearchResult{}, errNoPosition
	}
	pos := e.pos.Clone()
	e.mu.Unlock()

	cfg := GetConfig()
	depth := params.Depth
	if depth <= 0 || depth > maxPly {
		depth = maxPly - 1
	}
	var budget *TimeBudget
	if params.MoveTimeMs > 0 {
		budget = NewTimeBudget(time.Duration(params.MoveTimeMs)*time.Millisecond, cfg)
	} else {
		budget = NewTimeBudget(0, cfg)
	}

	e.stop.Store(false)
	result := e.searcher.RootSearch(pos, budget, depth, e.stop)
	log.Info().Str("move", result.Move).Int("depth", result.Depth).
		Int("score", result.Score).Uint64("nodes", result.Nodes).
		Dur("elapsed", result.Elapsed).Msg("search finished")

	e.mu.Lock()
	e.lastResult = &result
	e.mu.Unlock()
	return result, nil
}

func (e *EngineController) RequestStop() {
	e.stop.Store(true)
}

func (e *EngineController) Status() EngineStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return EngineStatus{
		FEN:        e.pos.FEN(),
		SideToMove: e.pos.SideToMove().String(),
		InCheck:    e.gen.IsInCheck(e.pos, e.pos.SideToMove()),
		LegalMoves: len(e.gen.LegalMoves(e.pos)),
		Searching:  e.searching.Load(),
		Config:     GetConfig(),
		LastResult: e.lastResult,
		Stats:      e.searcher.Stats().Snapshot(),
		TT:         e.searcher.Table().Stats(),
		History:    append([]string(nil), e.history...),
	}
}

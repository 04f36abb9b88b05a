package main

// Position is the mutable board handle owned by the caller. The search
// mutates it through make/unmake pairs and guarantees it is restored to its
// entry state before any search call returns. A position is never shared
// between workers; each worker searches its own Clone.
type Position interface {
	// Hash is the full 64-bit position key. Stored verbatim in table
	// entries so a slot collision is detected on probe.
	Hash() uint64
	SideToMove() Side
	MakeMove(m Move)
	MakeNullMove()
	Unmake()
	Clone() Position
}

// MoveGenerator produces legal moves and check information for a position.
// The returned slices are finite and must not be reused after the position
// is mutated.
type MoveGenerator interface {
	LegalMoves(pos Position) []Move
	// TacticalMoves returns captures, promotions and checking moves only.
	TacticalMoves(pos Position) []Move
	IsInCheck(pos Position, side Side) bool
	GivesCheck(pos Position, m Move) bool
}

// Evaluator scores a position from the side to move's point of view, in
// centipawn-equivalent units well inside (-scoreWin, scoreWin). PieceValue
// feeds the quiescence delta and futility margins.
type Evaluator interface {
	Evaluate(pos Position) int
	PieceValue(p PieceType) int
}

// OrderHints carries everything the search knows about a node's moves into
// the external orderer. The hint moves are advisory for ordering only; the
// search re-checks them by value equality and never relies on where the
// orderer placed them.
type OrderHints struct {
	TTMove    Move
	HasTTMove bool
	IIDMove   Move
	HasIID    bool
	Killers   [2]Move
	Ply       int
}

type MoveOrderer interface {
	Order(pos Position, moves []Move, hints OrderHints) []Move
}

// OpeningBook is an optional pre-search probe. A hit bypasses the search
// entirely for that root call.
type OpeningBook interface {
	Probe(pos Position) (Move, bool)
}

type TablebaseResult struct {
	Move  Move
	Score int
}

// Tablebase is an optional endgame probe with the same bypass contract as
// the opening book.
type Tablebase interface {
	Probe(pos Position) (TablebaseResult, bool)
}

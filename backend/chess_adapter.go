package main

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"
)

// Zobrist keys for the chess adapter, generated from a fixed seed so hashes
// are stable across runs and table snapshots stay loadable.
var (
	zobristPieces [2][7][64]uint64
	zobristSide   uint64
)

func splitmix64(state *uint64) uint64 {
	*state += 0x9e3779b97f4a7c15
	z := *state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func init() {
	seed := uint64(0x8e2f_44c1_9ab3_07d5)
	for c := 0; c < 2; c++ {
		for p := 1; p < 7; p++ {
			for sq := 0; sq < 64; sq++ {
				zobristPieces[c][p][sq] = splitmix64(&seed)
			}
		}
	}
	zobristSide = splitmix64(&seed)
}

func hashChessPosition(pos *chess.Position) uint64 {
	var h uint64
	board := pos.Board()
	for sq := 0; sq < 64; sq++ {
		piece := board.Piece(chess.Square(sq))
		if piece == chess.NoPiece {
			continue
		}
		c := 0
		if piece.Color() == chess.Black {
			c = 1
		}
		h ^= zobristPieces[c][int(piece.Type())][sq]
	}
	if pos.Turn() == chess.Black {
		h ^= zobristSide
	}
	return h
}

type chessFrame struct {
	pos  *chess.Position
	hash uint64
}

// ChessPosition adapts a notnil/chess position to the search. Make/unmake
// is a stack of immutable positions: Update hands back a fresh position, so
// unmake is a pop. The move history from the game start is kept for the
// opening book.
type ChessPosition struct {
	frames  []chessFrame
	history []*chess.Move
	fromStd bool
}

func NewChessPosition() *ChessPosition {
	return NewChessPositionFEN(startingFEN)
}

const startingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func NewChessPositionFEN(fen string) *ChessPosition {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil
	}
	game := chess.NewGame(opt)
	p := game.Position()
	return &ChessPosition{
		frames:  []chessFrame{{pos: p, hash: hashChessPosition(p)}},
		fromStd: fen == startingFEN,
	}
}

func (p *ChessPosition) current() *chess.Position {
	return p.frames[len(p.frames)-1].pos
}

func (p *ChessPosition) Hash() uint64 {
	return p.frames[len(p.frames)-1].hash
}

func (p *ChessPosition) SideToMove() Side {
	if p.current().Turn() == chess.White {
		return SideWhite
	}
	return SideBlack
}

func (p *ChessPosition) FEN() string {
	return p.current().String()
}

// findChessMove matches a search move back to the generator's move object.
func (p *ChessPosition) findChessMove(m Move) *chess.Move {
	for _, cm := range p.current().ValidMoves() {
		if Square(cm.S1()) == m.From && Square(cm.S2()) == m.To {
			if m.Promotion && cm.Promo() != chess.Queen {
				continue
			}
			if !m.Promotion && cm.Promo() != chess.NoPieceType {
				continue
			}
			return cm
		}
	}
	return nil
}

func (p *ChessPosition) MakeMove(m Move) {
	cm := p.findChessMove(m)
	if cm == nil {
		panic(fmt.Sprintf("illegal move %s in %s", m, p.FEN()))
	}
	next := p.current().Update(cm)
	p.frames = append(p.frames, chessFrame{pos: next, hash: hashChessPosition(next)})
	p.history = append(p.history, cm)
}

// MakeNullMove passes the turn: same board, side flipped, en passant
// cleared. Expressed as a FEN edit because the underlying library has no
// pass primitive.
func (p *ChessPosition) MakeNullMove() {
	fields := strings.Fields(p.FEN())
	if fields[1] == "w" {
		fields[1] = "b"
	} else {
		fields[1] = "w"
	}
	fields[3] = "-"
	opt, err := chess.FEN(strings.Join(fields, " "))
	if err != nil {
		panic("null move produced invalid position: " + p.FEN())
	}
	next := chess.NewGame(opt).Position()
	p.frames = append(p.frames, chessFrame{pos: next, hash: hashChessPosition(next)})
	p.history = append(p.history, nil)
}

func (p *ChessPosition) Unmake() {
	if len(p.frames) < 2 {
		panic("unmake at root position")
	}
	p.frames = p.frames[:len(p.frames)-1]
	p.history = p.history[:len(p.history)-1]
}

func (p *ChessPosition) Clone() Position {
	cp := &ChessPosition{
		frames:  append([]chessFrame(nil), p.frames...),
		history: append([]*chess.Move(nil), p.history...),
		fromStd: p.fromStd,
	}
	return cp
}

// bookHistory returns the move sequence from the standard starting
// position, or nil when the game began elsewhere or a null move happened.
func (p *ChessPosition) bookHistory() []*chess.Move {
	if !p.fromStd {
		return nil
	}
	for _, m := range p.history {
		if m == nil {
			return nil
		}
	}
	return p.history
}

// ChessMoveGen generates search moves from notnil/chess legal moves.
// Underpromotions are dropped; the search sees one promotion per target
// square, always to a queen.
type ChessMoveGen struct{}

func (ChessMoveGen) convert(pos *chess.Position, cm *chess.Move) (Move, bool) {
	if cm.Promo() != chess.NoPieceType && cm.Promo() != chess.Queen {
		return NoMove, false
	}
	board := pos.Board()
	m := Move{
		From:       Square(cm.S1()),
		To:         Square(cm.S2()),
		Piece:      PieceType(board.Piece(cm.S1()).Type()),
		Promotion:  cm.Promo() == chess.Queen,
		GivesCheck: cm.HasTag(chess.Check),
	}
	if cm.HasTag(chess.Capture) {
		m.Capture = true
		m.Victim = PieceType(board.Piece(cm.S2()).Type())
	}
	if cm.HasTag(chess.EnPassant) {
		m.Capture = true
		m.Victim = PieceType(chess.Pawn)
	}
	return m, true
}

func (g ChessMoveGen) LegalMoves(pos Position) []Move {
	cp := pos.(*ChessPosition)
	valid := cp.current().ValidMoves()
	out := make([]Move, 0, len(valid))
	for _, cm := range valid {
		if m, ok := g.convert(cp.current(), cm); ok {
			out = append(out, m)
		}
	}
	return out
}

func (g ChessMoveGen) TacticalMoves(pos Position) []Move {
	cp := pos.(*ChessPosition)
	valid := cp.current().ValidMoves()
	out := make([]Move, 0, 8)
	for _, cm := range valid {
		m, ok := g.convert(cp.current(), cm)
		if !ok {
			continue
		}
		if m.Capture || m.Promotion || m.GivesCheck {
			out = append(out, m)
		}
	}
	return out
}

func (ChessMoveGen) IsInCheck(pos Position, side Side) bool {
	cp := pos.(*ChessPosition)
	color := chess.White
	if side == SideBlack {
		color = chess.Black
	}
	board := cp.current().Board()
	kingSq := -1
	for sq := 0; sq < 64; sq++ {
		piece := board.Piece(chess.Square(sq))
		if piece.Type() == chess.King && piece.Color() == color {
			kingSq = sq
			break
		}
	}
	if kingSq < 0 {
		return false
	}
	return squareAttacked(board, chess.Square(kingSq), color.Other())
}

func (g ChessMoveGen) GivesCheck(pos Position, m Move) bool {
	return m.GivesCheck
}

var knightOffsets = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
var kingOffsets = [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
var bishopDirs = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
var rookDirs = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// squareAttacked scans outward from sq for attackers of the given color.
func squareAttacked(board *chess.Board, sq chess.Square, by chess.Color) bool {
	file, rank := int(sq)%8, int(sq)/8
	at := func(f, r int) chess.Piece {
		if f < 0 || f > 7 || r < 0 || r > 7 {
			return chess.NoPiece
		}
		return board.Piece(chess.Square(r*8 + f))
	}
	pawnDir := 1
	if by == chess.White {
		pawnDir = -1
	}
	for _, df := range []int{-1, 1} {
		p := at(file+df, rank+pawnDir)
		if p.Color() == by && p.Type() == chess.Pawn {
			return true
		}
	}
	for _, o := range knightOffsets {
		p := at(file+o[0], rank+o[1])
		if p.Color() == by && p.Type() == chess.Knight {
			return true
		}
	}
	for _, o := range kingOffsets {
		p := at(file+o[0], rank+o[1])
		if p.Color() == by && p.Type() == chess.King {
			return true
		}
	}
	slide := func(dirs [4][2]int, t1, t2 chess.PieceType) bool {
		for _, d := range dirs {
			f, r := file+d[0], rank+d[1]
			for f >= 0 && f <= 7 && r >= 0 && r <= 7 {
				p := at(f, r)
				if p != chess.NoPiece {
					if p.Color() == by && (p.Type() == t1 || p.Type() == t2) {
						return true
					}
					break
				}
				f += d[0]
				r += d[1]
			}
		}
		return false
	}
	if slide(bishopDirs, chess.Bishop, chess.Queen) {
		return true
	}
	return slide(rookDirs, chess.Rook, chess.Queen)
}

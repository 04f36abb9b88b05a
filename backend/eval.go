package main

import "github.com/notnil/chess"

// Material values in centipawns, indexed by chess.PieceType.
var pieceValues = [7]int{0, 0, 900, 500, 330, 320, 100}

// Small positional tables, from white's point of view, a1 at index 0.
var pawnTable = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, -20, -20, 10, 10, 5,
	5, -5, -10, 0, 0, -10, -5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, 5, 10, 25, 25, 10, 5, 5,
	10, 10, 20, 30, 30, 20, 10, 10,
	50, 50, 50, 50, 50, 50, 50, 50,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var knightTable = [64]int{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

var bishopTable = [64]int{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

var kingTable = [64]int{
	20, 30, 10, 0, 0, 10, 30, 20,
	20, 20, 0, 0, 0, 0, 20, 20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
}

// ChessEvaluator is a fast material-and-placement evaluation. The score is
// always from the side to move's point of view, which is what the negamax
// driver expects.
type ChessEvaluator struct{}

func pieceSquare(t chess.PieceType, sq int) int {
	switch t {
	case chess.Pawn:
		return pawnTable[sq]
	case chess.Knight:
		return knightTable[sq]
	case chess.Bishop:
		return bishopTable[sq]
	case chess.King:
		return kingTable[sq]
	default:
		return 0
	}
}

func mirror(sq int) int {
	return sq ^ 56
}

func (ChessEvaluator) Evaluate(pos Position) int {
	cp := pos.(*ChessPosition)
	board := cp.current().Board()
	score := 0
	for sq := 0; sq < 64; sq++ {
		piece := board.Piece(chess.Square(sq))
		if piece == chess.NoPiece {
			continue
		}
		v := pieceValues[int(piece.Type())]
		if piece.Color() == chess.White {
			score += v + pieceSquare(piece.Type(), sq)
		} else {
			score -= v + pieceSquare(piece.Type(), mirror(sq))
		}
	}
	if cp.current().Turn() == chess.Black {
		score = -score
	}
	// Tempo: having the move is worth a little by itself.
	return score + 10
}

func (ChessEvaluator) PieceValue(p PieceType) int {
	if int(p) < len(pieceValues) {
		return pieceValues[int(p)]
	}
	return 0
}

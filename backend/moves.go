package main

import "fmt"

type Side uint8

const (
	SideBlack Side = iota
	SideWhite
)

func (s Side) Other() Side {
	return s ^ 1
}

func (s Side) String() string {
	if s == SideBlack {
		return "black"
	}
	return "white"
}

// PieceType is an opaque piece identifier supplied by the game adapter.
// The core only compares piece types and asks the evaluator for their value.
type PieceType uint8

const PieceNone PieceType = 0

// Square is a board-coordinate index assigned by the game adapter
// (0..63 for chess, 0..80 for shogi).
type Square uint8

const SquareNone Square = 0xff

// Move identifies a board move or a drop. Two moves are equal iff all
// fields match; plain struct equality is relied on throughout the search
// to recognize the TT move and the IID hint inside ordered move lists.
type Move struct {
	From       Square
	To         Square
	Piece      PieceType
	Drop       bool
	Promotion  bool
	Capture    bool
	Victim     PieceType
	GivesCheck bool
}

var NoMove = Move{From: SquareNone, To: SquareNone}

func (m Move) IsValid() bool {
	return m.To != SquareNone
}

func (sq Square) String() string {
	if sq == SquareNone || sq >= 64 {
		return "-"
	}
	return string([]byte{byte('a' + sq%8), byte('1' + sq/8)})
}

// String renders coordinate notation on an 8-wide board ("e2e4", "e7e8q"),
// the same form parseCoordinateMove accepts.
func (m Move) String() string {
	if !m.IsValid() {
		return "none"
	}
	if m.Drop {
		return fmt.Sprintf("%d*%s", m.Piece, m.To)
	}
	if m.Promotion {
		return m.From.String() + m.To.String() + "q"
	}
	return m.From.String() + m.To.String()
}

const (
	scoreInfinity = 30000
	scoreMate     = 29000
	scoreDraw     = 0
	maxPly        = 128

	// Scores at or beyond this magnitude encode a forced mate distance.
	scoreWin = scoreMate - maxPly
)

func mateIn(ply int) int {
	return scoreMate - ply
}

func matedIn(ply int) int {
	return -scoreMate + ply
}

func isMateScore(v int) bool {
	return v >= scoreWin || v <= -scoreWin
}

// Mate scores are stored in the table relative to the probing node, not to
// the root, so they stay correct when the entry is reused at another ply.
func scoreToTT(v, ply int) int {
	if v >= scoreWin {
		return v + ply
	}
	if v <= -scoreWin {
		return v - ply
	}
	return v
}

func scoreFromTT(v, ply int) int {
	if v >= scoreWin {
		return v - ply
	}
	if v <= -scoreWin {
		return v + ply
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

package rules

import (
	"strings"

	"github.com/park285/omok-arena/internal/board"
)

// ForbiddenType classifies a renju-style forbidden move.
type ForbiddenType string

const (
	// ForbiddenNone means the move is allowed.
	ForbiddenNone ForbiddenType = ""
	// Overline: six or more consecutive stones through the move.
	Overline ForbiddenType = "OVERLINE"
	// DoubleThree: the move creates two or more open threes.
	DoubleThree ForbiddenType = "DOUBLE_THREE"
	// DoubleFour: the move creates two or more open fours.
	DoubleFour ForbiddenType = "DOUBLE_FOUR"
)

// Pattern window tokens: 'X' own stone, '_' empty, 'O' opponent, 'B' border.
// Border cells never match '_', so an edge-blocked run is not open.
const (
	tokenOwn      = 'X'
	tokenEmpty    = '_'
	tokenOpponent = 'O'
	tokenBorder   = 'B'
)

var openThreePatterns = []string{"_XXX_", "_XX_X_", "_X_XX_"}

const openFourPattern = "_XXXX_"

// CheckForbidden evaluates the forbidden-move rules for placing color at
// pos. Only BLACK is subject to them; WHITE always gets ForbiddenNone. The
// board is never mutated: pattern checks run on a clone with the candidate
// stone speculatively placed.
func CheckForbidden(b *board.Board, pos board.Position, color board.StoneColor) ForbiddenType {
	if color != board.Black {
		return ForbiddenNone
	}
	if checkOverline(b, pos, color) {
		return Overline
	}
	if checkDoubleThree(b, pos, color) {
		return DoubleThree
	}
	if checkDoubleFour(b, pos, color) {
		return DoubleFour
	}
	return ForbiddenNone
}

func checkOverline(b *board.Board, pos board.Position, color board.StoneColor) bool {
	for _, d := range directions {
		if countConsecutive(b, pos, color, d[0], d[1]) > 5 {
			return true
		}
	}
	return false
}

func checkDoubleThree(b *board.Board, pos board.Position, color board.StoneColor) bool {
	test := speculate(b, pos, color)
	n := 0
	for _, d := range directions {
		if isOpenThree(test, pos, color, d[0], d[1]) {
			n++
		}
	}
	return n >= 2
}

func checkDoubleFour(b *board.Board, pos board.Position, color board.StoneColor) bool {
	test := speculate(b, pos, color)
	n := 0
	for _, d := range directions {
		if isOpenFour(test, pos, color, d[0], d[1]) {
			n++
		}
	}
	return n >= 2
}

func isOpenThree(b *board.Board, pos board.Position, color board.StoneColor, dr, dc int) bool {
	window := lineWindow(b, pos, color, dr, dc)
	for _, p := range openThreePatterns {
		if strings.Contains(window, p) {
			return true
		}
	}
	return false
}

func isOpenFour(b *board.Board, pos board.Position, color board.StoneColor, dr, dc int) bool {
	return strings.Contains(lineWindow(b, pos, color, dr, dc), openFourPattern)
}

// lineWindow encodes the 11 cells at offsets -5..+5 along a direction
// through pos. Out-of-bounds cells are encoded as a border token distinct
// from empty and opponent cells.
func lineWindow(b *board.Board, pos board.Position, color board.StoneColor, dr, dc int) string {
	var sb strings.Builder
	sb.Grow(11)
	for i := -5; i <= 5; i++ {
		row := pos.Row + dr*i
		col := pos.Col + dc*i
		switch {
		case !board.InBounds(row, col):
			sb.WriteByte(tokenBorder)
		default:
			switch b.GetStone(board.Position{Row: row, Col: col}) {
			case color:
				sb.WriteByte(tokenOwn)
			case board.Empty:
				sb.WriteByte(tokenEmpty)
			default:
				sb.WriteByte(tokenOpponent)
			}
		}
	}
	return sb.String()
}

// speculate clones the board and places the candidate stone if the cell is
// still empty. A clone of the occupied cell (re-evaluating an existing
// stone) is returned as-is.
func speculate(b *board.Board, pos board.Position, color board.StoneColor) *board.Board {
	test := b.Clone()
	if test.IsEmpty(pos) {
		_ = test.PlaceStone(board.Stone{Position: pos, Color: color})
	}
	return test
}

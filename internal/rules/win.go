package rules

import (
	"github.com/park285/omok-arena/internal/board"
)

// The four line directions through a position: horizontal, vertical and the
// two diagonals. The reverse of each is covered by counting both ways.
var directions = [4][2]int{
	{0, 1},
	{1, 0},
	{1, 1},
	{1, -1},
}

// CheckWin reports whether the stone of the given color at position
// completes a run of five or more in any direction. Counting includes the
// position itself once and stops at grid edges or non-matching cells.
func CheckWin(b *board.Board, pos board.Position, color board.StoneColor) bool {
	for _, d := range directions {
		if countConsecutive(b, pos, color, d[0], d[1]) >= 5 {
			return true
		}
	}
	return false
}

func countConsecutive(b *board.Board, pos board.Position, color board.StoneColor, dr, dc int) int {
	count := 1
	count += countInDirection(b, pos, color, dr, dc)
	count += countInDirection(b, pos, color, -dr, -dc)
	return count
}

func countInDirection(b *board.Board, pos board.Position, color board.StoneColor, dr, dc int) int {
	count := 0
	row, col := pos.Row+dr, pos.Col+dc
	for board.InBounds(row, col) && b.GetStone(board.Position{Row: row, Col: col}) == color {
		count++
		row += dr
		col += dc
	}
	return count
}

package board

import (
	"fmt"
)

// Size is the fixed Omok board dimension (15x15 intersections).
const Size = 15

// StoneColor is the state of a single intersection.
type StoneColor string

const (
	Black StoneColor = "BLACK"
	White StoneColor = "WHITE"
	Empty StoneColor = "EMPTY"
)

// Opponent returns the opposing player color; Empty maps to Empty.
func (c StoneColor) Opponent() StoneColor {
	switch c {
	case Black:
		return White
	case White:
		return Black
	default:
		return Empty
	}
}

// IsPlayer reports whether c is an actual stone color rather than the
// empty-cell placeholder.
func (c StoneColor) IsPlayer() bool {
	return c == Black || c == White
}

// Position is a board intersection. Constructing one outside [0, Size) is a
// programming error; NewPosition panics rather than returning a recoverable
// error.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func NewPosition(row, col int) Position {
	if !InBounds(row, col) {
		panic(fmt.Sprintf("position out of bounds: (%d, %d)", row, col))
	}
	return Position{Row: row, Col: col}
}

func InBounds(row, col int) bool {
	return row >= 0 && row < Size && col >= 0 && col < Size
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.Row, p.Col)
}

// Stone is a colored stone at a position. Color must be a player color.
type Stone struct {
	Position Position   `json:"position"`
	Color    StoneColor `json:"color"`
}

// Board is the 15x15 grid. It holds no rules: the single mutation path is
// PlaceStone, which refuses occupied cells.
type Board struct {
	cells [Size * Size]StoneColor
}

func New() *Board {
	b := &Board{}
	for i := range b.cells {
		b.cells[i] = Empty
	}
	return b
}

func (b *Board) index(p Position) int { return p.Row*Size + p.Col }

func (b *Board) GetSize() int { return Size }

func (b *Board) GetStone(p Position) StoneColor {
	return b.cells[b.index(p)]
}

// PlaceStone puts a stone on an empty intersection. It is the only way a
// cell goes from Empty to a color.
func (b *Board) PlaceStone(s Stone) error {
	if !s.Color.IsPlayer() {
		return fmt.Errorf("cannot place %s stone", s.Color)
	}
	if b.cells[b.index(s.Position)] != Empty {
		return fmt.Errorf("position %s is already occupied", s.Position)
	}
	b.cells[b.index(s.Position)] = s.Color
	return nil
}

func (b *Board) RemoveStone(p Position) {
	b.cells[b.index(p)] = Empty
}

func (b *Board) IsEmpty(p Position) bool {
	return b.cells[b.index(p)] == Empty
}

// CountEmpty returns the number of unoccupied intersections.
func (b *Board) CountEmpty() int {
	n := 0
	for _, c := range b.cells {
		if c == Empty {
			n++
		}
	}
	return n
}

// EmptyPositions lists all unoccupied intersections in row-major order.
func (b *Board) EmptyPositions() []Position {
	out := make([]Position, 0, b.CountEmpty())
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			p := Position{Row: row, Col: col}
			if b.IsEmpty(p) {
				out = append(out, p)
			}
		}
	}
	return out
}

// Clone returns a deep copy. Rule evaluation always works on a clone so
// speculative placement never perturbs the authoritative board.
func (b *Board) Clone() *Board {
	c := &Board{}
	c.cells = b.cells
	return c
}

// Equal reports cell-for-cell equality.
func (b *Board) Equal(o *Board) bool {
	return b.cells == o.cells
}

// Grid serializes the board to a Size x Size array of color tokens.
func (b *Board) Grid() [][]StoneColor {
	grid := make([][]StoneColor, Size)
	for row := 0; row < Size; row++ {
		grid[row] = make([]StoneColor, Size)
		for col := 0; col < Size; col++ {
			grid[row][col] = b.cells[row*Size+col]
		}
	}
	return grid
}

// FromGrid rebuilds a board from a serialized grid. Unknown or short rows
// are an error; Empty cells stay empty.
func FromGrid(grid [][]StoneColor) (*Board, error) {
	if len(grid) != Size {
		return nil, fmt.Errorf("grid has %d rows, want %d", len(grid), Size)
	}
	b := New()
	for row := range grid {
		if len(grid[row]) != Size {
			return nil, fmt.Errorf("grid row %d has %d cols, want %d", row, len(grid[row]), Size)
		}
		for col, c := range grid[row] {
			switch c {
			case Empty:
			case Black, White:
				b.cells[row*Size+col] = c
			default:
				return nil, fmt.Errorf("unknown color token %q at (%d, %d)", c, row, col)
			}
		}
	}
	return b, nil
}

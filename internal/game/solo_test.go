package game

import (
	"errors"
	"testing"

	"github.com/park285/omok-arena/internal/board"
	"github.com/park285/omok-arena/internal/rules"
)

func soloPlace(t *testing.T, e *SoloEngine, row, col int) *SoloEngine {
	t.Helper()
	next, _, err := e.Place(board.NewPosition(row, col))
	if err != nil {
		t.Fatalf("place (%d,%d): %v", row, col, err)
	}
	return next
}

func TestSoloEngineAlternatesAndWins(t *testing.T) {
	e := NewSoloEngine()
	if e.CurrentTurn() != board.Black {
		t.Fatalf("first turn = %s", e.CurrentTurn())
	}
	// Black builds five on row 7, white wanders along row 0.
	for i := 0; i < 4; i++ {
		e = soloPlace(t, e, 7, 7+i)
		e = soloPlace(t, e, 0, i)
	}
	e = soloPlace(t, e, 7, 11)
	if e.Result() != SoloBlackWin {
		t.Fatalf("result = %s, want BLACK_WIN", e.Result())
	}
	if _, _, err := e.Place(board.NewPosition(10, 10)); !errors.Is(err, ErrGameOver) {
		t.Fatalf("move after win: err = %v", err)
	}
}

func TestSoloEngineRejectsForbiddenMove(t *testing.T) {
	e := NewSoloEngine()
	// Black stones forming two prospective open threes around (7,7). White
	// replies stay far away.
	blacks := [][2]int{{7, 5}, {7, 6}, {5, 7}, {6, 7}}
	whites := [][2]int{{0, 0}, {0, 1}, {0, 3}, {0, 5}}
	for i := range blacks {
		e = soloPlace(t, e, blacks[i][0], blacks[i][1])
		e = soloPlace(t, e, whites[i][0], whites[i][1])
	}
	before := e.Board()
	next, ft, err := e.Place(board.NewPosition(7, 7))
	if !errors.Is(err, ErrForbiddenMove) {
		t.Fatalf("err = %v, want forbidden", err)
	}
	if ft != rules.DoubleThree {
		t.Fatalf("forbidden type = %q, want DOUBLE_THREE", ft)
	}
	if next != e {
		t.Fatalf("rejected move returned a new engine")
	}
	if !e.Board().Equal(before) {
		t.Fatalf("rejected move mutated the position")
	}
	if e.CurrentTurn() != board.Black {
		t.Fatalf("turn advanced on rejected move")
	}
}

func TestSoloEngineOccupiedCell(t *testing.T) {
	e := NewSoloEngine()
	e = soloPlace(t, e, 7, 7)
	if _, _, err := e.Place(board.NewPosition(7, 7)); !errors.Is(err, ErrCellOccupied) {
		t.Fatalf("err = %v, want occupied", err)
	}
}

func TestSoloEngineImmutableSteps(t *testing.T) {
	e := NewSoloEngine()
	next := soloPlace(t, e, 7, 7)
	if e.Board().CountEmpty() != board.Size*board.Size {
		t.Fatalf("original engine mutated by step")
	}
	if next.Board().CountEmpty() != board.Size*board.Size-1 {
		t.Fatalf("step did not place the stone")
	}
	if next.CurrentTurn() != board.White {
		t.Fatalf("turn after step = %s", next.CurrentTurn())
	}
	mv := next.LastMove()
	if mv == nil || mv.Color != board.Black || mv.Position != board.NewPosition(7, 7) {
		t.Fatalf("last move = %+v", mv)
	}
}

func TestSoloEngineAutoPlace(t *testing.T) {
	e := NewSoloEngine()
	for i := 0; i < 10 && e.Result() == SoloOngoing; i++ {
		var err error
		e, err = e.AutoPlace()
		if err != nil {
			t.Fatalf("auto place %d: %v", i, err)
		}
	}
	if e.Result() == SoloOngoing && e.Board().CountEmpty() != board.Size*board.Size-10 {
		t.Fatalf("auto place count mismatch: %d empty", e.Board().CountEmpty())
	}
}

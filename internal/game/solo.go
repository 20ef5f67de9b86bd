package game

import (
	"errors"

	"github.com/park285/omok-arena/internal/board"
	"github.com/park285/omok-arena/internal/rules"
)

var (
	ErrGameOver      = errors.New("game: already finished")
	ErrCellOccupied  = errors.New("game: cell occupied")
	ErrForbiddenMove = errors.New("game: forbidden move")
	ErrBoardFull     = errors.New("game: board full")
)

// SoloResult is the terminal outcome of an offline game.
type SoloResult string

const (
	SoloOngoing  SoloResult = "ONGOING"
	SoloBlackWin SoloResult = "BLACK_WIN"
	SoloWhiteWin SoloResult = "WHITE_WIN"
	SoloDraw     SoloResult = "DRAW"
)

// SoloEngine plays an offline game against the rules only. Unlike the
// networked session it fully enforces the forbidden-move rule for BLACK and
// declares DRAW when the board fills with no winner. Each step returns a
// new engine value; the receiver is never modified.
type SoloEngine struct {
	board       *board.Board
	currentTurn board.StoneColor
	result      SoloResult
	lastMove    *Move
}

// NewSoloEngine starts a fresh offline game with BLACK to move.
func NewSoloEngine() *SoloEngine {
	return &SoloEngine{
		board:       board.New(),
		currentTurn: board.Black,
		result:      SoloOngoing,
	}
}

// Place applies a move for the current turn. A forbidden BLACK move is
// rejected with the detected type and the engine unchanged.
func (e *SoloEngine) Place(pos board.Position) (*SoloEngine, rules.ForbiddenType, error) {
	if e.result != SoloOngoing {
		return e, rules.ForbiddenNone, ErrGameOver
	}
	if !e.board.IsEmpty(pos) {
		return e, rules.ForbiddenNone, ErrCellOccupied
	}
	if ft := rules.CheckForbidden(e.board, pos, e.currentTurn); ft != rules.ForbiddenNone {
		return e, ft, ErrForbiddenMove
	}
	return e.step(pos), rules.ForbiddenNone, nil
}

// AutoPlace picks a move for the current turn: a uniformly random empty
// cell, preferring ones that are not forbidden for the color to move.
func (e *SoloEngine) AutoPlace() (*SoloEngine, error) {
	if e.result != SoloOngoing {
		return e, ErrGameOver
	}
	empty := e.board.EmptyPositions()
	if len(empty) == 0 {
		return e, ErrBoardFull
	}
	candidates := empty
	if e.currentTurn == board.Black {
		allowed := make([]board.Position, 0, len(empty))
		for _, p := range empty {
			if rules.CheckForbidden(e.board, p, e.currentTurn) == rules.ForbiddenNone {
				allowed = append(allowed, p)
			}
		}
		if len(allowed) > 0 {
			candidates = allowed
		}
	}
	return e.step(candidates[randIndex(len(candidates))]), nil
}

func (e *SoloEngine) step(pos board.Position) *SoloEngine {
	next := &SoloEngine{
		board:       e.board.Clone(),
		currentTurn: e.currentTurn,
		result:      e.result,
	}
	color := next.currentTurn
	_ = next.board.PlaceStone(board.Stone{Position: pos, Color: color})
	next.lastMove = &Move{Position: pos, Color: color}

	switch {
	case rules.CheckWin(next.board, pos, color):
		if color == board.Black {
			next.result = SoloBlackWin
		} else {
			next.result = SoloWhiteWin
		}
	case next.board.CountEmpty() == 0:
		next.result = SoloDraw
	default:
		next.currentTurn = color.Opponent()
	}
	return next
}

// Board returns a copy of the current position.
func (e *SoloEngine) Board() *board.Board { return e.board.Clone() }

// CurrentTurn is the color to move while the game is ongoing.
func (e *SoloEngine) CurrentTurn() board.StoneColor { return e.currentTurn }

// Result reports the outcome, ONGOING while the game is live.
func (e *SoloEngine) Result() SoloResult { return e.result }

// LastMove returns the most recent move, nil before the first stone.
func (e *SoloEngine) LastMove() *Move {
	if e.lastMove == nil {
		return nil
	}
	mv := *e.lastMove
	return &mv
}

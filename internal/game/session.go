package game

import (
	"crypto/rand"
	"math/big"
	"sync"
	"time"

	"github.com/park285/omok-arena/internal/board"
	"github.com/park285/omok-arena/internal/domain"
	"github.com/park285/omok-arena/internal/obslog"
	"github.com/park285/omok-arena/internal/rules"
	"go.uber.org/zap"
)

// DefaultTurnTimeout is the per-turn countdown for networked games.
const DefaultTurnTimeout = 30 * time.Second

// Status is the session lifecycle state.
type Status string

const (
	StatusNotStarted Status = "NOT_STARTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusEnded      Status = "ENDED"
)

// Move is one entry of the append-only move history.
type Move struct {
	Position board.Position   `json:"position"`
	Color    board.StoneColor `json:"color"`
}

// State is the single snapshot a session exposes. Board and history are
// copies; mutating them does not touch the session.
type State struct {
	Board          [][]board.StoneColor `json:"board"`
	CurrentTurn    board.StoneColor     `json:"currentTurn"`
	BlackPlayer    *domain.Player       `json:"blackPlayer"`
	WhitePlayer    *domain.Player       `json:"whitePlayer"`
	Winner         board.StoneColor     `json:"winner,omitempty"`
	MoveHistory    []Move               `json:"moveHistory"`
	Status         Status               `json:"status"`
	TurnStartMilli int64                `json:"turnStartTime,omitempty"`
}

// AutoMoveFunc is invoked after a timer-driven auto-move so the surrounding
// system can broadcast it. It runs outside the session lock.
type AutoMoveFunc func(mv Move, st State)

// Session is the authoritative networked game state machine for one room:
// one board, turn order, winner, move history and at most one active turn
// timer. All mutations serialize on the session mutex; timer expiry carries
// a generation number so a stale timer firing after cancellation is a no-op.
//
// The interactive PlaceStone path deliberately does NOT enforce the
// forbidden-move rule; only the solo engine does. Auto-moves still prefer
// non-forbidden cells.
type Session struct {
	mu sync.Mutex

	board       *board.Board
	currentTurn board.StoneColor
	winner      board.StoneColor
	blackPlayer *domain.Player
	whitePlayer *domain.Player
	history     []Move

	turnTimeout time.Duration
	timer       *time.Timer
	timerGen    uint64
	turnStart   time.Time
	timerActive bool

	onAutoMove AutoMoveFunc
}

// NewSession creates an empty session. turnTimeout <= 0 selects the default
// 30 second countdown.
func NewSession(turnTimeout time.Duration) *Session {
	if turnTimeout <= 0 {
		turnTimeout = DefaultTurnTimeout
	}
	return &Session{
		board:       board.New(),
		currentTurn: board.Black,
		winner:      board.Empty,
		turnTimeout: turnTimeout,
	}
}

// OnAutoMove registers the auto-move broadcast callback.
func (s *Session) OnAutoMove(fn AutoMoveFunc) {
	s.mu.Lock()
	s.onAutoMove = fn
	s.mu.Unlock()
}

// SetPlayers binds both players, assigns BLACK/WHITE uniformly at random
// and starts the first turn timer.
func (s *Session) SetPlayers(host, guest domain.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, g := host, guest
	if coinFlip() {
		s.blackPlayer, s.whitePlayer = &h, &g
	} else {
		s.blackPlayer, s.whitePlayer = &g, &h
	}
	s.startTimerLocked()
}

// UpdatePlayerID rebinds the transport identity of the player with the
// given nickname after a reconnect.
func (s *Session) UpdatePlayerID(nickname, newID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.blackPlayer != nil && s.blackPlayer.Nickname == nickname {
		s.blackPlayer.ID = newID
	}
	if s.whitePlayer != nil && s.whitePlayer.Nickname == nickname {
		s.whitePlayer.ID = newID
	}
}

// PlaceStone applies a move for the requesting transport identity. It
// returns false without mutation when the game is over, the position is out
// of bounds or occupied, or it is not the requester's turn. Placing a stone
// cancels the outstanding turn timer before any other effect.
func (s *Session) PlaceStone(row, col int, requesterID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.winner != board.Empty {
		return false
	}
	if !board.InBounds(row, col) {
		return false
	}
	pos := board.Position{Row: row, Col: col}
	if !s.board.IsEmpty(pos) {
		return false
	}
	if cur := s.currentPlayerLocked(); cur == nil || cur.ID != requesterID {
		return false
	}

	s.stopTimerLocked()
	s.applyMoveLocked(pos)
	return true
}

// applyMoveLocked places for the current turn, records history, evaluates
// the win rule and either ends the game or flips the turn and restarts the
// timer.
func (s *Session) applyMoveLocked(pos board.Position) Move {
	color := s.currentTurn
	_ = s.board.PlaceStone(board.Stone{Position: pos, Color: color})
	mv := Move{Position: pos, Color: color}
	s.history = append(s.history, mv)

	if rules.CheckWin(s.board, pos, color) {
		s.winner = color
		return mv
	}
	s.currentTurn = color.Opponent()
	s.startTimerLocked()
	return mv
}

// SetWinner force-ends the game (forfeit) without appending a move.
func (s *Session) SetWinner(color board.StoneColor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
	s.winner = color
}

// Reset clears the board, history and winner, swaps colors and restarts the
// turn timer with BLACK to move.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
	s.board = board.New()
	s.history = nil
	s.winner = board.Empty
	s.currentTurn = board.Black
	s.blackPlayer, s.whitePlayer = s.whitePlayer, s.blackPlayer
	if s.blackPlayer != nil && s.whitePlayer != nil {
		s.startTimerLocked()
	}
}

// Stop cancels any pending timer. Called when the owning room is destroyed.
func (s *Session) Stop() {
	s.mu.Lock()
	s.stopTimerLocked()
	s.mu.Unlock()
}

// Winner returns the winning color, or Empty while the game is live.
func (s *Session) Winner() board.StoneColor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.winner
}

// WinnerPlayer resolves the winning color to its player, if any.
func (s *Session) WinnerPlayer() *domain.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.winner {
	case board.Black:
		return copyPlayer(s.blackPlayer)
	case board.White:
		return copyPlayer(s.whitePlayer)
	default:
		return nil
	}
}

// PlayerColor returns the color held by the given nickname, or Empty.
func (s *Session) PlayerColor(nickname string) board.StoneColor {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.blackPlayer != nil && s.blackPlayer.Nickname == nickname {
		return board.Black
	}
	if s.whitePlayer != nil && s.whitePlayer.Nickname == nickname {
		return board.White
	}
	return board.Empty
}

// TimeRemaining derives the whole seconds left on the current turn, floored
// at zero. With no active timer it reports the nominal full countdown.
func (s *Session) TimeRemaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	nominal := int(s.turnTimeout / time.Second)
	if !s.timerActive {
		return nominal
	}
	left := nominal - int(time.Since(s.turnStart)/time.Second)
	if left < 0 {
		return 0
	}
	return left
}

// State returns the snapshot of the whole session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	st := State{
		Board:       s.board.Grid(),
		CurrentTurn: s.currentTurn,
		BlackPlayer: copyPlayer(s.blackPlayer),
		WhitePlayer: copyPlayer(s.whitePlayer),
		Winner:      s.winner,
		MoveHistory: append([]Move(nil), s.history...),
		Status:      s.statusLocked(),
	}
	if s.timerActive {
		st.TurnStartMilli = s.turnStart.UnixMilli()
	}
	return st
}

func (s *Session) statusLocked() Status {
	switch {
	case s.winner != board.Empty:
		return StatusEnded
	case s.blackPlayer == nil || s.whitePlayer == nil:
		return StatusNotStarted
	default:
		return StatusInProgress
	}
}

func (s *Session) currentPlayerLocked() *domain.Player {
	if s.currentTurn == board.Black {
		return s.blackPlayer
	}
	return s.whitePlayer
}

// Timer handling. startTimerLocked bumps the generation so any in-flight
// expiry for an earlier turn becomes a no-op when it observes a stale
// generation under the lock.

func (s *Session) startTimerLocked() {
	s.stopTimerLocked()
	s.timerGen++
	gen := s.timerGen
	s.turnStart = time.Now()
	s.timerActive = true
	s.timer = time.AfterFunc(s.turnTimeout, func() { s.expireTimer(gen) })
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.timerGen++
	s.timerActive = false
}

// expireTimer runs on the timer goroutine. It performs the auto-move for
// the current color: all empty positions, preferring ones that are not
// forbidden for that color, chosen uniformly at random. The registered
// callback fires outside the lock.
func (s *Session) expireTimer(gen uint64) {
	s.mu.Lock()
	if gen != s.timerGen || s.winner != board.Empty {
		s.mu.Unlock()
		return
	}
	s.timerActive = false
	s.timer = nil

	empty := s.board.EmptyPositions()
	if len(empty) == 0 {
		// Board full with no winner: the timer simply stops. No DRAW is
		// produced on the networked path.
		s.mu.Unlock()
		return
	}

	color := s.currentTurn
	candidates := empty
	if color == board.Black {
		allowed := make([]board.Position, 0, len(empty))
		for _, p := range empty {
			if rules.CheckForbidden(s.board, p, color) == rules.ForbiddenNone {
				allowed = append(allowed, p)
			}
		}
		if len(allowed) > 0 {
			candidates = allowed
		}
	}
	pos := candidates[randIndex(len(candidates))]

	mv := s.applyMoveLocked(pos)
	st := s.stateLocked()
	cb := s.onAutoMove
	s.mu.Unlock()

	obslog.L().Info("auto_move",
		zap.Int("row", mv.Position.Row),
		zap.Int("col", mv.Position.Col),
		zap.String("color", string(mv.Color)),
		zap.String("status", string(st.Status)),
	)
	if cb != nil {
		cb(mv, st)
	}
}

func copyPlayer(p *domain.Player) *domain.Player {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func coinFlip() bool {
	n, err := rand.Int(rand.Reader, big.NewInt(2))
	if err != nil {
		return time.Now().UnixNano()%2 == 0
	}
	return n.Int64() == 0
}

func randIndex(n int) int {
	if n <= 1 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return int(time.Now().UnixNano() % int64(n))
	}
	return int(v.Int64())
}

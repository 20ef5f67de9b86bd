package game

import (
	"sync"
	"testing"
	"time"

	"github.com/park285/omok-arena/internal/board"
	"github.com/park285/omok-arena/internal/domain"
)

func newStartedSession(t *testing.T, timeout time.Duration) (*Session, domain.Player, domain.Player) {
	t.Helper()
	s := NewSession(timeout)
	host := domain.Player{ID: "conn-host", Nickname: "철수"}
	guest := domain.Player{ID: "conn-guest", Nickname: "영희"}
	s.SetPlayers(host, guest)
	t.Cleanup(s.Stop)
	return s, host, guest
}

// blackID returns the transport id holding BLACK in the current session.
func blackID(s *Session) (black, white string) {
	st := s.State()
	return st.BlackPlayer.ID, st.WhitePlayer.ID
}

func TestSessionSetPlayersStartsGame(t *testing.T) {
	s, host, guest := newStartedSession(t, time.Hour)
	st := s.State()
	if st.Status != StatusInProgress {
		t.Fatalf("status = %s, want IN_PROGRESS", st.Status)
	}
	if st.CurrentTurn != board.Black {
		t.Fatalf("first turn = %s, want BLACK", st.CurrentTurn)
	}
	ids := map[string]bool{st.BlackPlayer.ID: true, st.WhitePlayer.ID: true}
	if !ids[host.ID] || !ids[guest.ID] {
		t.Fatalf("players not assigned to colors: %+v", st)
	}
	if st.TurnStartMilli == 0 {
		t.Fatalf("turn start not recorded")
	}
}

func TestSessionPlaceStoneTurnOrder(t *testing.T) {
	s, _, _ := newStartedSession(t, time.Hour)
	black, white := blackID(s)

	if s.PlaceStone(7, 7, white) {
		t.Fatalf("white moved on black's turn")
	}
	if !s.PlaceStone(7, 7, black) {
		t.Fatalf("black's opening move rejected")
	}
	if s.PlaceStone(7, 7, white) {
		t.Fatalf("move onto occupied cell accepted")
	}
	if s.PlaceStone(15, 0, white) {
		t.Fatalf("out of bounds move accepted")
	}
	if !s.PlaceStone(8, 8, white) {
		t.Fatalf("white's reply rejected")
	}

	st := s.State()
	if len(st.MoveHistory) != 2 {
		t.Fatalf("history length = %d, want 2", len(st.MoveHistory))
	}
	if st.MoveHistory[0].Color != board.Black || st.MoveHistory[1].Color != board.White {
		t.Fatalf("history colors wrong: %+v", st.MoveHistory)
	}
	if st.CurrentTurn != board.Black {
		t.Fatalf("turn did not return to black")
	}
}

func TestSessionWinEndsGame(t *testing.T) {
	s, _, _ := newStartedSession(t, time.Hour)
	black, white := blackID(s)

	for i := 0; i < 4; i++ {
		if !s.PlaceStone(7, 7+i, black) {
			t.Fatalf("black move %d rejected", i)
		}
		if !s.PlaceStone(0, i, white) {
			t.Fatalf("white move %d rejected", i)
		}
	}
	if !s.PlaceStone(7, 11, black) {
		t.Fatalf("winning move rejected")
	}

	st := s.State()
	if st.Status != StatusEnded || st.Winner != board.Black {
		t.Fatalf("status=%s winner=%s, want ENDED/BLACK", st.Status, st.Winner)
	}
	if s.PlaceStone(10, 10, white) {
		t.Fatalf("move accepted after game end")
	}
	wp := s.WinnerPlayer()
	if wp == nil || wp.ID != black {
		t.Fatalf("winner player = %+v", wp)
	}
}

func TestSessionTimerAutoMove(t *testing.T) {
	s := NewSession(30 * time.Millisecond)
	t.Cleanup(s.Stop)

	var mu sync.Mutex
	var moves []Move
	done := make(chan struct{}, 4)
	s.OnAutoMove(func(mv Move, st State) {
		mu.Lock()
		moves = append(moves, mv)
		mu.Unlock()
		done <- struct{}{}
	})
	s.SetPlayers(domain.Player{ID: "a", Nickname: "a"}, domain.Player{ID: "b", Nickname: "b"})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("auto-move never fired")
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("second auto-move never fired")
	}
	s.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(moves) < 2 {
		t.Fatalf("got %d auto-moves, want >= 2", len(moves))
	}
	if moves[0].Color != board.Black || moves[1].Color != board.White {
		t.Fatalf("auto-move colors: %+v", moves)
	}
}

func TestSessionPlaceStoneCancelsTimer(t *testing.T) {
	s := NewSession(60 * time.Millisecond)
	t.Cleanup(s.Stop)

	fired := make(chan Move, 8)
	s.OnAutoMove(func(mv Move, st State) { fired <- mv })
	s.SetPlayers(domain.Player{ID: "a", Nickname: "a"}, domain.Player{ID: "b", Nickname: "b"})
	black, white := blackID(s)

	// Keep moving before the countdown can expire.
	deadline := time.Now().Add(300 * time.Millisecond)
	ids := []string{black, white}
	row := 0
	for time.Now().Before(deadline) {
		if !s.PlaceStone(row/board.Size, row%board.Size, ids[row%2]) {
			t.Fatalf("manual move %d rejected", row)
		}
		if s.Winner() != board.Empty {
			break
		}
		row++
		time.Sleep(10 * time.Millisecond)
	}
	s.Stop()

	select {
	case mv := <-fired:
		t.Fatalf("timer fired despite manual moves: %+v", mv)
	default:
	}
}

func TestSessionSetWinnerForfeit(t *testing.T) {
	s, _, _ := newStartedSession(t, time.Hour)
	s.SetWinner(board.White)
	st := s.State()
	if st.Status != StatusEnded || st.Winner != board.White {
		t.Fatalf("status=%s winner=%s after forfeit", st.Status, st.Winner)
	}
	if len(st.MoveHistory) != 0 {
		t.Fatalf("forfeit appended a move: %+v", st.MoveHistory)
	}
}

func TestSessionResetSwapsColors(t *testing.T) {
	s, _, _ := newStartedSession(t, time.Hour)
	black, white := blackID(s)
	s.SetWinner(board.Black)

	s.Reset()
	st := s.State()
	if st.Status != StatusInProgress {
		t.Fatalf("status after reset = %s", st.Status)
	}
	if st.Winner != board.Empty || len(st.MoveHistory) != 0 {
		t.Fatalf("reset did not clear game: %+v", st)
	}
	if st.CurrentTurn != board.Black {
		t.Fatalf("reset must give BLACK the first turn")
	}
	if st.BlackPlayer.ID != white || st.WhitePlayer.ID != black {
		t.Fatalf("colors not swapped: black=%s white=%s", st.BlackPlayer.ID, st.WhitePlayer.ID)
	}
}

func TestSessionUpdatePlayerID(t *testing.T) {
	s, _, _ := newStartedSession(t, time.Hour)
	st := s.State()
	nick := st.BlackPlayer.Nickname

	s.UpdatePlayerID(nick, "conn-new")
	if got := s.State().BlackPlayer.ID; got != "conn-new" {
		t.Fatalf("rebound id = %s", got)
	}
	// The old id can no longer move; the new one can.
	if s.PlaceStone(7, 7, st.BlackPlayer.ID) {
		t.Fatalf("stale transport id still accepted")
	}
	if !s.PlaceStone(7, 7, "conn-new") {
		t.Fatalf("rebound transport id rejected")
	}
}

func TestSessionTimeRemaining(t *testing.T) {
	s := NewSession(30 * time.Second)
	if got := s.TimeRemaining(); got != 30 {
		t.Fatalf("inactive session remaining = %d, want 30", got)
	}
	s.SetPlayers(domain.Player{ID: "a", Nickname: "a"}, domain.Player{ID: "b", Nickname: "b"})
	t.Cleanup(s.Stop)
	if got := s.TimeRemaining(); got < 29 || got > 30 {
		t.Fatalf("fresh turn remaining = %d", got)
	}
}

func TestSessionStateIsACopy(t *testing.T) {
	s, _, _ := newStartedSession(t, time.Hour)
	black, _ := blackID(s)
	if !s.PlaceStone(3, 3, black) {
		t.Fatalf("move rejected")
	}
	st := s.State()
	st.Board[3][3] = board.Empty
	st.MoveHistory[0].Position.Row = 99
	fresh := s.State()
	if fresh.Board[3][3] != board.Black {
		t.Fatalf("snapshot mutation reached the session board")
	}
	if fresh.MoveHistory[0].Position.Row != 3 {
		t.Fatalf("snapshot mutation reached the history")
	}
}

package room

import (
	"time"

	"github.com/park285/omok-arena/internal/domain"
	"github.com/park285/omok-arena/internal/game"
)

// MaxSpectators caps the spectators of a single room.
const MaxSpectators = 5

// Room is one game room: a host, at most one guest, up to five spectators
// and the session they share. Fields are guarded by the owning Manager.
type Room struct {
	ID         string
	Name       string
	Host       domain.Player
	Guest      *domain.Player
	Spectators []domain.Player
	Status     domain.RoomStatus
	Mode       domain.GameMode
	CreatedAt  time.Time

	Session *game.Session
}

// Info is the listing projection of a room.
type Info struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	HostNickname   string            `json:"hostNickname"`
	PlayerCount    int               `json:"playerCount"`
	SpectatorCount int               `json:"spectatorCount"`
	Status         domain.RoomStatus `json:"status"`
	Mode           domain.GameMode   `json:"gameMode"`
}

func (r *Room) info() Info {
	players := 1
	if r.Guest != nil {
		players = 2
	}
	return Info{
		ID:             r.ID,
		Name:           r.Name,
		HostNickname:   r.Host.Nickname,
		PlayerCount:    players,
		SpectatorCount: len(r.Spectators),
		Status:         r.Status,
		Mode:           r.Mode,
	}
}

// PlayerByID finds the host or guest holding the transport id.
func (r *Room) PlayerByID(id string) *domain.Player {
	if r.Host.ID == id {
		h := r.Host
		return &h
	}
	if r.Guest != nil && r.Guest.ID == id {
		g := *r.Guest
		return &g
	}
	return nil
}

// Errors
var (
	ErrRoomNotFound     = errf("room not found")
	ErrRoomFull         = errf("room already has a guest")
	ErrSelfJoin         = errf("host cannot join own room")
	ErrNotPlaying       = errf("room is not playing")
	ErrSpectatorsFull   = errf("spectators full")
	ErrPlayerSpectating = errf("player cannot spectate own game")
	ErrCodeExhausted    = errf("failed to allocate room code")
)

type staticErr string

func (e staticErr) Error() string { return string(e) }
func errf(s string) error         { return staticErr(s) }

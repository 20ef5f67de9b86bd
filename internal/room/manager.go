package room

import (
	"crypto/rand"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/park285/omok-arena/internal/domain"
	"github.com/park285/omok-arena/internal/game"
	"github.com/park285/omok-arena/internal/obslog"
	"go.uber.org/zap"
)

// Manager owns every live room. The map is guarded by an RWMutex; room
// mutations happen while holding the write lock, so callers get consistent
// snapshots and never a *Room they could race on.
type Manager struct {
	mu          sync.RWMutex
	rooms       map[string]*Room
	turnTimeout time.Duration
}

// NewManager creates an empty room registry. turnTimeout is passed to every
// session it creates; zero selects the session default.
func NewManager(turnTimeout time.Duration) *Manager {
	return &Manager{
		rooms:       make(map[string]*Room),
		turnTimeout: turnTimeout,
	}
}

// CreateRoom allocates a fresh room code, registers the room in WAITING
// state and attaches a new session.
func (m *Manager) CreateRoom(name string, host domain.Player, mode domain.GameMode) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var id string
	for i := 0; i < 5; i++ {
		c, err := codeGen()
		if err != nil {
			return nil, err
		}
		if _, taken := m.rooms[c]; !taken {
			id = c
			break
		}
	}
	if id == "" {
		return nil, ErrCodeExhausted
	}

	r := &Room{
		ID:        id,
		Name:      name,
		Host:      host,
		Status:    domain.RoomWaiting,
		Mode:      mode,
		CreatedAt: time.Now(),
		Session:   game.NewSession(m.turnTimeout),
	}
	m.rooms[id] = r
	obslog.L().Info("room_create",
		zap.String("room_id", id),
		zap.String("host", host.Nickname),
		zap.String("mode", string(mode)),
	)
	return snapshot(r), nil
}

// codeGen produces a 6 character uppercase alphanumeric room code.
func codeGen() (string, error) {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = letters[int(b[i])%len(letters)]
	}
	return string(b), nil
}

// GetRoom returns a copy of the room, or ErrRoomNotFound.
func (m *Manager) GetRoom(roomID string) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return snapshot(r), nil
}

// Session returns the live session of the room, or nil.
func (m *Manager) Session(roomID string) *game.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.rooms[roomID]; ok {
		return r.Session
	}
	return nil
}

// JoinRoom seats the player as guest, flips the room to PLAYING and binds
// both players into the session, which starts the game.
func (m *Manager) JoinRoom(roomID string, player domain.Player) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	if r.Guest != nil {
		return nil, ErrRoomFull
	}
	if r.Host.ID == player.ID {
		return nil, ErrSelfJoin
	}

	p := player
	r.Guest = &p
	r.Status = domain.RoomPlaying
	r.Session.SetPlayers(r.Host, p)

	obslog.L().Info("room_join",
		zap.String("room_id", roomID),
		zap.String("guest", player.Nickname),
	)
	return snapshot(r), nil
}

// RejoinRoom rebinds the transport id of a returning player matched by
// nickname. It reports whether the player was the host.
func (m *Manager) RejoinRoom(roomID string, player domain.Player) (*Room, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[roomID]
	if !ok {
		return nil, false, ErrRoomNotFound
	}

	if r.Host.Nickname == player.Nickname {
		r.Host.ID = player.ID
		r.Session.UpdatePlayerID(player.Nickname, player.ID)
		obslog.L().Info("room_rejoin", zap.String("room_id", roomID), zap.String("nickname", player.Nickname), zap.Bool("is_host", true))
		return snapshot(r), true, nil
	}
	if r.Guest != nil && r.Guest.Nickname == player.Nickname {
		r.Guest.ID = player.ID
		r.Session.UpdatePlayerID(player.Nickname, player.ID)
		obslog.L().Info("room_rejoin", zap.String("room_id", roomID), zap.String("nickname", player.Nickname), zap.Bool("is_host", false))
		return snapshot(r), false, nil
	}
	return nil, false, ErrRoomNotFound
}

// LeaveRoom removes the player. A leaving host destroys the room; a leaving
// guest returns it to WAITING with a fresh session. The returned room is
// nil when the room was deleted.
func (m *Manager) LeaveRoom(roomID, playerID string) (deleted bool, r *Room, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	live, ok := m.rooms[roomID]
	if !ok {
		return false, nil, ErrRoomNotFound
	}

	if live.Host.ID == playerID {
		live.Session.Stop()
		delete(m.rooms, roomID)
		obslog.L().Info("room_destroy", zap.String("room_id", roomID), zap.String("reason", "host_left"))
		return true, nil, nil
	}
	if live.Guest != nil && live.Guest.ID == playerID {
		live.Guest = nil
		live.Status = domain.RoomWaiting
		live.Session.Stop()
		live.Session = game.NewSession(m.turnTimeout)
		obslog.L().Info("room_guest_leave", zap.String("room_id", roomID))
		return false, snapshot(live), nil
	}
	return false, snapshot(live), nil
}

// SetStatus flips the room status, used when a game finishes or restarts.
func (m *Manager) SetStatus(roomID string, status domain.RoomStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	r.Status = status
	return nil
}

// DeleteRoom drops the room outright, stopping its session.
func (m *Manager) DeleteRoom(roomID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[roomID]
	if !ok {
		return false
	}
	r.Session.Stop()
	delete(m.rooms, roomID)
	return true
}

// SpectateRoom seats a spectator. A nickname already spectating is treated
// as a reconnect: only its transport id is updated and the capacity check
// is skipped. Players of the room cannot spectate their own game.
func (m *Manager) SpectateRoom(roomID string, spectator domain.Player) (r *Room, rejoin bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	live, ok := m.rooms[roomID]
	if !ok {
		return nil, false, ErrRoomNotFound
	}
	if live.Status != domain.RoomPlaying {
		return nil, false, ErrNotPlaying
	}
	if live.Host.Nickname == spectator.Nickname ||
		(live.Guest != nil && live.Guest.Nickname == spectator.Nickname) {
		return nil, false, ErrPlayerSpectating
	}

	for i := range live.Spectators {
		if live.Spectators[i].Nickname == spectator.Nickname {
			live.Spectators[i].ID = spectator.ID
			return snapshot(live), true, nil
		}
	}
	if len(live.Spectators) >= MaxSpectators {
		return nil, false, ErrSpectatorsFull
	}
	live.Spectators = append(live.Spectators, spectator)
	obslog.L().Info("room_spectate", zap.String("room_id", roomID), zap.String("nickname", spectator.Nickname))
	return snapshot(live), false, nil
}

// LeaveSpectate removes the spectator with the given transport id. Unknown
// ids are ignored.
func (m *Manager) LeaveSpectate(roomID, spectatorID string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	live, ok := m.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	for i := range live.Spectators {
		if live.Spectators[i].ID == spectatorID {
			live.Spectators = append(live.Spectators[:i], live.Spectators[i+1:]...)
			break
		}
	}
	return snapshot(live), nil
}

// List returns the listing of every room, WAITING rooms first.
func (m *Manager) List() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Info, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r.info())
	}
	sort.SliceStable(out, func(i, j int) bool {
		wi := out[i].Status == domain.RoomWaiting
		wj := out[j].Status == domain.RoomWaiting
		if wi != wj {
			return wi
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Info returns the listing projection of one room.
func (m *Manager) Info(roomID string) (Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[roomID]
	if !ok {
		return Info{}, ErrRoomNotFound
	}
	return r.info(), nil
}

// FindByPlayerID locates the room where the transport id is host or guest.
func (m *Manager) FindByPlayerID(playerID string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rooms {
		if r.Host.ID == playerID || (r.Guest != nil && r.Guest.ID == playerID) {
			return snapshot(r), true
		}
	}
	return nil, false
}

// FindBySpectatorID locates the room where the transport id spectates.
func (m *Manager) FindBySpectatorID(spectatorID string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rooms {
		for _, s := range r.Spectators {
			if s.ID == spectatorID {
				return snapshot(r), true
			}
		}
	}
	return nil, false
}

// snapshot copies the room so callers cannot race on manager-owned state.
// The session pointer is shared; it synchronizes itself.
func snapshot(r *Room) *Room {
	c := *r
	if r.Guest != nil {
		g := *r.Guest
		c.Guest = &g
	}
	c.Spectators = append([]domain.Player(nil), r.Spectators...)
	return &c
}

// String implements fmt.Stringer for logging.
func (r *Room) String() string {
	return fmt.Sprintf("room(%s %q %s)", r.ID, r.Name, r.Status)
}

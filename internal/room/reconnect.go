package room

import (
	"sync"
	"time"

	"github.com/park285/omok-arena/internal/obslog"
	"go.uber.org/zap"
)

// DefaultReconnectGrace is how long a disconnected player may return
// before the room treats the disconnect as a leave.
const DefaultReconnectGrace = 30 * time.Second

// ReconnectTracker keeps one grace timer per disconnected player, keyed by
// room id and nickname so a returning player cancels exactly their own
// pending expiry regardless of the new transport id.
type ReconnectTracker struct {
	mu     sync.Mutex
	grace  time.Duration
	timers map[string]*time.Timer
}

// NewReconnectTracker creates a tracker. grace <= 0 selects the default
// 30 second window.
func NewReconnectTracker(grace time.Duration) *ReconnectTracker {
	if grace <= 0 {
		grace = DefaultReconnectGrace
	}
	return &ReconnectTracker{
		grace:  grace,
		timers: make(map[string]*time.Timer),
	}
}

func trackerKey(roomID, nickname string) string { return roomID + ":" + nickname }

// Track starts the grace countdown for the player. If a countdown is
// already pending for the same room and nickname the call is ignored. The
// expiry callback runs on the timer goroutine after the entry has been
// removed.
func (t *ReconnectTracker) Track(roomID, nickname string, onExpire func()) {
	key := trackerKey(roomID, nickname)
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, pending := t.timers[key]; pending {
		return
	}
	obslog.L().Info("reconnect_wait",
		zap.String("room_id", roomID),
		zap.String("nickname", nickname),
		zap.Duration("grace", t.grace),
	)
	t.timers[key] = time.AfterFunc(t.grace, func() {
		t.mu.Lock()
		_, live := t.timers[key]
		delete(t.timers, key)
		t.mu.Unlock()
		if !live {
			return
		}
		obslog.L().Info("reconnect_timeout",
			zap.String("room_id", roomID),
			zap.String("nickname", nickname),
		)
		onExpire()
	})
}

// Cancel stops the pending countdown, reporting whether one existed.
func (t *ReconnectTracker) Cancel(roomID, nickname string) bool {
	key := trackerKey(roomID, nickname)
	t.mu.Lock()
	defer t.mu.Unlock()
	timer, ok := t.timers[key]
	if !ok {
		return false
	}
	timer.Stop()
	delete(t.timers, key)
	return true
}

// Pending reports whether a countdown is live for the player.
func (t *ReconnectTracker) Pending(roomID, nickname string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.timers[trackerKey(roomID, nickname)]
	return ok
}

// CancelRoom drops every pending countdown of the room, for room teardown.
func (t *ReconnectTracker) CancelRoom(roomID string) {
	prefix := roomID + ":"
	t.mu.Lock()
	defer t.mu.Unlock()
	for key, timer := range t.timers {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			timer.Stop()
			delete(t.timers, key)
		}
	}
}

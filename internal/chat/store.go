package chat

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// historyLimit bounds each room's retained chat backlog.
	historyLimit = 50
	ttlRoomChat  = 24 * time.Hour
)

// Message is one chat line inside a room.
type Message struct {
	ID          string `json:"id"`
	Sender      string `json:"sender"`
	Message     string `json:"message"`
	Timestamp   int64  `json:"timestamp"`
	IsSystem    bool   `json:"isSystem,omitempty"`
	IsSpectator bool   `json:"isSpectator,omitempty"`
}

// NewMessage builds a user chat line with a fresh id and current timestamp.
func NewMessage(sender, text string, spectator bool) Message {
	return Message{
		ID:          uuid.NewString(),
		Sender:      sender,
		Message:     text,
		Timestamp:   time.Now().UnixMilli(),
		IsSpectator: spectator,
	}
}

// NewSystemMessage builds a server-originated chat line.
func NewSystemMessage(text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Sender:    "system",
		Message:   text,
		Timestamp: time.Now().UnixMilli(),
		IsSystem:  true,
	}
}

// Store keeps each room's chat backlog in a Redis list, newest first,
// trimmed to the history limit.
type Store struct{ rdb *redis.Client }

func NewStore(rdb *redis.Client) *Store { return &Store{rdb: rdb} }

func (s *Store) key(roomID string) string { return "chat:" + strings.TrimSpace(roomID) }

// Append pushes the message and trims the backlog to the last 50 entries.
func (s *Store) Append(ctx context.Context, roomID string, msg Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	key := s.key(roomID)
	pipe := s.rdb.TxPipeline()
	pipe.LPush(ctx, key, raw)
	pipe.LTrim(ctx, key, 0, historyLimit-1)
	pipe.Expire(ctx, key, ttlRoomChat)
	_, err = pipe.Exec(ctx)
	return err
}

// History returns the room backlog in chronological order, oldest first.
func (s *Store) History(ctx context.Context, roomID string) ([]Message, error) {
	raws, err := s.rdb.LRange(ctx, s.key(roomID), 0, historyLimit-1).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out := make([]Message, 0, len(raws))
	// LPush stores newest at index 0; walk backwards to restore order.
	for i := len(raws) - 1; i >= 0; i-- {
		var m Message
		if err := json.Unmarshal([]byte(raws[i]), &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// Clear drops the room backlog, for room teardown.
func (s *Store) Clear(ctx context.Context, roomID string) error {
	return s.rdb.Del(ctx, s.key(roomID)).Err()
}

package stats

import (
	"context"
	"sync"
)

// memrepo is a development-only in-memory repository used when no DB is
// configured.
type memrepo struct {
	mu    sync.RWMutex
	users map[string]*UserStats
}

func NewMemoryRepository() Repository {
	return &memrepo{users: make(map[string]*UserStats)}
}

func (m *memrepo) GetByNickname(ctx context.Context, nickname string) (*UserStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.users[nickname]
	if !ok {
		return nil, ErrNotFound
	}
	copy := *s
	copy.deriveTier()
	return &copy, nil
}

func (m *memrepo) adjust(nickname string, fn func(*UserStats)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.users[nickname]
	if !ok {
		s = &UserStats{Nickname: nickname}
		m.users[nickname] = s
	}
	fn(s)
	if s.Points < 0 {
		s.Points = 0
	}
}

func (m *memrepo) RecordWin(ctx context.Context, nickname string, pointsDelta int) error {
	m.adjust(nickname, func(s *UserStats) {
		s.Wins++
		s.Points += pointsDelta
	})
	return nil
}

func (m *memrepo) RecordLoss(ctx context.Context, nickname string, pointsDelta int) error {
	m.adjust(nickname, func(s *UserStats) {
		s.Losses++
		s.Points += pointsDelta
	})
	return nil
}

func (m *memrepo) RecordDraw(ctx context.Context, nickname string) error {
	m.adjust(nickname, func(s *UserStats) { s.Draws++ })
	return nil
}

func (m *memrepo) RecordFriendlyWin(ctx context.Context, nickname string) error {
	m.adjust(nickname, func(s *UserStats) { s.FriendlyWins++ })
	return nil
}

func (m *memrepo) RecordFriendlyLoss(ctx context.Context, nickname string) error {
	m.adjust(nickname, func(s *UserStats) { s.FriendlyLosses++ })
	return nil
}

func (m *memrepo) Close() error { return nil }

package stats

import (
	"context"
	"errors"
	"testing"

	"github.com/park285/omok-arena/internal/rank"
)

func TestMemRepoUnknownUser(t *testing.T) {
	repo := NewMemoryRepository()
	if _, err := repo.GetByNickname(context.Background(), "없는사람"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemRepoRecordWinAccumulates(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := repo.RecordWin(ctx, "철수", 10); err != nil {
			t.Fatalf("record win: %v", err)
		}
	}
	s, err := repo.GetByNickname(ctx, "철수")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if s.Wins != 5 || s.Points != 50 {
		t.Fatalf("wins=%d points=%d, want 5/50", s.Wins, s.Points)
	}
	if s.Tier != rank.Bronze || !s.Ranked {
		t.Fatalf("tier=%q ranked=%v at 50 points", s.Tier, s.Ranked)
	}
}

func TestMemRepoPointsFloorAtZero(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if err := repo.RecordWin(ctx, "영희", 5); err != nil {
		t.Fatalf("record win: %v", err)
	}
	if err := repo.RecordLoss(ctx, "영희", -10); err != nil {
		t.Fatalf("record loss: %v", err)
	}
	s, err := repo.GetByNickname(ctx, "영희")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if s.Points != 0 {
		t.Fatalf("points = %d, want floor at 0", s.Points)
	}
	if s.Losses != 1 {
		t.Fatalf("losses = %d", s.Losses)
	}
	if s.Ranked {
		t.Fatalf("0 points must be unranked")
	}
}

func TestMemRepoFriendlyCountersOnly(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if err := repo.RecordFriendlyWin(ctx, "민수"); err != nil {
		t.Fatalf("friendly win: %v", err)
	}
	if err := repo.RecordFriendlyLoss(ctx, "민수"); err != nil {
		t.Fatalf("friendly loss: %v", err)
	}
	s, err := repo.GetByNickname(ctx, "민수")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if s.FriendlyWins != 1 || s.FriendlyLosses != 1 {
		t.Fatalf("friendly counters: %+v", s)
	}
	if s.Points != 0 || s.Wins != 0 || s.Losses != 0 {
		t.Fatalf("friendly game touched ranked columns: %+v", s)
	}
}

func TestMemRepoSnapshotIsolation(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	if err := repo.RecordWin(ctx, "철수", 10); err != nil {
		t.Fatalf("record win: %v", err)
	}
	s, _ := repo.GetByNickname(ctx, "철수")
	s.Points = 9999
	again, _ := repo.GetByNickname(ctx, "철수")
	if again.Points != 10 {
		t.Fatalf("returned stats alias internal state")
	}
}

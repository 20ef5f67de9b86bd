package stats

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/park285/omok-arena/internal/rank"
)

var ErrNotFound = errors.New("stats: user not found")

// UserStats is one player's cumulative record. Tier is derived from points;
// Ranked is false below the lowest threshold.
type UserStats struct {
	Nickname string    `json:"nickname"`
	Wins     int       `json:"wins"`
	Draws    int       `json:"draws"`
	Losses   int       `json:"losses"`
	Points   int       `json:"points"`
	Tier     rank.Tier `json:"tier,omitempty"`
	Ranked   bool      `json:"ranked"`

	FriendlyWins   int `json:"friendlyWins"`
	FriendlyLosses int `json:"friendlyLosses"`
}

func (s *UserStats) deriveTier() {
	s.Tier, s.Ranked = rank.TierForPoints(s.Points)
}

// Repository persists player records. Point adjustments must be atomic
// per row so concurrent game settlements never lose an update.
type Repository interface {
	GetByNickname(ctx context.Context, nickname string) (*UserStats, error)
	RecordWin(ctx context.Context, nickname string, pointsDelta int) error
	RecordLoss(ctx context.Context, nickname string, pointsDelta int) error
	RecordDraw(ctx context.Context, nickname string) error
	RecordFriendlyWin(ctx context.Context, nickname string) error
	RecordFriendlyLoss(ctx context.Context, nickname string) error
	Close() error
}

type repository struct {
	db *sql.DB
}

// NewRepository opens the Postgres-backed repository and verifies the
// connection.
func NewRepository(databaseURL string) (Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &repository{db: db}, nil
}

func (r *repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *repository) GetByNickname(ctx context.Context, nickname string) (*UserStats, error) {
	const q = `
		SELECT nickname, wins, draws, losses, points, friendly_wins, friendly_losses
		FROM user_stats
		WHERE nickname = $1`

	var s UserStats
	err := r.db.QueryRowContext(ctx, q, nickname).Scan(
		&s.Nickname, &s.Wins, &s.Draws, &s.Losses, &s.Points,
		&s.FriendlyWins, &s.FriendlyLosses,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.deriveTier()
	return &s, nil
}

// adjust applies one counter bump plus a point delta in a single statement.
// GREATEST keeps points at zero or above, and the row is created on first
// contact so guests promoted to accounts need no separate signup step here.
func (r *repository) adjust(ctx context.Context, nickname, column string, pointsDelta int) error {
	q := fmt.Sprintf(`
		INSERT INTO user_stats (nickname, %[1]s, points)
		VALUES ($1, 1, GREATEST($2, 0))
		ON CONFLICT (nickname) DO UPDATE SET
			%[1]s = user_stats.%[1]s + 1,
			points = GREATEST(user_stats.points + $2, 0),
			updated_at = NOW()`, column)
	_, err := r.db.ExecContext(ctx, q, nickname, pointsDelta)
	return err
}

func (r *repository) RecordWin(ctx context.Context, nickname string, pointsDelta int) error {
	return r.adjust(ctx, nickname, "wins", pointsDelta)
}

func (r *repository) RecordLoss(ctx context.Context, nickname string, pointsDelta int) error {
	return r.adjust(ctx, nickname, "losses", pointsDelta)
}

func (r *repository) RecordDraw(ctx context.Context, nickname string) error {
	return r.adjust(ctx, nickname, "draws", 0)
}

func (r *repository) RecordFriendlyWin(ctx context.Context, nickname string) error {
	return r.adjust(ctx, nickname, "friendly_wins", 0)
}

func (r *repository) RecordFriendlyLoss(ctx context.Context, nickname string) error {
	return r.adjust(ctx, nickname, "friendly_losses", 0)
}

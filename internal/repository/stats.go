package repository

import (
	"context"
	"time"

	"github.com/ansemenov/remindbot/internal/database"
)

type StatsRepository struct {
	db *database.DB
}

func NewStatsRepository(db *database.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// RecordFiring bumps the owner's firing counter for the day, creating
// the row on first firing. Counters are never decremented.
func (s *StatsRepository) RecordFiring(ctx context.Context, owner int64, day time.Time) error {
	_, err := s.db.Pool.Exec(ctx,
		`INSERT INTO statistics (chat_id, day, total, completed)
		 VALUES ($1, $2, 1, 0)
		 ON CONFLICT (chat_id, day) DO UPDATE SET total = statistics.total + 1`,
		owner, day,
	)
	return err
}

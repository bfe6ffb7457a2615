package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/allenwoods/naive-coreterra/internal/models"
	"github.com/google/uuid"
)

const defaultHistoryLimit = 50

type RewardEventRepository interface {
	Create(ctx context.Context, event models.RewardEvent) (models.RewardEvent, error)
	FindByUserID(ctx context.Context, userID int64, limit int) ([]models.RewardEvent, error)
}

type SQLiteRewardEventRepository struct {
	database *sql.DB
}

func NewRewardEventRepository(database *sql.DB) *SQLiteRewardEventRepository {
	return &SQLiteRewardEventRepository{database: database}
}

func (repository *SQLiteRewardEventRepository) Create(ctx context.Context, event models.RewardEvent) (models.RewardEvent, error) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	_, err := repository.database.ExecContext(ctx,
		`INSERT INTO reward_events (id, user_id, kind, ref_id, xp_delta, gold_delta, level_before, level_after, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.UserID, event.Kind, event.RefID, event.XPDelta, event.GoldDelta,
		event.LevelBefore, event.LevelAfter, event.CreatedAt,
	)
	if err != nil {
		return models.RewardEvent{}, fmt.Errorf("creating reward event: %w", err)
	}
	return event, nil
}

// FindByUserID returns the newest events first. A non-positive limit falls
// back to the default page size.
func (repository *SQLiteRewardEventRepository) FindByUserID(ctx context.Context, userID int64, limit int) ([]models.RewardEvent, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	rows, err := repository.database.QueryContext(ctx,
		`SELECT id, user_id, kind, ref_id, xp_delta, gold_delta, level_before, level_after, created_at
		FROM reward_events WHERE user_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("finding reward events by user: %w", err)
	}
	defer rows.Close()

	events := []models.RewardEvent{}
	for rows.Next() {
		var event models.RewardEvent
		if err := rows.Scan(&event.ID, &event.UserID, &event.Kind, &event.RefID, &event.XPDelta, &event.GoldDelta,
			&event.LevelBefore, &event.LevelAfter, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning reward event: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

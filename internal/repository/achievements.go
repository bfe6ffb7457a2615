package repository

import (
	"context"
	"fmt"

	"github.com/allenwoods/naive-coreterra/internal/models"
	"github.com/allenwoods/naive-coreterra/internal/store"
)

type AchievementRepository interface {
	FindAll(ctx context.Context) ([]models.Achievement, error)
}

type JSONAchievementRepository struct {
	store *store.Store
}

func NewAchievementRepository(s *store.Store) *JSONAchievementRepository {
	return &JSONAchievementRepository{store: s}
}

func (repository *JSONAchievementRepository) FindAll(ctx context.Context) ([]models.Achievement, error) {
	records, err := repository.store.All(store.Achievements)
	if err != nil {
		return nil, fmt.Errorf("finding all achievements: %w", err)
	}
	return decodeRecords[models.Achievement](store.Achievements, records), nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/allenwoods/naive-coreterra/internal/store"
)

// CatalogRepository serves the reference collections that have no typed
// model. Records pass through exactly as stored.
type CatalogRepository interface {
	Teams(ctx context.Context) ([]store.Record, error)
	Contexts(ctx context.Context) ([]store.Record, error)
	ScheduledCategories(ctx context.Context) ([]store.Record, error)
	Reports(ctx context.Context, reportType string) ([]store.Record, error)
	CalendarEvents(ctx context.Context) ([]store.Record, error)
}

type JSONCatalogRepository struct {
	store *store.Store
}

func NewCatalogRepository(s *store.Store) *JSONCatalogRepository {
	return &JSONCatalogRepository{store: s}
}

func (repository *JSONCatalogRepository) Teams(ctx context.Context) ([]store.Record, error) {
	return repository.all(store.Teams)
}

func (repository *JSONCatalogRepository) Contexts(ctx context.Context) ([]store.Record, error) {
	return repository.all(store.Contexts)
}

func (repository *JSONCatalogRepository) ScheduledCategories(ctx context.Context) ([]store.Record, error) {
	return repository.all(store.ScheduledCategories)
}

func (repository *JSONCatalogRepository) CalendarEvents(ctx context.Context) ([]store.Record, error) {
	return repository.all(store.CalendarEvents)
}

// Reports returns every report, or only those whose type field equals
// reportType when it is not empty.
func (repository *JSONCatalogRepository) Reports(ctx context.Context, reportType string) ([]store.Record, error) {
	if reportType == "" {
		return repository.all(store.Reports)
	}
	records, err := repository.store.Filter(store.Reports, func(record store.Record) bool {
		return record["type"] == reportType
	})
	if err != nil {
		return nil, fmt.Errorf("finding reports of type %q: %w", reportType, err)
	}
	return records, nil
}

func (repository *JSONCatalogRepository) all(collection store.Collection) ([]store.Record, error) {
	records, err := repository.store.All(collection)
	if err != nil {
		return nil, fmt.Errorf("finding all %s: %w", collection, err)
	}
	return records, nil
}

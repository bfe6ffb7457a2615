package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/allenwoods/naive-coreterra/internal/models"
	"github.com/allenwoods/naive-coreterra/internal/store"
)

const projectIDPrefix = "p"

type ProjectRepository interface {
	FindByID(ctx context.Context, id string) (models.Project, error)
	FindAll(ctx context.Context) ([]models.Project, error)
	Create(ctx context.Context, project models.Project) (models.Project, error)
	Update(ctx context.Context, id string, patch models.ProjectPatch) (models.Project, error)
	Delete(ctx context.Context, id string) error
}

type JSONProjectRepository struct {
	store *store.Store
}

func NewProjectRepository(s *store.Store) *JSONProjectRepository {
	return &JSONProjectRepository{store: s}
}

func (repository *JSONProjectRepository) FindByID(ctx context.Context, id string) (models.Project, error) {
	record, err := repository.store.Get(store.Projects, id)
	if err != nil {
		return models.Project{}, fmt.Errorf("finding project by id: %w", err)
	}
	return decodeRecord[models.Project](record)
}

func (repository *JSONProjectRepository) FindAll(ctx context.Context) ([]models.Project, error) {
	records, err := repository.store.All(store.Projects)
	if err != nil {
		return nil, fmt.Errorf("finding all projects: %w", err)
	}
	return decodeRecords[models.Project](store.Projects, records), nil
}

// Create starts a project with zeroed counters and an id of the form p<n>,
// n being one more than the highest numeric suffix in use.
func (repository *JSONProjectRepository) Create(ctx context.Context, project models.Project) (models.Project, error) {
	project.Progress = 0
	project.TotalTasks = 0
	project.CompletedTasks = 0
	if err := project.Validate(); err != nil {
		return models.Project{}, err
	}

	created, err := repository.store.Insert(store.Projects, func(existing []store.Record) (store.Record, error) {
		project.ID = nextProjectID(existing)
		return store.RecordOf(project)
	})
	if err != nil {
		return models.Project{}, fmt.Errorf("creating project: %w", err)
	}
	return decodeRecord[models.Project](created)
}

// Update merges patch and rejects results that break the project invariants,
// such as more completed than total tasks.
func (repository *JSONProjectRepository) Update(ctx context.Context, id string, patch models.ProjectPatch) (models.Project, error) {
	project, err := mutateTyped(repository.store, store.Projects, id, func(project *models.Project) error {
		next := *project
		if patch.Title != nil {
			next.Title = *patch.Title
		}
		if patch.Description != nil {
			next.Description = patch.Description
		}
		if patch.Progress != nil {
			next.Progress = *patch.Progress
		}
		if patch.TotalTasks != nil {
			next.TotalTasks = *patch.TotalTasks
		}
		if patch.CompletedTasks != nil {
			next.CompletedTasks = *patch.CompletedTasks
		}
		if patch.Timeline != nil {
			next.Timeline = *patch.Timeline
		}
		if err := next.Validate(); err != nil {
			return err
		}
		*project = next
		return nil
	})
	if err != nil {
		return models.Project{}, fmt.Errorf("updating project: %w", err)
	}
	return project, nil
}

func (repository *JSONProjectRepository) Delete(ctx context.Context, id string) error {
	deleted, err := repository.store.Delete(store.Projects, id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	if !deleted {
		return fmt.Errorf("deleting project %s: %w", id, ErrNotFound)
	}
	return nil
}

func nextProjectID(records []store.Record) string {
	highest := 0
	for _, record := range records {
		id := store.IDString(record.ID())
		if !strings.HasPrefix(id, projectIDPrefix) {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimPrefix(id, projectIDPrefix)); err == nil && n > highest {
			highest = n
		}
	}
	return projectIDPrefix + strconv.Itoa(highest+1)
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/allenwoods/naive-coreterra/internal/models"
	"github.com/allenwoods/naive-coreterra/internal/store"
)

type TaskFilter struct {
	Status     *models.TaskStatus
	ProjectID  *string
	AssigneeID *int64
}

func (filter TaskFilter) matches(task models.Task) bool {
	if filter.Status != nil && task.Status != *filter.Status {
		return false
	}
	if filter.ProjectID != nil && (task.ProjectID == nil || *task.ProjectID != *filter.ProjectID) {
		return false
	}
	if filter.AssigneeID != nil && (task.AssigneeID == nil || *task.AssigneeID != *filter.AssigneeID) {
		return false
	}
	return true
}

type TaskRepository interface {
	FindByID(ctx context.Context, id int64) (models.Task, error)
	FindAll(ctx context.Context, filter TaskFilter) ([]models.Task, error)
	Create(ctx context.Context, task models.Task) (models.Task, error)
	Update(ctx context.Context, id int64, patch models.TaskPatch) (models.Task, error)
	Mutate(ctx context.Context, id int64, change func(*models.Task) error) (models.Task, error)
	Delete(ctx context.Context, id int64) error
}

type JSONTaskRepository struct {
	store *store.Store
	now   func() time.Time
}

func NewTaskRepository(s *store.Store) *JSONTaskRepository {
	return &JSONTaskRepository{store: s, now: time.Now}
}

func (repository *JSONTaskRepository) FindByID(ctx context.Context, id int64) (models.Task, error) {
	record, err := repository.store.Get(store.Tasks, id)
	if err != nil {
		return models.Task{}, fmt.Errorf("finding task by id: %w", err)
	}
	task, err := decodeRecord[models.Task](record)
	if err != nil {
		return models.Task{}, fmt.Errorf("decoding task %d: %w", id, err)
	}
	return task, nil
}

func (repository *JSONTaskRepository) FindAll(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	records, err := repository.store.All(store.Tasks)
	if err != nil {
		return nil, fmt.Errorf("finding all tasks: %w", err)
	}
	var tasks []models.Task
	for _, task := range decodeRecords[models.Task](store.Tasks, records) {
		if filter.matches(task) {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

// Create stores a new task. Status defaults to inbox and createdAt to the
// current UTC time; the id is always assigned by the store.
func (repository *JSONTaskRepository) Create(ctx context.Context, task models.Task) (models.Task, error) {
	if task.Status == "" {
		task.Status = models.TaskStatusInbox
	}
	if task.CreatedAt == "" {
		task.CreatedAt = repository.now().UTC().Format(time.RFC3339)
	}
	if err := task.Validate(); err != nil {
		return models.Task{}, err
	}

	record, err := store.RecordOf(task)
	if err != nil {
		return models.Task{}, fmt.Errorf("encoding task: %w", err)
	}
	delete(record, "id")

	created, err := repository.store.Create(store.Tasks, record)
	if err != nil {
		return models.Task{}, fmt.Errorf("creating task: %w", err)
	}
	return decodeRecord[models.Task](created)
}

func (repository *JSONTaskRepository) Update(ctx context.Context, id int64, patch models.TaskPatch) (models.Task, error) {
	fields, err := store.RecordOf(patch)
	if err != nil {
		return models.Task{}, fmt.Errorf("encoding task patch: %w", err)
	}

	task, err := mutateTyped(repository.store, store.Tasks, id, func(task *models.Task) error {
		merged := store.Record{}
		if _, err := overlay(merged, task); err != nil {
			return err
		}
		for key, value := range fields {
			merged[key] = value
		}
		next, err := decodeRecord[models.Task](merged)
		if err != nil {
			return fmt.Errorf("%w: %v", models.ErrValidation, err)
		}
		if err := next.Validate(); err != nil {
			return err
		}
		*task = next
		return nil
	})
	if err != nil {
		return models.Task{}, fmt.Errorf("updating task: %w", err)
	}
	return task, nil
}

func (repository *JSONTaskRepository) Mutate(ctx context.Context, id int64, change func(*models.Task) error) (models.Task, error) {
	task, err := mutateTyped(repository.store, store.Tasks, id, change)
	if err != nil {
		return models.Task{}, fmt.Errorf("updating task: %w", err)
	}
	return task, nil
}

func (repository *JSONTaskRepository) Delete(ctx context.Context, id int64) error {
	deleted, err := repository.store.Delete(store.Tasks, id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	if !deleted {
		return fmt.Errorf("deleting task %d: %w", id, ErrNotFound)
	}
	return nil
}

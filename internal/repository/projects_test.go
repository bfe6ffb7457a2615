package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/allenwoods/naive-coreterra/internal/models"
	"github.com/allenwoods/naive-coreterra/internal/repository"
)

func TestProjectRepository_CreateZeroesCountersAndAssignsID(t *testing.T) {
	repo := repository.NewProjectRepository(newSeededStore(t))

	created, err := repo.Create(context.Background(), models.Project{
		Title:          "Migration",
		Progress:       80,
		TotalTasks:     9,
		CompletedTasks: 3,
	})
	if err != nil {
		t.Fatalf("creating project: %v", err)
	}
	if created.ID != "p8" {
		t.Errorf("expected id p8, got %q", created.ID)
	}
	if created.Progress != 0 || created.TotalTasks != 0 || created.CompletedTasks != 0 {
		t.Errorf("expected zeroed counters, got %+v", created)
	}
}

func TestProjectRepository_ConcurrentCreatesGetDistinctIDs(t *testing.T) {
	repo := repository.NewProjectRepository(newSeededStore(t))
	ctx := context.Background()

	const creates = 10
	ids := make(chan string, creates)
	var wg sync.WaitGroup
	for i := 0; i < creates; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			project, err := repo.Create(ctx, models.Project{Title: "Parallel"})
			if err != nil {
				t.Errorf("creating project: %v", err)
				return
			}
			ids <- project.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		if seen[id] {
			t.Errorf("duplicate project id %q", id)
		}
		seen[id] = true
	}
	if len(seen) != creates {
		t.Errorf("expected %d ids, got %d", creates, len(seen))
	}
}

func TestProjectRepository_UpdateRejectsMoreCompletedThanTotal(t *testing.T) {
	repo := repository.NewProjectRepository(newSeededStore(t))
	completed := 6

	_, err := repo.Update(context.Background(), "p1", models.ProjectPatch{CompletedTasks: &completed})
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestProjectRepository_UpdatePreservesOtherFields(t *testing.T) {
	repo := repository.NewProjectRepository(newSeededStore(t))
	progress := 60

	updated, err := repo.Update(context.Background(), "p1", models.ProjectPatch{Progress: &progress})
	if err != nil {
		t.Fatalf("updating project: %v", err)
	}
	if updated.Progress != 60 {
		t.Errorf("expected progress 60, got %d", updated.Progress)
	}
	if updated.Title != "Launch" || updated.TotalTasks != 5 || updated.CompletedTasks != 2 {
		t.Errorf("expected other fields untouched, got %+v", updated)
	}
}

func TestProjectRepository_DeleteMissing(t *testing.T) {
	repo := repository.NewProjectRepository(newSeededStore(t))

	err := repo.Delete(context.Background(), "p99")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

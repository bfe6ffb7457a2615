package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/allenwoods/naive-coreterra/internal/metrics"
	"github.com/allenwoods/naive-coreterra/internal/models"
	"github.com/allenwoods/naive-coreterra/internal/repository"
)

var (
	ErrInvalidInput         = models.ErrValidation
	ErrTaskAlreadyCompleted = errors.New("task is already completed")
)

type CompletionResult struct {
	Task   models.Task
	User   models.User
	Reward TaskReward
}

type TaskService struct {
	taskRepo   repository.TaskRepository
	userRepo   repository.UserRepository
	rewardRepo repository.RewardEventRepository
	metrics    *metrics.Metrics
}

func NewTaskService(
	taskRepo repository.TaskRepository,
	userRepo repository.UserRepository,
	rewardRepo repository.RewardEventRepository,
	m *metrics.Metrics,
) *TaskService {
	return &TaskService{
		taskRepo:   taskRepo,
		userRepo:   userRepo,
		rewardRepo: rewardRepo,
		metrics:    m,
	}
}

// Complete marks the task completed and credits the reward to userID. The
// task is claimed first so two concurrent completions cannot both pay out.
// A user that no longer exists still gets the task completed, without reward.
func (service *TaskService) Complete(ctx context.Context, taskID, userID int64) (CompletionResult, error) {
	var previous models.Task
	completed, err := service.taskRepo.Mutate(ctx, taskID, func(task *models.Task) error {
		if task.Status == models.TaskStatusCompleted {
			return ErrTaskAlreadyCompleted
		}
		previous = *task
		task.Status = models.TaskStatusCompleted
		return nil
	})
	if err != nil {
		return CompletionResult{}, fmt.Errorf("completing task %d: %w", taskID, err)
	}

	var reward TaskReward
	user, err := service.userRepo.Mutate(ctx, userID, func(user *models.User) error {
		_, *user, reward = CompleteTask(previous, *user)
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		slog.Warn("completed task for unknown user", "task_id", taskID, "user_id", userID)
		return CompletionResult{Task: completed}, nil
	}
	if err != nil {
		service.release(ctx, taskID, previous.Status)
		return CompletionResult{}, fmt.Errorf("crediting reward for task %d: %w", taskID, err)
	}

	service.metrics.TaskCompleted(reward.XP, reward.Gold, reward.LevelUp)
	service.record(ctx, models.RewardEvent{
		UserID:      userID,
		Kind:        models.RewardKindTaskCompleted,
		RefID:       strconv.FormatInt(taskID, 10),
		XPDelta:     reward.XP,
		GoldDelta:   reward.Gold,
		LevelBefore: reward.LevelBefore,
		LevelAfter:  reward.LevelAfter,
	})

	return CompletionResult{Task: completed, User: user, Reward: reward}, nil
}

// release puts the task back into its prior status after the reward could not
// be written.
func (service *TaskService) release(ctx context.Context, taskID int64, status models.TaskStatus) {
	_, err := service.taskRepo.Mutate(ctx, taskID, func(task *models.Task) error {
		task.Status = status
		return nil
	})
	if err != nil {
		slog.Error("restoring task status", "task_id", taskID, "error", err)
	}
}

func (service *TaskService) record(ctx context.Context, event models.RewardEvent) {
	if service.rewardRepo == nil {
		return
	}
	if _, err := service.rewardRepo.Create(ctx, event); err != nil {
		slog.Error("recording reward event", "kind", event.Kind, "ref_id", event.RefID, "error", err)
	}
}

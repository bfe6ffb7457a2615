package models

import (
	"errors"
	"fmt"
	"time"
)

var ErrValidation = errors.New("validation failed")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

const (
	DefaultLevel = 1
	DefaultMaxXP = 500
)

type UserStats struct {
	Focus     int `json:"focus"`
	Execution int `json:"execution"`
	Planning  int `json:"planning"`
	Teamwork  int `json:"teamwork"`
	Expertise int `json:"expertise"`
	Streak    int `json:"streak"`
}

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	Role      string    `json:"role"`
	Level     int       `json:"level"`
	CurrentXP int       `json:"currentXP"`
	MaxXP     int       `json:"maxXP"`
	Gold      int       `json:"gold"`
	Streak    int       `json:"streak"`
	Inventory []string  `json:"inventory"`
	Stats     UserStats `json:"stats"`
}

// ApplyDefaults fills in values a stored user may leave out.
func (user *User) ApplyDefaults() {
	if user.Level <= 0 {
		user.Level = DefaultLevel
	}
	if user.MaxXP <= 0 {
		user.MaxXP = DefaultMaxXP
	}
	if user.CurrentXP < 0 {
		user.CurrentXP = 0
	}
	if user.Inventory == nil {
		user.Inventory = []string{}
	}
}

func (user User) Owns(itemID string) bool {
	for _, owned := range user.Inventory {
		if owned == itemID {
			return true
		}
	}
	return false
}

type UserPatch struct {
	Name      *string    `json:"name,omitempty"`
	Avatar    *string    `json:"avatar,omitempty"`
	Level     *int       `json:"level,omitempty"`
	CurrentXP *int       `json:"currentXP,omitempty"`
	MaxXP     *int       `json:"maxXP,omitempty"`
	Gold      *int       `json:"gold,omitempty"`
	Streak    *int       `json:"streak,omitempty"`
	Inventory *[]string  `json:"inventory,omitempty"`
	Stats     *UserStats `json:"stats,omitempty"`
}

func (patch UserPatch) Validate() error {
	if patch.Level != nil && *patch.Level < 1 {
		return invalid("level must be at least 1")
	}
	if patch.CurrentXP != nil && *patch.CurrentXP < 0 {
		return invalid("currentXP must not be negative")
	}
	if patch.MaxXP != nil && *patch.MaxXP < 1 {
		return invalid("maxXP must be positive")
	}
	if patch.Gold != nil && *patch.Gold < 0 {
		return invalid("gold must not be negative")
	}
	return nil
}

type TaskStatus string

const (
	TaskStatusInbox     TaskStatus = "inbox"
	TaskStatusClarified TaskStatus = "clarified"
	TaskStatusOrganized TaskStatus = "organized"
	TaskStatusScheduled TaskStatus = "scheduled"
	TaskStatusWaiting   TaskStatus = "waiting"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusTrash     TaskStatus = "trash"
)

func (status TaskStatus) Valid() bool {
	switch status {
	case TaskStatusInbox, TaskStatusClarified, TaskStatusOrganized, TaskStatusScheduled,
		TaskStatusWaiting, TaskStatusCompleted, TaskStatusTrash:
		return true
	}
	return false
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Med"
	DifficultyHard   Difficulty = "Hard"
)

func (difficulty Difficulty) Valid() bool {
	switch difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

type Subtask struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// Task mirrors the stored task record. XPReward is nil when the record has no
// reward at all, which is different from an explicit reward of zero.
type Task struct {
	ID            int64       `json:"id"`
	Title         string      `json:"title"`
	Status        TaskStatus  `json:"status"`
	CreatedAt     string      `json:"createdAt,omitempty"`
	Priority      bool        `json:"priority"`
	ProjectID     *string     `json:"projectId,omitempty"`
	ContextID     *string     `json:"contextId,omitempty"`
	Difficulty    *Difficulty `json:"difficulty,omitempty"`
	EstimatedTime *string     `json:"estimatedTime,omitempty"`
	XPReward      *int        `json:"xpReward,omitempty"`
	GoldReward    *int        `json:"goldReward,omitempty"`
	Subtasks      []Subtask   `json:"subtasks,omitempty"`
	Progress      *int        `json:"progress,omitempty"`
	AssigneeID    *int64      `json:"assigneeId,omitempty"`
	Description   *string     `json:"description,omitempty"`
	DueDate       *string     `json:"dueDate,omitempty"`
}

func (task Task) Validate() error {
	if task.Title == "" {
		return invalid("title is required")
	}
	if !task.Status.Valid() {
		return invalid("unknown status %q", task.Status)
	}
	if task.Difficulty != nil && !task.Difficulty.Valid() {
		return invalid("unknown difficulty %q", *task.Difficulty)
	}
	if task.XPReward != nil && *task.XPReward < 0 {
		return invalid("xpReward must not be negative")
	}
	if task.GoldReward != nil && *task.GoldReward < 0 {
		return invalid("goldReward must not be negative")
	}
	if task.Progress != nil && (*task.Progress < 0 || *task.Progress > 100) {
		return invalid("progress must be between 0 and 100")
	}
	return nil
}

// TaskCreate is what a client may set when creating a task. Rewards and the
// remaining fields are only changed through TaskPatch.
type TaskCreate struct {
	Title       string     `json:"title"`
	Status      TaskStatus `json:"status"`
	Priority    bool       `json:"priority"`
	Description *string    `json:"description,omitempty"`
}

func (create TaskCreate) Task() Task {
	return Task{
		Title:       create.Title,
		Status:      create.Status,
		Priority:    create.Priority,
		Description: create.Description,
	}
}

type TaskPatch struct {
	Title         *string     `json:"title,omitempty"`
	Status        *TaskStatus `json:"status,omitempty"`
	Priority      *bool       `json:"priority,omitempty"`
	ProjectID     *string     `json:"projectId,omitempty"`
	ContextID     *string     `json:"contextId,omitempty"`
	Difficulty    *Difficulty `json:"difficulty,omitempty"`
	EstimatedTime *string     `json:"estimatedTime,omitempty"`
	XPReward      *int        `json:"xpReward,omitempty"`
	GoldReward    *int        `json:"goldReward,omitempty"`
	Subtasks      *[]Subtask  `json:"subtasks,omitempty"`
	Progress      *int        `json:"progress,omitempty"`
	AssigneeID    *int64      `json:"assigneeId,omitempty"`
	Description   *string     `json:"description,omitempty"`
	DueDate       *string     `json:"dueDate,omitempty"`
}

type Project struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Description    *string        `json:"description,omitempty"`
	Progress       int            `json:"progress"`
	TotalTasks     int            `json:"totalTasks"`
	CompletedTasks int            `json:"completedTasks"`
	Timeline       map[string]any `json:"timeline,omitempty"`
}

func (project Project) Validate() error {
	if project.Title == "" {
		return invalid("title is required")
	}
	if project.Progress < 0 || project.Progress > 100 {
		return invalid("progress must be between 0 and 100")
	}
	if project.TotalTasks < 0 || project.CompletedTasks < 0 {
		return invalid("task counts must not be negative")
	}
	if project.CompletedTasks > project.TotalTasks {
		return invalid("completedTasks (%d) exceeds totalTasks (%d)", project.CompletedTasks, project.TotalTasks)
	}
	return nil
}

type ProjectPatch struct {
	Title          *string         `json:"title,omitempty"`
	Description    *string         `json:"description,omitempty"`
	Progress       *int            `json:"progress,omitempty"`
	TotalTasks     *int            `json:"totalTasks,omitempty"`
	CompletedTasks *int            `json:"completedTasks,omitempty"`
	Timeline       *map[string]any `json:"timeline,omitempty"`
}

type ItemType string

const (
	ItemTypeConsumable ItemType = "consumable"
	ItemTypeCosmetic   ItemType = "cosmetic"
)

type ShopItem struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Cost   int            `json:"cost"`
	Type   ItemType       `json:"type"`
	Effect map[string]any `json:"effect,omitempty"`
}

type Achievement struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"desc"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	Bg          string `json:"bg"`
	Border      string `json:"border"`
	Unlocked    bool   `json:"unlocked"`
}

// AuthCredential holds either a bcrypt PasswordHash or, for bootstrap data,
// a plaintext Password. It is never returned by the API.
type AuthCredential struct {
	Username     string `json:"username"`
	Password     string `json:"password,omitempty"`
	PasswordHash string `json:"password_hash,omitempty"`
	UserID       int64  `json:"user_id"`
}

type RewardKind string

const (
	RewardKindTaskCompleted RewardKind = "task_completed"
	RewardKindItemPurchased RewardKind = "item_purchased"
)

type RewardEvent struct {
	ID          string     `json:"id"`
	UserID      int64      `json:"userId"`
	Kind        RewardKind `json:"kind"`
	RefID       string     `json:"refId"`
	XPDelta     int        `json:"xpDelta"`
	GoldDelta   int        `json:"goldDelta"`
	LevelBefore int        `json:"levelBefore"`
	LevelAfter  int        `json:"levelAfter"`
	CreatedAt   time.Time  `json:"createdAt"`
}

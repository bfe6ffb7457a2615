package services

import (
	"errors"
	"slices"

	"github.com/allenwoods/naive-coreterra/internal/models"
)

const (
	DefaultXPReward = 50

	goldPerXP   = 0.5
	maxXPGrowth = 1.2
)

var ErrInsufficientGold = errors.New("not enough gold")

type TaskReward struct {
	XP          int  `json:"xp"`
	Gold        int  `json:"gold"`
	LevelBefore int  `json:"levelBefore"`
	LevelAfter  int  `json:"levelAfter"`
	LevelUp     bool `json:"levelUp"`
}

// CompleteTask marks task completed and credits its reward to user. An
// absent xpReward pays DefaultXPReward; an explicit zero pays nothing. At most
// one level is gained per completion, however large the award.
func CompleteTask(task models.Task, user models.User) (models.Task, models.User, TaskReward) {
	user.ApplyDefaults()
	user.Inventory = slices.Clone(user.Inventory)

	xp := DefaultXPReward
	if task.XPReward != nil {
		xp = *task.XPReward
	}
	gold := int(float64(xp) * goldPerXP)

	reward := TaskReward{XP: xp, Gold: gold, LevelBefore: user.Level}
	user.CurrentXP += xp
	user.Gold += gold
	if user.CurrentXP >= user.MaxXP {
		user.Level++
		user.CurrentXP = 0
		user.MaxXP = int(float64(user.MaxXP) * maxXPGrowth)
		reward.LevelUp = true
	}
	reward.LevelAfter = user.Level

	task.Status = models.TaskStatusCompleted
	return task, user, reward
}

// PurchaseItem deducts the item cost and adds it to the inventory once.
// Buying an item already owned still costs gold.
func PurchaseItem(item models.ShopItem, user models.User) (models.User, error) {
	if user.Gold < item.Cost {
		return user, ErrInsufficientGold
	}
	user.Gold -= item.Cost
	if !user.Owns(item.ID) {
		user.Inventory = append(slices.Clone(user.Inventory), item.ID)
	}
	return user, nil
}

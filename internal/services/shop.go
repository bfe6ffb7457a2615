package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/allenwoods/naive-coreterra/internal/metrics"
	"github.com/allenwoods/naive-coreterra/internal/models"
	"github.com/allenwoods/naive-coreterra/internal/repository"
)

type ShopService struct {
	itemRepo   repository.ShopItemRepository
	userRepo   repository.UserRepository
	rewardRepo repository.RewardEventRepository
	metrics    *metrics.Metrics
}

func NewShopService(
	itemRepo repository.ShopItemRepository,
	userRepo repository.UserRepository,
	rewardRepo repository.RewardEventRepository,
	m *metrics.Metrics,
) *ShopService {
	return &ShopService{
		itemRepo:   itemRepo,
		userRepo:   userRepo,
		rewardRepo: rewardRepo,
		metrics:    m,
	}
}

// Purchase buys itemID for userID. The gold check and deduction happen inside
// one user mutation, so concurrent purchases cannot overdraw.
func (service *ShopService) Purchase(ctx context.Context, itemID string, userID int64) (models.ShopItem, models.User, error) {
	item, err := service.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return models.ShopItem{}, models.User{}, fmt.Errorf("purchasing item %s: %w", itemID, err)
	}

	user, err := service.userRepo.Mutate(ctx, userID, func(user *models.User) error {
		updated, err := PurchaseItem(item, *user)
		if err != nil {
			return err
		}
		*user = updated
		return nil
	})
	if errors.Is(err, ErrInsufficientGold) {
		service.metrics.Purchase("insufficient_gold")
		return item, models.User{}, err
	}
	if err != nil {
		service.metrics.Purchase("error")
		return item, models.User{}, fmt.Errorf("purchasing item %s: %w", itemID, err)
	}
	service.metrics.Purchase("ok")

	if service.rewardRepo != nil {
		_, err := service.rewardRepo.Create(ctx, models.RewardEvent{
			UserID:      userID,
			Kind:        models.RewardKindItemPurchased,
			RefID:       item.ID,
			GoldDelta:   -item.Cost,
			LevelBefore: user.Level,
			LevelAfter:  user.Level,
		})
		if err != nil {
			slog.Error("recording purchase", "item_id", item.ID, "error", err)
		}
	}

	return item, user, nil
}

func (service *ShopService) Items(ctx context.Context) ([]models.ShopItem, error) {
	items, err := service.itemRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing shop items: %w", err)
	}
	return items, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/allenwoods/naive-coreterra/internal/models"
	"github.com/allenwoods/naive-coreterra/internal/store"
)

type ShopItemRepository interface {
	FindAll(ctx context.Context) ([]models.ShopItem, error)
	FindByID(ctx context.Context, id string) (models.ShopItem, error)
}

type JSONShopItemRepository struct {
	store *store.Store
}

func NewShopItemRepository(s *store.Store) *JSONShopItemRepository {
	return &JSONShopItemRepository{store: s}
}

func (repository *JSONShopItemRepository) FindAll(ctx context.Context) ([]models.ShopItem, error) {
	records, err := repository.store.All(store.ShopItems)
	if err != nil {
		return nil, fmt.Errorf("finding all shop items: %w", err)
	}
	return decodeRecords[models.ShopItem](store.ShopItems, records), nil
}

func (repository *JSONShopItemRepository) FindByID(ctx context.Context, id string) (models.ShopItem, error) {
	record, err := repository.store.Get(store.ShopItems, id)
	if err != nil {
		return models.ShopItem{}, fmt.Errorf("finding shop item by id: %w", err)
	}
	item, err := decodeRecord[models.ShopItem](record)
	if err != nil {
		return models.ShopItem{}, fmt.Errorf("decoding shop item %s: %w", id, err)
	}
	return item, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/allenwoods/naive-coreterra/internal/models"
	"github.com/allenwoods/naive-coreterra/internal/store"
)

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (models.User, error)
	FindAll(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, user models.User) (models.User, error)
	Update(ctx context.Context, id int64, patch models.UserPatch) (models.User, error)
	Mutate(ctx context.Context, id int64, change func(*models.User) error) (models.User, error)
}

type JSONUserRepository struct {
	store *store.Store
}

func NewUserRepository(s *store.Store) *JSONUserRepository {
	return &JSONUserRepository{store: s}
}

func (repository *JSONUserRepository) FindByID(ctx context.Context, id int64) (models.User, error) {
	record, err := repository.store.Get(store.Users, id)
	if err != nil {
		return models.User{}, fmt.Errorf("finding user by id: %w", err)
	}
	user, err := decodeRecord[models.User](record)
	if err != nil {
		return models.User{}, fmt.Errorf("decoding user %d: %w", id, err)
	}
	user.ApplyDefaults()
	return user, nil
}

func (repository *JSONUserRepository) FindAll(ctx context.Context) ([]models.User, error) {
	records, err := repository.store.All(store.Users)
	if err != nil {
		return nil, fmt.Errorf("finding all users: %w", err)
	}
	users := decodeRecords[models.User](store.Users, records)
	for i := range users {
		users[i].ApplyDefaults()
	}
	return users, nil
}

func (repository *JSONUserRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	user.ApplyDefaults()
	record, err := store.RecordOf(user)
	if err != nil {
		return models.User{}, fmt.Errorf("encoding user: %w", err)
	}
	if user.ID == 0 {
		delete(record, "id")
	}

	created, err := repository.store.Create(store.Users, record)
	if err != nil {
		return models.User{}, fmt.Errorf("creating user: %w", err)
	}
	return decodeRecord[models.User](created)
}

func (repository *JSONUserRepository) Update(ctx context.Context, id int64, patch models.UserPatch) (models.User, error) {
	if err := patch.Validate(); err != nil {
		return models.User{}, err
	}
	fields, err := store.RecordOf(patch)
	if err != nil {
		return models.User{}, fmt.Errorf("encoding user patch: %w", err)
	}

	updated, err := repository.store.Update(store.Users, id, fields)
	if err != nil {
		return models.User{}, fmt.Errorf("updating user: %w", err)
	}
	user, err := decodeRecord[models.User](updated)
	if err != nil {
		return models.User{}, fmt.Errorf("decoding user %d: %w", id, err)
	}
	user.ApplyDefaults()
	return user, nil
}

// Mutate applies change to the stored user atomically with respect to other
// writers of the users document.
func (repository *JSONUserRepository) Mutate(ctx context.Context, id int64, change func(*models.User) error) (models.User, error) {
	user, err := mutateTyped(repository.store, store.Users, id, func(user *models.User) error {
		user.ApplyDefaults()
		return change(user)
	})
	if err != nil {
		return models.User{}, fmt.Errorf("updating user: %w", err)
	}
	return user, nil
}

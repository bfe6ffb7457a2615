package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/allenwoods/naive-coreterra/internal/models"
	"github.com/allenwoods/naive-coreterra/internal/store"
)

var ErrUsernameTaken = errors.New("username already exists")

type CredentialRepository interface {
	FindByUsername(ctx context.Context, username string) (models.AuthCredential, error)
	Create(ctx context.Context, credential models.AuthCredential) error
}

type JSONCredentialRepository struct {
	store *store.Store
}

func NewCredentialRepository(s *store.Store) *JSONCredentialRepository {
	return &JSONCredentialRepository{store: s}
}

func (repository *JSONCredentialRepository) FindByUsername(ctx context.Context, username string) (models.AuthCredential, error) {
	records, err := repository.store.Filter(store.AuthCredentials, func(record store.Record) bool {
		return record["username"] == username
	})
	if err != nil {
		return models.AuthCredential{}, fmt.Errorf("finding credential: %w", err)
	}
	if len(records) == 0 {
		return models.AuthCredential{}, fmt.Errorf("credential %q: %w", username, ErrNotFound)
	}
	return decodeRecord[models.AuthCredential](records[0])
}

// Create adds a credential. The username check and the write happen under the
// same document lock, so concurrent creates cannot both claim a username.
func (repository *JSONCredentialRepository) Create(ctx context.Context, credential models.AuthCredential) error {
	record, err := store.RecordOf(credential)
	if err != nil {
		return fmt.Errorf("encoding credential: %w", err)
	}

	_, err = repository.store.Insert(store.AuthCredentials, func(existing []store.Record) (store.Record, error) {
		for _, other := range existing {
			if other["username"] == credential.Username {
				return nil, fmt.Errorf("credential %q: %w", credential.Username, ErrUsernameTaken)
			}
		}
		return record, nil
	})
	if err != nil {
		return fmt.Errorf("creating credential: %w", err)
	}
	return nil
}

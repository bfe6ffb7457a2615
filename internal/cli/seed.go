package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/allenwoods/naive-coreterra/internal/config"
	"github.com/allenwoods/naive-coreterra/internal/models"
	"github.com/allenwoods/naive-coreterra/internal/repository"
	"github.com/allenwoods/naive-coreterra/internal/services"
	"github.com/allenwoods/naive-coreterra/internal/store"
	"github.com/spf13/cobra"
)

const demoUsername = "demo"

func newSeedCmd() *cobra.Command {
	var dataDir string
	var password string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write demo documents into the data directory",
		Long:  "Seed writes a demo user (login demo), shop items, achievements and sample tasks. Documents that already exist are left alone.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			written, err := seed(dataDir, password)
			if err != nil {
				return err
			}
			if len(written) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "all documents already exist, nothing seeded")
				return nil
			}
			for _, name := range written {
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %s\n", filepath.Join(dataDir, name))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", envOrDefault("DATA_DIR", config.Default().DataDir), "Directory holding the JSON documents")
	cmd.Flags().StringVar(&password, "password", "demo", "Password for the demo login")
	return cmd
}

// seed returns the documents it created, in store order.
func seed(dataDir, password string) ([]string, error) {
	dataStore := store.New(dataDir)

	missing := make(map[string]bool)
	for _, name := range dataStore.Documents() {
		_, err := os.Stat(filepath.Join(dataDir, name))
		if errors.Is(err, fs.ErrNotExist) {
			missing[name] = true
		} else if err != nil {
			return nil, fmt.Errorf("checking document %s: %w", name, err)
		}
	}

	if missing[store.Layout[store.Users]] {
		if err := seedDemoUser(dataStore, password); err != nil {
			return nil, err
		}
	}

	for collection, records := range demoRecords() {
		if !missing[store.Layout[collection]] {
			continue
		}
		for _, record := range records {
			if _, err := dataStore.Create(collection, record); err != nil {
				return nil, fmt.Errorf("seeding %s: %w", collection, err)
			}
		}
	}

	var written []string
	for _, name := range dataStore.Documents() {
		if missing[name] {
			written = append(written, name)
		}
	}
	return written, nil
}

// seedDemoUser creates the demo user and its login with a bcrypt hash.
func seedDemoUser(dataStore *store.Store, password string) error {
	ctx := context.Background()
	user, err := repository.NewUserRepository(dataStore).Create(ctx, models.User{ID: 1, Name: "Demo", Role: "Novice", Avatar: "D"})
	if err != nil {
		return fmt.Errorf("seeding demo user: %w", err)
	}

	hash, err := services.HashPassword(password)
	if err != nil {
		return err
	}
	credential := models.AuthCredential{Username: demoUsername, PasswordHash: hash, UserID: user.ID}
	if err := repository.NewCredentialRepository(dataStore).Create(ctx, credential); err != nil {
		return fmt.Errorf("seeding demo login: %w", err)
	}
	return nil
}

func demoRecords() map[store.Collection][]store.Record {
	return map[store.Collection][]store.Record{
		store.Tasks: {
			{"id": 1, "title": "Plan the week", "status": "inbox", "priority": true, "xpReward": 50},
			{"id": 2, "title": "Write release notes", "status": "scheduled", "projectId": "p1", "xpReward": 120},
			{"id": 3, "title": "Water the plants", "status": "organized", "xpReward": 20},
		},
		store.CalendarEvents: {
			{"id": 1, "title": "Weekly review", "date": 5, "type": "meeting"},
		},
		store.Projects: {
			{"id": "p1", "title": "Product launch", "progress": 0, "totalTasks": 0, "completedTasks": 0, "timeline": "Q4"},
		},
		store.ShopItems: {
			{"id": "i1", "name": "Coffee break", "cost": 20, "type": "consumable", "icon": "coffee"},
			{"id": "i2", "name": "Golden frame", "cost": 150, "type": "cosmetic", "icon": "frame"},
			{"id": "i3", "name": "Focus theme", "cost": 300, "type": "theme", "icon": "palette"},
		},
		store.Achievements: {
			{"id": 1, "title": "First Steps", "desc": "Complete your first task", "unlocked": false, "icon": "footprints"},
			{"id": 2, "title": "Shopper", "desc": "Buy an item from the shop", "unlocked": false, "icon": "bag"},
		},
		store.Teams: {
			{"id": 1, "name": "Demo", "role": "Owner", "avatar": "D"},
		},
		store.Contexts: {
			{"id": "c1", "name": "@computer"},
			{"id": "c2", "name": "@home"},
		},
		store.ScheduledCategories: {
			{"id": "s1", "name": "Deep work"},
		},
		store.Reports: {
			{"id": 1, "type": "daily", "date": "2026-01-05", "summary": "Getting started"},
		},
	}
}

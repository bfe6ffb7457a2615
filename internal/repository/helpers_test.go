package repository_test

import (
	"testing"

	"github.com/allenwoods/naive-coreterra/internal/store"
	"github.com/allenwoods/naive-coreterra/internal/testutil"
)

func newSeededStore(t *testing.T) *store.Store {
	t.Helper()
	return testutil.NewTestStore(t, testutil.Documents{
		"users.json": map[string]any{
			"users": []map[string]any{
				{"id": 1, "name": "Ada", "role": "Engineer", "level": 3, "currentXP": 120, "maxXP": 600, "gold": 40, "inventory": []string{"i1"}, "title": "Captain"},
				{"id": 2, "name": "Grace"},
			},
			"authCredentials": []map[string]any{
				{"username": "ada", "password": "secret", "user_id": 1},
			},
		},
		"tasks.json": map[string]any{
			"tasks": []map[string]any{
				{"id": 1, "title": "Write report", "status": "inbox", "priority": true, "xpReward": 120, "tags": []string{"q3"}},
				{"id": 2, "title": "Review PR", "status": "scheduled", "projectId": "p1"},
			},
			"calendarEvents": []map[string]any{
				{"id": 1, "title": "Standup", "date": "2026-10-14"},
			},
		},
		"projects.json": map[string]any{
			"projects": []map[string]any{
				{"id": "p1", "title": "Launch", "progress": 40, "totalTasks": 5, "completedTasks": 2},
				{"id": "p7", "title": "Archive", "progress": 100, "totalTasks": 1, "completedTasks": 1},
			},
		},
		"items.json": map[string]any{
			"shopItems": []map[string]any{
				{"id": "i1", "name": "Coffee", "cost": 20, "type": "consumable"},
				{"id": "i2", "name": "Golden Frame", "cost": 50, "type": "cosmetic"},
			},
		},
		"report.json": map[string]any{
			"reports": []map[string]any{
				{"id": 1, "type": "daily", "summary": "Monday"},
				{"id": 2, "type": "weekly", "summary": "Week 41"},
				{"id": 3, "type": "daily", "summary": "Tuesday"},
			},
		},
	})
}

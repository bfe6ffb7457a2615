package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/allenwoods/naive-coreterra/internal/config"
	"github.com/allenwoods/naive-coreterra/internal/metrics"
	"github.com/allenwoods/naive-coreterra/internal/middleware"
	"github.com/allenwoods/naive-coreterra/internal/repository"
	"github.com/allenwoods/naive-coreterra/internal/services"
	"github.com/allenwoods/naive-coreterra/internal/store"
	"github.com/allenwoods/naive-coreterra/internal/testutil"
	"github.com/go-chi/chi/v5"
)

type testEnv struct {
	router      *chi.Mux
	store       *store.Store
	authService *services.AuthService
	token       string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	s := testutil.NewTestStore(t, testutil.Documents{
		"users.json": map[string]any{
			"users": []map[string]any{
				{"id": 1, "name": "Ada", "level": 1, "currentXP": 450, "maxXP": 500, "gold": 30, "inventory": []string{}},
			},
			"authCredentials": []map[string]any{
				{"username": "ada", "password": "secret", "user_id": 1},
			},
		},
		"tasks.json": map[string]any{
			"tasks": []map[string]any{
				{"id": 1, "title": "Ship it", "status": "scheduled", "xpReward": 120, "dueDate": "2026-10-20"},
				{"id": 2, "title": "Inbox item", "status": "inbox"},
			},
			"calendarEvents": []map[string]any{
				{"id": 1, "title": "Sprint review", "date": "2026-10-16T15:00:00Z"},
				{"id": 2, "title": "Day only", "date": 14},
			},
		},
		"projects.json": map[string]any{
			"projects": []map[string]any{
				{"id": "p1", "title": "Launch", "progress": 40, "totalTasks": 5, "completedTasks": 2},
			},
		},
		"items.json": map[string]any{
			"shopItems": []map[string]any{
				{"id": "i1", "name": "Coffee", "cost": 20, "type": "consumable"},
				{"id": "i2", "name": "Golden Frame", "cost": 50, "type": "cosmetic"},
			},
		},
		"achievements.json": map[string]any{
			"achievements": []map[string]any{
				{"id": 1, "title": "First Steps", "desc": "Complete a task", "unlocked": true},
			},
		},
		"contexts.json": map[string]any{
			"contexts":            []map[string]any{{"id": "c1", "name": "@office"}},
			"scheduledCategories": []map[string]any{{"id": "s1", "name": "Deep work"}},
		},
		"report.json": map[string]any{
			"reports": []map[string]any{
				{"id": 1, "type": "daily", "summary": "Monday"},
				{"id": 2, "type": "weekly", "summary": "Week 41"},
				{"id": 3, "type": "daily", "summary": "Tuesday"},
			},
		},
	})
	db := testutil.NewTestDatabase(t)
	m := metrics.New()

	userRepo := repository.NewUserRepository(s)
	taskRepo := repository.NewTaskRepository(s)
	rewardRepo := repository.NewRewardEventRepository(db)
	catalogRepo := repository.NewCatalogRepository(s)

	authService, err := services.NewAuthService(config.Config{JWTSecret: "test-secret", TokenTTL: time.Hour}, repository.NewCredentialRepository(s))
	if err != nil {
		t.Fatalf("creating auth service: %v", err)
	}
	taskService := services.NewTaskService(taskRepo, userRepo, rewardRepo, m)
	shopService := services.NewShopService(repository.NewShopItemRepository(s), userRepo, rewardRepo, m)

	authHandler := NewAuthHandler(authService, m)
	taskHandler := NewTaskHandler(taskRepo, taskService)
	projectHandler := NewProjectHandler(repository.NewProjectRepository(s))
	userHandler := NewUserHandler(userRepo)
	gamificationHandler := NewGamificationHandler(shopService, repository.NewAchievementRepository(s), rewardRepo)
	catalogHandler := NewCatalogHandler(catalogRepo)
	calendarHandler := NewCalendarHandler(taskRepo, catalogRepo)
	calendarHandler.now = func() time.Time { return time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC) }

	router := chi.NewRouter()
	router.Get("/health", Health)
	router.Post("/api/auth/login", authHandler.Login)
	router.With(middleware.RequireAuthOrQueryToken(authService)).Get("/api/calendar.ics", calendarHandler.Feed)
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(authService))
		r.Get("/api/auth/me", authHandler.Me)
		r.Get("/api/tasks", taskHandler.List)
		r.Post("/api/tasks", taskHandler.Create)
		r.Get("/api/tasks/{id}", taskHandler.Get)
		r.Put("/api/tasks/{id}", taskHandler.Update)
		r.Delete("/api/tasks/{id}", taskHandler.Delete)
		r.Post("/api/tasks/{id}/complete", taskHandler.Complete)
		r.Get("/api/projects", projectHandler.List)
		r.Post("/api/projects", projectHandler.Create)
		r.Get("/api/projects/{id}", projectHandler.Get)
		r.Put("/api/projects/{id}", projectHandler.Update)
		r.Delete("/api/projects/{id}", projectHandler.Delete)
		r.Get("/api/users/me", userHandler.Me)
		r.Put("/api/users/me", userHandler.UpdateMe)
		r.Get("/api/gamification/shop", gamificationHandler.Shop)
		r.Post("/api/gamification/shop/{id}/buy", gamificationHandler.Buy)
		r.Get("/api/gamification/achievements", gamificationHandler.Achievements)
		r.Get("/api/gamification/history", gamificationHandler.History)
		r.Get("/api/contexts", catalogHandler.Contexts)
		r.Get("/api/contexts/scheduled/categories", catalogHandler.ScheduledCategories)
		r.Get("/api/reports", catalogHandler.Reports)
		r.Get("/api/reports/daily", catalogHandler.DailyReport)
	})

	token, err := authService.IssueToken(services.Identity{UserID: 1, Username: "ada"})
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}
	return &testEnv{router: router, store: s, authService: authService, token: token}
}

func (env *testEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	request := httptest.NewRequest(method, target, &payload)
	request.Header.Set("Authorization", "Bearer "+env.token)
	recorder := httptest.NewRecorder()
	env.router.ServeHTTP(recorder, request)
	return recorder
}

func decodeBody[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var value T
	if err := json.Unmarshal(recorder.Body.Bytes(), &value); err != nil {
		t.Fatalf("decoding response %q: %v", recorder.Body.String(), err)
	}
	return value
}

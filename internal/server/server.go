package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/allenwoods/naive-coreterra/internal/config"
	"github.com/allenwoods/naive-coreterra/internal/handlers"
	"github.com/allenwoods/naive-coreterra/internal/metrics"
	"github.com/allenwoods/naive-coreterra/internal/middleware"
	"github.com/allenwoods/naive-coreterra/internal/repository"
	"github.com/allenwoods/naive-coreterra/internal/services"
	"github.com/allenwoods/naive-coreterra/internal/store"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	router *chi.Mux
	config config.Config
}

func New(cfg config.Config, dataStore *store.Store, database *sql.DB, m *metrics.Metrics) (*Server, error) {
	userRepo := repository.NewUserRepository(dataStore)
	credentialRepo := repository.NewCredentialRepository(dataStore)
	taskRepo := repository.NewTaskRepository(dataStore)
	projectRepo := repository.NewProjectRepository(dataStore)
	itemRepo := repository.NewShopItemRepository(dataStore)
	achievementRepo := repository.NewAchievementRepository(dataStore)
	catalogRepo := repository.NewCatalogRepository(dataStore)
	rewardRepo := repository.NewRewardEventRepository(database)

	authService, err := services.NewAuthService(cfg, credentialRepo)
	if err != nil {
		return nil, fmt.Errorf("creating auth service: %w", err)
	}
	taskService := services.NewTaskService(taskRepo, userRepo, rewardRepo, m)
	shopService := services.NewShopService(itemRepo, userRepo, rewardRepo, m)

	authHandler := handlers.NewAuthHandler(authService, m)
	taskHandler := handlers.NewTaskHandler(taskRepo, taskService)
	projectHandler := handlers.NewProjectHandler(projectRepo)
	userHandler := handlers.NewUserHandler(userRepo)
	gamificationHandler := handlers.NewGamificationHandler(shopService, achievementRepo, rewardRepo)
	catalogHandler := handlers.NewCatalogHandler(catalogRepo)
	calendarHandler := handlers.NewCalendarHandler(taskRepo, catalogRepo)
	loginLimiter := middleware.NewRateLimiter(cfg.LoginRatePerMinute, cfg.LoginBurst)

	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(middleware.PeerAddr)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Instrument(m))
	router.Use(chimiddleware.Compress(5))

	router.Get("/", handlers.Root)
	router.Get("/health", handlers.Health)
	router.Handle("/metrics", m.Handler())

	router.With(loginLimiter.Handler).Post("/api/auth/login", authHandler.Login)
	router.With(middleware.RequireAuthOrQueryToken(authService)).Get("/api/calendar.ics", calendarHandler.Feed)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(authService))

		r.Get("/api/auth/me", authHandler.Me)

		r.Route("/api/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.List)
			r.Post("/", taskHandler.Create)
			r.Get("/{id}", taskHandler.Get)
			r.Put("/{id}", taskHandler.Update)
			r.Delete("/{id}", taskHandler.Delete)
			r.Post("/{id}/complete", taskHandler.Complete)
		})

		r.Route("/api/projects", func(r chi.Router) {
			r.Get("/", projectHandler.List)
			r.Post("/", projectHandler.Create)
			r.Get("/{id}", projectHandler.Get)
			r.Put("/{id}", projectHandler.Update)
			r.Delete("/{id}", projectHandler.Delete)
		})

		r.Get("/api/users/me", userHandler.Me)
		r.Put("/api/users/me", userHandler.UpdateMe)

		r.Get("/api/gamification/shop", gamificationHandler.Shop)
		r.Post("/api/gamification/shop/{id}/buy", gamificationHandler.Buy)
		r.Get("/api/gamification/achievements", gamificationHandler.Achievements)
		r.Get("/api/gamification/history", gamificationHandler.History)

		r.Get("/api/contexts", catalogHandler.Contexts)
		r.Get("/api/contexts/scheduled/categories", catalogHandler.ScheduledCategories)
		r.Get("/api/teams", catalogHandler.Teams)
		r.Get("/api/reports", catalogHandler.Reports)
		r.Get("/api/reports/daily", catalogHandler.DailyReport)
		r.Get("/api/calendar/events", catalogHandler.CalendarEvents)
	})

	return &Server{router: router, config: cfg}, nil
}

func (server *Server) Handler() http.Handler {
	return server.router
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (server *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              ":" + server.config.Port,
		Handler:           server.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		slog.Info("starting server", "address", httpServer.Addr)
		errs <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	if err := <-errs; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

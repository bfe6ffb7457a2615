package handlers

import (
	"net/http"
	"strconv"

	"github.com/allenwoods/naive-coreterra/internal/repository"
	"github.com/allenwoods/naive-coreterra/internal/services"
	"github.com/go-chi/chi/v5"
)

const itemNotFound = "Item not found"

type GamificationHandler struct {
	shopService     *services.ShopService
	achievementRepo repository.AchievementRepository
	rewardRepo      repository.RewardEventRepository
}

func NewGamificationHandler(
	shopService *services.ShopService,
	achievementRepo repository.AchievementRepository,
	rewardRepo repository.RewardEventRepository,
) *GamificationHandler {
	return &GamificationHandler{
		shopService:     shopService,
		achievementRepo: achievementRepo,
		rewardRepo:      rewardRepo,
	}
}

func (handler *GamificationHandler) Shop(w http.ResponseWriter, r *http.Request) {
	items, err := handler.shopService.Items(r.Context())
	if err != nil {
		writeError(w, r, err, itemNotFound)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (handler *GamificationHandler) Buy(w http.ResponseWriter, r *http.Request) {
	item, _, err := handler.shopService.Purchase(r.Context(), chi.URLParam(r, "id"), currentUserID(r))
	if err != nil {
		writeError(w, r, err, itemNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Purchase successful",
		"item":    item,
	})
}

func (handler *GamificationHandler) Achievements(w http.ResponseWriter, r *http.Request) {
	achievements, err := handler.achievementRepo.FindAll(r.Context())
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, achievements)
}

// History lists the caller's reward ledger, newest first. ?limit= caps the
// page size.
func (handler *GamificationHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if value := r.URL.Query().Get("limit"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	events, err := handler.rewardRepo.FindByUserID(r.Context(), currentUserID(r), limit)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, events)
}

package handlers

import (
	"net/http"

	"github.com/allenwoods/naive-coreterra/internal/repository"
	"github.com/allenwoods/naive-coreterra/internal/store"
)

const dailyReportType = "daily"

type CatalogHandler struct {
	catalogRepo repository.CatalogRepository
}

func NewCatalogHandler(catalogRepo repository.CatalogRepository) *CatalogHandler {
	return &CatalogHandler{catalogRepo: catalogRepo}
}

func (handler *CatalogHandler) Contexts(w http.ResponseWriter, r *http.Request) {
	records, err := handler.catalogRepo.Contexts(r.Context())
	handler.respond(w, r, records, err)
}

func (handler *CatalogHandler) ScheduledCategories(w http.ResponseWriter, r *http.Request) {
	records, err := handler.catalogRepo.ScheduledCategories(r.Context())
	handler.respond(w, r, records, err)
}

func (handler *CatalogHandler) Teams(w http.ResponseWriter, r *http.Request) {
	records, err := handler.catalogRepo.Teams(r.Context())
	handler.respond(w, r, records, err)
}

func (handler *CatalogHandler) CalendarEvents(w http.ResponseWriter, r *http.Request) {
	records, err := handler.catalogRepo.CalendarEvents(r.Context())
	handler.respond(w, r, records, err)
}

func (handler *CatalogHandler) Reports(w http.ResponseWriter, r *http.Request) {
	records, err := handler.catalogRepo.Reports(r.Context(), r.URL.Query().Get("type"))
	handler.respond(w, r, records, err)
}

// DailyReport returns the last daily report in stored order, or null.
func (handler *CatalogHandler) DailyReport(w http.ResponseWriter, r *http.Request) {
	records, err := handler.catalogRepo.Reports(r.Context(), dailyReportType)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	if len(records) == 0 {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, records[len(records)-1])
}

func (handler *CatalogHandler) respond(w http.ResponseWriter, r *http.Request, records []store.Record, err error) {
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

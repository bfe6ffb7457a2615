package handlers

import (
	"net/http"

	"github.com/allenwoods/naive-coreterra/internal/models"
	"github.com/allenwoods/naive-coreterra/internal/repository"
	"github.com/go-chi/chi/v5"
)

const projectNotFound = "Project not found"

type ProjectHandler struct {
	projectRepo repository.ProjectRepository
}

func NewProjectHandler(projectRepo repository.ProjectRepository) *ProjectHandler {
	return &ProjectHandler{projectRepo: projectRepo}
}

func (handler *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := handler.projectRepo.FindAll(r.Context())
	if err != nil {
		writeError(w, r, err, projectNotFound)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (handler *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	project, err := handler.projectRepo.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, projectNotFound)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (handler *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var project models.Project
	if err := decodeJSON(r, &project); err != nil {
		writeError(w, r, err, projectNotFound)
		return
	}

	created, err := handler.projectRepo.Create(r.Context(), project)
	if err != nil {
		writeError(w, r, err, projectNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (handler *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.ProjectPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, r, err, projectNotFound)
		return
	}

	updated, err := handler.projectRepo.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, r, err, projectNotFound)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (handler *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := handler.projectRepo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err, projectNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

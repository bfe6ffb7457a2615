package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/allenwoods/naive-coreterra/internal/models"
	"github.com/allenwoods/naive-coreterra/internal/repository"
	"github.com/allenwoods/naive-coreterra/internal/services"
)

const taskNotFound = "Task not found"

type TaskHandler struct {
	taskRepo    repository.TaskRepository
	taskService *services.TaskService
}

func NewTaskHandler(taskRepo repository.TaskRepository, taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskRepo: taskRepo, taskService: taskService}
}

func (handler *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repository.TaskFilter{}
	query := r.URL.Query()
	if status := query.Get("status"); status != "" {
		s := models.TaskStatus(status)
		if !s.Valid() {
			writeError(w, r, fmt.Errorf("%w: unknown status %q", models.ErrValidation, status), taskNotFound)
			return
		}
		filter.Status = &s
	}
	if projectID := query.Get("projectId"); projectID != "" {
		filter.ProjectID = &projectID
	}
	if assignee := query.Get("assigneeId"); assignee != "" {
		assigneeID, err := strconv.ParseInt(assignee, 10, 64)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: assigneeId must be an integer", errMalformedBody), taskNotFound)
			return
		}
		filter.AssigneeID = &assigneeID
	}

	tasks, err := handler.taskRepo.FindAll(r.Context(), filter)
	if err != nil {
		writeError(w, r, err, taskNotFound)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (handler *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		writeError(w, r, err, taskNotFound)
		return
	}
	task, err := handler.taskRepo.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err, taskNotFound)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (handler *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request models.TaskCreate
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, r, err, taskNotFound)
		return
	}

	created, err := handler.taskRepo.Create(r.Context(), request.Task())
	if err != nil {
		writeError(w, r, err, taskNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (handler *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		writeError(w, r, err, taskNotFound)
		return
	}
	var patch models.TaskPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, r, err, taskNotFound)
		return
	}

	updated, err := handler.taskRepo.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, err, taskNotFound)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (handler *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		writeError(w, r, err, taskNotFound)
		return
	}
	if err := handler.taskRepo.Delete(r.Context(), id); err != nil {
		writeError(w, r, err, taskNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (handler *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		writeError(w, r, err, taskNotFound)
		return
	}
	result, err := handler.taskService.Complete(r.Context(), id, currentUserID(r))
	if err != nil {
		writeError(w, r, err, taskNotFound)
		return
	}
	writeJSON(w, http.StatusOK, result.Task)
}

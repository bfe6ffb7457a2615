package handlers

import (
	"net/http"

	"github.com/allenwoods/naive-coreterra/internal/models"
	"github.com/allenwoods/naive-coreterra/internal/repository"
)

const userNotFound = "User not found"

type UserHandler struct {
	userRepo repository.UserRepository
}

func NewUserHandler(userRepo repository.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

func (handler *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := handler.userRepo.FindByID(r.Context(), currentUserID(r))
	if err != nil {
		writeError(w, r, err, userNotFound)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (handler *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var patch models.UserPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, r, err, userNotFound)
		return
	}

	updated, err := handler.userRepo.Update(r.Context(), currentUserID(r), patch)
	if err != nil {
		writeError(w, r, err, userNotFound)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

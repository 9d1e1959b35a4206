package handlers

import (
	"net/http"

	"github.com/kaddachi/tasktrack-be/internal/auth"
	"github.com/kaddachi/tasktrack-be/internal/services"
	"github.com/rs/zerolog/log"
)

// UserHandler handles HTTP requests for user listing.
type UserHandler struct {
	service services.UserServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider) *UserHandler {
	return &UserHandler{service: service}
}

// List returns the caller's own record, or every user when the caller is
// staff.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFrom(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	users, err := h.service.List(r.Context(), caller)
	if err != nil {
		log.Error().Err(err).Str("user_id", caller.ID).Msg("Failed to list users")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, users)
}

package handler

import (
	"log/slog"
	"net/http"

	"taskdeck/internal/auth"
)

// UserHandler serves the caller's own profile.
type UserHandler struct {
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(logger *slog.Logger) *UserHandler {
	return &UserHandler{logger: logger}
}

// Me echoes the profile fields derived from the verified token claims.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	respondJSON(w, http.StatusOK, identity)
}

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"taskdeck/internal/auth"
	"taskdeck/internal/model"
	"taskdeck/internal/repository"
)

// PreferenceHandler serves the caller's theme preference.
type PreferenceHandler struct {
	repo   *repository.PreferenceRepository
	logger *slog.Logger
}

// NewPreferenceHandler creates a new PreferenceHandler.
func NewPreferenceHandler(repo *repository.PreferenceRepository, logger *slog.Logger) *PreferenceHandler {
	return &PreferenceHandler{repo: repo, logger: logger}
}

// Get returns the caller's preference, defaulting to the dark theme.
func (h *PreferenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := auth.FromContext(ctx)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	pref, err := h.repo.Get(ctx, identity.Subject)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get preference", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "failed to get preference")
		return
	}

	respondJSON(w, http.StatusOK, pref)
}

// Put upserts the caller's preference.
func (h *PreferenceHandler) Put(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := auth.FromContext(ctx)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req model.UpdatePreferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	pref, err := h.repo.Upsert(ctx, identity.Subject, req.Theme)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to save preference", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "failed to save preference")
		return
	}

	h.logger.InfoContext(ctx, "preference saved", slog.String("theme", string(req.Theme)))
	respondJSON(w, http.StatusOK, pref)
}

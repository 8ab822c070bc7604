package handlers

import (
	"net/http"

	"aurora/internal/config"
	"aurora/pkg/models"
)

// GetSettings returns the current durable config.
func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.Config.Get())
}

// UpdateSettings applies a partial update (host, storage_dir,
// default_model) and persists it.
func (h *Handlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch models.AppConfig
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, badRequest("invalid settings payload: %v", err))
		return
	}

	if patch.StorageDir != "" {
		resolved, err := config.ResolveStorageDir(patch.StorageDir)
		if err != nil {
			respondError(w, internalErr("resolve storage_dir", err))
			return
		}
		patch.StorageDir = resolved
	}

	// config_models is immutable via this endpoint; only
	// Manager.UpsertConfigModel may mutate it.
	patch.ConfigModels = nil

	updated, err := h.Config.Update(patch)
	if err != nil {
		respondError(w, internalErr("save settings", err))
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"aurora/internal/custommodels"
	"aurora/pkg/models"
)

// Templates returns the six built-in custom-model templates.
func (h *Handlers) Templates(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, custommodels.BuiltinTemplates())
}

// ListCustomModels returns every user-defined custom model.
func (h *Handlers) ListCustomModels(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.CustomModels.List())
}

// UpsertCustomModel creates or replaces a custom model config.
func (h *Handlers) UpsertCustomModel(w http.ResponseWriter, r *http.Request) {
	var cfg models.CustomModelConfig
	if err := decodeJSON(r, &cfg); err != nil {
		respondError(w, badRequest("invalid custom model payload: %v", err))
		return
	}
	if cfg.Name == "" {
		respondError(w, badRequest("custom model name is required"))
		return
	}
	if cfg.BaseModel == "" {
		respondError(w, badRequest("custom model base_model is required"))
		return
	}

	if err := h.CustomModels.Upsert(cfg); err != nil {
		respondError(w, internalErr("save custom model", err))
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// GetCustomModel returns one custom model by name.
func (h *Handlers) GetCustomModel(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	cfg, ok := h.CustomModels.Get(name)
	if !ok {
		respondError(w, notFound("custom model", name))
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// DeleteCustomModel removes a custom model by name.
func (h *Handlers) DeleteCustomModel(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	removed, err := h.CustomModels.Delete(name)
	if err != nil {
		respondError(w, internalErr("delete custom model", err))
		return
	}
	if !removed {
		respondError(w, notFound("custom model", name))
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

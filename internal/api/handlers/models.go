package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"aurora/internal/catalog"
)

// ListModels returns the merged catalog (config > registry > discovered).
func (h *Handlers) ListModels(w http.ResponseWriter, r *http.Request) {
	cfg := h.Config.Get()
	merged := catalog.Merge(cfg.ConfigModels, h.Catalog.RegistryEntries(), cfg.StorageDir)
	respondJSON(w, http.StatusOK, merged)
}

// DeleteModel removes a non-config model from the registry and/or disk.
func (h *Handlers) DeleteModel(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	cfg := h.Config.Get()

	result, err := h.Catalog.Delete(name, cfg.ConfigModels, cfg.StorageDir)
	if err != nil {
		switch err {
		case catalog.ErrConfigDeclared:
			respondError(w, badRequest("model %q is config-declared and cannot be removed", name))
		case catalog.ErrNotFound:
			respondError(w, notFound("model", name))
		default:
			respondError(w, internalErr("delete model", err))
		}
		return
	}

	h.Bus.Publish("MODEL", "deleted %s (%s)", name, result.PathUsed)
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": result.Removed})
}

// PopularModels returns the bundled popular-models YAML catalog.
func (h *Handlers) PopularModels(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.Catalog.PopularModels())
}

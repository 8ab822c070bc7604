package handlers

import (
	"context"
	"net/http"

	"aurora/pkg/models"
)

// Pull accepts a model pull request and dispatches it to the background
// worker, returning immediately.
func (h *Handlers) Pull(w http.ResponseWriter, r *http.Request) {
	var req models.PullRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, badRequest("invalid pull payload: %v", err))
		return
	}
	if req.Name == "" {
		respondError(w, badRequest("pull request name is required"))
		return
	}
	if req.RepoID == "" && req.DirectURL == "" {
		respondError(w, badRequest("pull request requires repo_id or direct_url"))
		return
	}

	// The transfer must outlive this request — net/http cancels
	// r.Context() the moment this handler returns, which is immediately
	// after this call. Start it on a detached, server-lifetime context.
	h.PullWorker.Start(context.Background(), req)

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "pulling", "name": req.Name})
}

// OnPullComplete is wired into the pull worker at server construction
// time: it upserts the registry entry and sets the new model as default.
func (h *Handlers) OnPullComplete(req models.PullRequest, path string) {
	source := models.SourcePulled
	if req.Source != "" {
		source = models.ModelSource(req.Source)
	}
	entry := models.ModelEntry{
		Name:     req.Name,
		Path:     path,
		RepoID:   req.RepoID,
		Filename: req.Filename,
		Source:   source,
	}
	if err := h.Catalog.Upsert(entry); err != nil {
		h.Bus.Publish("ERROR", "pull %s: failed to update registry: %v", req.Name, err)
		return
	}
	if err := h.Config.SetDefaultModel(req.Name); err != nil {
		h.Bus.Publish("ERROR", "pull %s: failed to set default model: %v", req.Name, err)
		return
	}
	h.Bus.Publish("MODEL", "registered %s at %s", req.Name, path)
}

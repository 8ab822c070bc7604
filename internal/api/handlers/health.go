package handlers

import (
	"net/http"

	"aurora/pkg/models"
)

// Health reports readiness: whether a default model is configured
// (server advertises inference as available once one is set — no real
// llama.cpp handshake is performed, since that backend is a stub).
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	cfg := h.Config.Get()
	respondJSON(w, http.StatusOK, models.HealthStatus{
		Status:       "ok",
		Llama:        cfg.DefaultModel != "",
		DefaultModel: cfg.DefaultModel,
	})
}

const banner = `<!DOCTYPE html>
<html><head><title>Aurora</title></head>
<body><h1>Aurora</h1><p>Local inference server is running.</p></body>
</html>`

// Banner serves the static HTML landing page at GET /.
func (h *Handlers) Banner(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(banner))
}

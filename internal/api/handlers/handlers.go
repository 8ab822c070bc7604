// Package handlers implements Aurora's HTTP handlers: settings, model
// catalog, pulls, chat/generate, logs, sessions, and memory.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"aurora/internal/apierrors"
	"aurora/internal/catalog"
	"aurora/internal/config"
	"aurora/internal/custommodels"
	"aurora/internal/engine"
	"aurora/internal/logbus"
	"aurora/internal/pull"
	"aurora/internal/sessionstore"
)

// Handlers wires every dependency Aurora's HTTP surface needs.
type Handlers struct {
	Config       *config.Manager
	Catalog      *catalog.Catalog
	CustomModels *custommodels.Store
	PullWorker   *pull.Worker
	Engine       *engine.Holder
	Sessions     *sessionstore.Store
	Bus          *logbus.Bus
	Version      string
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("handlers: failed to encode response")
	}
}

func respondError(w http.ResponseWriter, err error) {
	status := apierrors.StatusCode(err)
	respondJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("missing request body")
	}
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

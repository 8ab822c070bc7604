package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"aurora/internal/logbus"
)

// PostLog forwards a client-supplied log line onto the bus.
func (h *Handlers) PostLog(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, badRequest("invalid log payload: %v", err))
		return
	}
	h.Bus.Publish(logbus.CategoryInfo, "%s", body.Message)
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Logs returns the last N ring-buffer entries.
func (h *Handlers) Logs(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	respondJSON(w, http.StatusOK, h.Bus.Tail(limit))
}

// LogsStream serves a live feed of log entries as Server-Sent Events.
func (h *Handlers) LogsStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, internalErr("streaming unsupported", nil))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ch, cancel := h.Bus.Subscribe()
	defer cancel()

	flusher.Flush()

	for {
		select {
		case entry, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", entry.String())
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

package handlers

import "net/http"

const defaultMemoryLimit = 50

// ListMemory returns recent episodic memory entries, most recent first.
func (h *Handlers) ListMemory(w http.ResponseWriter, r *http.Request) {
	mems, err := h.Sessions.GetRecentMemories(r.Context(), defaultMemoryLimit)
	if err != nil {
		respondError(w, internalErr("list memory", err))
		return
	}
	respondJSON(w, http.StatusOK, mems)
}

// RecordMemory appends an episodic memory entry.
func (h *Handlers) RecordMemory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EventType string `json:"event_type"`
		Summary   string `json:"summary"`
		SessionID string `json:"session_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, badRequest("invalid memory payload: %v", err))
		return
	}
	if req.Summary == "" {
		respondError(w, badRequest("summary is required"))
		return
	}
	if req.EventType == "" {
		req.EventType = "note"
	}

	mem, err := h.Sessions.RecordMemory(r.Context(), req.EventType, req.Summary, req.SessionID)
	if err != nil {
		respondError(w, internalErr("record memory", err))
		return
	}
	respondJSON(w, http.StatusOK, mem)
}

// ClearMemory deletes every episodic memory entry.
func (h *Handlers) ClearMemory(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.ClearMemories(r.Context()); err != nil {
		respondError(w, internalErr("clear memory", err))
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}

package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"aurora/pkg/models"
)

const (
	defaultContextMessages = 20
	defaultContextMemories = 10
)

// ListSessions returns every session, most recently updated first.
func (h *Handlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.Sessions.ListSessions(r.Context())
	if err != nil {
		respondError(w, internalErr("list sessions", err))
		return
	}
	respondJSON(w, http.StatusOK, sessions)
}

// CreateSession creates a new session.
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Model string `json:"model"`
		Title string `json:"title"`
	}
	// Body is optional — an empty session is valid.
	_ = decodeJSON(r, &req)

	sess, err := h.Sessions.CreateSession(r.Context(), req.Model, req.Title)
	if err != nil {
		respondError(w, internalErr("create session", err))
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

// GetSession returns a session's context: the row, recent messages, and
// recent global memories.
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, err := h.Sessions.GetSessionContext(r.Context(), id, defaultContextMessages, defaultContextMemories)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, notFound("session", id))
			return
		}
		respondError(w, internalErr("get session", err))
		return
	}
	respondJSON(w, http.StatusOK, ctx)
}

// DeleteSession removes a session and its messages.
func (h *Handlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Sessions.DeleteSession(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, notFound("session", id))
			return
		}
		respondError(w, internalErr("delete session", err))
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// ClearSessions removes every session and message.
func (h *Handlers) ClearSessions(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.ClearAllSessions(r.Context()); err != nil {
		respondError(w, internalErr("clear sessions", err))
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}

// ListMessages returns every message for a session.
func (h *Handlers) ListMessages(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	messages, err := h.Sessions.GetMessages(r.Context(), id)
	if err != nil {
		respondError(w, internalErr("list messages", err))
		return
	}
	respondJSON(w, http.StatusOK, messages)
}

// AppendMessage adds a message to a session.
func (h *Handlers) AppendMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req models.ChatMessage
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, badRequest("invalid message payload: %v", err))
		return
	}
	if req.Role == "" || req.Content == "" {
		respondError(w, badRequest("role and content are required"))
		return
	}

	msg, err := h.Sessions.AddMessage(r.Context(), id, req.Role, req.Content)
	if err != nil {
		respondError(w, internalErr("append message", err))
		return
	}
	respondJSON(w, http.StatusOK, msg)
}

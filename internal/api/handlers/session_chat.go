package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"aurora/internal/engine"
	"aurora/pkg/models"
)

const autoTitleLength = 50

// SessionChat resolves (or creates) a session, optionally persists the
// turn, auto-titles on the first message, updates the session's model,
// and returns the current message count.
func (h *Handlers) SessionChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, badRequest("invalid chat payload: %v", err))
		return
	}
	if len(req.Messages) == 0 {
		respondError(w, badRequest("messages is required"))
		return
	}

	persist := true
	if req.Persist != nil {
		persist = *req.Persist
	}

	cfg := h.Config.Get()
	modelName := resolveModelName(cfg, req.Model)
	if modelName == "" {
		respondError(w, badRequest("no model specified and no default_model configured"))
		return
	}

	ctx := r.Context()
	sess, isNew, err := h.resolveSession(ctx, req.SessionID, modelName)
	if err != nil {
		respondError(w, internalErr("resolve session", err))
		return
	}

	userMsg := req.Messages[len(req.Messages)-1]

	if persist {
		if _, err := h.Sessions.AddMessage(ctx, sess.ID, userMsg.Role, userMsg.Content); err != nil {
			respondError(w, internalErr("persist user message", err))
			return
		}
		if isNew || sess.Title == "" {
			title := userMsg.Content
			if len(title) > autoTitleLength {
				title = title[:autoTitleLength]
			}
			if err := h.Sessions.UpdateSessionTitle(ctx, sess.ID, title); err != nil {
				respondError(w, internalErr("auto-title session", err))
				return
			}
		}
	}

	if sess.Model != modelName {
		if err := h.Sessions.UpdateSessionModel(ctx, sess.ID, modelName); err != nil {
			respondError(w, internalErr("update session model", err))
			return
		}
	}

	eng, err := h.Engine.Ensure(ctx, cfg.StorageDir, modelName)
	if err != nil {
		respondError(w, notFound("model", modelName))
		return
	}
	if err := h.Config.SetDefaultModel(modelName); err != nil {
		respondError(w, internalErr("persist default model", err))
		return
	}

	history, err := h.Sessions.GetRecentMessages(ctx, sess.ID, defaultContextMessages)
	if err != nil {
		respondError(w, internalErr("load session history", err))
		return
	}
	prompt := engine.AssembleChatPrompt(toEngineMessages(sessionHistoryToChat(history, req.Messages, persist)))

	reply, err := eng.Generate(ctx, prompt, 1024)
	if err != nil {
		respondError(w, internalErr("generate", err))
		return
	}

	messageCount := 0
	if persist {
		if _, err := h.Sessions.AddMessage(ctx, sess.ID, "assistant", reply); err != nil {
			respondError(w, internalErr("persist assistant message", err))
			return
		}
	}
	updated, err := h.Sessions.GetSession(ctx, sess.ID)
	if err != nil {
		respondError(w, internalErr("reload session", err))
		return
	}
	messageCount = updated.MessageCount

	h.Bus.Publish("MODEL", "session chat on %s (session=%s)", modelName, sess.ID)
	respondJSON(w, http.StatusOK, models.SessionChatResponse{
		Model:        modelName,
		Message:      models.ChatResponseMessage{Role: "assistant", Content: reply},
		SessionID:    sess.ID,
		MessageCount: messageCount,
	})
}

// resolveSession returns the session for id, creating a new one if id
// is empty or unknown. The caller-supplied id is best-effort per the
// spec's documented open question.
func (h *Handlers) resolveSession(ctx context.Context, id, model string) (models.Session, bool, error) {
	if id != "" {
		sess, err := h.Sessions.GetSession(ctx, id)
		if err == nil {
			return sess, false, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return models.Session{}, false, err
		}
	}
	sess, err := h.Sessions.CreateSession(ctx, model, "")
	return sess, true, err
}

// sessionHistoryToChat picks the messages for the prompt. With persist
// true it returns the persisted history alone (which already holds the
// request's last message; earlier request messages are not included).
// With persist false it returns the request's messages unchanged.
func sessionHistoryToChat(history []models.SessionMessage, reqMessages []models.ChatMessage, persist bool) []models.ChatMessage {
	if !persist {
		return reqMessages
	}
	out := make([]models.ChatMessage, len(history))
	for i, m := range history {
		out[i] = models.ChatMessage{Role: m.Role, Content: m.Content}
	}
	return out
}

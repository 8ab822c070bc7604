package handlers

import (
	"net/http"

	"aurora/internal/engine"
	"aurora/pkg/models"
)

func toEngineMessages(msgs []models.ChatMessage) []engine.ChatMessage {
	out := make([]engine.ChatMessage, len(msgs))
	for i, m := range msgs {
		out[i] = engine.ChatMessage{Role: m.Role, Content: m.Content}
	}
	return out
}

func resolveModelName(cfg models.AppConfig, requested string) string {
	if requested != "" {
		return requested
	}
	return cfg.DefaultModel
}

// Chat serves stateless chat completion.
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, badRequest("invalid chat payload: %v", err))
		return
	}
	if len(req.Messages) == 0 {
		respondError(w, badRequest("messages is required"))
		return
	}

	cfg := h.Config.Get()
	modelName := resolveModelName(cfg, req.Model)
	if modelName == "" {
		respondError(w, badRequest("no model specified and no default_model configured"))
		return
	}

	eng, err := h.Engine.Ensure(r.Context(), cfg.StorageDir, modelName)
	if err != nil {
		respondError(w, notFound("model", modelName))
		return
	}

	// Per the documented open-question behavior: every chat request
	// unconditionally sets config's default_model to the resolved name.
	if err := h.Config.SetDefaultModel(modelName); err != nil {
		respondError(w, internalErr("persist default model", err))
		return
	}

	prompt := engine.AssembleChatPrompt(toEngineMessages(req.Messages))
	reply, err := eng.Generate(r.Context(), prompt, 1024)
	if err != nil {
		respondError(w, internalErr("generate", err))
		return
	}

	h.Bus.Publish("MODEL", "chat on %s", modelName)
	respondJSON(w, http.StatusOK, models.ChatResponse{
		Model:   modelName,
		Message: models.ChatResponseMessage{Role: "assistant", Content: reply},
	})
}

// Generate serves raw (non-chat) completion: the prompt passes through
// unchanged, with no role framing.
func (h *Handlers) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, badRequest("invalid generate payload: %v", err))
		return
	}
	if req.Prompt == "" {
		respondError(w, badRequest("prompt is required"))
		return
	}

	cfg := h.Config.Get()
	modelName := resolveModelName(cfg, req.Model)
	if modelName == "" {
		respondError(w, badRequest("no model specified and no default_model configured"))
		return
	}

	eng, err := h.Engine.Ensure(r.Context(), cfg.StorageDir, modelName)
	if err != nil {
		respondError(w, notFound("model", modelName))
		return
	}

	if err := h.Config.SetDefaultModel(modelName); err != nil {
		respondError(w, internalErr("persist default model", err))
		return
	}

	text, err := eng.Generate(r.Context(), req.Prompt, 1024)
	if err != nil {
		respondError(w, internalErr("generate", err))
		return
	}

	h.Bus.Publish("MODEL", "generate on %s", modelName)
	respondJSON(w, http.StatusOK, models.GenerateResponse{
		Model:    modelName,
		Response: text,
	})
}

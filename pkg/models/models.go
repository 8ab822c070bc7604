// Package models holds the data types shared across Aurora's HTTP surface
// and its storage layers. They are plain structs with json tags; no
// behavior lives here.
package models

import "time"

// ── Config ───────────────────────────────────────────────────

// AppConfig is the server's durable configuration. storage_dir is always
// resolved to a writable absolute path before the config is used.
type AppConfig struct {
	Host          string            `json:"host"`
	Port          int               `json:"port"`
	StorageDir    string            `json:"storage_dir"`
	DefaultModel  string            `json:"default_model,omitempty"`
	ConfigModels  map[string]string `json:"config_models,omitempty"` // name -> path
}

// ── Catalog ──────────────────────────────────────────────────

// ModelSource identifies where a catalog entry came from. Precedence when
// merging is config > registry > discovered.
type ModelSource string

const (
	SourceConfig     ModelSource = "config"
	SourceRegistry   ModelSource = "registry"
	SourceDiscovered ModelSource = "discovered"
	SourcePulled     ModelSource = "pulled"
)

// ModelEntry is a row in the on-disk registry (models.json) or a
// config-declared model surfaced with the same shape.
type ModelEntry struct {
	Name     string      `json:"name"`
	Path     string      `json:"path"`
	RepoID   string      `json:"repo_id,omitempty"`
	Filename string      `json:"filename,omitempty"`
	Source   ModelSource `json:"source,omitempty"`
}

// CatalogModel is the shape returned by GET /api/models: a ModelEntry with
// its resolved source, merged from config, registry, and disk discovery.
type CatalogModel struct {
	Name   string      `json:"name"`
	Path   string      `json:"path"`
	RepoID string      `json:"repo_id,omitempty"`
	Source ModelSource `json:"source"`
}

// ModelParameters are the generation defaults attached to a custom model.
type ModelParameters struct {
	Temperature    float64  `json:"temperature"`
	TopP           float64  `json:"top_p"`
	TopK           *int     `json:"top_k,omitempty"`
	RepeatPenalty  *float64 `json:"repeat_penalty,omitempty"`
	ContextLength  *int     `json:"context_length,omitempty"`
	MaxTokens      int      `json:"max_tokens"`
	StopSequences  []string `json:"stop_sequences,omitempty"`
}

// CustomModelConfig is a user-defined persona layered on top of a base
// GGUF model: a system prompt, an optional prompt template, and parameter
// defaults.
type CustomModelConfig struct {
	Name          string          `json:"name"`
	BaseModel     string          `json:"base_model"`
	SystemPrompt  string          `json:"system_prompt,omitempty"`
	Template      string          `json:"template,omitempty"` // contains {{prompt}}
	Parameters    ModelParameters `json:"parameters"`
	Description   string          `json:"description,omitempty"`
}

// ModelTemplate is one of the six built-in custom-model starting points
// served by GET /api/templates.
type ModelTemplate struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	SystemPrompt string          `json:"system_prompt"`
	Template     string          `json:"template"`
	Parameters   ModelParameters `json:"parameters"`
}

// PopularModel is one entry in the bundled popular-models catalog served
// by GET /api/popular-models.
type PopularModel struct {
	Name        string `yaml:"name" json:"name"`
	RepoID      string `yaml:"repo_id" json:"repo_id"`
	Filename    string `yaml:"filename" json:"filename"`
	Description string `yaml:"description" json:"description"`
	SizeGB      float64 `yaml:"size_gb" json:"size_gb"`
}

// ── Pull ─────────────────────────────────────────────────────

// PullRequest describes a model to fetch from a remote repository.
type PullRequest struct {
	Name      string `json:"name"`
	RepoID    string `json:"repo_id"`
	Filename  string `json:"filename"`
	Subfolder string `json:"subfolder,omitempty"`
	DirectURL string `json:"direct_url,omitempty"`
	Source    string `json:"source,omitempty"`
}

// ── Chat / Generate ──────────────────────────────────────────

// ChatMessage is one turn in a chat request or stored session history.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /api/chat and /api/chat/session.
type ChatRequest struct {
	Model     string        `json:"model,omitempty"`
	Messages  []ChatMessage `json:"messages"`
	SessionID string        `json:"session_id,omitempty"`
	Persist   *bool         `json:"persist,omitempty"`
}

// ChatResponseMessage wraps the assistant's reply.
type ChatResponseMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResponse is returned by POST /api/chat.
type ChatResponse struct {
	Model   string               `json:"model"`
	Message ChatResponseMessage  `json:"message"`
}

// SessionChatResponse is returned by POST /api/chat/session.
type SessionChatResponse struct {
	Model        string               `json:"model"`
	Message      ChatResponseMessage  `json:"message"`
	SessionID    string               `json:"session_id"`
	MessageCount int                  `json:"message_count"`
}

// GenerateRequest is the body of POST /api/generate.
type GenerateRequest struct {
	Model  string `json:"model,omitempty"`
	Prompt string `json:"prompt"`
}

// GenerateResponse is returned by POST /api/generate.
type GenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
}

// ── Sessions & Memory ────────────────────────────────────────

// Session is a durable conversation thread.
type Session struct {
	ID           string    `json:"id" db:"id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
	Model        string    `json:"model,omitempty" db:"model"`
	Title        string    `json:"title,omitempty" db:"title"`
	MessageCount int       `json:"message_count" db:"message_count"`
}

// SessionMessage is one append-only row owned by a Session.
type SessionMessage struct {
	ID        int64     `json:"id" db:"id"`
	SessionID string    `json:"session_id" db:"session_id"`
	Role      string    `json:"role" db:"role"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Metadata  string    `json:"metadata,omitempty" db:"metadata"`
}

// EpisodicMemory is an append-only, cross-session event log entry.
type EpisodicMemory struct {
	ID        int64     `json:"id" db:"id"`
	EventType string    `json:"event_type" db:"event_type"`
	Summary   string    `json:"summary" db:"summary"`
	SessionID string    `json:"session_id,omitempty" db:"session_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Metadata  string    `json:"metadata,omitempty" db:"metadata"`
}

// SessionContext is the snapshot returned by GET /api/sessions/:id — the
// session row plus its recent messages and global recent memories.
type SessionContext struct {
	Session  Session          `json:"session"`
	Messages []SessionMessage `json:"messages"`
	Memories []EpisodicMemory `json:"memories"`
}

// ── Health ───────────────────────────────────────────────────

// HealthStatus is returned by GET /health.
type HealthStatus struct {
	Status       string `json:"status"`
	Llama        bool   `json:"llama"`
	DefaultModel string `json:"default_model,omitempty"`
}

// Package engine manages Aurora's resident inference backend: the
// loaded model held in memory and used to service chat/generate
// requests. The actual model-loading and token-generation capability is
// an opaque, swappable Backend — llama.cpp bindings are outside this
// module's scope (see StubBackend).
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// Engine is a loaded model ready to generate text.
type Engine interface {
	// Generate produces a completion for prompt, up to maxTokens tokens.
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
	// Close releases any resources held by the engine.
	Close() error
}

// Backend loads models from disk into a resident Engine. Concrete
// backends (llama.cpp, a remote inference process, a test stub) satisfy
// this interface; Holder is backend-agnostic.
type Backend interface {
	Load(ctx context.Context, path string) (Engine, error)
}

// Holder keeps at most one resident Engine loaded at a time, swapping it
// out when a different model is requested. The backend itself is
// initialized exactly once per process via sync.Once, mirroring the
// guarantee that only one inference runtime is ever active.
type Holder struct {
	backendOnce sync.Once
	backend     Backend
	newBackend  func() Backend

	mu          sync.RWMutex
	currentName string
	currentPath string
	engine      Engine
}

// NewHolder creates a Holder that lazily constructs its backend via
// newBackend the first time a model is loaded.
func NewHolder(newBackend func() Backend) *Holder {
	return &Holder{newBackend: newBackend}
}

func (h *Holder) ensureBackend() Backend {
	h.backendOnce.Do(func() {
		h.backend = h.newBackend()
	})
	return h.backend
}

// Ensure loads name (resolved against storageDir) as the resident engine
// if it is not already loaded. If a different model is currently
// resident, it is closed and replaced.
func (h *Holder) Ensure(ctx context.Context, storageDir, name string) (Engine, error) {
	h.mu.RLock()
	if h.currentName == name && h.engine != nil {
		e := h.engine
		h.mu.RUnlock()
		return e, nil
	}
	h.mu.RUnlock()

	path, err := ResolvePath(storageDir, name)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.currentName == name && h.engine != nil {
		return h.engine, nil
	}

	if h.engine != nil {
		if err := h.engine.Close(); err != nil {
			log.Warn().Err(err).Str("model", h.currentName).Msg("engine: error closing previous backend")
		}
		h.engine = nil
	}

	backend := h.ensureBackend()
	eng, err := backend.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load model %q: %w", name, err)
	}

	h.currentName = name
	h.currentPath = path
	h.engine = eng
	return eng, nil
}

// Current returns the name of the currently resident model, or "" if
// none is loaded.
func (h *Holder) Current() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.currentName
}

// Close releases the resident engine, if any.
func (h *Holder) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.engine == nil {
		return nil
	}
	err := h.engine.Close()
	h.engine = nil
	h.currentName = ""
	return err
}

// ResolvePath resolves a model name to a concrete file path, in order:
// an absolute or relative path ending in .gguf used as-is; a directory
// storageDir/<name>/ preferring a first-shard file (*-00001-of-*),
// otherwise its lexicographically first .gguf; falling back to
// storageDir/<name>.gguf.
func ResolvePath(storageDir, name string) (string, error) {
	if strings.HasSuffix(name, ".gguf") {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}

	dir := filepath.Join(storageDir, name)
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return "", fmt.Errorf("read model dir %q: %w", dir, err)
		}
		var ggufs []string
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".gguf") {
				ggufs = append(ggufs, e.Name())
			}
		}
		if len(ggufs) == 0 {
			return "", fmt.Errorf("no .gguf files in %q", dir)
		}
		return filepath.Join(dir, firstShardOrFirst(ggufs)), nil
	}

	flat := filepath.Join(storageDir, name+".gguf")
	if _, err := os.Stat(flat); err == nil {
		return flat, nil
	}

	return "", fmt.Errorf("model %q not found under %q", name, storageDir)
}

func firstShardOrFirst(names []string) string {
	best := names[0]
	for _, n := range names {
		if strings.Contains(n, "-00001-of-") {
			return n
		}
		if n < best {
			best = n
		}
	}
	return best
}

// AssembleChatPrompt renders a chat message history into the flat
// prompt format the backend consumes: one "[ROLE]\n<content>\n" block
// per message, followed by a trailing "[ASSISTANT]\n" marker.
func AssembleChatPrompt(messages []ChatMessage) string {
	var b strings.Builder
	for _, m := range messages {
		b.WriteString("[")
		b.WriteString(normalizeRole(m.Role))
		b.WriteString("]\n")
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	b.WriteString("[ASSISTANT]\n")
	return b.String()
}

// normalizeRole maps role to one of SYSTEM/ASSISTANT/USER, defaulting to
// USER for anything else.
func normalizeRole(role string) string {
	switch strings.ToLower(role) {
	case "system":
		return "SYSTEM"
	case "assistant":
		return "ASSISTANT"
	default:
		return "USER"
	}
}

// ChatMessage mirrors models.ChatMessage to avoid an import cycle; the
// API layer converts between the two.
type ChatMessage struct {
	Role    string
	Content string
}

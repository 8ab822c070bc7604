package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestResolvePathFlatFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "llama.gguf")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := ResolvePath(dir, "llama")
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if got != path {
		t.Errorf("got %q, want %q", got, path)
	}
}

func TestResolvePathDirectoryPrefersFirstShard(t *testing.T) {
	dir := t.TempDir()
	modelDir := filepath.Join(dir, "big")
	if err := os.MkdirAll(modelDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, name := range []string{"big-00002-of-00002.gguf", "big-00001-of-00002.gguf"} {
		if err := os.WriteFile(filepath.Join(modelDir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	got, err := ResolvePath(dir, "big")
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	want := filepath.Join(modelDir, "big-00001-of-00002.gguf")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolvePathNotFound(t *testing.T) {
	dir := t.TempDir()
	if _, err := ResolvePath(dir, "missing"); err == nil {
		t.Fatal("expected error for missing model")
	}
}

func TestHolderEnsureLoadsAndCaches(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "llama.gguf"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	loads := 0
	h := NewHolder(func() Backend {
		return loadCountingBackend(&loads)
	})

	ctx := context.Background()
	if _, err := h.Ensure(ctx, dir, "llama"); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if _, err := h.Ensure(ctx, dir, "llama"); err != nil {
		t.Fatalf("Ensure (cached): %v", err)
	}
	if loads != 1 {
		t.Errorf("loads = %d, want 1 (second Ensure should hit cache)", loads)
	}
	if h.Current() != "llama" {
		t.Errorf("Current() = %q, want llama", h.Current())
	}
}

func TestHolderEnsureSwapsOnDifferentModel(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.gguf", "b.gguf"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	loads := 0
	h := NewHolder(func() Backend {
		return loadCountingBackend(&loads)
	})

	ctx := context.Background()
	if _, err := h.Ensure(ctx, dir, "a"); err != nil {
		t.Fatalf("Ensure a: %v", err)
	}
	if _, err := h.Ensure(ctx, dir, "b"); err != nil {
		t.Fatalf("Ensure b: %v", err)
	}
	if loads != 2 {
		t.Errorf("loads = %d, want 2", loads)
	}
	if h.Current() != "b" {
		t.Errorf("Current() = %q, want b", h.Current())
	}
}

func TestAssembleChatPrompt(t *testing.T) {
	got := AssembleChatPrompt([]ChatMessage{
		{Role: "system", Content: "be terse"},
		{Role: "user", Content: "hi"},
	})
	want := "[SYSTEM]\nbe terse\n[USER]\nhi\n[ASSISTANT]\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestAssembleChatPromptUnknownRoleDefaultsToUser(t *testing.T) {
	got := AssembleChatPrompt([]ChatMessage{
		{Role: "tool", Content: "result"},
	})
	want := "[USER]\nresult\n[ASSISTANT]\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// loadCountingBackend returns a Backend that increments *loads on every
// Load call and otherwise behaves like StubBackend.
func loadCountingBackend(loads *int) Backend {
	return &countingBackend{loads: loads}
}

type countingBackend struct {
	loads *int
}

func (b *countingBackend) Load(ctx context.Context, path string) (Engine, error) {
	*b.loads++
	return &stubEngine{path: path}, nil
}

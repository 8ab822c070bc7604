package custommodels

import (
	"testing"

	"aurora/pkg/models"
)

func TestUpsertGetDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	cfg := models.CustomModelConfig{Name: "grumpy-coder", BaseModel: "llama", SystemPrompt: "be terse"}
	if err := s.Upsert(cfg); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, ok := s.Get("grumpy-coder")
	if !ok {
		t.Fatal("expected entry to be found")
	}
	if got.SystemPrompt != "be terse" {
		t.Errorf("system prompt = %q", got.SystemPrompt)
	}

	removed, err := s.Delete("grumpy-coder")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !removed {
		t.Fatal("expected Delete to report removal")
	}
	if _, ok := s.Get("grumpy-coder"); ok {
		t.Error("expected entry to be gone")
	}
}

func TestDeleteUnknownReturnsFalse(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	removed, err := s.Delete("nope")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if removed {
		t.Error("expected no removal for unknown name")
	}
}

func TestBuiltinTemplateIDs(t *testing.T) {
	want := []string{"assistant", "coder", "writer", "analyst", "translator", "chat"}
	got := BuiltinTemplates()
	if len(got) != len(want) {
		t.Fatalf("got %d templates, want %d", len(got), len(want))
	}
	for i, tpl := range got {
		if tpl.ID != want[i] {
			t.Errorf("template[%d].ID = %q, want %q", i, tpl.ID, want[i])
		}
	}
}

package config

import (
	"path/filepath"
	"testing"

	"aurora/pkg/models"
)

func TestManagerUpdatePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	m := NewManager(path)

	updated, err := m.Update(models.AppConfig{DefaultModel: "mistral-7b"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.DefaultModel != "mistral-7b" {
		t.Errorf("DefaultModel = %q, want mistral-7b", updated.DefaultModel)
	}

	reloaded := NewManager(path)
	if got := reloaded.Get().DefaultModel; got != "mistral-7b" {
		t.Errorf("reloaded DefaultModel = %q, want mistral-7b", got)
	}
}

func TestManagerSetDefaultModelIsUnconditional(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	m := NewManager(path)

	if err := m.SetDefaultModel("phi-3-mini"); err != nil {
		t.Fatalf("SetDefaultModel: %v", err)
	}
	if got := m.Get().DefaultModel; got != "phi-3-mini" {
		t.Errorf("DefaultModel = %q, want phi-3-mini", got)
	}

	// Calling again with the same resolved name still persists (no
	// conditional skip on "no change").
	if err := m.SetDefaultModel("phi-3-mini"); err != nil {
		t.Fatalf("SetDefaultModel (repeat): %v", err)
	}
	reloaded := NewManager(path)
	if got := reloaded.Get().DefaultModel; got != "phi-3-mini" {
		t.Errorf("reloaded DefaultModel = %q, want phi-3-mini", got)
	}
}

func TestManagerUpsertConfigModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	m := NewManager(path)

	if err := m.UpsertConfigModel("custom", "/models/custom.gguf"); err != nil {
		t.Fatalf("UpsertConfigModel: %v", err)
	}
	got := m.Get().ConfigModels
	if got["custom"] != "/models/custom.gguf" {
		t.Errorf("ConfigModels = %+v, missing custom entry", got)
	}
}

package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"aurora/pkg/models"
)

func newTestCatalog(t *testing.T) (*Catalog, string) {
	t.Helper()
	dir := t.TempDir()
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, dir
}

func TestUpsertAndLookup(t *testing.T) {
	c, _ := newTestCatalog(t)

	entry := models.ModelEntry{Name: "llama", Path: "/models/llama.gguf", Source: models.SourceRegistry}
	if err := c.Upsert(entry); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, ok := c.Lookup("llama")
	if !ok {
		t.Fatal("expected entry to be found")
	}
	if got.Path != entry.Path {
		t.Errorf("path = %q, want %q", got.Path, entry.Path)
	}
}

func TestUpsertPersistsAcrossReload(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Upsert(models.ModelEntry{Name: "mistral", Path: "/models/mistral.gguf"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	reloaded, err := New(dir)
	if err != nil {
		t.Fatalf("reload New: %v", err)
	}
	if _, ok := reloaded.Lookup("mistral"); !ok {
		t.Fatal("expected entry to survive reload")
	}
}

func TestDeleteRefusesPathOutsideStorageDir(t *testing.T) {
	c, dir := newTestCatalog(t)

	outside := t.TempDir()
	escapePath := filepath.Join(outside, "secret.gguf")
	if err := os.WriteFile(escapePath, []byte("x"), 0o644); err != nil {
		t.Fatalf("write escape file: %v", err)
	}

	if err := c.Upsert(models.ModelEntry{Name: "evil", Path: escapePath}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	_, err := c.Delete("evil", nil, dir)
	if err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound (no fallback candidate exists)", err)
	}
	if _, ok := c.Lookup("evil"); !ok {
		t.Error("expected registry row to survive — escaping path is not enough evidence to drop it")
	}
	if _, err := os.Stat(escapePath); err != nil {
		t.Errorf("expected escape file to survive, stat err: %v", err)
	}
}

func TestDeleteRemovesWithinStorageDir(t *testing.T) {
	c, dir := newTestCatalog(t)

	modelPath := filepath.Join(dir, "llama.gguf")
	if err := os.WriteFile(modelPath, []byte("x"), 0o644); err != nil {
		t.Fatalf("write model file: %v", err)
	}
	if err := c.Upsert(models.ModelEntry{Name: "llama", Path: modelPath}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	result, err := c.Delete("llama", nil, dir)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !result.Removed {
		t.Fatal("expected removal")
	}
	if _, ok := c.Lookup("llama"); ok {
		t.Error("expected registry row to be removed")
	}
	if _, err := os.Stat(modelPath); !os.IsNotExist(err) {
		t.Errorf("expected model file to be removed, stat err: %v", err)
	}
}

func TestDeleteRefusesConfigDeclared(t *testing.T) {
	c, dir := newTestCatalog(t)
	configModels := map[string]string{"pinned": "/opt/pinned.gguf"}

	_, err := c.Delete("pinned", configModels, dir)
	if err != ErrConfigDeclared {
		t.Fatalf("err = %v, want ErrConfigDeclared", err)
	}
}

func TestDeleteUnknownModel(t *testing.T) {
	c, dir := newTestCatalog(t)
	if _, err := c.Delete("nonexistent", nil, dir); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPopularModelsBundled(t *testing.T) {
	c, _ := newTestCatalog(t)
	list := c.PopularModels()
	if len(list) == 0 {
		t.Fatal("expected non-empty bundled popular models list")
	}
	for _, m := range list {
		if m.Name == "" || m.RepoID == "" || m.Filename == "" {
			t.Errorf("popular model entry missing required field: %+v", m)
		}
	}
}

package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"aurora/internal/api/handlers"
	"aurora/internal/catalog"
	"aurora/internal/config"
	"aurora/internal/custommodels"
	"aurora/internal/engine"
	"aurora/internal/logbus"
	"aurora/internal/pull"
	"aurora/internal/sessionstore"
	"aurora/pkg/models"
)

func newTestRouter(t *testing.T) (http.Handler, *handlers.Handlers) {
	t.Helper()
	dir := t.TempDir()

	cfgPath := filepath.Join(dir, "config.json")
	cfgManager := config.NewManager(cfgPath)

	storageDir := filepath.Join(dir, "storage")
	if _, err := cfgManager.Update(models.AppConfig{StorageDir: storageDir}); err != nil {
		t.Fatalf("set storage_dir: %v", err)
	}
	cat, err := catalog.New(storageDir)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	cm, err := custommodels.New(storageDir)
	if err != nil {
		t.Fatalf("custommodels.New: %v", err)
	}
	sessDB := filepath.Join(dir, "sessions.db")
	sessions, err := sessionstore.Open(sessDB)
	if err != nil {
		t.Fatalf("sessionstore.Open: %v", err)
	}
	t.Cleanup(func() { sessions.Close() })

	bus := logbus.New()
	holder := engine.NewHolder(engine.NewStubBackend)

	h := &handlers.Handlers{
		Config:       cfgManager,
		Catalog:      cat,
		CustomModels: cm,
		Engine:       holder,
		Sessions:     sessions,
		Bus:          bus,
		Version:      "test",
	}
	h.PullWorker = pull.NewWorker(bus, storageDir, nil)

	return NewRouter(h), h
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	router, _ := newTestRouter(t)

	body, _ := json.Marshal(map[string]any{"default_model": "llama"})
	req := httptest.NewRequest(http.MethodPost, "/api/settings", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST settings status = %d, body=%s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET settings status = %d", rec.Code)
	}
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["default_model"] != "llama" {
		t.Errorf("default_model = %v, want llama", got["default_model"])
	}
}

func TestSettingsCannotMutateConfigModels(t *testing.T) {
	router, h := newTestRouter(t)

	if err := h.Config.UpsertConfigModel("fixed", "/models/fixed.gguf"); err != nil {
		t.Fatalf("UpsertConfigModel: %v", err)
	}

	body, _ := json.Marshal(map[string]any{
		"config_models": map[string]string{"fixed": "/anything", "new": "/new.gguf"},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/settings", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST settings status = %d, body=%s", rec.Code, rec.Body.String())
	}

	got := h.Config.Get().ConfigModels
	if got["fixed"] != "/models/fixed.gguf" {
		t.Errorf("config_models[fixed] = %q, want unchanged", got["fixed"])
	}
	if _, ok := got["new"]; ok {
		t.Errorf("config_models[new] should not have been added via settings endpoint")
	}
}

func TestModelsListEmpty(t *testing.T) {
	router, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/models", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestPopularModelsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/popular-models", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var list []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(list) == 0 {
		t.Error("expected non-empty popular models list")
	}
}

func TestTemplatesEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/templates", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSessionCreateAndChat(t *testing.T) {
	router, h := newTestRouter(t)

	// The chat needs a loadable default model under the storage dir.
	storageDir := h.Config.Get().StorageDir
	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		t.Fatalf("mkdir storage: %v", err)
	}
	if err := os.WriteFile(filepath.Join(storageDir, "llama.gguf"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write model file: %v", err)
	}
	if err := h.Config.SetDefaultModel("llama"); err != nil {
		t.Fatalf("SetDefaultModel: %v", err)
	}

	createBody, _ := json.Marshal(map[string]string{"model": "llama"})
	req := httptest.NewRequest(http.MethodPost, "/api/sessions", bytes.NewReader(createBody))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("create session status = %d body=%s", rec.Code, rec.Body.String())
	}
	var sess map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatalf("unmarshal session: %v", err)
	}
	sessionID, _ := sess["id"].(string)
	if sessionID == "" {
		t.Fatal("expected session id")
	}

	chatBody, _ := json.Marshal(map[string]any{
		"session_id": sessionID,
		"messages":   []map[string]string{{"role": "user", "content": "hi"}},
	})
	req = httptest.NewRequest(http.MethodPost, "/api/chat/session", bytes.NewReader(chatBody))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("session chat status = %d body=%s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal chat response: %v", err)
	}
	if resp["session_id"] != sessionID {
		t.Errorf("session_id = %v, want %v", resp["session_id"], sessionID)
	}
	if count, ok := resp["message_count"].(float64); !ok || count != 2 {
		t.Errorf("message_count = %v, want 2", resp["message_count"])
	}
}

func TestDeleteModelNotFound(t *testing.T) {
	router, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodDelete, "/api/models/nonexistent", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

package pull

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"aurora/internal/logbus"
	"aurora/pkg/models"
)

func TestBuildURLDirect(t *testing.T) {
	req := models.PullRequest{DirectURL: "https://example.com/model.gguf"}
	if got := buildURL(req, "model.gguf"); got != req.DirectURL {
		t.Errorf("got %q, want %q", got, req.DirectURL)
	}
}

func TestBuildURLRepo(t *testing.T) {
	req := models.PullRequest{RepoID: "org/repo", Subfolder: "sub"}
	got := buildURL(req, "file.gguf")
	want := "https://huggingface.co/org/repo/resolve/main/sub/file.gguf"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRunSkipsExistingFile(t *testing.T) {
	dir := t.TempDir()
	modelDir := filepath.Join(dir, "existing")
	if err := os.MkdirAll(modelDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(modelDir, "weights.gguf"), []byte("already here"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	bus := logbus.New()
	var completedName, completedPath string
	w := NewWorker(bus, dir, func(req models.PullRequest, path string) {
		completedName, completedPath = req.Name, path
	})

	w.run(context.Background(), models.PullRequest{Name: "existing", RepoID: "org/repo", Filename: "weights.gguf"})

	if completedName != "existing" {
		t.Errorf("completedName = %q, want existing", completedName)
	}
	if completedPath != filepath.Join(modelDir, "weights.gguf") {
		t.Errorf("completedPath = %q", completedPath)
	}
}

func TestRunDownloadsFromServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("fake gguf bytes"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	bus := logbus.New()
	done := make(chan struct{})
	var gotPath string
	w := NewWorker(bus, dir, func(req models.PullRequest, path string) {
		gotPath = path
		close(done)
	})

	req := models.PullRequest{Name: "dl-model", DirectURL: srv.URL, Filename: "weights.gguf"}
	w.Start(context.Background(), req)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for pull to complete")
	}

	data, err := os.ReadFile(gotPath)
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(data) != "fake gguf bytes" {
		t.Errorf("unexpected file contents: %q", data)
	}
}

func TestShardsForExpandsFirstShard(t *testing.T) {
	req := models.PullRequest{Filename: "big-00001-of-00002.gguf"}
	shards := shardsFor(req)
	if len(shards) != 2 {
		t.Fatalf("expected 2 shards, got %d: %v", len(shards), shards)
	}
}

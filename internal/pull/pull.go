// Package pull downloads GGUF model files (and their shards) from
// remote repositories into Aurora's storage directory, publishing
// progress over the log bus as it goes.
package pull

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"aurora/internal/catalog"
	"aurora/internal/logbus"
	"aurora/pkg/models"
)

const (
	progressInterval = 2 * time.Second
	progressBytes    = 10 * 1024 * 1024
	transferTimeout  = time.Hour
	userAgent        = "aurora/1.0"
)

// OnComplete is invoked once a pull finishes successfully, with the
// original request and the path of its primary (first) shard — callers
// use this to upsert the catalog registry and optionally set the
// default model.
type OnComplete func(req models.PullRequest, path string)

// Worker downloads models in the background.
type Worker struct {
	client     *http.Client
	bus        *logbus.Bus
	storageDir string
	onComplete OnComplete
}

// NewWorker creates a pull worker rooted at storageDir.
func NewWorker(bus *logbus.Bus, storageDir string, onComplete OnComplete) *Worker {
	return &Worker{
		client:     &http.Client{Timeout: transferTimeout},
		bus:        bus,
		storageDir: storageDir,
		onComplete: onComplete,
	}
}

// Start dispatches a pull in the background and returns immediately.
// Concurrent pulls for the same name are not deduplicated or locked —
// the caller may issue two overlapping pulls for the same name and both
// will run; the one that finishes last wins the registry entry.
func (w *Worker) Start(ctx context.Context, req models.PullRequest) {
	go w.run(ctx, req)
}

func (w *Worker) run(ctx context.Context, req models.PullRequest) {
	w.bus.Publish(logbus.CategoryDownload, "pull started: %s", req.Name)

	destDir := filepath.Join(w.storageDir, req.Name)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		w.fail(req.Name, fmt.Errorf("create model dir: %w", err))
		return
	}

	files := shardsFor(req)
	var primaryPath string
	for i, filename := range files {
		url := buildURL(req, filename)
		dest := filepath.Join(destDir, filename)

		if i == 0 {
			primaryPath = dest
		}

		if fileExists(dest) {
			w.bus.Publish(logbus.CategoryDownload, "%s: %s already present, skipping", req.Name, filename)
			continue
		}

		if err := w.transferWithRetry(ctx, req.Name, url, dest); err != nil {
			w.fail(req.Name, fmt.Errorf("download %s: %w", filename, err))
			return
		}
	}

	w.bus.Publish(logbus.CategoryDownload, "pull complete: %s", req.Name)
	if w.onComplete != nil {
		w.onComplete(req, primaryPath)
	}
}

func (w *Worker) fail(name string, err error) {
	log.Error().Err(err).Str("model", name).Msg("pull failed")
	w.bus.Publish(logbus.CategoryError, "pull failed: %s: %v", name, err)
}

// shardsFor returns the list of filenames to fetch for req: either the
// direct filename, or the expanded shard set if it names the first
// shard of a multi-part GGUF.
func shardsFor(req models.PullRequest) []string {
	if req.Filename == "" {
		return nil
	}
	return catalog.ExpandShards(req.Filename)
}

// buildURL constructs the HuggingFace-style resolve URL for a file
// within req's repository.
func buildURL(req models.PullRequest, filename string) string {
	if req.DirectURL != "" {
		return req.DirectURL
	}
	path := filename
	if req.Subfolder != "" {
		path = req.Subfolder + "/" + filename
	}
	return fmt.Sprintf("https://huggingface.co/%s/resolve/main/%s", req.RepoID, path)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// transferWithRetry streams url to dest, retrying transient transport
// failures with exponential backoff. A non-2xx response is not retried:
// it aborts the transfer. It publishes rate-limited progress events as
// the body is copied.
func (w *Worker) transferWithRetry(ctx context.Context, modelName, url, dest string) error {
	operation := func() error {
		return w.transferOnce(ctx, modelName, url, dest)
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 5 * time.Minute
	return backoff.Retry(operation, backoff.WithContext(b, ctx))
}

func (w *Worker) transferOnce(ctx context.Context, modelName, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return backoff.Permanent(fmt.Errorf("not found: %s", url))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return backoff.Permanent(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	tmp := dest + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("create dest: %w", err))
	}

	pw := &progressWriter{
		bus:       w.bus,
		modelName: modelName,
		lastTick:  time.Now(),
	}
	_, err = io.Copy(f, io.TeeReader(resp.Body, pw))
	closeErr := f.Close()
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("copy body: %w", err)
	}
	if closeErr != nil {
		os.Remove(tmp)
		return fmt.Errorf("close dest: %w", closeErr)
	}

	pw.flushFinal()

	return os.Rename(tmp, dest)
}

// progressWriter publishes DOWNLOAD progress events at most once every
// progressInterval or progressBytes, whichever comes first.
type progressWriter struct {
	bus          *logbus.Bus
	modelName    string
	total        int64
	lastReported int64
	lastTick     time.Time
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n := len(b)
	p.total += int64(n)

	if p.total-p.lastReported >= progressBytes || time.Since(p.lastTick) >= progressInterval {
		p.bus.Publish(logbus.CategoryDownload, "%s: %.1f MiB", p.modelName, float64(p.total)/(1024*1024))
		p.lastReported = p.total
		p.lastTick = time.Now()
	}
	return n, nil
}

// flushFinal publishes one last DOWNLOAD event with the final byte count,
// since the last bytes copied may not have crossed a reporting threshold.
func (p *progressWriter) flushFinal() {
	p.bus.Publish(logbus.CategoryDownload, "%s: %.1f MiB", p.modelName, float64(p.total)/(1024*1024))
}

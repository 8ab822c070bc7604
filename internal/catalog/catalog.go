// Package catalog maintains Aurora's view of available models: an
// on-disk registry of pulled/registered models, config-declared models,
// discovery of loose .gguf files under the storage directory, and a
// bundled catalog of popular community models available to pull.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"aurora/pkg/models"
)

const registryFileName = "models.json"

//go:embed popular_models.yaml
var popularModelsYAML []byte

// Catalog tracks the registry of pulled/registered models and serves the
// bundled popular-models list. It does not itself know about
// config-declared models or on-disk discovery — those are supplied by
// the caller to Merge, per the merge precedence in merge.go.
type Catalog struct {
	mu           sync.RWMutex
	registry     map[string]models.ModelEntry // name -> entry
	registryPath string

	popular []models.PopularModel
}

// New creates a catalog backed by a models.json registry file under
// storageDir. The registry is loaded immediately; a missing file is not
// an error — it means an empty registry.
func New(storageDir string) (*Catalog, error) {
	c := &Catalog{
		registry:     make(map[string]models.ModelEntry),
		registryPath: filepath.Join(storageDir, registryFileName),
	}

	if err := c.loadRegistry(); err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}

	popular, err := loadPopularModels()
	if err != nil {
		log.Warn().Err(err).Msg("catalog: failed to parse bundled popular-models list")
	}
	c.popular = popular

	return c, nil
}

func loadPopularModels() ([]models.PopularModel, error) {
	var list []models.PopularModel
	if err := yaml.Unmarshal(popularModelsYAML, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// PopularModels returns the bundled list of popular community models.
func (c *Catalog) PopularModels() []models.PopularModel {
	return c.popular
}

// RegistryEntries returns a snapshot of every registered entry.
func (c *Catalog) RegistryEntries() []models.ModelEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.ModelEntry, 0, len(c.registry))
	for _, e := range c.registry {
		out = append(out, e)
	}
	return out
}

// Lookup returns the registry entry for name, if present.
func (c *Catalog) Lookup(name string) (models.ModelEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.registry[name]
	return e, ok
}

// Upsert adds or replaces a registry entry and persists the registry.
func (c *Catalog) Upsert(entry models.ModelEntry) error {
	c.mu.Lock()
	c.registry[entry.Name] = entry
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	return c.saveRegistry(snapshot)
}

// DeleteResult describes how a registry delete was resolved.
type DeleteResult struct {
	Removed  bool
	PathUsed string
}

// ErrConfigDeclared is returned when a delete targets a config-declared
// model; those are never removable through this API.
var ErrConfigDeclared = fmt.Errorf("model is config-declared, cannot be removed")

// ErrNotFound is returned when no registry entry or on-disk fallback
// candidate matches name.
var ErrNotFound = fmt.Errorf("model not found")

// Delete resolves and removes name per the registry delete policy:
//   - config-declared names are refused outright (ErrConfigDeclared);
//   - a registered name whose stored path canonicalizes under
//     storageDir has that path removed, then its registry row removed;
//   - otherwise (unregistered, or registered with a path outside
//     storageDir) the default locations storage_dir/<name>/ and
//     storage_dir/<name>.gguf are tried; a match there is removed and,
//     if a stale registry row existed, it is cleaned up too;
//   - if nothing matches, ErrNotFound is returned and the registry is
//     left untouched — a registered-but-escaping path is NOT treated as
//     evidence enough to drop the row.
func (c *Catalog) Delete(name string, configModels map[string]string, storageDir string) (DeleteResult, error) {
	if IsConfigDeclared(configModels, name) {
		return DeleteResult{}, ErrConfigDeclared
	}

	c.mu.RLock()
	entry, registered := c.registry[name]
	c.mu.RUnlock()

	if registered && entry.Path != "" {
		if abs, ok := canonicalizeUnder(entry.Path, storageDir); ok {
			if err := os.RemoveAll(abs); err != nil {
				return DeleteResult{}, fmt.Errorf("remove %q: %w", abs, err)
			}
			if err := c.removeRegistryEntry(name); err != nil {
				return DeleteResult{}, err
			}
			return DeleteResult{Removed: true, PathUsed: abs}, nil
		}
	}

	if path, ok := fallbackCandidate(name, storageDir); ok {
		if err := os.RemoveAll(path); err != nil {
			return DeleteResult{}, fmt.Errorf("remove %q: %w", path, err)
		}
		if registered {
			if err := c.removeRegistryEntry(name); err != nil {
				return DeleteResult{}, err
			}
		}
		return DeleteResult{Removed: true, PathUsed: path}, nil
	}

	return DeleteResult{}, ErrNotFound
}

func (c *Catalog) removeRegistryEntry(name string) error {
	c.mu.Lock()
	delete(c.registry, name)
	snapshot := c.snapshotLocked()
	c.mu.Unlock()
	return c.saveRegistry(snapshot)
}

// canonicalizeUnder resolves path to an absolute form and reports
// whether it falls within storageDir.
func canonicalizeUnder(path, storageDir string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	return abs, withinDir(abs, storageDir)
}

// fallbackCandidate looks for storage_dir/<name>/ or
// storage_dir/<name>.gguf and returns the first that exists.
func fallbackCandidate(name, storageDir string) (string, bool) {
	dir := filepath.Join(storageDir, name)
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return dir, true
	}
	file := filepath.Join(storageDir, name+".gguf")
	if info, err := os.Stat(file); err == nil && !info.IsDir() {
		return file, true
	}
	return "", false
}

// withinDir reports whether path is storageDir or a descendant of it.
func withinDir(path, storageDir string) bool {
	absDir, err := filepath.Abs(storageDir)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, path)
	if err != nil {
		return false
	}
	return rel == "." || !strings.HasPrefix(rel, "..")
}

func (c *Catalog) snapshotLocked() map[string]models.ModelEntry {
	out := make(map[string]models.ModelEntry, len(c.registry))
	for k, v := range c.registry {
		out[k] = v
	}
	return out
}

func (c *Catalog) loadRegistry() error {
	data, err := os.ReadFile(c.registryPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var entries map[string]models.ModelEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Warn().Err(err).Str("path", c.registryPath).Msg("catalog: registry file unreadable, starting empty")
		return nil
	}
	c.registry = entries
	return nil
}

// saveRegistry writes snapshot to disk atomically (write temp, rename).
func (c *Catalog) saveRegistry(snapshot map[string]models.ModelEntry) error {
	if err := os.MkdirAll(filepath.Dir(c.registryPath), 0o755); err != nil {
		return fmt.Errorf("create registry dir: %w", err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal registry: %w", err)
	}

	tmp := c.registryPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp registry: %w", err)
	}
	return os.Rename(tmp, c.registryPath)
}

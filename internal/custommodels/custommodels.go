// Package custommodels stores user-defined custom model configurations
// (persona layered on a base GGUF model) and serves the built-in
// starting-point templates.
package custommodels

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"aurora/pkg/models"
)

const fileName = "custom-models.json"

// Store is the persisted registry of custom model configs.
type Store struct {
	mu   sync.RWMutex
	path string
	data map[string]models.CustomModelConfig
}

// New creates a Store backed by custom-models.json under storageDir.
func New(storageDir string) (*Store, error) {
	s := &Store{
		path: filepath.Join(storageDir, fileName),
		data: make(map[string]models.CustomModelConfig),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var m map[string]models.CustomModelConfig
	if err := json.Unmarshal(data, &m); err != nil {
		return nil // corrupt file — start empty rather than fail startup
	}
	s.data = m
	return nil
}

// List returns every custom model config, unordered.
func (s *Store) List() []models.CustomModelConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.CustomModelConfig, 0, len(s.data))
	for _, v := range s.data {
		out = append(out, v)
	}
	return out
}

// Get returns the config for name, if present.
func (s *Store) Get(name string) (models.CustomModelConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[name]
	return v, ok
}

// Upsert adds or replaces a custom model config and persists the store.
func (s *Store) Upsert(cfg models.CustomModelConfig) error {
	s.mu.Lock()
	s.data[cfg.Name] = cfg
	snapshot := s.snapshotLocked()
	s.mu.Unlock()
	return s.save(snapshot)
}

// Delete removes name. Reports whether an entry existed.
func (s *Store) Delete(name string) (bool, error) {
	s.mu.Lock()
	_, ok := s.data[name]
	if ok {
		delete(s.data, name)
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if !ok {
		return false, nil
	}
	return true, s.save(snapshot)
}

func (s *Store) snapshotLocked() map[string]models.CustomModelConfig {
	out := make(map[string]models.CustomModelConfig, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

func (s *Store) save(snapshot map[string]models.CustomModelConfig) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp: %w", err)
	}
	return os.Rename(tmp, s.path)
}

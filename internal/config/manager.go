package config

import (
	"sync"

	"aurora/pkg/models"
)

// Manager guards the durable AppConfig behind a readers-writer lock and
// persists it to disk on every update. Handlers never write the config
// file directly — they go through a Manager so reads and writes are
// consistent with a single in-memory snapshot.
type Manager struct {
	mu   sync.RWMutex
	path string
	cfg  models.AppConfig
}

// NewManager loads path (falling back to defaults) and returns a ready
// Manager.
func NewManager(path string) *Manager {
	return &Manager{
		path: path,
		cfg:  LoadAppConfig(path),
	}
}

// Get returns a copy of the current config.
func (m *Manager) Get() models.AppConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// Update applies patch as a partial update and persists the result.
func (m *Manager) Update(patch models.AppConfig) (models.AppConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cfg = ApplyPartialUpdate(m.cfg, patch)
	if err := SaveAppConfig(m.path, m.cfg); err != nil {
		return models.AppConfig{}, err
	}
	return m.cfg, nil
}

// SetDefaultModel unconditionally sets and persists default_model. Per
// the spec's documented open question, this happens on every chat
// request for the resolved model name, not only on an engine swap.
func (m *Manager) SetDefaultModel(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cfg.DefaultModel = name
	return SaveAppConfig(m.path, m.cfg)
}

// UpsertConfigModel adds or replaces a config-declared model path and
// persists the result.
func (m *Manager) UpsertConfigModel(name, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.ConfigModels == nil {
		m.cfg.ConfigModels = map[string]string{}
	}
	m.cfg.ConfigModels[name] = path
	return SaveAppConfig(m.path, m.cfg)
}

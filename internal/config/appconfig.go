package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"aurora/pkg/models"
)

// DefaultAppConfig returns the built-in defaults used whenever no config
// file exists yet, or an existing one fails to parse.
func DefaultAppConfig() models.AppConfig {
	return models.AppConfig{
		Host:       "127.0.0.1",
		Port:       11435,
		StorageDir: "",
	}
}

// legacyAppConfig is an older on-disk shape kept for read-compatibility.
// It nested storage under a "paths" object instead of a flat field.
type legacyAppConfig struct {
	Host  string `json:"host"`
	Port  int    `json:"port"`
	Paths struct {
		Storage string `json:"storage"`
	} `json:"paths"`
	DefaultModel string            `json:"default_model,omitempty"`
	ConfigModels map[string]string `json:"config_models,omitempty"`
}

// LoadAppConfig reads the durable config file at path. Missing file or any
// parse failure falls back to defaults — callers always get a usable
// config, never an error.
func LoadAppConfig(path string) models.AppConfig {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Info().Str("path", path).Msg("no config file found, using defaults")
		return resolveDefaults(DefaultAppConfig())
	}

	// A legacy file also parses as the current shape (its "paths" object is
	// ignored), so a populated paths.storage marks it as legacy.
	var legacy legacyAppConfig
	legacyErr := json.Unmarshal(data, &legacy)

	var cur models.AppConfig
	if err := json.Unmarshal(data, &cur); err == nil && cur.Port != 0 && legacy.Paths.Storage == "" {
		return resolveDefaults(cur)
	}

	if legacyErr == nil && legacy.Port != 0 {
		log.Warn().Str("path", path).Msg("loaded config in legacy format")
		return resolveDefaults(models.AppConfig{
			Host:         legacy.Host,
			Port:         legacy.Port,
			StorageDir:   legacy.Paths.Storage,
			DefaultModel: legacy.DefaultModel,
			ConfigModels: legacy.ConfigModels,
		})
	}

	log.Warn().Str("path", path).Msg("config file unreadable, falling back to defaults")
	return resolveDefaults(DefaultAppConfig())
}

func resolveDefaults(cfg models.AppConfig) models.AppConfig {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 11435
	}
	return cfg
}

// SaveAppConfig writes cfg to path atomically: marshal, write to a
// sibling temp file, then rename over the destination. Grounded on the
// teacher's snapshot persistence (write-temp-then-rename).
func SaveAppConfig(path string, cfg models.AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp config: %w", err)
	}
	return nil
}

// ApplyPartialUpdate merges non-zero-value fields from patch into cfg and
// returns the result; fields left unset in patch are unchanged. ConfigModels
// entries are merged key-by-key rather than wholesale replaced.
func ApplyPartialUpdate(cfg models.AppConfig, patch models.AppConfig) models.AppConfig {
	if patch.Host != "" {
		cfg.Host = patch.Host
	}
	if patch.Port != 0 {
		cfg.Port = patch.Port
	}
	if patch.StorageDir != "" {
		cfg.StorageDir = patch.StorageDir
	}
	if patch.DefaultModel != "" {
		cfg.DefaultModel = patch.DefaultModel
	}
	if len(patch.ConfigModels) > 0 {
		if cfg.ConfigModels == nil {
			cfg.ConfigModels = map[string]string{}
		}
		for k, v := range patch.ConfigModels {
			cfg.ConfigModels[k] = v
		}
	}
	return cfg
}

// Package server provides the public entry point for initializing the
// Aurora inference server.
//
// Usage:
//
//	srv, err := server.New(ctx)
//	http.ListenAndServe(srv.Addr(), srv.Handler)
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/rs/zerolog/log"

	"aurora/internal/api"
	"aurora/internal/api/handlers"
	"aurora/internal/catalog"
	"aurora/internal/config"
	"aurora/internal/custommodels"
	"aurora/internal/engine"
	"aurora/internal/logbus"
	"aurora/internal/pull"
	"aurora/internal/sessionstore"
	"aurora/internal/telemetry"
	"aurora/pkg/models"
)

// Config is the public configuration for the server.
type Config struct {
	Port        int
	Version     string
	OTELEnabled bool
}

// Server holds the initialized Aurora server.
type Server struct {
	// Handler is the HTTP handler with all routes and middleware.
	Handler http.Handler

	// Config is the bootstrap server configuration.
	Config *Config

	// Port is the port the server should listen on.
	Port int

	// ConfigManager holds durable settings (storage dir, default model,
	// config-declared models). Exposed so callers can read or patch
	// settings outside of the HTTP surface.
	ConfigManager *config.Manager

	// Catalog is the model registry (pulled + discovered models).
	Catalog *catalog.Catalog

	// Engine is the resident inference backend holder.
	Engine *engine.Holder

	// Sessions is the session/memory store.
	Sessions *sessionstore.Store

	// Bus is the in-process log event bus, also served over
	// /api/logs and /api/logs/stream.
	Bus *logbus.Bus

	shutdownTelemetry func(context.Context) error
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	cfg := config.Load()
	return &Config{
		Port:        cfg.Port,
		Version:     cfg.Version,
		OTELEnabled: cfg.Telemetry.Enabled,
	}
}

// New initializes Aurora with configuration read from the environment.
func New(ctx context.Context) (*Server, error) {
	return NewWithConfig(ctx, LoadConfig())
}

// NewWithConfig initializes Aurora with an explicit public configuration.
func NewWithConfig(ctx context.Context, pubCfg *Config) (*Server, error) {
	cfg := config.Load()
	if pubCfg.Port > 0 {
		cfg.Port = pubCfg.Port
	}

	shutdown, err := telemetry.Init(cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	return buildServer(ctx, cfg, pubCfg, shutdown)
}

func buildServer(ctx context.Context, cfg *config.Config, pubCfg *Config, shutdown func(context.Context) error) (*Server, error) {
	configPath, err := config.ConfigFilePath()
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	cfgManager := config.NewManager(configPath)
	appCfg := cfgManager.Get()

	storageDir, err := config.ResolveStorageDir(appCfg.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("resolve storage dir: %w", err)
	}
	if storageDir != appCfg.StorageDir {
		if _, err := cfgManager.Update(models.AppConfig{StorageDir: storageDir}); err != nil {
			return nil, fmt.Errorf("persist resolved storage dir: %w", err)
		}
	}
	log.Info().Str("storage_dir", storageDir).Msg("✅ storage directory resolved")

	bus := logbus.New()

	cat, err := catalog.New(storageDir)
	if err != nil {
		return nil, fmt.Errorf("init catalog: %w", err)
	}
	log.Info().Msg("✅ model catalog initialized")

	cm, err := custommodels.New(storageDir)
	if err != nil {
		return nil, fmt.Errorf("init custom models: %w", err)
	}
	log.Info().Msg("✅ custom model store initialized")

	dbPath, err := config.SessionDBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve session db path: %w", err)
	}
	sessions, err := sessionstore.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	log.Info().Str("path", dbPath).Msg("✅ session store initialized")

	holder := engine.NewHolder(engine.NewStubBackend)

	h := &handlers.Handlers{
		Config:       cfgManager,
		Catalog:      cat,
		CustomModels: cm,
		Engine:       holder,
		Sessions:     sessions,
		Bus:          bus,
		Version:      pubCfg.Version,
	}
	h.PullWorker = pull.NewWorker(bus, storageDir, h.OnPullComplete)

	router := api.NewRouter(h)
	log.Info().Msg("✅ router initialized")

	return &Server{
		Handler:           router,
		Config:            pubCfg,
		Port:              cfg.Port,
		ConfigManager:     cfgManager,
		Catalog:           cat,
		Engine:            holder,
		Sessions:          sessions,
		Bus:               bus,
		shutdownTelemetry: shutdown,
	}, nil
}

// Addr returns the host:port the server should bind to. The host comes
// from the durable config (127.0.0.1 by default).
func (s *Server) Addr() string {
	host := ""
	if s.ConfigManager != nil {
		host = s.ConfigManager.Get().Host
	}
	return net.JoinHostPort(host, fmt.Sprint(s.Port))
}

// Shutdown closes the session store and flushes telemetry. Should be
// called on graceful shutdown.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.Sessions != nil {
		if err := s.Sessions.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing session store")
		}
	}
	if s.shutdownTelemetry != nil {
		return s.shutdownTelemetry(ctx)
	}
	return nil
}

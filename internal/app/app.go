// Package app assembles the runtime from configuration.
package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"file-appender/internal/agents"
	"file-appender/internal/config"
	"file-appender/internal/runtime"
	"file-appender/internal/state"
	"file-appender/internal/storage"
)

// App owns the long-lived pieces shared by every entry point.
type App struct {
	Runner  *runtime.Runner
	Storage *storage.Factory
	State   state.Store
}

// New builds storage, state and the runner, then registers the agents
// listed in cfg.AgentsFile.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	defs, err := config.LoadAgents(cfg.AgentsFile)
	if err != nil {
		return nil, err
	}
	st, err := NewStateStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a := &App{
		Runner:  runtime.New(st),
		Storage: storage.NewFactory(cfg.StorageSettings()),
		State:   st,
	}
	if err := a.Register(ctx, defs); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func NewStateStore(ctx context.Context, cfg *config.Config) (state.Store, error) {
	switch strings.ToLower(cfg.StateBackend) {
	case "", "file":
		return state.NewFileStore(cfg.StateDir, cfg.AgentLogLength)
	case "redis":
		return state.NewRedisStore(ctx, state.RedisConfig{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			LogLength: cfg.AgentLogLength,
		})
	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.StateBackend)
	}
}

// Register creates one agent per definition. Disabled agents still need a
// working storage backend so they can be re-enabled without a restart.
func (a *App) Register(ctx context.Context, defs []config.AgentDefinition) error {
	for _, d := range defs {
		client, err := a.Storage.Get(ctx, d.Storage)
		if err != nil {
			return fmt.Errorf("agent %s: %w", d.ID, err)
		}
		ag, err := agents.NewFileAppender(d.ID, d.Name, client, d.Options)
		if err != nil {
			return fmt.Errorf("agent %s: %w", d.ID, err)
		}
		if err := a.Runner.Register(ag, runtime.RegisterOptions{Storage: backendName(d.Storage), Disabled: d.Disabled}); err != nil {
			return err
		}
	}
	log.Printf("✅ %d agent(s) registered", len(defs))
	return nil
}

func backendName(s string) string {
	if s == "" {
		return storage.BackendDropbox
	}
	return strings.ToLower(s)
}

func (a *App) Close() error {
	if c, ok := a.State.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

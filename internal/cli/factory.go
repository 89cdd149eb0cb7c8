// Package cli assembles engines for the command-line entry points:
// config to engine wiring, workflow file IO, run orchestration.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/weftlabs/weft"
	"github.com/weftlabs/weft/internal/config"
	"github.com/weftlabs/weft/pkg/adapters/file"
	"github.com/weftlabs/weft/pkg/adapters/memory"
	redisstore "github.com/weftlabs/weft/pkg/adapters/redis"
	"github.com/weftlabs/weft/pkg/domain"
	"github.com/weftlabs/weft/pkg/plugins"
	"github.com/weftlabs/weft/pkg/ports"
	"github.com/weftlabs/weft/pkg/providers"
)

// BuildEngine wires an engine from configuration: built-in providers,
// plugin kinds discovered on disk, and the configured workflow store.
// The returned cleanup releases store resources and must always be called.
func BuildEngine(cfg config.Config, logger *slog.Logger, hooks ...domain.LifecycleHooks) (*weft.Engine, func(), error) {
	reg := providers.DefaultRegistry()

	// Plugin manifests extend the kind registry; their execution backends
	// are host-provided, so CLI runs reject plugin kinds at the provider.
	manifests, err := plugins.Discover(cfg.PluginsDir, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("plugin discovery failed: %w", err)
	}
	for _, m := range manifests {
		reg.Register(m.KindSpec())
	}

	store, cleanup, err := buildStore(cfg.Store)
	if err != nil {
		return nil, nil, err
	}

	opts := []weft.Option{
		weft.WithLogger(logger),
		weft.WithRegistry(reg),
		weft.WithStore(store),
	}
	if cfg.ResetDelay > 0 {
		opts = append(opts, weft.WithResetDelay(cfg.ResetDelay.Std()))
	}
	for _, h := range hooks {
		opts = append(opts, weft.WithLifecycleHooks(h))
	}

	engine, err := weft.New(providers.Builtin(), opts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return engine, cleanup, nil
}

func buildStore(cfg config.StoreConfig) (ports.WorkflowStore, func(), error) {
	switch cfg.Backend {
	case "memory":
		return memory.NewStore(), func() {}, nil
	case "file", "":
		return file.NewStore(cfg.Path), func() {}, nil
	case "redis":
		store := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// Command sercha is the search client: a cached, debounced search surface
// over a remote search API, usable from the terminal, a TUI or MCP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/sercha-client/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-client/internal/adapters/driven/remote"
	"github.com/custodia-labs/sercha-client/internal/adapters/driven/storage/memory"
	redisstore "github.com/custodia-labs/sercha-client/internal/adapters/driven/storage/redis"
	"github.com/custodia-labs/sercha-client/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-client/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-client/internal/core/domain"
	"github.com/custodia-labs/sercha-client/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-client/internal/core/services"
	"github.com/custodia-labs/sercha-client/internal/logger"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Configuration
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		// Keep the CLI usable so 'sercha settings wizard' can repair the file.
		logger.Error("invalid configuration, using defaults: %v", err)
		defaults := domain.DefaultAppSettings()
		settings = &defaults
	}

	// Storage
	kv, schedulerStore, err := openStorage(ctx, settings.Storage)
	if err != nil {
		return err
	}

	// Remote API and core services
	client := remote.NewClient(remote.ConfigFrom(settings.API))
	app := services.NewApp(kv, client, client, *settings)
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("closing storage: %v", err)
		}
	}()

	schedulerConfig := domain.DefaultSchedulerConfig(settings.Cache)
	scheduler := services.NewScheduler(schedulerConfig, schedulerStore, app.Cache(), app.History())

	// Live reload of cache and history settings.
	watcher, err := file.NewWatcher(configStore.Path(), func() {
		reloaded, err := settingsService.Reload()
		if err != nil {
			logger.Warn("config reload failed: %v", err)
			return
		}
		app.ApplySettings(*reloaded)
		logger.Debug("config reloaded from %s", configStore.Path())
	})
	if err != nil {
		logger.Warn("config watcher disabled: %v", err)
	} else {
		defer watcher.Close()
	}

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Surfaces:        app,
		Cache:           app.Cache(),
		History:         app.History(),
		Settings:        settingsService,
		Scheduler:       scheduler,
		SchedulerConfig: schedulerConfig,
	})

	return cli.Execute(ctx)
}

// openStorage opens the key-value store for the configured backend and
// the store that tracks scheduled sweeps.
func openStorage(
	ctx context.Context, s domain.StorageSettings,
) (driven.KeyValueStore, driven.SchedulerStore, error) {
	switch s.Backend {
	case domain.StorageMemory:
		return memory.NewKeyValueStore(), memory.NewSchedulerStore(), nil

	case domain.StorageRedis:
		kv, err := redisstore.NewKVStore(ctx, redisstore.Options{Addr: s.RedisAddr})
		if err != nil {
			return nil, nil, fmt.Errorf("opening redis storage: %w", err)
		}
		// Sweep bookkeeping stays per process; the cache itself is shared.
		return kv, memory.NewSchedulerStore(), nil

	case domain.StorageSQLite:
		store, err := sqlite.NewStore(s.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite storage: %w", err)
		}
		return store.KeyValueStore(), store.SchedulerStore(), nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedBackend, s.Backend)
	}
}

// Package app wires configuration, the API access layer, the directory store
// and the sync engine into one dependency container.
package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/samber/do/v2"
	"github.com/samber/oops"
	"google.golang.org/api/option"

	"aitubersync/internal/config"
	"aitubersync/internal/featured"
	"aitubersync/internal/storage"
	"aitubersync/internal/syncer"
	"aitubersync/internal/youtube"
)

// App owns the container and the resources opened through it.
type App struct {
	Injector do.Injector

	mu    sync.Mutex
	store *storage.JSONStore
}

// Setup registers every service. Nothing is built until first use, so a
// command that only reads the directory never contacts the API. clientOpts
// are passed to every Data API client.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger, clientOpts ...option.ClientOption) (*App, error) {
	if cfg == nil {
		return nil, oops.Errorf("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, oops.With("timezone_offset", cfg.TimezoneOffset).Wrap(err)
	}

	a := &App{Injector: do.New()}
	i := a.Injector

	do.ProvideValue(i, cfg)
	do.ProvideValue(i, logger)

	do.Provide(i, func(i do.Injector) (*youtube.AccessLayer, error) {
		cfg := do.MustInvoke[*config.Config](i)
		access, err := youtube.NewAccessLayer(ctx, cfg.Credentials(), youtube.DataAPIFactory(clientOpts...),
			youtube.WithRateLimit(cfg.APIRPS, 1),
			youtube.WithLogger(do.MustInvoke[*slog.Logger](i)),
		)
		if err != nil {
			return nil, oops.With("context", "failed to create youtube client").Wrap(err)
		}
		return access, nil
	})

	do.Provide(i, func(i do.Injector) (*youtube.Resolver, error) {
		access := do.MustInvoke[*youtube.AccessLayer](i)
		return youtube.NewResolver(access, do.MustInvoke[*config.Config](i).ExtraHosts...), nil
	})

	do.Provide(i, func(i do.Injector) (*youtube.Source, error) {
		return youtube.NewSource(do.MustInvoke[*youtube.AccessLayer](i)), nil
	})

	do.Provide(i, func(i do.Injector) (storage.DirectoryStore, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if err := os.MkdirAll(filepath.Dir(cfg.DataPath), 0o755); err != nil {
			return nil, oops.With("data_path", cfg.DataPath, "context", "failed to create data directory").Wrap(err)
		}
		store, err := storage.Open(ctx, cfg.DataPath, cfg.LockTimeout)
		if err != nil {
			return nil, oops.With("data_path", cfg.DataPath, "context", "failed to open directory").Wrap(err)
		}
		a.mu.Lock()
		a.store = store
		a.mu.Unlock()
		return store, nil
	})

	do.Provide(i, func(i do.Injector) (*syncer.Engine, error) {
		cfg := do.MustInvoke[*config.Config](i)
		access := do.MustInvoke[*youtube.AccessLayer](i)
		store, err := do.Invoke[storage.DirectoryStore](i)
		if err != nil {
			return nil, err
		}
		return syncer.New(
			do.MustInvoke[*youtube.Resolver](i),
			do.MustInvoke[*youtube.Source](i),
			store,
			syncer.Config{
				UploadWindow: cfg.UploadWindow,
				Workers:      cfg.Workers,
				Location:     loc,
				Selector:     featured.Selector{FutureCutoff: cfg.FutureCutoff},
				Access:       access,
				Logger:       do.MustInvoke[*slog.Logger](i),
			},
		), nil
	})

	return a, nil
}

// Engine returns the sync engine, opening the directory store.
func (a *App) Engine() (*syncer.Engine, error) {
	engine, err := do.Invoke[*syncer.Engine](a.Injector)
	if err != nil {
		return nil, oops.With("context", "failed to build sync engine").Wrap(err)
	}
	return engine, nil
}

// Store returns the directory store without building any API client.
func (a *App) Store() (storage.DirectoryStore, error) {
	store, err := do.Invoke[storage.DirectoryStore](a.Injector)
	if err != nil {
		return nil, oops.With("context", "failed to open directory store").Wrap(err)
	}
	return store, nil
}

// Shutdown releases the directory lock if the store was opened.
func (a *App) Shutdown() error {
	a.mu.Lock()
	store := a.store
	a.store = nil
	a.mu.Unlock()
	if store == nil {
		return nil
	}
	if err := store.Close(); err != nil {
		return oops.With("context", "failed to close directory store").Wrap(err)
	}
	return nil
}

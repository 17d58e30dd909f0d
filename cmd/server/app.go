package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/biblioteca-api/internal/config"
	"github.com/phrazzld/biblioteca-api/internal/library"
	"github.com/phrazzld/biblioteca-api/internal/platform/postgres"
	"github.com/phrazzld/biblioteca-api/internal/platform/seed"
	"github.com/phrazzld/biblioteca-api/internal/platform/sqlite"
	"github.com/phrazzld/biblioteca-api/internal/service"
	"github.com/phrazzld/biblioteca-api/internal/store"
)

// application holds the shared dependencies of the running server so they
// can be handed to the router and released on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	lib   *library.Library
	store store.SnapshotStore
}

// newApplication opens the configured store, builds the library with a
// snapshot committer and restores or seeds its state.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	st, err := openStore(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	app := &application{
		config: cfg,
		logger: logger,
		store:  st,
	}

	committer, err := service.NewSnapshotCommitter(st, cfg.Database.SaveTimeout, logger)
	if err != nil {
		app.cleanup()
		return nil, err
	}
	app.lib = library.New(
		library.WithCommitter(committer.Commit),
		library.WithLogger(logger),
	)

	var seedData *service.SeedData
	if cfg.Seed.Enabled {
		data, err := seed.LoadFile(cfg.Seed.File)
		if err != nil {
			app.cleanup()
			return nil, fmt.Errorf("failed to load seed data: %w", err)
		}
		seedData = &service.SeedData{Books: data.Books, Members: data.Members}
	}

	outcome, err := service.Bootstrap(ctx, app.lib, st, seedData, logger)
	if err != nil {
		app.cleanup()
		return nil, err
	}
	logger.Info("application initialized",
		slog.String("driver", cfg.Database.Driver),
		slog.String("bootstrap", string(outcome)))
	return app, nil
}

// openStore returns the snapshot store for the configured driver.
// The postgres schema is expected to be migrated already.
func openStore(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (store.SnapshotStore, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return store.NewMemoryStore(), nil
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		return postgres.NewSnapshotStore(db, logger), nil
	case config.DriverSQLite:
		return sqlite.Open(ctx, cfg.Path, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.store == nil {
		return
	}
	if err := app.store.Close(); err != nil {
		app.logger.Error("failed to close store", slog.Any("error", err))
		return
	}
	app.logger.Info("store closed")
}

// Package app wires configuration, storage, metadata and the edit pipeline
// together for the server and the CLI.
package app

import (
	"context"
	"fmt"
	"log"

	"quickedit/internal/config"
	"quickedit/internal/engine"
	"quickedit/internal/flash"
	"quickedit/internal/metadata"
	"quickedit/internal/store"
)

type App struct {
	Config   *config.Config
	Store    *store.Store
	Registry *metadata.Registry
	Editor   *engine.Editor
	Flashes  flash.Store
}

// Open connects to the database, bootstraps system tables, loads entity
// definitions and builds the editor. Callers must Close the result.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := store.New(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := db.Bootstrap(ctx); err != nil {
		db.Close()
		return nil, err
	}

	reg := metadata.NewRegistry()
	if err := loadRegistry(ctx, cfg.Metadata, db, reg); err != nil {
		db.Close()
		return nil, err
	}

	flashes, err := flash.New(ctx, cfg.Flash)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open flash store: %w", err)
	}

	return &App{
		Config:   cfg,
		Store:    db,
		Registry: reg,
		Editor:   engine.NewEditor(engine.StoreSessions(db), reg, EditorOptions(cfg.QuickEdit)),
		Flashes:  flashes,
	}, nil
}

// EditorOptions maps the quickedit config section onto engine options.
func EditorOptions(cfg config.QuickEditConfig) engine.Options {
	return engine.Options{
		Coerce:            engine.CoerceOptions{BoolAcceptsOne: cfg.BoolAcceptsOne},
		AllowLegacyMarker: cfg.AllowLegacyMarker,
	}
}

func loadRegistry(ctx context.Context, cfg config.MetadataConfig, db *store.Store, reg *metadata.Registry) error {
	switch cfg.Source {
	case "file":
		if cfg.Watch {
			return metadata.WatchFile(cfg.File, reg)
		}
		return metadata.LoadFile(cfg.File, reg)
	case "", "db":
		if err := metadata.LoadAll(ctx, db.DB, reg); err != nil {
			log.Printf("WARN: Failed to load metadata: %v", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown metadata source %q", cfg.Source)
	}
}

// Close releases the flash store and the database.
func (a *App) Close() {
	if err := a.Flashes.Close(); err != nil {
		log.Printf("WARN: close flash store: %v", err)
	}
	a.Store.Close()
}

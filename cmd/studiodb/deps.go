package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/caspermolin/website-sub000/internal/application/handlers"
	"github.com/caspermolin/website-sub000/internal/domain/entities"
	"github.com/caspermolin/website-sub000/internal/domain/ports"
	"github.com/caspermolin/website-sub000/internal/domain/services"
	"github.com/caspermolin/website-sub000/internal/infrastructure/backupdir"
	"github.com/caspermolin/website-sub000/internal/infrastructure/collectionstore/jsonfile"
	"github.com/caspermolin/website-sub000/internal/infrastructure/collectionstore/sqlite"
	"github.com/caspermolin/website-sub000/internal/infrastructure/config"
	"github.com/caspermolin/website-sub000/internal/logging"
)

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services and stores are internal.
type Deps struct {
	BasePath    string
	Config      *config.Config
	Logger      *slog.Logger
	RoleTable   entities.RoleTable
	Collections *handlers.CollectionHandler
	Import      *handlers.ImportHandler
	Sync        *handlers.SyncHandler
	Normalize   *handlers.NormalizeHandler
	Backups     *handlers.BackupHandler
	History     *handlers.HistoryHandler
}

// basePath returns the --dir flag or the current directory.
func basePath() (string, error) {
	if globalDir != "" {
		return globalDir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	return cwd, nil
}

// newLogger builds the process logger from config, letting flags win.
func newLogger(cfg *config.Config) (*slog.Logger, error) {
	level := cfg.Logging.Level
	if globalLogLevel != "" {
		level = globalLogLevel
	}
	format := cfg.Logging.Format
	if globalLogFormat != "" {
		format = globalLogFormat
	}
	return logging.New(logging.Options{
		Level:  level,
		Format: format,
		Output: os.Stderr,
	})
}

// withDeps loads config and builds dependencies, then calls the provided function.
// It closes the store afterwards.
func withDeps(ctx context.Context, fn func(*Deps) error) error {
	base, err := basePath()
	if err != nil {
		return err
	}

	cfg, err := config.Load(base)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	roleTable, err := config.LoadRoleTable(base)
	if err != nil {
		return fmt.Errorf("loading role table: %w", err)
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	collectionService := services.NewCollectionService(store, logger)
	importService := services.NewImportService(store, logger)
	reconcileService := services.NewReconcileService(store, services.ReconcileOptions{
		StudioName:       cfg.Studio.Name,
		PlaceholderImage: cfg.Studio.PlaceholderImage,
	}, logger)
	normalizeService := services.NewNormalizeService(store, services.NewNormalizer(roleTable), logger)
	backupService := services.NewBackupService(store, backupdir.New(cfg.Backup.Dir), logger)

	var auditLog ports.AuditLog
	if al, ok := store.(ports.AuditLog); ok {
		auditLog = al
	}

	deps := &Deps{
		BasePath:    base,
		Config:      cfg,
		Logger:      logger,
		RoleTable:   roleTable,
		Collections: handlers.NewCollectionHandler(collectionService),
		Import:      handlers.NewImportHandler(importService),
		Sync:        handlers.NewSyncHandler(reconcileService),
		Normalize:   handlers.NewNormalizeHandler(normalizeService),
		Backups:     handlers.NewBackupHandler(backupService),
		History:     handlers.NewHistoryHandler(auditLog),
	}

	return fn(deps)
}

// openStore creates the collection store selected by store.backend.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.CollectionStore, error) {
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		store, err := sqlite.NewStore(cfg.Store.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("creating sqlite store: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("ensuring sqlite schema: %w", err)
		}
		return store, nil
	default:
		store, err := jsonfile.New(cfg.Store.DataDir, logger)
		if err != nil {
			return nil, fmt.Errorf("creating jsonfile store: %w", err)
		}
		return store, nil
	}
}

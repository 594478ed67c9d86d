// Package handlers contains application use case handlers.
package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/caspermolin/website-sub000/internal/infrastructure/config"
)

// InitHandler handles project initialization.
type InitHandler struct{}

// NewInitHandler creates a new init handler.
func NewInitHandler() *InitHandler {
	return &InitHandler{}
}

// InitResult contains the result of initialization.
type InitResult struct {
	ConfigPath string `json:"config_path"`
	RolesPath  string `json:"roles_path"`
	Backend    string `json:"backend"`
	DataPath   string `json:"data_path"`
}

// Handle writes the default configuration and creates the data and backup
// directories.
func (h *InitHandler) Handle(ctx context.Context, basePath string) (*InitResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if config.Exists(basePath) {
		return nil, fmt.Errorf("studiodb already initialized in %s", basePath)
	}

	if err := config.WriteDefault(basePath); err != nil {
		return nil, fmt.Errorf("writing default config: %w", err)
	}

	cfg, err := config.Load(basePath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	dataPath := cfg.Store.DataDir
	if cfg.Store.Backend == config.BackendSQLite {
		dataPath = cfg.Store.SQLitePath
	} else if err := os.MkdirAll(cfg.Store.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.MkdirAll(cfg.Backup.Dir, 0755); err != nil {
		return nil, fmt.Errorf("creating backup directory: %w", err)
	}

	return &InitResult{
		ConfigPath: config.ConfigFilePath(basePath),
		RolesPath:  config.RolesFilePath(basePath),
		Backend:    cfg.Store.Backend,
		DataPath:   dataPath,
	}, nil
}

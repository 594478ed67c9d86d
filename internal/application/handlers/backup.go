package handlers

import (
	"context"

	"github.com/caspermolin/website-sub000/internal/domain/entities"
	"github.com/caspermolin/website-sub000/internal/domain/services"
)

// BackupHandler handles collection snapshots.
type BackupHandler struct {
	service *services.BackupService
}

// NewBackupHandler creates a new backup handler.
func NewBackupHandler(service *services.BackupService) *BackupHandler {
	return &BackupHandler{
		service: service,
	}
}

// HandleCreate snapshots every collection.
func (h *BackupHandler) HandleCreate(ctx context.Context) (entities.BackupInfo, error) {
	return h.service.Create(ctx)
}

// HandleList returns the available backups, newest first.
func (h *BackupHandler) HandleList(ctx context.Context) ([]entities.BackupInfo, error) {
	return h.service.List(ctx)
}

// HandleRestore replaces every collection held by the named backup.
func (h *BackupHandler) HandleRestore(ctx context.Context, name string) ([]entities.Collection, error) {
	return h.service.Restore(ctx, name)
}

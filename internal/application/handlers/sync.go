package handlers

import (
	"context"

	"github.com/caspermolin/website-sub000/internal/domain/services"
)

// SyncHandler handles person reconciliation runs.
type SyncHandler struct {
	service *services.ReconcileService
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(service *services.ReconcileService) *SyncHandler {
	return &SyncHandler{
		service: service,
	}
}

// Handle runs a sync for the named mode ("people" or "freelancers").
func (h *SyncHandler) Handle(ctx context.Context, mode string, dryRun bool) (*services.SyncResult, error) {
	m, err := services.ParseSyncMode(mode)
	if err != nil {
		return nil, err
	}
	return h.service.Sync(ctx, m, services.SyncOptions{DryRun: dryRun})
}

// HandleNames returns every known person name.
func (h *SyncHandler) HandleNames(ctx context.Context) []string {
	return h.service.ListKnownNames(ctx)
}

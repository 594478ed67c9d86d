package handlers

import (
	"context"

	"github.com/caspermolin/website-sub000/internal/domain/services"
)

// NormalizeHandler handles credit normalization runs.
type NormalizeHandler struct {
	service *services.NormalizeService
}

// NewNormalizeHandler creates a new normalize handler.
func NewNormalizeHandler(service *services.NormalizeService) *NormalizeHandler {
	return &NormalizeHandler{
		service: service,
	}
}

// Handle normalizes every project's credits.
func (h *NormalizeHandler) Handle(ctx context.Context, dryRun bool) (*services.NormalizeReport, error) {
	return h.service.Run(ctx, services.NormalizeOptions{DryRun: dryRun})
}

package ports

import (
	"context"

	"github.com/caspermolin/website-sub000/internal/domain/entities"
)

// AuditLog is implemented by stores that can record pipeline actions.
// Services probe for it with a type assertion on their CollectionStore.
type AuditLog interface {
	// LogAction logs an action to the audit log.
	LogAction(ctx context.Context, action string, collection entities.Collection, details map[string]any) error

	// FindAuditLogByAction finds audit log entries by action type, newest first.
	FindAuditLogByAction(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error)
}

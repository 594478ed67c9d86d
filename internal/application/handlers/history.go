package handlers

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/caspermolin/website-sub000/internal/domain/entities"
	"github.com/caspermolin/website-sub000/internal/domain/ports"
)

// ErrNoAuditLog is returned when the configured store keeps no audit log.
var ErrNoAuditLog = errors.New("audit log not available for this store backend")

// HistoryActions lists the actions recorded in the audit log.
var HistoryActions = []string{
	entities.AuditSyncPeople,
	entities.AuditSyncFreelancers,
	entities.AuditNormalize,
	entities.AuditImport,
	entities.AuditRestore,
}

// HistoryHandler reads pipeline runs back from the audit log.
type HistoryHandler struct {
	auditLog ports.AuditLog
}

// NewHistoryHandler creates a new history handler. auditLog may be nil.
func NewHistoryHandler(auditLog ports.AuditLog) *HistoryHandler {
	return &HistoryHandler{
		auditLog: auditLog,
	}
}

// Handle returns up to limit entries for action, or for every action when
// action is empty.
func (h *HistoryHandler) Handle(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	if h.auditLog == nil {
		return nil, ErrNoAuditLog
	}

	actions := HistoryActions
	if action != "" {
		if !slices.Contains(HistoryActions, action) {
			return nil, fmt.Errorf("invalid action %q, valid actions: %v", action, HistoryActions)
		}
		actions = []string{action}
	}

	var all []entities.AuditEntry
	for _, a := range actions {
		found, err := h.auditLog.FindAuditLogByAction(ctx, a, limit)
		if err != nil {
			return nil, fmt.Errorf("reading %s history: %w", a, err)
		}
		all = append(all, found...)
	}

	sortNewestFirst(all)
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func sortNewestFirst(entries []entities.AuditEntry) {
	slices.SortFunc(entries, func(a, b entities.AuditEntry) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
}

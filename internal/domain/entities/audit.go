package entities

import "time"

// Audit actions recorded by the pipeline.
const (
	AuditSyncPeople      = "sync_people"
	AuditSyncFreelancers = "sync_freelancers"
	AuditNormalize       = "normalize_credits"
	AuditImport          = "import"
	AuditRestore         = "restore_backup"
)

// AuditEntry represents a logged action in the system.
type AuditEntry struct {
	ID         int64          `json:"id"`
	Action     string         `json:"action"`
	Collection string         `json:"collection,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

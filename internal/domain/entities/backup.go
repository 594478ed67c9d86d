package entities

import "time"

// Snapshot is the content of every collection at one point in time.
type Snapshot map[Collection][]Record

// BackupInfo describes a stored snapshot.
type BackupInfo struct {
	Name      string    `json:"name"`
	Path      string    `json:"path,omitempty"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"date"`
}

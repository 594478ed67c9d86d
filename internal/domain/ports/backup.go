package ports

import (
	"context"

	"github.com/caspermolin/website-sub000/internal/domain/entities"
)

// BackupArchive stores collection snapshots.
type BackupArchive interface {
	// Save stores the snapshot under name.
	Save(ctx context.Context, name string, snapshot entities.Snapshot) (entities.BackupInfo, error)

	// Load reads a snapshot back. Unknown names return ErrNotFound.
	Load(ctx context.Context, name string) (entities.Snapshot, error)

	// List returns every stored snapshot, newest first.
	List(ctx context.Context) ([]entities.BackupInfo, error)
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caspermolin/website-sub000/internal/domain/entities"
	"github.com/caspermolin/website-sub000/internal/domain/ports"
	"github.com/caspermolin/website-sub000/internal/logging"
)

const backupTimeLayout = "2006-01-02T15:04:05.000Z"

// BackupName returns the backup name for a point in time: the UTC ISO-8601
// timestamp with ':' and '.' replaced by '-', e.g.
// backup-2026-01-02T03-04-05-678Z.
func BackupName(t time.Time) string {
	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(t.UTC().Format(backupTimeLayout))
	return "backup-" + stamp
}

// BackupService snapshots and restores the collections.
type BackupService struct {
	store   ports.CollectionStore
	archive ports.BackupArchive
	logger  *slog.Logger
	now     func() time.Time
}

// NewBackupService creates a new BackupService.
func NewBackupService(store ports.CollectionStore, archive ports.BackupArchive, logger *slog.Logger) *BackupService {
	return &BackupService{
		store:   store,
		archive: archive,
		logger:  logging.NewComponentLogger(logger, "backup"),
		now:     time.Now,
	}
}

// Create snapshots every collection into a new backup.
func (s *BackupService) Create(ctx context.Context) (entities.BackupInfo, error) {
	snapshot := make(entities.Snapshot, len(entities.AllCollections))
	for _, c := range entities.AllCollections {
		recs, err := s.store.List(ctx, c)
		if err != nil {
			return entities.BackupInfo{}, fmt.Errorf("reading %s: %w", c, err)
		}
		snapshot[c] = recs
	}

	info, err := s.archive.Save(ctx, BackupName(s.now()), snapshot)
	if err != nil {
		return entities.BackupInfo{}, fmt.Errorf("saving backup: %w", err)
	}
	s.logger.Info("backup created", logging.String("backup", info.Name), logging.String("path", info.Path))
	return info, nil
}

// List returns the stored backups, newest first.
func (s *BackupService) List(ctx context.Context) ([]entities.BackupInfo, error) {
	infos, err := s.archive.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing backups: %w", err)
	}
	return infos, nil
}

// Restore overwrites every collection present in the named backup and
// returns the restored collections.
func (s *BackupService) Restore(ctx context.Context, name string) ([]entities.Collection, error) {
	snapshot, err := s.archive.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("loading backup: %w", err)
	}

	var restored []entities.Collection
	for _, c := range entities.AllCollections {
		recs, ok := snapshot[c]
		if !ok {
			continue
		}
		if err := s.store.ReplaceAll(ctx, c, recs); err != nil {
			return restored, fmt.Errorf("restoring %s: %w", c, err)
		}
		restored = append(restored, c)
	}
	s.logger.Info("backup restored", logging.String("backup", name), logging.Int("collections", len(restored)))
	s.audit(ctx, name, restored)
	return restored, nil
}

func (s *BackupService) audit(ctx context.Context, name string, restored []entities.Collection) {
	auditLog, ok := s.store.(ports.AuditLog)
	if !ok {
		return
	}
	details := map[string]any{"backup": name, "collections": len(restored)}
	if err := auditLog.LogAction(ctx, entities.AuditRestore, "", details); err != nil {
		s.logger.Warn("failed to write audit entry", logging.Error(err))
	}
}

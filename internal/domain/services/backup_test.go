package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caspermolin/website-sub000/internal/domain/entities"
	"github.com/caspermolin/website-sub000/internal/domain/mocks"
	"github.com/caspermolin/website-sub000/internal/domain/ports"
)

type memoryArchive struct {
	saved   map[string]entities.Snapshot
	saveErr error
}

func (a *memoryArchive) Save(_ context.Context, name string, snapshot entities.Snapshot) (entities.BackupInfo, error) {
	if a.saveErr != nil {
		return entities.BackupInfo{}, a.saveErr
	}
	if a.saved == nil {
		a.saved = map[string]entities.Snapshot{}
	}
	a.saved[name] = snapshot
	return entities.BackupInfo{Name: name}, nil
}

func (a *memoryArchive) Load(_ context.Context, name string) (entities.Snapshot, error) {
	snapshot, ok := a.saved[name]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return snapshot, nil
}

func (a *memoryArchive) List(_ context.Context) ([]entities.BackupInfo, error) {
	var out []entities.BackupInfo
	for name := range a.saved {
		out = append(out, entities.BackupInfo{Name: name})
	}
	return out, nil
}

func TestBackupName(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 678_000_000, time.UTC)
	assert.Equal(t, "backup-2026-01-02T03-04-05-678Z", BackupName(ts))
}

func TestBackupService_CreateAndRestore(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewCollectionStore()
	store.Seed(entities.CollectionPeople, record(t, `{"id":"1","name":"Dana"}`))
	archive := &memoryArchive{}

	service := NewBackupService(store, archive, nil)
	service.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	info, err := service.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, "backup-2026-01-02T03-04-05-000Z", info.Name)

	snapshot := archive.saved[info.Name]
	assert.Len(t, snapshot, len(entities.AllCollections))
	assert.Len(t, snapshot[entities.CollectionPeople], 1)

	store.Seed(entities.CollectionPeople)
	restored, err := service.Restore(ctx, info.Name)
	require.NoError(t, err)
	assert.Len(t, restored, len(entities.AllCollections))
	require.Len(t, store.Data[entities.CollectionPeople], 1)
	assert.Equal(t, "Dana", store.Data[entities.CollectionPeople][0].String("name"))
}

func TestBackupService_Create_ReadError(t *testing.T) {
	store := mocks.NewCollectionStore()
	store.ListErr = map[entities.Collection]error{entities.CollectionNews: errors.New("broken")}

	service := NewBackupService(store, &memoryArchive{}, nil)
	_, err := service.Create(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading news")
}

func TestBackupService_Restore_Unknown(t *testing.T) {
	service := NewBackupService(mocks.NewCollectionStore(), &memoryArchive{}, nil)

	_, err := service.Restore(context.Background(), "backup-missing")
	assert.True(t, errors.Is(err, ports.ErrNotFound))
}

func TestBackupService_Restore_Audits(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewAuditingStore()
	archive := &memoryArchive{saved: map[string]entities.Snapshot{
		"backup-a": {entities.CollectionNews: {record(t, `{"id":"n1","title":"Hi"}`)}},
	}}

	restored, err := NewBackupService(store, archive, nil).Restore(ctx, "backup-a")
	require.NoError(t, err)
	assert.Equal(t, []entities.Collection{entities.CollectionNews}, restored)

	require.Len(t, store.Entries, 1)
	assert.Equal(t, entities.AuditRestore, store.Entries[0].Action)
	assert.Equal(t, "backup-a", store.Entries[0].Details["backup"])
	assert.Equal(t, 1, store.Entries[0].Details["collections"])
}

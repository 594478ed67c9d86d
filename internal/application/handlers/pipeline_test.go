package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caspermolin/website-sub000/internal/domain/entities"
	"github.com/caspermolin/website-sub000/internal/domain/mocks"
	"github.com/caspermolin/website-sub000/internal/domain/services"
	"github.com/caspermolin/website-sub000/internal/infrastructure/backupdir"
	"github.com/caspermolin/website-sub000/internal/logging"
)

func seededStudio(t *testing.T) *mocks.AuditingStore {
	t.Helper()
	store := mocks.NewAuditingStore()
	store.Seed(entities.CollectionFreelancers, record(t, map[string]any{"id": "f1", "name": "Bob"}))
	store.Seed(entities.CollectionProjects, record(t, map[string]any{
		"id":      "p1",
		"title":   "Film",
		"credits": map[string]any{"ADR": []string{"Bob", "Carol"}},
	}))
	return store
}

func TestSyncHandler_Handle(t *testing.T) {
	ctx := context.Background()
	store := seededStudio(t)
	handler := NewSyncHandler(services.NewReconcileService(store, services.ReconcileOptions{StudioName: "Studio"}, logging.NewNop()))

	result, err := handler.Handle(ctx, "freelancers", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Carol"}, result.Names)
	assert.Zero(t, store.CreateCalls)

	result, err = handler.Handle(ctx, "freelancers", false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Len(t, store.Data[entities.CollectionFreelancers], 2)

	assert.Equal(t, []string{"Bob", "Carol"}, handler.HandleNames(ctx))

	_, err = handler.Handle(ctx, "crew", false)
	require.Error(t, err)
}

func TestNormalizeHandler_Handle(t *testing.T) {
	ctx := context.Background()
	store := seededStudio(t)
	handler := NewNormalizeHandler(services.NewNormalizeService(store, services.NewNormalizer(entities.DefaultRoleTable()), logging.NewNop()))

	report, err := handler.Handle(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, []string{"Film"}, report.Projects)

	// Second run converges.
	report, err = handler.Handle(ctx, false)
	require.NoError(t, err)
	assert.Zero(t, report.Updated)
	assert.Equal(t, 1, report.Unchanged)
}

func TestHistoryHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("no audit log", func(t *testing.T) {
		_, err := NewHistoryHandler(nil).Handle(ctx, "", 10)
		require.ErrorIs(t, err, ErrNoAuditLog)
	})

	t.Run("merges actions newest first", func(t *testing.T) {
		store := mocks.NewAuditingStore()
		base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		store.Entries = []entities.AuditEntry{
			{ID: 1, Action: entities.AuditSyncPeople, CreatedAt: base},
			{ID: 2, Action: entities.AuditNormalize, CreatedAt: base.Add(time.Minute)},
			{ID: 3, Action: entities.AuditSyncPeople, CreatedAt: base.Add(2 * time.Minute)},
		}
		handler := NewHistoryHandler(store)

		entries, err := handler.Handle(ctx, "", 0)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, []int64{3, 2, 1}, []int64{entries[0].ID, entries[1].ID, entries[2].ID})

		entries, err = handler.Handle(ctx, entities.AuditSyncPeople, 1)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, int64(3), entries[0].ID)
	})

	t.Run("invalid action", func(t *testing.T) {
		_, err := NewHistoryHandler(mocks.NewAuditingStore()).Handle(ctx, "delete_all", 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid action")
	})
}

func TestBackupHandler(t *testing.T) {
	ctx := context.Background()
	store := seededStudio(t)
	handler := NewBackupHandler(services.NewBackupService(store, backupdir.New(t.TempDir()), logging.NewNop()))

	info, err := handler.HandleCreate(ctx)
	require.NoError(t, err)
	assert.Contains(t, info.Name, "backup-")

	list, err := handler.HandleList(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, info.Name, list[0].Name)

	store.Seed(entities.CollectionFreelancers)
	restored, err := handler.HandleRestore(ctx, info.Name)
	require.NoError(t, err)
	assert.Contains(t, restored, entities.CollectionFreelancers)
	assert.Len(t, store.Data[entities.CollectionFreelancers], 1)

	store.ReplaceErr = errors.New("disk full")
	_, err = handler.HandleRestore(ctx, info.Name)
	require.Error(t, err)
}

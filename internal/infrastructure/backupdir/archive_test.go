package backupdir

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caspermolin/website-sub000/internal/domain/entities"
	"github.com/caspermolin/website-sub000/internal/domain/ports"
)

func rec(t *testing.T, js string) entities.Record {
	t.Helper()
	var r entities.Record
	require.NoError(t, json.Unmarshal([]byte(js), &r))
	return r
}

func TestArchive_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	archive := New(filepath.Join(t.TempDir(), "backups"))

	snapshot := entities.Snapshot{
		entities.CollectionPeople:   {rec(t, `{"id":"1","name":"Dana"}`)},
		entities.CollectionProjects: nil,
	}

	info, err := archive.Save(ctx, "backup-2026-01-02T03-04-05-000Z", snapshot)
	require.NoError(t, err)
	assert.Equal(t, "backup-2026-01-02T03-04-05-000Z", info.Name)
	assert.Positive(t, info.Size)

	loaded, err := archive.Load(ctx, info.Name)
	require.NoError(t, err)
	require.Len(t, loaded[entities.CollectionPeople], 1)
	assert.Equal(t, "Dana", loaded[entities.CollectionPeople][0].String("name"))
	assert.NotNil(t, loaded[entities.CollectionProjects])
	assert.Empty(t, loaded[entities.CollectionProjects])
}

func TestArchive_Load_Missing(t *testing.T) {
	archive := New(t.TempDir())

	_, err := archive.Load(context.Background(), "backup-nope")
	assert.True(t, errors.Is(err, ports.ErrNotFound))
}

func TestArchive_RejectsPathNames(t *testing.T) {
	archive := New(t.TempDir())

	for _, name := range []string{"", "..", "../etc/passwd", `a\b`} {
		_, err := archive.Save(context.Background(), name, entities.Snapshot{})
		assert.ErrorIs(t, err, ports.ErrInvalidInput, name)

		_, err = archive.Load(context.Background(), name)
		assert.ErrorIs(t, err, ports.ErrInvalidInput, name)
	}
}

func TestArchive_List_NewestFirst(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	archive := New(dir)

	_, err := archive.Save(ctx, "backup-old", entities.Snapshot{})
	require.NoError(t, err)
	_, err = archive.Save(ctx, "backup-new", entities.Snapshot{})
	require.NoError(t, err)

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "backup-old.json"), old, old))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	infos, err := archive.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "backup-new", infos[0].Name)
	assert.Equal(t, "backup-old", infos[1].Name)
}

func TestArchive_List_MissingDir(t *testing.T) {
	archive := New(filepath.Join(t.TempDir(), "absent"))

	infos, err := archive.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, infos)
}

// Package backupdir stores collection snapshots as JSON files in a directory.
package backupdir

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/caspermolin/website-sub000/internal/domain/entities"
	"github.com/caspermolin/website-sub000/internal/domain/ports"
	"github.com/caspermolin/website-sub000/internal/fileutil"
)

const fileExt = ".json"

// Archive implements ports.BackupArchive on a directory.
type Archive struct {
	dir string
}

// New creates an Archive rooted at dir. The directory is created on first save.
func New(dir string) *Archive {
	return &Archive{dir: dir}
}

// Dir returns the backup directory.
func (a *Archive) Dir() string {
	return a.dir
}

// Save writes the snapshot to <dir>/<name>.json.
func (a *Archive) Save(_ context.Context, name string, snapshot entities.Snapshot) (entities.BackupInfo, error) {
	path, err := a.path(name)
	if err != nil {
		return entities.BackupInfo{}, err
	}

	out := make(map[string][]entities.Record, len(snapshot))
	for c, recs := range snapshot {
		if recs == nil {
			recs = []entities.Record{}
		}
		out[string(c)] = recs
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return entities.BackupInfo{}, fmt.Errorf("encoding backup: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return entities.BackupInfo{}, fmt.Errorf("writing backup %s: %w", name, err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		return entities.BackupInfo{}, fmt.Errorf("stat backup %s: %w", name, err)
	}
	return infoFor(path, stat), nil
}

// Load reads a snapshot. Collections not named in entities.AllCollections
// are ignored.
func (a *Archive) Load(_ context.Context, name string) (entities.Snapshot, error) {
	path, err := a.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("backup %s: %w", name, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading backup %s: %w", name, err)
	}

	var raw map[string][]entities.Record
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing backup %s: %w", name, err)
	}
	snapshot := make(entities.Snapshot, len(raw))
	for key, recs := range raw {
		c := entities.Collection(key)
		if !c.IsValid() {
			continue
		}
		snapshot[c] = recs
	}
	return snapshot, nil
}

// List returns every backup in the directory, newest first. A missing
// directory yields an empty list.
func (a *Archive) List(_ context.Context) ([]entities.BackupInfo, error) {
	entries, err := os.ReadDir(a.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []entities.BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading backup dir: %w", err)
	}

	infos := make([]entities.BackupInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		stat, err := entry.Info()
		if err != nil {
			continue
		}
		infos = append(infos, infoFor(filepath.Join(a.dir, entry.Name()), stat))
	}

	sort.SliceStable(infos, func(i, j int) bool {
		if !infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].CreatedAt.After(infos[j].CreatedAt)
		}
		return infos[i].Name > infos[j].Name
	})
	return infos, nil
}

func (a *Archive) path(name string) (string, error) {
	name = strings.TrimSuffix(strings.TrimSpace(name), fileExt)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: backup name %q", ports.ErrInvalidInput, name)
	}
	return filepath.Join(a.dir, name+fileExt), nil
}

func infoFor(path string, stat os.FileInfo) entities.BackupInfo {
	return entities.BackupInfo{
		Name:      strings.TrimSuffix(stat.Name(), fileExt),
		Path:      path,
		Size:      stat.Size(),
		CreatedAt: stat.ModTime().UTC(),
	}
}

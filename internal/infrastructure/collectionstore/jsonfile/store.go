// Package jsonfile provides a CollectionStore that keeps each collection in
// a JSON array file.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/caspermolin/website-sub000/internal/domain/entities"
	"github.com/caspermolin/website-sub000/internal/domain/ports"
	"github.com/caspermolin/website-sub000/internal/fileutil"
	"github.com/caspermolin/website-sub000/internal/logging"
)

const (
	lockFileName   = ".studiodb.lock"
	lockRetryDelay = 50 * time.Millisecond
)

// Store implements ports.CollectionStore on <dir>/<collection>.json files.
// Writers hold an exclusive lock on a lock file in dir for the whole
// read-modify-write cycle; readers hold a shared lock.
type Store struct {
	dir    string
	lock   *flock.Flock
	mu     sync.Mutex
	logger *slog.Logger
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &Store{
		dir:    dir,
		lock:   flock.New(filepath.Join(dir, lockFileName)),
		logger: logging.NewComponentLogger(logger, "jsonfile"),
	}, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// List returns every record of the collection.
func (s *Store) List(ctx context.Context, collection entities.Collection) ([]entities.Record, error) {
	if !collection.IsValid() {
		return nil, fmt.Errorf("%w %q", ports.ErrUnknownCollection, collection)
	}

	var recs []entities.Record
	err := s.withLock(ctx, false, func() error {
		var err error
		recs, err = s.read(collection)
		return err
	})
	return recs, err
}

// Create appends a record.
func (s *Store) Create(ctx context.Context, collection entities.Collection, record entities.Record) error {
	id := record.ID()
	if id == "" {
		return fmt.Errorf("creating record in %s: id is required", collection)
	}
	return s.mutate(ctx, collection, func(recs []entities.Record) ([]entities.Record, error) {
		if indexOf(recs, id) >= 0 {
			return nil, fmt.Errorf("%s %q: %w", collection, id, ports.ErrDuplicateID)
		}
		return append(recs, record.Clone()), nil
	})
}

// Update shallow-merges record onto the stored record with the same id.
func (s *Store) Update(ctx context.Context, collection entities.Collection, record entities.Record) error {
	id := record.ID()
	return s.mutate(ctx, collection, func(recs []entities.Record) ([]entities.Record, error) {
		idx := indexOf(recs, id)
		if idx < 0 {
			return nil, fmt.Errorf("%s %q: %w", collection, id, ports.ErrNotFound)
		}
		recs[idx] = recs[idx].Merge(record)
		return recs, nil
	})
}

// Delete removes the record with the given id.
func (s *Store) Delete(ctx context.Context, collection entities.Collection, id string) error {
	return s.mutate(ctx, collection, func(recs []entities.Record) ([]entities.Record, error) {
		idx := indexOf(recs, id)
		if idx < 0 {
			return nil, fmt.Errorf("%s %q: %w", collection, id, ports.ErrNotFound)
		}
		return append(recs[:idx], recs[idx+1:]...), nil
	})
}

// BulkDelete removes every record whose id is listed.
func (s *Store) BulkDelete(ctx context.Context, collection entities.Collection, ids []string) (int, error) {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	removed := 0
	err := s.mutate(ctx, collection, func(recs []entities.Record) ([]entities.Record, error) {
		kept := recs[:0]
		for _, rec := range recs {
			if drop[rec.ID()] {
				removed++
				continue
			}
			kept = append(kept, rec)
		}
		if removed == 0 {
			return nil, errUnchanged
		}
		return kept, nil
	})
	if errors.Is(err, errUnchanged) {
		return 0, nil
	}
	return removed, err
}

// ReplaceAll overwrites the collection file.
func (s *Store) ReplaceAll(ctx context.Context, collection entities.Collection, records []entities.Record) error {
	if !collection.IsValid() {
		return fmt.Errorf("%w %q", ports.ErrUnknownCollection, collection)
	}
	return s.withLock(ctx, true, func() error {
		return s.write(collection, records)
	})
}

// Close releases the lock file handle.
func (s *Store) Close() error {
	return s.lock.Close()
}

var errUnchanged = errors.New("collection unchanged")

// mutate runs a read-modify-write cycle under the exclusive lock.
func (s *Store) mutate(ctx context.Context, collection entities.Collection, fn func([]entities.Record) ([]entities.Record, error)) error {
	if !collection.IsValid() {
		return fmt.Errorf("%w %q", ports.ErrUnknownCollection, collection)
	}
	return s.withLock(ctx, true, func() error {
		recs, err := s.read(collection)
		if err != nil {
			return err
		}
		updated, err := fn(recs)
		if err != nil {
			return err
		}
		return s.write(collection, updated)
	})
}

func (s *Store) withLock(ctx context.Context, exclusive bool, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		locked bool
		err    error
	)
	if exclusive {
		locked, err = s.lock.TryLockContext(ctx, lockRetryDelay)
	} else {
		locked, err = s.lock.TryRLockContext(ctx, lockRetryDelay)
	}
	if err != nil {
		return fmt.Errorf("acquiring data lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("acquiring data lock: %s is held by another process", s.lock.Path())
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warn("failed to release data lock", logging.Error(err))
		}
	}()

	return fn()
}

func (s *Store) path(collection entities.Collection) string {
	return filepath.Join(s.dir, string(collection)+".json")
}

func (s *Store) read(collection entities.Collection) ([]entities.Record, error) {
	data, err := os.ReadFile(s.path(collection))
	if errors.Is(err, os.ErrNotExist) {
		return []entities.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", collection, err)
	}

	var recs []entities.Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", collection, err)
	}
	if recs == nil {
		recs = []entities.Record{}
	}
	return recs, nil
}

func (s *Store) write(collection entities.Collection, recs []entities.Record) error {
	if recs == nil {
		recs = []entities.Record{}
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", collection, err)
	}
	data = append(data, '\n')
	if err := fileutil.WriteFileAtomic(s.path(collection), data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", collection, err)
	}
	s.logger.Debug("collection written",
		logging.String(logging.FieldCollection, string(collection)),
		logging.Int("records", len(recs)),
	)
	return nil
}

func indexOf(recs []entities.Record, id string) int {
	if id == "" {
		return -1
	}
	for i, rec := range recs {
		if rec.ID() == id {
			return i
		}
	}
	return -1
}

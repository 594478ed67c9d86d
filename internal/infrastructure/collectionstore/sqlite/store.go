// Package sqlite provides a SQLite implementation of the CollectionStore and
// AuditLog interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/caspermolin/website-sub000/internal/domain/entities"
	"github.com/caspermolin/website-sub000/internal/domain/ports"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// Store implements ports.CollectionStore and ports.AuditLog using SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the database at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// A single connection serializes writers and keeps :memory: databases
	// shared across calls.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read/write performance
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Set busy timeout to avoid "database is locked" errors
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return &Store{
		db:   db,
		path: path,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	schema := `
	-- Collection records, one JSON object per row in insertion order
	CREATE TABLE IF NOT EXISTS records (
		collection TEXT NOT NULL,
		position INTEGER NOT NULL,
		id TEXT NOT NULL,
		data TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (collection, position)
	);
	CREATE INDEX IF NOT EXISTS idx_records_id ON records(collection, id);

	-- Audit log (tracks pipeline actions)
	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		action TEXT NOT NULL,
		collection TEXT,
		details TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action);
	CREATE INDEX IF NOT EXISTS idx_audit_log_created ON audit_log(created_at);
	`

	_, err := s.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// List returns every record of the collection in insertion order.
func (s *Store) List(ctx context.Context, collection entities.Collection) ([]entities.Record, error) {
	if !collection.IsValid() {
		return nil, fmt.Errorf("%w %q", ports.ErrUnknownCollection, collection)
	}

	query := `SELECT data FROM records WHERE collection = ? ORDER BY position`
	rows, err := s.db.QueryContext(ctx, query, string(collection))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", collection, err)
	}
	defer rows.Close()

	recs := []entities.Record{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		var rec entities.Record
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("decoding %s record: %w", collection, err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Create appends a record.
func (s *Store) Create(ctx context.Context, collection entities.Collection, record entities.Record) error {
	id := record.ID()
	if id == "" {
		return fmt.Errorf("creating record in %s: id is required", collection)
	}

	return s.withTx(ctx, collection, func(tx *sql.Tx) error {
		exists, err := recordExists(ctx, tx, collection, id)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%s %q: %w", collection, id, ports.ErrDuplicateID)
		}

		var next int
		query := `SELECT COALESCE(MAX(position), -1) + 1 FROM records WHERE collection = ?`
		if err := tx.QueryRowContext(ctx, query, string(collection)).Scan(&next); err != nil {
			return fmt.Errorf("reading position: %w", err)
		}
		return insertRecord(ctx, tx, collection, next, record)
	})
}

// Update shallow-merges record onto the stored record with the same id.
func (s *Store) Update(ctx context.Context, collection entities.Collection, record entities.Record) error {
	id := record.ID()

	return s.withTx(ctx, collection, func(tx *sql.Tx) error {
		query := `SELECT position, data FROM records WHERE collection = ? AND id = ? ORDER BY position LIMIT 1`
		var (
			position int
			data     string
		)
		err := tx.QueryRowContext(ctx, query, string(collection), id).Scan(&position, &data)
		if errors.Is(err, sql.ErrNoRows) || id == "" {
			return fmt.Errorf("%s %q: %w", collection, id, ports.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("reading record: %w", err)
		}

		var stored entities.Record
		if err := json.Unmarshal([]byte(data), &stored); err != nil {
			return fmt.Errorf("decoding %s record: %w", collection, err)
		}
		merged, err := json.Marshal(stored.Merge(record))
		if err != nil {
			return fmt.Errorf("encoding record: %w", err)
		}

		update := `UPDATE records SET data = ?, updated_at = ? WHERE collection = ? AND position = ?`
		if _, err := tx.ExecContext(ctx, update, string(merged), timeNow(), string(collection), position); err != nil {
			return fmt.Errorf("updating record: %w", err)
		}
		return nil
	})
}

// Delete removes the record with the given id.
func (s *Store) Delete(ctx context.Context, collection entities.Collection, id string) error {
	return s.withTx(ctx, collection, func(tx *sql.Tx) error {
		n, err := deleteByID(ctx, tx, collection, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%s %q: %w", collection, id, ports.ErrNotFound)
		}
		return nil
	})
}

// BulkDelete removes every record whose id is listed.
func (s *Store) BulkDelete(ctx context.Context, collection entities.Collection, ids []string) (int, error) {
	removed := 0
	err := s.withTx(ctx, collection, func(tx *sql.Tx) error {
		for _, id := range ids {
			n, err := deleteByID(ctx, tx, collection, id)
			if err != nil {
				return err
			}
			removed += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// ReplaceAll overwrites the collection.
func (s *Store) ReplaceAll(ctx context.Context, collection entities.Collection, records []entities.Record) error {
	return s.withTx(ctx, collection, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE collection = ?`, string(collection)); err != nil {
			return fmt.Errorf("clearing %s: %w", collection, err)
		}
		for i, rec := range records {
			if err := insertRecord(ctx, tx, collection, i, rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) withTx(ctx context.Context, collection entities.Collection, fn func(*sql.Tx) error) error {
	if !collection.IsValid() {
		return fmt.Errorf("%w %q", ports.ErrUnknownCollection, collection)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func recordExists(ctx context.Context, tx *sql.Tx, collection entities.Collection, id string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM records WHERE collection = ? AND id = ?`
	if err := tx.QueryRowContext(ctx, query, string(collection), id).Scan(&count); err != nil {
		return false, fmt.Errorf("checking record: %w", err)
	}
	return count > 0, nil
}

func insertRecord(ctx context.Context, tx *sql.Tx, collection entities.Collection, position int, rec entities.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	query := `INSERT INTO records (collection, position, id, data, updated_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, query, string(collection), position, rec.ID(), string(data), timeNow()); err != nil {
		return fmt.Errorf("inserting record: %w", err)
	}
	return nil
}

func deleteByID(ctx context.Context, tx *sql.Tx, collection entities.Collection, id string) (int64, error) {
	if id == "" {
		return 0, nil
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM records WHERE collection = ? AND id = ?`, string(collection), id)
	if err != nil {
		return 0, fmt.Errorf("deleting record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted rows: %w", err)
	}
	return n, nil
}

// LogAction logs an action to the audit log.
func (s *Store) LogAction(ctx context.Context, action string, collection entities.Collection, details map[string]any) error {
	var detailsJSON sql.NullString
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("marshaling details: %w", err)
		}
		detailsJSON = sql.NullString{String: string(data), Valid: true}
	}

	var collectionName sql.NullString
	if collection != "" {
		collectionName = sql.NullString{String: string(collection), Valid: true}
	}

	query := `INSERT INTO audit_log (action, collection, details, created_at) VALUES (?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, action, collectionName, detailsJSON, timeNow())
	if err != nil {
		return fmt.Errorf("logging action: %w", err)
	}
	return nil
}

// FindAuditLogByAction finds audit log entries by action type, newest first.
func (s *Store) FindAuditLogByAction(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `
		SELECT id, action, collection, details, created_at
		FROM audit_log
		WHERE action = ?
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, action, limit)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer rows.Close()

	var entries []entities.AuditEntry
	for rows.Next() {
		var entry entities.AuditEntry
		var collection, details sql.NullString

		if err := rows.Scan(
			&entry.ID,
			&entry.Action,
			&collection,
			&details,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}

		entry.Collection = collection.String

		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &entry.Details); err != nil {
				return nil, fmt.Errorf("unmarshaling details: %w", err)
			}
		}

		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

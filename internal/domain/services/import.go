package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caspermolin/website-sub000/internal/domain/entities"
	"github.com/caspermolin/website-sub000/internal/domain/ports"
	"github.com/caspermolin/website-sub000/internal/infrastructure/parsers"
	"github.com/caspermolin/website-sub000/internal/logging"
)

// ConflictStrategy defines how to handle existing records during import.
type ConflictStrategy string

const (
	// ConflictSkip skips records that already exist (by ID).
	ConflictSkip ConflictStrategy = "skip"
	// ConflictOverwrite replaces existing records with the imported data.
	ConflictOverwrite ConflictStrategy = "overwrite"
)

// ParseConflictStrategy validates a conflict strategy name.
func ParseConflictStrategy(s string) (ConflictStrategy, error) {
	switch ConflictStrategy(s) {
	case ConflictSkip, ConflictOverwrite:
		return ConflictStrategy(s), nil
	default:
		return "", fmt.Errorf("invalid conflict strategy %q (valid: skip, overwrite)", s)
	}
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun     bool             // Validate without saving
	OnConflict ConflictStrategy // How to handle existing records
}

// ImportError represents an error for a specific record during import.
type ImportError struct {
	Line    int    `json:"line"`            // Line number (1-indexed, 0 if unknown)
	Field   string `json:"field,omitempty"` // Which field has the error
	Value   string `json:"value,omitempty"` // The invalid value
	Message string `json:"message"`         // Human-readable error message
}

func (e ImportError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Imported    int           `json:"imported"`
	Overwritten int           `json:"overwritten"`
	Skipped     int           `json:"skipped"`
	Errors      []ImportError `json:"errors,omitempty"`
}

// ImportService handles importing records from external sources.
type ImportService struct {
	store  ports.CollectionStore
	logger *slog.Logger
}

// NewImportService creates a new import service.
func NewImportService(store ports.CollectionStore, logger *slog.Logger) *ImportService {
	return &ImportService{
		store:  store,
		logger: logging.NewComponentLogger(logger, "import"),
	}
}

// Import validates raw records and merges them into the collection with a
// single whole-collection write. Invalid rows are reported in the result and
// do not stop the import.
func (s *ImportService) Import(ctx context.Context, collection entities.Collection, raws []parsers.RawRecord, opts ImportOptions) (*ImportResult, error) {
	if !collection.IsValid() {
		return nil, fmt.Errorf("%w %q", entities.ErrUnknownCollection, collection)
	}
	if opts.OnConflict == "" {
		opts.OnConflict = ConflictSkip
	}

	existing, err := s.store.List(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", collection, err)
	}

	result := &ImportResult{}
	merged, changed := s.merge(collection, existing, raws, opts.OnConflict, result)

	if opts.DryRun || !changed {
		return result, nil
	}

	if err := s.store.ReplaceAll(ctx, collection, merged); err != nil {
		return nil, fmt.Errorf("saving %s: %w", collection, err)
	}

	s.logger.Info("import complete",
		logging.String(logging.FieldCollection, string(collection)),
		logging.Int("imported", result.Imported),
		logging.Int("overwritten", result.Overwritten),
		logging.Int("skipped", result.Skipped),
		logging.Int("errors", len(result.Errors)),
	)
	s.audit(ctx, collection, result)

	return result, nil
}

// merge applies raws on top of existing and reports whether anything changed.
func (s *ImportService) merge(collection entities.Collection, existing []entities.Record, raws []parsers.RawRecord, onConflict ConflictStrategy, result *ImportResult) ([]entities.Record, bool) {
	merged := make([]entities.Record, len(existing), len(existing)+len(raws))
	copy(merged, existing)

	index := make(map[string]int, len(existing))
	for i, rec := range existing {
		if id := rec.ID(); id != "" {
			index[id] = i
		}
	}
	imported := make(map[string]int, len(raws))
	changed := false

	for i := range raws {
		raw := &raws[i]
		lineNum := raw.LineNum
		if lineNum == 0 {
			lineNum = i + 1
		}

		if importErr := validateRawRecord(raw.Record, lineNum); importErr != nil {
			result.Errors = append(result.Errors, *importErr)
			continue
		}

		rec, err := prepareRecord(collection, raw.Record, len(merged))
		if err != nil {
			result.Errors = append(result.Errors, ImportError{Line: lineNum, Message: strings.TrimPrefix(err.Error(), ErrInvalidRecord.Error()+": ")})
			continue
		}

		id := rec.ID()
		if prev, dup := imported[id]; dup {
			result.Errors = append(result.Errors, ImportError{
				Line:    lineNum,
				Field:   "id",
				Value:   id,
				Message: fmt.Sprintf("duplicate id %q (first seen on line %d)", id, prev),
			})
			continue
		}
		imported[id] = lineNum

		pos, exists := index[id]
		switch {
		case !exists:
			index[id] = len(merged)
			merged = append(merged, rec)
			result.Imported++
		case onConflict == ConflictOverwrite:
			merged[pos] = rec
			result.Overwritten++
		default:
			result.Skipped++
			continue
		}
		changed = true
	}

	return merged, changed
}

// validateRawRecord checks that a raw record has something to identify it by.
func validateRawRecord(rec entities.Record, lineNum int) *ImportError {
	if strings.TrimSpace(rec.String("name")) == "" && strings.TrimSpace(rec.String("title")) == "" {
		return &ImportError{Line: lineNum, Field: "name", Message: "missing required field: name or title"}
	}
	if raw, ok := rec["id"]; ok && rec.ID() == "" && string(raw) != `""` {
		return &ImportError{Line: lineNum, Field: "id", Value: string(raw), Message: "id must be a string or number"}
	}
	return nil
}

func (s *ImportService) audit(ctx context.Context, collection entities.Collection, result *ImportResult) {
	auditLog, ok := s.store.(ports.AuditLog)
	if !ok {
		return
	}
	details := map[string]any{
		"imported":    result.Imported,
		"overwritten": result.Overwritten,
		"skipped":     result.Skipped,
		"errors":      len(result.Errors),
	}
	if err := auditLog.LogAction(ctx, entities.AuditImport, collection, details); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("failed to write audit entry", logging.Error(err))
	}
}

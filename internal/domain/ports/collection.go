// Package ports defines interfaces for external service communication.
package ports

import (
	"context"
	"errors"

	"github.com/caspermolin/website-sub000/internal/domain/entities"
)

// Sentinel errors returned by CollectionStore implementations.
var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateID       = errors.New("duplicate record id")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnknownCollection = entities.ErrUnknownCollection
)

// CollectionStore reads and writes the flat JSON collections.
// Implementations reject collection names outside entities.AllCollections
// with ErrUnknownCollection.
type CollectionStore interface {
	// List returns every record in insertion order. A collection that has
	// never been written yields an empty slice.
	List(ctx context.Context, collection entities.Collection) ([]entities.Record, error)

	// Create appends a record. The record must carry an id.
	Create(ctx context.Context, collection entities.Collection, record entities.Record) error

	// Update shallow-merges record onto the stored record with the same id.
	Update(ctx context.Context, collection entities.Collection, record entities.Record) error

	// Delete removes the record with the given id.
	Delete(ctx context.Context, collection entities.Collection, id string) error

	// BulkDelete removes every record whose id is in ids and returns how many
	// were removed. Unknown ids are ignored.
	BulkDelete(ctx context.Context, collection entities.Collection, ids []string) (int, error)

	// ReplaceAll overwrites the whole collection.
	ReplaceAll(ctx context.Context, collection entities.Collection, records []entities.Record) error

	// Close releases the store's resources.
	Close() error
}

// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"

	"github.com/caspermolin/website-sub000/internal/domain/entities"
	"github.com/caspermolin/website-sub000/internal/domain/ports"
)

// CollectionStore is an in-memory implementation of ports.CollectionStore
// with error injection.
type CollectionStore struct {
	Data map[entities.Collection][]entities.Record

	// ListErr fails List for the named collections.
	ListErr map[entities.Collection]error
	// CreateErr fails every Create when set.
	CreateErr error
	// CreateFailFor fails Create for records whose label (name, title or id) matches.
	CreateFailFor map[string]error
	// UpdateErr fails every Update when set.
	UpdateErr error
	// UpdateFailFor fails Update for records with the given id.
	UpdateFailFor map[string]error
	DeleteErr     error
	ReplaceErr    error

	// Call tracking
	ListCalls    int
	CreateCalls  int
	UpdateCalls  int
	DeleteCalls  int
	ReplaceCalls int
	Created      []entities.Record
	Updated      []entities.Record
	Closed       bool
}

// NewCollectionStore creates an empty mock store.
func NewCollectionStore() *CollectionStore {
	return &CollectionStore{Data: make(map[entities.Collection][]entities.Record)}
}

// Seed replaces a collection's contents.
func (m *CollectionStore) Seed(collection entities.Collection, records ...entities.Record) *CollectionStore {
	m.Data[collection] = append([]entities.Record(nil), records...)
	return m
}

// List returns a copy of the collection.
func (m *CollectionStore) List(_ context.Context, collection entities.Collection) ([]entities.Record, error) {
	m.ListCalls++
	if !collection.IsValid() {
		return nil, ports.ErrUnknownCollection
	}
	if err := m.ListErr[collection]; err != nil {
		return nil, err
	}
	out := make([]entities.Record, 0, len(m.Data[collection]))
	for _, rec := range m.Data[collection] {
		out = append(out, rec.Clone())
	}
	return out, nil
}

// Create appends the record unless an error is configured.
func (m *CollectionStore) Create(_ context.Context, collection entities.Collection, record entities.Record) error {
	m.CreateCalls++
	if !collection.IsValid() {
		return ports.ErrUnknownCollection
	}
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if err := m.CreateFailFor[record.Label()]; err != nil {
		return err
	}
	if m.indexOf(collection, record.ID()) >= 0 {
		return ports.ErrDuplicateID
	}
	m.Data[collection] = append(m.Data[collection], record.Clone())
	m.Created = append(m.Created, record.Clone())
	return nil
}

// Update merges the record onto the stored one.
func (m *CollectionStore) Update(_ context.Context, collection entities.Collection, record entities.Record) error {
	m.UpdateCalls++
	if !collection.IsValid() {
		return ports.ErrUnknownCollection
	}
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	if err := m.UpdateFailFor[record.ID()]; err != nil {
		return err
	}
	idx := m.indexOf(collection, record.ID())
	if idx < 0 {
		return ports.ErrNotFound
	}
	m.Data[collection][idx] = m.Data[collection][idx].Merge(record)
	m.Updated = append(m.Updated, record.Clone())
	return nil
}

// Delete removes a record.
func (m *CollectionStore) Delete(_ context.Context, collection entities.Collection, id string) error {
	m.DeleteCalls++
	if !collection.IsValid() {
		return ports.ErrUnknownCollection
	}
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	idx := m.indexOf(collection, id)
	if idx < 0 {
		return ports.ErrNotFound
	}
	recs := m.Data[collection]
	m.Data[collection] = append(recs[:idx:idx], recs[idx+1:]...)
	return nil
}

// BulkDelete removes records by id.
func (m *CollectionStore) BulkDelete(_ context.Context, collection entities.Collection, ids []string) (int, error) {
	m.DeleteCalls++
	if !collection.IsValid() {
		return 0, ports.ErrUnknownCollection
	}
	if m.DeleteErr != nil {
		return 0, m.DeleteErr
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := make([]entities.Record, 0, len(m.Data[collection]))
	for _, rec := range m.Data[collection] {
		if !drop[rec.ID()] {
			kept = append(kept, rec)
		}
	}
	removed := len(m.Data[collection]) - len(kept)
	m.Data[collection] = kept
	return removed, nil
}

// ReplaceAll overwrites a collection.
func (m *CollectionStore) ReplaceAll(_ context.Context, collection entities.Collection, records []entities.Record) error {
	m.ReplaceCalls++
	if !collection.IsValid() {
		return ports.ErrUnknownCollection
	}
	if m.ReplaceErr != nil {
		return m.ReplaceErr
	}
	m.Data[collection] = append([]entities.Record(nil), records...)
	return nil
}

// Close marks the store closed.
func (m *CollectionStore) Close() error {
	m.Closed = true
	return nil
}

func (m *CollectionStore) indexOf(collection entities.Collection, id string) int {
	for i, rec := range m.Data[collection] {
		if rec.ID() == id {
			return i
		}
	}
	return -1
}

// AuditingStore is a CollectionStore that also implements ports.AuditLog.
type AuditingStore struct {
	*CollectionStore
	Entries  []entities.AuditEntry
	AuditErr error
}

// NewAuditingStore creates an empty mock store with an audit log.
func NewAuditingStore() *AuditingStore {
	return &AuditingStore{CollectionStore: NewCollectionStore()}
}

// LogAction records the entry in memory.
func (m *AuditingStore) LogAction(_ context.Context, action string, collection entities.Collection, details map[string]any) error {
	if m.AuditErr != nil {
		return m.AuditErr
	}
	m.Entries = append(m.Entries, entities.AuditEntry{
		ID:         int64(len(m.Entries) + 1),
		Action:     action,
		Collection: string(collection),
		Details:    details,
	})
	return nil
}

// FindAuditLogByAction returns matching entries, newest first.
func (m *AuditingStore) FindAuditLogByAction(_ context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	var out []entities.AuditEntry
	for i := len(m.Entries) - 1; i >= 0; i-- {
		if m.Entries[i].Action != action {
			continue
		}
		out = append(out, m.Entries[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

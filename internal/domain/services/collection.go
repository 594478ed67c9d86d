package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/caspermolin/website-sub000/internal/domain/entities"
	"github.com/caspermolin/website-sub000/internal/domain/ports"
	"github.com/caspermolin/website-sub000/internal/logging"
)

// Validation errors returned by CollectionService.
var (
	ErrInvalidRecord = errors.New("invalid record")
	ErrDuplicateName = errors.New("person name already exists")
)

// CollectionService provides validated CRUD over the collections.
type CollectionService struct {
	store  ports.CollectionStore
	logger *slog.Logger
}

// NewCollectionService creates a new CollectionService.
func NewCollectionService(store ports.CollectionStore, logger *slog.Logger) *CollectionService {
	return &CollectionService{
		store:  store,
		logger: logging.NewComponentLogger(logger, "collections"),
	}
}

// List returns every record of the named collection.
func (s *CollectionService) List(ctx context.Context, name string) ([]entities.Record, error) {
	c, err := entities.ParseCollection(name)
	if err != nil {
		return nil, err
	}
	recs, err := s.store.List(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", c, err)
	}
	return recs, nil
}

// Get returns the record with the given id.
func (s *CollectionService) Get(ctx context.Context, name, id string) (entities.Record, error) {
	recs, err := s.List(ctx, name)
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		if rec.ID() == id {
			return rec, nil
		}
	}
	return nil, fmt.Errorf("%s %q: %w", name, id, ports.ErrNotFound)
}

// Add validates and appends a record, filling in defaults. Records without an
// id get one: roles derive it from their name, everything else gets a UUID.
// People and freelancers may not reuse a name already present in either
// collection.
func (s *CollectionService) Add(ctx context.Context, name string, rec entities.Record) (entities.Record, error) {
	c, err := entities.ParseCollection(name)
	if err != nil {
		return nil, err
	}
	existing, err := s.store.List(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", c, err)
	}

	prepared, err := prepareRecord(c, rec, len(existing))
	if err != nil {
		return nil, err
	}
	if c == entities.CollectionPeople || c == entities.CollectionFreelancers {
		if err := s.checkUniqueName(ctx, prepared.String("name")); err != nil {
			return nil, err
		}
	}

	if err := s.store.Create(ctx, c, prepared); err != nil {
		return nil, fmt.Errorf("adding to %s: %w", c, err)
	}
	s.logger.Info("record added",
		logging.String(logging.FieldCollection, string(c)),
		logging.String(logging.FieldRecordID, prepared.ID()),
	)
	return prepared, nil
}

// Update shallow-merges rec onto the stored record with the same id.
func (s *CollectionService) Update(ctx context.Context, name string, rec entities.Record) error {
	c, err := entities.ParseCollection(name)
	if err != nil {
		return err
	}
	if rec.ID() == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidRecord)
	}
	if err := s.store.Update(ctx, c, rec); err != nil {
		return fmt.Errorf("updating %s %q: %w", c, rec.ID(), err)
	}
	return nil
}

// Delete removes a record by id.
func (s *CollectionService) Delete(ctx context.Context, name, id string) error {
	c, err := entities.ParseCollection(name)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, c, id); err != nil {
		return fmt.Errorf("deleting %s %q: %w", c, id, err)
	}
	return nil
}

// BulkDelete removes every record whose id is listed and returns how many
// were removed.
func (s *CollectionService) BulkDelete(ctx context.Context, name string, ids []string) (int, error) {
	c, err := entities.ParseCollection(name)
	if err != nil {
		return 0, err
	}
	removed, err := s.store.BulkDelete(ctx, c, ids)
	if err != nil {
		return 0, fmt.Errorf("deleting from %s: %w", c, err)
	}
	return removed, nil
}

func (s *CollectionService) checkUniqueName(ctx context.Context, name string) error {
	for _, c := range []entities.Collection{entities.CollectionPeople, entities.CollectionFreelancers} {
		recs, err := s.store.List(ctx, c)
		if err != nil {
			return fmt.Errorf("listing %s: %w", c, err)
		}
		for _, rec := range recs {
			if entities.NormalizeName(rec.String("name")) == entities.NormalizeName(name) {
				return fmt.Errorf("%w: %q is in %s", ErrDuplicateName, strings.TrimSpace(name), c)
			}
		}
	}
	return nil
}

// prepareRecord validates rec for collection c and fills in defaults.
// existing is the current size of the collection.
func prepareRecord(c entities.Collection, rec entities.Record, existing int) (entities.Record, error) {
	if rec == nil {
		return nil, fmt.Errorf("%w: record must be an object", ErrInvalidRecord)
	}
	out := rec.Clone()

	switch c {
	case entities.CollectionRoles:
		name := strings.TrimSpace(out.String("name"))
		if name == "" {
			return nil, fmt.Errorf("%w: role name is required", ErrInvalidRecord)
		}
		if err := out.Set("name", name); err != nil {
			return nil, err
		}
		if out.ID() == "" {
			id := entities.RoleID(name)
			if id == "" {
				return nil, fmt.Errorf("%w: cannot derive an id from role name %q", ErrInvalidRecord, name)
			}
			if err := out.Set("id", id); err != nil {
				return nil, err
			}
		}
		if out.String("category") == "" {
			if err := out.Set("category", entities.RoleCategoryAdditional); err != nil {
				return nil, err
			}
		}
		if _, ok := out["order"]; !ok {
			if err := out.Set("order", existing+1); err != nil {
				return nil, err
			}
		}
	case entities.CollectionPeople, entities.CollectionFreelancers:
		name := strings.TrimSpace(out.String("name"))
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidRecord)
		}
		if err := out.Set("name", name); err != nil {
			return nil, err
		}
	}

	if out.ID() == "" {
		if err := out.Set("id", uuid.New().String()); err != nil {
			return nil, err
		}
	}
	return out, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/caspermolin/website-sub000/internal/domain/entities"
	"github.com/caspermolin/website-sub000/internal/domain/ports"
	"github.com/caspermolin/website-sub000/internal/logging"
)

// SyncMode selects the collection that receives reconciled people.
type SyncMode string

const (
	// SyncPeople adds unknown credited names to the people collection.
	SyncPeople SyncMode = "people"
	// SyncFreelancers adds names unknown to both people and freelancers to
	// the freelancers collection.
	SyncFreelancers SyncMode = "freelancers"
)

// ErrUnknownSyncMode is returned for sync modes other than people and freelancers.
var ErrUnknownSyncMode = errors.New("invalid sync mode")

// ParseSyncMode validates a sync mode name.
func ParseSyncMode(s string) (SyncMode, error) {
	switch SyncMode(s) {
	case SyncPeople, SyncFreelancers:
		return SyncMode(s), nil
	default:
		return "", fmt.Errorf("%w %q (valid: people, freelancers)", ErrUnknownSyncMode, s)
	}
}

// Target returns the collection new records are written to.
func (m SyncMode) Target() entities.Collection {
	if m == SyncFreelancers {
		return entities.CollectionFreelancers
	}
	return entities.CollectionPeople
}

// RoleLabel returns the role assigned to records created in this mode.
func (m SyncMode) RoleLabel() string {
	if m == SyncFreelancers {
		return entities.PersonRoleFreelancer
	}
	return entities.PersonRoleCollaborator
}

func (m SyncMode) auditAction() string {
	if m == SyncFreelancers {
		return entities.AuditSyncFreelancers
	}
	return entities.AuditSyncPeople
}

// ReconcileOptions configures the records synthesized by Reconcile.
type ReconcileOptions struct {
	StudioName       string
	PlaceholderImage string
	// NewID generates record ids. Defaults to random UUIDs.
	NewID func() string
}

// ReconcileResult holds the records Reconcile decided to create.
type ReconcileResult struct {
	NewPeople []entities.Person
}

// Reconcile finds credited names that are missing from the known people and
// synthesizes a record for each. In SyncPeople mode only people count as
// known; in SyncFreelancers mode both collections do, so nobody already in
// people is copied into freelancers.
func Reconcile(projects []entities.Project, people, freelancers []entities.Person, mode SyncMode, opts ReconcileOptions) ReconcileResult {
	known := entities.NewNameSet()
	for _, p := range people {
		known.Add(p.Name)
	}

	existing := len(people)
	if mode == SyncFreelancers {
		for _, p := range freelancers {
			known.Add(p.Name)
		}
		existing = len(freelancers)
	}

	newID := opts.NewID
	if newID == nil {
		newID = func() string { return uuid.New().String() }
	}

	role := mode.RoleLabel()
	added := entities.NewNameSet()
	var result ReconcileResult

	for i := range projects {
		for _, raw := range projects[i].CreditedNames() {
			name := strings.TrimSpace(raw)
			if name == "" || known.Has(name) || !added.Add(name) {
				continue
			}
			result.NewPeople = append(result.NewPeople, entities.Person{
				ID:          newID(),
				Name:        name,
				Role:        role,
				Roles:       []string{role},
				Bio:         fmt.Sprintf("%s on %s projects", role, opts.StudioName),
				Image:       opts.PlaceholderImage,
				Specialties: []string{},
				Awards:      []string{},
				Order:       existing + added.Len(),
			})
		}
	}

	return result
}

// ListKnownPersonNames scans the given collections for person names: people
// and freelancers names, every credited name, facility contacts and news
// authors. Names are trimmed, deduplicated case-insensitively keeping the
// first spelling seen, and returned in collation order.
func ListKnownPersonNames(collections map[entities.Collection][]entities.Record) []string {
	set := entities.NewNameSet()

	for _, c := range []entities.Collection{entities.CollectionPeople, entities.CollectionFreelancers} {
		for _, rec := range collections[c] {
			set.Add(rec.String("name"))
		}
	}
	for _, rec := range collections[entities.CollectionProjects] {
		for _, name := range entities.ProjectFromRecord(rec).CreditedNames() {
			set.Add(name)
		}
	}
	for _, rec := range collections[entities.CollectionFacilities] {
		set.Add(rec.String("contact"))
	}
	for _, rec := range collections[entities.CollectionNews] {
		set.Add(rec.String("author"))
	}

	names := set.Names()
	collate.New(language.Und, collate.IgnoreCase).SortStrings(names)
	return names
}

// SyncOptions controls a reconciliation run.
type SyncOptions struct {
	DryRun bool // Compute candidates without writing
}

// SyncResult summarizes a reconciliation run.
type SyncResult struct {
	Mode       SyncMode `json:"mode"`
	Candidates int      `json:"candidates"`
	Created    int      `json:"created"`
	Failed     int      `json:"failed"`
	Names      []string `json:"names"`
	DryRun     bool     `json:"dry_run,omitempty"`
}

// ReconcileService runs Reconcile against a collection store.
type ReconcileService struct {
	store  ports.CollectionStore
	opts   ReconcileOptions
	logger *slog.Logger
}

// NewReconcileService creates a new ReconcileService.
func NewReconcileService(store ports.CollectionStore, opts ReconcileOptions, logger *slog.Logger) *ReconcileService {
	return &ReconcileService{
		store:  store,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "reconcile"),
	}
}

// Sync loads projects, people and freelancers, creates a record in the mode's
// target collection for every unknown credited name and reports the outcome.
// Unreadable collections are treated as empty. Records that fail to save are
// logged and counted in Failed; the run continues.
func (s *ReconcileService) Sync(ctx context.Context, mode SyncMode, opts SyncOptions) (*SyncResult, error) {
	if _, err := ParseSyncMode(string(mode)); err != nil {
		return nil, err
	}

	projects := entities.ProjectsFromRecords(s.load(ctx, entities.CollectionProjects))
	people := entities.PeopleFromRecords(s.load(ctx, entities.CollectionPeople))
	freelancers := entities.PeopleFromRecords(s.load(ctx, entities.CollectionFreelancers))

	planned := Reconcile(projects, people, freelancers, mode, s.opts)
	result := &SyncResult{
		Mode:       mode,
		Candidates: len(planned.NewPeople),
		Names:      []string{},
		DryRun:     opts.DryRun,
	}

	if opts.DryRun {
		for _, p := range planned.NewPeople {
			result.Names = append(result.Names, p.Name)
		}
		return result, nil
	}

	target := mode.Target()
	for _, person := range planned.NewPeople {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("sync %s interrupted: %w", mode, err)
		}
		if err := s.create(ctx, target, person); err != nil {
			result.Failed++
			s.logger.Warn("failed to add person",
				logging.String(logging.FieldCollection, string(target)),
				logging.String("name", person.Name),
				logging.Error(err),
			)
			continue
		}
		result.Created++
		result.Names = append(result.Names, person.Name)
	}

	s.logger.Info("sync complete",
		logging.String(logging.FieldCollection, string(target)),
		logging.Int("candidates", result.Candidates),
		logging.Int("created", result.Created),
		logging.Int("failed", result.Failed),
	)
	s.audit(ctx, mode, result)

	return result, nil
}

// ListKnownNames loads every collection and returns ListKnownPersonNames.
// Unreadable collections are treated as empty.
func (s *ReconcileService) ListKnownNames(ctx context.Context) []string {
	collections := make(map[entities.Collection][]entities.Record, len(entities.AllCollections))
	for _, c := range entities.AllCollections {
		collections[c] = s.load(ctx, c)
	}
	return ListKnownPersonNames(collections)
}

func (s *ReconcileService) load(ctx context.Context, c entities.Collection) []entities.Record {
	recs, err := s.store.List(ctx, c)
	if err != nil {
		s.logger.Warn("collection unavailable, treating as empty",
			logging.String(logging.FieldCollection, string(c)),
			logging.Error(err),
		)
		return nil
	}
	return recs
}

func (s *ReconcileService) create(ctx context.Context, target entities.Collection, person entities.Person) error {
	rec, err := entities.RecordFrom(person)
	if err != nil {
		return err
	}
	return s.store.Create(ctx, target, rec)
}

func (s *ReconcileService) audit(ctx context.Context, mode SyncMode, result *SyncResult) {
	auditLog, ok := s.store.(ports.AuditLog)
	if !ok {
		return
	}
	details := map[string]any{
		"candidates": result.Candidates,
		"created":    result.Created,
		"failed":     result.Failed,
	}
	if err := auditLog.LogAction(ctx, mode.auditAction(), mode.Target(), details); err != nil {
		s.logger.Warn("failed to write audit entry", logging.Error(err))
	}
}

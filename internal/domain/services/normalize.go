package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/caspermolin/website-sub000/internal/domain/entities"
	"github.com/caspermolin/website-sub000/internal/domain/ports"
	"github.com/caspermolin/website-sub000/internal/logging"
)

// ProjectChange is a project whose credits were rewritten.
type ProjectChange struct {
	ID      string
	Title   string
	Credits entities.Credits
}

// Label returns the title, or the id when the project is untitled.
func (c ProjectChange) Label() string {
	if c.Title != "" {
		return c.Title
	}
	return c.ID
}

// MalformedCredit is a credit value that is not a list of names. It is left
// as it was. MovedTo is set when a list resolved to the same key; the value
// is then kept under MovedTo instead.
type MalformedCredit struct {
	ProjectID string
	Project   string
	Key       string
	MovedTo   string
}

// CreditsKey is reported as the MalformedCredit key of a project whose
// credits field is not an object.
const CreditsKey = "credits"

// unparsedSuffix marks a malformed value moved aside by a resolved list.
const unparsedSuffix = " (unparsed)"

// NormalizeResult is the outcome of Normalize.
type NormalizeResult struct {
	Changed   []ProjectChange
	Unchanged int
	// Skipped counts projects without credits or whose credits is not an
	// object. The latter are also reported in Malformed.
	Skipped   int
	Malformed []MalformedCredit
}

// Normalizer rewrites project credit keys to canonical credit fields.
type Normalizer struct {
	table entities.RoleTable
}

// NewNormalizer creates a Normalizer for the given role table.
func NewNormalizer(table entities.RoleTable) *Normalizer {
	return &Normalizer{table: table.Clone()}
}

// Normalize computes the new credits of every project. roles extends the
// variant table with the lower-cased name of each role. The input is not
// modified.
func (n *Normalizer) Normalize(projects []entities.Project, roles []entities.Role) NormalizeResult {
	variants := n.variantMap(roles)
	var result NormalizeResult

	for i := range projects {
		p := &projects[i]
		if p.Credits == nil {
			if p.MalformedCredits {
				result.Malformed = append(result.Malformed, MalformedCredit{ProjectID: p.ID, Project: p.Label(), Key: CreditsKey})
			}
			result.Skipped++
			continue
		}

		credits, changed, malformed := n.normalizeCredits(p.Credits, variants)
		for _, m := range malformed {
			m.ProjectID = p.ID
			m.Project = p.Label()
			result.Malformed = append(result.Malformed, m)
		}

		if !changed {
			result.Unchanged++
			continue
		}
		result.Changed = append(result.Changed, ProjectChange{ID: p.ID, Title: p.Title, Credits: credits})
	}

	return result
}

func (n *Normalizer) variantMap(roles []entities.Role) map[string]string {
	variants := make(map[string]string, len(n.table.Variants)+len(roles))
	for variant, display := range n.table.Variants {
		variants[variant] = display
	}
	for _, r := range roles {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			continue
		}
		variants[strings.ToLower(name)] = name
	}
	return variants
}

// resolve maps a credit key to its credit field. Canonical fields match
// exactly; anything else is looked up case-insensitively in variants.
func (n *Normalizer) resolve(key string, variants map[string]string) (field string, canonical bool) {
	if n.table.IsField(key) {
		return key, true
	}
	display, ok := variants[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return key, false
	}
	field, ok = n.table.Fields[display]
	if !ok {
		return key, false
	}
	return field, true
}

// nameAccumulator collects names per key in first-seen order, trimming and
// dropping empties and exact duplicates.
type nameAccumulator struct {
	names map[string][]string
	seen  map[string]map[string]bool
}

func newNameAccumulator() *nameAccumulator {
	return &nameAccumulator{names: make(map[string][]string), seen: make(map[string]map[string]bool)}
}

// add merges names under key and reports how many were kept.
func (a *nameAccumulator) add(key string, names []string) int {
	if _, ok := a.names[key]; !ok {
		a.names[key] = []string{}
		a.seen[key] = make(map[string]bool)
	}
	kept := 0
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" || a.seen[key][name] {
			continue
		}
		a.seen[key][name] = true
		a.names[key] = append(a.names[key], name)
		kept++
	}
	return kept
}

func (a *nameAccumulator) has(key string) bool {
	_, ok := a.names[key]
	return ok
}

func (n *Normalizer) orderedKeys(credits entities.Credits) []string {
	keys := credits.Keys()
	sort.SliceStable(keys, func(i, j int) bool {
		return n.table.IsField(keys[i]) && !n.table.IsField(keys[j])
	})
	return keys
}

func (n *Normalizer) normalizeCredits(credits entities.Credits, variants map[string]string) (entities.Credits, bool, []MalformedCredit) {
	acc := newNameAccumulator()
	preserved := make(entities.Credits)
	var malformed []MalformedCredit
	changed := false

	for _, key := range n.orderedKeys(credits) {
		if key == entities.AdditionalRolesKey {
			continue
		}
		names, total, ok := entities.NameList(credits[key])
		if !ok {
			preserved[key] = credits[key]
			malformed = append(malformed, MalformedCredit{Key: key})
			continue
		}
		field, _ := n.resolve(key, variants)
		if field != key {
			changed = true
		}
		// Non-string entries are dropped along with blanks and duplicates.
		if acc.add(field, names) < total {
			changed = true
		}
	}

	additional, additionalChanged, nestedMalformed := n.normalizeAdditional(credits, variants, acc)
	changed = changed || additionalChanged
	malformed = append(malformed, nestedMalformed...)

	out := make(entities.Credits, len(acc.names)+len(preserved)+1)
	for key, raw := range preserved {
		target := key
		if acc.has(key) {
			target = freeKey(key+unparsedSuffix, func(k string) bool {
				_, taken := credits[k]
				return taken || acc.has(k)
			})
			for i := range malformed {
				if malformed[i].Key == key {
					malformed[i].MovedTo = target
				}
			}
			changed = true
		}
		out[target] = raw
	}
	for key, names := range acc.names {
		out[key] = mustMarshal(names)
	}
	if additional != nil {
		out[entities.AdditionalRolesKey] = additional
	}

	return out, changed, malformed
}

// normalizeAdditional promotes additionalRoles entries that resolve to a
// canonical field into acc and returns the remaining entries, deduplicated.
func (n *Normalizer) normalizeAdditional(credits entities.Credits, variants map[string]string, acc *nameAccumulator) (json.RawMessage, bool, []MalformedCredit) {
	raw, exists := credits[entities.AdditionalRolesKey]
	if !exists {
		return nil, false, nil
	}
	nested, ok := credits.AdditionalRoles()
	if !ok {
		return raw, false, []MalformedCredit{{Key: entities.AdditionalRolesKey}}
	}
	if len(nested) == 0 {
		return raw, false, nil
	}

	remaining := newNameAccumulator()
	kept := make(map[string]json.RawMessage)
	var malformed []MalformedCredit
	changed := false

	for _, key := range entities.Credits(nested).Keys() {
		names, total, ok := entities.NameList(nested[key])
		if !ok {
			kept[key] = nested[key]
			malformed = append(malformed, MalformedCredit{Key: entities.AdditionalRolesKey + "." + key})
			continue
		}
		if field, canonical := n.resolve(key, variants); canonical {
			acc.add(field, names)
			changed = true
			continue
		}
		if remaining.add(key, names) < total {
			changed = true
		}
	}

	for key, names := range remaining.names {
		kept[key] = mustMarshal(names)
	}
	if len(kept) == 0 {
		return nil, changed, malformed
	}
	return mustMarshal(kept), changed, malformed
}

// freeKey returns base, or base with a counter appended, whichever is not taken.
func freeKey(base string, taken func(string) bool) string {
	key := base
	for i := 2; taken(key); i++ {
		key = fmt.Sprintf("%s %d", base, i)
	}
	return key
}

func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("encoding credits: %v", err))
	}
	return data
}

// NormalizeOptions controls a normalization run.
type NormalizeOptions struct {
	DryRun bool // Report changes without writing
}

// NormalizeReport summarizes a normalization run.
type NormalizeReport struct {
	Candidates int      `json:"candidates"`
	Updated    int      `json:"updated"`
	Failed     int      `json:"failed"`
	Unchanged  int      `json:"unchanged"`
	Skipped    int      `json:"skipped"`
	Projects   []string `json:"projects"`
	DryRun     bool     `json:"dry_run,omitempty"`
}

// NormalizeService runs the Normalizer against a collection store.
type NormalizeService struct {
	store      ports.CollectionStore
	normalizer *Normalizer
	logger     *slog.Logger
}

// NewNormalizeService creates a new NormalizeService.
func NewNormalizeService(store ports.CollectionStore, normalizer *Normalizer, logger *slog.Logger) *NormalizeService {
	return &NormalizeService{
		store:      store,
		normalizer: normalizer,
		logger:     logging.NewComponentLogger(logger, "normalize"),
	}
}

// Run loads roles and projects, normalizes every project's credits and
// persists each changed project with a single update carrying its id and new
// credits. Failing to load either collection aborts the run; failed updates
// are logged and counted.
func (s *NormalizeService) Run(ctx context.Context, opts NormalizeOptions) (*NormalizeReport, error) {
	roleRecs, err := s.store.List(ctx, entities.CollectionRoles)
	if err != nil {
		return nil, fmt.Errorf("loading roles: %w", err)
	}
	projectRecs, err := s.store.List(ctx, entities.CollectionProjects)
	if err != nil {
		return nil, fmt.Errorf("loading projects: %w", err)
	}

	rawIDs := make(map[string]json.RawMessage, len(projectRecs))
	for _, rec := range projectRecs {
		rawIDs[rec.ID()] = rec["id"]
	}

	result := s.normalizer.Normalize(entities.ProjectsFromRecords(projectRecs), entities.RolesFromRecords(roleRecs))
	for _, m := range result.Malformed {
		switch {
		case m.Key == CreditsKey:
			s.logger.Warn("project credits is not an object",
				logging.String(logging.FieldRecordID, m.ProjectID),
				logging.String("title", m.Project),
			)
		case m.MovedTo != "":
			s.logger.Warn("credit value is not a list of names, moved aside",
				logging.String(logging.FieldRecordID, m.ProjectID),
				logging.String("title", m.Project),
				logging.String("role", m.Key),
				logging.String("moved_to", m.MovedTo),
			)
		default:
			s.logger.Debug("credit value is not a list of names",
				logging.String(logging.FieldRecordID, m.ProjectID),
				logging.String("title", m.Project),
				logging.String("role", m.Key),
			)
		}
	}

	report := &NormalizeReport{
		Candidates: len(result.Changed),
		Unchanged:  result.Unchanged,
		Skipped:    result.Skipped,
		Projects:   []string{},
		DryRun:     opts.DryRun,
	}

	if opts.DryRun {
		for _, c := range result.Changed {
			report.Projects = append(report.Projects, c.Label())
		}
		return report, nil
	}

	for _, change := range result.Changed {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("normalize interrupted: %w", err)
		}
		patch := entities.Record{
			"id":      rawIDs[change.ID],
			"credits": mustMarshal(change.Credits),
		}
		if patch["id"] == nil {
			patch["id"] = mustMarshal(change.ID)
		}
		if err := s.store.Update(ctx, entities.CollectionProjects, patch); err != nil {
			report.Failed++
			s.logger.Warn("failed to update project credits",
				logging.String(logging.FieldRecordID, change.ID),
				logging.String("title", change.Label()),
				logging.Error(err),
			)
			continue
		}
		report.Updated++
		report.Projects = append(report.Projects, change.Label())
	}

	s.logger.Info("normalize complete",
		logging.Int("updated", report.Updated),
		logging.Int("failed", report.Failed),
		logging.Int("unchanged", report.Unchanged),
		logging.Int("skipped", report.Skipped),
	)
	s.audit(ctx, report)

	return report, nil
}

func (s *NormalizeService) audit(ctx context.Context, report *NormalizeReport) {
	auditLog, ok := s.store.(ports.AuditLog)
	if !ok {
		return
	}
	details := map[string]any{
		"updated":   report.Updated,
		"failed":    report.Failed,
		"unchanged": report.Unchanged,
		"skipped":   report.Skipped,
	}
	if err := auditLog.LogAction(ctx, entities.AuditNormalize, entities.CollectionProjects, details); err != nil {
		s.logger.Warn("failed to write audit entry", logging.Error(err))
	}
}

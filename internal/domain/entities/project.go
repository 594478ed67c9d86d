package entities

import (
	"encoding/json"
	"sort"
)

// AdditionalRolesKey is the credits entry holding free-text roles.
const AdditionalRolesKey = "additionalRoles"

// Credits maps a role key to its raw value, normally a list of names.
type Credits map[string]json.RawMessage

// Keys returns the credit keys in sorted order.
func (c Credits) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AdditionalRoles decodes the nested additionalRoles map. ok is false when the
// entry is missing or not an object.
func (c Credits) AdditionalRoles() (map[string]json.RawMessage, bool) {
	raw, exists := c[AdditionalRolesKey]
	if !exists {
		return nil, false
	}
	var nested map[string]json.RawMessage
	if err := json.Unmarshal(raw, &nested); err != nil || nested == nil {
		return nil, false
	}
	return nested, true
}

// NameList decodes a credit value. Non-string entries are dropped; total is the
// length of the original list. ok is false when the value is not a list.
func NameList(raw json.RawMessage) (names []string, total int, ok bool) {
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, 0, false
	}
	names = make([]string, 0, len(items))
	for _, item := range items {
		if s, isString := item.(string); isString {
			names = append(names, s)
		}
	}
	return names, len(items), true
}

// Project is the reconciler's view of a project record. Everything except the
// credits is opaque.
type Project struct {
	ID    string
	Title string
	// Credits is nil when the project has no credits field.
	Credits Credits
	// MalformedCredits is set when credits exists but is not an object.
	MalformedCredits bool
}

// ProjectFromRecord extracts the project view from a record.
func ProjectFromRecord(rec Record) Project {
	p := Project{ID: rec.ID(), Title: rec.String("title")}

	raw, ok := rec["credits"]
	if !ok || string(raw) == "null" {
		return p
	}

	var credits Credits
	if err := json.Unmarshal(raw, &credits); err != nil || credits == nil {
		p.MalformedCredits = true
		return p
	}
	p.Credits = credits
	return p
}

// ProjectsFromRecords converts a collection listing into projects.
func ProjectsFromRecords(recs []Record) []Project {
	projects := make([]Project, 0, len(recs))
	for _, rec := range recs {
		projects = append(projects, ProjectFromRecord(rec))
	}
	return projects
}

// Label returns the title, or the id when the project is untitled.
func (p Project) Label() string {
	if p.Title != "" {
		return p.Title
	}
	return p.ID
}

// CreditedNames returns every credited name in the project, including names
// under additionalRoles, as raw strings in deterministic key order.
func (p Project) CreditedNames() []string {
	var names []string
	for _, key := range p.Credits.Keys() {
		if key == AdditionalRolesKey {
			continue
		}
		if list, _, ok := NameList(p.Credits[key]); ok {
			names = append(names, list...)
		}
	}

	nested, ok := p.Credits.AdditionalRoles()
	if !ok {
		return names
	}
	for _, key := range Credits(nested).Keys() {
		if list, _, ok := NameList(nested[key]); ok {
			names = append(names, list...)
		}
	}
	return names
}

package entities

import (
	"strings"

	"golang.org/x/text/cases"
)

// NormalizeName converts a person name to its identity key: trimmed and
// case folded, so "Dana ", "dana" and "DANA" compare equal.
func NormalizeName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// NameSet is a case-insensitive set of person names that remembers the first
// spelling it saw for each identity.
type NameSet struct {
	keys  map[string]int
	names []string
}

// NewNameSet creates an empty NameSet.
func NewNameSet() *NameSet {
	return &NameSet{keys: make(map[string]int)}
}

// Add inserts the trimmed name. Empty names and names already present under
// another casing are ignored. Reports whether the name was new.
func (s *NameSet) Add(name string) bool {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return false
	}
	key := NormalizeName(trimmed)
	if _, ok := s.keys[key]; ok {
		return false
	}
	s.keys[key] = len(s.names)
	s.names = append(s.names, trimmed)
	return true
}

// Has reports whether the set contains name under case-insensitive comparison.
func (s *NameSet) Has(name string) bool {
	_, ok := s.keys[NormalizeName(name)]
	return ok
}

// Len returns the number of distinct identities.
func (s *NameSet) Len() int {
	return len(s.names)
}

// Names returns names in insertion order.
func (s *NameSet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

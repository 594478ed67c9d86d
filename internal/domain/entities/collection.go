package entities

import (
	"errors"
	"fmt"
)

// ErrUnknownCollection is returned for collection names outside AllCollections.
var ErrUnknownCollection = errors.New("unknown collection")

// Collection names a flat JSON collection.
type Collection string

// Known collections.
const (
	CollectionProjects    Collection = "projects"
	CollectionPeople      Collection = "people"
	CollectionFreelancers Collection = "freelancers"
	CollectionRoles       Collection = "roles"
	CollectionFacilities  Collection = "facilities"
	CollectionNews        Collection = "news"
)

// AllCollections lists every collection in display order.
var AllCollections = []Collection{
	CollectionProjects,
	CollectionPeople,
	CollectionFreelancers,
	CollectionRoles,
	CollectionFacilities,
	CollectionNews,
}

// IsValid checks if the collection is one of the known collections.
func (c Collection) IsValid() bool {
	for _, known := range AllCollections {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCollection validates a collection name.
func ParseCollection(name string) (Collection, error) {
	c := Collection(name)
	if !c.IsValid() {
		return "", fmt.Errorf("%w %q (valid: projects, people, freelancers, roles, facilities, news)", ErrUnknownCollection, name)
	}
	return c, nil
}

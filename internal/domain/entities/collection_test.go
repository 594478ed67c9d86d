package entities

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollection_IsValid(t *testing.T) {
	tests := []struct {
		name       string
		collection Collection
		expected   bool
	}{
		{name: "projects is valid", collection: CollectionProjects, expected: true},
		{name: "people is valid", collection: CollectionPeople, expected: true},
		{name: "freelancers is valid", collection: CollectionFreelancers, expected: true},
		{name: "roles is valid", collection: CollectionRoles, expected: true},
		{name: "facilities is valid", collection: CollectionFacilities, expected: true},
		{name: "news is valid", collection: CollectionNews, expected: true},
		{name: "empty string is invalid", collection: Collection(""), expected: false},
		{name: "uppercase is invalid", collection: Collection("PEOPLE"), expected: false},
		{name: "path traversal is invalid", collection: Collection("../people"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.collection.IsValid())
		})
	}
}

func TestParseCollection(t *testing.T) {
	c, err := ParseCollection("people")
	require.NoError(t, err)
	assert.Equal(t, CollectionPeople, c)

	_, err = ParseCollection("users")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownCollection))
	assert.Contains(t, err.Error(), "users")
}

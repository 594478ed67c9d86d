package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, NormalizeName("Dana"), NormalizeName("  dana "))
	assert.Equal(t, NormalizeName("STRASSE"), NormalizeName("strasse"))
	assert.NotEqual(t, NormalizeName("Dana"), NormalizeName("Dan"))
	assert.Equal(t, "", NormalizeName("   "))
}

func TestNameSet(t *testing.T) {
	set := NewNameSet()

	assert.True(t, set.Add(" Dana Kim "))
	assert.False(t, set.Add("dana kim"))
	assert.False(t, set.Add("   "))
	assert.True(t, set.Add("Lee"))

	assert.True(t, set.Has("DANA KIM"))
	assert.False(t, set.Has("Kim"))
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, []string{"Dana Kim", "Lee"}, set.Names())
}

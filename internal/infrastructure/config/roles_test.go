package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caspermolin/website-sub000/internal/domain/entities"
)

func writeRoles(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(ConfigDir(dir), 0o755))
	require.NoError(t, os.WriteFile(RolesFilePath(dir), []byte(content), 0o644))
}

func TestLoadRoleTable_MissingFileUsesDefault(t *testing.T) {
	table, err := LoadRoleTable(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, entities.DefaultRoleTable(), table)
}

func TestLoadRoleTable_DefaultFileRoundTrips(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteDefault(dir))

	table, err := LoadRoleTable(dir)
	require.NoError(t, err)
	assert.Equal(t, entities.DefaultRoleTable(), table)
}

func TestLoadRoleTable_CustomFields(t *testing.T) {
	dir := t.TempDir()
	writeRoles(t, dir, `
fields:
  Sound Designer: soundDesign
  Boom Operator: boomOperator
variants:
  Boom Op: Boom Operator
`)

	table, err := LoadRoleTable(dir)
	require.NoError(t, err)

	assert.Len(t, table.Fields, 2)
	assert.Equal(t, "Boom Operator", table.Variants["boom op"])
	assert.Equal(t, "Boom Operator", table.Variants["boom operator"])
	assert.Equal(t, "Sound Designer", table.Variants["sound designer"])
	_, hasDefaultVariant := table.Variants["sound design"]
	assert.False(t, hasDefaultVariant)
}

func TestLoadRoleTable_ExtraVariantsOnly(t *testing.T) {
	dir := t.TempDir()
	writeRoles(t, dir, `
variants:
  sfx: Sound Effects Designer
`)

	table, err := LoadRoleTable(dir)
	require.NoError(t, err)

	assert.Len(t, table.Fields, len(entities.DefaultRoleTable().Fields))
	assert.Equal(t, "Sound Effects Designer", table.Variants["sfx"])
	assert.Equal(t, "Sound Designer", table.Variants["sound design"])
}

func TestLoadRoleTable_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "bad yaml", content: "fields: [", wantErr: "parsing roles file"},
		{name: "unknown variant target", content: "fields:\n  A: a\nvariants:\n  b: B\n", wantErr: "unknown role"},
		{name: "reserved field", content: "fields:\n  Extra: additionalRoles\n", wantErr: "reserved"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeRoles(t, dir, tt.content)

			_, err := LoadRoleTable(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command against dir and returns stdout.
func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--dir", dir, "--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRunCLI(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, dir, args...)
	require.NoError(t, err, out)
	return out
}

func TestCLI_RequiresInit(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "collections", "list", "people")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "studiodb init")
}

func TestCLI_InitTwice(t *testing.T) {
	dir := t.TempDir()
	out := mustRunCLI(t, dir, "init")
	assert.Contains(t, out, "initialized")

	_, err := runCLI(t, dir, "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already initialized")
}

func TestCLI_Workflow(t *testing.T) {
	dir := t.TempDir()
	mustRunCLI(t, dir, "init")

	mustRunCLI(t, dir, "collections", "add", "freelancers", `{"id":"f1","name":"Bob"}`)
	mustRunCLI(t, dir, "collections", "add", "projects", `{"id":"p1","title":"Film","credits":{"ADR":["Bob","Carol "],"Sound Design":["carol"]}}`)

	out := mustRunCLI(t, dir, "collections", "list", "projects")
	assert.Contains(t, out, "ID\tNAME\tFIELDS\n")
	assert.Contains(t, out, "p1\tFilm\t3\n")

	out = mustRunCLI(t, dir, "sync", "freelancers", "--dry-run")
	assert.Contains(t, out, "Dry run: 1 new freelancers would be added")

	out = mustRunCLI(t, dir, "--json", "sync", "freelancers")
	var sync map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &sync))
	assert.EqualValues(t, 1, sync["created"])
	assert.Equal(t, []any{"Carol"}, sync["names"])

	// Second run finds nobody new.
	out = mustRunCLI(t, dir, "sync", "freelancers")
	assert.Contains(t, out, "Added 0 new freelancers")

	out = mustRunCLI(t, dir, "normalize")
	assert.Contains(t, out, "Updated 1 projects")

	out = mustRunCLI(t, dir, "collections", "get", "projects", "p1")
	var project map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &project))
	assert.Equal(t, map[string]any{
		"adr":         []any{"Bob", "Carol"},
		"soundDesign": []any{"carol"},
	}, project["credits"])

	out = mustRunCLI(t, dir, "normalize")
	assert.Contains(t, out, "Updated 0 projects, 1 unchanged")

	out = mustRunCLI(t, dir, "names")
	assert.Equal(t, "Bob\nCarol\n", out)
}

func TestCLI_RolesAndExport(t *testing.T) {
	dir := t.TempDir()
	mustRunCLI(t, dir, "init")

	out := mustRunCLI(t, dir, "roles", "add", "Sound Designer", "--category", "core")
	assert.Contains(t, out, "Added sound_designer to roles")

	out = mustRunCLI(t, dir, "roles", "list")
	assert.Contains(t, out, "sound_designer\tSound Designer\tcore\t1\tsoundDesign\n")

	out = mustRunCLI(t, dir, "roles", "table")
	assert.Contains(t, out, "Sound Designer\tsoundDesign\tsound design, sound designer\n")

	_, err := runCLI(t, dir, "roles", "add", "Mixer", "--category", "lead")
	require.Error(t, err)

	exportPath := filepath.Join(t.TempDir(), "roles.csv")
	out = mustRunCLI(t, dir, "collections", "export", "roles", "--format", "csv", "--output", exportPath)
	assert.Contains(t, out, "Exported 1 records")

	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "id,name,category,order\n"), string(data))

	out = mustRunCLI(t, dir, "roles", "remove", "sound_designer")
	assert.Contains(t, out, "Deleted sound_designer from roles")
}

func TestCLI_ImportAndBackup(t *testing.T) {
	dir := t.TempDir()
	mustRunCLI(t, dir, "init")

	csvPath := filepath.Join(t.TempDir(), "people.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("id,name,specialties\np1,Alice,Foley;ADR\n,,\n"), 0644))

	out := mustRunCLI(t, dir, "collections", "import", "people", csvPath)
	assert.Contains(t, out, "Imported: 1 records")
	assert.Contains(t, out, "1 errors")

	out = mustRunCLI(t, dir, "backup", "create")
	assert.Contains(t, out, "Created ")

	out = mustRunCLI(t, dir, "--json", "backup", "list")
	var backups []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &backups))
	require.Len(t, backups, 1)
	name, _ := backups[0]["name"].(string)

	mustRunCLI(t, dir, "collections", "delete", "people", "p1", "--force")
	out = mustRunCLI(t, dir, "collections", "list", "people")
	assert.Contains(t, out, "No records in people.")

	// Without --force the prompt reads "no" from empty stdin.
	out = mustRunCLI(t, dir, "backup", "restore", name)
	assert.Contains(t, out, "Cancelled.")

	out = mustRunCLI(t, dir, "backup", "restore", name, "--force")
	assert.Contains(t, out, "Restored 6 collections")
	out = mustRunCLI(t, dir, "collections", "list", "people")
	assert.Contains(t, out, "p1\tAlice")
}

func TestCLI_HistoryNeedsSQLite(t *testing.T) {
	dir := t.TempDir()
	mustRunCLI(t, dir, "init")

	_, err := runCLI(t, dir, "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audit log not available")

	t.Setenv("STUDIODB_STORE_BACKEND", "sqlite")
	mustRunCLI(t, dir, "sync", "people")
	out := mustRunCLI(t, dir, "history", "sync_people")
	assert.Contains(t, out, "sync_people\tpeople\tcandidates=0 created=0 failed=0\n")
}

package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"ncmr/internal/ncmr/models"
)

// localEnv points ncmrctl at a fresh sqlite store so state survives between
// invocations within one test.
func localEnv(t *testing.T) {
	t.Helper()
	t.Setenv("NCMR_CONFIG", "")
	t.Setenv("NCMR_MODE", "local")
	t.Setenv("NCMR_STORE_DRIVER", "sqlite")
	t.Setenv("NCMR_STORE_SQLITE_PATH", filepath.Join(t.TempDir(), "ncmr.db"))
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func createRecord(t *testing.T, part string) models.Record {
	t.Helper()
	out, _, err := run(t, "", "create", "-o", "json",
		"--part-number", part, "--part-name", "Bracket", "--quantity", "5",
		"--defect", "Crack", "--disposition", "Scrap")
	require.NoError(t, err)
	var rec models.Record
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	return rec
}

func TestRootCmd(t *testing.T) {
	root := newRootCmd()
	assert.Equal(t, "ncmrctl", root.Use)

	out := root.PersistentFlags().Lookup("output")
	require.NotNil(t, out)
	assert.Equal(t, "o", out.Shorthand)
	assert.Equal(t, "table", out.DefValue)

	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"list", "summary", "create", "status", "delete"})
}

func TestDefaultStoreKeepsRecordsBetweenRuns(t *testing.T) {
	t.Setenv("NCMR_CONFIG", "")
	t.Setenv("NCMR_MODE", "local")
	t.Setenv("NCMR_STORE_DRIVER", "")
	t.Setenv("NCMR_STORE_SQLITE_PATH", filepath.Join(t.TempDir(), "ncmr.db"))

	rec := createRecord(t, "BR-300")

	out, _, err := run(t, "", "list", "-o", "json")
	require.NoError(t, err)
	var records []models.Record
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, rec.ID, records[0].ID)
}

func TestCreateAndList(t *testing.T) {
	localEnv(t)

	rec := createRecord(t, "BR-200")
	assert.Equal(t, models.StatusOpen, rec.Status)
	assert.Equal(t, 5, rec.Quantity)
	assert.Equal(t, "NCMR-00001", rec.NCMRNumber)
	createRecord(t, "SH-10")

	out, _, err := run(t, "", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "PART")
	assert.Contains(t, lines[1], "SH-10", "most recent first")

	out, _, err = run(t, "", "list", "--search", "br-2", "-o", "json")
	require.NoError(t, err)
	var found []models.Record
	require.NoError(t, json.Unmarshal([]byte(out), &found))
	require.Len(t, found, 1)
	assert.Equal(t, rec.ID, found[0].ID)
}

func TestCreateValidation(t *testing.T) {
	localEnv(t)

	_, _, err := run(t, "", "create", "--part-number", "X", "--part-name", "Y", "--defect", "d")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quantity must be a positive number")
}

func TestStatusAndSummary(t *testing.T) {
	localEnv(t)
	rec := createRecord(t, "BR-200")
	createRecord(t, "SH-10")

	out, _, err := run(t, "", "status", rec.ID, "in_progress")
	require.NoError(t, err)
	assert.Contains(t, out, "in-progress")

	out, _, err = run(t, "", "summary", "-o", "yaml")
	require.NoError(t, err)
	var s map[string]int
	require.NoError(t, yaml.Unmarshal([]byte(out), &s))
	assert.Equal(t, map[string]int{"total": 2, "open": 1, "inProgress": 1, "closed": 0}, s)

	_, _, err = run(t, "", "status", rec.ID, "archived")
	assert.ErrorContains(t, err, "invalid status")
}

func TestDelete(t *testing.T) {
	localEnv(t)
	rec := createRecord(t, "BR-200")

	t.Run("declined prompt keeps the record", func(t *testing.T) {
		_, stderr, err := run(t, "n\n", "delete", rec.ID)
		require.NoError(t, err)
		assert.Contains(t, stderr, "[y/N]")
		assert.Contains(t, stderr, "aborted")

		out, _, err := run(t, "", "summary", "-o", "json")
		require.NoError(t, err)
		assert.Contains(t, out, `"total": 1`)
	})

	t.Run("confirmed prompt deletes", func(t *testing.T) {
		out, _, err := run(t, "y\n", "delete", rec.ID)
		require.NoError(t, err)
		assert.Contains(t, out, "deleted "+rec.ID)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, _, err := run(t, "", "delete", rec.ID, "--yes")
		assert.ErrorContains(t, err, "not found")
	})
}

func TestUnknownOutputFormat(t *testing.T) {
	_, _, err := run(t, "", "summary", "-o", "xml")
	assert.ErrorContains(t, err, `unknown output format "xml"`)
}

func TestRemoteModeRequiresURL(t *testing.T) {
	t.Setenv("NCMR_CONFIG", "")
	t.Setenv("NCMR_MODE", "remote")
	t.Setenv("NCMR_REMOTE_URL", "")
	_, _, err := run(t, "", "list")
	assert.ErrorContains(t, err, "remote.url is required")
}

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roster-crm/internal/workbook"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	schemaPath, jsonOutput, exportPath, dumpPath = "", false, "", ""
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestIngestCommand(t *testing.T) {
	dir := t.TempDir()
	buf, err := workbook.Encode(workbook.Sheet{Name: "G2", Rows: workbook.Grid{
		{"Class/Level/Time", "Name "},
		{"2T\nGalaxy", "Min 민"},
	}})
	require.NoError(t, err)
	in := filepath.Join(dir, "roster.xlsx")
	require.NoError(t, os.WriteFile(in, buf.Bytes(), 0o644))

	out, err := run(t, "ingest", in)
	require.NoError(t, err)
	assert.Contains(t, out, "Students: 1")
	assert.Contains(t, out, "1 accepted")

	xlsx := filepath.Join(dir, "out", "roster.xlsx")
	dump := filepath.Join(dir, "out", "roster.json")
	out, err = run(t, "ingest", in, "--json", "--xlsx", xlsx, "--dump", dump)
	require.NoError(t, err)

	var parsed struct {
		Grades []string `json:"gradesList"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	assert.Equal(t, []string{"2"}, parsed.Grades)
	assert.FileExists(t, xlsx)
	assert.FileExists(t, dump)
}

func TestIngestCommandErrors(t *testing.T) {
	_, err := run(t, "ingest", filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)

	_, err = run(t, "ingest")
	assert.Error(t, err)
}

func TestDemoAndSchemaCommands(t *testing.T) {
	out, err := run(t, "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "Students: 220")

	out, err = run(t, "schema")
	require.NoError(t, err)
	assert.Contains(t, out, "Schema version 2025.1")
	assert.Contains(t, out, "phoneNumber")
}

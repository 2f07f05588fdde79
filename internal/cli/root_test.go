package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the sagitta root command with the given args and
// returns whatever was written to stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_InsertThenCount(t *testing.T) {
	db := filepath.Join(t.TempDir(), "test.db")

	out, err := runCLI(t, "--db", db, "insert", `{"city": "NYC"}`)
	require.NoError(t, err)
	assert.Equal(t, "1\n", out, "single insert prints the new id")

	_, err = runCLI(t, "--db", db, "insert", `{"city": "NYC"}`, `{"city": "LA"}`)
	require.NoError(t, err)

	out, err = runCLI(t, "--db", db, "count")
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)

	out, err = runCLI(t, "--db", db, "count", `{"city": "NYC"}`)
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)
}

func TestCLI_SearchJSONOutput(t *testing.T) {
	db := filepath.Join(t.TempDir(), "test.db")

	_, err := runCLI(t, "--db", db, "insert", `{"city": "NYC", "n": 1}`, `{"city": "LA", "n": 2}`)
	require.NoError(t, err)

	out, err := runCLI(t, "--db", db, "--format", "json", "search", `{"city": "LA"}`)
	require.NoError(t, err)
	assert.Equal(t, `{"city":"LA","n":2}`+"\n", out)
}

func TestCLI_Grep(t *testing.T) {
	db := filepath.Join(t.TempDir(), "test.db")

	_, err := runCLI(t, "--db", db, "insert", `{"name": "Alice"}`, `{"name": "Bob"}`)
	require.NoError(t, err)

	out, err := runCLI(t, "--db", db, "--format", "json", "grep", "name", "^A")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Alice"}`+"\n", out)
}

func TestCLI_InvalidFormat(t *testing.T) {
	_, err := runCLI(t, "--format", "xml", "count")
	assert.ErrorContains(t, err, "invalid format")
}

func TestCLI_InsertRequiresInput(t *testing.T) {
	db := filepath.Join(t.TempDir(), "test.db")

	_, err := runCLI(t, "--db", db, "insert")
	assert.ErrorContains(t, err, "nothing to insert")
}

func TestCLI_ConfigIndexes(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "test.db")
	cfg := filepath.Join(dir, "sagitta.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("db: "+db+"\nindexes:\n  - city\n"), 0o644))

	// DB path and ensured indexes come from the config file alone.
	_, err := runCLI(t, "--config", cfg, "insert", `{"city": "NYC"}`)
	require.NoError(t, err)

	out, err := runCLI(t, "--config", cfg, "count")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)
}

func TestCLI_ExportImport(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.db")
	dst := filepath.Join(dir, "dst.db")
	dump := filepath.Join(dir, "backup.sgdb")

	_, err := runCLI(t, "--db", src, "insert", `{"city": "NYC"}`, `{"city": "LA"}`)
	require.NoError(t, err)

	out, err := runCLI(t, "--db", src, "export", dump)
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, dump), "export reports the file written, got %q", out)

	out, err = runCLI(t, "--db", dst, "import", dump)
	require.NoError(t, err)
	assert.Equal(t, "imported 2 documents\n", out)

	out, err = runCLI(t, "--db", dst, "count")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)
}

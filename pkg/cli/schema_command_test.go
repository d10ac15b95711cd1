//go:build !integration

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSchemaInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "schema")

	var out bytes.Buffer
	require.NoError(t, RunSchemaInit(dir, false, &out))
	for _, name := range []string{"cycle_schema.json", "pack_schema.json", "card_schema.json"} {
		assert.FileExists(t, filepath.Join(dir, name))
		assert.Contains(t, out.String(), name)
	}

	err := RunSchemaInit(dir, false, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "card_schema.json"), []byte("{}"), 0o644))
	require.NoError(t, RunSchemaInit(dir, true, &out))
	data, err := os.ReadFile(filepath.Join(dir, "card_schema.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "pack_code", "--force overwrites")
}

func TestSchemaInitCommand(t *testing.T) {
	base := t.TempDir()

	out, err := execute(t, "schema", "init", "-b", base)
	require.NoError(t, err, out)
	assert.FileExists(t, filepath.Join(base, "schema", "pack_schema.json"))
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "cardlint version 1.2.3\n", out)

	out, err = execute(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "cardlint version 1.2.3\n", out)
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func TestInitThenGenerate(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "duckgen.yaml")

	out, err := execute(t, "init", "-o", config)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+config)

	_, err = execute(t, "init", "-o", config)
	assert.ErrorContains(t, err, "already exists")

	_, err = execute(t, "init", "-o", config, "--force")
	require.NoError(t, err)

	out, err = execute(t, "generate", "-c", config)
	require.NoError(t, err)

	generated := filepath.Join(dir, "adapters", "duck_adapters.go")
	assert.Contains(t, out, generated)

	src, err := os.ReadFile(generated)
	require.NoError(t, err)
	assert.Contains(t, string(src), "type ReaderAdapter struct")
	assert.Contains(t, string(src), "type WriterAdapter struct")
	assert.Contains(t, string(src), "type CloserAdapter struct")
	assert.Contains(t, string(src), "func RegisterAdapters(c *duck.Cache) error")
}

func TestGenerate_InvalidConfig(t *testing.T) {
	config := filepath.Join(t.TempDir(), "duckgen.yaml")
	require.NoError(t, os.WriteFile(config, []byte("version: \"2\"\ninterfaces: []\n"), 0o644))

	_, err := execute(t, "generate", "-c", config)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported version")
	assert.Contains(t, err.Error(), "no interfaces listed")
}

func TestGenerate_MissingConfig(t *testing.T) {
	_, err := execute(t, "generate", "-c", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

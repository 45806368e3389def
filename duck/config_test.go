package duck

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "duck.yaml")
	require.NoError(t, os.WriteFile(path, []byte("public_only: true\nmax_candidates: 3\n"), 0o600))

	t.Setenv("DUCK_LOG_LEVEL", "debug")
	t.Setenv("DUCK_MAX_CANDIDATES", "7")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, Config{PublicOnly: true, MaxCandidates: 7, LogLevel: "debug"}, cfg)

	log, err := cfg.NewLogger()
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = loadConfig([]byte("max_candidates: -1\n"))
	assert.ErrorContains(t, err, "max_candidates")

	_, err = loadConfig([]byte("log_level: loud\n"))
	assert.ErrorContains(t, err, "log_level")

	_, err = loadConfig([]byte("public_only: [\n"))
	assert.Error(t, err)
}

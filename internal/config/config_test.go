package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps the developer's own config and environment out of tests.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(PathEnvVar, "")
	for _, k := range []string{"COUNSEL_LOG_LEVEL", "COUNSEL_MODELS_DIR", "COUNSEL_RUN_TOP", "COUNSEL_DB", "COUNSEL_BRIEF_TEMPERATURE"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "counsel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoad_FileThenEnv(t *testing.T) {
	isolate(t)
	path := writeFile(t, `
log:
  level: debug
models:
  dir: /srv/models
  unknown: ignore
run:
  top: 10
`)
	t.Setenv("COUNSEL_RUN_TOP", "3")
	t.Setenv("COUNSEL_DB", "/tmp/c.db")
	t.Setenv("COUNSEL_LLM_PROVIDER", "mock")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "/srv/models", cfg.Models.Dir)
	assert.Equal(t, "grader-model-v1", cfg.Models.Model)
	assert.Equal(t, "ignore", cfg.Models.Unknown)
	assert.Equal(t, 3, cfg.Run.Top)
	assert.Equal(t, "/tmp/c.db", cfg.DB)
}

func TestLoad_PathFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv(PathEnvVar, writeFile(t, "run:\n  sort: complexity\n"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "complexity", cfg.Run.Sort)
}

func TestLoad_XDGDefaultFile(t *testing.T) {
	isolate(t)
	dir := os.Getenv("XDG_CONFIG_HOME")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "counsel"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "counsel", "config.yaml"), []byte("brief:\n  top: 9\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Brief.Top)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	isolate(t)
	path := writeFile(t, "log:\n  level: loud\nbrief:\n  temperature: 3\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Config.Log.Level")
	assert.Contains(t, err.Error(), "Config.Brief.Temperature")
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "brief.max_tokens", envKey("COUNSEL_BRIEF_MAX_TOKENS"))
	assert.Equal(t, "db", envKey("COUNSEL_DB"))
	assert.Empty(t, envKey("COUNSEL_ANTHROPIC_API_KEY"))
}

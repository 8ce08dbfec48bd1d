package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "corpus", cfg.CorpusDir)
	assert.True(t, cfg.WatchCorpus)
	assert.Equal(t, 30*time.Second, cfg.PolicyCacheTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.DatabaseURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LIBRARIUM_PORT", "9090")
	t.Setenv("LIBRARIUM_CORPUS_DIR", "/srv/corpus")
	t.Setenv("LIBRARIUM_WATCH_CORPUS", "false")
	t.Setenv("LIBRARIUM_POLICY_CACHE_TTL", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/srv/corpus", cfg.CorpusDir)
	assert.False(t, cfg.WatchCorpus)
	assert.Equal(t, 5*time.Second, cfg.PolicyCacheTTL)
}

func TestLoadInvalidEnvFallsBackToDefault(t *testing.T) {
	t.Setenv("LIBRARIUM_PORT", "not-a-number")
	t.Setenv("LIBRARIUM_POLICY_CACHE_TTL", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.PolicyCacheTTL)
}

func TestValidateRejectsEmptyDatabaseURL(t *testing.T) {
	cfg := Config{CorpusDir: "corpus", MaxRequestBodyBytes: 1}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

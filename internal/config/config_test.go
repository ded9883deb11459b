package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icebreakerlabs/ghgraph/internal/errors"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 30, cfg.Collect.Days)
	assert.Equal(t, 5, cfg.GitHub.RateLimit)
	assert.Equal(t, "bolt://localhost:7687", cfg.Neo4j.URI)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
log_level: debug
collect:
  days: 7
  bot_allowlist:
    - ninesappbot
neo4j:
  uri: bolt://graph:7687
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 7, cfg.Collect.Days)
	assert.Equal(t, []string{"ninesappbot"}, cfg.Collect.BotAllowlist)
	assert.Equal(t, "bolt://graph:7687", cfg.Neo4j.URI)
	// Unset fields keep defaults.
	assert.Equal(t, "neo4j", cfg.Neo4j.User)
}

func TestEnvOverridesWin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("github:\n  token: from-file\n"), 0o644))

	t.Setenv("GITHUB_TOKEN", "from-env")
	t.Setenv("NEO4J_PASSWORD", "secret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.GitHub.Token)
	assert.Equal(t, "secret", cfg.Neo4j.Password)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindConfig))

	cfg.GitHub.Token = "token"
	require.NoError(t, cfg.Validate())

	cfg.Collect.Days = 0
	require.Error(t, cfg.Validate())
}

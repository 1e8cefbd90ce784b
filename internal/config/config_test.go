package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, 3, cfg.Retry.Attempts())
	assert.Equal(t, 2, cfg.Retry.Backoff())
	assert.Equal(t, 5*time.Second, cfg.Retry.Delay())
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  addr: ":8088"
retry:
  max_attempts: 5
  base_delay: 100ms
dify:
  base_url: http://dify.internal/v1
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8088", cfg.Server.Addr)
	assert.Equal(t, 5, cfg.Retry.Attempts())
	assert.Equal(t, 100*time.Millisecond, cfg.Retry.Delay())
	assert.Equal(t, "http://dify.internal/v1", cfg.Dify.BaseURL)
	// Untouched sections keep their defaults.
	assert.Equal(t, "projects", cfg.Projects.Root)
}

func TestEnvOverridesWin(t *testing.T) {
	t.Setenv("TESTOPS_ADDR", ":9000")
	t.Setenv("TESTOPS_PROJECTS_ROOT", "/srv/projects")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "/srv/projects", cfg.Projects.Root)
}

func TestBadDurationFallsBack(t *testing.T) {
	p := RetryPolicy{BaseDelay: "banana"}
	assert.Equal(t, 5*time.Second, p.Delay())
}

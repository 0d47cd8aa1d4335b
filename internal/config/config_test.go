package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp runs the test from an empty directory so a stray
// config.yaml cannot leak into it.
func chdirTemp(t *testing.T) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() {
		_ = os.Chdir(orig)
	})
}

func TestLoadConfigDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:4000", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout())
	assert.Equal(t, 2, cfg.API.MaxReadRetries)
	assert.Equal(t, "file", cfg.Session.Backend)
	assert.Equal(t, 60*time.Second, cfg.Cache.TTL())
	assert.Equal(t, 5*time.Minute, cfg.Cache.CleanupInterval())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestConfigFileOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	yaml := []byte("api:\n  base_url: http://stub:9000\n  timeout_seconds: 3\ncache:\n  ttl_seconds: 5\n")
	require.NoError(t, os.WriteFile("config.yaml", yaml, 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://stub:9000", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout())
	assert.Equal(t, 5*time.Second, cfg.Cache.TTL())
	assert.Equal(t, 2, cfg.API.MaxReadRetries, "unset keys keep their defaults")
}

func TestEnvironmentOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("HEALTHCOMPARE_API_BASE_URL", "https://api.healthcompare.example")
	t.Setenv("HEALTHCOMPARE_API_TIMEOUT_SECONDS", "30")
	t.Setenv("HEALTHCOMPARE_SESSION_BACKEND", "redis")
	t.Setenv("HEALTHCOMPARE_LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://api.healthcompare.example", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout())
	assert.Equal(t, "redis", cfg.Session.Backend)
	assert.Equal(t, "debug", cfg.Log.Level)
}

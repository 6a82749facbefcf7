package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("LOUPE_SERVER_URL", "https://logs.example.com")
	t.Setenv("LOUPE_USERNAME", "admin")
	t.Setenv("LOUPE_PASSWORD", "hunter2")
	t.Setenv("LOUPE_SKIP_TLS_VERIFY", "true")
	t.Setenv("LOUPE_HTTP_TIMEOUT", "5s")
	t.Setenv("LOUPE_DATA_DIR", "/tmp/loupe-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://logs.example.com", cfg.ServerURL)
	assert.Equal(t, "admin", cfg.Username)
	assert.Equal(t, "hunter2", cfg.Password)
	assert.True(t, cfg.SkipTLSVerify)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.HasServer())
	assert.Equal(t, filepath.Join("/tmp/loupe-test", "loupe.db"), cfg.DBPath())

	sc := cfg.ServerConfig()
	assert.Equal(t, "https://logs.example.com", sc.URL)
	assert.Equal(t, 5*time.Second, sc.Timeout)
	assert.True(t, sc.SkipTLSVerify)
	require.NoError(t, sc.Validate())
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"LOUPE_SERVER_URL", "LOUPE_USERNAME", "LOUPE_PASSWORD",
		"LOUPE_SKIP_TLS_VERIFY", "LOUPE_HTTP_TIMEOUT", "LOUPE_LOG_LEVEL", "LOUPE_DATA_DIR",
	} {
		if v, ok := os.LookupEnv(key); ok {
			t.Setenv(key, v) // restore after test
			require.NoError(t, os.Unsetenv(key))
		}
	}
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.HasServer())
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.False(t, cfg.SkipTLSVerify)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, filepath.Join(cfg.DataDir, "loupe.db"), cfg.DBPath())
}

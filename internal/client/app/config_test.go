package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	// No vres.yaml in the working directory and no env overrides.
	oldWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(oldWD) })

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080", cfg.BaseURL)
	require.Equal(t, "vres.db", cfg.DatabaseFile)
	require.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	require.Equal(t, "text", cfg.LogFormat)
}

func TestLoadConfigFileOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vres.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"base_url: https://vres.example.org\nlog_level: debug\nhttp_timeout: 30s\n"), 0o600))

	t.Setenv("VRES_CONFIG_FILE", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "https://vres.example.org", cfg.BaseURL)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	require.Equal(t, "vres.db", cfg.DatabaseFile)
}

func TestLoadConfigEnvWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vres.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: https://file.example.org\n"), 0o600))

	t.Setenv("VRES_CONFIG_FILE", path)
	t.Setenv("VRES_BASE_URL", "https://env.example.org")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "https://env.example.org", cfg.BaseURL)
}

func TestLoadConfigMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vres.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: [not: closed\n"), 0o600))

	t.Setenv("VRES_CONFIG_FILE", path)

	_, err := LoadConfig()
	require.Error(t, err)
}

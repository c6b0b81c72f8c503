package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "restcall.yaml")
	content := `
timeout: 2s
followRedirects: false
validateSSL: false
enforceTLS12: true
headers:
  Authorization: Bearer token
historyPath: /tmp/calls.db
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	timeout, err := cfg.GetTimeout()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, timeout)
	assert.False(t, cfg.GetFollowRedirects())
	assert.False(t, cfg.GetValidateSSL())
	assert.True(t, cfg.EnforceTLS12)
	assert.Equal(t, "Bearer token", cfg.Headers["Authorization"])
	assert.Equal(t, "/tmp/calls.db", cfg.HistoryPath)
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := FindAndLoad(t.TempDir())
	require.NoError(t, err)

	timeout, err := cfg.GetTimeout()
	require.NoError(t, err)
	assert.Zero(t, timeout)
	assert.True(t, cfg.GetFollowRedirects())
	assert.True(t, cfg.GetValidateSSL())
	assert.False(t, cfg.GetNoColor())
}

func TestFindAndLoad_SearchOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "restcall.yaml"), []byte("proxy: http://proxy:8080"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".restcall.yaml"), []byte("proxy: http://first:8080"), 0o644))

	cfg, err := FindAndLoad(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://first:8080", cfg.Proxy)
}

func TestConfig_InvalidTimeout(t *testing.T) {
	cfg := &Config{Timeout: "soon"}
	_, err := cfg.GetTimeout()
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "restcall.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout: [broken"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

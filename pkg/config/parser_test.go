package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 1049000, cfg.Cache.MaxCacheSize)
	assert.Equal(t, 102400, cfg.Cache.MaxObjectSize)
	assert.Equal(t, 32, cfg.Cache.Slots)
	assert.Equal(t, 512, cfg.Proxy.MaxHeaders)
	assert.Equal(t, "Tiny Web Server", cfg.Proxy.ServerName)
	assert.False(t, cfg.Proxy.AllowPost)
	assert.Zero(t, cfg.Proxy.DialTimeout)
	assert.False(t, cfg.Admin.Enabled)
}

func TestLoad_DefaultsAreNotShared(t *testing.T) {
	a, err := Load("")
	require.NoError(t, err)
	a.Cache.Slots = 1

	b, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 32, b.Cache.Slots)
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "proxy.toml", `
listenaddr = ":9100"

[proxy]
allowPost = true
dialTimeout = "5s"
serverName = "edge"

[cache]
maxCacheSize = 4096
maxObjectSize = 1024
slots = 4

[accesslog]
sqlitePath = "access.db"

[admin]
enabled = true
listenaddr = "127.0.0.1:9101"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.ListenAddr)
	assert.True(t, cfg.Proxy.AllowPost)
	assert.Equal(t, 5*time.Second, cfg.Proxy.DialTimeout)
	assert.Equal(t, "edge", cfg.Proxy.ServerName)
	assert.Equal(t, 4096, cfg.Cache.MaxCacheSize)
	assert.Equal(t, 1024, cfg.Cache.MaxObjectSize)
	assert.Equal(t, 4, cfg.Cache.Slots)
	assert.Equal(t, "access.db", cfg.AccessLog.SQLitePath)
	assert.True(t, cfg.Admin.Enabled)
	// untouched keys keep their defaults
	assert.Equal(t, 512, cfg.Proxy.MaxHeaders)
	assert.Equal(t, 100, cfg.AccessLog.Capacity)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "proxy.yaml", `
listenaddr: ":9200"
proxy:
  maxHeaders: 64
  dialTimeout: 250ms
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9200", cfg.ListenAddr)
	assert.Equal(t, 64, cfg.Proxy.MaxHeaders)
	assert.Equal(t, 250*time.Millisecond, cfg.Proxy.DialTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 32, cfg.Cache.Slots)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.toml", "listenaddr = "))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "ceiling.toml", "[cache]\nmaxCacheSize = 10\nmaxObjectSize = 20\n"))
	assert.ErrorContains(t, err, "exceeds")

	_, err = Load(writeFile(t, "format.yml", "log:\n  format: xml\n"))
	assert.ErrorContains(t, err, "log.format")

	_, err = Load(writeFile(t, "slots.toml", "[cache]\nslots = 0\n"))
	assert.ErrorContains(t, err, "cache.slots")
}

package providers

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecometrics/internal/structures"
)

const testConfigYAML = `
webServer:
  host: 127.0.0.1
  port: 9090
storage:
  driver: memory
  snapshotPath: /tmp/ecometrics.dat
  saveInterval: 1m
logger:
  level: info
  mode: 0644
  dir: /tmp
cache:
  enabled: true
  size: 8
metrics:
  enabled: true
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestNewConfigProvider_ReadsFileAndDefaults(t *testing.T) {
	path := writeConfig(t, testConfigYAML)

	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path, DebugMode: true})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", conf.WebServer.Host)
	assert.Equal(t, 9090, conf.WebServer.Port)
	assert.Equal(t, "memory", conf.Storage.Driver)
	assert.Equal(t, time.Minute, conf.Storage.SaveInterval)
	assert.Equal(t, 30, conf.Ledger.PerPage)
	assert.Equal(t, 100, conf.Ledger.MaxPerPage)
	assert.Equal(t, "UTC", conf.Ledger.Timezone)
	assert.Equal(t, 30*time.Second, conf.Cache.TTL)
	assert.True(t, conf.Cache.Enabled)
	assert.True(t, conf.Debug)
	assert.Equal(t, path, conf.Path)
	assert.Equal(t, appName, conf.AppName)
}

func TestNewConfigProvider_EnvOverrides(t *testing.T) {
	path := writeConfig(t, testConfigYAML)
	t.Setenv("ECO_LOG_LEVEL", "debug")
	t.Setenv("ECO_STORAGE_DRIVER", "sqlite")
	t.Setenv("ECO_STORAGE_DSN", "/tmp/eco.db")
	t.Setenv("ECO_TIMEZONE", "Europe/Berlin")

	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path})
	require.NoError(t, err)

	assert.Equal(t, "debug", conf.Logger.Level)
	assert.Equal(t, "sqlite", conf.Storage.Driver)
	assert.Equal(t, "/tmp/eco.db", conf.Storage.DSN)
	assert.Equal(t, "Europe/Berlin", conf.Ledger.Timezone)
}

func TestNewConfigProvider_DotEnvNextToConfig(t *testing.T) {
	path := writeConfig(t, testConfigYAML)
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), ".env"), []byte("ECO_CACHE_SIZE=64\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("ECO_CACHE_SIZE") })

	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, 64, conf.Cache.Size)
}

func TestNewConfigProvider_MissingFile(t *testing.T) {
	_, err := NewConfigProvider(&structures.CliFlags{ConfigPath: filepath.Join(t.TempDir(), "absent.yaml")})
	assert.Error(t, err)
}

func TestNewConfigProvider_InvalidConfig(t *testing.T) {
	path := writeConfig(t, `
webServer:
  host: 127.0.0.1
  port: 9090
storage:
  driver: postgres
logger:
  level: info
  mode: 0644
  dir: /tmp
`)

	_, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path})
	assert.Error(t, err)
}

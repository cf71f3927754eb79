package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
shop:
  name: bakery
grid:
  interval_minutes: 15
  start_time: "07:00"
  end_time: "21:00"
redis:
  address: localhost:6379
database:
  path: `+filepath.Join(t.TempDir(), "audit.db")+`
monitoring:
  prometheus_enabled: true
  prometheus_port: 9091
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "bakery", cfg.Shop.Name)
	assert.Equal(t, 15, cfg.Grid.IntervalMinutes)
	assert.Equal(t, "07:00", cfg.Grid.StartTime)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.True(t, cfg.Monitoring.PrometheusEnabled)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "shop:\n  name: bakery\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Grid.IntervalMinutes)
	assert.Equal(t, "08:00", cfg.Grid.StartTime)
	assert.Equal(t, "20:00", cfg.Grid.EndTime)
	assert.Equal(t, "data/semainier.db", cfg.Database.Path)
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TEST_REDIS_ADDR", "redis.internal:6379")
	path := writeConfig(t, `
redis:
  address: ${TEST_REDIS_ADDR}
database:
  path: `+filepath.Join(t.TempDir(), "audit.db")+`
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "redis.internal:6379", cfg.Redis.Address)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFileAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  postgres:
    host: "localhost"
    database: "bus_enquiry"
    user: "enquiry"
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "Vijayawada", cfg.Enquiry.HomeCity)
	assert.Equal(t, "te", cfg.Enquiry.Locale)
	assert.Equal(t, 10000, cfg.Enquiry.QueryTimeout)
	assert.Equal(t, 25, cfg.Database.Postgres.MaxConnections)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, ":9102", cfg.Metrics.Address)
}

func TestLoadFromFileExplicitValuesWin(t *testing.T) {
	path := writeConfig(t, `
database:
  postgres:
    host: "db.internal"
    database: "bus_enquiry"
    user: "enquiry"
enquiry:
  home_city: "Guntur"
  query_timeout: 2500
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "Guntur", cfg.Enquiry.HomeCity)
	assert.Equal(t, 2500, cfg.Enquiry.QueryTimeout)
}

func TestLoadFromFileRequiresPostgresHost(t *testing.T) {
	path := writeConfig(t, `
database:
  postgres:
    database: "bus_enquiry"
    user: "enquiry"
`)

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestLoadFromFileRequiresRedisWhenCacheEnabled(t *testing.T) {
	path := writeConfig(t, `
database:
  postgres:
    host: "localhost"
    database: "bus_enquiry"
    user: "enquiry"
enquiry:
  cache_enabled: true
`)

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestEnvOverridesFillEmptySecrets(t *testing.T) {
	t.Setenv("DB_PASSWORD", "s3cret")

	path := writeConfig(t, `
database:
  postgres:
    host: "localhost"
    database: "bus_enquiry"
    user: "enquiry"
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Database.Postgres.Password)
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 10*time.Second, GetDuration(10000))
	assert.Equal(t, time.Duration(0), GetDuration(0))
}

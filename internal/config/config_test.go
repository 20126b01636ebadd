package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "excel", cfg.Database.Backend)
	assert.Equal(t, "./storage", cfg.Storage.Root)
	assert.Equal(t, 90, cfg.Dev.ArchiveOlderThanDays)
	assert.Empty(t, cfg.Dev.Token)
	assert.Equal(t, []string{"*"}, cfg.Origins())
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  port: 9090
database:
  backend: sqlite
storage:
  root: /var/lib/incapacidades
dev:
  token: secret
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Backend)
	assert.Equal(t, "secret", cfg.Dev.Token)
	assert.Equal(t, "/var/lib/incapacidades/database/incapacidades.db", cfg.DatabasePath())
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  backend: postgres\n"), 0644))

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.backend")
}

func TestConfig_Origins(t *testing.T) {
	t.Run("splits comma separated env values", func(t *testing.T) {
		cfg := Config{CORS: CORSConfig{AllowedOrigins: []string{"https://a.co, https://b.co"}}}

		assert.Equal(t, []string{"https://a.co", "https://b.co"}, cfg.Origins())
	})

	t.Run("empty list falls back to wildcard", func(t *testing.T) {
		cfg := Config{}

		assert.Equal(t, []string{"*"}, cfg.Origins())
	})
}

func TestConfig_DatabasePath(t *testing.T) {
	cfg := Config{
		Storage:  StorageConfig{Root: "./storage/"},
		Database: DatabaseConfig{Backend: "excel"},
	}

	assert.Equal(t, "./storage/database/incapacidades.xlsx", cfg.DatabasePath())

	cfg.Database.Path = "/tmp/custom.xlsx"
	assert.Equal(t, "/tmp/custom.xlsx", cfg.DatabasePath())
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 100, cfg.Server.RateLimitPerSecond)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, int64(32<<20), cfg.Import.MaxUploadBytes)
	assert.True(t, cfg.Observability.MetricsEnabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("POSTGRES_DB", "onboarding-test")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, "onboarding-test", cfg.Database.Database)
	assert.False(t, cfg.Observability.MetricsEnabled)
}

func TestLoadReadsDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("IMPORT_ARCHIVE_PATH=/srv/archives\nPOSTGRES_DB=from-dotenv\n"), 0o600))

	// Register cleanup so the value godotenv sets does not leak into other
	// tests, then unset so the .env entry is actually picked up.
	t.Setenv("IMPORT_ARCHIVE_PATH", "placeholder")
	os.Unsetenv("IMPORT_ARCHIVE_PATH")
	t.Setenv("POSTGRES_DB", "from-env")
	t.Chdir(dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/srv/archives", cfg.Import.ArchivePath)
	assert.Equal(t, "from-env", cfg.Database.Database, "real environment wins over .env")
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{
		Host: "localhost", Port: 5432, User: "app", Password: "secret",
		Database: "onboarding", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=app password=secret dbname=onboarding sslmode=disable",
		c.DSN())
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	t.Setenv("TEST_DB_DSN", "host=db user=recon dbname=recon")

	content := `
server:
  port: "9090"
  allowed_origins:
    - https://recon.example.com
database:
  driver: postgres
  dsn: ${TEST_DB_DSN}
matching:
  date_tolerance_days: 2
  value_tolerance: "0.05"
  locale: comma
  timeout: 5s
logging:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr())
	assert.Equal(t, []string{"https://recon.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "host=db user=recon dbname=recon", cfg.Database.DSN)
	assert.Equal(t, 2, cfg.Matching.DateToleranceDays)
	assert.Equal(t, "comma", cfg.Matching.Locale)
	assert.Equal(t, 5*time.Second, cfg.Matching.Timeout)
	assert.Equal(t, "json", cfg.Logging.Format)

	// keys absent from the file keep their defaults
	assert.Equal(t, 0.70, cfg.Matching.SimilarityThreshold)
	assert.Equal(t, "default", cfg.Matching.Profile)

	tol, err := cfg.Matching.Tolerances()
	require.NoError(t, err)
	assert.Equal(t, "0.05", tol.ValueTolerance.String())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("MATCH_SIMILARITY_THRESHOLD", "0.8")
	t.Setenv("MATCH_TIMEOUT", "2m")

	cfg := LoadFromEnv()
	assert.Equal(t, ":7000", cfg.Server.Addr())
	assert.Equal(t, "file::memory:", cfg.Database.DSN)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 0.8, cfg.Matching.SimilarityThreshold)
	assert.Equal(t, 2*time.Minute, cfg.Matching.Timeout)
	assert.Equal(t, "0.02", cfg.Matching.ValueTolerance)
}

func TestLoadOrEnvWithPath_MissingFile(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	cfg := LoadOrEnvWithPath(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestMatchingConfig_Tolerances(t *testing.T) {
	m := Default().Matching
	tol, err := m.Tolerances()
	require.NoError(t, err)
	assert.Equal(t, 1, tol.DateToleranceDays)
	assert.Equal(t, "0.02", tol.ValueTolerance.String())

	m.ValueTolerance = "lots"
	_, err = m.Tolerances()
	assert.Error(t, err)

	m = Default().Matching
	m.DateToleranceDays = 30
	_, err = m.Tolerances()
	assert.ErrorContains(t, err, "date_tolerance_days")
}

func TestInitDB(t *testing.T) {
	db, err := InitDB(DatabaseConfig{})
	require.NoError(t, err)
	assert.Nil(t, db)

	_, err = InitDB(DatabaseConfig{Driver: "oracle"})
	assert.ErrorContains(t, err, "unsupported")

	db, err = InitDB(DatabaseConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "recon.db"), LogLevel: "silent"})
	require.NoError(t, err)
	assert.True(t, db.Migrator().HasTable("reconciliation_runs"))
	assert.True(t, db.Migrator().HasTable("run_transactions"))
	assert.True(t, db.Migrator().HasTable("match_audit_logs"))
	assert.True(t, db.Migrator().HasTable("tolerance_settings"))
}

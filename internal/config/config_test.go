package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultDBHost, cfg.Database.Host)
	assert.Equal(t, DefaultDBPort, cfg.Database.Port)
	assert.Equal(t, DefaultRedisAddr, cfg.Redis.Addr)
	assert.Equal(t, []string{DefaultKafkaBroker}, cfg.Kafka.Brokers)
	assert.Equal(t, DefaultEmbeddingModel, cfg.Embedding.Model)
	assert.Equal(t, DefaultEmbeddingDimension, cfg.Embedding.Dimension)
	assert.InDelta(t, 0.85, cfg.Analysis.SimilarityThreshold, 1e-9)
	assert.InDelta(t, 0.3, cfg.Analysis.ConflictThreshold, 1e-9)
	assert.Equal(t, 5, cfg.Analysis.TopK)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Database.Host = "db.internal"
	cfg.Analysis.SimilarityThreshold = 0.9
	ApplyDefaults(cfg)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.InDelta(t, 0.9, cfg.Analysis.SimilarityThreshold, 1e-9)
}

func TestApplyDefaultsNil(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}

func TestValidateDefaultsPass(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidateRejectsBadThresholds(t *testing.T) {
	cfg := validConfig()
	cfg.Analysis.SimilarityThreshold = 1.5
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Analysis.ConflictThreshold = -0.1
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Analysis.TopK = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsMissingDatabase(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Host = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Database.Port = 99999
	assert.Error(t, cfg.Validate())
}

func TestValidateEmbeddingEnabledNeedsKey(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Enabled = true
	cfg.Embedding.APIKey = ""
	assert.Error(t, cfg.Validate())

	cfg.Embedding.APIKey = "sk-test"
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Log.Level = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "localhost", Port: 5432, User: "u", Password: "p",
		DBName: "clauselens", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://u:p@localhost:5432/clauselens?sslmode=disable", d.DSN())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
database:
  host: pg.example.com
  user: clauselens
  db_name: contracts
analysis:
  similarity_threshold: 0.8
  top_k: 3
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "pg.example.com", cfg.Database.Host)
	assert.Equal(t, DefaultDBPort, cfg.Database.Port) // defaulted
	assert.InDelta(t, 0.8, cfg.Analysis.SimilarityThreshold, 1e-9)
	assert.InDelta(t, DefaultConflictThreshold, cfg.Analysis.ConflictThreshold, 1e-9)
	assert.Equal(t, 3, cfg.Analysis.TopK)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/does/not/exist.yaml")
	assert.Error(t, err)
}

func TestLoadInvalidThresholdFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
analysis:
  similarity_threshold: 2.0
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CLAUSELENS_DATABASE_HOST", "env-host")
	t.Setenv("CLAUSELENS_REDIS_KEY_PREFIX", "cl-test")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "env-host", cfg.Database.Host)
	assert.Equal(t, "cl-test", cfg.Redis.KeyPrefix)
}

// Package config defines all configuration structures for the ClauseLens
// engine.  No I/O or parsing logic lives here — only plain data types and
// validation.
package config

import (
	"fmt"
	"time"

	"github.com/clauselens/clauselens/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// DSN renders the pgx connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

// RedisConfig holds Redis connection parameters for the embedding cache.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds Kafka producer parameters for analysis events.
type KafkaConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Brokers         []string      `mapstructure:"brokers"`
	TopicPrefix     string        `mapstructure:"topic_prefix"`
	ProducerRetries int           `mapstructure:"producer_retries"`
	BatchTimeout    time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
}

// EmbeddingConfig holds the optional embedding-provider parameters.  When
// Enabled is false the engine runs entirely on the lexical-similarity path.
type EmbeddingConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	Model        string        `mapstructure:"model"`
	Dimension    int           `mapstructure:"dimension"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	CacheEnabled bool          `mapstructure:"cache_enabled"`
}

// AnalysisConfig holds the tunable analysis thresholds.  The populated value
// is injected into component constructors and treated as immutable for the
// life of the process; no component reads thresholds from a global.
type AnalysisConfig struct {
	// SimilarityThreshold gates conflict-pair comparison on embedding cosine.
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`

	// ConflictThreshold is the minimum contradiction score that records a
	// conflict.
	ConflictThreshold float64 `mapstructure:"conflict_threshold"`

	// TopK is the default evidence-retrieval depth for question answering.
	TopK int `mapstructure:"top_k"`
}

// MetricsConfig holds the Prometheus exposition parameters.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
	Path    string `mapstructure:"path"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure for the engine.  Every
// infrastructure component and application service reads its settings from
// the relevant sub-struct.
type Config struct {
	Database  DatabaseConfig    `mapstructure:"database"`
	Redis     RedisConfig       `mapstructure:"redis"`
	Kafka     KafkaConfig       `mapstructure:"kafka"`
	Embedding EmbeddingConfig   `mapstructure:"embedding"`
	Analysis  AnalysisConfig    `mapstructure:"analysis"`
	Metrics   MetricsConfig     `mapstructure:"metrics"`
	Log       logging.LogConfig `mapstructure:"log"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	// Database
	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("config: database.max_conns must be >= 1, got %d", c.Database.MaxConns)
	}

	// Redis
	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
	}

	// Kafka (only when enabled)
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
	}

	// Embedding (only when enabled)
	if c.Embedding.Enabled {
		if c.Embedding.APIKey == "" {
			return fmt.Errorf("config: embedding.api_key is required when embedding is enabled")
		}
		if c.Embedding.Dimension < 1 {
			return fmt.Errorf("config: embedding.dimension must be >= 1, got %d", c.Embedding.Dimension)
		}
	}

	// Analysis thresholds must be usable as similarity gates.
	if c.Analysis.SimilarityThreshold <= 0 || c.Analysis.SimilarityThreshold > 1 {
		return fmt.Errorf("config: analysis.similarity_threshold %.3f is out of range (0, 1]", c.Analysis.SimilarityThreshold)
	}
	if c.Analysis.ConflictThreshold <= 0 || c.Analysis.ConflictThreshold > 1 {
		return fmt.Errorf("config: analysis.conflict_threshold %.3f is out of range (0, 1]", c.Analysis.ConflictThreshold)
	}
	if c.Analysis.TopK < 1 {
		return fmt.Errorf("config: analysis.top_k must be >= 1, got %d", c.Analysis.TopK)
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}

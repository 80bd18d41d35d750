// Package config provides configuration loading, defaults, and validation for
// the ClauseLens engine.
package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all engine settings.
const envPrefix = "CLAUSELENS"

// newViper builds a pre-configured Viper instance with the engine's standard
// settings: YAML file type, CLAUSELENS_ env prefix, automatic env binding,
// and a key replacer that maps "." → "_" so that nested keys like
// "database.host" resolve to "CLAUSELENS_DATABASE_HOST".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	registerKeys(v)
	return v
}

// registerKeys declares every configuration key to viper with a zero default.
// Without this, keys supplied only through environment variables are invisible
// to Unmarshal; real default values are applied later by ApplyDefaults.
func registerKeys(v *viper.Viper) {
	for _, key := range []string{
		"database.host", "database.port", "database.user", "database.password",
		"database.db_name", "database.ssl_mode", "database.max_conns",
		"database.min_conns", "database.conn_max_lifetime", "database.conn_max_idle_time",
		"redis.addr", "redis.password", "redis.db", "redis.pool_size",
		"redis.min_idle_conns", "redis.dial_timeout", "redis.read_timeout",
		"redis.write_timeout", "redis.default_ttl", "redis.key_prefix",
		"kafka.enabled", "kafka.brokers", "kafka.topic_prefix",
		"kafka.producer_retries", "kafka.batch_timeout", "kafka.write_timeout",
		"embedding.enabled", "embedding.api_key", "embedding.base_url",
		"embedding.model", "embedding.dimension", "embedding.batch_timeout",
		"embedding.cache_enabled",
		"analysis.similarity_threshold", "analysis.conflict_threshold", "analysis.top_k",
		"metrics.enabled", "metrics.addr", "metrics.path",
		"log.level", "log.format", "log.output_paths", "log.error_output_paths",
	} {
		v.SetDefault(key, nil)
	}
}

// Load reads the YAML file at configPath, merges any CLAUSELENS_* environment
// variable overrides, applies engine defaults for unset fields, and validates
// the result.  It returns a fully-populated *Config or a descriptive error.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from CLAUSELENS_* environment
// variables, with no config file required.  This is the preferred loading
// strategy for containerised deployments.
//
// Environment variable naming convention:
//
//	CLAUSELENS_<SECTION>_<FIELD>   e.g.  CLAUSELENS_DATABASE_HOST
func LoadFromEnv() (*Config, error) {
	v := newViper()
	return unmarshalAndFinalize(v)
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath for changes and invokes onChange with the newly
// parsed Config whenever the file is modified on disk.  It is intended for
// hot-reloading non-critical settings such as log level; callers are
// responsible for applying only the safe subset of changes at runtime.
// Analysis thresholds are deliberately NOT hot-reloaded: components capture
// them at construction and a changed threshold takes effect on restart.
//
// Watch is non-blocking; it starts a background goroutine managed by viper.
// A changed file that fails to parse or validate is skipped.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)

	// Initial read — errors are ignored here; callers should call Load first.
	_ = v.ReadInConfig()

	v.WatchConfig()
	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
}

// MustLoad is a convenience wrapper around Load that panics on any error.
// Intended for use in main() where a config-load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

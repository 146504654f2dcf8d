// Package config defines all configuration structures for the
// k12-background-check-interpreter. No I/O or parsing logic lives here,
// only plain data types and validation.
package config

import (
	"fmt"
	"time"

	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/infrastructure/monitoring/logging"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ReferenceConfig selects where the static legal reference tables are loaded
// from. The tables hold statute descriptions and felony lists only, never
// applicant data.
type ReferenceConfig struct {
	// Source is "embedded" (compiled-in tables) or "postgres".
	Source string `mapstructure:"source"`
}

// DatabaseConfig holds PostgreSQL connection parameters for the optional
// postgres-backed reference store.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// RedisConfig holds Redis connection parameters for the verification-result
// cache. Only offense codes and their legal classifications are cached,
// never applicant data.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// GeminiConfig holds parameters for the statute-retrieval oracle.
type GeminiConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// OpenAIConfig holds parameters for the generative legal-analysis and chat
// oracle.
type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Temperature float64       `mapstructure:"temperature"`
}

// WebSearchConfig holds parameters for the web-search fallback oracle.
type WebSearchConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxResults int           `mapstructure:"max_results"`
}

// OraclesConfig groups the three knowledge-source oracle configurations.
type OraclesConfig struct {
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	WebSearch WebSearchConfig `mapstructure:"websearch"`
}

// PipelineConfig holds verification-pipeline and batch-orchestration
// tunables.
type PipelineConfig struct {
	// MaxConcurrency caps per-batch fan-out across codes.
	MaxConcurrency int `mapstructure:"max_concurrency"`

	// OracleTimeout bounds every individual oracle call; an expired call is
	// treated as "source did not find it".
	OracleTimeout time.Duration `mapstructure:"oracle_timeout"`

	// RetryMaxAttempts and RetryBaseDelay parameterise the shared
	// exponential-backoff retry combinator used by all oracle adapters.
	RetryMaxAttempts int           `mapstructure:"retry_max_attempts"`
	RetryBaseDelay   time.Duration `mapstructure:"retry_base_delay"`
	RetryMaxDelay    time.Duration `mapstructure:"retry_max_delay"`

	// CacheTTL is the time-to-live for cached verification results.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// ChatConfig holds chat guardrail and disclaimer tunables.
type ChatConfig struct {
	// MaxHistoryTurns bounds how many prior turns are forwarded to the chat
	// oracle with each request.
	MaxHistoryTurns int `mapstructure:"max_history_turns"`

	// DisclaimerMinLength is the reply length above which a missing legal
	// disclaimer is appended.
	DisclaimerMinLength int `mapstructure:"disclaimer_min_length"`
}

// Config is the root configuration structure for the interpreter.
type Config struct {
	Server    ServerConfig      `mapstructure:"server"`
	Log       logging.LogConfig `mapstructure:"log"`
	Reference ReferenceConfig   `mapstructure:"reference"`
	Database  DatabaseConfig    `mapstructure:"database"`
	Redis     RedisConfig       `mapstructure:"redis"`
	Oracles   OraclesConfig     `mapstructure:"oracles"`
	Pipeline  PipelineConfig    `mapstructure:"pipeline"`
	Chat      ChatConfig        `mapstructure:"chat"`
}

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	switch c.Reference.Source {
	case "embedded":
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("config: database.host is required when reference.source is postgres")
		}
		if c.Database.User == "" {
			return fmt.Errorf("config: database.user is required when reference.source is postgres")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("config: database.db_name is required when reference.source is postgres")
		}
	default:
		return fmt.Errorf("config: reference.source %q is invalid; expected embedded|postgres", c.Reference.Source)
	}

	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required when redis.enabled is true")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
		}
	}

	if c.Pipeline.MaxConcurrency < 1 {
		return fmt.Errorf("config: pipeline.max_concurrency must be >= 1, got %d", c.Pipeline.MaxConcurrency)
	}
	if c.Pipeline.RetryMaxAttempts < 1 {
		return fmt.Errorf("config: pipeline.retry_max_attempts must be >= 1, got %d", c.Pipeline.RetryMaxAttempts)
	}

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

package config

import "time"

// Default value constants.
const (
	DefaultServerPort = 8080
	DefaultServerMode = "release"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultReferenceSource = "embedded"

	DefaultDBHost  = "localhost"
	DefaultDBPort  = 5432
	DefaultDBName  = "k12check"
	DefaultDBConns = 10

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "k12check:"

	DefaultGeminiModel = "gemini-1.5-pro"
	DefaultOpenAIModel = "gpt-5.2"

	DefaultMaxConcurrency   = 8
	DefaultOracleTimeout    = 30 * time.Second
	DefaultRetryMaxAttempts = 3
	DefaultRetryBaseDelay   = time.Second
	DefaultRetryMaxDelay    = 10 * time.Second
	DefaultCacheTTL         = 24 * time.Hour

	DefaultMaxHistoryTurns     = 10
	DefaultDisclaimerMinLength = 200
)

// ApplyDefaults fills every zero-value field in cfg with the platform
// default. Fields already set by the caller are left unchanged so explicit
// configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	if cfg.Reference.Source == "" {
		cfg.Reference.Source = DefaultReferenceSource
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultCacheTTL
	}

	if cfg.Oracles.Gemini.Model == "" {
		cfg.Oracles.Gemini.Model = DefaultGeminiModel
	}
	if cfg.Oracles.Gemini.Timeout == 0 {
		cfg.Oracles.Gemini.Timeout = DefaultOracleTimeout
	}
	if cfg.Oracles.OpenAI.Model == "" {
		cfg.Oracles.OpenAI.Model = DefaultOpenAIModel
	}
	if cfg.Oracles.OpenAI.Timeout == 0 {
		cfg.Oracles.OpenAI.Timeout = DefaultOracleTimeout
	}
	if cfg.Oracles.WebSearch.Timeout == 0 {
		cfg.Oracles.WebSearch.Timeout = DefaultOracleTimeout
	}
	if cfg.Oracles.WebSearch.MaxResults == 0 {
		cfg.Oracles.WebSearch.MaxResults = 5
	}

	if cfg.Pipeline.MaxConcurrency == 0 {
		cfg.Pipeline.MaxConcurrency = DefaultMaxConcurrency
	}
	if cfg.Pipeline.OracleTimeout == 0 {
		cfg.Pipeline.OracleTimeout = DefaultOracleTimeout
	}
	if cfg.Pipeline.RetryMaxAttempts == 0 {
		cfg.Pipeline.RetryMaxAttempts = DefaultRetryMaxAttempts
	}
	if cfg.Pipeline.RetryBaseDelay == 0 {
		cfg.Pipeline.RetryBaseDelay = DefaultRetryBaseDelay
	}
	if cfg.Pipeline.RetryMaxDelay == 0 {
		cfg.Pipeline.RetryMaxDelay = DefaultRetryMaxDelay
	}
	if cfg.Pipeline.CacheTTL == 0 {
		cfg.Pipeline.CacheTTL = DefaultCacheTTL
	}

	if cfg.Chat.MaxHistoryTurns == 0 {
		cfg.Chat.MaxHistoryTurns = DefaultMaxHistoryTurns
	}
	if cfg.Chat.DisclaimerMinLength == 0 {
		cfg.Chat.DisclaimerMinLength = DefaultDisclaimerMinLength
	}
}

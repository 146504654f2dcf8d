// Package app assembles the interpreter's dependency graph from a loaded
// Config. Both binaries (the API server and the CLI) build the same graph;
// optional infrastructure that is not configured is replaced with
// unavailable stand-ins so the verification pipeline degrades instead of
// failing to start.
package app

import (
	"context"
	"fmt"

	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/application/analysis"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/application/chat"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/application/lookup"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/application/verification"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/config"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/domain/offense"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/infrastructure/database/postgres"
	redisdb "github.com/charlesmartinedd/k12-background-check-interpreter/internal/infrastructure/database/redis"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/infrastructure/monitoring/logging"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/infrastructure/monitoring/prometheus"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/infrastructure/reference"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/intelligence/common"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/intelligence/legalgpt"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/intelligence/statuterag"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/intelligence/websearch"
)

// App is the assembled interpreter: the batch orchestrator, the chat
// service, and the infrastructure handles that need closing on shutdown.
type App struct {
	Config       *config.Config
	Logger       logging.Logger
	Metrics      *prometheus.Metrics
	Orchestrator *analysis.Orchestrator
	Chat         *chat.Service

	Redis    *redisdb.Client      // nil when redis is disabled
	Postgres *postgres.Connection // nil when the embedded reference store is used
}

// New builds the full dependency graph. Missing oracle credentials do not
// fail construction: the affected stage reports unavailable and the
// pipeline falls through to the next source.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	a := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: prometheus.NewMetrics(),
	}

	store, err := a.buildReferenceStore(ctx)
	if err != nil {
		return nil, err
	}
	local := lookup.NewService(store, logger)

	policy := retryPolicy(cfg.Pipeline)
	retriever := a.buildRetriever(ctx, policy)
	analyzer, chatOracle := a.buildOpenAI(policy)
	searcher := a.buildSearcher(policy)

	pipelineOpts := []verification.Option{
		verification.WithMetrics(a.Metrics),
		verification.WithOracleTimeout(cfg.Pipeline.OracleTimeout),
	}
	if cache := a.buildCache(ctx); cache != nil {
		pipelineOpts = append(pipelineOpts, verification.WithCache(cache, cfg.Pipeline.CacheTTL))
	}
	pipeline := verification.NewPipeline(local, retriever, analyzer, searcher, logger, pipelineOpts...)

	a.Orchestrator = analysis.NewOrchestrator(local, retriever, analyzer, pipeline,
		cfg.Pipeline.MaxConcurrency, a.Metrics, logger)
	a.Chat = chat.NewService(chatOracle, cfg.Chat, a.Metrics, logger)

	return a, nil
}

// Close releases infrastructure handles. Safe to call on a partially
// constructed App.
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warn("redis close failed", logging.Err(err))
		}
	}
	if a.Postgres != nil {
		a.Postgres.Close()
	}
}

func (a *App) buildReferenceStore(ctx context.Context) (offense.ReferenceStore, error) {
	if a.Config.Reference.Source == "postgres" {
		conn, err := postgres.NewConnection(ctx, a.Config.Database, a.Logger)
		if err != nil {
			return nil, fmt.Errorf("app: postgres reference store: %w", err)
		}
		a.Postgres = conn

		if path := a.Config.Database.MigrationPath; path != "" {
			if err := postgres.RunMigrations(postgres.BuildDSN(a.Config.Database), path); err != nil {
				return nil, fmt.Errorf("app: reference migrations: %w", err)
			}
		}
		return postgres.NewReferenceStore(conn), nil
	}

	store, err := reference.NewEmbeddedStore()
	if err != nil {
		return nil, fmt.Errorf("app: embedded reference store: %w", err)
	}
	return store, nil
}

func (a *App) buildCache(ctx context.Context) redisdb.Cache {
	if !a.Config.Redis.Enabled {
		return nil
	}
	client, err := redisdb.NewClient(ctx, redisdb.Options{
		Addr:         a.Config.Redis.Addr,
		Password:     a.Config.Redis.Password,
		DB:           a.Config.Redis.DB,
		PoolSize:     a.Config.Redis.PoolSize,
		DialTimeout:  a.Config.Redis.DialTimeout,
		ReadTimeout:  a.Config.Redis.ReadTimeout,
		WriteTimeout: a.Config.Redis.WriteTimeout,
	}, a.Logger)
	if err != nil {
		// The cache is an optimization; a dead Redis must not block startup.
		a.Logger.Warn("redis unavailable, verification cache disabled", logging.Err(err))
		return nil
	}
	a.Redis = client
	return redisdb.NewCache(client, a.Logger,
		redisdb.WithPrefix(a.Config.Redis.KeyPrefix),
		redisdb.WithDefaultTTL(a.Config.Redis.DefaultTTL))
}

func (a *App) buildRetriever(ctx context.Context, policy common.RetryPolicy) offense.StatuteRetriever {
	if a.Config.Oracles.Gemini.APIKey == "" {
		a.Logger.Warn("gemini api key not configured, statute retrieval disabled")
		return unavailableRetriever{}
	}
	r, err := statuterag.NewRetriever(ctx, a.Config.Oracles.Gemini, policy, a.Logger)
	if err != nil {
		a.Logger.Warn("statute retriever init failed, stage disabled", logging.Err(err))
		return unavailableRetriever{}
	}
	return r
}

func (a *App) buildOpenAI(policy common.RetryPolicy) (offense.LegalAnalyzer, chat.Oracle) {
	if a.Config.Oracles.OpenAI.APIKey == "" {
		a.Logger.Warn("openai api key not configured, analysis and chat disabled")
		return unavailableAnalyzer{}, unavailableChat{}
	}
	client, err := legalgpt.NewClient(a.Config.Oracles.OpenAI, policy, a.Logger)
	if err != nil {
		a.Logger.Warn("openai client init failed, analysis and chat disabled", logging.Err(err))
		return unavailableAnalyzer{}, unavailableChat{}
	}
	return client, client
}

func (a *App) buildSearcher(policy common.RetryPolicy) offense.WebSearcher {
	if a.Config.Oracles.WebSearch.APIKey == "" {
		a.Logger.Warn("web search api key not configured, search fallback disabled")
		return unavailableSearcher{}
	}
	s, err := websearch.NewSearcher(a.Config.Oracles.WebSearch, policy, a.Logger)
	if err != nil {
		a.Logger.Warn("web searcher init failed, stage disabled", logging.Err(err))
		return unavailableSearcher{}
	}
	return s
}

func retryPolicy(cfg config.PipelineConfig) common.RetryPolicy {
	policy := common.DefaultRetryPolicy()
	if cfg.RetryMaxAttempts > 0 {
		policy.MaxAttempts = cfg.RetryMaxAttempts
	}
	if cfg.RetryBaseDelay > 0 {
		policy.InitialBackoff = cfg.RetryBaseDelay
	}
	if cfg.RetryMaxDelay > 0 {
		policy.MaxBackoff = cfg.RetryMaxDelay
	}
	return policy
}

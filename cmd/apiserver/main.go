// API server entry point for the K-12 background check interpreter.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/app"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/config"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/infrastructure/monitoring/logging"
	httpserver "github.com/charlesmartinedd/k12-background-check-interpreter/internal/interfaces/http"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/interfaces/http/handlers"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)

	logger.Info("starting k12check api server",
		logging.Int("port", cfg.Server.Port),
		logging.String("reference_source", cfg.Reference.Source))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to assemble application", logging.Err(err))
	}
	defer application.Close()

	health := handlers.NewHealthHandler()
	if application.Redis != nil {
		health.WithDependency("redis", application.Redis)
	}
	if application.Postgres != nil {
		health.WithDependency("postgres", healthPing{application.Postgres.HealthCheck})
	}

	server := httpserver.NewServer(cfg.Server, httpserver.Handlers{
		Analyze: handlers.NewAnalyzeHandler(application.Orchestrator, application.Chat, logger),
		Chat:    handlers.NewChatHandler(application.Chat, logger),
		Health:  health,
	}, application.Metrics, logger)

	errc := make(chan error, 1)
	go func() { errc <- server.Run() }()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errc:
		if err != nil {
			logger.Error("http server failed", logging.Err(err))
		}
	}

	if err := server.Shutdown(context.Background()); err != nil {
		logger.Error("http server shutdown error", logging.Err(err))
	}
	logger.Info("server stopped")
}

// healthPing adapts a bare health-check func to the handlers.Pinger
// interface.
type healthPing struct {
	check func(ctx context.Context) error
}

func (h healthPing) Ping(ctx context.Context) error { return h.check(ctx) }

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// No file on disk: environment variables plus defaults.
		return config.LoadFromEnv()
	}
	return config.Load(path)
}

package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/infrastructure/monitoring/logging"
	httpserver "github.com/charlesmartinedd/k12-background-check-interpreter/internal/interfaces/http"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/interfaces/http/handlers"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long:  "Serves the analysis and chat API until interrupted. Equivalent to the apiserver binary.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			defer cliCtx.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, err := cliCtx.App(ctx)
			if err != nil {
				return err
			}

			serverCfg := cliCtx.Config.Server
			if port > 0 {
				serverCfg.Port = port
			}

			health := handlers.NewHealthHandler()
			if application.Redis != nil {
				health.WithDependency("redis", application.Redis)
			}

			server := httpserver.NewServer(serverCfg, httpserver.Handlers{
				Analyze: handlers.NewAnalyzeHandler(application.Orchestrator, application.Chat, cliCtx.Logger),
				Chat:    handlers.NewChatHandler(application.Chat, cliCtx.Logger),
				Health:  health,
			}, application.Metrics, cliCtx.Logger)

			errc := make(chan error, 1)
			go func() { errc <- server.Run() }()

			select {
			case <-ctx.Done():
				cliCtx.Logger.Info("shutdown signal received")
			case err := <-errc:
				if err != nil {
					cliCtx.Logger.Error("http server failed", logging.Err(err))
					return err
				}
			}
			return server.Shutdown(context.Background())
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides config)")
	return cmd
}

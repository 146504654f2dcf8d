// Package http wires the gin engine: routes, middleware, and server
// lifecycle.
package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/config"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/infrastructure/monitoring/logging"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/infrastructure/monitoring/prometheus"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/interfaces/http/handlers"
	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/interfaces/http/middleware"
)

// Handlers groups the endpoint handlers the server mounts.
type Handlers struct {
	Analyze *handlers.AnalyzeHandler
	Chat    *handlers.ChatHandler
	Health  *handlers.HealthHandler
}

// Server is the HTTP front of the interpreter.
type Server struct {
	cfg    config.ServerConfig
	engine *gin.Engine
	srv    *http.Server
	logger logging.Logger
}

// NewServer builds the gin engine with all routes and middleware mounted.
// metrics may be nil, in which case /metrics is not registered.
func NewServer(cfg config.ServerConfig, h Handlers, metrics *prometheus.Metrics, log logging.Logger) *Server {
	gin.SetMode(ginMode(cfg.Mode))

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.RequestLogging(log, "/healthz", "/metrics"),
		middleware.CORS(),
	)

	engine.GET("/healthz", h.Health.Healthz)
	if metrics != nil {
		engine.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	v1 := engine.Group("/api/v1")
	{
		v1.POST("/analyze", h.Analyze.Analyze)
		v1.POST("/chat", h.Chat.Chat)
		v1.POST("/chat/stream", h.Chat.ChatStream)
	}

	return &Server{
		cfg:    cfg,
		engine: engine,
		logger: log.Named("http"),
		srv: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      engine,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine { return s.engine }

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info("http server listening", logging.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("http server shutting down")
	return s.srv.Shutdown(shutdownCtx)
}

func ginMode(mode string) string {
	switch mode {
	case "debug":
		return gin.DebugMode
	case "test":
		return gin.TestMode
	default:
		return gin.ReleaseMode
	}
}

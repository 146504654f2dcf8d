// Package middleware provides the HTTP cross-cutting concerns: request
// logging and CORS.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/infrastructure/monitoring/logging"
)

// RequestLogging logs method, path, status, and latency for every request.
// High-frequency probe paths are skipped to keep the log readable.
func RequestLogging(logger logging.Logger, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		fields := []logging.Field{
			logging.String("method", c.Request.Method),
			logging.String("path", path),
			logging.Int("status", status),
			logging.Duration("duration", time.Since(start)),
			logging.Int("bytes", c.Writer.Size()),
			logging.String("client_ip", c.ClientIP()),
		}

		switch {
		case status >= 500:
			logger.Error("http request completed with server error", fields...)
		case status >= 400:
			logger.Warn("http request completed with client error", fields...)
		default:
			logger.Info("http request completed", fields...)
		}
	}
}

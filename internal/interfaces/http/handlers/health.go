package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger checks reachability of one dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports process liveness and optional dependency status.
// Dependencies are named so the probe output identifies what is down.
type HealthHandler struct {
	deps map[string]Pinger
}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{deps: map[string]Pinger{}}
}

// WithDependency registers a named dependency to include in readiness
// checks. Nil pingers are ignored so callers can pass optional components
// unconditionally.
func (h *HealthHandler) WithDependency(name string, p Pinger) *HealthHandler {
	if p != nil {
		h.deps[name] = p
	}
	return h
}

// Healthz handles GET /healthz. The process is healthy as long as it can
// serve; dependency failures degrade the response body but the status stays
// 200 unless every dependency is down.
func (h *HealthHandler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := map[string]string{}
	failed := 0
	for name, p := range h.deps {
		if err := p.Ping(ctx); err != nil {
			deps[name] = "down"
			failed++
		} else {
			deps[name] = "up"
		}
	}
	if len(h.deps) > 0 && failed == len(h.deps) {
		status = http.StatusServiceUnavailable
	}

	body := gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)}
	if len(deps) > 0 {
		body["dependencies"] = deps
	}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}

	c.JSON(status, body)
}

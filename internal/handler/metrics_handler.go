package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/relief-verification-api/internal/service"
	"github.com/noah-isme/relief-verification-api/pkg/jobs"
)

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	checks  map[string]ReadinessCheck
	queue   func() jobs.Stats
}

// NewMetricsHandler constructs a metrics handler. queueStats may be nil.
func NewMetricsHandler(metrics *service.MetricsService, checks map[string]ReadinessCheck, queueStats func() jobs.Stats) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, checks: checks, queue: queueStats}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health responds with a generic OK payload for liveness usage.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready runs every readiness check and reports 503 if any fails.
func (h *MetricsHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}
	body := gin.H{"status": http.StatusText(status), "checks": results}
	if h.queue != nil {
		body["notifications"] = h.queue()
	}
	c.JSON(status, body)
}

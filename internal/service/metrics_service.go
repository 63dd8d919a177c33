package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and the verification workflow.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheLookups    *prometheus.CounterVec

	autoApprovalDecisions *prometheus.CounterVec
	verificationActions   *prometheus.CounterVec
	batchDuration         *prometheus.HistogramVec
	batchItems            *prometheus.CounterVec
	achievementsAwarded   *prometheus.CounterVec
	notifications         *prometheus.CounterVec
	auditPurged           prometheus.Counter
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by result",
		}, []string{"result"}),
		autoApprovalDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auto_approval_decisions_total",
			Help: "Auto-approval decisions by item type and reason",
		}, []string{"type", "reason"}),
		verificationActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "verification_actions_total",
			Help: "Coordinator verification actions by item type, action and outcome",
		}, []string{"type", "action", "outcome"}),
		batchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "verification_batch_duration_seconds",
			Help:    "Duration of batch verification operations",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"type", "operation"}),
		batchItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "verification_batch_items_total",
			Help: "Batch items by per-item outcome",
		}, []string{"type", "operation", "outcome"}),
		achievementsAwarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "donor_achievements_awarded_total",
			Help: "Donor achievements created by type",
		}, []string{"type"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Notification dispatch attempts by event and outcome",
		}, []string{"event", "outcome"}),
		auditPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "audit_logs_purged_total",
			Help: "Audit log rows removed by the retention job",
		}),
	}
	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache reads",
		Buckets: prometheus.DefBuckets,
	})
	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache writes",
		Buckets: prometheus.DefBuckets,
	})
	m.cacheLatency = cacheLatency
	m.cacheWrite = cacheWrite

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(m.requestDuration, m.requestTotal, m.cacheLookups, cacheLatency, cacheWrite,
		m.autoApprovalDecisions, m.verificationActions, m.batchDuration, m.batchItems,
		m.achievementsAwarded, m.notifications, m.auditPurged, goroutines)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Registry exposes the underlying registry for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveCacheWrite tracks cache write latency.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordAutoApprovalDecision counts a rule matcher outcome.
func (m *MetricsService) RecordAutoApprovalDecision(itemType, reason string) {
	if m == nil {
		return
	}
	m.autoApprovalDecisions.WithLabelValues(itemType, reason).Inc()
}

// RecordVerificationAction counts a coordinator action.
func (m *MetricsService) RecordVerificationAction(itemType, action string, err error) {
	if m == nil {
		return
	}
	m.verificationActions.WithLabelValues(itemType, action, outcomeLabel(err)).Inc()
}

// ObserveBatch records a completed batch run and its per-item outcomes.
func (m *MetricsService) ObserveBatch(itemType, operation string, duration time.Duration, succeeded, skipped, failed int) {
	if m == nil {
		return
	}
	m.batchDuration.WithLabelValues(itemType, operation).Observe(duration.Seconds())
	m.batchItems.WithLabelValues(itemType, operation, "succeeded").Add(float64(succeeded))
	m.batchItems.WithLabelValues(itemType, operation, "skipped").Add(float64(skipped))
	m.batchItems.WithLabelValues(itemType, operation, "failed").Add(float64(failed))
}

// RecordAchievement counts an awarded achievement.
func (m *MetricsService) RecordAchievement(achievementType string) {
	if m == nil {
		return
	}
	m.achievementsAwarded.WithLabelValues(achievementType).Inc()
}

// RecordNotification counts a notification dispatch attempt.
func (m *MetricsService) RecordNotification(event string, err error) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(event, outcomeLabel(err)).Inc()
}

// AddAuditPurged adds purged audit rows.
func (m *MetricsService) AddAuditPurged(rows int64) {
	if m == nil || rows <= 0 {
		return
	}
	m.auditPurged.Add(float64(rows))
}

func outcomeLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Package telemetry provides Prometheus metrics and OpenTelemetry spans for
// the formfill service. A nil *Provider is valid and records nothing.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/jonesrussell/north-cloud/formfill/infrastructure/metrics"
)

const serviceName = "formfill"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds all formfill Prometheus metrics
type Metrics struct {
	// Session metrics
	SessionsTotal  *prometheus.CounterVec
	SessionsActive prometheus.Gauge

	// Classification metrics
	ClassificationCalls    *prometheus.CounterVec
	ClassificationDuration *prometheus.HistogramVec
	BatchShards            prometheus.Histogram

	// Planner metrics
	ActionsEmitted   *prometheus.CounterVec
	OptionsUnmatched prometheus.Counter
	ResolveTotal     *prometheus.CounterVec

	// Notification metrics
	NotificationsDropped *prometheus.CounterVec
}

// Provider wraps telemetry providers
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics
	HTTP    *metrics.HTTP
}

// NewProvider registers the metrics with the default registry. Call it once
// per process.
func NewProvider() *Provider {
	return &Provider{
		Tracer:  otel.Tracer(serviceName),
		Metrics: initMetrics(),
		HTTP:    metrics.NewHTTP(serviceName, prometheus.DefaultRegisterer),
	}
}

// HTTPMiddleware records request metrics. It passes requests through on a nil
// Provider.
func (p *Provider) HTTPMiddleware() gin.HandlerFunc {
	if p == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return p.HTTP.Middleware()
}

// Handler returns the Prometheus HTTP handler for /metrics endpoint
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

func initMetrics() *Metrics {
	m := &Metrics{}
	initSessionMetrics(m)
	initClassificationMetrics(m)
	initPlannerMetrics(m)
	initNotificationMetrics(m)
	return m
}

func initSessionMetrics(m *Metrics) {
	m.SessionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "formfill_sessions_total",
		Help: "Total work sessions by outcome",
	}, []string{"outcome"})

	m.SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "formfill_sessions_active",
		Help: "Work sessions currently running",
	})
}

func initClassificationMetrics(m *Metrics) {
	m.ClassificationCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "formfill_classification_calls_total",
		Help: "Total LLM calls by pass and outcome",
	}, []string{"pass", "outcome"})

	m.ClassificationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "formfill_classification_duration_seconds",
		Help:    "Duration of a single LLM call",
		Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 60, 120},
	}, []string{"pass"})

	m.BatchShards = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "formfill_batch_shards",
		Help:    "Number of shards per classification batch",
		Buckets: []float64{1, 2, 4, 8, 16},
	})
}

func initPlannerMetrics(m *Metrics) {
	m.ActionsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "formfill_actions_emitted_total",
		Help: "Total planned actions by event type",
	}, []string{"type"})

	m.OptionsUnmatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "formfill_options_unmatched_total",
		Help: "Resolved select answers that matched no option",
	})

	m.ResolveTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "formfill_resolve_total",
		Help: "Single-element resolve queries by outcome",
	}, []string{"outcome"})
}

func initNotificationMetrics(m *Metrics) {
	m.NotificationsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "formfill_notifications_dropped_total",
		Help: "Notifications a sink failed to accept",
	}, []string{"sink"})
}

func outcome(success bool) string {
	if success {
		return OutcomeSuccess
	}
	return OutcomeFailure
}

// SessionStarted marks a session as running.
func (p *Provider) SessionStarted() {
	if p == nil {
		return
	}
	p.Metrics.SessionsActive.Inc()
}

// SessionFinished records a finished session.
func (p *Provider) SessionFinished(success bool) {
	if p == nil {
		return
	}
	p.Metrics.SessionsActive.Dec()
	p.Metrics.SessionsTotal.WithLabelValues(outcome(success)).Inc()
}

// RecordCall records one LLM call.
func (p *Provider) RecordCall(pass string, success bool, duration time.Duration) {
	if p == nil {
		return
	}
	p.Metrics.ClassificationCalls.WithLabelValues(pass, outcome(success)).Inc()
	p.Metrics.ClassificationDuration.WithLabelValues(pass).Observe(duration.Seconds())
}

// RecordBatch records the shard count of a batch.
func (p *Provider) RecordBatch(shards int) {
	if p == nil {
		return
	}
	p.Metrics.BatchShards.Observe(float64(shards))
}

// RecordAction counts an emitted action.
func (p *Provider) RecordAction(eventType string) {
	if p == nil {
		return
	}
	p.Metrics.ActionsEmitted.WithLabelValues(eventType).Inc()
}

// RecordUnmatchedOption counts a select answer outside the option set.
func (p *Provider) RecordUnmatchedOption() {
	if p == nil {
		return
	}
	p.Metrics.OptionsUnmatched.Inc()
}

// RecordResolve counts a resolve query.
func (p *Provider) RecordResolve(success bool) {
	if p == nil {
		return
	}
	p.Metrics.ResolveTotal.WithLabelValues(outcome(success)).Inc()
}

// RecordDropped counts a notification a sink did not accept.
func (p *Provider) RecordDropped(sink string) {
	if p == nil {
		return
	}
	p.Metrics.NotificationsDropped.WithLabelValues(sink).Inc()
}

// StartSpan starts a new trace span.
// The caller is responsible for ending the span with span.End().
//
//nolint:spancheck // Caller is responsible for ending the span
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if p == nil {
		return noop.NewTracerProvider().Tracer(serviceName).Start(ctx, name)
	}
	return p.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DiscordMetrics is what the Discord-facing managers record per operation.
type DiscordMetrics interface {
	RecordAPIRequest(ctx context.Context, operation string)
	RecordAPIError(ctx context.Context, operation, kind string)
	RecordAPIRequestDuration(ctx context.Context, operation string, duration time.Duration)
}

// OsuMetrics is what the osu! API client records per request.
type OsuMetrics interface {
	RecordOsuRequest(endpoint, outcome string, duration time.Duration)
}

// CacheMetrics is recorded by the star-rating lookup.
type CacheMetrics interface {
	RecordStarRating(result string)
}

// Metrics holds every Prometheus collector the bot exposes. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	operations        *prometheus.CounterVec
	operationErrors   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	osuRequests       *prometheus.CounterVec
	osuDuration       *prometheus.HistogramVec
	starRatings       *prometheus.CounterVec
	activeSessions    prometheus.Gauge
	linkedAccounts    prometheus.Gauge
	accountEvents     *prometheus.CounterVec
	starCacheEntries  prometheus.Gauge
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		operations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "osubot",
			Name:      "operations_total",
			Help:      "Completed bot operations by name.",
		}, []string{"operation"}),
		operationErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "osubot",
			Name:      "operation_errors_total",
			Help:      "Failed bot operations by name and error kind.",
		}, []string{"operation", "kind"}),
		operationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "osubot",
			Name:      "operation_duration_seconds",
			Help:      "Bot operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		osuRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "osubot",
			Name:      "osu_api_requests_total",
			Help:      "osu! API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		osuDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "osubot",
			Name:      "osu_api_request_duration_seconds",
			Help:      "osu! API request latency.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2, 4, 8},
		}, []string{"endpoint"}),
		starRatings: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "osubot",
			Name:      "star_rating_lookups_total",
			Help:      "Mod-adjusted star rating lookups by result (hit, miss, fallback, base).",
		}, []string{"result"}),
		activeSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "osubot",
			Name:      "pagination_sessions_active",
			Help:      "Top plays menus that still accept button presses.",
		}),
		linkedAccounts: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "osubot",
			Name:      "linked_accounts",
			Help:      "Discord users with a linked osu! account.",
		}),
		accountEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "osubot",
			Name:      "account_events_total",
			Help:      "Account link events consumed, by topic.",
		}, []string{"topic"}),
		starCacheEntries: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "osubot",
			Name:      "star_rating_cache_entries",
			Help:      "Memoized mod-adjusted star ratings.",
		}),
	}
}

func (m *Metrics) RecordAPIRequest(_ context.Context, operation string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation).Inc()
}

func (m *Metrics) RecordAPIError(_ context.Context, operation, kind string) {
	if m == nil {
		return
	}
	m.operationErrors.WithLabelValues(operation, kind).Inc()
}

func (m *Metrics) RecordAPIRequestDuration(_ context.Context, operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *Metrics) RecordOsuRequest(endpoint, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.osuRequests.WithLabelValues(endpoint, outcome).Inc()
	m.osuDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *Metrics) RecordStarRating(result string) {
	if m == nil {
		return
	}
	m.starRatings.WithLabelValues(result).Inc()
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.activeSessions.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
}

func (m *Metrics) SetLinkedAccounts(n int) {
	if m == nil {
		return
	}
	m.linkedAccounts.Set(float64(n))
}

func (m *Metrics) RecordAccountEvent(topic string) {
	if m == nil {
		return
	}
	m.accountEvents.WithLabelValues(topic).Inc()
}

func (m *Metrics) SetStarCacheEntries(n int) {
	if m == nil {
		return
	}
	m.starCacheEntries.Set(float64(n))
}

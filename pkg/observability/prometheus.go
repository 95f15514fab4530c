package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "lineage"

// PrometheusHooks implements every hook interface on Prometheus collectors.
type PrometheusHooks struct {
	fetchTotal    *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	fetchMembers  prometheus.Gauge

	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec

	renderTotal *prometheus.CounterVec
	renderBytes *prometheus.HistogramVec

	cacheEvents *prometheus.CounterVec

	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	upstreamErrors   *prometheus.CounterVec

	serveTotal    *prometheus.CounterVec
	serveDuration *prometheus.HistogramVec
}

// NewPrometheusHooks creates the collectors and registers them with reg.
// A nil reg registers with [prometheus.DefaultRegisterer].
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &PrometheusHooks{
		fetchTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "fetch_total",
			Help: "Snapshot fetches by provider and outcome.",
		}, []string{"provider", "outcome"}),
		fetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "fetch_duration_seconds",
			Help:    "Time spent fetching a snapshot.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		fetchMembers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "snapshot_members",
			Help: "Member count of the most recently fetched snapshot.",
		}),
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "stage_duration_seconds",
			Help:    "Duration of the core pipeline stages.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"stage"}),
		stageErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "stage_errors_total",
			Help: "Failed core pipeline stages.",
		}, []string{"stage"}),
		renderTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "render_total",
			Help: "Rendered artifacts by format and outcome.",
		}, []string{"format", "outcome"}),
		renderBytes: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "render_bytes",
			Help:    "Size of rendered artifacts.",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		}, []string{"format"}),
		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_events_total",
			Help: "Artifact cache hits, misses and writes.",
		}, []string{"key_type", "event"}),
		upstreamRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "upstream_requests_total",
			Help: "Requests to the remote family-tree service.",
		}, []string{"host", "status"}),
		upstreamDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "upstream_request_duration_seconds",
			Help:    "Latency of requests to the remote family-tree service.",
			Buckets: prometheus.DefBuckets,
		}, []string{"host"}),
		upstreamErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "upstream_errors_total",
			Help: "Transport-level failures talking to the remote service.",
		}, []string{"host"}),
		serveTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "Requests served by the HTTP API.",
		}, []string{"method", "route", "status"}),
		serveDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "Latency of the HTTP API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Install registers h for every hook category.
func (h *PrometheusHooks) Install() {
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
	SetServerHooks(h)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (h *PrometheusHooks) OnFetchStart(context.Context, string) {}

func (h *PrometheusHooks) OnFetchComplete(_ context.Context, provider string, members, _ int, d time.Duration, err error) {
	h.fetchTotal.WithLabelValues(provider, outcome(err)).Inc()
	h.fetchDuration.WithLabelValues(provider).Observe(d.Seconds())
	if err == nil {
		h.fetchMembers.Set(float64(members))
	}
}

func (h *PrometheusHooks) OnStageComplete(_ context.Context, stage string, d time.Duration, err error) {
	h.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		h.stageErrors.WithLabelValues(stage).Inc()
	}
}

func (h *PrometheusHooks) OnRenderStart(context.Context, string) {}

func (h *PrometheusHooks) OnRenderComplete(_ context.Context, format string, size int, _ time.Duration, err error) {
	h.renderTotal.WithLabelValues(format, outcome(err)).Inc()
	if err == nil {
		h.renderBytes.WithLabelValues(format).Observe(float64(size))
	}
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, _ int) {
	h.cacheEvents.WithLabelValues(keyType, "set").Inc()
}

func (h *PrometheusHooks) OnRequest(context.Context, string, string, string) {}

func (h *PrometheusHooks) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	h.upstreamRequests.WithLabelValues(host, strconv.Itoa(status)).Inc()
	h.upstreamDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnError(_ context.Context, _, host, _ string, _ error) {
	h.upstreamErrors.WithLabelValues(host).Inc()
}

func (h *PrometheusHooks) OnServe(_ context.Context, method, route string, status int, d time.Duration) {
	h.serveTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	h.serveDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ PipelineHooks = (*PrometheusHooks)(nil)
	_ CacheHooks    = (*PrometheusHooks)(nil)
	_ HTTPHooks     = (*PrometheusHooks)(nil)
	_ ServerHooks   = (*PrometheusHooks)(nil)
)

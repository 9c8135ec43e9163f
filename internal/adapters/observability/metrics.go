package observability

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	PipelineRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "housing", Name: "pipeline_rows_total", Help: "Rows seen per pipeline stage."},
		[]string{"stage"},
	)
	PipelineDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "housing", Name: "pipeline_rows_dropped_total", Help: "Rows dropped during validation."},
		[]string{"reason"}, // reason: duplicate|missing_critical|out_of_range
	)
	ResolverOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "housing", Name: "resolver_towns_total", Help: "Town name resolution outcomes."},
		[]string{"outcome"}, // outcome: matched|unmatched
	)
	PipelineDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "housing", Name: "pipeline_duration_seconds",
			Help:    "Full batch run duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "housing", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "housing", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "housing", Name: "external_requests_total", Help: "Outbound census API requests."},
		[]string{"service", "endpoint", "status"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "housing", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
)

func Serve() {
	addr := os.Getenv("METRICS_ADDR")
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(InitRegistry()))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		PipelineRows, PipelineDropped, ResolverOutcomes, PipelineDuration,
		HTTPRequests, HTTPLatency, ExternalRequests, CacheEvents,
	)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveRows(stage string, n int) {
	PipelineRows.WithLabelValues(stage).Add(float64(n))
}

func ObserveDropped(reason string, n int) {
	PipelineDropped.WithLabelValues(reason).Add(float64(n))
}

func ObserveResolution(outcome string, n int) {
	ResolverOutcomes.WithLabelValues(outcome).Add(float64(n))
}

func ObservePipelineDuration(d time.Duration) {
	PipelineDuration.Observe(d.Seconds())
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}

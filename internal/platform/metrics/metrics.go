package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"fxconvert/internal/adapters"
	"fxconvert/internal/adapters/cache"
	"fxconvert/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every collector the service exports.
type Metrics struct {
	// Rates fetched by converter sessions
	RatesFetchTotal    *prometheus.CounterVec
	RatesFetchDuration prometheus.Histogram

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Sessions
	SessionsCreatedTotal prometheus.Counter
	SessionCacheHits     prometheus.Gauge
	SessionCacheMisses   prometheus.Gauge
	SessionCacheAdded    prometheus.Gauge
	SessionCacheEvicted  prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RatesFetchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxconvert_rates_fetch_total",
				Help: "Rate table fetches issued by converter sessions, by result",
			},
			[]string{"result"},
		),
		RatesFetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fxconvert_rates_fetch_duration_seconds",
				Help:    "Duration of rate table fetches",
				Buckets: prometheus.DefBuckets,
			},
		),

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxconvert_http_requests_total",
				Help: "HTTP requests served, by route, method and status code",
			},
			[]string{"route", "method", "code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fxconvert_http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),

		SessionsCreatedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fxconvert_sessions_created_total",
				Help: "Converter sessions created",
			},
		),
		SessionCacheHits: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "fxconvert_session_cache_hits",
				Help: "Session cache hits since start",
			},
		),
		SessionCacheMisses: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "fxconvert_session_cache_misses",
				Help: "Session cache misses since start",
			},
		),
		SessionCacheAdded: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "fxconvert_session_cache_keys_added",
				Help: "Sessions admitted to the cache since start",
			},
		),
		SessionCacheEvicted: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "fxconvert_session_cache_keys_evicted",
				Help: "Sessions evicted from the cache since start",
			},
		),
	}
}

// Middleware records request counts and latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveSessionCache copies the cache counters into the session gauges.
func (m *Metrics) ObserveSessionCache(stats cache.CacheStats) {
	m.SessionCacheHits.Set(float64(stats.Hits))
	m.SessionCacheMisses.Set(float64(stats.Misses))
	m.SessionCacheAdded.Set(float64(stats.KeysAdded))
	m.SessionCacheEvicted.Set(float64(stats.KeysEvicted))
}

type instrumentedSource struct {
	next    adapters.RatesSource
	metrics *Metrics
}

// InstrumentSource wraps a rates source so every fetch is counted and timed.
func (m *Metrics) InstrumentSource(src adapters.RatesSource) adapters.RatesSource {
	return &instrumentedSource{next: src, metrics: m}
}

func (s *instrumentedSource) FetchRates(ctx context.Context) (domain.RateSnapshot, error) {
	start := time.Now()
	snapshot, err := s.next.FetchRates(ctx)
	s.metrics.RatesFetchDuration.Observe(time.Since(start).Seconds())
	s.metrics.RatesFetchTotal.WithLabelValues(fetchResult(err)).Inc()
	return snapshot, err
}

func (s *instrumentedSource) BaseURL() string { return s.next.BaseURL() }

func fetchResult(err error) string {
	var apiErr *domain.APIError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &apiErr):
		return "api_error"
	default:
		return "transport_error"
	}
}

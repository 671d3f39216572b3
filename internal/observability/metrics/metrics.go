package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "biokuam_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "biokuam_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	registrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "biokuam_registrations_total",
		Help: "Count of successful registrations by record type",
	}, []string{"tipo"})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "biokuam_login_attempts_total",
		Help: "Count of login attempts by result",
	}, []string{"result"})

	upstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "biokuam_upstream_requests_total",
		Help: "Count of third-party API calls by service and result",
	}, []string{"service", "result"})

	weatherCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "biokuam_weather_cache_total",
		Help: "Weather cache lookups by result",
	}, []string{"result"})
)

// ObserveHTTPRequest records one served request.
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveRegistration counts a successful registration of tipo
// (usuario, finca or barco).
func ObserveRegistration(tipo string) {
	registrationsTotal.WithLabelValues(tipo).Inc()
}

// ObserveLogin counts a login attempt with the given result.
func ObserveLogin(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}

// ObserveUpstream counts a third-party API call outcome.
func ObserveUpstream(service, result string) {
	upstreamRequests.WithLabelValues(service, result).Inc()
}

// ObserveWeatherCache counts a cache hit or miss on the weather proxy.
func ObserveWeatherCache(result string) {
	weatherCache.WithLabelValues(result).Inc()
}

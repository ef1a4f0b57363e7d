package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "latex_backend"

// Registry holds every collector exposed on /metrics.
var Registry = prometheus.NewRegistry()

var (
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	requestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	requestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "HTTP requests currently being served.",
		},
	)

	// PDFConversions counts conversions by converter and outcome.
	PDFConversions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pdf_conversions_total",
			Help:      "PDF conversions by converter and outcome.",
		},
		[]string{"converter", "outcome"},
	)

	pdfDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pdf_conversion_duration_seconds",
			Help:      "PDF conversion latency in seconds.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"converter"},
	)

	// LLMRequests counts language model calls by provider and outcome.
	LLMRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Language model calls by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	// RateLimited counts requests rejected by a throttle group.
	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected with 429 by throttle group.",
		},
		[]string{"group"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		requestDuration,
		requestTotal,
		requestsInFlight,
		PDFConversions,
		pdfDuration,
		LLMRequests,
		RateLimited,
	)
}

// Middleware records request count, latency and in-flight requests.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		requestsInFlight.Inc()
		defer requestsInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		labels := prometheus.Labels{
			"method": c.Request.Method,
			"path":   path,
			"status": strconv.Itoa(c.Writer.Status()),
		}
		requestDuration.With(labels).Observe(time.Since(start).Seconds())
		requestTotal.With(labels).Inc()
	}
}

// Handler exposes the registry in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}

// ObservePDFConversion records one conversion attempt.
func ObservePDFConversion(converter, outcome string, elapsed time.Duration) {
	PDFConversions.WithLabelValues(converter, outcome).Inc()
	pdfDuration.WithLabelValues(converter).Observe(elapsed.Seconds())
}

// ObserveLLMRequest records one language model call.
func ObserveLLMRequest(provider, outcome string) {
	LLMRequests.WithLabelValues(provider, outcome).Inc()
}

// ObserveRateLimited records one rejected request.
func ObserveRateLimited(group string) {
	RateLimited.WithLabelValues(group).Inc()
}

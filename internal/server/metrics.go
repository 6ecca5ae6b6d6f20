package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess = "success"
	outcomeInvalid = "invalid"
	outcomeFailure = "failure"
)

// Metrics holds the collectors the server reports on /metrics.
type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.SummaryVec

	analyses         *prometheus.CounterVec
	analysisDuration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		latency: factory.NewSummaryVec(
			prometheus.SummaryOpts{
				Name: "http_request_duration_seconds",
				Help: "HTTP request duration in seconds",
				Objectives: map[float64]float64{
					0.5:  0.05,
					0.9:  0.01,
					0.99: 0.001,
				},
			},
			[]string{"method", "path", "status_code"},
		),
		analyses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resume_matcher_analyses_total",
				Help: "Analyses handled, by analyzer and outcome",
			},
			[]string{"provider", "outcome"},
		),
		analysisDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "resume_matcher_analysis_duration_seconds",
				Help:    "Time spent in the analyzer backend",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"provider"},
		),
	}
}

func (m *Metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		m.latency.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		m.requests.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}

func (m *Metrics) observeAnalysis(provider, outcome string, took time.Duration) {
	m.analyses.WithLabelValues(provider, outcome).Inc()
	if outcome != outcomeInvalid {
		m.analysisDuration.WithLabelValues(provider).Observe(took.Seconds())
	}
}

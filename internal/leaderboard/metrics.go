package leaderboard

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the HTTP and game counters of one server.
//
// Exposed series:
//   - <ns>_http_request_duration_seconds{method,path,status}
//   - <ns>_http_requests_inflight
//   - <ns>_http_request_errors_total{method,path,status} (4xx/5xx)
//   - <ns>_logins_total
//   - <ns>_scores_saved_total{game}
//   - <ns>_score_value{game}
type Metrics struct {
	registry    *prometheus.Registry
	reqDuration *prometheus.HistogramVec
	reqInflight prometheus.Gauge
	reqErrors   *prometheus.CounterVec
	logins      prometheus.Counter
	scoresSaved *prometheus.CounterVec
	scoreValue  *prometheus.HistogramVec
}

// NewMetrics creates the collectors on a private registry so several servers
// can live in one process.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		reqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"method", "path", "status"}),
		reqInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_inflight",
			Help:      "HTTP requests currently being served.",
		}),
		reqErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_request_errors_total",
			Help:      "Requests that ended with a 4xx or 5xx status.",
		}, []string{"method", "path", "status"}),
		logins: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Successful logins.",
		}),
		scoresSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scores_saved_total",
			Help:      "Scores recorded per game.",
		}, []string{"game"}),
		scoreValue: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "score_value",
			Help:      "Distribution of recorded scores.",
			Buckets:   []float64{1, 5, 10, 20, 40, 80, 160},
		}, []string{"game"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.reqDuration, m.reqInflight, m.reqErrors,
		m.logins, m.scoresSaved, m.scoreValue,
	)
	return m
}

// Handler returns the request metrics middleware.
func (m *Metrics) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.reqInflight.Inc()
		c.Next()
		m.reqInflight.Dec()

		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		m.reqDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
		if c.Writer.Status() >= 400 {
			m.reqErrors.WithLabelValues(method, path, status).Inc()
		}
	}
}

// RegisterEndpoint adds GET /metrics to r.
func (m *Metrics) RegisterEndpoint(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})))
}

func (m *Metrics) recordLogin() {
	m.logins.Inc()
}

func (m *Metrics) recordScore(gameID string, score int) {
	m.scoresSaved.WithLabelValues(gameID).Inc()
	m.scoreValue.WithLabelValues(gameID).Observe(float64(score))
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// PrometheusSink implements Sink using Prometheus client library.
// All methods are non-blocking and fire-and-forget.
// Registration errors are logged but never propagated.
type PrometheusSink struct {
	// HTTP metrics
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	// Warehouse metrics
	queriesTotal     *prometheus.CounterVec
	queryErrorsTotal *prometheus.CounterVec
	queryDuration    *prometheus.HistogramVec

	// Jobs API metrics
	submissionsTotal        *prometheus.CounterVec
	submissionDuration      prometheus.Histogram
	circuitRejectionsTotal  prometheus.Counter
	scheduleRejectionsTotal *prometheus.CounterVec

	log logrus.FieldLogger
}

// NewPrometheusSink creates a new Prometheus metrics sink.
// If registration fails, it logs a warning and returns a functional sink.
func NewPrometheusSink(reg prometheus.Registerer, log logrus.FieldLogger) *PrometheusSink {
	s := &PrometheusSink{log: log}
	s.initHTTPMetrics(reg)
	s.initWarehouseMetrics(reg)
	s.initJobsMetrics(reg)
	return s
}

func (s *PrometheusSink) initHTTPMetrics(reg prometheus.Registerer) {
	s.requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkerhub_http_requests_total",
		Help: "Total number of HTTP requests handled.",
	}, []string{"route", "status_class"})
	s.requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkerhub_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"route"})

	s.register(reg, s.requestsTotal, "checkerhub_http_requests_total")
	s.register(reg, s.requestDuration, "checkerhub_http_request_duration_seconds")
}

func (s *PrometheusSink) initWarehouseMetrics(reg prometheus.Registerer) {
	s.queriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkerhub_warehouse_queries_total",
		Help: "Total number of metadata queries run against the SQL warehouse.",
	}, []string{"statement"})
	s.queryErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkerhub_warehouse_query_errors_total",
		Help: "Total number of failed metadata queries.",
	}, []string{"statement"})
	s.queryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkerhub_warehouse_query_duration_seconds",
		Help:    "Metadata query latency in seconds, connection setup included.",
		Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"statement"})

	s.register(reg, s.queriesTotal, "checkerhub_warehouse_queries_total")
	s.register(reg, s.queryErrorsTotal, "checkerhub_warehouse_query_errors_total")
	s.register(reg, s.queryDuration, "checkerhub_warehouse_query_duration_seconds")
}

func (s *PrometheusSink) initJobsMetrics(reg prometheus.Registerer) {
	s.submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkerhub_jobs_submissions_total",
		Help: "Total number of job create calls by response class.",
	}, []string{"status_class"})
	s.submissionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkerhub_jobs_submission_duration_seconds",
		Help:    "Jobs API create latency in seconds.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})
	s.circuitRejectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkerhub_jobs_circuit_rejections_total",
		Help: "Total number of submissions refused while the circuit breaker was open.",
	})
	s.scheduleRejectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkerhub_schedule_rejections_total",
		Help: "Total number of checker submissions refused because no valid schedule could be built.",
	}, []string{"reason"})

	s.register(reg, s.submissionsTotal, "checkerhub_jobs_submissions_total")
	s.register(reg, s.submissionDuration, "checkerhub_jobs_submission_duration_seconds")
	s.register(reg, s.circuitRejectionsTotal, "checkerhub_jobs_circuit_rejections_total")
	s.register(reg, s.scheduleRejectionsTotal, "checkerhub_schedule_rejections_total")
}

// register attempts to register a collector, logging any errors without propagating them.
func (s *PrometheusSink) register(reg prometheus.Registerer, c prometheus.Collector, name string) {
	if err := reg.Register(c); err != nil {
		s.log.Warnf("metrics: failed to register %s: %v", name, err)
	}
}

func (s *PrometheusSink) RequestCompleted(route string, statusCode int, duration time.Duration) {
	s.requestsTotal.WithLabelValues(route, ClassifyStatus(statusCode, nil)).Inc()
	s.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func (s *PrometheusSink) QueryCompleted(statement string, duration time.Duration, err error) {
	s.queriesTotal.WithLabelValues(statement).Inc()
	s.queryDuration.WithLabelValues(statement).Observe(duration.Seconds())
	if err != nil {
		s.queryErrorsTotal.WithLabelValues(statement).Inc()
	}
}

func (s *PrometheusSink) SubmissionCompleted(statusClass string, duration time.Duration) {
	s.submissionsTotal.WithLabelValues(statusClass).Inc()
	s.submissionDuration.Observe(duration.Seconds())
}

func (s *PrometheusSink) CircuitRejected() {
	s.circuitRejectionsTotal.Inc()
}

func (s *PrometheusSink) ScheduleRejected(reason string) {
	s.scheduleRejectionsTotal.WithLabelValues(reason).Inc()
}

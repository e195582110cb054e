package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for Ordinex
type Metrics struct {
	// Detection metrics
	Detections     *prometheus.CounterVec
	DetectionScore prometheus.Histogram
	RiskFlags      *prometheus.CounterVec

	// Breakdown metrics
	Breakdowns         *prometheus.CounterVec
	BreakdownDuration  prometheus.Histogram
	MissionsPerPlan    prometheus.Histogram
	StepsPerBreakdown  prometheus.Histogram
	BreakdownCacheHits *prometheus.CounterVec

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Command execution metrics
	CommandExecutions *prometheus.CounterVec
	CommandDuration   *prometheus.HistogramVec

	// Error metrics (by error code from structured errors)
	Errors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		Detections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ordinex_detections_total",
				Help: "Total number of large-plan detections",
			},
			[]string{"large_plan"},
		),
		DetectionScore: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ordinex_detection_score",
				Help:    "Distribution of large-plan scores",
				Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
			},
		),
		RiskFlags: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ordinex_risk_flags_total",
				Help: "Risk categories flagged by detection",
			},
			[]string{"category"},
		),

		Breakdowns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ordinex_breakdowns_total",
				Help: "Total number of mission breakdowns generated",
			},
			[]string{"forced", "success"},
		),
		BreakdownDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ordinex_breakdown_duration_seconds",
				Help:    "Breakdown generation duration in seconds",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
		),
		MissionsPerPlan: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ordinex_breakdown_missions",
				Help:    "Number of missions per generated breakdown",
				Buckets: []float64{1, 2, 3, 4, 5, 6, 7, 8},
			},
		),
		StepsPerBreakdown: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ordinex_breakdown_steps",
				Help:    "Number of plan steps per generated breakdown",
				Buckets: []float64{1, 5, 10, 16, 24, 32, 48},
			},
		),
		BreakdownCacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ordinex_breakdown_lookups_total",
				Help: "Breakdown lookups by the layer that served them",
			},
			[]string{"source"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ordinex_http_requests_total",
				Help: "Total number of HTTP API requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ordinex_http_request_duration_seconds",
				Help:    "HTTP API request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		CommandExecutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ordinex_command_executions_total",
				Help: "Total number of command executions",
			},
			[]string{"command", "success"},
		),
		CommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ordinex_command_duration_seconds",
				Help:    "Command execution duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),

		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ordinex_errors_total",
				Help: "Total number of errors by error code",
			},
			[]string{"error_code"},
		),
	}
}

// RecordDetection records one detection outcome
func (m *Metrics) RecordDetection(large bool, score int, risks []string) {
	m.Detections.WithLabelValues(strconv.FormatBool(large)).Inc()
	m.DetectionScore.Observe(float64(score))
	for _, r := range risks {
		m.RiskFlags.WithLabelValues(r).Inc()
	}
}

// RecordBreakdown records a breakdown generation attempt. missions and
// steps are only observed on success.
func (m *Metrics) RecordBreakdown(forced, success bool, missions, steps int, d time.Duration) {
	m.Breakdowns.WithLabelValues(strconv.FormatBool(forced), strconv.FormatBool(success)).Inc()
	m.BreakdownDuration.Observe(d.Seconds())
	if success {
		m.MissionsPerPlan.Observe(float64(missions))
		m.StepsPerBreakdown.Observe(float64(steps))
	}
}

// RecordLookup records which layer (cache, store, miss) served a breakdown
func (m *Metrics) RecordLookup(source string) {
	m.BreakdownCacheHits.WithLabelValues(source).Inc()
}

// RecordHTTPRequest records a served API request
func (m *Metrics) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordCommand records a CLI command execution
func (m *Metrics) RecordCommand(command string, success bool, d time.Duration) {
	m.CommandExecutions.WithLabelValues(command, strconv.FormatBool(success)).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(d.Seconds())
}

// RecordError counts an error by its code
func (m *Metrics) RecordError(code string) {
	if code == "" {
		code = "UNKNOWN"
	}
	m.Errors.WithLabelValues(code).Inc()
}

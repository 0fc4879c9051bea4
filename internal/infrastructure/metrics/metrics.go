package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/YoshitsuguKoike/tasktrack/internal/application/port/output"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model"
)

// Metrics holds all Prometheus metrics for tasktrack
type Metrics struct {
	// Task service operations
	Operations *prometheus.CounterVec
	Errors     *prometheus.CounterVec

	// Store contents after the last mutation
	Items     *prometheus.GaugeVec
	Scheduled prometheus.Gauge

	// HTTP API
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

var _ output.OperationObserver = (*Metrics)(nil)

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		Operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tasktrack_operations_total",
				Help: "Total number of task service operations",
			},
			[]string{"operation", "success"},
		),
		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tasktrack_operation_errors_total",
				Help: "Total number of failed operations by error kind",
			},
			[]string{"operation", "kind"},
		),
		Items: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tasktrack_items",
				Help: "Number of stored work items by type",
			},
			[]string{"type"},
		),
		Scheduled: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "tasktrack_scheduled_items",
				Help: "Number of items in the prioritized schedule",
			},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tasktrack_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "code"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tasktrack_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"method", "route"},
		),
	}
}

// NewRegistry creates a new Prometheus registry with metrics
func NewRegistry() (*prometheus.Registry, *Metrics) {
	reg := prometheus.NewRegistry()
	return reg, NewMetrics(reg)
}

// HandlerFor returns an HTTP handler exposing reg
func HandlerFor(reg prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// ObserveOperation counts one operation and classifies its error
func (m *Metrics) ObserveOperation(op string, err error) {
	m.Operations.WithLabelValues(op, strconv.FormatBool(err == nil)).Inc()
	if err != nil {
		m.Errors.WithLabelValues(op, ErrorKind(err)).Inc()
	}
}

// ObserveStore records entity counts
func (m *Metrics) ObserveStore(tasks, epics, subtasks, scheduled int) {
	m.Items.WithLabelValues(model.TaskTypeTask.String()).Set(float64(tasks))
	m.Items.WithLabelValues(model.TaskTypeEpic.String()).Set(float64(epics))
	m.Items.WithLabelValues(model.TaskTypeSubtask.String()).Set(float64(subtasks))
	m.Scheduled.Set(float64(scheduled))
}

// RecordHTTPRequest records one served request
func (m *Metrics) RecordHTTPRequest(method, route string, code int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ErrorKind maps an error onto a low-cardinality label value
func ErrorKind(err error) string {
	var pe *output.PersistenceError
	switch {
	case model.IsValidationError(err):
		return "validation"
	case model.IsStructuralError(err):
		return "structural"
	case errors.As(err, &pe):
		return "persistence"
	default:
		return "other"
	}
}

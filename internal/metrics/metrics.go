package metrics

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// DBQueryDuration tracks logical repository operations, not raw SQL.
	DBQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database operation latency by operation and outcome",
			Buckets:   []float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.35, 0.5, 1, 2, 5},
		},
		[]string{"op", "status"},
	)

	// DBErrorsTotal counts failed repository operations by error class.
	DBErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: "db",
			Name:      "errors_total",
			Help:      "Database operation errors by operation and class",
		},
		[]string{"op", "class"},
	)

	// UsersImportedTotal counts users created through bulk upload.
	UsersImportedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "users_imported_total",
			Help: "Total number of users created by bulk import",
		},
	)
)

var numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)

func init() {
	prometheus.MustRegister(RequestDuration, RequestTotal, DBQueryDuration, DBErrorsTotal, UsersImportedTotal)
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
// E.g. /users/123 -> /users/{id}.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// ObserveDB runs fn and records its latency under op. Errors are counted by class.
func ObserveDB(op string, fn func() error) error {
	start := time.Now()
	err := fn()

	status := "ok"
	if err != nil {
		status = "error"
		DBErrorsTotal.WithLabelValues(op, ClassifyDBErr(err)).Inc()
	}
	DBQueryDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
	return err
}

// AddImported bumps the bulk import counter by n.
func AddImported(n int) {
	UsersImportedTotal.Add(float64(n))
}

// ClassifyDBErr maps an error onto a low-cardinality label.
func ClassifyDBErr(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return "unique_violation"
		case "23502":
			return "not_null_violation"
		case "40001":
			return "serialization_failure"
		case "40P01":
			return "deadlock"
		case "57014":
			return "query_canceled"
		default:
			return "pg_" + string(pqErr.Code)
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return "timeout"
	case strings.Contains(msg, "connection") || strings.Contains(msg, "connect:"):
		return "connection"
	case strings.Contains(msg, "no rows"):
		return "not_found"
	default:
		return "unknown"
	}
}

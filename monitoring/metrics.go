package monitoring

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "path"},
	)
)

var (
	// ClientOperations counts client lifecycle calls by operation and result.
	ClientOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "elabcrm_client_operations_total",
			Help: "Client lifecycle operations by outcome",
		},
		[]string{"operation", "result"},
	)

	CascadeDeletedRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "elabcrm_cascade_deleted_rows_total",
			Help: "Rows removed by client cascade deletes",
		},
		[]string{"table"},
	)

	CommunicationStatusUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "elabcrm_communication_status_updates_total",
			Help: "Communication status changes applied by the sync job",
		},
		[]string{"status"},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			RequestDuration,
			ClientOperations,
			CascadeDeletedRows,
			CommunicationStatusUpdates,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// Result labels an operation outcome.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "energiebuch_"

	ResultSuccess = "success"
	ResultPartial = "partial"
	ResultError   = "error"

	outcomeImported = "imported"
	outcomeSkipped  = "skipped"
	outcomeError    = "error"
)

var (
	registerOnce sync.Once

	importSessions *prometheus.CounterVec
	importLatency  *prometheus.HistogramVec
	importRows     *prometheus.CounterVec

	exportRequests *prometheus.CounterVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		importSessions = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "import_sessions_total",
				Help: "Total import sessions by result",
			},
			[]string{"result"},
		)
		importLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "import_session_latency_seconds",
				Help:    "Import session latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		importRows = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "import_rows_total",
				Help: "Total processed import rows by outcome",
			},
			[]string{"outcome"},
		)

		exportRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_requests_total",
				Help: "Total result export requests by format",
			},
			[]string{"format"},
		)

		prometheus.MustRegister(
			importSessions,
			importLatency,
			importRows,
			exportRequests,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveImportSession records one finished import session.
func ObserveImportSession(result string, duration time.Duration) {
	if importSessions == nil || importLatency == nil {
		return
	}
	importSessions.WithLabelValues(result).Inc()
	importLatency.WithLabelValues(result).Observe(duration.Seconds())
}

// AddImportRows records the per-row outcomes of an import session.
func AddImportRows(imported, skipped, errors int) {
	if importRows == nil {
		return
	}
	if imported > 0 {
		importRows.WithLabelValues(outcomeImported).Add(float64(imported))
	}
	if skipped > 0 {
		importRows.WithLabelValues(outcomeSkipped).Add(float64(skipped))
	}
	if errors > 0 {
		importRows.WithLabelValues(outcomeError).Add(float64(errors))
	}
}

// IncExportRequest counts a result export by format.
func IncExportRequest(format string) {
	if exportRequests == nil {
		return
	}
	exportRequests.WithLabelValues(format).Inc()
}

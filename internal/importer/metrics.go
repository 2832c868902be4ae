package importer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// runsTotal counts import runs by final result.
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "import_runs_total",
		Help: "Total number of import runs by result",
	}, []string{"result"})

	// runDuration tracks the wall time of whole import runs.
	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "import_run_duration_seconds",
		Help:    "Time taken for a whole import run",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})

	// filesProcessed counts processed files by routing outcome.
	filesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "import_files_processed_total",
		Help: "Total number of processed import files by outcome",
	}, []string{"outcome"}) // outcome: success, error

	// fileDuration tracks the time taken per file.
	fileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "import_file_duration_seconds",
		Help:    "Time taken to process one import file",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	})

	// productsBuilt counts product nodes by build outcome.
	productsBuilt = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "import_products_built_total",
		Help: "Total number of product nodes by build outcome",
	}, []string{"outcome"}) // outcome: ok, invalid

	// recordsImported counts flat records handed to the bulk importer.
	recordsImported = promauto.NewCounter(prometheus.CounterOpts{
		Name: "import_records_total",
		Help: "Total number of flat records handed to the bulk importer",
	})

	// attributesCreated counts auto-created attributes.
	attributesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "import_attributes_created_total",
		Help: "Total number of auto-created attributes",
	})

	// categoriesCreated counts auto-created categories.
	categoriesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "import_categories_created_total",
		Help: "Total number of auto-created categories",
	})
)

// MetricsRecorder provides methods to record import metrics.
type MetricsRecorder struct{}

// NewMetricsRecorder creates a new metrics recorder.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{}
}

// RecordRun records a finished run with its result and duration.
func (m *MetricsRecorder) RecordRun(result string, duration time.Duration) {
	runsTotal.WithLabelValues(result).Inc()
	runDuration.Observe(duration.Seconds())
}

// RecordFile records one processed file with its routing outcome.
func (m *MetricsRecorder) RecordFile(success bool, duration time.Duration) {
	outcome := "error"
	if success {
		outcome = "success"
	}
	filesProcessed.WithLabelValues(outcome).Inc()
	fileDuration.Observe(duration.Seconds())
}

// RecordProduct records one built product node.
func (m *MetricsRecorder) RecordProduct(ok bool) {
	outcome := "invalid"
	if ok {
		outcome = "ok"
	}
	productsBuilt.WithLabelValues(outcome).Inc()
}

// RecordRecords records the number of flat records handed off.
func (m *MetricsRecorder) RecordRecords(count int) {
	recordsImported.Add(float64(count))
}

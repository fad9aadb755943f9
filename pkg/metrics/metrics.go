// Package metrics provides Prometheus instrumentation for pipeline
// runs: per-day outcomes, extracted record volume, upload sizes, and
// day-processing latency.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Day outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeSkipped = "skipped"
	OutcomeNoData  = "no_data"
	OutcomeFailed  = "failed"
)

var (
	// DaysProcessed counts processed days by terminal outcome.
	DaysProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bronzeflow",
			Name:      "days_processed_total",
			Help:      "Total pipeline days processed, labeled by terminal outcome",
		},
		[]string{"outcome"},
	)

	// RecordsExtracted counts records extracted on successful days.
	RecordsExtracted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bronzeflow",
			Name:      "records_extracted_total",
			Help:      "Total event records extracted from the source",
		},
	)

	// BytesUploaded counts data bytes written to the sink.
	BytesUploaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bronzeflow",
			Name:      "bytes_uploaded_total",
			Help:      "Total data object bytes uploaded to the sink",
		},
	)

	// DayDuration tracks wall time spent processing a single day.
	DayDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "bronzeflow",
			Name:      "day_duration_seconds",
			Help:      "Wall time to process one pipeline day",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)
)

// Timer measures elapsed time for a unit of work.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDay records the elapsed time into DayDuration and returns it.
func (t *Timer) ObserveDay() time.Duration {
	elapsed := time.Since(t.start)
	DayDuration.Observe(elapsed.Seconds())
	return elapsed
}

package pipeline

import (
	"github.com/helioslabs/bronzeflow/pkg/models"
)

// NoDataMessage is the benign error text recorded when a valid day has
// no materialized data. It is an outcome code, not a transport failure.
const NoDataMessage = "No data found"

// DailyRunResult is the terminal state of one pipeline day. Exactly one
// of the outcome variants holds: success with a sink location, success
// with skipped set, or failure with an error message.
type DailyRunResult struct {
	Date             models.DateKey `json:"date"`
	Success          bool           `json:"success"`
	Skipped          bool           `json:"skipped"`
	RecordsExtracted int            `json:"records_extracted"`
	SinkLocation     string         `json:"sink_location,omitempty"`
	Error            string         `json:"error,omitempty"`
}

// NoData reports whether the day failed only because no data was
// materialized. No-data days are recorded as failures in reports but
// are not process failures.
func (r *DailyRunResult) NoData() bool {
	return !r.Success && r.Error == NoDataMessage
}

// FailedDay pairs a day with its captured error text.
type FailedDay struct {
	Date  models.DateKey `json:"date"`
	Error string         `json:"error"`
}

// BackfillReport aggregates per-day outcomes over an inclusive date
// range. Every day in the range appears in exactly one of the three
// sequences, in chronological order across them collectively.
type BackfillReport struct {
	Start        models.DateKey   `json:"start_date"`
	End          models.DateKey   `json:"end_date"`
	TotalDays    int              `json:"total_days"`
	Successful   []models.DateKey `json:"successful_days"`
	Skipped      []models.DateKey `json:"skipped_days"`
	Failed       []FailedDay      `json:"failed_days"`
	TotalRecords int              `json:"total_records"`
}

// HardFailures counts failed days excluding benign no-data outcomes.
// The process exit code for a backfill is driven by this count.
func (r *BackfillReport) HardFailures() int {
	n := 0
	for _, f := range r.Failed {
		if f.Error != NoDataMessage {
			n++
		}
	}
	return n
}

// ConnectivityReport maps capability names to reachability.
type ConnectivityReport map[string]bool

// AllHealthy reports whether every probed capability is reachable.
func (c ConnectivityReport) AllHealthy() bool {
	for _, ok := range c {
		if !ok {
			return false
		}
	}
	return true
}

// StatusReport composes connectivity with the reconciliation of
// source-available days against sink-available days.
type StatusReport struct {
	Connectivity ConnectivityReport `json:"connectivity"`
	SourceDates  []models.DateKey   `json:"source_dates"`
	SinkDates    []models.DateKey   `json:"sink_dates"`
	// MissingDates is the set difference source minus sink: days the
	// warehouse has materialized that the bronze layer has not loaded.
	MissingDates []models.DateKey `json:"missing_dates"`
}

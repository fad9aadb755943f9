// Package pipeline contains the orchestration core: the per-day run
// state machine, date-range backfill, connectivity probing, and the
// status reconciliation of source days against sink days.
//
// The core is single-threaded and synchronous. Days are processed
// strictly sequentially, per-day failures are contained at the day
// boundary and surfaced as result fields, and only invalid caller
// input (a malformed date or inverted range) returns an error.
// Concurrent runs for the same day are unsupported; single writer per
// day is assumed.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/helioslabs/bronzeflow/pkg/connector/core"
	"github.com/helioslabs/bronzeflow/pkg/errors"
	"github.com/helioslabs/bronzeflow/pkg/logger"
	"github.com/helioslabs/bronzeflow/pkg/metrics"
	"github.com/helioslabs/bronzeflow/pkg/models"
)

// defaultLookbackDays bounds status-report date listings.
const defaultLookbackDays = 30

// Options tune the orchestrator.
type Options struct {
	// LookbackDays bounds source and sink listings in Status.
	LookbackDays int
	// Now is injectable for tests of the default-date rule.
	Now func() time.Time
}

// Pipeline sequences one EventSource against one ObjectSink. It owns
// every result object it builds; the capabilities own nothing beyond
// their connection handles.
type Pipeline struct {
	source       core.EventSource
	sink         core.ObjectSink
	lookbackDays int
	now          func() time.Time
	logger       *zap.Logger
}

// New creates a pipeline over the injected capabilities.
func New(source core.EventSource, sink core.ObjectSink, opts Options) *Pipeline {
	lookback := opts.LookbackDays
	if lookback <= 0 {
		lookback = defaultLookbackDays
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Pipeline{
		source:       source,
		sink:         sink,
		lookbackDays: lookback,
		now:          now,
		logger:       logger.Get().With(zap.String("component", "pipeline")),
	}
}

// RunDaily processes one day through the state machine:
// skip-check, extract, load. Every outcome is terminal; there is no
// retry. The zero date defaults to yesterday by calendar day. RunDaily
// never returns an error; failures are captured in the result.
func (p *Pipeline) RunDaily(ctx context.Context, date models.DateKey, skipExisting bool) *DailyRunResult {
	if date == "" {
		date = models.DateKeyFromTime(p.now().AddDate(0, 0, -1))
	}

	log := p.logger.With(zap.String("date", date.String()))
	log.Info("starting pipeline day")

	timer := metrics.NewTimer()
	result := p.runDay(ctx, date, skipExisting, log)
	elapsed := timer.ObserveDay()

	switch {
	case result.Skipped:
		metrics.DaysProcessed.WithLabelValues(metrics.OutcomeSkipped).Inc()
		log.Info("day already loaded, skipping")
	case result.Success:
		metrics.DaysProcessed.WithLabelValues(metrics.OutcomeSuccess).Inc()
		metrics.RecordsExtracted.Add(float64(result.RecordsExtracted))
		log.Info("pipeline day completed",
			zap.Int("records", result.RecordsExtracted),
			zap.String("sink_location", result.SinkLocation),
			zap.Duration("duration", elapsed))
	case result.NoData():
		metrics.DaysProcessed.WithLabelValues(metrics.OutcomeNoData).Inc()
		log.Warn("no data found for day")
	default:
		metrics.DaysProcessed.WithLabelValues(metrics.OutcomeFailed).Inc()
		log.Error("pipeline day failed", zap.String("error", result.Error))
	}

	return result
}

func (p *Pipeline) runDay(ctx context.Context, date models.DateKey, skipExisting bool, log *zap.Logger) *DailyRunResult {
	result := &DailyRunResult{Date: date}

	if skipExisting {
		exists, err := p.sink.Exists(ctx, date)
		if err != nil {
			result.Error = err.Error()
			return result
		}
		if exists {
			result.Success = true
			result.Skipped = true
			return result
		}
	}

	extraction, err := p.source.ExtractEvents(ctx, date)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	if extraction.Empty() {
		result.Error = NoDataMessage
		return result
	}
	result.RecordsExtracted = extraction.RecordCount

	location, err := p.sink.Upload(ctx, extraction, date)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.SinkLocation = location
	return result
}

// Backfill runs the per-day state machine over every calendar day in
// [start, end] inclusive, strictly chronologically. A failed day never
// aborts the loop; every day is visited exactly once regardless of
// prior failures. Only an inverted range returns an error, before any
// day is processed.
func (p *Pipeline) Backfill(ctx context.Context, start, end models.DateKey, skipExisting bool) (*BackfillReport, error) {
	if start.After(end) {
		return nil, errors.New(errors.ErrorTypeValidation, "start date must not be after end date")
	}

	report := &BackfillReport{
		Start:     start,
		End:       end,
		TotalDays: models.DaysBetween(start, end),
	}

	p.logger.Info("starting backfill",
		zap.String("start", start.String()),
		zap.String("end", end.String()),
		zap.Int("total_days", report.TotalDays))

	for date := start; !date.After(end); date = date.Next() {
		day := p.RunDaily(ctx, date, skipExisting)

		switch {
		case day.Skipped:
			report.Skipped = append(report.Skipped, date)
		case day.Success:
			report.Successful = append(report.Successful, date)
			report.TotalRecords += day.RecordsExtracted
		default:
			report.Failed = append(report.Failed, FailedDay{Date: date, Error: day.Error})
		}
	}

	p.logger.Info("backfill completed",
		zap.Int("successful", len(report.Successful)),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("failed", len(report.Failed)),
		zap.Int("total_records", report.TotalRecords))

	return report, nil
}

// TestConnections probes both capabilities independently. It never
// returns an error; a failed probe reports false.
func (p *Pipeline) TestConnections(ctx context.Context) ConnectivityReport {
	report := ConnectivityReport{
		"source": p.source.TestConnection(ctx),
		"sink":   p.sink.TestConnection(ctx),
	}

	p.logger.Info("connection test completed",
		zap.Bool("source", report["source"]),
		zap.Bool("sink", report["sink"]))

	return report
}

// Status composes connectivity with the source/sink date listings and
// their difference. A listing failure degrades that side to an empty
// set; Status never returns an error.
func (p *Pipeline) Status(ctx context.Context) *StatusReport {
	report := &StatusReport{
		Connectivity: p.TestConnections(ctx),
	}

	sourceDates, err := p.source.ListAvailableDates(ctx, p.lookbackDays)
	if err != nil {
		p.logger.Error("failed to list source dates", zap.Error(err))
	} else {
		report.SourceDates = sourceDates
	}

	sinkDates, err := p.sink.ListAvailableDates(ctx, p.lookbackDays)
	if err != nil {
		p.logger.Error("failed to list sink dates", zap.Error(err))
	} else {
		report.SinkDates = sinkDates
	}

	loaded := make(map[models.DateKey]struct{}, len(report.SinkDates))
	for _, date := range report.SinkDates {
		loaded[date] = struct{}{}
	}
	for _, date := range report.SourceDates {
		if _, ok := loaded[date]; !ok {
			report.MissingDates = append(report.MissingDates, date)
		}
	}

	return report
}

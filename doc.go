// Package bronzeflow moves daily analytics events from a warehouse into
// a date-partitioned Parquet bronze layer on object storage.
//
// Each calendar day is the unit of work: the pipeline probes the sink for
// an existing partition, extracts the day's events from the warehouse,
// and writes one Parquet object plus a metadata sidecar under
// {prefix}/{data_type}/year=YYYY/month=MM/day=DD/. Re-running a day that
// is already loaded is a cheap no-op, which makes scheduled runs and
// backfills idempotent.
//
// # Architecture
//
// The pipeline composes two capabilities behind small interfaces:
//
//   - core.EventSource extracts one day's events and lists the days the
//     warehouse has materialized (BigQuery analytics exports, where each
//     day is an events_YYYYMMDD table).
//   - core.ObjectSink checks, writes, and lists day partitions (Amazon S3
//     or Google Cloud Storage, with a LocalStack sandbox mode for local
//     development).
//
// Adapters register themselves by backend name; the driver instantiates
// them from configuration. The orchestrator in internal/pipeline runs the
// per-day state machine, date-range backfill, connectivity probing, and
// the status reconciliation of warehouse days against loaded days.
//
// # Quick Start
//
// Run yesterday's data:
//
//	bronzeflow run --config config.yaml
//
// Backfill a range:
//
//	bronzeflow backfill --start 2024-01-01 --end 2024-01-31
//
// Reconcile warehouse days against the bronze layer:
//
//	bronzeflow status
package bronzeflow

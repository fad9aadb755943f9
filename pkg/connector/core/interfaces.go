// Package core defines the capability interfaces the orchestrator
// depends on. The orchestrator never touches transport details; it
// sequences calls against these two contracts and owns every result
// object it builds from them.
package core

import (
	"context"

	"github.com/helioslabs/bronzeflow/pkg/models"
)

// EventSource extracts daily analytics events from a warehouse.
type EventSource interface {
	// Initialize establishes the warehouse client.
	Initialize(ctx context.Context) error

	// ExtractEvents returns one day's events. A day whose table is not
	// yet materialized yields an empty result, not an error; query
	// execution failures return a typed error and are fatal to the day.
	ExtractEvents(ctx context.Context, date models.DateKey) (*models.ExtractionResult, error)

	// ListAvailableDates returns the days with materialized data within
	// the lookback window. Malformed date-encoded identifiers are
	// filtered silently.
	ListAvailableDates(ctx context.Context, daysBack int) ([]models.DateKey, error)

	// TestConnection is a best-effort reachability probe. It never
	// returns an error; any failure reports false.
	TestConnection(ctx context.Context) bool

	// Close releases the warehouse client.
	Close(ctx context.Context) error
}

// ObjectSink writes daily partitions to the bronze layer.
type ObjectSink interface {
	// Initialize establishes the object-store client.
	Initialize(ctx context.Context) error

	// Exists reports whether the day's data object is present. Not
	// found is false with a nil error; transport and permission
	// failures return a typed error since this predicate drives
	// skip-logic correctness.
	Exists(ctx context.Context, date models.DateKey) (bool, error)

	// Upload writes the day's record batch to its partition path and a
	// sidecar metadata object beside it, returning the data object
	// location. Metadata write failure is non-fatal and swallowed; data
	// write failure propagates.
	Upload(ctx context.Context, result *models.ExtractionResult, date models.DateKey) (string, error)

	// ListAvailableDates enumerates partitioned days, most recent
	// first, up to limit.
	ListAvailableDates(ctx context.Context, limit int) ([]models.DateKey, error)

	// TestConnection is a best-effort probe. Sandbox deployments
	// auto-create the target bucket when absent; production treats
	// bucket existence as a precondition.
	TestConnection(ctx context.Context) bool

	// Close releases the object-store client.
	Close(ctx context.Context) error
}

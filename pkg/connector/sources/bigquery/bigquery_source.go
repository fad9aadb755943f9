// Package bigquery implements the EventSource capability over BigQuery
// analytics-export datasets, where each day materializes as an
// events_YYYYMMDD table.
package bigquery

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/helioslabs/bronzeflow/pkg/config"
	"github.com/helioslabs/bronzeflow/pkg/errors"
	"github.com/helioslabs/bronzeflow/pkg/logger"
	"github.com/helioslabs/bronzeflow/pkg/models"
)

// Source extracts daily analytics events from a BigQuery dataset.
type Source struct {
	projectID       string
	datasetID       string
	location        string
	credentialsFile string
	tablePrefix     string

	client *bigquery.Client
	logger *zap.Logger

	// now is injectable for tests of the lookback window.
	now func() time.Time
}

// NewSource creates a BigQuery event source from configuration.
func NewSource(cfg *config.SourceConfig) (*Source, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "project_id is required")
	}
	if cfg.DatasetID == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "dataset_id is required")
	}

	tablePrefix := cfg.TablePrefix
	if tablePrefix == "" {
		tablePrefix = "events_"
	}
	location := cfg.Location
	if location == "" {
		location = "US"
	}

	return &Source{
		projectID:       cfg.ProjectID,
		datasetID:       cfg.DatasetID,
		location:        location,
		credentialsFile: cfg.CredentialsFile,
		tablePrefix:     tablePrefix,
		logger: logger.Get().With(
			zap.String("component", "bigquery_source"),
			zap.String("project", cfg.ProjectID),
			zap.String("dataset", cfg.DatasetID)),
		now: time.Now,
	}, nil
}

// Initialize establishes the BigQuery client. Application default
// credentials are used unless a service account key path is set.
func (s *Source) Initialize(ctx context.Context) error {
	var opts []option.ClientOption
	if s.credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(s.credentialsFile))
	}

	client, err := bigquery.NewClient(ctx, s.projectID, opts...)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to create BigQuery client")
	}
	s.client = client

	s.logger.Info("BigQuery source initialized", zap.String("location", s.location))
	return nil
}

// ExtractEvents returns one day's events. A day whose table does not
// exist yields an empty result; query execution failures propagate.
func (s *Source) ExtractEvents(ctx context.Context, date models.DateKey) (*models.ExtractionResult, error) {
	tableID := s.tableID(date)

	exists, err := s.tableExists(ctx, tableID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeQuery, "failed to probe table "+tableID)
	}
	if !exists {
		s.logger.Warn("day table not materialized", zap.String("table", tableID))
		return models.EmptyExtractionResult(date), nil
	}

	query := s.client.Query(fmt.Sprintf(
		"SELECT * FROM `%s.%s.%s` WHERE event_date = '%s'",
		s.projectID, s.datasetID, tableID, date.Compact()))
	query.Location = s.location

	it, err := query.Read(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeQuery, "failed to execute extraction query")
	}

	var records []*models.Record
	for {
		var row map[string]bigquery.Value
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeQuery, "failed to read query results")
		}

		data := make(map[string]interface{}, len(row))
		for col, val := range row {
			data[col] = val
		}
		records = append(records, models.NewRecord(data))
	}

	s.logger.Info("extracted events",
		zap.String("date", date.String()),
		zap.Int("records", len(records)))

	return models.NewExtractionResult(date, records), nil
}

// ListAvailableDates returns the days with materialized tables within
// the lookback window, most recent first. Table IDs whose suffix does
// not parse as a date are skipped silently.
func (s *Source) ListAvailableDates(ctx context.Context, daysBack int) ([]models.DateKey, error) {
	it := s.client.Dataset(s.datasetID).Tables(ctx)
	today := models.DateKeyFromTime(s.now().UTC())
	cutoff := models.DateKeyFromTime(s.now().UTC().AddDate(0, 0, -daysBack))

	var dates []models.DateKey
	for {
		table, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeQuery, "failed to list dataset tables")
		}

		date, ok := parseTableDate(table.TableID, s.tablePrefix)
		if !ok {
			continue
		}
		if date.Before(cutoff) || date.After(today) {
			continue
		}
		dates = append(dates, date)
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })
	return dates, nil
}

// TestConnection probes dataset access. It never returns an error.
func (s *Source) TestConnection(ctx context.Context) bool {
	if s.client == nil {
		return false
	}
	if _, err := s.client.Dataset(s.datasetID).Metadata(ctx); err != nil {
		s.logger.Error("connection test failed", zap.Error(err))
		return false
	}
	return true
}

// Close releases the BigQuery client.
func (s *Source) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *Source) tableID(date models.DateKey) string {
	return s.tablePrefix + date.Compact()
}

func (s *Source) tableExists(ctx context.Context, tableID string) (bool, error) {
	_, err := s.client.Dataset(s.datasetID).Table(tableID).Metadata(ctx)
	if err == nil {
		return true, nil
	}
	var gerr *googleapi.Error
	if stderrors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
		return false, nil
	}
	return false, err
}

// parseTableDate extracts the day from a table ID of the form
// <prefix>YYYYMMDD. Intraday and malformed tables report false.
func parseTableDate(tableID, prefix string) (models.DateKey, bool) {
	if !strings.HasPrefix(tableID, prefix) {
		return "", false
	}
	suffix := strings.TrimPrefix(tableID, prefix)
	date, err := models.ParseCompactDateKey(suffix)
	if err != nil {
		return "", false
	}
	return date, true
}

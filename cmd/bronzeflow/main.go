package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/helioslabs/bronzeflow/internal/pipeline"
	"github.com/helioslabs/bronzeflow/pkg/config"
	"github.com/helioslabs/bronzeflow/pkg/connector/core"
	"github.com/helioslabs/bronzeflow/pkg/connector/registry"
	jsonutil "github.com/helioslabs/bronzeflow/pkg/json"
	"github.com/helioslabs/bronzeflow/pkg/logger"
	"github.com/helioslabs/bronzeflow/pkg/models"

	// Import all available adapters to register them
	_ "github.com/helioslabs/bronzeflow/pkg/connector/sinks/gcs"
	_ "github.com/helioslabs/bronzeflow/pkg/connector/sinks/s3"
	_ "github.com/helioslabs/bronzeflow/pkg/connector/sources/bigquery"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	var configFile string
	var jsonOutput bool

	root := &cobra.Command{
		Use:   "bronzeflow",
		Short: "Bronzeflow - analytics warehouse to bronze layer pipeline",
		Long: `Bronzeflow moves daily analytics event data from a warehouse into a
date-partitioned object-storage bronze layer in Parquet, with idempotent
per-day runs and date-range backfill.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to pipeline configuration YAML file")
	root.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Emit reports as JSON instead of text")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Bronzeflow v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available source and sink adapters",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Available source adapters:")
			for _, name := range registry.ListSources() {
				fmt.Printf("  - %s\n", name)
			}
			fmt.Println("\nAvailable sink adapters:")
			for _, name := range registry.ListSinks() {
				fmt.Printf("  - %s\n", name)
			}
		},
	})

	var runDate string
	var force bool
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline for a single day",
		Long: `Run the pipeline for one calendar day. Defaults to yesterday when no
date is given. Days already present in the sink are skipped unless
--force is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaily(cmd.Context(), configFile, runDate, force, jsonOutput)
		},
	}
	runCmd.Flags().StringVar(&runDate, "date", "", "Date to process (YYYY-MM-DD), defaults to yesterday")
	runCmd.Flags().BoolVar(&force, "force", false, "Process the day even if data already exists in the sink")
	root.AddCommand(runCmd)

	var backfillStart, backfillEnd string
	var backfillForce bool
	backfillCmd := &cobra.Command{
		Use:   "backfill",
		Short: "Run the pipeline over a date range",
		Long: `Process every calendar day in [start, end] inclusive, in chronological
order. A failed day never aborts the run; the report captures partial
failures.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackfill(cmd.Context(), configFile, backfillStart, backfillEnd, backfillForce, jsonOutput)
		},
	}
	backfillCmd.Flags().StringVar(&backfillStart, "start", "", "Start date (YYYY-MM-DD, required)")
	backfillCmd.Flags().StringVar(&backfillEnd, "end", "", "End date (YYYY-MM-DD, required)")
	backfillCmd.Flags().BoolVar(&backfillForce, "force", false, "Process days even if data already exists in the sink")
	_ = backfillCmd.MarkFlagRequired("start")
	_ = backfillCmd.MarkFlagRequired("end")
	root.AddCommand(backfillCmd)

	root.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show connectivity and date reconciliation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), configFile, jsonOutput)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:     "test-connections",
		Aliases: []string{"test"},
		Short:   "Probe source and sink reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTestConnections(cmd.Context(), configFile, jsonOutput)
		},
	})

	if err := root.Execute(); err != nil {
		var ee *exitError
		if stderrors.As(err, &ee) {
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// exitError carries an exit code through RunE without an error message,
// for outcomes already reported to the user.
type exitError struct{ code int }

func (e *exitError) Error() string { return "" }

// setup loads configuration, initializes logging, and constructs the
// pipeline over registry-created adapters.
func setup(ctx context.Context, configFile string) (*pipeline.Pipeline, core.EventSource, core.ObjectSink, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, nil, err
	}

	if err := logger.Init(logger.Config{
		Level:       cfg.Logging.Level,
		Encoding:    cfg.Logging.Encoding,
		Development: cfg.Logging.Development,
	}); err != nil {
		return nil, nil, nil, err
	}

	source, err := registry.CreateSource(cfg.Source.Backend, &cfg.Source)
	if err != nil {
		return nil, nil, nil, err
	}
	sink, err := registry.CreateSink(cfg.Sink.Backend, &cfg.Sink)
	if err != nil {
		return nil, nil, nil, err
	}

	if err := source.Initialize(ctx); err != nil {
		return nil, nil, nil, err
	}
	if err := sink.Initialize(ctx); err != nil {
		_ = source.Close(ctx)
		return nil, nil, nil, err
	}

	p := pipeline.New(source, sink, pipeline.Options{
		LookbackDays: cfg.Pipeline.LookbackDays,
	})
	return p, source, sink, nil
}

func teardown(ctx context.Context, source core.EventSource, sink core.ObjectSink) {
	if err := source.Close(ctx); err != nil {
		logger.Warn("failed to close source", zap.Error(err))
	}
	if err := sink.Close(ctx); err != nil {
		logger.Warn("failed to close sink", zap.Error(err))
	}
	_ = logger.Sync()
}

// printJSON writes v as a single JSON document to stdout.
func printJSON(v interface{}) error {
	out, err := jsonutil.EncodeToBytes(v)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}

func runDaily(ctx context.Context, configFile, dateFlag string, force, jsonOutput bool) error {
	var date models.DateKey
	if dateFlag != "" {
		parsed, err := models.ParseDateKey(dateFlag)
		if err != nil {
			return err
		}
		date = parsed
	}

	p, source, sink, err := setup(ctx, configFile)
	if err != nil {
		return err
	}
	defer teardown(ctx, source, sink)

	result := p.RunDaily(ctx, date, !force)

	if jsonOutput {
		if err := printJSON(result); err != nil {
			return err
		}
		if !result.Success && !result.NoData() {
			return &exitError{code: 1}
		}
		return nil
	}

	switch {
	case result.Skipped:
		fmt.Printf("Skipped %s (data already exists)\n", result.Date)
	case result.Success:
		fmt.Printf("Processed %d records for %s\n", result.RecordsExtracted, result.Date)
		fmt.Printf("Saved to: %s\n", result.SinkLocation)
	case result.NoData():
		fmt.Printf("No data found for %s\n", result.Date)
	default:
		fmt.Printf("Failed %s: %s\n", result.Date, result.Error)
		return &exitError{code: 1}
	}
	return nil
}

func runBackfill(ctx context.Context, configFile, startFlag, endFlag string, force, jsonOutput bool) error {
	start, err := models.ParseDateKey(startFlag)
	if err != nil {
		return err
	}
	end, err := models.ParseDateKey(endFlag)
	if err != nil {
		return err
	}

	p, source, sink, err := setup(ctx, configFile)
	if err != nil {
		return err
	}
	defer teardown(ctx, source, sink)

	report, err := p.Backfill(ctx, start, end, !force)
	if err != nil {
		return err
	}

	if jsonOutput {
		if err := printJSON(report); err != nil {
			return err
		}
		if report.HardFailures() > 0 {
			return &exitError{code: 1}
		}
		return nil
	}

	fmt.Printf("Backfill %s to %s\n", report.Start, report.End)
	fmt.Printf("  Total days:    %d\n", report.TotalDays)
	fmt.Printf("  Successful:    %d\n", len(report.Successful))
	fmt.Printf("  Skipped:       %d\n", len(report.Skipped))
	fmt.Printf("  Failed:        %d\n", len(report.Failed))
	fmt.Printf("  Total records: %d\n", report.TotalRecords)

	if len(report.Failed) > 0 {
		fmt.Println("\nFailed days:")
		for _, f := range report.Failed {
			fmt.Printf("  %s: %s\n", f.Date, f.Error)
		}
	}

	if report.HardFailures() > 0 {
		return &exitError{code: 1}
	}
	return nil
}

func runStatus(ctx context.Context, configFile string, jsonOutput bool) error {
	p, source, sink, err := setup(ctx, configFile)
	if err != nil {
		return err
	}
	defer teardown(ctx, source, sink)

	status := p.Status(ctx)

	if jsonOutput {
		return printJSON(status)
	}

	fmt.Println("Connectivity:")
	for _, name := range []string{"source", "sink"} {
		fmt.Printf("  %s: %s\n", name, okOrFail(status.Connectivity[name]))
	}
	fmt.Printf("Source dates available: %d\n", len(status.SourceDates))
	fmt.Printf("Sink dates available:   %d\n", len(status.SinkDates))
	fmt.Printf("Missing in sink:        %d\n", len(status.MissingDates))

	if len(status.MissingDates) > 0 {
		shown := status.MissingDates
		if len(shown) > 5 {
			shown = shown[:5]
		}
		fmt.Println("Missing dates:")
		for _, date := range shown {
			fmt.Printf("  %s\n", date)
		}
		if rest := len(status.MissingDates) - len(shown); rest > 0 {
			fmt.Printf("  ... and %d more\n", rest)
		}
	}
	return nil
}

func runTestConnections(ctx context.Context, configFile string, jsonOutput bool) error {
	p, source, sink, err := setup(ctx, configFile)
	if err != nil {
		return err
	}
	defer teardown(ctx, source, sink)

	report := p.TestConnections(ctx)

	if jsonOutput {
		if err := printJSON(report); err != nil {
			return err
		}
	} else {
		for _, name := range []string{"source", "sink"} {
			fmt.Printf("%s: %s\n", name, okOrFail(report[name]))
		}
	}

	if !report.AllHealthy() {
		return &exitError{code: 1}
	}
	return nil
}

func okOrFail(ok bool) string {
	if ok {
		return "ok"
	}
	return "unreachable"
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/papertrail/internal/app"
	"github.com/mamadbah2/papertrail/internal/batch"
	"github.com/mamadbah2/papertrail/internal/config"
	"github.com/mamadbah2/papertrail/internal/repository/sheets"
	"github.com/mamadbah2/papertrail/pkg/logger"
)

func main() {
	input := flag.String("input", "quote_requests_sample.csv", "CSV file of purchase requests")
	output := flag.String("output", "test_results.csv", "CSV file the results are written to")
	envFile := flag.String("env", "", "optional env file")
	reset := flag.Bool("reset", true, "wipe the ledger before seeding")
	sheetRange := flag.String("sheet-range", sheets.DefaultResultsRange, "results tab when the sheet sink is configured")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, baseLogger, *input, *output, *sheetRange, *reset); err != nil {
		baseLogger.Fatal("evaluation failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger, input, output, sheetRange string, reset bool) error {
	in, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	requests, err := batch.LoadRequests(in, time.Now())
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}

	pipeline, err := app.Build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := pipeline.Close(context.Background()); err != nil {
			log.Error("failed to close backends", zap.Error(err))
		}
	}()

	sinks := []batch.ResultSink{batch.NewFileSink(output)}
	if cfg.Sheets.Enabled() {
		repo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, log.Named("repo.sheets"))
		if err != nil {
			return err
		}
		sinks = append(sinks, sheets.NewResultsSheet(repo, sheetRange))
	}

	runner := batch.NewRunner(pipeline.Orchestrator, pipeline, reset, log.Named("batch"), sinks...).
		WithFramework(pipeline.Toolkit.Framework())
	_, summary, err := runner.Run(ctx, requests)
	if err != nil {
		return err
	}

	fmt.Printf("Processed %d requests with %d fulfilled.\n", summary.Processed, summary.Fulfilled)
	fmt.Printf("Framework used: %s\n", summary.Framework)
	return nil
}

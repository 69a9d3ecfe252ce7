package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/papertrail/internal/app"
	"github.com/mamadbah2/papertrail/internal/config"
	"github.com/mamadbah2/papertrail/internal/scheduler"
	"github.com/mamadbah2/papertrail/internal/server/handlers"
	"github.com/mamadbah2/papertrail/internal/server/router"
	"github.com/mamadbah2/papertrail/pkg/clients/notify"
	"github.com/mamadbah2/papertrail/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pipeline, err := app.Build(ctx, cfg, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to build pipeline", zap.Error(err))
	}
	defer func() {
		if err := pipeline.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close backends", zap.Error(err))
		}
	}()

	if err := pipeline.Prepare(ctx, false); err != nil {
		baseLogger.Fatal("failed to prepare ledger", zap.Error(err))
	}

	var notifier notify.Notifier
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewClient(cfg.Notify)
	} else {
		baseLogger.Warn("notify webhook missing, report summaries will only be logged")
	}

	sched, err := scheduler.NewScheduler(cfg.Reporting, pipeline.Reporting, notifier, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	handler := handlers.NewRequestHandler(pipeline.Orchestrator, pipeline.Store, pipeline.Reporting, baseLogger.Named("handlers.requests"))
	if pipeline.Archive != nil {
		handler.WithArchive(pipeline.Archive)
	}
	engine := router.New(handler, baseLogger.Named("router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/papertrail/internal/config"
	"github.com/mamadbah2/papertrail/internal/domain/models"
	"github.com/mamadbah2/papertrail/internal/service/reporting"
	"github.com/mamadbah2/papertrail/pkg/clients/notify"
)

// Reporter builds and archives financial snapshots.
type Reporter interface {
	Snapshot(ctx context.Context) (models.Snapshot, error)
	Archive(ctx context.Context) (models.Snapshot, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	reporter Reporter
	notifier notify.Notifier
	cfg      config.ReportingConfig
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance. notifier may be nil.
func NewScheduler(cfg config.ReportingConfig, reporter Reporter, notifier notify.Notifier, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		reporter: reporter,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// Start registers the financial report job and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule), zap.String("timezone", s.cfg.Timezone))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.runFinancialReport); err != nil {
		return fmt.Errorf("schedule financial report: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runFinancialReport() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.SendFinancialReport(ctx); err != nil {
		s.logger.Error("financial report job failed", zap.Error(err))
	}
}

// SendFinancialReport archives a snapshot when an archive is configured and
// pushes its summary to the notifier.
func (s *Scheduler) SendFinancialReport(ctx context.Context) error {
	s.logger.Info("generating financial report")

	snapshot, err := s.reporter.Archive(ctx)
	if errors.Is(err, reporting.ErrNoArchive) {
		snapshot, err = s.reporter.Snapshot(ctx)
	}
	if err != nil {
		return err
	}

	if s.notifier == nil {
		s.logger.Info("financial report ready", zap.String("summary", reporting.Summary(snapshot)))
		return nil
	}

	msg := notify.Message{Title: "Financial report", Text: reporting.Summary(snapshot)}
	if err := s.notifier.Notify(ctx, msg); err != nil {
		return fmt.Errorf("send financial report: %w", err)
	}

	s.logger.Info("financial report sent successfully")
	return nil
}

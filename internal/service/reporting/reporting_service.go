package reporting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/papertrail/internal/domain/models"
)

// ErrNoArchive is returned by Archive when no report archive is configured.
var ErrNoArchive = errors.New("report archive not configured")

// Source is the slice of the toolkit the reporting stage reads from.
type Source interface {
	CashBalance(ctx context.Context) (float64, error)
	FinancialReport(ctx context.Context) (models.FinancialReport, error)
}

// Archive persists snapshots for later inspection.
type Archive interface {
	SaveFinancialReport(ctx context.Context, snapshot models.Snapshot) error
}

// Service computes read-only financial snapshots of the ledger.
type Service struct {
	source  Source
	archive Archive
	now     func() time.Time
	logger  *zap.Logger
}

// NewService wires a new reporting service instance. archive may be nil.
func NewService(source Source, archive Archive, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, archive: archive, now: time.Now, logger: logger}
}

// WithNow overrides the clock stamped on snapshots.
func (s *Service) WithNow(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Snapshot recomputes the cash balance and financial report from scratch.
func (s *Service) Snapshot(ctx context.Context) (models.Snapshot, error) {
	cash, err := s.source.CashBalance(ctx)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("load cash balance: %w", err)
	}

	report, err := s.source.FinancialReport(ctx)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("load financial report: %w", err)
	}

	return models.Snapshot{
		CashBalance:     models.RoundMoney(cash),
		FinancialReport: report,
		CreatedAt:       s.now().UTC(),
	}, nil
}

// Archive takes a snapshot and stores it in the configured archive.
func (s *Service) Archive(ctx context.Context) (models.Snapshot, error) {
	if s.archive == nil {
		return models.Snapshot{}, ErrNoArchive
	}

	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return models.Snapshot{}, err
	}

	if err := s.archive.SaveFinancialReport(ctx, snapshot); err != nil {
		return models.Snapshot{}, fmt.Errorf("archive financial report: %w", err)
	}

	s.logger.Info("financial report archived",
		zap.Float64("cash_balance", snapshot.CashBalance),
		zap.Int("fulfilled", snapshot.FinancialReport.FulfilledTransactions))
	return snapshot, nil
}

// Summary renders a snapshot as a short plain-text message.
func Summary(snapshot models.Snapshot) string {
	report := snapshot.FinancialReport
	total := report.FulfilledTransactions + report.NonFulfilledTransactions
	if total == 0 {
		return fmt.Sprintf("Paper ledger (%s): no transactions yet. Cash balance $%.2f.", report.ReportGeneratedOn, snapshot.CashBalance)
	}

	return fmt.Sprintf("Paper ledger (%s): %d fulfilled, %d not fulfilled out of %d requests. Revenue $%.2f, cash balance $%.2f.",
		report.ReportGeneratedOn,
		report.FulfilledTransactions,
		report.NonFulfilledTransactions,
		total,
		report.TotalRevenue,
		snapshot.CashBalance)
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mamadbah2/papertrail/internal/domain/models"
	"github.com/mamadbah2/papertrail/internal/repository"
)

const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

// Store keeps the ledger in PostgreSQL through gorm.
type Store struct {
	db     *gorm.DB
	now    func() time.Time
	logger *zap.Logger
}

// Open connects to dsn, retrying while the database is still starting up.
func Open(ctx context.Context, dsn string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dsn == "" {
		return nil, errors.New("postgres dsn must not be empty")
	}

	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
		if err == nil {
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				if err = sqlDB.PingContext(ctx); err == nil {
					logger.Info("connected to postgres", zap.Int("attempt", attempt))
					return &Store{db: db, now: time.Now, logger: logger}, nil
				}
			} else {
				err = dbErr
			}
		}

		lastErr = err
		logger.Warn("postgres connection attempt failed", zap.Int("attempt", attempt), zap.Error(err))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectBackoff):
		}
	}

	return nil, fmt.Errorf("connect postgres after %d attempts: %w", connectAttempts, lastErr)
}

// WithNow overrides the clock used to date transactions and reports.
func (s *Store) WithNow(now func() time.Time) *Store {
	if now != nil {
		s.now = now
	}
	return s
}

// Initialize creates the inventory and transactions tables when absent.
func (s *Store) Initialize(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&inventoryRow{}, &transactionRow{}); err != nil {
		return fmt.Errorf("migrate ledger schema: %w", err)
	}
	return nil
}

func (s *Store) SeedInventory(ctx context.Context, specs []models.PaperSpec) error {
	if len(specs) == 0 {
		return nil
	}

	rows := make([]inventoryRow, 0, len(specs))
	for _, spec := range specs {
		rows = append(rows, inventoryFromModel(repository.SeedRecord(spec)))
	}

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
	if result.Error != nil {
		return fmt.Errorf("seed inventory: %w", result.Error)
	}
	s.logger.Debug("inventory seeded", zap.Int64("inserted", result.RowsAffected))
	return nil
}

func (s *Store) InventorySnapshot(ctx context.Context) ([]models.InventoryRecord, error) {
	var rows []inventoryRow
	if err := s.db.WithContext(ctx).Order("paper_type").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}

	out := make([]models.InventoryRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

func (s *Store) StockLevel(ctx context.Context, paperType string) (int, error) {
	var row inventoryRow
	err := s.db.WithContext(ctx).Where("paper_type = ?", paperType).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read stock %s: %w", paperType, err)
	}
	return row.StockLevel, nil
}

func (s *Store) SetStockLevel(ctx context.Context, paperType string, level int) error {
	err := s.db.WithContext(ctx).Model(&inventoryRow{}).
		Where("paper_type = ?", paperType).
		Update("stock_level", level).Error
	if err != nil {
		return fmt.Errorf("update stock %s: %w", paperType, err)
	}
	return nil
}

func (s *Store) AppendTransaction(ctx context.Context, rec models.TransactionRecord) (int64, error) {
	row := transactionRow{
		CreatedAt:    models.DateOnly(s.now()),
		CustomerName: rec.CustomerName,
		PaperType:    rec.PaperType,
		Quantity:     rec.Quantity,
		UnitPrice:    rec.UnitPrice,
		TotalPrice:   rec.TotalPrice,
		Status:       string(rec.Status),
		Notes:        rec.Notes,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, fmt.Errorf("append transaction: %w", err)
	}
	return row.ID, nil
}

func (s *Store) QueryTransactions(ctx context.Context, q repository.TransactionQuery) ([]models.TransactionRecord, error) {
	query := s.db.WithContext(ctx).Where("customer_name = ?", q.CustomerName)
	if q.PaperType != "" {
		query = query.Where("paper_type = ?", q.PaperType)
	}

	var rows []transactionRow
	if err := query.Order("id DESC").Limit(q.EffectiveLimit()).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}

	out := make([]models.TransactionRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

func (s *Store) CashBalance(ctx context.Context) (float64, error) {
	var totals repository.Totals
	err := s.readOnly(ctx, func(tx *gorm.DB) error {
		return s.sumBalance(tx, &totals)
	})
	if err != nil {
		return 0, err
	}
	return totals.CashBalance(), nil
}

func (s *Store) FinancialReport(ctx context.Context) (models.FinancialReport, error) {
	var totals repository.Totals
	err := s.readOnly(ctx, func(tx *gorm.DB) error {
		if err := s.sumBalance(tx, &totals); err != nil {
			return err
		}

		var fulfilled, others int64
		if err := tx.Model(&transactionRow{}).Where("status = ?", string(models.StatusFulfilled)).Count(&fulfilled).Error; err != nil {
			return fmt.Errorf("count fulfilled: %w", err)
		}
		if err := tx.Model(&transactionRow{}).Where("status <> ?", string(models.StatusFulfilled)).Count(&others).Error; err != nil {
			return fmt.Errorf("count non-fulfilled: %w", err)
		}
		totals.Fulfilled = int(fulfilled)
		totals.NonFulfilled = int(others)
		return nil
	})
	if err != nil {
		return models.FinancialReport{}, err
	}
	return totals.Report(s.now()), nil
}

// Reset truncates both tables and restarts the transaction id sequence. The
// schema is created first so a reset against an empty database succeeds.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.Initialize(ctx); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Exec("TRUNCATE TABLE transactions, inventory RESTART IDENTITY").Error; err != nil {
		return fmt.Errorf("truncate ledger: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) sumBalance(tx *gorm.DB, totals *repository.Totals) error {
	if err := tx.Model(&transactionRow{}).
		Select("COALESCE(SUM(total_price), 0)").
		Where("status = ?", string(models.StatusFulfilled)).
		Scan(&totals.Revenue).Error; err != nil {
		return fmt.Errorf("sum revenue: %w", err)
	}
	if err := tx.Model(&inventoryRow{}).
		Select("COALESCE(SUM(stock_level * unit_cost), 0)").
		Scan(&totals.CarryingCost).Error; err != nil {
		return fmt.Errorf("sum carrying cost: %w", err)
	}
	return nil
}

func (s *Store) readOnly(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
}

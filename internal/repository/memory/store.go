package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/papertrail/internal/domain/models"
	"github.com/mamadbah2/papertrail/internal/repository"
)

// Store keeps the ledger in process memory. Nothing survives a restart.
type Store struct {
	mu           sync.RWMutex
	inventory    map[string]models.InventoryRecord
	transactions []models.TransactionRecord
	nextID       int64
	closed       bool
	now          func() time.Time
	logger       *zap.Logger
}

// NewStore returns an empty store.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		inventory: make(map[string]models.InventoryRecord),
		now:       time.Now,
		logger:    logger,
	}
}

// WithNow overrides the clock used to date transactions and reports.
func (s *Store) WithNow(now func() time.Time) *Store {
	if now != nil {
		s.now = now
	}
	return s
}

// Initialize is a no-op: the maps are created by NewStore.
func (s *Store) Initialize(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return repository.ErrStoreClosed
	}
	return nil
}

func (s *Store) SeedInventory(_ context.Context, specs []models.PaperSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return repository.ErrStoreClosed
	}

	for _, spec := range specs {
		if _, exists := s.inventory[spec.PaperType]; exists {
			continue
		}
		s.inventory[spec.PaperType] = repository.SeedRecord(spec)
		s.logger.Debug("inventory seeded", zap.String("paper_type", spec.PaperType))
	}
	return nil
}

func (s *Store) InventorySnapshot(context.Context) ([]models.InventoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, repository.ErrStoreClosed
	}

	out := make([]models.InventoryRecord, 0, len(s.inventory))
	for _, rec := range s.inventory {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaperType < out[j].PaperType })
	return out, nil
}

func (s *Store) StockLevel(_ context.Context, paperType string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, repository.ErrStoreClosed
	}
	return s.inventory[paperType].StockLevel, nil
}

func (s *Store) SetStockLevel(_ context.Context, paperType string, level int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return repository.ErrStoreClosed
	}

	rec, ok := s.inventory[paperType]
	if !ok {
		return nil
	}
	rec.StockLevel = level
	s.inventory[paperType] = rec
	return nil
}

func (s *Store) AppendTransaction(_ context.Context, rec models.TransactionRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, repository.ErrStoreClosed
	}

	s.nextID++
	rec.ID = s.nextID
	rec.CreatedAt = models.DateOnly(s.now())
	s.transactions = append(s.transactions, rec)
	return rec.ID, nil
}

func (s *Store) QueryTransactions(_ context.Context, q repository.TransactionQuery) ([]models.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, repository.ErrStoreClosed
	}

	limit := q.EffectiveLimit()
	out := make([]models.TransactionRecord, 0, min(limit, len(s.transactions)))
	for i := len(s.transactions) - 1; i >= 0 && len(out) < limit; i-- {
		if q.Matches(s.transactions[i]) {
			out = append(out, s.transactions[i])
		}
	}
	return out, nil
}

func (s *Store) CashBalance(context.Context) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, repository.ErrStoreClosed
	}
	return s.totals().CashBalance(), nil
}

func (s *Store) FinancialReport(context.Context) (models.FinancialReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return models.FinancialReport{}, repository.ErrStoreClosed
	}
	return s.totals().Report(s.now()), nil
}

func (s *Store) Reset(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return repository.ErrStoreClosed
	}

	s.inventory = make(map[string]models.InventoryRecord)
	s.transactions = nil
	s.nextID = 0
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// totals must be called with the lock held.
func (s *Store) totals() repository.Totals {
	var t repository.Totals
	for _, rec := range s.transactions {
		t.AddTransaction(rec)
	}
	for _, rec := range s.inventory {
		t.AddInventory(rec)
	}
	return t
}

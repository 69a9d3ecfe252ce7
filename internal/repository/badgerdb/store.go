package badgerdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/mamadbah2/papertrail/internal/domain/models"
	"github.com/mamadbah2/papertrail/internal/repository"
)

var (
	inventoryPrefix = []byte("inv/")
	txnPrefix       = []byte("txn/")
	txnSeqKey       = []byte("meta/txn_seq")
	schemaKey       = []byte("meta/schema")
)

const schemaVersion = "1"

// Store persists inventory rows and ledger entries in an embedded badger database.
// Inventory rows live under inv/<paper_type>; ledger rows under txn/<big-endian id>
// so key order equals insertion order.
type Store struct {
	db      *badger.DB
	// appends serializes id allocation so concurrent writers never conflict on the sequence key.
	appends sync.Mutex
	now     func() time.Time
	logger  *zap.Logger
}

// Open opens (or creates) a badger database at path. An empty path opens an in-memory database.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", path, err)
	}

	return &Store{db: db, now: time.Now, logger: logger}, nil
}

// WithNow overrides the clock used to date transactions and reports.
func (s *Store) WithNow(now func() time.Time) *Store {
	if now != nil {
		s.now = now
	}
	return s
}

// Initialize records the schema version on first use.
func (s *Store) Initialize(context.Context) error {
	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(schemaKey)
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("read schema marker: %w", err)
		}
		return txn.Set(schemaKey, []byte(schemaVersion))
	})
}

func (s *Store) SeedInventory(_ context.Context, specs []models.PaperSpec) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, spec := range specs {
			key := inventoryKey(spec.PaperType)
			_, err := txn.Get(key)
			if err == nil {
				continue
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("probe inventory %s: %w", spec.PaperType, err)
			}
			if err := putJSON(txn, key, repository.SeedRecord(spec)); err != nil {
				return fmt.Errorf("seed inventory %s: %w", spec.PaperType, err)
			}
			s.logger.Debug("inventory seeded", zap.String("paper_type", spec.PaperType))
		}
		return nil
	})
}

func (s *Store) InventorySnapshot(context.Context) ([]models.InventoryRecord, error) {
	var out []models.InventoryRecord
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		out, err = scanInventory(txn)
		return err
	})
	return out, err
}

func (s *Store) StockLevel(_ context.Context, paperType string) (int, error) {
	var level int
	err := s.db.View(func(txn *badger.Txn) error {
		var rec models.InventoryRecord
		found, err := getJSON(txn, inventoryKey(paperType), &rec)
		if err != nil || !found {
			return err
		}
		level = rec.StockLevel
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("read stock %s: %w", paperType, err)
	}
	return level, nil
}

func (s *Store) SetStockLevel(_ context.Context, paperType string, level int) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := inventoryKey(paperType)
		var rec models.InventoryRecord
		found, err := getJSON(txn, key, &rec)
		if err != nil {
			return fmt.Errorf("read stock %s: %w", paperType, err)
		}
		if !found {
			return nil
		}
		rec.StockLevel = level
		return putJSON(txn, key, rec)
	})
}

func (s *Store) AppendTransaction(_ context.Context, rec models.TransactionRecord) (int64, error) {
	s.appends.Lock()
	defer s.appends.Unlock()

	err := s.db.Update(func(txn *badger.Txn) error {
		id, err := nextSequence(txn)
		if err != nil {
			return err
		}
		rec.ID = id
		rec.CreatedAt = models.DateOnly(s.now())
		return putJSON(txn, txnKey(id), rec)
	})
	if err != nil {
		return 0, fmt.Errorf("append transaction: %w", err)
	}
	return rec.ID, nil
}

func (s *Store) QueryTransactions(_ context.Context, q repository.TransactionQuery) ([]models.TransactionRecord, error) {
	limit := q.EffectiveLimit()
	out := make([]models.TransactionRecord, 0, min(limit, 16))

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = txnPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration must start past the last key carrying the prefix.
		seek := append(append([]byte{}, txnPrefix...), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(txnPrefix) && len(out) < limit; it.Next() {
			var rec models.TransactionRecord
			if err := it.Item().Value(func(val []byte) error { return json.Unmarshal(val, &rec) }); err != nil {
				return fmt.Errorf("decode transaction: %w", err)
			}
			if q.Matches(rec) {
				out = append(out, rec)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CashBalance(context.Context) (float64, error) {
	totals, err := s.totals()
	if err != nil {
		return 0, err
	}
	return totals.CashBalance(), nil
}

func (s *Store) FinancialReport(context.Context) (models.FinancialReport, error) {
	totals, err := s.totals()
	if err != nil {
		return models.FinancialReport{}, err
	}
	return totals.Report(s.now()), nil
}

// Reset drops every key, including the id sequence.
func (s *Store) Reset(context.Context) error {
	s.appends.Lock()
	defer s.appends.Unlock()

	if err := s.db.DropAll(); err != nil {
		return fmt.Errorf("drop badger data: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) totals() (repository.Totals, error) {
	var totals repository.Totals
	err := s.db.View(func(txn *badger.Txn) error {
		inventory, err := scanInventory(txn)
		if err != nil {
			return err
		}
		for _, rec := range inventory {
			totals.AddInventory(rec)
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = txnPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var rec models.TransactionRecord
			if err := it.Item().Value(func(val []byte) error { return json.Unmarshal(val, &rec) }); err != nil {
				return fmt.Errorf("decode transaction: %w", err)
			}
			totals.AddTransaction(rec)
		}
		return nil
	})
	return totals, err
}

// scanInventory relies on badger's lexicographic key order, which matches paper type order.
func scanInventory(txn *badger.Txn) ([]models.InventoryRecord, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = inventoryPrefix
	it := txn.NewIterator(opts)
	defer it.Close()

	var out []models.InventoryRecord
	for it.Rewind(); it.Valid(); it.Next() {
		var rec models.InventoryRecord
		if err := it.Item().Value(func(val []byte) error { return json.Unmarshal(val, &rec) }); err != nil {
			return nil, fmt.Errorf("decode inventory: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func nextSequence(txn *badger.Txn) (int64, error) {
	var current uint64
	item, err := txn.Get(txnSeqKey)
	switch {
	case err == nil:
		if err := item.Value(func(val []byte) error {
			current = binary.BigEndian.Uint64(val)
			return nil
		}); err != nil {
			return 0, fmt.Errorf("read transaction sequence: %w", err)
		}
	case !errors.Is(err, badger.ErrKeyNotFound):
		return 0, fmt.Errorf("read transaction sequence: %w", err)
	}

	next := current + 1
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, next)
	if err := txn.Set(txnSeqKey, buf); err != nil {
		return 0, fmt.Errorf("advance transaction sequence: %w", err)
	}
	return int64(next), nil
}

func getJSON(txn *badger.Txn, key []byte, dst any) (bool, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, item.Value(func(val []byte) error { return json.Unmarshal(val, dst) })
}

func putJSON(txn *badger.Txn, key []byte, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return txn.Set(key, payload)
}

func inventoryKey(paperType string) []byte {
	return append(append([]byte{}, inventoryPrefix...), paperType...)
}

func txnKey(id int64) []byte {
	key := make([]byte, len(txnPrefix)+8)
	copy(key, txnPrefix)
	binary.BigEndian.PutUint64(key[len(txnPrefix):], uint64(id))
	return key
}

// Package app assembles the pipeline from configuration. Both the HTTP server
// and the batch evaluator start here.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/papertrail/internal/catalog"
	"github.com/mamadbah2/papertrail/internal/config"
	"github.com/mamadbah2/papertrail/internal/events"
	"github.com/mamadbah2/papertrail/internal/repository"
	"github.com/mamadbah2/papertrail/internal/repository/badgerdb"
	"github.com/mamadbah2/papertrail/internal/repository/memory"
	"github.com/mamadbah2/papertrail/internal/repository/mongodb"
	"github.com/mamadbah2/papertrail/internal/repository/postgres"
	"github.com/mamadbah2/papertrail/internal/service/fulfillment"
	"github.com/mamadbah2/papertrail/internal/service/inventory"
	"github.com/mamadbah2/papertrail/internal/service/orchestrator"
	"github.com/mamadbah2/papertrail/internal/service/quote"
	"github.com/mamadbah2/papertrail/internal/service/reporting"
	"github.com/mamadbah2/papertrail/internal/service/tools"
	"github.com/mamadbah2/papertrail/pkg/logger"
)

// App holds the wired pipeline and the resources it owns.
type App struct {
	Store        repository.Store
	Catalog      *catalog.Catalog
	Toolkit      *tools.StoreToolkit
	Reporting    *reporting.Service
	Orchestrator *orchestrator.Orchestrator
	Archive      *mongodb.MongoDBRepository

	publisher events.Publisher
	logger    *zap.Logger
}

// OpenStore opens the ledger backend selected by cfg.Driver.
func OpenStore(ctx context.Context, cfg config.StoreConfig, log *zap.Logger) (repository.Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memory.NewStore(logger.Named(log, "repo.memory")), nil
	case config.DriverBadger, "":
		return badgerdb.Open(cfg.BadgerPath, logger.Named(log, "repo.badger"))
	case config.DriverPostgres:
		return postgres.Open(ctx, cfg.PostgresDSN, logger.Named(log, "repo.postgres"))
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}

// LoadCatalog returns the default catalog unless an override file is configured.
func LoadCatalog(cfg config.CatalogConfig) (*catalog.Catalog, error) {
	if cfg.File == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(cfg.File)
}

// Build opens every configured backend and wires the pipeline stages.
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	cat, err := LoadCatalog(cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	store, err := OpenStore(ctx, cfg.Store, log)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}

	a := &App{Store: store, Catalog: cat, logger: log, publisher: events.NopPublisher{}}

	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			_ = a.Close(ctx)
			return nil, fmt.Errorf("init kafka publisher: %w", err)
		}
		a.publisher = publisher
		log.Info("transaction events enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	var archive reporting.Archive
	if cfg.MongoDB.URI != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		a.Archive, err = mongodb.NewMongoDBRepository(connectCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		cancel()
		if err != nil {
			_ = a.Close(ctx)
			return nil, fmt.Errorf("init mongodb repository: %w", err)
		}
		archive = a.Archive
	}

	a.Toolkit = tools.New(store, cat, a.publisher, cfg.Catalog.FrameworkTag, logger.Named(log, "tools"))
	a.Reporting = reporting.NewService(a.Toolkit, archive, logger.Named(log, "svc.reporting"))
	a.Orchestrator = orchestrator.New(orchestrator.Stages{
		Assessor:  inventory.NewAssessor(a.Toolkit, logger.Named(log, "svc.inventory")),
		Quotes:    quote.NewBuilder(a.Toolkit, logger.Named(log, "svc.quote")),
		Resolver:  fulfillment.NewResolver(a.Toolkit, logger.Named(log, "svc.fulfillment")),
		Reporter:  a.Reporting,
		Framework: a.Toolkit.Framework(),
	}, logger.Named(log, "svc.orchestrator"))

	return a, nil
}

// Prepare creates the schema and seeds the catalog. With reset the ledger is
// wiped first, so every evaluation run starts from the same state.
func (a *App) Prepare(ctx context.Context, reset bool) error {
	if reset {
		if err := a.Store.Reset(ctx); err != nil {
			return fmt.Errorf("reset store: %w", err)
		}
	}
	if err := a.Store.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	if err := a.Store.SeedInventory(ctx, a.Catalog.Specs()); err != nil {
		return fmt.Errorf("seed inventory: %w", err)
	}
	a.logger.Info("ledger ready", zap.Bool("reset", reset), zap.Int("paper_types", len(a.Catalog.Specs())))
	return nil
}

// Close releases every backend, returning all close errors joined.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.publisher != nil {
		errs = append(errs, a.publisher.Close())
	}
	if a.Archive != nil {
		errs = append(errs, a.Archive.Close(ctx))
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	return errors.Join(errs...)
}

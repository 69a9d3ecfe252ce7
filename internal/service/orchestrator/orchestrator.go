// Package orchestrator sequences the pipeline stages for one request and
// assembles the customer-facing response.
package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/papertrail/internal/domain/models"
)

const fallbackRationale = "request declined"

type Assessor interface {
	Assess(ctx context.Context, req models.Request) (models.InventoryAssessment, error)
}

type QuoteBuilder interface {
	Build(ctx context.Context, req models.Request) (models.Quote, error)
}

type Resolver interface {
	Finalize(ctx context.Context, req models.Request, quote models.Quote, assessment models.InventoryAssessment) (models.Fulfillment, error)
}

type Reporter interface {
	Snapshot(ctx context.Context) (models.Snapshot, error)
}

// Stages bundles the collaborators an Orchestrator drives.
type Stages struct {
	Assessor  Assessor
	Quotes    QuoteBuilder
	Resolver  Resolver
	Reporter  Reporter
	Framework string
}

// Orchestrator runs assess, quote, resolve and report for each request.
// Requests for the same paper type are serialized so a stock read and its
// decrement cannot interleave with another request.
type Orchestrator struct {
	stages Stages
	locks  keyedMutex
	logger *zap.Logger
}

// New wires an orchestrator.
func New(stages Stages, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{stages: stages, logger: logger}
}

// Handle processes one request to completion. Business rejections come back
// as responses; only validation and store failures are errors.
func (o *Orchestrator) Handle(ctx context.Context, req models.Request) (models.Response, error) {
	if err := req.Validate(); err != nil {
		return models.Response{}, err
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	fulfillment, quote, err := o.resolve(ctx, req)
	if err != nil {
		return models.Response{}, err
	}

	snapshot, err := o.stages.Reporter.Snapshot(ctx)
	if err != nil {
		return models.Response{}, fmt.Errorf("request %s: %w", req.RequestID, err)
	}

	resp := models.Response{
		RequestID:        req.RequestID,
		CustomerName:     req.CustomerName,
		PaperType:        req.PaperType,
		Quantity:         req.Quantity,
		QuoteTotal:       quote.Total,
		Status:           fulfillment.Status,
		Fulfilled:        fulfillment.Fulfilled,
		Rationale:        rationale(quote, fulfillment),
		CashBalanceAfter: snapshot.CashBalance,
		Framework:        o.stages.Framework,
	}

	o.logger.Info("request processed",
		zap.String("request_id", resp.RequestID),
		zap.String("status", string(resp.Status)),
		zap.Int64("txn_id", fulfillment.TransactionID),
		zap.Float64("cash_balance_after", resp.CashBalanceAfter))
	return resp, nil
}

func (o *Orchestrator) resolve(ctx context.Context, req models.Request) (models.Fulfillment, models.Quote, error) {
	unlock := o.locks.Lock(req.PaperType)
	defer unlock()

	assessment, err := o.stages.Assessor.Assess(ctx, req)
	if err != nil {
		return models.Fulfillment{}, models.Quote{}, fmt.Errorf("request %s: %w", req.RequestID, err)
	}

	quote, err := o.stages.Quotes.Build(ctx, req)
	if err != nil {
		return models.Fulfillment{}, models.Quote{}, fmt.Errorf("request %s: %w", req.RequestID, err)
	}

	fulfillment, err := o.stages.Resolver.Finalize(ctx, req, quote, assessment)
	if err != nil {
		return models.Fulfillment{}, models.Quote{}, fmt.Errorf("request %s: %w", req.RequestID, err)
	}
	return fulfillment, quote, nil
}

// rationale ties the explanation to the most upstream cause.
func rationale(quote models.Quote, fulfillment models.Fulfillment) string {
	if fulfillment.Status != models.StatusDeclined {
		return fulfillment.Message
	}
	switch {
	case quote.Reason != "":
		return quote.Reason
	case fulfillment.Message != "":
		return fulfillment.Message
	}
	return fallbackRationale
}

// keyedMutex hands out one mutex per key and forgets it once unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*refMutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

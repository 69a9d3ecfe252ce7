package batch

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/papertrail/internal/domain/models"
)

// Processor handles one request to completion.
type Processor interface {
	Handle(ctx context.Context, req models.Request) (models.Response, error)
}

// Preparer readies the ledger before a run.
type Preparer interface {
	Prepare(ctx context.Context, reset bool) error
}

// Summary describes a finished run.
type Summary struct {
	RunID     string
	Processed int
	Fulfilled int
	Framework string
}

// Runner processes requests strictly in input order, so stock and loyalty
// history built by request i are visible to request i+1.
type Runner struct {
	processor Processor
	preparer  Preparer
	sinks     []ResultSink
	reset     bool
	framework string
	logger    *zap.Logger
}

// NewRunner wires a runner. Responses are handed to every sink after the
// last request has been processed.
func NewRunner(processor Processor, preparer Preparer, reset bool, logger *zap.Logger, sinks ...ResultSink) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{processor: processor, preparer: preparer, sinks: sinks, reset: reset, logger: logger}
}

// WithFramework sets the tag reported in the run summary.
func (r *Runner) WithFramework(tag string) *Runner {
	r.framework = tag
	return r
}

// Run prepares the ledger and processes requests. Any store failure aborts the
// run; responses produced up to that point are discarded along with it.
func (r *Runner) Run(ctx context.Context, requests []models.Request) ([]models.Response, Summary, error) {
	summary := Summary{RunID: uuid.NewString(), Framework: r.framework}
	log := r.logger.With(zap.String("run_id", summary.RunID))

	if r.preparer != nil {
		if err := r.preparer.Prepare(ctx, r.reset); err != nil {
			return nil, summary, fmt.Errorf("prepare ledger: %w", err)
		}
	}

	responses := make([]models.Response, 0, len(requests))
	for _, req := range requests {
		resp, err := r.processor.Handle(ctx, req)
		if err != nil {
			return nil, summary, fmt.Errorf("process request %s: %w", req.RequestID, err)
		}
		responses = append(responses, resp)

		summary.Processed++
		if resp.Fulfilled {
			summary.Fulfilled++
		}
		if summary.Framework == "" {
			summary.Framework = resp.Framework
		}
	}

	for _, sink := range r.sinks {
		if err := sink.WriteResults(ctx, responses); err != nil {
			return responses, summary, fmt.Errorf("write results: %w", err)
		}
	}

	log.Info("batch finished",
		zap.Int("processed", summary.Processed),
		zap.Int("fulfilled", summary.Fulfilled),
		zap.String("framework", summary.Framework))
	return responses, summary, nil
}

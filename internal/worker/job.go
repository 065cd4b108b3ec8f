package worker

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mupfumi/donation-receipts-backend/internal/db"
	"github.com/mupfumi/donation-receipts-backend/internal/pipeline"
	"github.com/mupfumi/donation-receipts-backend/internal/platform"
)

// OrderProcessor is the slice of the pipeline the worker needs. The concrete
// implementation is *pipeline.Pipeline; tests substitute a stub.
type OrderProcessor interface {
	Run(ctx context.Context, shop string, order platform.Order) (pipeline.Result, error)
}

// Job processes a single stored order event: parse the payload, run the
// donation pipeline, and record the terminal status on the event row.
type Job struct {
	q      db.Querier
	pipe   OrderProcessor
	logger *slog.Logger
}

// NewJob constructs a Job with all required dependencies.
func NewJob(q db.Querier, pipe OrderProcessor, logger *slog.Logger) *Job {
	return &Job{
		q:      q,
		pipe:   pipe,
		logger: logger,
	}
}

// Run executes the pipeline for a single order event:
//
//  1. Load the event row.
//  2. Parse the stored webhook payload into an order.
//  3. Run the donation pipeline (compute, record, compose, deliver).
//  4. Mark the event processed or failed.
//
// Failures are terminal: the event is marked failed with the error text and
// is not retried. A merchant recovers a failed delivery through the resend
// endpoint, which never re-records the donation.
func (j *Job) Run(ctx context.Context, eventID uuid.UUID) error {
	log := j.logger.With("event_id", eventID)

	event, err := j.q.GetOrderEventByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("job: get order event: %w", err)
	}

	// The channel and the poller can both hand over the same id. Whoever
	// loses the race sees a non-pending row and moves on.
	if event.Status != "pending" {
		log.Debug("job: event already handled", "status", event.Status)
		return nil
	}

	order, err := platform.ParseOrder(event.Payload)
	if err != nil {
		j.markFailed(ctx, eventID, fmt.Sprintf("parse payload: %v", err), log)
		return fmt.Errorf("job: parse payload: %w", err)
	}

	log = log.With("shop", event.Shop, "order_id", order.ID)

	res, err := j.pipe.Run(ctx, event.Shop, order)
	if err != nil {
		j.markFailed(ctx, eventID, err.Error(), log)
		return fmt.Errorf("job: pipeline: %w", err)
	}

	if _, err := j.q.MarkOrderEventProcessed(ctx, eventID); err != nil {
		return fmt.Errorf("job: mark processed: %w", err)
	}

	log.Info("job: event processed", "outcome", res.Outcome)
	return nil
}

func (j *Job) markFailed(ctx context.Context, eventID uuid.UUID, reason string, log *slog.Logger) {
	_, err := j.q.MarkOrderEventFailed(ctx, db.MarkOrderEventFailedParams{
		ID:    eventID,
		Error: sql.NullString{String: reason, Valid: true},
	})
	if err != nil {
		log.Error("job: could not mark event failed", "error", err)
	}
}

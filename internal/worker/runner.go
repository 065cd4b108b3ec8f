// Package worker contains the background machinery that turns stored order
// events into donations and receipts. It is intentionally decoupled from the
// HTTP layer: the api package holds a worker.Enqueuer interface and calls
// Enqueue — it never imports the concrete Runner or Job types.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mupfumi/donation-receipts-backend/internal/db"
)

// ─── ENQUEUER INTERFACE ───────────────────────────────────────────────────────

// Enqueuer is the narrow interface the api package uses to hand off work after
// a webhook is stored. Keeping it here (not in api/) means api/ does not need
// to import worker/.
//
// The concrete implementation is *Runner. In tests, any struct with an Enqueue
// method satisfies the interface.
type Enqueuer interface {
	Enqueue(ctx context.Context, eventID uuid.UUID) error
}

// ─── RUNNER ───────────────────────────────────────────────────────────────────

// RunnerConfig holds tuning parameters for the Runner. All fields have
// sensible defaults if zero-valued; call DefaultRunnerConfig() to get them.
type RunnerConfig struct {
	// Workers is the number of concurrent job goroutines. Default: 3.
	Workers int

	// PollInterval is how often the fallback poller checks
	// ListPendingOrderEvents for events that were missed by the in-process
	// channel (e.g. after a crash or restart). Default: 30s.
	PollInterval time.Duration

	// JobTimeout is the per-job context deadline. Default: 1 minute. A job
	// makes at most three outbound calls (shop profile, order lookup, email).
	JobTimeout time.Duration

	// PollBatch is the maximum number of pending events fetched per poll
	// cycle. Default: 50.
	PollBatch int32
}

// DefaultRunnerConfig returns safe production defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Workers:      3,
		PollInterval: 30 * time.Second,
		JobTimeout:   time.Minute,
		PollBatch:    50,
	}
}

// Runner manages a pool of worker goroutines. It accepts jobs via an in-process
// channel (fast path, used for freshly received webhooks) and also polls the
// database periodically to pick up any events that were in-flight when the
// process last restarted (recovery path).
//
// There is no retry loop: a failed event stays failed, and the donation row —
// when one was recorded before the failure — stays put. Re-delivery goes
// through the resend endpoint instead, which composes and sends without ever
// touching the donation ledger.
type Runner struct {
	job    *Job
	q      db.Querier
	cfg    RunnerConfig
	logger *slog.Logger

	queue chan uuid.UUID
	wg    sync.WaitGroup
}

// NewRunner constructs a Runner. Call Start() to begin processing.
func NewRunner(job *Job, q db.Querier, cfg RunnerConfig, logger *slog.Logger) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultRunnerConfig().Workers
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultRunnerConfig().PollInterval
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = DefaultRunnerConfig().JobTimeout
	}
	if cfg.PollBatch <= 0 {
		cfg.PollBatch = DefaultRunnerConfig().PollBatch
	}

	return &Runner{
		job:    job,
		q:      q,
		cfg:    cfg,
		logger: logger,
		// Buffer = Workers*2 so Enqueue never blocks under normal load.
		queue: make(chan uuid.UUID, cfg.Workers*2),
	}
}

// Enqueue pushes an event id onto the in-process channel. It satisfies the
// Enqueuer interface. If the channel is full (very unlikely given the buffer
// sizing) it returns an error rather than blocking the HTTP response; the
// event stays pending and the poller picks it up.
func (r *Runner) Enqueue(_ context.Context, eventID uuid.UUID) error {
	select {
	case r.queue <- eventID:
		r.logger.Info("worker: enqueued event", "event_id", eventID)
		return nil
	default:
		return errors.New("worker: queue is full, event will be picked up by poller")
	}
}

// Start launches the worker pool and the fallback poller. It blocks until ctx
// is cancelled. Call it in a goroutine from main:
//
//	go runner.Start(ctx)
func (r *Runner) Start(ctx context.Context) {
	r.logger.Info("worker: starting", "workers", r.cfg.Workers, "poll_interval", r.cfg.PollInterval)

	for i := 0; i < r.cfg.Workers; i++ {
		r.wg.Add(1)
		go r.work(ctx, i)
	}

	r.wg.Add(1)
	go r.poll(ctx)

	r.wg.Wait()
	r.logger.Info("worker: stopped")
}

// work is the inner loop for each worker goroutine.
func (r *Runner) work(ctx context.Context, id int) {
	defer r.wg.Done()
	log := r.logger.With("worker_id", id)
	log.Info("worker: goroutine started")

	for {
		select {
		case <-ctx.Done():
			log.Info("worker: goroutine stopping")
			return
		case eventID := <-r.queue:
			jobCtx, cancel := context.WithTimeout(ctx, r.cfg.JobTimeout)
			if err := r.job.Run(jobCtx, eventID); err != nil {
				log.Error("worker: job failed", "event_id", eventID, "error", err)
			}
			cancel()
		}
	}
}

// poll queries the database on PollInterval for any pending events that were
// not delivered via the channel (e.g. events from before a restart).
func (r *Runner) poll(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	// Run once immediately on startup to pick up anything from before restart.
	r.pollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.pollOnce(ctx)
		}
	}
}

func (r *Runner) pollOnce(ctx context.Context) {
	events, err := r.q.ListPendingOrderEvents(ctx, r.cfg.PollBatch)
	if err != nil {
		r.logger.Error("worker: poll failed", "error", err)
		return
	}
	for _, ev := range events {
		select {
		case r.queue <- ev.ID:
			r.logger.Debug("worker: poller enqueued event", "event_id", ev.ID)
		default:
			// Queue full — will be picked up next poll cycle.
		}
	}
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // postgres driver

	"github.com/mupfumi/donation-receipts-backend/internal/api"
	"github.com/mupfumi/donation-receipts-backend/internal/config"
	"github.com/mupfumi/donation-receipts-backend/internal/db"
	"github.com/mupfumi/donation-receipts-backend/internal/email"
	"github.com/mupfumi/donation-receipts-backend/internal/pipeline"
	"github.com/mupfumi/donation-receipts-backend/internal/platform"
	"github.com/mupfumi/donation-receipts-backend/internal/receipt"
	"github.com/mupfumi/donation-receipts-backend/internal/store"
	"github.com/mupfumi/donation-receipts-backend/internal/worker"
)

func main() {
	// ── Logger ────────────────────────────────────────────────────────────────
	// JSON in production, pretty text in development.
	var logger *slog.Logger
	if os.Getenv("ENV") == "production" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// ── Config ────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Info("config loaded", "env", cfg.Env, "port", cfg.Port)

	// ── Database ──────────────────────────────────────────────────────────────
	pool, queries, err := openDB(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()
	logger.Info("database connected")

	// ── Store (atomic multi-step writes + sentinel-mapped reads) ──────────────
	st := store.New(pool, queries)

	// ── Commerce platform client ──────────────────────────────────────────────
	platformClient := platform.NewRESTClient(platform.RESTConfig{
		AccessToken: cfg.PlatformAccessToken,
		BaseURL:     cfg.PlatformBaseURL,
	})

	// ── Email transport ───────────────────────────────────────────────────────
	// Resend is the default. SMTP is for deployments that keep delivery on
	// their own relay.
	var mailer email.Sender
	switch cfg.EmailProvider {
	case "smtp":
		mailer = email.NewSMTPClient(email.SMTPConfig{
			Addr:     cfg.SMTPAddr,
			Host:     cfg.SMTPHost,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
		})
		logger.Info("email: using SMTP relay", "addr", cfg.SMTPAddr)
	default:
		mailer = email.NewResendClient(cfg.ResendAPIKey)
		logger.Info("email: using Resend")
	}

	// ── Pipeline ──────────────────────────────────────────────────────────────
	pipe := pipeline.New(
		queries,
		st, // *Store satisfies pipeline.Ledger
		receipt.NewComposer(),
		mailer,
		platformClient,
		pipeline.Config{DefaultFrom: cfg.EmailFromAddr},
		logger,
	)

	// ── Worker ────────────────────────────────────────────────────────────────
	job := worker.NewJob(queries, pipe, logger)
	runner := worker.NewRunner(job, queries, worker.RunnerConfig{
		Workers:      cfg.WorkerCount,
		PollInterval: cfg.PollInterval,
		JobTimeout:   cfg.JobTimeout,
	}, logger)

	// ── HTTP server ───────────────────────────────────────────────────────────
	handler := api.NewServer(
		queries,
		st,
		pipe,
		runner, // *Runner satisfies worker.Enqueuer
		api.Config{
			WebhookSecret: cfg.PlatformWebhookSecret,
			Env:           cfg.Env,
		},
		logger,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // PDF preview and export can be slow on big shops
		IdleTimeout:  120 * time.Second,
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	// Root context cancelled by OS signal. Worker and HTTP server both respect it.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start the worker pool in a background goroutine. It blocks until ctx is done.
	go runner.Start(ctx)

	// Start the HTTP server in a background goroutine.
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until either a signal arrives or the server dies unexpectedly.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	// Give in-flight HTTP requests up to 20 seconds to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	// The worker goroutine exits when ctx is cancelled (already done). Pending
	// order events survive in the database and are replayed by the poller on
	// the next start.
	logger.Info("shutdown complete")
	return nil
}

// openDB opens the connection pool and verifies connectivity before the
// server starts taking webhooks.
func openDB(dsn string) (*sql.DB, *db.Queries, error) {
	pool, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open: %w", err)
	}

	// Tune the connection pool.
	pool.SetMaxOpenConns(25)
	pool.SetMaxIdleConns(10)
	pool.SetConnMaxLifetime(5 * time.Minute)
	pool.SetConnMaxIdleTime(2 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}

	return pool, db.New(pool), nil
}

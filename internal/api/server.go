// Package api implements the HTTP layer for the donation receipts backend.
// Handlers are methods on *Server. Each handler file is responsible for one
// resource group and only imports the dependencies it actually uses.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/mupfumi/donation-receipts-backend/internal/db"
	"github.com/mupfumi/donation-receipts-backend/internal/pipeline"
	"github.com/mupfumi/donation-receipts-backend/internal/store"
	"github.com/mupfumi/donation-receipts-backend/internal/worker"
)

// Config holds values read from environment variables at startup.
type Config struct {
	// WebhookSecret is the shared secret the platform signs webhook bodies
	// with.
	WebhookSecret string

	// Env is "production", "staging", or "development".
	Env string
}

// ConfigStore is the slice of the store the configuration handlers use: the
// atomic product replace-set and the sentinel-mapped charity lookup. The
// concrete implementation is *store.Store.
type ConfigStore interface {
	ReplaceDonationProducts(ctx context.Context, shop string, products []store.ProductParams) ([]db.DonationProduct, error)
	CharityByShop(ctx context.Context, shop string) (db.Charity, error)
}

// Receipts is the slice of the pipeline the API calls directly: re-delivery
// and the merchant-facing preview/test operations. Webhook processing goes
// through the worker instead, never through this interface.
type Receipts interface {
	Resend(ctx context.Context, shop string, donationID uuid.UUID, overrideTo string) (pipeline.Result, error)
	TestSend(ctx context.Context, shop, to string) (pipeline.Result, error)
	PreviewEmail(ctx context.Context, shop, subject, template string) (pipeline.Preview, error)
	PreviewPDF(ctx context.Context, shop string) ([]byte, error)
}

// Server holds all shared dependencies. Each handler file attaches methods to
// this type and uses only the fields it needs.
type Server struct {
	// q handles all single-query reads and writes. Injected directly — no
	// repo wrapper.
	q db.Querier

	// store handles multi-step atomic writes and sentinel-mapped reads.
	store ConfigStore

	// receipts resends and previews receipts on behalf of the merchant.
	receipts Receipts

	// worker enqueues stored order events for background processing.
	worker worker.Enqueuer

	cfg    Config
	logger *slog.Logger
}

// NewServer constructs the Server and wires the chi router. The returned
// http.Handler is ready to pass to http.ListenAndServe.
func NewServer(
	q db.Querier,
	st ConfigStore,
	receipts Receipts,
	enqueuer worker.Enqueuer,
	cfg Config,
	logger *slog.Logger,
) http.Handler {
	s := &Server{
		q:        q,
		store:    st,
		receipts: receipts,
		worker:   enqueuer,
		cfg:      cfg,
		logger:   logger,
	}

	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// ── Global middleware ─────────────────────────────────────────────────────
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)
	r.Use(middleware.Timeout(30 * time.Second))

	// ── Health ────────────────────────────────────────────────────────────────
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// ── Platform webhook — no shop header (signature verification inside) ────
	r.Post("/webhooks/orders/create", s.handleOrderWebhook)

	// ── Merchant API — every route is scoped to the X-Shop header ────────────
	r.Route("/api", func(r chi.Router) {
		r.Use(s.requireShop)

		r.Get("/donations", s.handleListDonations)
		r.Post("/donations/{donationID}/resend", s.handleResendReceipt)

		r.Get("/charity", s.handleGetCharity)
		r.Put("/charity", s.handleUpsertCharity)

		r.Get("/products", s.handleListProducts)
		r.Post("/products", s.handleCreateProduct)
		r.Put("/products", s.handleReplaceProducts)
		r.Delete("/products/{productID}", s.handleDeleteProduct)

		r.Get("/preview/email", s.handlePreviewEmail)
		r.Get("/preview/pdf", s.handlePreviewPDF)
		r.Post("/test-email", s.handleTestEmail)

		r.Post("/export", s.handleExport)
	})

	return r
}

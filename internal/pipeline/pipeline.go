// Package pipeline orchestrates the donation flow for inbound order events
// and for the resend, preview, and test-send paths. Each step is a separate
// method so the flow reads like a spec and each stage can be tested
// independently.
//
// Idempotency lives in exactly one place: the ledger's unique constraint on
// (shop, order id). The pipeline is safe to invoke any number of times for
// the same order; every invocation after the first ends in a duplicate
// outcome without side effects.
package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mupfumi/donation-receipts-backend/internal/calc"
	"github.com/mupfumi/donation-receipts-backend/internal/db"
	"github.com/mupfumi/donation-receipts-backend/internal/email"
	"github.com/mupfumi/donation-receipts-backend/internal/platform"
	"github.com/mupfumi/donation-receipts-backend/internal/receipt"
	"github.com/mupfumi/donation-receipts-backend/internal/store"
)

// ─── OUTCOMES ─────────────────────────────────────────────────────────────────

// Outcome is the terminal state of one pipeline invocation.
type Outcome string

const (
	// OutcomeNoDonation: the order has no donation-eligible revenue. Nothing
	// was persisted or sent.
	OutcomeNoDonation Outcome = "no_donation"

	// OutcomeDuplicateIgnored: a donation for this order already exists; a
	// prior delivery of the event handled it. Nothing was persisted or sent.
	OutcomeDuplicateIgnored Outcome = "duplicate_ignored"

	// OutcomeDelivered: donation recorded (or found, on resend) and the
	// receipt email sent.
	OutcomeDelivered Outcome = "delivered"

	// OutcomeDeliverySkipped: donation recorded but the order has no usable
	// recipient address. A legitimate no-op, not an error.
	OutcomeDeliverySkipped Outcome = "delivery_skipped"

	// OutcomeCompositionFailed: template or PDF rendering failed after the
	// donation was recorded. The donation stays; resend is the recovery path.
	OutcomeCompositionFailed Outcome = "composition_failed"

	// OutcomeDeliveryFailed: transport failure after a successful compose.
	// The donation stays; resend is the recovery path.
	OutcomeDeliveryFailed Outcome = "delivery_failed"
)

// Result is what one invocation produced. Donation is set whenever a ledger
// row was written (or, for resend, loaded).
type Result struct {
	Outcome  Outcome
	Donation *db.Donation
}

// ─── ERRORS ──────────────────────────────────────────────────────────────────

// ErrDonationNotFound is returned by Resend when the donation id does not
// exist or belongs to a different shop.
var ErrDonationNotFound = errors.New("pipeline: donation not found")

// ─── PIPELINE ─────────────────────────────────────────────────────────────────

// Ledger is the narrow slice of the store the pipeline writes through.
// *store.Store satisfies it; tests inject an in-memory fake. Implementations
// signal an already-recorded order with store.ErrDuplicateDonation.
type Ledger interface {
	RecordDonation(ctx context.Context, shop string, orderID int64, amount decimal.Decimal) (db.Donation, error)
}

// Config holds pipeline-level settings.
type Config struct {
	// DefaultFrom is the sender address used when neither the charity's
	// email_from nor the shop profile provides one.
	DefaultFrom string
}

// Pipeline wires the calculator, ledger, composer, dispatcher, and platform
// client together.
type Pipeline struct {
	q        db.Querier
	ledger   Ledger
	composer *receipt.Composer
	sender   email.Sender
	platform platform.Client
	cfg      Config
	logger   *slog.Logger
}

// New constructs a Pipeline with all required collaborators.
func New(
	q db.Querier,
	ledger Ledger,
	composer *receipt.Composer,
	sender email.Sender,
	pc platform.Client,
	cfg Config,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		q:        q,
		ledger:   ledger,
		composer: composer,
		sender:   sender,
		platform: pc,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run processes one inbound order-creation event for shop:
//
//  1. Load the shop's donation-product configuration.
//  2. Compute the donation amount (pure, decimal arithmetic).
//  3. Zero amount → NoDonation, done.
//  4. Record the donation; the ledger's unique constraint decides between
//     Recorded and DuplicateIgnored.
//  5. Compose the receipt and deliver it (or skip when the order has no
//     usable recipient).
//
// Composition and delivery failures are returned as errors with the
// corresponding Outcome; the recorded donation is never rolled back.
func (p *Pipeline) Run(ctx context.Context, shop string, order platform.Order) (Result, error) {
	log := p.logger.With("shop", shop, "order_id", order.ID)

	// ── 1. Donation-product configuration ─────────────────────────────────────
	products, err := p.q.ListDonationProductsByShop(ctx, shop)
	if err != nil {
		return Result{}, fmt.Errorf("pipeline: list donation products: %w", err)
	}

	// ── 2. Calculate ─────────────────────────────────────────────────────────
	items, err := lineItems(order)
	if err != nil {
		return Result{}, fmt.Errorf("pipeline: order %d: %w", order.ID, err)
	}

	amount, ok := calc.Donation(items, percentages(products))
	if !ok {
		log.Debug("pipeline: no donation-eligible revenue")
		return Result{Outcome: OutcomeNoDonation}, nil
	}

	// ── 3. Record ─────────────────────────────────────────────────────────────
	donation, err := p.ledger.RecordDonation(ctx, shop, order.ID, amount)
	if errors.Is(err, store.ErrDuplicateDonation) {
		// Replayed delivery. The first delivery owns the receipt; do nothing.
		log.Debug("pipeline: duplicate order event, already recorded")
		return Result{Outcome: OutcomeDuplicateIgnored}, nil
	}
	if err != nil {
		return Result{}, err
	}
	log.Info("pipeline: donation recorded",
		"donation_id", donation.ID,
		"amount", amount.StringFixed(2),
	)

	// ── 4. Compose and deliver ────────────────────────────────────────────────
	outcome, err := p.deliverReceipt(ctx, shop, order, donation, "")
	return Result{Outcome: outcome, Donation: &donation}, err
}

// deliverReceipt composes the receipt for donation and sends it. overrideTo,
// when non-empty, replaces the order's customer email as the recipient
// (resend with an explicit address, and test-send, use this — it also
// bypasses the no-customer short-circuit).
func (p *Pipeline) deliverReceipt(ctx context.Context, shop string, order platform.Order, donation db.Donation, overrideTo string) (Outcome, error) {
	charity, err := p.q.GetCharityByShop(ctx, shop)
	if errors.Is(err, sql.ErrNoRows) {
		return OutcomeCompositionFailed, fmt.Errorf("pipeline: no charity configured for shop %s", shop)
	}
	if err != nil {
		return OutcomeCompositionFailed, fmt.Errorf("pipeline: load charity: %w", err)
	}

	// The shop profile supplies the fallback sender address. Failure here is
	// non-fatal: the configured default takes over.
	shopProfile, err := p.platform.GetShop(ctx, shop)
	if err != nil {
		p.logger.Warn("pipeline: shop profile lookup failed, using default sender",
			"shop", shop, "error", err)
		shopProfile = platform.Shop{}
	}

	rec, err := p.composer.Compose(receipt.ComposeParams{
		Shop:     shopProfile,
		Order:    order,
		Charity:  charity,
		Donation: donation,
	})
	if err != nil {
		return OutcomeCompositionFailed, err
	}

	to := overrideTo
	if to == "" {
		to = order.CustomerEmail()
	}
	if to == "" {
		// No customer on the order, or a customer without an address.
		p.logger.Info("pipeline: no recipient, delivery skipped",
			"shop", shop, "order_id", order.ID)
		return OutcomeDeliverySkipped, nil
	}

	from := charity.EmailFrom.String
	if from == "" {
		from = shopProfile.Email
	}
	if from == "" {
		from = p.cfg.DefaultFrom
	}

	msg := email.Message{
		To:             to,
		Bcc:            charity.EmailBcc.String,
		From:           from,
		Subject:        rec.EmailSubject,
		Body:           rec.EmailBody,
		Attachment:     rec.PDF,
		AttachmentName: rec.Filename,
	}
	if err := p.sender.Send(ctx, msg); err != nil {
		return OutcomeDeliveryFailed, fmt.Errorf("pipeline: deliver receipt for order %d: %w", order.ID, err)
	}

	p.logger.Info("pipeline: receipt delivered",
		"shop", shop, "order_id", order.ID, "to", to)
	return OutcomeDelivered, nil
}

// ─── INPUT MAPPING ────────────────────────────────────────────────────────────

// lineItems maps the webhook's line items into the calculator's input form,
// parsing price strings into decimals.
func lineItems(order platform.Order) ([]calc.LineItem, error) {
	items := make([]calc.LineItem, 0, len(order.LineItems))
	for _, li := range order.LineItems {
		price, err := decimal.NewFromString(li.Price)
		if err != nil {
			return nil, fmt.Errorf("line item for product %d: bad price %q: %w", li.ProductID, li.Price, err)
		}
		items = append(items, calc.LineItem{
			ProductID: li.ProductID,
			Price:     price,
			Quantity:  li.Quantity,
		})
	}
	return items, nil
}

// percentages indexes a shop's donation products by platform product id.
func percentages(products []db.DonationProduct) calc.ProductPercentages {
	pcts := make(calc.ProductPercentages, len(products))
	for _, p := range products {
		pcts[p.ProductID] = p.Percentage
	}
	return pcts
}

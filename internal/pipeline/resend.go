package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mupfumi/donation-receipts-backend/internal/receipt"
)

// Resend re-runs compose and deliver for an existing donation, optionally to
// an explicit recipient. The ledger is never written: resend can be invoked
// any number of times and the donation row is untouched.
//
// The donation's source order is resolved lazily through the platform client
// — the ledger stores only the order id, never a copy of the order.
func (p *Pipeline) Resend(ctx context.Context, shop string, donationID uuid.UUID, overrideTo string) (Result, error) {
	donation, err := p.q.GetDonationByID(ctx, donationID)
	if errors.Is(err, sql.ErrNoRows) {
		return Result{}, ErrDonationNotFound
	}
	if err != nil {
		return Result{}, fmt.Errorf("pipeline: load donation %s: %w", donationID, err)
	}
	if donation.Shop != shop {
		// A donation id from another shop is indistinguishable from a missing
		// one to the caller.
		return Result{}, ErrDonationNotFound
	}

	order, err := p.platform.GetOrder(ctx, shop, donation.OrderID)
	if err != nil {
		return Result{}, fmt.Errorf("pipeline: resolve order %d: %w", donation.OrderID, err)
	}

	outcome, err := p.deliverReceipt(ctx, shop, order, donation, overrideTo)
	return Result{Outcome: outcome, Donation: &donation}, err
}

// TestSend delivers a receipt built from the mock order and an unpersisted
// mock donation to an explicit recipient. The forced recipient bypasses the
// no-customer short-circuit; the ledger is never written.
func (p *Pipeline) TestSend(ctx context.Context, shop, to string) (Result, error) {
	if to == "" {
		return Result{}, fmt.Errorf("pipeline: test send requires a recipient")
	}

	order, err := MockOrder()
	if err != nil {
		return Result{}, fmt.Errorf("pipeline: mock order: %w", err)
	}
	donation := mockDonation(shop, order.ID)

	outcome, err := p.deliverReceipt(ctx, shop, order, donation, to)
	return Result{Outcome: outcome, Donation: &donation}, err
}

// Preview is the structured output of PreviewEmail.
type Preview struct {
	EmailSubject  string `json:"email_subject"`
	EmailBody     string `json:"email_body"`
	EmailTemplate string `json:"email_template"`
}

// PreviewEmail renders a caller-supplied body template against the mock
// order and donation, returning the rendered parts without producing a
// document or delivering anything. Shop staff use it to iterate on a
// template before saving.
func (p *Pipeline) PreviewEmail(ctx context.Context, shop, subject, template string) (Preview, error) {
	params, err := p.mockComposeParams(ctx, shop)
	if err != nil {
		return Preview{}, err
	}

	body, err := p.composer.RenderBody(template, params)
	if err != nil {
		return Preview{}, err
	}

	return Preview{
		EmailSubject:  subject,
		EmailBody:     body,
		EmailTemplate: template,
	}, nil
}

// PreviewPDF renders the receipt document from the charity's saved PDF
// template and the mock order/donation.
func (p *Pipeline) PreviewPDF(ctx context.Context, shop string) ([]byte, error) {
	params, err := p.mockComposeParams(ctx, shop)
	if err != nil {
		return nil, err
	}
	return p.composer.RenderPDF(params)
}

// mockComposeParams assembles ComposeParams from the shop's charity config
// and the mock order/donation pair.
func (p *Pipeline) mockComposeParams(ctx context.Context, shop string) (receipt.ComposeParams, error) {
	charity, err := p.q.GetCharityByShop(ctx, shop)
	if errors.Is(err, sql.ErrNoRows) {
		return receipt.ComposeParams{}, fmt.Errorf("pipeline: no charity configured for shop %s", shop)
	}
	if err != nil {
		return receipt.ComposeParams{}, fmt.Errorf("pipeline: load charity: %w", err)
	}

	order, err := MockOrder()
	if err != nil {
		return receipt.ComposeParams{}, fmt.Errorf("pipeline: mock order: %w", err)
	}

	shopProfile, err := p.platform.GetShop(ctx, shop)
	if err != nil {
		p.logger.Warn("pipeline: shop profile lookup failed for preview",
			"shop", shop, "error", err)
		shopProfile.Domain = shop
	}

	return receipt.ComposeParams{
		Shop:     shopProfile,
		Order:    order,
		Charity:  charity,
		Donation: mockDonation(shop, order.ID),
	}, nil
}

// Package receipt renders donation receipts: the email subject and body from
// the charity's Liquid templates, and the PDF document attached to the
// delivery email.
//
// Templates see exactly three bindings: order, charity, donation. The Liquid
// engine renders against that closed set only, so a template can loop over
// line items or branch on order fields but can never reach application
// state.
package receipt

import (
	"fmt"

	"github.com/osteele/liquid"

	"github.com/mupfumi/donation-receipts-backend/internal/db"
	"github.com/mupfumi/donation-receipts-backend/internal/platform"
)

// CompositionError wraps a template or PDF rendering failure. Delivery must
// never be attempted after one: a malformed receipt is surfaced to the
// caller, not sent.
type CompositionError struct {
	Stage string // "subject", "body", "filename", "pdf"
	Err   error
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("receipt: render %s: %v", e.Stage, e.Err)
}

func (e *CompositionError) Unwrap() error { return e.Err }

// ComposeParams carries everything a receipt is built from.
type ComposeParams struct {
	Shop     platform.Shop
	Order    platform.Order
	Charity  db.Charity
	Donation db.Donation
}

// Receipt is a fully rendered receipt, ready for the dispatcher.
type Receipt struct {
	PDF          []byte
	Filename     string // attachment filename, extension included
	EmailSubject string
	EmailBody    string
}

// Composer renders receipts. Safe for concurrent use; the Liquid engine is
// stateless across renders.
type Composer struct {
	engine *liquid.Engine
}

func NewComposer() *Composer {
	return &Composer{engine: liquid.NewEngine()}
}

// Compose renders the charity's subject, body, and filename templates plus
// the PDF document. Any rendering failure is returned as a
// *CompositionError and no partial receipt is produced.
func (c *Composer) Compose(p ComposeParams) (Receipt, error) {
	b := bindings(p)

	subject, err := c.engine.ParseAndRenderString(p.Charity.EmailSubject, b)
	if err != nil {
		return Receipt{}, &CompositionError{Stage: "subject", Err: err}
	}

	body, err := c.engine.ParseAndRenderString(p.Charity.EmailTemplate, b)
	if err != nil {
		return Receipt{}, &CompositionError{Stage: "body", Err: err}
	}

	filename, err := c.engine.ParseAndRenderString(p.Charity.PdfFilename, b)
	if err != nil {
		return Receipt{}, &CompositionError{Stage: "filename", Err: err}
	}

	pdf, pdfErr := c.renderPDF(p, b)
	if pdfErr != nil {
		return Receipt{}, pdfErr
	}

	return Receipt{
		PDF:          pdf,
		Filename:     filename + ".pdf",
		EmailSubject: subject,
		EmailBody:    body,
	}, nil
}

// RenderBody renders an arbitrary body template against the standard
// bindings. The preview endpoint uses this to show shop staff the effect of
// an edited template before saving it.
func (c *Composer) RenderBody(template string, p ComposeParams) (string, error) {
	out, err := c.engine.ParseAndRenderString(template, bindings(p))
	if err != nil {
		return "", &CompositionError{Stage: "body", Err: err}
	}
	return out, nil
}

// RenderPDF renders only the PDF document. Used by the PDF preview endpoint.
func (c *Composer) RenderPDF(p ComposeParams) ([]byte, error) {
	return c.renderPDF(p, bindings(p))
}

// bindings builds the closed binding set templates render against. Donation
// amounts are preformatted with exactly two fraction digits so templates
// never do money formatting themselves.
func bindings(p ComposeParams) map[string]interface{} {
	return map[string]interface{}{
		"order": p.Order.Raw,
		"charity": map[string]interface{}{
			"name": p.Charity.Name.String,
		},
		"donation": map[string]interface{}{
			"id":              p.Donation.ID.String(),
			"shop":            p.Donation.Shop,
			"order_id":        p.Donation.OrderID,
			"donation_amount": p.Donation.DonationAmount.StringFixed(2),
			"created_at":      p.Donation.CreatedAt,
		},
	}
}

// Package platform defines the interface to the commerce platform: webhook
// signature verification, order payload parsing, and the read-only REST
// lookups the pipeline needs (shop profile, lazy order resolution for
// resend). OAuth/session establishment is the platform app bridge's concern
// and does not live here.
package platform

import (
	"context"
	"encoding/json"
	"fmt"
)

// ─── TYPES ────────────────────────────────────────────────────────────────────

// Shop is the subset of the platform's shop profile the pipeline needs. The
// email is the fallback sender address when a charity has no explicit
// email_from configured.
type Shop struct {
	Domain string `json:"myshopify_domain"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// LineItem is one order line as delivered in the webhook payload. Price
// arrives as a decimal string and is kept that way here; the pipeline parses
// it into a decimal before any arithmetic.
type LineItem struct {
	ProductID int64  `json:"product_id"`
	Price     string `json:"price"`
	Quantity  int64  `json:"quantity"`
}

// Customer is the optional customer block on an order. Orders placed without
// a registered customer profile have none.
type Customer struct {
	Email string `json:"email"`
}

// Order is a parsed order-creation event. Raw holds the full decoded payload
// so templates can reach any order field the shop staff references, not just
// the ones the pipeline computes with.
type Order struct {
	ID        int64      `json:"id"`
	LineItems []LineItem `json:"line_items"`
	Customer  *Customer  `json:"customer"`

	Raw map[string]interface{} `json:"-"`
}

// CustomerEmail returns the customer's email address, or "" when the order
// has no customer or the customer has no address. "" means delivery must be
// skipped, not that it failed.
func (o Order) CustomerEmail() string {
	if o.Customer == nil {
		return ""
	}
	return o.Customer.Email
}

// ParseOrder decodes a raw order payload into both the typed Order and its
// Raw map form.
func ParseOrder(payload []byte) (Order, error) {
	var order Order
	if err := json.Unmarshal(payload, &order); err != nil {
		return Order{}, fmt.Errorf("platform: parse order: %w", err)
	}
	if order.ID == 0 {
		return Order{}, fmt.Errorf("platform: order payload has no id")
	}
	if err := json.Unmarshal(payload, &order.Raw); err != nil {
		return Order{}, fmt.Errorf("platform: parse order raw map: %w", err)
	}
	return order, nil
}

// ─── CLIENT INTERFACE ─────────────────────────────────────────────────────────

// Client is the interface the pipeline and api packages use for platform
// reads. The concrete implementation is the Admin REST client in rest.go.
// Tests inject a stub.
type Client interface {
	// GetShop fetches the shop profile for shopDomain.
	GetShop(ctx context.Context, shopDomain string) (Shop, error)

	// GetOrder resolves an order by its source id. This is the lazy
	// back-reference from a donation record to its order: the order is
	// fetched on demand, never stored alongside the donation.
	GetOrder(ctx context.Context, shopDomain string, orderID int64) (Order, error)
}

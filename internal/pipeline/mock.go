package pipeline

import (
	_ "embed"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mupfumi/donation-receipts-backend/internal/db"
	"github.com/mupfumi/donation-receipts-backend/internal/platform"
)

// mockOrderJSON is a representative order payload used by the preview and
// test-send paths so shop staff can exercise their templates without a real
// order.
//
//go:embed order_webhook.json
var mockOrderJSON []byte

var mockDonationAmount = decimal.New(2000, -2) // 20.00

// MockOrder returns the canned preview order.
func MockOrder() (platform.Order, error) {
	return platform.ParseOrder(mockOrderJSON)
}

// mockDonation builds an unpersisted donation matching the mock order. It is
// never written to the ledger.
func mockDonation(shop string, orderID int64) db.Donation {
	return db.Donation{
		ID:             uuid.New(),
		Shop:           shop,
		OrderID:        orderID,
		DonationAmount: mockDonationAmount,
		CreatedAt:      time.Now().UTC(),
	}
}

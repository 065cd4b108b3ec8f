package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mupfumi/donation-receipts-backend/internal/db"
)

// ProductParams is one donation-product entry for ReplaceDonationProducts.
type ProductParams struct {
	ProductID  int64
	Percentage decimal.Decimal // 0–100; validated at the API layer and by a DB check
}

// ReplaceDonationProducts swaps a shop's entire donation-product set in one
// transaction: delete everything, insert the new entries. Webhooks running
// concurrently see either the old set or the new set, never a half-replaced
// one.
func (s *Store) ReplaceDonationProducts(ctx context.Context, shop string, products []ProductParams) ([]db.DonationProduct, error) {
	var out []db.DonationProduct

	err := s.withTx(ctx, func(ctx context.Context, q db.Querier) error {
		if err := q.DeleteDonationProductsByShop(ctx, shop); err != nil {
			return fmt.Errorf("ReplaceDonationProducts: clear products: %w", err)
		}

		out = make([]db.DonationProduct, 0, len(products))
		for _, p := range products {
			created, err := q.CreateDonationProduct(ctx, db.CreateDonationProductParams{
				Shop:       shop,
				ProductID:  p.ProductID,
				Percentage: p.Percentage,
			})
			if err != nil {
				return fmt.Errorf("ReplaceDonationProducts: insert product %d: %w", p.ProductID, err)
			}
			out = append(out, created)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

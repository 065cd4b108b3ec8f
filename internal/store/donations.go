package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/mupfumi/donation-receipts-backend/internal/db"
)

// uniqueViolation is the Postgres error code raised when an INSERT hits a
// unique constraint. See https://www.postgresql.org/docs/current/errcodes-appendix.html.
const uniqueViolation = "23505"

// donationOrderConstraint is the name of the UNIQUE (shop, order_id)
// constraint in schema.sql.
const donationOrderConstraint = "donations_shop_order_id_key"

// ErrDuplicateDonation is returned by RecordDonation when a donation for the
// same (shop, order id) already exists. This is not a failure: the platform
// delivers order webhooks at least once, and a replayed delivery is expected
// to land here. Callers should log it at debug level and move on.
var ErrDuplicateDonation = errors.New("store: donation already recorded for order")

// RecordDonation creates exactly one donation row for (shop, orderID).
//
// The insert relies on the database's unique constraint — no SELECT-first
// check — so two concurrent deliveries of the same order race inside
// Postgres and exactly one wins. The loser's constraint violation is
// translated into ErrDuplicateDonation by error code and constraint name,
// never by matching the error's message text. Any other failure is a real
// storage error and is propagated wrapped.
func (s *Store) RecordDonation(ctx context.Context, shop string, orderID int64, amount decimal.Decimal) (db.Donation, error) {
	donation, err := s.q.CreateDonation(ctx, db.CreateDonationParams{
		Shop:           shop,
		OrderID:        orderID,
		DonationAmount: amount,
	})
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && pqErr.Constraint == donationOrderConstraint {
			return db.Donation{}, ErrDuplicateDonation
		}
		return db.Donation{}, fmt.Errorf("store: record donation for order %d: %w", orderID, err)
	}
	return donation, nil
}

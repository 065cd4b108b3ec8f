package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mupfumi/donation-receipts-backend/internal/db"
)

// ErrCharityNotFound means the shop has not configured a charity yet.
var ErrCharityNotFound = errors.New("store: charity not found")

// CharityByShop loads the shop's charity configuration, mapping the missing
// row to ErrCharityNotFound so callers don't match on sql.ErrNoRows.
func (s *Store) CharityByShop(ctx context.Context, shop string) (db.Charity, error) {
	charity, err := s.q.GetCharityByShop(ctx, shop)
	if errors.Is(err, sql.ErrNoRows) {
		return db.Charity{}, ErrCharityNotFound
	}
	if err != nil {
		return db.Charity{}, fmt.Errorf("store: get charity: %w", err)
	}
	return charity, nil
}

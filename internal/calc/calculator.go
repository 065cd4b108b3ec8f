// Package calc computes donation amounts from order line items. It is pure:
// no database, no HTTP, no clock. Its field types are plain Go and decimal
// values so it can be used without importing the db or platform packages —
// the pipeline maps its inputs in, the same way the worker maps db rows for
// persistence.
package calc

import (
	"github.com/shopspring/decimal"
)

// LineItem is the slice of an order line the calculator needs.
type LineItem struct {
	ProductID int64
	Price     decimal.Decimal // raw line price, pre-tax (matches the webhook field)
	Quantity  int64
}

// ProductPercentages maps a platform product id to the donation percentage
// (0–100) configured for it. Products absent from the map contribute zero.
type ProductPercentages map[int64]decimal.Decimal

var oneHundred = decimal.NewFromInt(100)

// Donation sums price × quantity × percentage/100 over all line items whose
// product is in pcts, then rounds the total to two decimal places, half away
// from zero. Rounding happens exactly once, on the final sum — never per
// line — so multi-item orders don't accumulate rounding error.
//
// The boolean is false when the rounded total is not strictly positive: a
// zero total means "no donation", not a zero-amount donation, and callers
// must not persist anything for it. Negative line items (refund lines folded
// into the payload) pass through arithmetically and can drag the total to or
// below zero; that case also reports false.
func Donation(items []LineItem, pcts ProductPercentages) (decimal.Decimal, bool) {
	sum := decimal.Zero
	for _, item := range items {
		pct, ok := pcts[item.ProductID]
		if !ok {
			continue
		}
		line := item.Price.Mul(decimal.NewFromInt(item.Quantity)).Mul(pct).Div(oneHundred)
		sum = sum.Add(line)
	}

	sum = sum.Round(2)
	if !sum.IsPositive() {
		return decimal.Zero, false
	}
	return sum, true
}

// Package billing computes bill totals for checkout.
package billing

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidPercent is returned when the offer percent is outside 0-100.
var ErrInvalidPercent = errors.New("offer percent must be between 0 and 100")

// Discount returns the discount amount for a subtotal at the given offer
// percent, rounded half-up to the nearest rupee.
func Discount(subtotal decimal.Decimal, offerPercent int) (decimal.Decimal, error) {
	if offerPercent < 0 || offerPercent > 100 {
		return decimal.Zero, ErrInvalidPercent
	}
	discount := subtotal.
		Mul(decimal.NewFromInt(int64(offerPercent))).
		Div(decimal.NewFromInt(100)).
		Round(0)
	return discount, nil
}

// Final returns subtotal - discount + parcelCharge, clamped at zero so an
// over-large discount never produces a negative bill.
func Final(subtotal, discount, parcelCharge decimal.Decimal) decimal.Decimal {
	final := subtotal.Sub(discount).Add(parcelCharge)
	if final.IsNegative() {
		return decimal.Zero
	}
	return final
}

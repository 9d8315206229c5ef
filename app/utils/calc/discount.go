package calc

import "github.com/shopspring/decimal"

// DiscountPercent is the whole-number saving of price against compareAtPrice.
// It is zero when compareAtPrice does not exceed price.
func DiscountPercent(price, compareAtPrice decimal.Decimal) decimal.Decimal {
	if !compareAtPrice.GreaterThan(price) || compareAtPrice.IsZero() {
		return decimal.Zero
	}
	return compareAtPrice.Sub(price).Mul(hundred).Div(compareAtPrice).Floor()
}

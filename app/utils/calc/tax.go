package calc

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// CalculateTax returns base × percent / 100 rounded to paise.
func CalculateTax(base, taxPercent decimal.Decimal) decimal.Decimal {
	return base.Mul(taxPercent).Div(hundred).Round(2)
}

func CalculateGrandTotal(subtotal, shippingCost, codCharge, taxAmount decimal.Decimal) decimal.Decimal {
	return subtotal.Add(shippingCost).Add(codCharge).Add(taxAmount)
}

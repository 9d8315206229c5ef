package calc

import (
	"github.com/Rakhulsr/kidstore/app/models"
	"github.com/shopspring/decimal"
)

type PricingRules struct {
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
	CODCharge             decimal.Decimal
	TaxPercent            decimal.Decimal
}

func DefaultPricingRules() PricingRules {
	return PricingRules{
		FreeShippingThreshold: decimal.NewFromInt(999),
		FlatShippingFee:       decimal.NewFromInt(60),
		CODCharge:             decimal.NewFromInt(50),
		TaxPercent:            decimal.NewFromInt(18),
	}
}

type Breakdown struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	ShippingCost decimal.Decimal `json:"shippingCost"`
	CodCharge    decimal.Decimal `json:"codCharge"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
}

func (p PricingRules) ShippingCost(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(p.FreeShippingThreshold) {
		return decimal.Zero
	}
	return p.FlatShippingFee
}

func (p PricingRules) CODChargeFor(method models.PaymentMethod) decimal.Decimal {
	if method == models.PaymentMethodCOD {
		return p.CODCharge
	}
	return decimal.Zero
}

// Quote applies every rule to subtotal; the rules are additive.
func (p PricingRules) Quote(subtotal decimal.Decimal, method models.PaymentMethod) Breakdown {
	subtotal = subtotal.Round(2)
	shipping := p.ShippingCost(subtotal)
	cod := p.CODChargeFor(method)
	tax := CalculateTax(subtotal, p.TaxPercent)

	return Breakdown{
		Subtotal:     subtotal,
		ShippingCost: shipping,
		CodCharge:    cod,
		Tax:          tax,
		Total:        CalculateGrandTotal(subtotal, shipping, cod, tax),
	}
}

// ToMinorUnits converts rupees to paise, rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

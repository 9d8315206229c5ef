package calc

import (
	"testing"

	"github.com/Rakhulsr/kidstore/app/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestShippingBoundary(t *testing.T) {
	rules := DefaultPricingRules()
	tests := []struct {
		subtotal string
		shipping string
	}{
		{"998", "60"},
		{"998.99", "60"},
		{"999", "0"},
		{"1000", "0"},
		{"0", "60"},
	}
	for _, test := range tests {
		t.Run(test.subtotal, func(t *testing.T) {
			got := rules.ShippingCost(dec(test.subtotal))
			require.True(t, dec(test.shipping).Equal(got), "got %s", got)
		})
	}
}

func TestQuoteIsAdditive(t *testing.T) {
	rules := DefaultPricingRules()
	subtotals := []string{"0.01", "12.34", "499.99", "998", "999", "1200", "45678.91"}
	for _, s := range subtotals {
		for _, method := range []models.PaymentMethod{models.PaymentMethodCOD, models.PaymentMethodPrepaid} {
			b := rules.Quote(dec(s), method)
			sum := b.Subtotal.Add(b.ShippingCost).Add(b.CodCharge).Add(b.Tax)
			require.True(t, sum.Equal(b.Total), "%s %s: %s != %s", s, method, sum, b.Total)
			require.True(t, b.Total.Equal(b.Total.Round(2)))
		}
	}
}

func TestQuoteCODScenario(t *testing.T) {
	b := DefaultPricingRules().Quote(dec("1200"), models.PaymentMethodCOD)

	require.True(t, b.ShippingCost.IsZero())
	require.True(t, dec("50").Equal(b.CodCharge))
	require.True(t, dec("216").Equal(b.Tax))
	require.True(t, dec("1466").Equal(b.Total))
}

func TestQuotePrepaidHasNoCODCharge(t *testing.T) {
	b := DefaultPricingRules().Quote(dec("500"), models.PaymentMethodPrepaid)

	require.True(t, b.CodCharge.IsZero())
	require.True(t, dec("60").Equal(b.ShippingCost))
	require.True(t, dec("90").Equal(b.Tax))
	require.True(t, dec("650").Equal(b.Total))
}

func TestZeroTaxPolicy(t *testing.T) {
	rules := DefaultPricingRules()
	rules.TaxPercent = decimal.Zero

	b := rules.Quote(dec("1200"), models.PaymentMethodPrepaid)
	require.True(t, b.Tax.IsZero())
	require.True(t, dec("1200").Equal(b.Total))
}

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		amount string
		paise  int64
	}{
		{"1466", 146600},
		{"10.005", 1001},
		{"0.994", 99},
		{"59.99", 5999},
	}
	for _, test := range tests {
		require.Equal(t, test.paise, ToMinorUnits(dec(test.amount)), test.amount)
	}
}

func TestDiscountPercent(t *testing.T) {
	require.True(t, dec("25").Equal(DiscountPercent(dec("750"), dec("1000"))))
	require.True(t, DiscountPercent(dec("1000"), dec("1000")).IsZero())
	require.True(t, DiscountPercent(dec("1000"), dec("900")).IsZero())
}

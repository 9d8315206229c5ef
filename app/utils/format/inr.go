package format

import (
	"github.com/leekchan/accounting"
	"github.com/shopspring/decimal"
)

var inr = accounting.Accounting{Symbol: "₹", Precision: 2, Thousand: ",", Decimal: "."}

// FormatINR renders an amount as rupees, e.g. ₹1,466.00. Unsupported values
// render as ₹0.00.
func FormatINR(amount interface{}) string {
	var d decimal.Decimal
	switch v := amount.(type) {
	case decimal.Decimal:
		d = v
	case decimal.NullDecimal:
		if v.Valid {
			d = v.Decimal
		}
	case float64:
		d = decimal.NewFromFloat(v)
	case int:
		d = decimal.NewFromInt(int64(v))
	case int64:
		d = decimal.NewFromInt(v)
	case string:
		parsed, err := decimal.NewFromString(v)
		if err == nil {
			d = parsed
		}
	}
	return inr.FormatMoneyFloat64(d.Round(2).InexactFloat64())
}

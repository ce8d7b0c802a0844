package storefront

import (
	"github.com/shopspring/decimal"
)

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

// sumLines totals line amounts in the first line's currency.
func sumLines(lines []CartLine) Money {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal.Decimal())
	}
	return Money{Amount: total.StringFixed(2), CurrencyCode: lines[0].LineTotal.CurrencyCode}
}

package models

import "github.com/shopspring/decimal"

func init() {
	// Tutarlar JSON'da string değil sayı olarak görünsün
	decimal.MarshalJSONWithoutQuotes = true
}

// SumAmounts adds up a list of money values.
func SumAmounts(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

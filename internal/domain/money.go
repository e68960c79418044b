package domain

import "github.com/shopspring/decimal"

func init() {
	// Prices travel as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// RoundMoney rounds a monetary amount to pence for presentation
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

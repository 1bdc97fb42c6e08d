package domain

import "github.com/shopspring/decimal"

func init() {
	// prices go over the wire as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

// MaxMoney is the first amount a NUMERIC(10,2) column cannot hold.
var MaxMoney = decimal.New(1, 8)

// Money rounds to the two decimal places every store keeps.
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// InMoneyRange reports whether d fits a NUMERIC(10,2) column once rounded.
func InMoneyRange(d decimal.Decimal) bool {
	return !d.IsNegative() && Money(d).LessThan(MaxMoney)
}

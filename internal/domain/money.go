package domain

import "github.com/shopspring/decimal"

// Round2 rounds a monetary value to two decimal places. Every amount must
// pass through Round2 before it is compared, accumulated, or persisted.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ClampNonNegative floors a monetary value at zero. Outstanding amounts are
// never allowed to go negative.
func ClampNonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

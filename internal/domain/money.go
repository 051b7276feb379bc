package domain

import "github.com/shopspring/decimal"

// Monetary values are exact base-10 fixed-point numbers with 2 fraction
// digits. Catalog prices are stored at 2 decimals, so sums of line totals
// need no re-rounding; only rate multiplications (tax, percentage promos)
// produce extra digits and must pass through Round2 before further addition.

// Round2 rounds a monetary value to exactly 2 fractional digits, half away
// from zero. All amounts in this system are non-negative, so this is
// round-half-up (e.g. 2.005 → 2.01).
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Money parses a decimal literal, panicking on malformed input. Intended for
// constants and seed data, not user input.
func Money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wjkaliman/bookstore/internal/domain"
)

// Storefront pricing constants.
var (
	// TaxRate is applied to the discounted subtotal plus shipping. Charging
	// tax on the shipping fee is deliberate policy.
	TaxRate = domain.Money("0.0825")

	// ShippingFlat is the flat shipping fee below the free-shipping minimum.
	ShippingFlat = domain.Money("4.99")

	// FreeShippingMin waives shipping for discounted subtotals at or above it.
	FreeShippingMin = domain.Money("25.00")
)

// Promo rule kinds. The set is closed: evaluation is one exhaustive switch,
// not an open hierarchy, so every rule's semantics stay auditable in one
// place.
const (
	PromoPercent      = "percent"
	PromoPercentOver  = "percent_over"
	PromoFreeShipping = "freeship"
)

// FreeShippingCode is the code whose rule waives the shipping fee.
const FreeShippingCode = "FREESHIP"

// PromoRule is a tagged variant: Kind selects which fields apply.
type PromoRule struct {
	Kind      string
	Rate      decimal.Decimal // percent, percent_over
	Threshold decimal.Decimal // percent_over
}

// promos maps normalized codes to rules.
var promos = map[string]PromoRule{
	"SAVE10":         {Kind: PromoPercent, Rate: domain.Money("0.10")},
	"READMORE15":     {Kind: PromoPercentOver, Rate: domain.Money("0.15"), Threshold: domain.Money("25.00")},
	FreeShippingCode: {Kind: PromoFreeShipping},
}

// Shopper-facing promo messages.
const msgInvalidCode = "Invalid code"

// NormalizeCode uppercases a promo code and strips surrounding whitespace.
// Matching is never case-sensitive.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// EvaluatePromo evaluates a promo code against a subtotal, returning the
// discount and a shopper-facing message. Exactly one of the two is ever
// meaningful: a non-zero discount comes with no message, and a message means
// the discount is zero. An empty code yields zero discount and no message.
//
// The discount is not clamped to the subtotal; every defined rule keeps
// discount ≤ subtotal, but a hypothetical rate above 1.0 would push the
// total negative.
func EvaluatePromo(subtotal decimal.Decimal, code string) (decimal.Decimal, string) {
	if strings.TrimSpace(code) == "" {
		return decimal.Zero, ""
	}

	rule, ok := promos[NormalizeCode(code)]
	if !ok {
		return decimal.Zero, msgInvalidCode
	}

	switch rule.Kind {
	case PromoPercent:
		return domain.Round2(subtotal.Mul(rule.Rate)), ""
	case PromoPercentOver:
		if subtotal.GreaterThanOrEqual(rule.Threshold) {
			return domain.Round2(subtotal.Mul(rule.Rate)), ""
		}
		return decimal.Zero, "Code applies to orders ≥ $" + rule.Threshold.StringFixed(2)
	case PromoFreeShipping:
		// The waiver is a shipping rule, not a discount.
		return decimal.Zero, ""
	}

	return decimal.Zero, msgInvalidCode
}

// ShippingCost returns the shipping fee for the given discount-adjusted
// amount: zero when the free-shipping code is applied or the amount reaches
// the free-shipping minimum, otherwise the flat fee.
func ShippingCost(amount decimal.Decimal, code string) decimal.Decimal {
	if NormalizeCode(code) == FreeShippingCode {
		return decimal.Zero
	}
	if amount.GreaterThanOrEqual(FreeShippingMin) {
		return decimal.Zero
	}
	return ShippingFlat
}

// Package pricing converts a cart snapshot into a priced order breakdown.
// It is pure: given the same cart, catalog, and promo code it always produces
// the same quote and never touches session or storage state.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wjkaliman/bookstore/internal/domain"
	apperrors "github.com/wjkaliman/bookstore/pkg/errors"
)

// Catalog resolves a book by slug. Implemented by the postgres book
// repository; tests substitute a map-backed fake.
type Catalog interface {
	GetBySlug(ctx context.Context, slug string) (*domain.Book, error)
}

// Line is one resolved cart line with its snapshot of the catalog entry.
type Line struct {
	Book      domain.Book     `json:"book"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Quote is a priced cart: the resolved lines and the money breakdown.
type Quote struct {
	Lines     []Line                `json:"lines"`
	Breakdown domain.PriceBreakdown `json:"breakdown"`
}

// Price resolves the cart against the catalog and computes the full
// breakdown. Lines whose slug no longer resolves are dropped silently, so a
// stale cart referencing a removed book still prices cleanly. Shipping is
// evaluated on the post-discount amount, and tax applies to shipping as well.
func Price(ctx context.Context, cart *domain.Cart, catalog Catalog, promoCode string) (*Quote, error) {
	lines := make([]Line, 0, len(cart.Items))
	subtotal := decimal.Zero

	for _, slug := range cart.Slugs() {
		qty := cart.Items[slug]
		if qty <= 0 {
			continue
		}

		book, err := catalog.GetBySlug(ctx, slug)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("resolve cart line %q: %w", slug, err)
		}

		// Unit prices are stored at 2 decimals; the products need no rounding.
		lineTotal := book.Price.Mul(decimal.NewFromInt(int64(qty)))
		subtotal = subtotal.Add(lineTotal)
		lines = append(lines, Line{Book: *book, Quantity: qty, LineTotal: lineTotal})
	}

	discount, promoMsg := EvaluatePromo(subtotal, promoCode)
	shipping := ShippingCost(subtotal.Sub(discount), promoCode)
	tax := domain.Round2(subtotal.Sub(discount).Add(shipping).Mul(TaxRate))
	total := domain.Round2(subtotal.Sub(discount).Add(shipping).Add(tax))

	return &Quote{
		Lines: lines,
		Breakdown: domain.PriceBreakdown{
			Subtotal:     subtotal,
			Discount:     discount,
			Shipping:     shipping,
			Tax:          tax,
			Total:        total,
			PromoCode:    strings.TrimSpace(promoCode),
			PromoMessage: promoMsg,
		},
	}, nil
}

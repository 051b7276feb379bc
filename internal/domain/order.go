package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceBreakdown is the ephemeral result of pricing a cart. All amounts are
// at 2-decimal precision; Total == Subtotal − Discount + Shipping + Tax.
type PriceBreakdown struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	Discount     decimal.Decimal `json:"discount"`
	Shipping     decimal.Decimal `json:"shipping"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
	PromoCode    string          `json:"promo_code,omitempty"`
	PromoMessage string          `json:"promo_message,omitempty"`
}

// Order is the immutable record written at checkout. It is never mutated or
// deleted after creation; the line items snapshot catalog data at purchase
// time so later catalog edits cannot alter historical orders.
type Order struct {
	ID        string          `json:"id"`
	PublicID  string          `json:"public_id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Discount  decimal.Decimal `json:"discount"`
	Shipping  decimal.Decimal `json:"shipping"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	PromoCode string          `json:"promo_code,omitempty"`
	Items     []OrderItem     `json:"items"`
	CreatedAt time.Time       `json:"created_at"`
}

// OrderItem is one purchased line, owned by exactly one order. Title and
// unit price are copies taken at checkout time, deliberately decoupled from
// the books table.
type OrderItem struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// LineTotal returns unit price × quantity for this line. Unit prices are
// already at 2 decimals, so no rounding is needed.
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

package domain

import (
	"sort"
	"time"
)

// Cart is the session-held cart snapshot: book slug → requested quantity,
// plus the promo code the shopper applied. The session layer owns storage;
// the pricing core only ever receives a snapshot and never reaches back into
// session state.
type Cart struct {
	SessionID string         `json:"session_id"`
	Items     map[string]int `json:"items"`
	PromoCode string         `json:"promo_code,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewCart creates an empty cart for the given session.
func NewCart(sessionID string) *Cart {
	return &Cart{
		SessionID: sessionID,
		Items:     make(map[string]int),
	}
}

// SetQuantity sets the quantity for a slug. A quantity of zero or less
// removes the line; setting an existing slug overwrites its quantity.
func (c *Cart) SetQuantity(slug string, qty int) {
	if c.Items == nil {
		c.Items = make(map[string]int)
	}
	if qty <= 0 {
		delete(c.Items, slug)
		return
	}
	c.Items[slug] = qty
}

// Add increments the quantity for a slug by one.
func (c *Cart) Add(slug string) {
	if c.Items == nil {
		c.Items = make(map[string]int)
	}
	c.Items[slug]++
}

// Remove deletes the line for a slug, if present.
func (c *Cart) Remove(slug string) {
	delete(c.Items, slug)
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Slugs returns the cart's slugs in stable (sorted) order for deterministic
// pricing and display.
func (c *Cart) Slugs() []string {
	slugs := make([]string, 0, len(c.Items))
	for slug := range c.Items {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Book categories, in storefront display order.
const (
	CategoryFiction    = "Fiction"
	CategoryNonFiction = "Non-Fiction"
	CategoryChildrens  = "Children's"
)

// Categories returns all valid book categories in display order.
func Categories() []string {
	return []string{CategoryFiction, CategoryNonFiction, CategoryChildrens}
}

// IsValidCategory checks whether the given category is one of the fixed set.
func IsValidCategory(category string) bool {
	for _, c := range Categories() {
		if c == category {
			return true
		}
	}
	return false
}

// CanonicalCategory resolves a category name case-insensitively to its
// canonical form. Returns false when the name matches no category.
func CanonicalCategory(category string) (string, bool) {
	for _, c := range Categories() {
		if strings.EqualFold(c, category) {
			return c, true
		}
	}
	return "", false
}

// Book is a catalog entry. The cart and orders reference books by slug.
type Book struct {
	ID        string          `json:"id"`
	Slug      string          `json:"slug"`
	Title     string          `json:"title"`
	Author    string          `json:"author"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

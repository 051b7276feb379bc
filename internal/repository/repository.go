package repository

import (
	"context"

	"github.com/wjkaliman/bookstore/internal/domain"
)

// BookFilter defines filter criteria for listing catalog books.
type BookFilter struct {
	Category *string
	Search   *string
	Page     int
	PerPage  int
}

// BookRepository defines catalog persistence operations.
type BookRepository interface {
	// Create inserts a new book. Returns an already-exists error when the
	// slug is taken.
	Create(ctx context.Context, book *domain.Book) error

	// GetByID retrieves a book by its internal identifier.
	GetByID(ctx context.Context, id string) (*domain.Book, error)

	// GetBySlug retrieves a book by its slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Book, error)

	// List returns books matching the filter, ordered by category then
	// title, along with the total count.
	List(ctx context.Context, filter BookFilter) ([]domain.Book, int, error)

	// Update overwrites a book's mutable fields.
	Update(ctx context.Context, book *domain.Book) error

	// Delete removes a book from the catalog.
	Delete(ctx context.Context, id string) error

	// Count returns the number of books in the catalog.
	Count(ctx context.Context) (int, error)
}

// OrderRepository defines order persistence operations. Orders are immutable
// once created.
type OrderRepository interface {
	// Create inserts an order and all its line items atomically. Returns an
	// already-exists error when the public ID collides, so the caller can
	// regenerate and retry.
	Create(ctx context.Context, order *domain.Order) error

	// GetByPublicID retrieves an order and its line items by the shareable
	// public identifier.
	GetByPublicID(ctx context.Context, publicID string) (*domain.Order, error)
}

// CartStore defines the session cart snapshot store. The pricing core treats
// the snapshot as opaque caller-supplied state; only the session layer writes
// it back.
type CartStore interface {
	// Get retrieves the cart for a session. Returns a not-found error when
	// the session has no cart yet.
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)

	// Save persists a cart snapshot, overwriting any existing one.
	Save(ctx context.Context, cart *domain.Cart) error

	// Clear removes the cart for a session.
	Clear(ctx context.Context, sessionID string) error
}

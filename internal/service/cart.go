package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/wjkaliman/bookstore/internal/domain"
	"github.com/wjkaliman/bookstore/internal/pricing"
	"github.com/wjkaliman/bookstore/internal/repository"
	apperrors "github.com/wjkaliman/bookstore/pkg/errors"
)

// CartService implements the business logic for session cart operations.
// The cart itself is a snapshot in the session store; pricing is recomputed
// from the catalog on every view, so totals always reflect current prices.
type CartService struct {
	store  repository.CartStore
	books  repository.BookRepository
	logger *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(store repository.CartStore, books repository.BookRepository, logger *slog.Logger) *CartService {
	return &CartService{
		store:  store,
		books:  books,
		logger: logger,
	}
}

// getOrCreate loads the session's cart, starting a fresh one when the
// session has none yet.
func (s *CartService) getOrCreate(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.NewCart(sessionID), nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

// GetQuote prices the session's cart against the current catalog.
func (s *CartService) GetQuote(ctx context.Context, sessionID string) (*pricing.Quote, error) {
	cart, err := s.getOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	quote, err := pricing.Price(ctx, cart, s.books, cart.PromoCode)
	if err != nil {
		return nil, fmt.Errorf("price cart: %w", err)
	}

	return quote, nil
}

// AddItem increments the quantity for a book slug by one. The slug must
// resolve to a catalog book at add time.
func (s *CartService) AddItem(ctx context.Context, sessionID, slug string) (*pricing.Quote, error) {
	book, err := s.books.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("book", slug)
		}
		return nil, fmt.Errorf("resolve book: %w", err)
	}

	cart, err := s.getOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cart.Add(book.Slug)
	cart.UpdatedAt = time.Now().UTC()

	if err := s.store.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	s.logger.DebugContext(ctx, "cart item added",
		slog.String("session_id", sessionID),
		slog.String("slug", book.Slug),
		slog.Int("quantity", cart.Items[book.Slug]),
	)

	quote, err := pricing.Price(ctx, cart, s.books, cart.PromoCode)
	if err != nil {
		return nil, fmt.Errorf("price cart: %w", err)
	}
	return quote, nil
}

// UpdateItems replaces the cart's lines with the given slug to quantity
// mapping. Zero and negative quantities drop the line. Slugs that do not
// resolve are kept; pricing skips them until the book reappears.
func (s *CartService) UpdateItems(ctx context.Context, sessionID string, items map[string]int) (*pricing.Quote, error) {
	cart, err := s.getOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cart.Items = make(map[string]int, len(items))
	for slug, qty := range items {
		cart.SetQuantity(slug, qty)
	}
	cart.UpdatedAt = time.Now().UTC()

	if err := s.store.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	s.logger.DebugContext(ctx, "cart updated",
		slog.String("session_id", sessionID),
		slog.Int("lines", len(cart.Items)),
	)

	quote, err := pricing.Price(ctx, cart, s.books, cart.PromoCode)
	if err != nil {
		return nil, fmt.Errorf("price cart: %w", err)
	}
	return quote, nil
}

// RemoveItem drops the line for a slug, if present.
func (s *CartService) RemoveItem(ctx context.Context, sessionID, slug string) (*pricing.Quote, error) {
	cart, err := s.getOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cart.Remove(slug)
	cart.UpdatedAt = time.Now().UTC()

	if err := s.store.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	quote, err := pricing.Price(ctx, cart, s.books, cart.PromoCode)
	if err != nil {
		return nil, fmt.Errorf("price cart: %w", err)
	}
	return quote, nil
}

// ApplyPromo stores a promo code on the cart as entered, trimmed. Unknown
// codes are stored too; the quote carries the "Invalid code" message and a
// zero discount until the shopper replaces or clears the code. A blank code
// clears it.
func (s *CartService) ApplyPromo(ctx context.Context, sessionID, code string) (*pricing.Quote, error) {
	cart, err := s.getOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cart.PromoCode = strings.TrimSpace(code)
	cart.UpdatedAt = time.Now().UTC()

	if err := s.store.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	s.logger.DebugContext(ctx, "promo code applied",
		slog.String("session_id", sessionID),
		slog.String("code", cart.PromoCode),
	)

	quote, err := pricing.Price(ctx, cart, s.books, cart.PromoCode)
	if err != nil {
		return nil, fmt.Errorf("price cart: %w", err)
	}
	return quote, nil
}

// ClearPromo removes the promo code from the cart.
func (s *CartService) ClearPromo(ctx context.Context, sessionID string) (*pricing.Quote, error) {
	return s.ApplyPromo(ctx, sessionID, "")
}

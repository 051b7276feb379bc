package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wjkaliman/bookstore/internal/domain"
	"github.com/wjkaliman/bookstore/internal/event"
	"github.com/wjkaliman/bookstore/internal/pricing"
	"github.com/wjkaliman/bookstore/internal/repository"
	apperrors "github.com/wjkaliman/bookstore/pkg/errors"
)

// publicIDAttempts bounds retries when a generated public order ID collides
// with an existing order.
const publicIDAttempts = 5

// CheckoutService turns a session's cart into a persisted order. Checkouts
// for the same session are serialized so a double submit cannot produce two
// orders from one cart.
type CheckoutService struct {
	orders   repository.OrderRepository
	store    repository.CartStore
	books    repository.BookRepository
	producer *event.Producer
	logger   *slog.Logger

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	orders repository.OrderRepository,
	store repository.CartStore,
	books repository.BookRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		orders:   orders,
		store:    store,
		books:    books,
		producer: producer,
		logger:   logger,
		locks:    make(map[string]*sessionLock),
	}
}

// lockSession acquires the per-session checkout lock and returns its
// release func.
func (s *CheckoutService) lockSession(sessionID string) func() {
	s.mu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		s.locks[sessionID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, sessionID)
		}
		s.mu.Unlock()
	}
}

// CheckoutInput holds the shopper details submitted with a checkout.
type CheckoutInput struct {
	Name  string
	Email string
}

// Checkout reprices the session's cart, persists the order atomically, and
// clears the cart. The price breakdown is recomputed from the catalog at
// checkout time; any quote the shopper saw earlier is advisory only.
func (s *CheckoutService) Checkout(ctx context.Context, sessionID string, input CheckoutInput) (*domain.Order, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	if name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}

	release := s.lockSession(sessionID)
	defer release()

	cart, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidInput("cart is empty")
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	quote, err := pricing.Price(ctx, cart, s.books, cart.PromoCode)
	if err != nil {
		return nil, fmt.Errorf("price cart: %w", err)
	}
	if len(quote.Lines) == 0 {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	now := time.Now().UTC()
	orderID := uuid.New().String()

	items := make([]domain.OrderItem, len(quote.Lines))
	for i, line := range quote.Lines {
		items[i] = domain.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			Title:     line.Book.Title,
			UnitPrice: line.Book.Price,
			Quantity:  line.Quantity,
		}
	}

	order := &domain.Order{
		ID:        orderID,
		Name:      name,
		Email:     email,
		Subtotal:  quote.Breakdown.Subtotal,
		Discount:  quote.Breakdown.Discount,
		Shipping:  quote.Breakdown.Shipping,
		Tax:       quote.Breakdown.Tax,
		Total:     quote.Breakdown.Total,
		PromoCode: quote.Breakdown.PromoCode,
		Items:     items,
		CreatedAt: now,
	}

	// The public ID is short, so collisions are rare but possible. Retry
	// with a fresh ID when the insert hits the unique constraint.
	for attempt := 0; attempt < publicIDAttempts; attempt++ {
		order.PublicID = newPublicOrderID()

		err = s.orders.Create(ctx, order)
		if err == nil {
			break
		}
		if !errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, fmt.Errorf("create order: %w", err)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.store.Clear(ctx, sessionID); err != nil {
		// The order is already committed. Log and continue rather than
		// failing a successful checkout.
		s.logger.ErrorContext(ctx, "failed to clear cart after checkout",
			slog.String("session_id", sessionID),
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.String("public_id", order.PublicID),
		slog.String("total", order.Total.StringFixed(2)),
	)

	return order, nil
}

// GetOrder retrieves an order by its public identifier.
func (s *CheckoutService) GetOrder(ctx context.Context, publicID string) (*domain.Order, error) {
	order, err := s.orders.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, fmt.Errorf("get order by public id: %w", err)
	}
	return order, nil
}

// newPublicOrderID returns a short, shareable order identifier: the first
// eight hex characters of a random UUID, uppercased.
func newPublicOrderID() string {
	return strings.ToUpper(uuid.New().String()[:8])
}

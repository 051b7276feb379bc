package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wjkaliman/bookstore/internal/domain"
	"github.com/wjkaliman/bookstore/internal/event"
	"github.com/wjkaliman/bookstore/internal/repository"
	"github.com/wjkaliman/bookstore/internal/service"
	apperrors "github.com/wjkaliman/bookstore/pkg/errors"
	"github.com/wjkaliman/bookstore/pkg/httputil"
	pkgkafka "github.com/wjkaliman/bookstore/pkg/kafka"
	"github.com/wjkaliman/bookstore/pkg/middleware"
)

const testAdminToken = "test-admin-token"

// --- Mock BookRepository ---

type mockBookRepository struct {
	mock.Mock
}

func (m *mockBookRepository) Create(ctx context.Context, book *domain.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *mockBookRepository) GetByID(ctx context.Context, id string) (*domain.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}

func (m *mockBookRepository) GetBySlug(ctx context.Context, slug string) (*domain.Book, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}

func (m *mockBookRepository) List(ctx context.Context, filter repository.BookFilter) ([]domain.Book, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Book), args.Int(1), args.Error(2)
}

func (m *mockBookRepository) Update(ctx context.Context, book *domain.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *mockBookRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockBookRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// --- Mock OrderRepository ---

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRepository) GetByPublicID(ctx context.Context, publicID string) (*domain.Order, error) {
	args := m.Called(ctx, publicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

// --- In-memory CartStore ---

// memCartStore keeps carts in a map so handler tests can exercise full
// request flows without Redis.
type memCartStore struct {
	mu    sync.Mutex
	carts map[string]*domain.Cart
}

func newMemCartStore() *memCartStore {
	return &memCartStore{carts: make(map[string]*domain.Cart)}
}

func (s *memCartStore) Get(_ context.Context, sessionID string) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.carts[sessionID]
	if !ok {
		return nil, apperrors.NotFound("cart", sessionID)
	}
	copied := *cart
	return &copied, nil
}

func (s *memCartStore) Save(_ context.Context, cart *domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *cart
	s.carts[cart.SessionID] = &copied
	return nil
}

func (s *memCartStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	return nil
}

// --- Test Helpers ---

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testEventProducer() *event.Producer {
	logger := testLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:19092"})
	kafkaProducer := pkgkafka.NewProducer(kafkaCfg, logger)
	return event.NewProducer(kafkaProducer, logger)
}

// testServices wires the handler under test to a mock catalog, a mock order
// repository, and an in-memory cart store.
type testServices struct {
	books  *mockBookRepository
	orders *mockOrderRepository
	carts  *memCartStore
}

func newTestServices() *testServices {
	return &testServices{
		books:  new(mockBookRepository),
		orders: new(mockOrderRepository),
		carts:  newMemCartStore(),
	}
}

// setupRouter creates a chi router matching the production route layout.
func setupRouter(ts *testServices) *chi.Mux {
	logger := testLogger()
	producer := testEventProducer()

	catalogService := service.NewCatalogService(ts.books, producer, logger)
	cartService := service.NewCartService(ts.carts, ts.books, logger)
	checkoutService := service.NewCheckoutService(ts.orders, ts.carts, ts.books, producer, logger)

	catalogHandler := NewCatalogHandler(catalogService, logger)
	cartHandler := NewCartHandler(cartService, logger)
	checkoutHandler := NewCheckoutHandler(checkoutService, logger)
	adminHandler := NewAdminHandler(catalogService, logger)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/featured", catalogHandler.Featured)
			r.Get("/categories", catalogHandler.Categories)
			r.Get("/categories/{category}", catalogHandler.ListByCategory)
			r.Get("/search", catalogHandler.Search)
			r.Get("/books/{slug}", catalogHandler.GetBook)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(SessionIDFromHeader)

			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items", cartHandler.UpdateItems)
			r.Delete("/items/{slug}", cartHandler.RemoveItem)
			r.Put("/promo", cartHandler.ApplyPromo)
			r.Delete("/promo", cartHandler.ClearPromo)
		})

		r.With(SessionIDFromHeader).Post("/checkout", checkoutHandler.Checkout)
		r.Get("/orders/{publicID}", checkoutHandler.GetOrder)

		r.Route("/admin/books", func(r chi.Router) {
			r.Use(middleware.AdminToken(testAdminToken))

			r.Get("/", adminHandler.ListBooks)
			r.Post("/", adminHandler.CreateBook)
			r.Put("/{id}", adminHandler.UpdateBook)
			r.Delete("/{id}", adminHandler.DeleteBook)
		})
	})
	return r
}

// decodeResponse reads the response body into the httputil.Response struct.
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}

// testBook returns a realistic catalog book for use in test expectations.
func testBook(slug, title, category, price string) *domain.Book {
	now := time.Now().UTC()
	return &domain.Book{
		ID:        "550e8400-e29b-41d4-a716-446655440001",
		Slug:      slug,
		Title:     title,
		Author:    "Test Author",
		Category:  category,
		Price:     domain.Money(price),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

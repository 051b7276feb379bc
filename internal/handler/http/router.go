package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wjkaliman/bookstore/internal/service"
	"github.com/wjkaliman/bookstore/pkg/health"
	"github.com/wjkaliman/bookstore/pkg/middleware"
)

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	catalogService *service.CatalogService,
	cartService *service.CartService,
	checkoutService *service.CheckoutService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	adminToken string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("bookstore"))
	r.Use(middleware.Tracing("bookstore"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	catalogHandler := NewCatalogHandler(catalogService, logger)
	cartHandler := NewCartHandler(cartService, logger)
	checkoutHandler := NewCheckoutHandler(checkoutService, logger)
	adminHandler := NewAdminHandler(catalogService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Storefront catalog
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/featured", catalogHandler.Featured)
			r.Get("/categories", catalogHandler.Categories)
			r.Get("/categories/{category}", catalogHandler.ListByCategory)
			r.Get("/search", catalogHandler.Search)
			r.Get("/books/{slug}", catalogHandler.GetBook)
		})

		// Session cart
		r.Route("/cart", func(r chi.Router) {
			r.Use(SessionIDFromHeader)

			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items", cartHandler.UpdateItems)
			r.Delete("/items/{slug}", cartHandler.RemoveItem)
			r.Put("/promo", cartHandler.ApplyPromo)
			r.Delete("/promo", cartHandler.ClearPromo)
		})

		// Checkout and receipts
		r.With(SessionIDFromHeader).Post("/checkout", checkoutHandler.Checkout)
		r.Get("/orders/{publicID}", checkoutHandler.GetOrder)

		// Catalog administration
		r.Route("/admin/books", func(r chi.Router) {
			r.Use(middleware.AdminToken(adminToken))

			r.Get("/", adminHandler.ListBooks)
			r.Post("/", adminHandler.CreateBook)
			r.Put("/{id}", adminHandler.UpdateBook)
			r.Delete("/{id}", adminHandler.DeleteBook)
		})
	})

	return r
}

package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/wjkaliman/bookstore/internal/repository"
	"github.com/wjkaliman/bookstore/internal/service"
	"github.com/wjkaliman/bookstore/pkg/httputil"
	"github.com/wjkaliman/bookstore/pkg/validator"
)

// AdminHandler handles HTTP requests for catalog administration.
type AdminHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(svc *service.CatalogService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateBookRequest is the JSON request body for adding a book.
type CreateBookRequest struct {
	Title    string          `json:"title" validate:"required,min=1,max=200"`
	Author   string          `json:"author" validate:"required,min=1,max=120"`
	Category string          `json:"category" validate:"required"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image" validate:"max=200"`
}

// UpdateBookRequest is the JSON request body for editing a book. Omitted
// fields are left unchanged.
type UpdateBookRequest struct {
	Title    *string          `json:"title" validate:"omitempty,min=1,max=200"`
	Author   *string          `json:"author" validate:"omitempty,min=1,max=120"`
	Category *string          `json:"category"`
	Price    *decimal.Decimal `json:"price"`
	Image    *string          `json:"image" validate:"omitempty,max=200"`
}

// --- Handlers ---

// ListBooks handles GET /api/v1/admin/books
func (h *AdminHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	filter := repository.BookFilter{
		Page:    1,
		PerPage: 20,
	}

	if v := r.URL.Query().Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "page must be a valid positive integer"},
			})
			return
		}
		filter.Page = page
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		perPage, err := strconv.Atoi(v)
		if err != nil || perPage < 1 || perPage > 100 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "per_page must be a valid integer between 1 and 100"},
			})
			return
		}
		filter.PerPage = perPage
	}
	if v := r.URL.Query().Get("category"); v != "" {
		filter.Category = &v
	}
	if v := r.URL.Query().Get("search"); v != "" {
		filter.Search = &v
	}

	books, total, err := h.service.ListBooks(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(books, total, filter.Page, filter.PerPage))
}

// CreateBook handles POST /api/v1/admin/books
func (h *AdminHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	book, err := h.service.CreateBook(r.Context(), service.CreateBookInput{
		Title:    req.Title,
		Author:   req.Author,
		Category: req.Category,
		Price:    req.Price,
		Image:    req.Image,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: book})
}

// UpdateBook handles PUT /api/v1/admin/books/{id}
func (h *AdminHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	book, err := h.service.UpdateBook(r.Context(), chi.URLParam(r, "id"), service.UpdateBookInput{
		Title:    req.Title,
		Author:   req.Author,
		Category: req.Category,
		Price:    req.Price,
		Image:    req.Image,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: book})
}

// DeleteBook handles DELETE /api/v1/admin/books/{id}
func (h *AdminHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteBook(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

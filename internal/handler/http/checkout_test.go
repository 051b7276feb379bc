package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wjkaliman/bookstore/internal/domain"
	apperrors "github.com/wjkaliman/bookstore/pkg/errors"
)

func validCheckoutJSON() []byte {
	return []byte(`{"name":"Jane Reader","email":"jane@example.com"}`)
}

// ============================================================================
// POST /api/v1/checkout
// ============================================================================

func TestCheckout_Success(t *testing.T) {
	ts := newTestServices()
	router := setupRouter(ts)
	seedCart(t, ts, map[string]int{"sapiens": 2}, "")

	ts.books.On("GetBySlug", mock.Anything, "sapiens").
		Return(testBook("sapiens", "Sapiens", "Non-Fiction", "9.99"), nil)
	ts.orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(validCheckoutJSON()))
	req.Header.Set("X-Session-ID", testSessionID)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Jane Reader", data["name"])
	assert.Equal(t, "jane@example.com", data["email"])
	assert.Equal(t, "19.98", data["subtotal"])
	assert.Equal(t, "4.99", data["shipping"])
	assert.Equal(t, "2.06", data["tax"])
	assert.Equal(t, "27.03", data["total"])

	publicID, ok := data["public_id"].(string)
	require.True(t, ok)
	assert.Len(t, publicID, 8)

	// The cart is cleared once the order is committed.
	_, err := ts.carts.Get(context.Background(), testSessionID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	ts.orders.AssertExpectations(t)
}

func TestCheckout_MissingSessionHeader(t *testing.T) {
	ts := newTestServices()
	router := setupRouter(ts)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(validCheckoutJSON()))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
}

func TestCheckout_EmptyCart(t *testing.T) {
	ts := newTestServices()
	router := setupRouter(ts)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(validCheckoutJSON()))
	req.Header.Set("X-Session-ID", testSessionID)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)

	ts.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCheckout_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"email":"jane@example.com"}`},
		{"missing email", `{"name":"Jane Reader"}`},
		{"malformed email", `{"name":"Jane Reader","email":"not-an-email"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServices()
			router := setupRouter(ts)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader([]byte(tt.body)))
			req.Header.Set("X-Session-ID", testSessionID)
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeResponse(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)

			ts.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

// ============================================================================
// GET /api/v1/orders/{publicID}
// ============================================================================

func TestGetOrder_Success(t *testing.T) {
	ts := newTestServices()
	router := setupRouter(ts)

	order := &domain.Order{
		ID:       "550e8400-e29b-41d4-a716-446655440030",
		PublicID: "A1B2C3D4",
		Name:     "Jane Reader",
		Email:    "jane@example.com",
		Subtotal: domain.Money("19.98"),
		Shipping: domain.Money("4.99"),
		Tax:      domain.Money("2.06"),
		Total:    domain.Money("27.03"),
		Items: []domain.OrderItem{
			{
				ID:        "550e8400-e29b-41d4-a716-446655440031",
				OrderID:   "550e8400-e29b-41d4-a716-446655440030",
				Title:     "Sapiens",
				UnitPrice: domain.Money("9.99"),
				Quantity:  2,
			},
		},
		CreatedAt: time.Now().UTC(),
	}
	ts.orders.On("GetByPublicID", mock.Anything, "A1B2C3D4").Return(order, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/A1B2C3D4", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "A1B2C3D4", data["public_id"])

	items, ok := data["items"].([]interface{})
	require.True(t, ok)
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "Sapiens", item["title"])
	assert.Equal(t, float64(2), item["quantity"])
}

func TestGetOrder_NotFound(t *testing.T) {
	ts := newTestServices()
	router := setupRouter(ts)

	ts.orders.On("GetByPublicID", mock.Anything, "ZZZZZZZZ").
		Return(nil, apperrors.NotFound("order", "ZZZZZZZZ"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/ZZZZZZZZ", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wjkaliman/bookstore/internal/domain"
	"github.com/wjkaliman/bookstore/pkg/database"
	apperrors "github.com/wjkaliman/bookstore/pkg/errors"
)

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts a new order and its items atomically within a transaction.
// Returns an already-exists error when the public ID collides with an
// existing order, so the caller can regenerate the ID and retry.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	ctx, done := database.TraceQuery(ctx, "orders.create", "INSERT INTO orders")
	err := r.create(ctx, o)
	done(err)
	return err
}

func (r *OrderRepository) create(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	orderQuery := `
		INSERT INTO orders (id, public_id, name, email, subtotal, discount, shipping, tax, total, promo_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = tx.Exec(ctx, orderQuery,
		o.ID,
		o.PublicID,
		o.Name,
		o.Email,
		o.Subtotal,
		o.Discount,
		o.Shipping,
		o.Tax,
		o.Total,
		o.PromoCode,
		o.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("order", "public_id", o.PublicID)
		}
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, title, unit_price, quantity)
		VALUES ($1, $2, $3, $4, $5)`

	for _, item := range o.Items {
		_, err = tx.Exec(ctx, itemQuery,
			item.ID,
			item.OrderID,
			item.Title,
			item.UnitPrice,
			item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetByPublicID retrieves an order by its public identifier, eagerly loading
// its line items.
func (r *OrderRepository) GetByPublicID(ctx context.Context, publicID string) (*domain.Order, error) {
	orderQuery := `
		SELECT id, public_id, name, email, subtotal, discount, shipping, tax, total, promo_code, created_at
		FROM orders
		WHERE public_id = $1`

	var o domain.Order

	err := r.pool.QueryRow(ctx, orderQuery, publicID).Scan(
		&o.ID,
		&o.PublicID,
		&o.Name,
		&o.Email,
		&o.Subtotal,
		&o.Discount,
		&o.Shipping,
		&o.Tax,
		&o.Total,
		&o.PromoCode,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	items, err := r.loadOrderItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

// loadOrderItems retrieves all line items belonging to a given order.
func (r *OrderRepository) loadOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	query := `
		SELECT id, order_id, title, unit_price, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY title`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.Title,
			&item.UnitPrice,
			&item.Quantity,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order item rows: %w", err)
	}

	if items == nil {
		items = []domain.OrderItem{}
	}

	return items, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wjkaliman/bookstore/internal/domain"
	"github.com/wjkaliman/bookstore/internal/repository"
	"github.com/wjkaliman/bookstore/pkg/database"
	apperrors "github.com/wjkaliman/bookstore/pkg/errors"
)

// BookRepository implements repository.BookRepository using PostgreSQL.
type BookRepository struct {
	pool database.DBTX
}

// NewBookRepository creates a new PostgreSQL-backed book repository.
func NewBookRepository(pool database.DBTX) *BookRepository {
	return &BookRepository{pool: pool}
}

// Create inserts a new book into the catalog.
func (r *BookRepository) Create(ctx context.Context, b *domain.Book) error {
	ctx, done := database.TraceQuery(ctx, "books.create", "INSERT INTO books")

	query := `
		INSERT INTO books (id, slug, title, author, category, price, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		b.ID,
		b.Slug,
		b.Title,
		b.Author,
		b.Category,
		b.Price,
		b.Image,
		b.CreatedAt,
		b.UpdatedAt,
	)
	done(err)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("book", "slug", b.Slug)
		}
		return fmt.Errorf("insert book: %w", err)
	}

	return nil
}

// GetByID retrieves a book by its ID.
func (r *BookRepository) GetByID(ctx context.Context, id string) (*domain.Book, error) {
	query := `
		SELECT id, slug, title, author, category, price, image, created_at, updated_at
		FROM books
		WHERE id = $1`

	return r.scanBook(ctx, query, id)
}

// GetBySlug retrieves a book by its slug.
func (r *BookRepository) GetBySlug(ctx context.Context, slug string) (*domain.Book, error) {
	query := `
		SELECT id, slug, title, author, category, price, image, created_at, updated_at
		FROM books
		WHERE slug = $1`

	return r.scanBook(ctx, query, slug)
}

// List returns books matching the given filter with the total count.
// Results are ordered by category, then by title within each category.
func (r *BookRepository) List(ctx context.Context, filter repository.BookFilter) ([]domain.Book, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("lower(category) = lower($%d)", argIndex))
		args = append(args, *filter.Category)
		argIndex++
	}

	if filter.Search != nil {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR author ILIKE $%d OR category ILIKE $%d)", argIndex, argIndex, argIndex))
		args = append(args, "%"+*filter.Search+"%")
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Use count(*) OVER() for total count in a single query.
	query := fmt.Sprintf(`
		SELECT id, slug, title, author, category, price, image, created_at, updated_at,
			   count(*) OVER() AS total_count
		FROM books
		%s
		ORDER BY category, title
		LIMIT $%d OFFSET $%d`,
		whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	ctx, done := database.TraceQuery(ctx, "books.list", "SELECT FROM books")
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		done(err)
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var (
		books      []domain.Book
		totalCount int
	)

	for rows.Next() {
		var b domain.Book
		if err := rows.Scan(
			&b.ID,
			&b.Slug,
			&b.Title,
			&b.Author,
			&b.Category,
			&b.Price,
			&b.Image,
			&b.CreatedAt,
			&b.UpdatedAt,
			&totalCount,
		); err != nil {
			done(err)
			return nil, 0, fmt.Errorf("scan book row: %w", err)
		}
		books = append(books, b)
	}

	if err := rows.Err(); err != nil {
		done(err)
		return nil, 0, fmt.Errorf("iterate book rows: %w", err)
	}
	done(nil)

	if books == nil {
		books = []domain.Book{}
	}

	return books, totalCount, nil
}

// Update modifies an existing book in the catalog.
func (r *BookRepository) Update(ctx context.Context, b *domain.Book) error {
	b.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE books
		SET slug = $1, title = $2, author = $3, category = $4, price = $5, image = $6, updated_at = $7
		WHERE id = $8`

	ctx, done := database.TraceQuery(ctx, "books.update", "UPDATE books")
	ct, err := r.pool.Exec(ctx, query,
		b.Slug,
		b.Title,
		b.Author,
		b.Category,
		b.Price,
		b.Image,
		b.UpdatedAt,
		b.ID,
	)
	done(err)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("book", "slug", b.Slug)
		}
		return fmt.Errorf("update book: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("book", b.ID)
	}

	return nil
}

// Delete removes a book from the catalog by its ID.
func (r *BookRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM books WHERE id = $1`

	ctx, done := database.TraceQuery(ctx, "books.delete", "DELETE FROM books")
	ct, err := r.pool.Exec(ctx, query, id)
	done(err)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("book", id)
	}

	return nil
}

// Count returns the number of books in the catalog.
func (r *BookRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT count(*) FROM books`

	var count int
	if err := r.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}

	return count, nil
}

// scanBook is a helper that executes a query expected to return a single book row.
func (r *BookRepository) scanBook(ctx context.Context, query string, args ...any) (*domain.Book, error) {
	var b domain.Book

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&b.ID,
		&b.Slug,
		&b.Title,
		&b.Author,
		&b.Category,
		&b.Price,
		&b.Image,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan book: %w", err)
	}

	return &b, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}

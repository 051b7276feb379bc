package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wjkaliman/bookstore/internal/domain"
	"github.com/wjkaliman/bookstore/internal/event"
	"github.com/wjkaliman/bookstore/internal/repository"
	apperrors "github.com/wjkaliman/bookstore/pkg/errors"
	"github.com/wjkaliman/bookstore/pkg/slug"
)

// The landing page features this slug when it exists; otherwise the first
// catalog book stands in.
const featuredSlug = "sapiens"

// CatalogService implements the business logic for catalog operations.
type CatalogService struct {
	repo     repository.BookRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(repo repository.BookRepository, producer *event.Producer, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// GetBook retrieves a single book by its slug.
func (s *CatalogService) GetBook(ctx context.Context, bookSlug string) (*domain.Book, error) {
	book, err := s.repo.GetBySlug(ctx, bookSlug)
	if err != nil {
		return nil, fmt.Errorf("get book by slug: %w", err)
	}
	return book, nil
}

// Featured returns the book shown on the landing page.
func (s *CatalogService) Featured(ctx context.Context) (*domain.Book, error) {
	book, err := s.repo.GetBySlug(ctx, featuredSlug)
	if err == nil {
		return book, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("get featured book: %w", err)
	}

	books, _, err := s.repo.List(ctx, repository.BookFilter{Page: 1, PerPage: 1})
	if err != nil {
		return nil, fmt.Errorf("fall back to first book: %w", err)
	}
	if len(books) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &books[0], nil
}

// Categories returns the catalog's category names in display order.
func (s *CatalogService) Categories() []string {
	return domain.Categories()
}

// ListByCategory returns the books in a category, ordered by title. The
// category match is case-insensitive, but unknown categories are rejected.
func (s *CatalogService) ListByCategory(ctx context.Context, category string) ([]domain.Book, error) {
	canonical, ok := domain.CanonicalCategory(category)
	if !ok {
		return nil, apperrors.NotFound("category", category)
	}

	books, _, err := s.repo.List(ctx, repository.BookFilter{
		Category: &canonical,
		Page:     1,
		PerPage:  100,
	})
	if err != nil {
		return nil, fmt.Errorf("list books by category: %w", err)
	}

	return books, nil
}

// Search returns books whose title, author, or category matches the query,
// case-insensitively. A blank query returns no results.
func (s *CatalogService) Search(ctx context.Context, query string) ([]domain.Book, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Book{}, nil
	}

	books, _, err := s.repo.List(ctx, repository.BookFilter{
		Search:  &query,
		Page:    1,
		PerPage: 100,
	})
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}

	return books, nil
}

// ListBooks returns a paginated view of the whole catalog for the admin UI.
func (s *CatalogService) ListBooks(ctx context.Context, filter repository.BookFilter) ([]domain.Book, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}

	books, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}

	return books, total, nil
}

// CreateBookInput holds the parameters for adding a book to the catalog.
type CreateBookInput struct {
	Title    string
	Author   string
	Category string
	Price    decimal.Decimal
	Image    string
}

// CreateBook adds a new book to the catalog. The slug is derived from the
// title.
func (s *CatalogService) CreateBook(ctx context.Context, input CreateBookInput) (*domain.Book, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.InvalidInput("title is required")
	}
	if strings.TrimSpace(input.Author) == "" {
		return nil, apperrors.InvalidInput("author is required")
	}
	if !domain.IsValidCategory(input.Category) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("category must be one of: %s", strings.Join(domain.Categories(), ", ")))
	}
	if input.Price.IsNegative() {
		return nil, apperrors.InvalidInput("price must not be negative")
	}

	now := time.Now().UTC()
	book := &domain.Book{
		ID:        uuid.New().String(),
		Slug:      slug.Generate(input.Title),
		Title:     strings.TrimSpace(input.Title),
		Author:    strings.TrimSpace(input.Author),
		Category:  input.Category,
		Price:     domain.Round2(input.Price),
		Image:     input.Image,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	if err := s.producer.PublishBookChanged(ctx, event.TopicBookCreated, book); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish book.created event",
			slog.String("book_id", book.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "book created",
		slog.String("book_id", book.ID),
		slog.String("slug", book.Slug),
	)

	return book, nil
}

// UpdateBookInput holds the parameters for editing a book. Nil fields are
// left unchanged.
type UpdateBookInput struct {
	Title    *string
	Author   *string
	Category *string
	Price    *decimal.Decimal
	Image    *string
}

// UpdateBook edits a catalog book in place. The slug is stable across edits
// so cart lines and bookmarks keep resolving.
func (s *CatalogService) UpdateBook(ctx context.Context, id string, input UpdateBookInput) (*domain.Book, error) {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get book for update: %w", err)
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, apperrors.InvalidInput("title must not be blank")
		}
		book.Title = strings.TrimSpace(*input.Title)
	}
	if input.Author != nil {
		if strings.TrimSpace(*input.Author) == "" {
			return nil, apperrors.InvalidInput("author must not be blank")
		}
		book.Author = strings.TrimSpace(*input.Author)
	}
	if input.Category != nil {
		if !domain.IsValidCategory(*input.Category) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("category must be one of: %s", strings.Join(domain.Categories(), ", ")))
		}
		book.Category = *input.Category
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, apperrors.InvalidInput("price must not be negative")
		}
		book.Price = domain.Round2(*input.Price)
	}
	if input.Image != nil {
		book.Image = *input.Image
	}

	if err := s.repo.Update(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}

	if err := s.producer.PublishBookChanged(ctx, event.TopicBookUpdated, book); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish book.updated event",
			slog.String("book_id", book.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "book updated",
		slog.String("book_id", book.ID),
		slog.String("slug", book.Slug),
	)

	return book, nil
}

// DeleteBook removes a book from the catalog. Carts referencing the slug
// keep the line; pricing drops it when the slug stops resolving. Past
// orders are untouched because their items are snapshots.
func (s *CatalogService) DeleteBook(ctx context.Context, id string) error {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get book for delete: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	if err := s.producer.PublishBookChanged(ctx, event.TopicBookDeleted, book); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish book.deleted event",
			slog.String("book_id", book.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "book deleted",
		slog.String("book_id", book.ID),
		slog.String("slug", book.Slug),
	)

	return nil
}

// SeedIfEmpty inserts the starter catalog on first run. It is a no-op when
// the books table already has rows.
func (s *CatalogService) SeedIfEmpty(ctx context.Context) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count books: %w", err)
	}
	if count > 0 {
		return nil
	}

	seed := []struct {
		slug, title, author, category, price string
	}{
		{"where-the-wild-things-are", "Where the Wild Things are", "Maurice Sendak", domain.CategoryChildrens, "7.99"},
		{"the-very-hungry-caterpillar", "The Very Hungry Caterpillar", "Eric Carle", domain.CategoryChildrens, "7.99"},
		{"the-phantom-tollbooth", "The Phantom Tollbooth", "Norton Juster", domain.CategoryFiction, "8.99"},
		{"caroline", "Caroline", "Neil Gaiman", domain.CategoryFiction, "8.99"},
		{"sapiens", "Sapiens", "Yuval Noah Harari", domain.CategoryNonFiction, "9.99"},
		{"atomic-habits", "Atomic Habits", "James Carter", domain.CategoryNonFiction, "9.99"},
	}

	now := time.Now().UTC()
	for _, b := range seed {
		book := &domain.Book{
			ID:        uuid.New().String(),
			Slug:      b.slug,
			Title:     b.title,
			Author:    b.author,
			Category:  b.category,
			Price:     domain.Money(b.price),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.Create(ctx, book); err != nil {
			return fmt.Errorf("seed book %q: %w", b.slug, err)
		}
	}

	s.logger.InfoContext(ctx, "seeded catalog", slog.Int("books", len(seed)))

	return nil
}

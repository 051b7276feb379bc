package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wjkaliman/bookstore/internal/domain"
	"github.com/wjkaliman/bookstore/internal/repository"
	apperrors "github.com/wjkaliman/bookstore/pkg/errors"
)

func newTestCatalogService(repo *mockBookRepository) *CatalogService {
	return NewCatalogService(repo, newTestProducer(), newTestLogger())
}

func TestFeatured_PrefersFeaturedSlug(t *testing.T) {
	repo := new(mockBookRepository)
	svc := newTestCatalogService(repo)
	ctx := context.Background()

	want := testBook("sapiens", "Sapiens", domain.CategoryNonFiction, "9.99")
	repo.On("GetBySlug", ctx, "sapiens").Return(want, nil)

	got, err := svc.Featured(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestFeatured_FallsBackToFirstBook(t *testing.T) {
	repo := new(mockBookRepository)
	svc := newTestCatalogService(repo)
	ctx := context.Background()

	repo.On("GetBySlug", ctx, "sapiens").Return(nil, apperrors.ErrNotFound)
	first := testBook("caroline", "Caroline", domain.CategoryFiction, "8.99")
	repo.On("List", ctx, mock.AnythingOfType("repository.BookFilter")).Return([]domain.Book{*first}, 1, nil)

	got, err := svc.Featured(ctx)
	require.NoError(t, err)
	assert.Equal(t, "caroline", got.Slug)
}

func TestFeatured_EmptyCatalog(t *testing.T) {
	repo := new(mockBookRepository)
	svc := newTestCatalogService(repo)
	ctx := context.Background()

	repo.On("GetBySlug", ctx, "sapiens").Return(nil, apperrors.ErrNotFound)
	repo.On("List", ctx, mock.AnythingOfType("repository.BookFilter")).Return([]domain.Book{}, 0, nil)

	_, err := svc.Featured(ctx)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListByCategory_CaseInsensitive(t *testing.T) {
	repo := new(mockBookRepository)
	svc := newTestCatalogService(repo)
	ctx := context.Background()

	books := []domain.Book{*testBook("caroline", "Caroline", domain.CategoryFiction, "8.99")}
	repo.On("List", ctx, mock.MatchedBy(func(f repository.BookFilter) bool {
		return f.Category != nil && *f.Category == domain.CategoryFiction
	})).Return(books, 1, nil)

	got, err := svc.ListByCategory(ctx, "fiction")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestListByCategory_Unknown(t *testing.T) {
	repo := new(mockBookRepository)
	svc := newTestCatalogService(repo)

	_, err := svc.ListByCategory(context.Background(), "Horror")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestSearch_BlankQuery(t *testing.T) {
	repo := new(mockBookRepository)
	svc := newTestCatalogService(repo)

	got, err := svc.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, got)
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestSearch_TrimsQuery(t *testing.T) {
	repo := new(mockBookRepository)
	svc := newTestCatalogService(repo)
	ctx := context.Background()

	books := []domain.Book{*testBook("sapiens", "Sapiens", domain.CategoryNonFiction, "9.99")}
	repo.On("List", ctx, mock.MatchedBy(func(f repository.BookFilter) bool {
		return f.Search != nil && *f.Search == "sapi"
	})).Return(books, 1, nil)

	got, err := svc.Search(ctx, "  sapi ")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCreateBook_Success(t *testing.T) {
	repo := new(mockBookRepository)
	svc := newTestCatalogService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Book")).Return(nil)

	book, err := svc.CreateBook(ctx, CreateBookInput{
		Title:    "The Pragmatic Programmer",
		Author:   "Andrew Hunt",
		Category: domain.CategoryNonFiction,
		Price:    domain.Money("29.955"),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, book.ID)
	assert.Equal(t, "the-pragmatic-programmer", book.Slug)
	assert.Equal(t, "29.96", book.Price.StringFixed(2))
	assert.False(t, book.CreatedAt.IsZero())
}

func TestCreateBook_Validation(t *testing.T) {
	repo := new(mockBookRepository)
	svc := newTestCatalogService(repo)
	ctx := context.Background()

	_, err := svc.CreateBook(ctx, CreateBookInput{Title: " ", Author: "A", Category: domain.CategoryFiction})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.CreateBook(ctx, CreateBookInput{Title: "T", Author: "", Category: domain.CategoryFiction})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.CreateBook(ctx, CreateBookInput{Title: "T", Author: "A", Category: "Horror"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.CreateBook(ctx, CreateBookInput{Title: "T", Author: "A", Category: domain.CategoryFiction, Price: domain.Money("-1")})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateBook_PartialUpdate(t *testing.T) {
	repo := new(mockBookRepository)
	svc := newTestCatalogService(repo)
	ctx := context.Background()

	existing := testBook("sapiens", "Sapiens", domain.CategoryNonFiction, "9.99")
	repo.On("GetByID", ctx, existing.ID).Return(existing, nil)
	repo.On("Update", ctx, mock.AnythingOfType("*domain.Book")).Return(nil)

	price := domain.Money("12.50")
	book, err := svc.UpdateBook(ctx, existing.ID, UpdateBookInput{Price: &price})
	require.NoError(t, err)

	// Only the price changes; the slug stays stable.
	assert.Equal(t, "sapiens", book.Slug)
	assert.Equal(t, "Sapiens", book.Title)
	assert.Equal(t, "12.50", book.Price.StringFixed(2))
}

func TestUpdateBook_InvalidCategory(t *testing.T) {
	repo := new(mockBookRepository)
	svc := newTestCatalogService(repo)
	ctx := context.Background()

	existing := testBook("sapiens", "Sapiens", domain.CategoryNonFiction, "9.99")
	repo.On("GetByID", ctx, existing.ID).Return(existing, nil)

	bad := "Horror"
	_, err := svc.UpdateBook(ctx, existing.ID, UpdateBookInput{Category: &bad})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestDeleteBook(t *testing.T) {
	repo := new(mockBookRepository)
	svc := newTestCatalogService(repo)
	ctx := context.Background()

	existing := testBook("sapiens", "Sapiens", domain.CategoryNonFiction, "9.99")
	repo.On("GetByID", ctx, existing.ID).Return(existing, nil)
	repo.On("Delete", ctx, existing.ID).Return(nil)

	err := svc.DeleteBook(ctx, existing.ID)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestSeedIfEmpty_SeedsOnEmptyCatalog(t *testing.T) {
	repo := new(mockBookRepository)
	svc := newTestCatalogService(repo)
	ctx := context.Background()

	repo.On("Count", ctx).Return(0, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*domain.Book")).Return(nil)

	err := svc.SeedIfEmpty(ctx)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "Create", 6)
}

func TestSeedIfEmpty_NoOpWhenPopulated(t *testing.T) {
	repo := new(mockBookRepository)
	svc := newTestCatalogService(repo)
	ctx := context.Background()

	repo.On("Count", ctx).Return(6, nil)

	err := svc.SeedIfEmpty(ctx)
	require.NoError(t, err)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

package catalog

import (
	"context"

	"bookrack.org/internal/page"
)

// Service defines catalog operations. Implementations must keep multi-row
// writes atomic: CreateBook commits the book plus both join rows or nothing,
// and DeleteBook removes the book together with its links and reviews.
type Service interface {
	// CreateBook inserts b and links it to an existing owner and category.
	// Returns ErrNotFound if either referent is absent and ErrConflict if a
	// book with the same normalized title exists.
	CreateBook(ctx context.Context, ownerID, categoryID string, b *Book) error
	GetBook(ctx context.Context, id string) (Book, error)
	// ListBooks returns the pageNumber-th page of books in ascending id
	// order, with metadata computed from the unfiltered total.
	ListBooks(ctx context.Context, pageNumber, pageSize int) ([]Book, page.Metadata, error)
	UpdateBook(ctx context.Context, b *Book) error
	DeleteBook(ctx context.Context, id string) error
	// BookRating aggregates all review ratings of a book. ErrNotFound if the
	// book is absent; a zero-review book yields Rating{0, 0}.
	BookRating(ctx context.Context, bookID string) (Rating, error)

	CreateCategory(ctx context.Context, c *Category) error
	GetCategory(ctx context.Context, id string) (Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id string) error
	BooksByCategory(ctx context.Context, categoryID string) ([]Book, error)

	// CreateOwner links the owner to an existing country; ErrNotFound if the
	// country is absent.
	CreateOwner(ctx context.Context, countryID string, o *Owner) error
	GetOwner(ctx context.Context, id string) (Owner, error)
	ListOwners(ctx context.Context) ([]Owner, error)
	UpdateOwner(ctx context.Context, o *Owner) error
	DeleteOwner(ctx context.Context, id string) error
	BooksByOwner(ctx context.Context, ownerID string) ([]Book, error)

	CreateCountry(ctx context.Context, c *Country) error
	GetCountry(ctx context.Context, id string) (Country, error)
	ListCountries(ctx context.Context) ([]Country, error)
	UpdateCountry(ctx context.Context, c *Country) error
	DeleteCountry(ctx context.Context, id string) error
	CountryOfOwner(ctx context.Context, ownerID string) (Country, error)

	CreateReviewer(ctx context.Context, r *Reviewer) error
	GetReviewer(ctx context.Context, id string) (Reviewer, error)
	ListReviewers(ctx context.Context) ([]Reviewer, error)
	UpdateReviewer(ctx context.Context, r *Reviewer) error
	DeleteReviewer(ctx context.Context, id string) error
	ReviewsByReviewer(ctx context.Context, reviewerID string) ([]Review, error)

	// CreateReview requires an existing reviewer and book; duplicate review
	// titles surface as ErrConflict.
	CreateReview(ctx context.Context, reviewerID, bookID string, r *Review) error
	GetReview(ctx context.Context, id string) (Review, error)
	ListReviews(ctx context.Context) ([]Review, error)
	UpdateReview(ctx context.Context, r *Review) error
	DeleteReview(ctx context.Context, id string) error
	ReviewsOfBook(ctx context.Context, bookID string) ([]Review, error)
	DeleteReviewsByReviewer(ctx context.Context, reviewerID string) error
}

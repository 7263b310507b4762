package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOwnerAndCategory(t *testing.T, s *InMemory) (ownerID, categoryID string) {
	t.Helper()
	ctx := context.Background()

	country := &Country{Name: "Kanto"}
	require.NoError(t, s.CreateCountry(ctx, country))
	owner := &Owner{FirstName: "Jack", LastName: "London"}
	require.NoError(t, s.CreateOwner(ctx, country.ID, owner))
	category := &Category{Name: "Electric"}
	require.NoError(t, s.CreateCategory(ctx, category))
	return owner.ID, category.ID
}

func TestCreateBookLinksOwnerAndCategory(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	ownerID, categoryID := seedOwnerAndCategory(t, s)

	b := &Book{Title: "Pikachu", PublishedDate: time.Date(1903, 1, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, s.CreateBook(ctx, ownerID, categoryID, b))
	require.NotEmpty(t, b.ID)

	byOwner, err := s.BooksByOwner(ctx, ownerID)
	require.NoError(t, err)
	assert.Len(t, byOwner, 1)

	byCategory, err := s.BooksByCategory(ctx, categoryID)
	require.NoError(t, err)
	assert.Len(t, byCategory, 1)
}

func TestCreateBookMissingReferent(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	ownerID, categoryID := seedOwnerAndCategory(t, s)

	b := &Book{Title: "Pikachu"}
	err := s.CreateBook(ctx, "no-such-owner", categoryID, b)
	require.ErrorIs(t, err, ErrNotFound)

	err = s.CreateBook(ctx, ownerID, "no-such-category", b)
	require.ErrorIs(t, err, ErrNotFound)

	// a failed create must leave no partial rows behind
	books, _, err := s.ListBooks(ctx, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestCreateBookDuplicateTitle(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	ownerID, categoryID := seedOwnerAndCategory(t, s)

	require.NoError(t, s.CreateBook(ctx, ownerID, categoryID, &Book{Title: "Pikachu"}))
	for _, title := range []string{"Pikachu", " pikachu ", "PIKACHU"} {
		err := s.CreateBook(ctx, ownerID, categoryID, &Book{Title: title})
		assert.ErrorIs(t, err, ErrConflict, "title %q", title)
	}
}

func TestDeleteBookCascades(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	ownerID, categoryID := seedOwnerAndCategory(t, s)

	reviewer := &Reviewer{FirstName: "Teddy", LastName: "Smith"}
	require.NoError(t, s.CreateReviewer(ctx, reviewer))

	b := &Book{Title: "Squirtle"}
	require.NoError(t, s.CreateBook(ctx, ownerID, categoryID, b))
	require.NoError(t, s.CreateReview(ctx, reviewer.ID, b.ID, &Review{Title: "Great", Text: "splash", Rating: 5}))

	require.NoError(t, s.DeleteBook(ctx, b.ID))

	_, err := s.GetBook(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	reviews, err := s.ListReviews(ctx)
	require.NoError(t, err)
	assert.Empty(t, reviews)

	// the review title is free again after the cascade
	b2 := &Book{Title: "Squirtle"}
	require.NoError(t, s.CreateBook(ctx, ownerID, categoryID, b2))
	assert.NoError(t, s.CreateReview(ctx, reviewer.ID, b2.ID, &Review{Title: "Great", Text: "again", Rating: 3}))
}

func TestBookRating(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	ownerID, categoryID := seedOwnerAndCategory(t, s)

	b := &Book{Title: "Pikachu"}
	require.NoError(t, s.CreateBook(ctx, ownerID, categoryID, b))

	agg, err := s.BookRating(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, Rating{}, agg)

	reviewer := &Reviewer{FirstName: "Taylor", LastName: "Jones"}
	require.NoError(t, s.CreateReviewer(ctx, reviewer))
	for i, rating := range []int{5, 5, 1} {
		r := &Review{Title: "r" + string(rune('a'+i)), Text: "t", Rating: rating}
		require.NoError(t, s.CreateReview(ctx, reviewer.ID, b.ID, r))
	}

	agg, err = s.BookRating(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, Rating{Sum: 11, Count: 3}, agg)
	assert.Equal(t, "3.6667", agg.Decimal(4))

	_, err = s.BookRating(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListBooksPagination(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	ownerID, categoryID := seedOwnerAndCategory(t, s)

	titles := []string{"Alpha", "Beta", "Gamma"}
	for _, title := range titles {
		require.NoError(t, s.CreateBook(ctx, ownerID, categoryID, &Book{Title: title}))
	}

	first, meta, err := s.ListBooks(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, 3, meta.TotalCount)
	assert.Equal(t, 2, meta.TotalPages)

	second, _, err := s.ListBooks(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, second, 1)

	// ids are ULIDs, so ascending id order is creation order
	assert.Less(t, first[0].ID, first[1].ID)
	assert.Less(t, first[1].ID, second[0].ID)

	empty, meta, err := s.ListBooks(ctx, 3, 2)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.Equal(t, 3, meta.TotalCount)
}

func TestCreateReviewConstraints(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	ownerID, categoryID := seedOwnerAndCategory(t, s)

	b := &Book{Title: "Pikachu"}
	require.NoError(t, s.CreateBook(ctx, ownerID, categoryID, b))
	reviewer := &Reviewer{FirstName: "Jessica", LastName: "McGregor"}
	require.NoError(t, s.CreateReviewer(ctx, reviewer))

	err := s.CreateReview(ctx, "missing", b.ID, &Review{Title: "x", Rating: 1})
	assert.ErrorIs(t, err, ErrNotFound)
	err = s.CreateReview(ctx, reviewer.ID, "missing", &Review{Title: "x", Rating: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.CreateReview(ctx, reviewer.ID, b.ID, &Review{Title: "Nice", Rating: 4}))
	err = s.CreateReview(ctx, reviewer.ID, b.ID, &Review{Title: " NICE ", Rating: 2})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestDeleteReviewsByReviewer(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	ownerID, categoryID := seedOwnerAndCategory(t, s)

	b := &Book{Title: "Pikachu"}
	require.NoError(t, s.CreateBook(ctx, ownerID, categoryID, b))
	r1 := &Reviewer{FirstName: "Teddy"}
	r2 := &Reviewer{FirstName: "Taylor"}
	require.NoError(t, s.CreateReviewer(ctx, r1))
	require.NoError(t, s.CreateReviewer(ctx, r2))
	require.NoError(t, s.CreateReview(ctx, r1.ID, b.ID, &Review{Title: "one", Rating: 5}))
	require.NoError(t, s.CreateReview(ctx, r2.ID, b.ID, &Review{Title: "two", Rating: 1}))

	require.NoError(t, s.DeleteReviewsByReviewer(ctx, r1.ID))

	left, err := s.ListReviews(ctx)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, r2.ID, left[0].ReviewerID)

	assert.ErrorIs(t, s.DeleteReviewsByReviewer(ctx, "missing"), ErrNotFound)
}

func TestDeleteReviewerCascadesReviews(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	ownerID, categoryID := seedOwnerAndCategory(t, s)

	b := &Book{Title: "Pikachu"}
	require.NoError(t, s.CreateBook(ctx, ownerID, categoryID, b))
	reviewer := &Reviewer{FirstName: "Teddy"}
	require.NoError(t, s.CreateReviewer(ctx, reviewer))
	require.NoError(t, s.CreateReview(ctx, reviewer.ID, b.ID, &Review{Title: "one", Rating: 5}))

	require.NoError(t, s.DeleteReviewer(ctx, reviewer.ID))

	reviews, err := s.ListReviews(ctx)
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestDeleteCountryWithOwners(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	country := &Country{Name: "Kanto"}
	require.NoError(t, s.CreateCountry(ctx, country))
	require.NoError(t, s.CreateOwner(ctx, country.ID, &Owner{FirstName: "Jack"}))

	assert.ErrorIs(t, s.DeleteCountry(ctx, country.ID), ErrConflict)
}

func TestCountryOfOwner(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	country := &Country{Name: "Johto"}
	require.NoError(t, s.CreateCountry(ctx, country))
	owner := &Owner{FirstName: "Harry"}
	require.NoError(t, s.CreateOwner(ctx, country.ID, owner))

	got, err := s.CountryOfOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, country.ID, got.ID)

	_, err = s.CountryOfOwner(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.CreateOwner(ctx, "missing", &Owner{FirstName: "Nobody"})
	assert.ErrorIs(t, err, ErrNotFound)
}

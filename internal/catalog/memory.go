package catalog

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"bookrack.org/internal/ids"
	"bookrack.org/internal/page"
)

// InMemory implements Service with in-process concurrency safety. It backs
// handler tests and DSN-less development runs; production uses the Postgres
// store.
type InMemory struct {
	mu sync.RWMutex

	books      map[string]*Book
	owners     map[string]*Owner
	categories map[string]*Category
	countries  map[string]*Country
	reviewers  map[string]*Reviewer
	reviews    map[string]*Review

	bookOwners     map[string]map[string]struct{} // bookID -> ownerIDs
	bookCategories map[string]map[string]struct{} // bookID -> categoryIDs

	// natural-key indexes, keyed by Normalize(...)
	bookTitles    map[string]string
	reviewTitles  map[string]string
	categoryNames map[string]string
	countryNames  map[string]string
}

// NewInMemory creates an empty catalog.
func NewInMemory() *InMemory {
	return &InMemory{
		books:          make(map[string]*Book),
		owners:         make(map[string]*Owner),
		categories:     make(map[string]*Category),
		countries:      make(map[string]*Country),
		reviewers:      make(map[string]*Reviewer),
		reviews:        make(map[string]*Review),
		bookOwners:     make(map[string]map[string]struct{}),
		bookCategories: make(map[string]map[string]struct{}),
		bookTitles:     make(map[string]string),
		reviewTitles:   make(map[string]string),
		categoryNames:  make(map[string]string),
		countryNames:   make(map[string]string),
	}
}

var _ Service = (*InMemory)(nil)

func sortedByID[T any](m map[string]*T) []T {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, *m[k])
	}
	return out
}

// --- books ---

func (s *InMemory) CreateBook(ctx context.Context, ownerID, categoryID string, b *Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.owners[ownerID]; !ok {
		return fmt.Errorf("owner %s: %w", ownerID, ErrNotFound)
	}
	if _, ok := s.categories[categoryID]; !ok {
		return fmt.Errorf("category %s: %w", categoryID, ErrNotFound)
	}
	key := Normalize(b.Title)
	if _, ok := s.bookTitles[key]; ok {
		return fmt.Errorf("book %q: %w", b.Title, ErrConflict)
	}

	if b.ID == "" {
		b.ID = ids.New()
	}
	stored := *b
	s.books[b.ID] = &stored
	s.bookTitles[key] = b.ID
	s.bookOwners[b.ID] = map[string]struct{}{ownerID: {}}
	s.bookCategories[b.ID] = map[string]struct{}{categoryID: {}}
	return nil
}

func (s *InMemory) GetBook(ctx context.Context, id string) (Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.books[id]
	if !ok {
		return Book{}, ErrNotFound
	}
	return *b, nil
}

func (s *InMemory) ListBooks(ctx context.Context, pageNumber, pageSize int) ([]Book, page.Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	books, meta := page.Paginate(sortedByID(s.books), pageNumber, pageSize)
	return books, meta, nil
}

func (s *InMemory) UpdateBook(ctx context.Context, b *Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.books[b.ID]
	if !ok {
		return ErrNotFound
	}
	key := Normalize(b.Title)
	if other, ok := s.bookTitles[key]; ok && other != b.ID {
		return fmt.Errorf("book %q: %w", b.Title, ErrConflict)
	}
	delete(s.bookTitles, Normalize(cur.Title))
	s.bookTitles[key] = b.ID
	stored := *b
	s.books[b.ID] = &stored
	return nil
}

func (s *InMemory) DeleteBook(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	if !ok {
		return ErrNotFound
	}
	for rid, r := range s.reviews {
		if r.BookID == id {
			delete(s.reviewTitles, Normalize(r.Title))
			delete(s.reviews, rid)
		}
	}
	delete(s.bookOwners, id)
	delete(s.bookCategories, id)
	delete(s.bookTitles, Normalize(b.Title))
	delete(s.books, id)
	return nil
}

func (s *InMemory) BookRating(ctx context.Context, bookID string) (Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.books[bookID]; !ok {
		return Rating{}, ErrNotFound
	}
	var agg Rating
	for _, r := range s.reviews {
		if r.BookID == bookID {
			agg.Sum += int64(r.Rating)
			agg.Count++
		}
	}
	return agg, nil
}

// --- categories ---

func (s *InMemory) CreateCategory(ctx context.Context, c *Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := Normalize(c.Name)
	if _, ok := s.categoryNames[key]; ok {
		return fmt.Errorf("category %q: %w", c.Name, ErrConflict)
	}
	if c.ID == "" {
		c.ID = ids.New()
	}
	stored := *c
	s.categories[c.ID] = &stored
	s.categoryNames[key] = c.ID
	return nil
}

func (s *InMemory) GetCategory(ctx context.Context, id string) (Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return Category{}, ErrNotFound
	}
	return *c, nil
}

func (s *InMemory) ListCategories(ctx context.Context) ([]Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedByID(s.categories), nil
}

func (s *InMemory) UpdateCategory(ctx context.Context, c *Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.categories[c.ID]
	if !ok {
		return ErrNotFound
	}
	key := Normalize(c.Name)
	if other, ok := s.categoryNames[key]; ok && other != c.ID {
		return fmt.Errorf("category %q: %w", c.Name, ErrConflict)
	}
	delete(s.categoryNames, Normalize(cur.Name))
	s.categoryNames[key] = c.ID
	stored := *c
	s.categories[c.ID] = &stored
	return nil
}

func (s *InMemory) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return ErrNotFound
	}
	for _, cats := range s.bookCategories {
		delete(cats, id)
	}
	delete(s.categoryNames, Normalize(c.Name))
	delete(s.categories, id)
	return nil
}

func (s *InMemory) BooksByCategory(ctx context.Context, categoryID string) ([]Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.categories[categoryID]; !ok {
		return nil, ErrNotFound
	}
	linked := make(map[string]*Book)
	for bookID, cats := range s.bookCategories {
		if _, ok := cats[categoryID]; ok {
			linked[bookID] = s.books[bookID]
		}
	}
	return sortedByID(linked), nil
}

// --- owners ---

func (s *InMemory) CreateOwner(ctx context.Context, countryID string, o *Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.countries[countryID]; !ok {
		return fmt.Errorf("country %s: %w", countryID, ErrNotFound)
	}
	if o.ID == "" {
		o.ID = ids.New()
	}
	o.CountryID = countryID
	stored := *o
	s.owners[o.ID] = &stored
	return nil
}

func (s *InMemory) GetOwner(ctx context.Context, id string) (Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.owners[id]
	if !ok {
		return Owner{}, ErrNotFound
	}
	return *o, nil
}

func (s *InMemory) ListOwners(ctx context.Context) ([]Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedByID(s.owners), nil
}

func (s *InMemory) UpdateOwner(ctx context.Context, o *Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.owners[o.ID]
	if !ok {
		return ErrNotFound
	}
	if o.CountryID == "" {
		o.CountryID = cur.CountryID
	} else if _, ok := s.countries[o.CountryID]; !ok {
		return fmt.Errorf("country %s: %w", o.CountryID, ErrNotFound)
	}
	stored := *o
	s.owners[o.ID] = &stored
	return nil
}

func (s *InMemory) DeleteOwner(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.owners[id]; !ok {
		return ErrNotFound
	}
	for _, owners := range s.bookOwners {
		delete(owners, id)
	}
	delete(s.owners, id)
	return nil
}

func (s *InMemory) BooksByOwner(ctx context.Context, ownerID string) ([]Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.owners[ownerID]; !ok {
		return nil, ErrNotFound
	}
	linked := make(map[string]*Book)
	for bookID, owners := range s.bookOwners {
		if _, ok := owners[ownerID]; ok {
			linked[bookID] = s.books[bookID]
		}
	}
	return sortedByID(linked), nil
}

// --- countries ---

func (s *InMemory) CreateCountry(ctx context.Context, c *Country) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := Normalize(c.Name)
	if _, ok := s.countryNames[key]; ok {
		return fmt.Errorf("country %q: %w", c.Name, ErrConflict)
	}
	if c.ID == "" {
		c.ID = ids.New()
	}
	stored := *c
	s.countries[c.ID] = &stored
	s.countryNames[key] = c.ID
	return nil
}

func (s *InMemory) GetCountry(ctx context.Context, id string) (Country, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.countries[id]
	if !ok {
		return Country{}, ErrNotFound
	}
	return *c, nil
}

func (s *InMemory) ListCountries(ctx context.Context) ([]Country, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedByID(s.countries), nil
}

func (s *InMemory) UpdateCountry(ctx context.Context, c *Country) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.countries[c.ID]
	if !ok {
		return ErrNotFound
	}
	key := Normalize(c.Name)
	if other, ok := s.countryNames[key]; ok && other != c.ID {
		return fmt.Errorf("country %q: %w", c.Name, ErrConflict)
	}
	delete(s.countryNames, Normalize(cur.Name))
	s.countryNames[key] = c.ID
	stored := *c
	s.countries[c.ID] = &stored
	return nil
}

func (s *InMemory) DeleteCountry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.countries[id]
	if !ok {
		return ErrNotFound
	}
	// Refuse while owners still reference the country.
	for _, o := range s.owners {
		if o.CountryID == id {
			return fmt.Errorf("country %s still has owners: %w", id, ErrConflict)
		}
	}
	delete(s.countryNames, Normalize(c.Name))
	delete(s.countries, id)
	return nil
}

func (s *InMemory) CountryOfOwner(ctx context.Context, ownerID string) (Country, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.owners[ownerID]
	if !ok {
		return Country{}, fmt.Errorf("owner %s: %w", ownerID, ErrNotFound)
	}
	c, ok := s.countries[o.CountryID]
	if !ok {
		return Country{}, fmt.Errorf("country %s: %w", o.CountryID, ErrNotFound)
	}
	return *c, nil
}

// --- reviewers ---

func (s *InMemory) CreateReviewer(ctx context.Context, r *Reviewer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = ids.New()
	}
	stored := *r
	s.reviewers[r.ID] = &stored
	return nil
}

func (s *InMemory) GetReviewer(ctx context.Context, id string) (Reviewer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reviewers[id]
	if !ok {
		return Reviewer{}, ErrNotFound
	}
	return *r, nil
}

func (s *InMemory) ListReviewers(ctx context.Context) ([]Reviewer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedByID(s.reviewers), nil
}

func (s *InMemory) UpdateReviewer(ctx context.Context, r *Reviewer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reviewers[r.ID]; !ok {
		return ErrNotFound
	}
	stored := *r
	s.reviewers[r.ID] = &stored
	return nil
}

// DeleteReviewer drops the reviewer along with every review they wrote.
func (s *InMemory) DeleteReviewer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reviewers[id]; !ok {
		return ErrNotFound
	}
	for rid, r := range s.reviews {
		if r.ReviewerID == id {
			delete(s.reviewTitles, Normalize(r.Title))
			delete(s.reviews, rid)
		}
	}
	delete(s.reviewers, id)
	return nil
}

func (s *InMemory) ReviewsByReviewer(ctx context.Context, reviewerID string) ([]Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.reviewers[reviewerID]; !ok {
		return nil, ErrNotFound
	}
	matched := make(map[string]*Review)
	for id, r := range s.reviews {
		if r.ReviewerID == reviewerID {
			matched[id] = r
		}
	}
	return sortedByID(matched), nil
}

// --- reviews ---

func (s *InMemory) CreateReview(ctx context.Context, reviewerID, bookID string, r *Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reviewers[reviewerID]; !ok {
		return fmt.Errorf("reviewer %s: %w", reviewerID, ErrNotFound)
	}
	if _, ok := s.books[bookID]; !ok {
		return fmt.Errorf("book %s: %w", bookID, ErrNotFound)
	}
	key := Normalize(r.Title)
	if _, ok := s.reviewTitles[key]; ok {
		return fmt.Errorf("review %q: %w", r.Title, ErrConflict)
	}
	if r.ID == "" {
		r.ID = ids.New()
	}
	r.ReviewerID = reviewerID
	r.BookID = bookID
	stored := *r
	s.reviews[r.ID] = &stored
	s.reviewTitles[key] = r.ID
	return nil
}

func (s *InMemory) GetReview(ctx context.Context, id string) (Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reviews[id]
	if !ok {
		return Review{}, ErrNotFound
	}
	return *r, nil
}

func (s *InMemory) ListReviews(ctx context.Context) ([]Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedByID(s.reviews), nil
}

func (s *InMemory) UpdateReview(ctx context.Context, r *Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.reviews[r.ID]
	if !ok {
		return ErrNotFound
	}
	key := Normalize(r.Title)
	if other, ok := s.reviewTitles[key]; ok && other != r.ID {
		return fmt.Errorf("review %q: %w", r.Title, ErrConflict)
	}
	// the book and reviewer links are immutable on update
	r.BookID = cur.BookID
	r.ReviewerID = cur.ReviewerID
	delete(s.reviewTitles, Normalize(cur.Title))
	s.reviewTitles[key] = r.ID
	stored := *r
	s.reviews[r.ID] = &stored
	return nil
}

func (s *InMemory) DeleteReview(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reviews[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.reviewTitles, Normalize(r.Title))
	delete(s.reviews, id)
	return nil
}

func (s *InMemory) ReviewsOfBook(ctx context.Context, bookID string) ([]Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.books[bookID]; !ok {
		return nil, ErrNotFound
	}
	matched := make(map[string]*Review)
	for id, r := range s.reviews {
		if r.BookID == bookID {
			matched[id] = r
		}
	}
	return sortedByID(matched), nil
}

func (s *InMemory) DeleteReviewsByReviewer(ctx context.Context, reviewerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reviewers[reviewerID]; !ok {
		return ErrNotFound
	}
	for id, r := range s.reviews {
		if r.ReviewerID == reviewerID {
			delete(s.reviewTitles, Normalize(r.Title))
			delete(s.reviews, id)
		}
	}
	return nil
}

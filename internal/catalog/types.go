package catalog

import (
	"errors"
	"strings"
	"time"
)

// Book is a catalog entry. Owners and categories attach through join rows;
// reviews reference the book by id. The book owns its join rows and reviews:
// deleting it removes them in the same transaction.
type Book struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	PublishedDate time.Time `json:"published_date"`
}

// Owner holds books. The country link is a weak reference resolved by id.
type Owner struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	CountryID string `json:"country_id"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Country struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Reviewer struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type Review struct {
	ID         string `json:"id"`
	BookID     string `json:"book_id"`
	ReviewerID string `json:"reviewer_id"`
	Title      string `json:"title"`
	Text       string `json:"text"`
	Rating     int    `json:"rating"`
}

// BookOwner and BookCategory are join rows. A given pair occurs at most once.
type BookOwner struct {
	BookID  string `json:"book_id"`
	OwnerID string `json:"owner_id"`
}

type BookCategory struct {
	BookID     string `json:"book_id"`
	CategoryID string `json:"category_id"`
}

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// Normalize folds a natural key (title, name, username) for uniqueness
// comparison: surrounding whitespace is ignored and case is insensitive.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"bookrack.org/internal/audit"
	"bookrack.org/internal/catalog"
)

// ratingPrecision is the number of decimal places used when presenting
// a mean rating. The aggregate itself stays exact; rounding happens here.
const ratingPrecision = 4

const (
	defaultPageSize = 10
	maxPageSize     = 100
	maxPageNumber   = 1_000_000
)

type bookRequest struct {
	Title         string    `json:"title"`
	PublishedDate time.Time `json:"published_date"`
}

type ratingResponse struct {
	BookID string `json:"book_id"`
	Rating string `json:"rating"`
}

func (a *API) handleBooksCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listBooks(w, r)
	case http.MethodPost:
		a.createBook(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) listBooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pageNumber, err := parseBoundedInt(q.Get("pageNumber"), 1, 1, maxPageNumber, "pageNumber")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	pageSize, err := parseBoundedInt(q.Get("pageSize"), defaultPageSize, 1, maxPageSize, "pageSize")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	books, meta, err := a.catalog.ListBooks(r.Context(), pageNumber, pageSize)
	if err != nil {
		handleCatalogError(w, r, err)
		return
	}
	header, err := json.Marshal(meta)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("X-Pagination", string(header))
	writeJSON(w, http.StatusOK, books)
}

func (a *API) createBook(w http.ResponseWriter, r *http.Request) {
	ownerID := strings.TrimSpace(r.URL.Query().Get("ownerId"))
	categoryID := strings.TrimSpace(r.URL.Query().Get("categoryId"))
	if ownerID == "" || categoryID == "" {
		writeError(w, r, http.StatusBadRequest, "ownerId and categoryId query parameters are required")
		return
	}
	var req bookRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Title) == "" || len(req.Title) > 200 {
		writeError(w, r, http.StatusBadRequest, "title is required and must be at most 200 characters")
		return
	}

	b := catalog.Book{Title: req.Title, PublishedDate: req.PublishedDate}
	if err := a.catalog.CreateBook(r.Context(), ownerID, categoryID, &b); err != nil {
		if errors.Is(err, catalog.ErrConflict) {
			writeError(w, r, http.StatusBadRequest, "book already exists")
			return
		}
		handleCatalogError(w, r, err)
		return
	}

	audit.LogEvent(r.Context(), "catalog.book.create", map[string]any{
		"book_id":     b.ID,
		"owner_id":    ownerID,
		"category_id": categoryID,
	})
	writeJSON(w, http.StatusOK, b)
}

func (a *API) handleBookResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/books/")
	switch {
	case strings.HasSuffix(path, "/rating"):
		id := strings.TrimSuffix(path, "/rating")
		if id == "" || strings.Contains(id, "/") {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		a.getBookRating(w, r, id)
		return
	case strings.HasSuffix(path, "/reviews"):
		id := strings.TrimSuffix(path, "/reviews")
		if id == "" || strings.Contains(id, "/") {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		a.listBookReviews(w, r, id)
		return
	}
	if path == "" || strings.Contains(path, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getBook(w, r, path)
	case http.MethodPut:
		a.updateBook(w, r, path)
	case http.MethodDelete:
		a.deleteBook(w, r, path)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (a *API) getBook(w http.ResponseWriter, r *http.Request, id string) {
	b, err := a.catalog.GetBook(r.Context(), id)
	if err != nil {
		handleCatalogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (a *API) getBookRating(w http.ResponseWriter, r *http.Request, id string) {
	agg, err := a.catalog.BookRating(r.Context(), id)
	if err != nil {
		handleCatalogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ratingResponse{
		BookID: id,
		Rating: agg.Decimal(ratingPrecision),
	})
}

func (a *API) listBookReviews(w http.ResponseWriter, r *http.Request, id string) {
	reviews, err := a.catalog.ReviewsOfBook(r.Context(), id)
	if err != nil {
		handleCatalogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (a *API) updateBook(w http.ResponseWriter, r *http.Request, id string) {
	var req bookRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Title) == "" || len(req.Title) > 200 {
		writeError(w, r, http.StatusBadRequest, "title is required and must be at most 200 characters")
		return
	}

	b := catalog.Book{ID: id, Title: req.Title, PublishedDate: req.PublishedDate}
	if err := a.catalog.UpdateBook(r.Context(), &b); err != nil {
		handleCatalogError(w, r, err)
		return
	}
	audit.LogEvent(r.Context(), "catalog.book.update", map[string]any{"book_id": id})
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) deleteBook(w http.ResponseWriter, r *http.Request, id string) {
	if err := a.catalog.DeleteBook(r.Context(), id); err != nil {
		handleCatalogError(w, r, err)
		return
	}
	audit.LogEvent(r.Context(), "catalog.book.delete", map[string]any{"book_id": id})
	w.WriteHeader(http.StatusNoContent)
}

package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"bookrack.org/internal/audit"
	"bookrack.org/internal/catalog"
)

type reviewRequest struct {
	Title  string `json:"title"`
	Text   string `json:"text"`
	Rating int    `json:"rating"`
}

func (a *API) validateReviewRequest(req reviewRequest) string {
	if strings.TrimSpace(req.Title) == "" || len(req.Title) > 200 {
		return "title is required and must be at most 200 characters"
	}
	if strings.TrimSpace(req.Text) == "" {
		return "text is required"
	}
	if req.Rating < 1 || req.Rating > 5 {
		return "rating must be between 1 and 5"
	}
	return ""
}

func (a *API) handleReviewsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		reviews, err := a.catalog.ListReviews(r.Context())
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, reviews)
	case http.MethodPost:
		a.createReview(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) createReview(w http.ResponseWriter, r *http.Request) {
	reviewerID := strings.TrimSpace(r.URL.Query().Get("reviewerId"))
	bookID := strings.TrimSpace(r.URL.Query().Get("bookId"))
	if reviewerID == "" || bookID == "" {
		writeError(w, r, http.StatusBadRequest, "reviewerId and bookId query parameters are required")
		return
	}
	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if msg := a.validateReviewRequest(req); msg != "" {
		writeError(w, r, http.StatusBadRequest, msg)
		return
	}

	rev := catalog.Review{Title: req.Title, Text: req.Text, Rating: req.Rating}
	if err := a.catalog.CreateReview(r.Context(), reviewerID, bookID, &rev); err != nil {
		if errors.Is(err, catalog.ErrConflict) {
			writeError(w, r, http.StatusUnprocessableEntity, "review already exists")
			return
		}
		handleCatalogError(w, r, err)
		return
	}

	audit.LogEvent(r.Context(), "catalog.review.create", map[string]any{
		"review_id":   rev.ID,
		"reviewer_id": reviewerID,
		"book_id":     bookID,
	})
	writeJSON(w, http.StatusOK, rev)
}

func (a *API) handleReviewResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/reviews/")
	if path == "" || strings.Contains(path, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		rev, err := a.catalog.GetReview(r.Context(), path)
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rev)
	case http.MethodPut:
		var req reviewRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if msg := a.validateReviewRequest(req); msg != "" {
			writeError(w, r, http.StatusBadRequest, msg)
			return
		}
		rev := catalog.Review{ID: path, Title: req.Title, Text: req.Text, Rating: req.Rating}
		if err := a.catalog.UpdateReview(r.Context(), &rev); err != nil {
			handleCatalogError(w, r, err)
			return
		}
		audit.LogEvent(r.Context(), "catalog.review.update", map[string]any{"review_id": path})
		w.WriteHeader(http.StatusNoContent)
	case http.MethodDelete:
		if err := a.catalog.DeleteReview(r.Context(), path); err != nil {
			handleCatalogError(w, r, err)
			return
		}
		audit.LogEvent(r.Context(), "catalog.review.delete", map[string]any{"review_id": path})
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

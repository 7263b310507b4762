package httpapi

import (
	"net/http"
	"strings"

	"bookrack.org/internal/audit"
	"bookrack.org/internal/catalog"
)

type reviewerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func validReviewerName(req reviewerRequest) bool {
	return strings.TrimSpace(req.FirstName) != "" && len(req.FirstName) <= 100 &&
		strings.TrimSpace(req.LastName) != "" && len(req.LastName) <= 100
}

func (a *API) handleReviewersCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		reviewers, err := a.catalog.ListReviewers(r.Context())
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, reviewers)
	case http.MethodPost:
		a.createReviewer(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) createReviewer(w http.ResponseWriter, r *http.Request) {
	var req reviewerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if !validReviewerName(req) {
		writeError(w, r, http.StatusBadRequest, "first_name and last_name are required and must be at most 100 characters")
		return
	}

	rev := catalog.Reviewer{FirstName: req.FirstName, LastName: req.LastName}
	if err := a.catalog.CreateReviewer(r.Context(), &rev); err != nil {
		handleCatalogError(w, r, err)
		return
	}
	audit.LogEvent(r.Context(), "catalog.reviewer.create", map[string]any{"reviewer_id": rev.ID})
	writeJSON(w, http.StatusOK, rev)
}

func (a *API) handleReviewerResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/reviewers/")
	if id, ok := strings.CutSuffix(path, "/reviews"); ok {
		if id == "" || strings.Contains(id, "/") {
			http.NotFound(w, r)
			return
		}
		switch r.Method {
		case http.MethodGet:
			reviews, err := a.catalog.ReviewsByReviewer(r.Context(), id)
			if err != nil {
				handleCatalogError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, reviews)
		case http.MethodDelete:
			if err := a.catalog.DeleteReviewsByReviewer(r.Context(), id); err != nil {
				handleCatalogError(w, r, err)
				return
			}
			audit.LogEvent(r.Context(), "catalog.reviewer.reviews.delete", map[string]any{"reviewer_id": id})
			w.WriteHeader(http.StatusNoContent)
		default:
			methodNotAllowed(w, r, http.MethodGet, http.MethodDelete)
		}
		return
	}
	if path == "" || strings.Contains(path, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		rev, err := a.catalog.GetReviewer(r.Context(), path)
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rev)
	case http.MethodPut:
		var req reviewerRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if !validReviewerName(req) {
			writeError(w, r, http.StatusBadRequest, "first_name and last_name are required and must be at most 100 characters")
			return
		}
		rev := catalog.Reviewer{ID: path, FirstName: req.FirstName, LastName: req.LastName}
		if err := a.catalog.UpdateReviewer(r.Context(), &rev); err != nil {
			handleCatalogError(w, r, err)
			return
		}
		audit.LogEvent(r.Context(), "catalog.reviewer.update", map[string]any{"reviewer_id": path})
		w.WriteHeader(http.StatusNoContent)
	case http.MethodDelete:
		if err := a.catalog.DeleteReviewer(r.Context(), path); err != nil {
			handleCatalogError(w, r, err)
			return
		}
		audit.LogEvent(r.Context(), "catalog.reviewer.delete", map[string]any{"reviewer_id": path})
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

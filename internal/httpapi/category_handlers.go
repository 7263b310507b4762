package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"bookrack.org/internal/audit"
	"bookrack.org/internal/catalog"
)

type categoryRequest struct {
	Name string `json:"name"`
}

func (a *API) handleCategoriesCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		categories, err := a.catalog.ListCategories(r.Context())
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, categories)
	case http.MethodPost:
		a.createCategory(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" || len(req.Name) > 100 {
		writeError(w, r, http.StatusBadRequest, "name is required and must be at most 100 characters")
		return
	}

	c := catalog.Category{Name: req.Name}
	if err := a.catalog.CreateCategory(r.Context(), &c); err != nil {
		if errors.Is(err, catalog.ErrConflict) {
			writeError(w, r, http.StatusBadRequest, "category already exists")
			return
		}
		handleCatalogError(w, r, err)
		return
	}
	audit.LogEvent(r.Context(), "catalog.category.create", map[string]any{"category_id": c.ID})
	writeJSON(w, http.StatusOK, c)
}

func (a *API) handleCategoryResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/categories/")
	if id, ok := strings.CutSuffix(path, "/books"); ok {
		if id == "" || strings.Contains(id, "/") {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		books, err := a.catalog.BooksByCategory(r.Context(), id)
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, books)
		return
	}
	if path == "" || strings.Contains(path, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		c, err := a.catalog.GetCategory(r.Context(), path)
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	case http.MethodPut:
		var req categoryRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if strings.TrimSpace(req.Name) == "" || len(req.Name) > 100 {
			writeError(w, r, http.StatusBadRequest, "name is required and must be at most 100 characters")
			return
		}
		c := catalog.Category{ID: path, Name: req.Name}
		if err := a.catalog.UpdateCategory(r.Context(), &c); err != nil {
			handleCatalogError(w, r, err)
			return
		}
		audit.LogEvent(r.Context(), "catalog.category.update", map[string]any{"category_id": path})
		w.WriteHeader(http.StatusNoContent)
	case http.MethodDelete:
		if err := a.catalog.DeleteCategory(r.Context(), path); err != nil {
			handleCatalogError(w, r, err)
			return
		}
		audit.LogEvent(r.Context(), "catalog.category.delete", map[string]any{"category_id": path})
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

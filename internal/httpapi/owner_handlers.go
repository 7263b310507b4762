package httpapi

import (
	"net/http"
	"strings"

	"bookrack.org/internal/audit"
	"bookrack.org/internal/catalog"
)

type ownerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func validOwnerName(req ownerRequest) bool {
	return strings.TrimSpace(req.FirstName) != "" && len(req.FirstName) <= 100 &&
		strings.TrimSpace(req.LastName) != "" && len(req.LastName) <= 100
}

func (a *API) handleOwnersCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		owners, err := a.catalog.ListOwners(r.Context())
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, owners)
	case http.MethodPost:
		a.createOwner(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) createOwner(w http.ResponseWriter, r *http.Request) {
	countryID := strings.TrimSpace(r.URL.Query().Get("countryId"))
	if countryID == "" {
		writeError(w, r, http.StatusBadRequest, "countryId query parameter is required")
		return
	}
	var req ownerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if !validOwnerName(req) {
		writeError(w, r, http.StatusBadRequest, "first_name and last_name are required and must be at most 100 characters")
		return
	}

	o := catalog.Owner{FirstName: req.FirstName, LastName: req.LastName}
	if err := a.catalog.CreateOwner(r.Context(), countryID, &o); err != nil {
		handleCatalogError(w, r, err)
		return
	}
	audit.LogEvent(r.Context(), "catalog.owner.create", map[string]any{
		"owner_id":   o.ID,
		"country_id": countryID,
	})
	writeJSON(w, http.StatusOK, o)
}

func (a *API) handleOwnerResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/owners/")
	if id, ok := strings.CutSuffix(path, "/books"); ok {
		if id == "" || strings.Contains(id, "/") {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		books, err := a.catalog.BooksByOwner(r.Context(), id)
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
		o, err := a.catalog.GetOwner(r.Context(), path)
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, o)
	case http.MethodPut:
		var req ownerRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if !validOwnerName(req) {
			writeError(w, r, http.StatusBadRequest, "first_name and last_name are required and must be at most 100 characters")
			return
		}
		o := catalog.Owner{ID: path, FirstName: req.FirstName, LastName: req.LastName}
		if err := a.catalog.UpdateOwner(r.Context(), &o); err != nil {
			handleCatalogError(w, r, err)
			return
		}
		audit.LogEvent(r.Context(), "catalog.owner.update", map[string]any{"owner_id": path})
		w.WriteHeader(http.StatusNoContent)
	case http.MethodDelete:
		if err := a.catalog.DeleteOwner(r.Context(), path); err != nil {
			handleCatalogError(w, r, err)
			return
		}
		audit.LogEvent(r.Context(), "catalog.owner.delete", map[string]any{"owner_id": path})
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

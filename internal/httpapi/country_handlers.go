package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"bookrack.org/internal/audit"
	"bookrack.org/internal/catalog"
)

type countryRequest struct {
	Name string `json:"name"`
}

func (a *API) handleCountriesCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		countries, err := a.catalog.ListCountries(r.Context())
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, countries)
	case http.MethodPost:
		a.createCountry(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) createCountry(w http.ResponseWriter, r *http.Request) {
	var req countryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" || len(req.Name) > 100 {
		writeError(w, r, http.StatusBadRequest, "name is required and must be at most 100 characters")
		return
	}

	c := catalog.Country{Name: req.Name}
	if err := a.catalog.CreateCountry(r.Context(), &c); err != nil {
		if errors.Is(err, catalog.ErrConflict) {
			writeError(w, r, http.StatusBadRequest, "country already exists")
			return
		}
		handleCatalogError(w, r, err)
		return
	}
	audit.LogEvent(r.Context(), "catalog.country.create", map[string]any{"country_id": c.ID})
	writeJSON(w, http.StatusOK, c)
}

// handleCountryOfOwner serves /v1/countries/owners/{ownerId}: the country
// the owner belongs to.
func (a *API) handleCountryOfOwner(w http.ResponseWriter, r *http.Request) {
	ownerID := strings.TrimPrefix(r.URL.Path, "/v1/countries/owners/")
	if ownerID == "" || strings.Contains(ownerID, "/") {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	c, err := a.catalog.CountryOfOwner(r.Context(), ownerID)
	if err != nil {
		handleCatalogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) handleCountryResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/countries/")
	if path == "" || strings.Contains(path, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		c, err := a.catalog.GetCountry(r.Context(), path)
		if err != nil {
			handleCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	case http.MethodPut:
		var req countryRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if strings.TrimSpace(req.Name) == "" || len(req.Name) > 100 {
			writeError(w, r, http.StatusBadRequest, "name is required and must be at most 100 characters")
			return
		}
		c := catalog.Country{ID: path, Name: req.Name}
		if err := a.catalog.UpdateCountry(r.Context(), &c); err != nil {
			handleCatalogError(w, r, err)
			return
		}
		audit.LogEvent(r.Context(), "catalog.country.update", map[string]any{"country_id": path})
		w.WriteHeader(http.StatusNoContent)
	case http.MethodDelete:
		if err := a.catalog.DeleteCountry(r.Context(), path); err != nil {
			handleCatalogError(w, r, err)
			return
		}
		audit.LogEvent(r.Context(), "catalog.country.delete", map[string]any{"country_id": path})
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

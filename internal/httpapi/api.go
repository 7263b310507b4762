package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"bookrack.org/internal/auth"
	"bookrack.org/internal/catalog"
	"bookrack.org/internal/obs"
)

// ReadyProbe pings the backing store for the readiness endpoint.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer over the catalog and identity services.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string
	catalog    catalog.Service
	auth       *auth.Service

	rateBurst  int
	ratePerSec int
}

func New(rp ReadyProbe, version string, cat catalog.Service, authSvc *auth.Service) *API {
	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: rp,
		version:    version,
		catalog:    cat,
		auth:       authSvc,
		rateBurst:  20,
		ratePerSec: 10,
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/v1/auth/register", a.handleRegister)
	a.mux.HandleFunc("/v1/auth/login", a.handleLogin)

	a.mux.HandleFunc("/v1/books", a.handleBooksCollection)
	a.mux.HandleFunc("/v1/books/", a.handleBookResource)
	a.mux.HandleFunc("/v1/categories", a.handleCategoriesCollection)
	a.mux.HandleFunc("/v1/categories/", a.handleCategoryResource)
	a.mux.HandleFunc("/v1/owners", a.handleOwnersCollection)
	a.mux.HandleFunc("/v1/owners/", a.handleOwnerResource)
	a.mux.HandleFunc("/v1/countries", a.handleCountriesCollection)
	a.mux.HandleFunc("/v1/countries/", a.handleCountryResource)
	a.mux.HandleFunc("/v1/countries/owners/", a.handleCountryOfOwner)
	a.mux.HandleFunc("/v1/reviewers", a.handleReviewersCollection)
	a.mux.HandleFunc("/v1/reviewers/", a.handleReviewerResource)
	a.mux.HandleFunc("/v1/reviews", a.handleReviewsCollection)
	a.mux.HandleFunc("/v1/reviews/", a.handleReviewResource)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the mux wrapped in the full middleware chain.
func (a *API) Handler() http.Handler {
	h := a.withAuth(a.mux)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = MaxBodyBytes(h, 1<<20)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = Logging(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// --- health handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "bookrack-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "bookrack-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookrack.org/internal/auth"
	"bookrack.org/internal/catalog"
	"bookrack.org/internal/page"
)

type apiClient struct {
	t     *testing.T
	base  string
	token string
}

func newTestServer(t *testing.T) (*httptest.Server, *apiClient) {
	t.Helper()
	t.Setenv("BOOKRACK_AUTH_SECRET", "test-secret-for-httpapi")
	auth.ResetSecretForTests()
	t.Cleanup(auth.ResetSecretForTests)

	a := New(ReadyProbe{}, "test", catalog.NewInMemory(), auth.NewService(auth.NewInMemoryUsers()))
	a.rateBurst = 1000
	a.ratePerSec = 1000
	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)
	return srv, &apiClient{t: t, base: srv.URL}
}

func (c *apiClient) do(method, path string, body any) *http.Response {
	c.t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	return resp
}

func (c *apiClient) post(path string, body any) *http.Response {
	return c.do(http.MethodPost, path, body)
}

func (c *apiClient) get(path string) *http.Response {
	return c.do(http.MethodGet, path, nil)
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (c *apiClient) login(username, password string) {
	c.t.Helper()
	resp := c.post("/v1/auth/register", map[string]string{
		"username":   username,
		"password":   password,
		"first_name": "Test",
		"last_name":  "User",
	})
	require.Equal(c.t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = c.post("/v1/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(c.t, http.StatusOK, resp.StatusCode)
	out := decode[loginResponse](c.t, resp)
	require.NotEmpty(c.t, out.Token)
	c.token = out.Token
}

// seed creates a country, owner, and category, returning their ids.
func (c *apiClient) seed() (ownerID, categoryID string) {
	c.t.Helper()
	country := decode[catalog.Country](c.t, c.post("/v1/countries", map[string]string{"name": "Norway"}))
	owner := decode[catalog.Owner](c.t, c.post("/v1/owners?countryId="+country.ID, map[string]string{
		"first_name": "Jo",
		"last_name":  "Nesbo",
	}))
	cat := decode[catalog.Category](c.t, c.post("/v1/categories", map[string]string{"name": "Crime"}))
	return owner.ID, cat.ID
}

func TestHealthAndInfo(t *testing.T) {
	_, c := newTestServer(t)

	resp := c.get("/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = c.get("/readyz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = c.get("/v1/info")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestMutationsRequireToken(t *testing.T) {
	_, c := newTestServer(t)

	resp := c.post("/v1/countries", map[string]string{"name": "Norway"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Reads stay open without a token.
	resp = c.get("/v1/books")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	c.token = "not-a-real-token"
	resp = c.post("/v1/countries", map[string]string{"name": "Norway"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestRegisterDuplicateUsername(t *testing.T) {
	_, c := newTestServer(t)

	body := map[string]string{"username": "alice", "password": "s3cret-pass"}
	resp := c.post("/v1/auth/register", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	u := decode[userResponse](t, resp)
	assert.Equal(t, "alice", u.Username)

	// Same name with different case and padding collides.
	resp = c.post("/v1/auth/register", map[string]string{"username": " ALICE ", "password": "other-pass"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	out := decode[errorResponse](t, resp)
	assert.Equal(t, "username already exists", out.Error)
}

func TestLoginFailures(t *testing.T) {
	_, c := newTestServer(t)

	resp := c.post("/v1/auth/login", map[string]string{"username": "ghost", "password": "whatever"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	out := decode[errorResponse](t, resp)
	assert.Equal(t, "user not found", out.Error)

	resp = c.post("/v1/auth/register", map[string]string{"username": "bob", "password": "correct-pass"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = c.post("/v1/auth/login", map[string]string{"username": "bob", "password": "wrong-pass"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	out = decode[errorResponse](t, resp)
	assert.Equal(t, "wrong password", out.Error)
}

func TestLoginResponseNeverLeaksCredential(t *testing.T) {
	_, c := newTestServer(t)

	resp := c.post("/v1/auth/register", map[string]string{"username": "carol", "password": "s3cret-pass"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hash")
	assert.NotContains(t, string(raw), "salt")
	assert.NotContains(t, string(raw), "s3cret-pass")
}

func TestBookLifecycle(t *testing.T) {
	_, c := newTestServer(t)
	c.login("writer", "strong-password")
	ownerID, categoryID := c.seed()

	resp := c.post(fmt.Sprintf("/v1/books?ownerId=%s&categoryId=%s", ownerID, categoryID), map[string]any{
		"title":          "The Snowman",
		"published_date": time.Date(2007, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	book := decode[catalog.Book](t, resp)
	require.NotEmpty(t, book.ID)

	resp = c.get("/v1/books/" + book.ID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[catalog.Book](t, resp)
	assert.Equal(t, "The Snowman", got.Title)

	// Duplicate title, case and padding insensitive.
	resp = c.post(fmt.Sprintf("/v1/books?ownerId=%s&categoryId=%s", ownerID, categoryID), map[string]any{
		"title": "  the snowman  ",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	out := decode[errorResponse](t, resp)
	assert.Equal(t, "book already exists", out.Error)

	// Relation listings see the new book.
	books := decode[[]catalog.Book](t, c.get("/v1/owners/"+ownerID+"/books"))
	require.Len(t, books, 1)
	books = decode[[]catalog.Book](t, c.get("/v1/categories/"+categoryID+"/books"))
	require.Len(t, books, 1)

	resp = c.do(http.MethodDelete, "/v1/books/"+book.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = c.get("/v1/books/" + book.ID)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestCreateBookMissingReferent(t *testing.T) {
	_, c := newTestServer(t)
	c.login("writer", "strong-password")
	_, categoryID := c.seed()

	resp := c.post("/v1/books?ownerId=no-such-owner&categoryId="+categoryID, map[string]any{
		"title": "Orphan Book",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// Nothing was committed: the catalog is still empty.
	books := decode[[]catalog.Book](t, c.get("/v1/books"))
	assert.Empty(t, books)
}

func TestListBooksPaginationHeader(t *testing.T) {
	_, c := newTestServer(t)
	c.login("writer", "strong-password")
	ownerID, categoryID := c.seed()

	for i := 0; i < 5; i++ {
		resp := c.post(fmt.Sprintf("/v1/books?ownerId=%s&categoryId=%s", ownerID, categoryID), map[string]any{
			"title": fmt.Sprintf("Book %d", i),
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	resp := c.get("/v1/books?pageNumber=2&pageSize=2")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var meta page.Metadata
	require.NoError(t, json.Unmarshal([]byte(resp.Header.Get("X-Pagination")), &meta))
	assert.Equal(t, 2, meta.CurrentPage)
	assert.Equal(t, 2, meta.PageSize)
	assert.Equal(t, 5, meta.TotalCount)
	assert.Equal(t, 3, meta.TotalPages)

	books := decode[[]catalog.Book](t, resp)
	assert.Len(t, books, 2)

	// A page past the end is empty but keeps the unfiltered totals.
	resp = c.get("/v1/books?pageNumber=9&pageSize=2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal([]byte(resp.Header.Get("X-Pagination")), &meta))
	assert.Equal(t, 5, meta.TotalCount)
	books = decode[[]catalog.Book](t, resp)
	assert.Empty(t, books)
}

func TestReviewFlowAndRating(t *testing.T) {
	_, c := newTestServer(t)
	c.login("writer", "strong-password")
	ownerID, categoryID := c.seed()

	book := decode[catalog.Book](t, c.post(
		fmt.Sprintf("/v1/books?ownerId=%s&categoryId=%s", ownerID, categoryID),
		map[string]any{"title": "Nemesis"},
	))
	reviewer := decode[catalog.Reviewer](t, c.post("/v1/reviewers", map[string]string{
		"first_name": "Rita",
		"last_name":  "Reader",
	}))

	for i, rating := range []int{4, 4, 3} {
		resp := c.post(fmt.Sprintf("/v1/reviews?reviewerId=%s&bookId=%s", reviewer.ID, book.ID), map[string]any{
			"title":  fmt.Sprintf("Take %d", i),
			"text":   "worth reading",
			"rating": rating,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	// Duplicate review title is a 422.
	resp := c.post(fmt.Sprintf("/v1/reviews?reviewerId=%s&bookId=%s", reviewer.ID, book.ID), map[string]any{
		"title":  " take 0 ",
		"text":   "again",
		"rating": 5,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	out := decode[errorResponse](t, resp)
	assert.Equal(t, "review already exists", out.Error)

	// 11/3 presented at four decimal places.
	got := decode[ratingResponse](t, c.get("/v1/books/"+book.ID+"/rating"))
	assert.Equal(t, "3.6667", got.Rating)

	reviews := decode[[]catalog.Review](t, c.get("/v1/books/"+book.ID+"/reviews"))
	assert.Len(t, reviews, 3)

	// Dropping the reviewer's reviews resets the aggregate to zero.
	resp = c.do(http.MethodDelete, "/v1/reviewers/"+reviewer.ID+"/reviews", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	got = decode[ratingResponse](t, c.get("/v1/books/"+book.ID+"/rating"))
	assert.Equal(t, "0.0000", got.Rating)
}

func TestCountryOfOwner(t *testing.T) {
	_, c := newTestServer(t)
	c.login("writer", "strong-password")
	ownerID, _ := c.seed()

	country := decode[catalog.Country](t, c.get("/v1/countries/owners/"+ownerID))
	assert.Equal(t, "Norway", country.Name)

	resp := c.get("/v1/countries/owners/no-such-owner")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestValidationErrors(t *testing.T) {
	_, c := newTestServer(t)
	c.login("writer", "strong-password")
	ownerID, categoryID := c.seed()

	// Missing query params.
	resp := c.post("/v1/books", map[string]any{"title": "No Links"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Blank title.
	resp = c.post(fmt.Sprintf("/v1/books?ownerId=%s&categoryId=%s", ownerID, categoryID), map[string]any{
		"title": "   ",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Unknown json field is rejected.
	resp = c.post("/v1/categories", map[string]any{"name": "Drama", "bogus": true})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Rating out of range.
	resp = c.post("/v1/reviews?reviewerId=x&bookId=y", map[string]any{
		"title":  "Bad",
		"text":   "text",
		"rating": 6,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Bad pagination parameter.
	resp = c.get("/v1/books?pageSize=0")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestRequestIDPropagation(t *testing.T) {
	_, c := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, c.base+"/v1/books", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-Id", "req-42")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "req-42", resp.Header.Get("X-Request-Id"))

	// Without a caller-supplied id one is generated.
	resp2 := c.get("/v1/books")
	defer resp2.Body.Close()
	assert.NotEmpty(t, resp2.Header.Get("X-Request-Id"))
}

func TestMethodNotAllowed(t *testing.T) {
	_, c := newTestServer(t)
	c.login("writer", "strong-password")

	resp := c.do(http.MethodPut, "/v1/auth/login", map[string]string{})
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, http.MethodPost, resp.Header.Get("Allow"))
	resp.Body.Close()

	resp = c.do(http.MethodDelete, "/v1/books", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	resp.Body.Close()
}

package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"bookrack.org/internal/audit"
	"bookrack.org/internal/auth"
)

type registerRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Username) == "" || len(req.Username) > 64 {
		writeError(w, r, http.StatusBadRequest, "username is required and must be at most 64 characters")
		return
	}
	if req.Password == "" || len(req.Password) > 128 {
		writeError(w, r, http.StatusBadRequest, "password is required and must be at most 128 characters")
		return
	}

	u, err := a.auth.Register(r.Context(), req.Username, req.Password, req.FirstName, req.LastName)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrUserExists):
		writeError(w, r, http.StatusBadRequest, "username already exists")
		return
	case errors.Is(err, auth.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	audit.LogEvent(r.Context(), "auth.user.register", map[string]any{
		"user_id":  u.ID,
		"username": u.Username,
	})
	writeJSON(w, http.StatusOK, userResponse{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	token, expires, err := a.auth.Login(r.Context(), req.Username, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrUserNotFound):
		writeError(w, r, http.StatusBadRequest, "user not found")
		return
	case errors.Is(err, auth.ErrWrongPassword):
		writeError(w, r, http.StatusBadRequest, "wrong password")
		return
	case errors.Is(err, auth.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	audit.LogEvent(r.Context(), "auth.user.login", map[string]any{
		"username": req.Username,
	})
	writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expires})
}

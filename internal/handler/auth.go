package handler

import (
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/msomdec/library-catalog/internal/domain"
	"github.com/msomdec/library-catalog/internal/service"
)

// AuthHandler handles user registration, login, and identity lookups.
type AuthHandler struct {
	auth    *service.AuthService
	limiter *service.RateLimiter
}

// NewAuthHandler creates a new AuthHandler. The limiter throttles the
// credential endpoints per client address.
func NewAuthHandler(auth *service.AuthService, limiter *service.RateLimiter) *AuthHandler {
	return &AuthHandler{auth: auth, limiter: limiter}
}

// HandleCreateUser registers a new user. No authentication required.
// POST /api/users
// Request:  {"username":"...","password":"...","favoriteGenre":"..."}
// Response: {"user": {...}}
func (h *AuthHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Allow(clientAddr(r)) {
		writeError(w, http.StatusTooManyRequests, "Too many requests. Try again later.")
		return
	}

	var req struct {
		Username      string `json:"username"`
		Password      string `json:"password"`
		FavoriteGenre string `json:"favoriteGenre"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, err := h.auth.CreateUser(r.Context(), req.Username, req.Password, req.FavoriteGenre)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) {
			writeError(w, http.StatusConflict, "That username is already taken.")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.Error("create user", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user": toUserDTO(user),
	})
}

// HandleLogin verifies credentials and returns a signed bearer token.
// POST /api/login
// Request:  {"username":"...","password":"..."}
// Response: {"token": {"value":"..."}}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Allow(clientAddr(r)) {
		writeError(w, http.StatusTooManyRequests, "Too many requests. Try again later.")
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	token, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid username or password.")
			return
		}
		slog.Error("login user", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": TokenDTO{Value: token},
	})
}

// HandleMe returns the caller's resolved identity, or null for anonymous
// callers. Never an error; identity is optional here.
// GET /api/me
// Response: {"user": {...} | null}
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeJSON(w, http.StatusOK, map[string]any{"user": nil})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": toUserDTO(user),
	})
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

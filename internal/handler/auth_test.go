package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/msomdec/library-catalog/internal/handler"
	"github.com/msomdec/library-catalog/internal/service"
)

func newTestMux(t *testing.T) (*http.ServeMux, *service.AuthService, *service.CatalogService, *service.Broadcaster) {
	t.Helper()
	auth, catalog, events, _ := newTestServices(t)
	mux := http.NewServeMux()
	limiter := service.NewRateLimiter(100, 100)
	handler.RegisterRoutes(mux, auth, catalog, events, limiter)
	return mux, auth, catalog, events
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestHandleCreateUser(t *testing.T) {
	mux, _, _, _ := newTestMux(t)

	w := doJSON(t, mux, http.MethodPost, "/api/users", "", map[string]any{
		"username":      "mluukkai",
		"password":      "secretpassword",
		"favoriteGenre": "refactoring",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	user, ok := body["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user object, got %v", body)
	}
	if user["username"] != "mluukkai" || user["favoriteGenre"] != "refactoring" {
		t.Fatalf("unexpected user: %v", user)
	}
	if _, leaked := user["passwordHash"]; leaked {
		t.Fatal("password hash must not be serialized")
	}
}

func TestHandleCreateUser_Duplicate(t *testing.T) {
	mux, _, _, _ := newTestMux(t)

	payload := map[string]any{"username": "dup", "password": "pw123456", "favoriteGenre": "crime"}
	if w := doJSON(t, mux, http.MethodPost, "/api/users", "", payload); w.Code != http.StatusCreated {
		t.Fatalf("first create: expected 201, got %d", w.Code)
	}
	if w := doJSON(t, mux, http.MethodPost, "/api/users", "", payload); w.Code != http.StatusConflict {
		t.Fatalf("second create: expected 409, got %d", w.Code)
	}
}

func TestHandleLogin(t *testing.T) {
	mux, _, _, _ := newTestMux(t)

	doJSON(t, mux, http.MethodPost, "/api/users", "", map[string]any{
		"username": "reader", "password": "password123", "favoriteGenre": "crime",
	})

	w := doJSON(t, mux, http.MethodPost, "/api/login", "", map[string]any{
		"username": "reader", "password": "password123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	token, ok := body["token"].(map[string]any)
	if !ok {
		t.Fatalf("expected token object, got %v", body)
	}
	if value, _ := token["value"].(string); value == "" {
		t.Fatalf("expected token value, got %v", body)
	}
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	mux, _, _, _ := newTestMux(t)

	doJSON(t, mux, http.MethodPost, "/api/users", "", map[string]any{
		"username": "reader", "password": "password123", "favoriteGenre": "crime",
	})

	wrongPw := doJSON(t, mux, http.MethodPost, "/api/login", "", map[string]any{
		"username": "reader", "password": "wrong",
	})
	unknown := doJSON(t, mux, http.MethodPost, "/api/login", "", map[string]any{
		"username": "ghost", "password": "password123",
	})

	if wrongPw.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for both failures, got %d and %d", wrongPw.Code, unknown.Code)
	}
	// Identical bodies: the caller cannot tell which check failed.
	if wrongPw.Body.String() != unknown.Body.String() {
		t.Fatalf("login failures leak which check failed: %q vs %q", wrongPw.Body.String(), unknown.Body.String())
	}
}

func TestHandleMe(t *testing.T) {
	mux, auth, _, _ := newTestMux(t)
	token := registerAndLogin(t, auth, "meuser")

	w := doJSON(t, mux, http.MethodGet, "/api/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	user, ok := body["user"].(map[string]any)
	if !ok || user["username"] != "meuser" {
		t.Fatalf("expected meuser, got %v", body)
	}
}

func TestHandleMe_Anonymous(t *testing.T) {
	mux, _, _, _ := newTestMux(t)

	w := doJSON(t, mux, http.MethodGet, "/api/me", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["user"] != nil {
		t.Fatalf("expected null user, got %v", body["user"])
	}
}

func TestLoginRateLimited(t *testing.T) {
	auth, catalog, events, _ := newTestServices(t)
	mux := http.NewServeMux()
	// Tiny burst so the limit trips quickly.
	handler.RegisterRoutes(mux, auth, catalog, events, service.NewRateLimiter(0, 2))

	payload := map[string]any{"username": "x", "password": "y"}
	doJSON(t, mux, http.MethodPost, "/api/login", "", payload)
	doJSON(t, mux, http.MethodPost, "/api/login", "", payload)

	w := doJSON(t, mux, http.MethodPost, "/api/login", "", payload)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", w.Code)
	}
}

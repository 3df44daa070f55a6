package handler

import (
	"net/http"

	"github.com/msomdec/library-catalog/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux. Every /api route
// passes through WithUser so handlers see the caller's resolved identity, or
// none.
func RegisterRoutes(mux *http.ServeMux, auth *service.AuthService, catalog *service.CatalogService, events *service.Broadcaster, limiter *service.RateLimiter) {
	authHandler := NewAuthHandler(auth, limiter)
	catalogHandler := NewCatalogHandler(catalog)
	subscriptions := NewSubscriptionHandler(events)

	withUser := func(h http.HandlerFunc) http.Handler {
		return WithUser(auth, h)
	}

	mux.HandleFunc("GET /healthz", HandleHealthz)

	mux.Handle("POST /api/users", withUser(authHandler.HandleCreateUser))
	mux.Handle("POST /api/login", withUser(authHandler.HandleLogin))
	mux.Handle("GET /api/me", withUser(authHandler.HandleMe))

	mux.Handle("GET /api/books/count", withUser(catalogHandler.HandleBookCount))
	mux.Handle("GET /api/books", withUser(catalogHandler.HandleAllBooks))
	mux.Handle("POST /api/books", withUser(catalogHandler.HandleAddBook))
	mux.Handle("GET /api/authors/count", withUser(catalogHandler.HandleAuthorCount))
	mux.Handle("GET /api/authors", withUser(catalogHandler.HandleAllAuthors))
	mux.Handle("PATCH /api/authors/{name}", withUser(catalogHandler.HandleEditAuthor))

	mux.HandleFunc("GET /api/subscriptions/book-added", subscriptions.HandleBookAdded)
}

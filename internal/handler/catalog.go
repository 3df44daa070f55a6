package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/library-catalog/internal/domain"
	"github.com/msomdec/library-catalog/internal/service"
)

// CatalogHandler exposes the catalog queries and mutations over HTTP.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// HandleBookCount returns the total number of books.
// GET /api/books/count
// Response: {"bookCount": N}
func (h *CatalogHandler) HandleBookCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.catalog.BookCount(r.Context())
	if err != nil {
		slog.Error("count books", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"bookCount": count})
}

// HandleAuthorCount returns the total number of authors.
// GET /api/authors/count
// Response: {"authorCount": N}
func (h *CatalogHandler) HandleAuthorCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.catalog.AuthorCount(r.Context())
	if err != nil {
		slog.Error("count authors", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"authorCount": count})
}

// HandleAllBooks lists books, optionally filtered by author and/or genre.
// GET /api/books?author=NAME&genre=GENRE
// Response: {"books": [...]}
func (h *CatalogHandler) HandleAllBooks(w http.ResponseWriter, r *http.Request) {
	authorName := r.URL.Query().Get("author")
	genre := r.URL.Query().Get("genre")

	books, err := h.catalog.AllBooks(r.Context(), authorName, genre)
	if err != nil {
		slog.Error("list books", "author", authorName, "genre", genre, "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"books": toBookDTOs(books),
	})
}

// HandleAllAuthors lists every author with its current book count.
// GET /api/authors
// Response: {"authors": [...]}
func (h *CatalogHandler) HandleAllAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := h.catalog.AllAuthors(r.Context())
	if err != nil {
		slog.Error("list authors", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"authors": toAuthorWithCountDTOs(authors),
	})
}

// HandleAddBook creates a book, creating its author on first use. Requires a
// logged-in caller.
// POST /api/books
// Request:  {"title":"...","author":"...","published":N,"genres":[...]}
// Response: {"book": {...}}
func (h *CatalogHandler) HandleAddBook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title     string   `json:"title"`
		Author    string   `json:"author"`
		Published int      `json:"published"`
		Genres    []string `json:"genres"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user := UserFromContext(r.Context())
	book, err := h.catalog.AddBook(r.Context(), user, req.Title, req.Author, req.Published, req.Genres)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthenticated):
			writeError(w, http.StatusUnauthorized, "You need to be logged in to add a book.")
		case errors.Is(err, domain.ErrDuplicateTitle):
			writeError(w, http.StatusConflict, "A book with that title already exists.")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			slog.Error("add book", "title", req.Title, "error", err)
			writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"book": toBookDTO(*book),
	})
}

// HandleEditAuthor sets an author's birth year. Requires a logged-in caller.
// PATCH /api/authors/{name}
// Request:  {"setBornTo": YEAR}
// Response: {"author": {...}}
func (h *CatalogHandler) HandleEditAuthor(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req struct {
		SetBornTo int `json:"setBornTo"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user := UserFromContext(r.Context())
	author, err := h.catalog.EditAuthor(r.Context(), user, name, req.SetBornTo)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthenticated):
			writeError(w, http.StatusUnauthorized, "You need to be logged in to edit an author.")
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "Author not found.")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			slog.Error("edit author", "name", name, "error", err)
			writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"author": toAuthorDTO(author),
	})
}

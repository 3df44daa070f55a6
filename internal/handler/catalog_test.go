package handler_test

import (
	"net/http"
	"testing"
)

func addBook(t *testing.T, mux *http.ServeMux, token, title, author string, published int, genres []string) *map[string]any {
	t.Helper()
	w := doJSON(t, mux, http.MethodPost, "/api/books", token, map[string]any{
		"title": title, "author": author, "published": published, "genres": genres,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add book %q: expected 201, got %d: %s", title, w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	return &body
}

func TestHandleAddBook(t *testing.T) {
	mux, auth, _, _ := newTestMux(t)
	token := registerAndLogin(t, auth, "writer")

	body := addBook(t, mux, token, "Dune", "Frank Herbert", 1965, []string{"classic", "sci-fi"})
	book, ok := (*body)["book"].(map[string]any)
	if !ok {
		t.Fatalf("expected book object, got %v", *body)
	}
	if book["title"] != "Dune" || book["published"] != float64(1965) {
		t.Fatalf("unexpected book: %v", book)
	}
	author, ok := book["author"].(map[string]any)
	if !ok || author["name"] != "Frank Herbert" {
		t.Fatalf("expected joined author, got %v", book["author"])
	}
	genres, ok := book["genres"].([]any)
	if !ok || len(genres) != 2 || genres[0] != "classic" || genres[1] != "sci-fi" {
		t.Fatalf("expected ordered genres, got %v", book["genres"])
	}
}

func TestHandleAddBook_Unauthenticated(t *testing.T) {
	mux, _, _, _ := newTestMux(t)

	w := doJSON(t, mux, http.MethodPost, "/api/books", "", map[string]any{
		"title": "Dune", "author": "Frank Herbert", "published": 1965,
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestHandleAddBook_InvalidTokenIsUnauthenticated(t *testing.T) {
	mux, _, _, _ := newTestMux(t)

	// An invalid token yields an anonymous context; the mutation gate then
	// rejects the anonymous caller.
	w := doJSON(t, mux, http.MethodPost, "/api/books", "garbage-token", map[string]any{
		"title": "Dune", "author": "Frank Herbert", "published": 1965,
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestHandleAddBook_DuplicateTitle(t *testing.T) {
	mux, auth, _, _ := newTestMux(t)
	token := registerAndLogin(t, auth, "writer")

	addBook(t, mux, token, "Dune", "Frank Herbert", 1965, nil)

	w := doJSON(t, mux, http.MethodPost, "/api/books", token, map[string]any{
		"title": "Dune", "author": "Somebody Else", "published": 2000,
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestHandleAllBooks_Filtering(t *testing.T) {
	mux, auth, _, _ := newTestMux(t)
	token := registerAndLogin(t, auth, "writer")

	addBook(t, mux, token, "Dune", "Frank Herbert", 1965, []string{"classic", "sci-fi"})
	addBook(t, mux, token, "The Hobbit", "J.R.R. Tolkien", 1937, []string{"classic", "fantasy"})

	tests := []struct {
		name string
		path string
		want int
	}{
		{"all", "/api/books", 2},
		{"by author", "/api/books?author=Frank+Herbert", 1},
		{"by genre", "/api/books?genre=classic", 2},
		{"by author and genre", "/api/books?author=Frank+Herbert&genre=classic", 1},
		{"unknown author", "/api/books?author=Nobody", 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, mux, http.MethodGet, tc.path, "", nil)
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", w.Code)
			}
			body := decodeBody(t, w)
			books, ok := body["books"].([]any)
			if !ok {
				t.Fatalf("expected books array, got %v", body)
			}
			if len(books) != tc.want {
				t.Fatalf("expected %d books, got %d", tc.want, len(books))
			}
		})
	}
}

func TestHandleCounts(t *testing.T) {
	mux, auth, _, _ := newTestMux(t)
	token := registerAndLogin(t, auth, "writer")

	addBook(t, mux, token, "Dune", "Frank Herbert", 1965, nil)
	addBook(t, mux, token, "Dune Messiah", "Frank Herbert", 1969, nil)

	w := doJSON(t, mux, http.MethodGet, "/api/books/count", "", nil)
	if got := decodeBody(t, w)["bookCount"]; got != float64(2) {
		t.Fatalf("expected bookCount 2, got %v", got)
	}

	w = doJSON(t, mux, http.MethodGet, "/api/authors/count", "", nil)
	if got := decodeBody(t, w)["authorCount"]; got != float64(1) {
		t.Fatalf("expected authorCount 1, got %v", got)
	}
}

func TestHandleAllAuthors(t *testing.T) {
	mux, auth, _, _ := newTestMux(t)
	token := registerAndLogin(t, auth, "writer")

	addBook(t, mux, token, "Dune", "Frank Herbert", 1965, nil)
	addBook(t, mux, token, "Dune Messiah", "Frank Herbert", 1969, nil)

	w := doJSON(t, mux, http.MethodGet, "/api/authors", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	authors, ok := body["authors"].([]any)
	if !ok || len(authors) != 1 {
		t.Fatalf("expected 1 author, got %v", body)
	}
	author := authors[0].(map[string]any)
	if author["name"] != "Frank Herbert" || author["bookCount"] != float64(2) {
		t.Fatalf("unexpected author: %v", author)
	}
}

func TestHandleEditAuthor(t *testing.T) {
	mux, auth, _, _ := newTestMux(t)
	token := registerAndLogin(t, auth, "writer")

	addBook(t, mux, token, "Dune", "Frank Herbert", 1965, nil)

	w := doJSON(t, mux, http.MethodPatch, "/api/authors/Frank%20Herbert", token, map[string]any{
		"setBornTo": 1920,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	author, ok := body["author"].(map[string]any)
	if !ok || author["born"] != float64(1920) {
		t.Fatalf("expected born 1920, got %v", body)
	}
}

func TestHandleEditAuthor_NotFound(t *testing.T) {
	mux, auth, _, _ := newTestMux(t)
	token := registerAndLogin(t, auth, "writer")

	w := doJSON(t, mux, http.MethodPatch, "/api/authors/Unknown", token, map[string]any{
		"setBornTo": 1999,
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestHandleEditAuthor_Unauthenticated(t *testing.T) {
	mux, auth, _, _ := newTestMux(t)
	token := registerAndLogin(t, auth, "writer")

	addBook(t, mux, token, "Dune", "Frank Herbert", 1965, nil)

	w := doJSON(t, mux, http.MethodPatch, "/api/authors/Frank%20Herbert", "", map[string]any{
		"setBornTo": 1920,
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

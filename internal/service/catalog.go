package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/msomdec/library-catalog/internal/domain"
)

// CatalogService answers catalog queries and applies catalog mutations.
// Mutations gate on the caller's resolved identity; the gating itself lives
// here, not in the transport.
type CatalogService struct {
	authors domain.AuthorRepository
	books   domain.BookRepository
	events  *Broadcaster
}

// NewCatalogService creates a new CatalogService publishing on the given
// broadcaster.
func NewCatalogService(authors domain.AuthorRepository, books domain.BookRepository, events *Broadcaster) *CatalogService {
	return &CatalogService{
		authors: authors,
		books:   books,
		events:  events,
	}
}

// BookCount returns the total number of books.
func (s *CatalogService) BookCount(ctx context.Context) (int, error) {
	return s.books.Count(ctx)
}

// AuthorCount returns the total number of authors.
func (s *CatalogService) AuthorCount(ctx context.Context) (int, error) {
	return s.authors.Count(ctx)
}

// AllBooks lists books, optionally narrowed by author name and/or genre.
// An author name that does not resolve yields an empty result rather than an
// error. Every returned book carries its author joined in.
func (s *CatalogService) AllBooks(ctx context.Context, authorName, genre string) ([]domain.BookWithAuthor, error) {
	filter := domain.BookFilter{Genre: genre}

	if authorName != "" {
		author, err := s.authors.GetByName(ctx, authorName)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return []domain.BookWithAuthor{}, nil
			}
			return nil, fmt.Errorf("resolve author: %w", err)
		}
		filter.AuthorID = &author.ID
	}

	books, err := s.books.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	return s.joinAuthors(ctx, books)
}

// AllAuthors lists every author with its book count. The count is recomputed
// on every read with one count query per author; fine at this scale.
func (s *CatalogService) AllAuthors(ctx context.Context) ([]domain.AuthorWithBookCount, error) {
	authors, err := s.authors.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}

	result := make([]domain.AuthorWithBookCount, len(authors))
	for i, a := range authors {
		count, err := s.books.CountByAuthor(ctx, a.ID)
		if err != nil {
			return nil, fmt.Errorf("count books for author %q: %w", a.Name, err)
		}
		result[i] = domain.AuthorWithBookCount{Author: a, BookCount: count}
	}
	return result, nil
}

// AddBook creates a book for a logged-in user, creating its author on first
// use. The author is persisted before the book so a saved book can never
// reference an unsaved author; if the book insert then fails, a just-created
// author is deleted again. On success the joined book is published on the
// BOOK_ADDED topic before it is returned.
func (s *CatalogService) AddBook(ctx context.Context, user *domain.User, title, authorName string, published int, genres []string) (*domain.BookWithAuthor, error) {
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	if title == "" || authorName == "" {
		return nil, fmt.Errorf("%w: title and author are required", domain.ErrInvalidInput)
	}

	_, err := s.books.GetByTitle(ctx, title)
	if err == nil {
		return nil, domain.ErrDuplicateTitle
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check title: %w", err)
	}

	author, created, err := s.findOrCreateAuthor(ctx, authorName)
	if err != nil {
		return nil, err
	}

	book := &domain.Book{
		Title:     title,
		AuthorID:  author.ID,
		Published: published,
		Genres:    genres,
	}

	if err := s.books.Create(ctx, book); err != nil {
		if created {
			// Roll back the author created for this book so a failed insert
			// doesn't leave an empty author behind.
			if delErr := s.authors.Delete(ctx, author.ID); delErr != nil {
				slog.Error("remove author after failed book insert", "author", author.Name, "error", delErr)
			}
		}
		if errors.Is(err, domain.ErrDuplicateTitle) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	joined := domain.BookWithAuthor{Book: *book, Author: *author}
	s.events.Publish(TopicBookAdded, joined)
	return &joined, nil
}

// findOrCreateAuthor resolves an author by name, creating it when absent.
// Two concurrent calls for the same new name are settled by the unique
// constraint on the name column: the loser re-fetches the winner's row.
func (s *CatalogService) findOrCreateAuthor(ctx context.Context, name string) (*domain.Author, bool, error) {
	author, err := s.authors.GetByName(ctx, name)
	if err == nil {
		return author, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("get author: %w", err)
	}

	author = &domain.Author{Name: name}
	if err := s.authors.Create(ctx, author); err != nil {
		if errors.Is(err, domain.ErrDuplicateAuthor) {
			existing, getErr := s.authors.GetByName(ctx, name)
			if getErr != nil {
				return nil, false, fmt.Errorf("get author after create race: %w", getErr)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("create author: %w", err)
	}
	return author, true, nil
}

// EditAuthor sets an author's birth year for a logged-in user.
func (s *CatalogService) EditAuthor(ctx context.Context, user *domain.User, name string, setBornTo int) (*domain.Author, error) {
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}

	author, err := s.authors.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get author: %w", err)
	}

	author.Born = &setBornTo
	if err := s.authors.Update(ctx, author); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return author, nil
}

// joinAuthors attaches each book's author, loading every distinct author once.
func (s *CatalogService) joinAuthors(ctx context.Context, books []domain.Book) ([]domain.BookWithAuthor, error) {
	byID := make(map[int64]*domain.Author)
	result := make([]domain.BookWithAuthor, len(books))

	for i, b := range books {
		author, ok := byID[b.AuthorID]
		if !ok {
			loaded, err := s.authors.GetByID(ctx, b.AuthorID)
			if err != nil {
				return nil, fmt.Errorf("load author %d: %w", b.AuthorID, err)
			}
			byID[b.AuthorID] = loaded
			author = loaded
		}
		result[i] = domain.BookWithAuthor{Book: b, Author: *author}
	}
	return result, nil
}

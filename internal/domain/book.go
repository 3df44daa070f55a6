package domain

import (
	"context"
	"time"
)

// Book represents a catalogued book. The relation to its author is by id,
// never embedded. Genres is an ordered sequence and may be empty.
type Book struct {
	ID        int64
	Title     string
	AuthorID  int64
	Published int
	Genres    []string
	CreatedAt time.Time
}

// BookWithAuthor is the read projection returned to callers: the book with
// its author's name and born year joined in.
type BookWithAuthor struct {
	Book
	Author Author
}

// BookFilter narrows a book listing. A nil AuthorID and empty Genre mean no
// restriction on that axis.
type BookFilter struct {
	AuthorID *int64
	Genre    string
}

// BookRepository defines persistence operations for books.
type BookRepository interface {
	Create(ctx context.Context, book *Book) error
	GetByTitle(ctx context.Context, title string) (*Book, error)
	List(ctx context.Context, filter BookFilter) ([]Book, error)
	Count(ctx context.Context) (int, error)
	CountByAuthor(ctx context.Context, authorID int64) (int, error)
}

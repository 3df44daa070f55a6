package domain

import (
	"context"
	"time"
)

// Author represents a book author. Name is the stable lookup key; Born may
// remain unset for authors created implicitly by their first book.
type Author struct {
	ID        int64
	Name      string
	Born      *int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AuthorWithBookCount pairs an author with the number of books referencing it.
// The count is computed at read time, never stored.
type AuthorWithBookCount struct {
	Author
	BookCount int
}

// AuthorRepository defines persistence operations for authors.
type AuthorRepository interface {
	Create(ctx context.Context, author *Author) error
	GetByID(ctx context.Context, id int64) (*Author, error)
	GetByName(ctx context.Context, name string) (*Author, error)
	List(ctx context.Context) ([]Author, error)
	Update(ctx context.Context, author *Author) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

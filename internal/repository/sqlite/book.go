package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/library-catalog/internal/domain"
)

// BookRepository implements domain.BookRepository using SQLite.
// Genres live in a separate book_genres table keyed by sort order so the
// sequence round-trips in the order it was written.
type BookRepository struct {
	db *sql.DB
}

func (r *BookRepository) Create(ctx context.Context, book *domain.Book) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx,
		`INSERT INTO books (title, author_id, published, created_at)
		 VALUES (?, ?, ?, ?)`,
		book.Title, book.AuthorID, book.Published, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrDuplicateTitle
		}
		return fmt.Errorf("insert book: %w", err)
	}

	bookID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get book id: %w", err)
	}

	for i, genre := range book.Genres {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO book_genres (book_id, sort_order, genre) VALUES (?, ?, ?)`,
			bookID, i, genre,
		); err != nil {
			return fmt.Errorf("insert genre %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	book.ID = bookID
	book.CreatedAt = now
	return nil
}

func (r *BookRepository) GetByTitle(ctx context.Context, title string) (*domain.Book, error) {
	book := &domain.Book{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, author_id, published, created_at FROM books WHERE title = ?`, title,
	).Scan(&book.ID, &book.Title, &book.AuthorID, &book.Published, &book.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query book by title: %w", err)
	}

	genres, err := r.loadGenres(ctx, book.ID)
	if err != nil {
		return nil, err
	}
	book.Genres = genres
	return book, nil
}

func (r *BookRepository) List(ctx context.Context, filter domain.BookFilter) ([]domain.Book, error) {
	query := `SELECT id, title, author_id, published, created_at FROM books`
	var conds []string
	var args []any

	if filter.AuthorID != nil {
		conds = append(conds, "author_id = ?")
		args = append(args, *filter.AuthorID)
	}
	if filter.Genre != "" {
		conds = append(conds, "EXISTS (SELECT 1 FROM book_genres WHERE book_id = books.id AND genre = ?)")
		args = append(args, filter.Genre)
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		var b domain.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.AuthorID, &b.Published, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range books {
		genres, err := r.loadGenres(ctx, books[i].ID)
		if err != nil {
			return nil, err
		}
		books[i].Genres = genres
	}
	return books, nil
}

func (r *BookRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM books").Scan(&count); err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return count, nil
}

func (r *BookRepository) CountByAuthor(ctx context.Context, authorID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM books WHERE author_id = ?", authorID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count books by author: %w", err)
	}
	return count, nil
}

func (r *BookRepository) loadGenres(ctx context.Context, bookID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT genre FROM book_genres WHERE book_id = ? ORDER BY sort_order`, bookID)
	if err != nil {
		return nil, fmt.Errorf("load genres: %w", err)
	}
	defer rows.Close()

	var genres []string
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

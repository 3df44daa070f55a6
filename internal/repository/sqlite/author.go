package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/library-catalog/internal/domain"
)

// AuthorRepository implements domain.AuthorRepository using SQLite.
type AuthorRepository struct {
	db *sql.DB
}

func (r *AuthorRepository) Create(ctx context.Context, author *domain.Author) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO authors (name, born, created_at, updated_at)
		 VALUES (?, ?, ?, ?)`,
		author.Name, author.Born, now, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrDuplicateAuthor
		}
		return fmt.Errorf("insert author: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	author.ID = id
	author.CreatedAt = now
	author.UpdatedAt = now
	return nil
}

func (r *AuthorRepository) GetByID(ctx context.Context, id int64) (*domain.Author, error) {
	author := &domain.Author{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, born, created_at, updated_at FROM authors WHERE id = ?`, id,
	).Scan(&author.ID, &author.Name, &author.Born, &author.CreatedAt, &author.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query author by id: %w", err)
	}
	return author, nil
}

func (r *AuthorRepository) GetByName(ctx context.Context, name string) (*domain.Author, error) {
	author := &domain.Author{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, born, created_at, updated_at FROM authors WHERE name = ?`, name,
	).Scan(&author.ID, &author.Name, &author.Born, &author.CreatedAt, &author.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query author by name: %w", err)
	}
	return author, nil
}

func (r *AuthorRepository) List(ctx context.Context) ([]domain.Author, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, born, created_at, updated_at FROM authors ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	defer rows.Close()

	var authors []domain.Author
	for rows.Next() {
		var a domain.Author
		if err := rows.Scan(&a.ID, &a.Name, &a.Born, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan author: %w", err)
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

func (r *AuthorRepository) Update(ctx context.Context, author *domain.Author) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE authors SET name = ?, born = ?, updated_at = ? WHERE id = ?`,
		author.Name, author.Born, now, author.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrDuplicateAuthor
		}
		return fmt.Errorf("update author: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	author.UpdatedAt = now
	return nil
}

func (r *AuthorRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM authors WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete author: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AuthorRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM authors").Scan(&count); err != nil {
		return 0, fmt.Errorf("count authors: %w", err)
	}
	return count, nil
}

package domain

import (
	"context"
	"time"
)

// User represents a registered user of the catalog.
// PasswordHash must never be exposed outside the process.
type User struct {
	ID            int64
	Username      string
	PasswordHash  string
	FavoriteGenre string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}

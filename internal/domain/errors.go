package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateTitle     = errors.New("book title already exists")
	ErrDuplicateAuthor    = errors.New("author name already exists")
	ErrDuplicateUsername  = errors.New("username already exists")
)

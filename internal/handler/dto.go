package handler

import (
	"github.com/msomdec/library-catalog/internal/domain"
)

// UserDTO is the JSON representation of a user. The password hash never
// leaves the process.
type UserDTO struct {
	ID            int64  `json:"id"`
	Username      string `json:"username"`
	FavoriteGenre string `json:"favoriteGenre"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:            u.ID,
		Username:      u.Username,
		FavoriteGenre: u.FavoriteGenre,
	}
}

// AuthorDTO is the JSON representation of an author. BookCount is computed
// per read and only present on listings.
type AuthorDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Born      *int   `json:"born"`
	BookCount *int   `json:"bookCount,omitempty"`
}

func toAuthorDTO(a *domain.Author) AuthorDTO {
	return AuthorDTO{
		ID:   a.ID,
		Name: a.Name,
		Born: a.Born,
	}
}

func toAuthorWithCountDTO(a domain.AuthorWithBookCount) AuthorDTO {
	dto := toAuthorDTO(&a.Author)
	count := a.BookCount
	dto.BookCount = &count
	return dto
}

func toAuthorWithCountDTOs(authors []domain.AuthorWithBookCount) []AuthorDTO {
	dtos := make([]AuthorDTO, len(authors))
	for i, a := range authors {
		dtos[i] = toAuthorWithCountDTO(a)
	}
	return dtos
}

// BookDTO is the JSON representation of a book with its author joined in.
type BookDTO struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Author    AuthorDTO `json:"author"`
	Published int       `json:"published"`
	Genres    []string  `json:"genres"`
}

func toBookDTO(b domain.BookWithAuthor) BookDTO {
	genres := b.Genres
	if genres == nil {
		genres = []string{}
	}
	return BookDTO{
		ID:        b.ID,
		Title:     b.Title,
		Author:    toAuthorDTO(&b.Author),
		Published: b.Published,
		Genres:    genres,
	}
}

func toBookDTOs(books []domain.BookWithAuthor) []BookDTO {
	dtos := make([]BookDTO, len(books))
	for i, b := range books {
		dtos[i] = toBookDTO(b)
	}
	return dtos
}

// TokenDTO wraps a signed bearer token.
type TokenDTO struct {
	Value string `json:"value"`
}

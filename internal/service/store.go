package service

import (
	"context"

	"github.com/myflix/myflix-api/internal/model"
)

// UserStore persists users. Create must fail with
// repository.ErrDuplicateUsername when the username is taken, atomically
// with respect to concurrent creates.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	Update(ctx context.Context, username string, patch model.UserPatch) (*model.User, error)
	Delete(ctx context.Context, username string) error
	AppendFavorite(ctx context.Context, username, movieID string) (*model.User, error)
	RemoveFavorite(ctx context.Context, username, movieID string) (*model.User, error)
}

// MovieCatalog is the read-only movie collection.
type MovieCatalog interface {
	List(ctx context.Context) ([]model.Movie, error)
	GetByID(ctx context.Context, id string) (*model.Movie, error)
	GetByTitle(ctx context.Context, title string) (*model.Movie, error)
	ListByGenre(ctx context.Context, genre string) ([]model.Movie, error)
	GetDirector(ctx context.Context, name string) (*model.Director, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

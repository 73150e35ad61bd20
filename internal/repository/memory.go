package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/myflix/myflix-api/internal/model"
)

// MemoryUserStore keeps users in process memory. Every method copies on the
// way in and out, so callers never share a record with the store.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[string]*model.User
}

// NewMemoryUserStore creates an empty MemoryUserStore.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]*model.User)}
}

func (s *MemoryUserStore) Create(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Username]; exists {
		return ErrDuplicateUsername
	}

	prepareNewUser(user)
	s.users[user.Username] = user.Clone()
	return nil
}

func (s *MemoryUserStore) GetByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user.Clone(), nil
}

func (s *MemoryUserStore) Update(_ context.Context, username string, patch model.UserPatch) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	if patch.Username != username {
		if _, taken := s.users[patch.Username]; taken {
			return nil, ErrDuplicateUsername
		}
	}

	updated := user.Clone()
	patch.Apply(updated)
	updated.UpdatedAt = time.Now().UTC()

	delete(s.users, username)
	s.users[updated.Username] = updated
	return updated.Clone(), nil
}

func (s *MemoryUserStore) Delete(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; !ok {
		return ErrUserNotFound
	}
	delete(s.users, username)
	return nil
}

func (s *MemoryUserStore) AppendFavorite(_ context.Context, username, movieID string) (*model.User, error) {
	return s.mutate(username, func(u *model.User) {
		u.FavoriteMovies = append(u.FavoriteMovies, movieID)
	})
}

func (s *MemoryUserStore) RemoveFavorite(_ context.Context, username, movieID string) (*model.User, error) {
	return s.mutate(username, func(u *model.User) {
		u.FavoriteMovies = removeAll(u.FavoriteMovies, movieID)
	})
}

func (s *MemoryUserStore) mutate(username string, fn func(*model.User)) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}

	updated := user.Clone()
	fn(updated)
	updated.UpdatedAt = time.Now().UTC()
	s.users[username] = updated
	return updated.Clone(), nil
}

// MemoryMovieCatalog serves a fixed list of movies.
type MemoryMovieCatalog struct {
	movies []model.Movie
}

// NewMemoryMovieCatalog creates a catalog over movies, which must not be modified afterwards.
func NewMemoryMovieCatalog(movies []model.Movie) *MemoryMovieCatalog {
	return &MemoryMovieCatalog{movies: movies}
}

func (c *MemoryMovieCatalog) List(_ context.Context) ([]model.Movie, error) {
	out := make([]model.Movie, len(c.movies))
	copy(out, c.movies)
	return out, nil
}

func (c *MemoryMovieCatalog) GetByID(_ context.Context, id string) (*model.Movie, error) {
	return c.find(func(m model.Movie) bool { return m.ID == id })
}

func (c *MemoryMovieCatalog) GetByTitle(_ context.Context, title string) (*model.Movie, error) {
	return c.find(func(m model.Movie) bool { return m.Title == title })
}

func (c *MemoryMovieCatalog) ListByGenre(_ context.Context, genre string) ([]model.Movie, error) {
	var out []model.Movie
	for _, m := range c.movies {
		if strings.EqualFold(m.Genre.Name, genre) {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return nil, ErrMovieNotFound
	}
	return out, nil
}

func (c *MemoryMovieCatalog) GetDirector(_ context.Context, name string) (*model.Director, error) {
	m, err := c.find(func(m model.Movie) bool { return strings.EqualFold(m.Director.Name, name) })
	if err != nil {
		return nil, err
	}
	return &m.Director, nil
}

func (c *MemoryMovieCatalog) find(match func(model.Movie) bool) (*model.Movie, error) {
	for _, m := range c.movies {
		if match(m) {
			return &m, nil
		}
	}
	return nil, ErrMovieNotFound
}

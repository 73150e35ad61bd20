package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/myflix/myflix-api/internal/access"
	"github.com/myflix/myflix-api/internal/metrics"
	"github.com/myflix/myflix-api/internal/model"
	"github.com/myflix/myflix-api/internal/repository"
)

// MovieService serves read-only catalog lookups to authenticated users.
type MovieService struct {
	catalog MovieCatalog
	metrics *metrics.Metrics
}

// NewMovieService creates a new MovieService.
func NewMovieService(catalog MovieCatalog, m *metrics.Metrics) *MovieService {
	return &MovieService{catalog: catalog, metrics: m}
}

// List returns the whole catalog.
func (s *MovieService) List(ctx context.Context, requester *model.User) ([]model.Movie, error) {
	if err := authorize(s.metrics, requester, "", access.ReadCatalog); err != nil {
		return nil, err
	}
	return s.catalog.List(ctx)
}

// GetByTitle returns the movie with exactly this title.
func (s *MovieService) GetByTitle(ctx context.Context, requester *model.User, title string) (*model.Movie, error) {
	if err := authorize(s.metrics, requester, "", access.ReadCatalog); err != nil {
		return nil, err
	}
	m, err := s.catalog.GetByTitle(ctx, title)
	if err != nil {
		return nil, movieError(err, title)
	}
	return m, nil
}

// ListByGenre returns the movies of a genre. An unknown genre is ErrMovieNotFound.
func (s *MovieService) ListByGenre(ctx context.Context, requester *model.User, genre string) ([]model.Movie, error) {
	if err := authorize(s.metrics, requester, "", access.ReadCatalog); err != nil {
		return nil, err
	}
	movies, err := s.catalog.ListByGenre(ctx, genre)
	if err != nil {
		return nil, movieError(err, genre)
	}
	return movies, nil
}

// GetDirector returns a director by name.
func (s *MovieService) GetDirector(ctx context.Context, requester *model.User, name string) (*model.Director, error) {
	if err := authorize(s.metrics, requester, "", access.ReadCatalog); err != nil {
		return nil, err
	}
	d, err := s.catalog.GetDirector(ctx, name)
	if err != nil {
		return nil, movieError(err, name)
	}
	return d, nil
}

func movieError(err error, key string) error {
	if errors.Is(err, repository.ErrMovieNotFound) {
		return ErrMovieNotFound
	}
	return fmt.Errorf("catalog lookup %q: %w", key, err)
}

package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/myflix/myflix-api/internal/model"
)

var ErrMovieNotFound = errors.New("movie not found")

const movieColumns = `id, title, year, genre_name, genre_description, director_name, director_birth`

// MovieRepository reads the movie catalog from MySQL.
type MovieRepository struct {
	db *sql.DB
}

// NewMovieRepository creates a new MovieRepository.
func NewMovieRepository(db *sql.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// List returns every movie ordered by title.
func (r *MovieRepository) List(ctx context.Context) ([]model.Movie, error) {
	return r.query(ctx, `SELECT `+movieColumns+` FROM movies ORDER BY title`)
}

// GetByID retrieves a movie by its catalog id.
func (r *MovieRepository) GetByID(ctx context.Context, id string) (*model.Movie, error) {
	return r.queryOne(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = ?`, id)
}

// GetByTitle retrieves a movie by its exact title.
func (r *MovieRepository) GetByTitle(ctx context.Context, title string) (*model.Movie, error) {
	return r.queryOne(ctx, `SELECT `+movieColumns+` FROM movies WHERE title = ?`, title)
}

// ListByGenre returns the movies of a genre, matched case-insensitively.
func (r *MovieRepository) ListByGenre(ctx context.Context, genre string) ([]model.Movie, error) {
	movies, err := r.query(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE LOWER(genre_name) = LOWER(?) ORDER BY title`, genre)
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, ErrMovieNotFound
	}
	return movies, nil
}

// GetDirector returns the director with the given name, matched case-insensitively.
func (r *MovieRepository) GetDirector(ctx context.Context, name string) (*model.Director, error) {
	query := `SELECT director_name, director_birth FROM movies WHERE LOWER(director_name) = LOWER(?) LIMIT 1`

	var d model.Director
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&d.Name, &d.Birth); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *MovieRepository) queryOne(ctx context.Context, query string, args ...any) (*model.Movie, error) {
	var m model.Movie
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&m.ID, &m.Title, &m.Year, &m.Genre.Name, &m.Genre.Description, &m.Director.Name, &m.Director.Birth,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *MovieRepository) query(ctx context.Context, query string, args ...any) ([]model.Movie, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movies := []model.Movie{}
	for rows.Next() {
		var m model.Movie
		if err := rows.Scan(
			&m.ID, &m.Title, &m.Year, &m.Genre.Name, &m.Genre.Description, &m.Director.Name, &m.Director.Birth,
		); err != nil {
			return nil, err
		}
		movies = append(movies, m)
	}

	return movies, rows.Err()
}

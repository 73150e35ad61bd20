package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/myflix/myflix-api/internal/crypto"
	"github.com/myflix/myflix-api/internal/metrics"
	"github.com/myflix/myflix-api/internal/model"
	"github.com/myflix/myflix-api/internal/repository"
)

var (
	testEpoch  = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	testHasher = crypto.NewHasher(crypto.HashParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	testMovies = []model.Movie{
		{ID: "m1", Title: "Snatch", Year: "2000", Genre: model.Genre{Name: "Crime Comedy"}, Director: model.Director{Name: "Guy Ritchie", Birth: "1968"}},
		{ID: "m2", Title: "Goodfellas", Year: "1990", Genre: model.Genre{Name: "Crime Drama"}, Director: model.Director{Name: "Martin Scorsese", Birth: "1942"}},
	}
)

type fixture struct {
	store   *repository.MemoryUserStore
	tokens  *crypto.TokenManager
	metrics *metrics.Metrics
	auth    *AuthService
	users   *UserService
	movies  *MovieService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:   repository.NewMemoryUserStore(),
		tokens:  crypto.NewTokenManager([]byte("test-secret"), 7*24*time.Hour).WithClock(func() time.Time { return testEpoch }),
		metrics: metrics.New(),
	}
	catalog := repository.NewMemoryMovieCatalog(testMovies)

	f.auth = NewAuthService(f.store, testHasher, f.tokens, f.metrics)
	f.users = NewUserService(f.store, catalog, testHasher, f.metrics)
	f.movies = NewMovieService(catalog, f.metrics)
	return f
}

// register creates a user and returns its current record.
func (f *fixture) register(t *testing.T, username, password string) *model.User {
	t.Helper()

	_, err := f.auth.Register(context.Background(), model.UserRequest{
		Username: username,
		Email:    username + "@example.com",
		Birthday: "1990-04-02",
		Password: password,
	})
	require.NoError(t, err)

	u, err := f.store.GetByUsername(context.Background(), username)
	require.NoError(t, err)
	return u
}

var errStoreDown = errors.New("dial tcp 127.0.0.1:3306: connection refused")

// brokenStore fails every call as an unreachable database would.
type brokenStore struct{}

func (brokenStore) Create(context.Context, *model.User) error { return errStoreDown }
func (brokenStore) GetByUsername(context.Context, string) (*model.User, error) {
	return nil, errStoreDown
}
func (brokenStore) Update(context.Context, string, model.UserPatch) (*model.User, error) {
	return nil, errStoreDown
}
func (brokenStore) Delete(context.Context, string) error { return errStoreDown }
func (brokenStore) AppendFavorite(context.Context, string, string) (*model.User, error) {
	return nil, errStoreDown
}
func (brokenStore) RemoveFavorite(context.Context, string, string) (*model.User, error) {
	return nil, errStoreDown
}

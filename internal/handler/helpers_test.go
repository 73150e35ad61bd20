package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/myflix/myflix-api/internal/crypto"
	"github.com/myflix/myflix-api/internal/metrics"
	"github.com/myflix/myflix-api/internal/middleware"
	"github.com/myflix/myflix-api/internal/model"
	"github.com/myflix/myflix-api/internal/repository"
	"github.com/myflix/myflix-api/internal/service"
)

var (
	testHasher = crypto.NewHasher(crypto.HashParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	testMovies = []model.Movie{
		{ID: "m1", Title: "Snatch", Year: "2000", Genre: model.Genre{Name: "Crime Comedy", Description: "Crooks, badly."}, Director: model.Director{Name: "Guy Ritchie", Birth: "1968"}},
		{ID: "m2", Title: "The Dark Knight", Year: "2008", Genre: model.Genre{Name: "Action"}, Director: model.Director{Name: "Christopher Nolan", Birth: "1970"}},
	}
)

type testServer struct {
	handler http.Handler
	store   *repository.MemoryUserStore
	metrics *metrics.Metrics
}

func newTestServer(t *testing.T, limiter *middleware.RateLimiter) *testServer {
	t.Helper()

	store := repository.NewMemoryUserStore()
	catalog := repository.NewMemoryMovieCatalog(testMovies)
	m := metrics.New()
	tokens := crypto.NewTokenManager([]byte("test-secret"), time.Hour)

	return &testServer{
		handler: NewRouter(Deps{
			Auth:    service.NewAuthService(store, testHasher, tokens, m),
			Users:   service.NewUserService(store, catalog, testHasher, m),
			Movies:  service.NewMovieService(catalog, m),
			Metrics: m,
			Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
			Limiter: limiter,
		}),
		store:   store,
		metrics: m,
	}
}

// do sends a request with an optional JSON body and bearer token.
func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// signup registers username and logs in, returning the session token.
func (s *testServer) signup(t *testing.T, username, password string) string {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/user", "", model.UserRequest{
		Username: username,
		Email:    username + "@example.com",
		Birthday: "1990-04-02",
		Password: password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/login", "", model.LoginRequest{Username: username, Password: password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp model.AuthResponse
	decode(t, rec, &resp)
	return resp.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v), rec.Body.String())
}

func (s *testServer) exists(username string) bool {
	_, err := s.store.GetByUsername(context.Background(), username)
	return err == nil
}

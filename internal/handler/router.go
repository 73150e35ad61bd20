package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/myflix/myflix-api/internal/metrics"
	"github.com/myflix/myflix-api/internal/middleware"
	"github.com/myflix/myflix-api/internal/service"
)

// Deps holds everything the router needs to serve the API.
type Deps struct {
	Auth    *service.AuthService
	Users   *service.UserService
	Movies  *service.MovieService
	Metrics *metrics.Metrics
	Logger  *slog.Logger
	// Limiter throttles the unauthenticated write routes. Nil disables it.
	Limiter *middleware.RateLimiter
}

// NewRouter builds the HTTP routing tree.
func NewRouter(d Deps) http.Handler {
	authHandler := NewAuthHandler(d.Auth, d.Logger)
	userHandler := NewUserHandler(d.Users, d.Logger)
	movieHandler := NewMovieHandler(d.Movies, d.Logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Metrics(d.Metrics))
	r.Use(chimw.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeText(w, http.StatusOK, "Welcome to myFlix!")
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeText(w, http.StatusOK, "ok")
	})
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	r.Group(func(r chi.Router) {
		if d.Limiter != nil {
			r.Use(d.Limiter.Middleware)
		}
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/user", authHandler.HandleRegister)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(d.Auth, d.Logger))

		r.Route("/user/{username}", func(r chi.Router) {
			r.Get("/", userHandler.HandleGet)
			r.Put("/", userHandler.HandleUpdate)
			r.Delete("/", userHandler.HandleDelete)
			r.Post("/movies/{movieId}", userHandler.HandleAddFavorite)
			r.Delete("/movies/{movieId}", userHandler.HandleRemoveFavorite)
		})

		r.Route("/movies", func(r chi.Router) {
			r.Get("/", movieHandler.HandleList)
			r.Get("/{title}", movieHandler.HandleGetByTitle)
			r.Get("/genre/{genreName}", movieHandler.HandleListByGenre)
			r.Get("/director/{directorName}", movieHandler.HandleGetDirector)
		})
	})

	return r
}

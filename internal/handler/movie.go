package handler

import (
	"log/slog"
	"net/http"

	"github.com/myflix/myflix-api/internal/middleware"
	"github.com/myflix/myflix-api/internal/service"
)

// MovieHandler handles HTTP requests for the movie catalog.
type MovieHandler struct {
	service *service.MovieService
	logger  *slog.Logger
}

// NewMovieHandler creates a new MovieHandler.
func NewMovieHandler(svc *service.MovieService, logger *slog.Logger) *MovieHandler {
	return &MovieHandler{service: svc, logger: logger}
}

// HandleList handles GET /movies requests.
func (h *MovieHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	requester, _ := middleware.UserFromContext(r.Context())

	movies, err := h.service.List(r.Context(), requester)
	if err != nil {
		writeServiceError(w, r, h.logger, err, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, movies)
}

// HandleGetByTitle handles GET /movies/{title} requests.
func (h *MovieHandler) HandleGetByTitle(w http.ResponseWriter, r *http.Request) {
	requester, _ := middleware.UserFromContext(r.Context())

	movie, err := h.service.GetByTitle(r.Context(), requester, pathParam(r, "title"))
	if err != nil {
		writeServiceError(w, r, h.logger, err, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, movie)
}

// HandleListByGenre handles GET /movies/genre/{genreName} requests.
func (h *MovieHandler) HandleListByGenre(w http.ResponseWriter, r *http.Request) {
	requester, _ := middleware.UserFromContext(r.Context())

	movies, err := h.service.ListByGenre(r.Context(), requester, pathParam(r, "genreName"))
	if err != nil {
		writeServiceError(w, r, h.logger, err, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, movies)
}

// HandleGetDirector handles GET /movies/director/{directorName} requests.
func (h *MovieHandler) HandleGetDirector(w http.ResponseWriter, r *http.Request) {
	requester, _ := middleware.UserFromContext(r.Context())

	director, err := h.service.GetDirector(r.Context(), requester, pathParam(r, "directorName"))
	if err != nil {
		writeServiceError(w, r, h.logger, err, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, director)
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/myflix/myflix-api/internal/middleware"
	"github.com/myflix/myflix-api/internal/model"
	"github.com/myflix/myflix-api/internal/service"
)

// UserHandler handles HTTP requests for user profiles and favorites.
type UserHandler struct {
	service *service.UserService
	logger  *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{service: svc, logger: logger}
}

// HandleGet handles GET /user/{username} requests.
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	resp, err := h.service.Get(r.Context(), requester, pathParam(r, "username"))
	if err != nil {
		writeServiceError(w, r, h.logger, err, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleUpdate handles PUT /user/{username} requests.
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	var req model.UserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Update(r.Context(), requester, pathParam(r, "username"), req)
	if err != nil {
		writeServiceError(w, r, h.logger, err, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleDelete handles DELETE /user/{username} requests.
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	username := pathParam(r, "username")
	if err := h.service.Delete(r.Context(), requester, username); err != nil {
		writeServiceError(w, r, h.logger, err, http.StatusNotFound)
		return
	}

	h.logger.InfoContext(r.Context(), "user deleted", "username", username)
	writeText(w, http.StatusOK, username+" was deleted.")
}

// HandleAddFavorite handles POST /user/{username}/movies/{movieId} requests.
func (h *UserHandler) HandleAddFavorite(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	resp, err := h.service.AddFavorite(r.Context(), requester, pathParam(r, "username"), pathParam(r, "movieId"))
	if err != nil {
		writeServiceError(w, r, h.logger, err, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleRemoveFavorite handles DELETE /user/{username}/movies/{movieId} requests.
func (h *UserHandler) HandleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	resp, err := h.service.RemoveFavorite(r.Context(), requester, pathParam(r, "username"), pathParam(r, "movieId"))
	if err != nil {
		writeServiceError(w, r, h.logger, err, http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

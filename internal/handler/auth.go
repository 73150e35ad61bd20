package handler

import (
	"log/slog"
	"net/http"

	"github.com/myflix/myflix-api/internal/model"
	"github.com/myflix/myflix-api/internal/service"
)

// AuthHandler handles HTTP requests for registration and login.
type AuthHandler struct {
	service *service.AuthService
	logger  *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, logger: logger}
}

// HandleRegister handles POST /user requests.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.UserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.logger, err, http.StatusNotFound)
		return
	}

	h.logger.InfoContext(r.Context(), "user registered", "username", resp.Username)
	writeJSON(w, http.StatusCreated, resp)
}

// HandleLogin handles POST /login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.logger, err, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

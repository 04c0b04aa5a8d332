package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/technotes/apiserver/internal/logging"
	"github.com/technotes/apiserver/internal/services"
)

// UserHandler provides HTTP handlers for users.
type UserHandler struct {
	userService *services.UserService
	logger      logging.Logger
}

func NewUserHandler(userService *services.UserService, logger logging.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

// UserRouter registers user routes. Nil middlewares are skipped.
func UserRouter(r chi.Router, userService *services.UserService, logger logging.Logger, middlewares ...func(http.Handler) http.Handler) {
	handler := NewUserHandler(userService, logger)

	r = withMiddleware(r, middlewares...)
	r.Get("/", handler.ListUsers)
	r.Post("/", handler.CreateUser)
	r.Patch("/", handler.UpdateUser)
	r.Delete("/", handler.DeleteUser)
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.userService.Create(r.Context(), services.CreateUserInput{
		Username: req.Username,
		Password: req.Password,
		Roles:    optionalRoles(req.Roles),
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err, http.StatusConflict)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: fmt.Sprintf("New user %s created", user.Username)})
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.userService.Update(r.Context(), services.UpdateUserInput{
		ID:       req.ID,
		Username: req.Username,
		Password: req.Password,
		Roles:    optionalRoles(req.Roles),
		Active:   optionalBool(req.Active),
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err, http.StatusConflict)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: fmt.Sprintf("%s updated", user.Username)})
}

// DeleteUser refuses users that still own notes with 400, not 409.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	var req DeleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.userService.Delete(r.Context(), req.ID)
	if err != nil {
		writeServiceError(w, r, h.logger, err, http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, fmt.Sprintf("Username %s with ID %s deleted", user.Username, user.ID))
}

// CreateUserRequest decodes roles loosely; see optionalRoles.
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Roles    any    `json:"roles"`
}

type UpdateUserRequest struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Roles    any    `json:"roles"`
	Active   any    `json:"active"`
}

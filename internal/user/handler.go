package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/im-rizwan/track-your-life/internal/httputil"
	"github.com/im-rizwan/track-your-life/internal/logging"
)

// Handler contains HTTP handlers for user management endpoints
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateUserRequest represents the user creation request body
type CreateUserRequest struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
}

// UpdateUserRequest represents the user update request body
type UpdateUserRequest struct {
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
}

// Create handles user creation
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateUserRequest true "User data"
// @Success      201 {object} httputil.SuccessResponse{data=User}
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      409 {object} httputil.ErrorResponse "Email already exists"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /api/v1/users [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	created, err := h.service.CreateUser(r.Context(), CreateUserInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.respondServiceError(w, logger, err, "failed to create user")
		return
	}

	logger.Info("user created", "user_id", created.ID)

	httputil.RespondCreated(w, created, "User created successfully")
}

// Get handles fetching a single user
// @Summary      Get a user by ID
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Success      200 {object} httputil.SuccessResponse{data=User}
// @Failure      400 {object} httputil.ErrorResponse "Invalid user ID"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /api/v1/users/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := h.userIDFromURL(w, r)
	if !ok {
		return
	}

	found, err := h.service.GetUserByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, logger, err, "failed to get user")
		return
	}

	httputil.RespondSuccess(w, found, "", http.StatusOK)
}

// List handles listing users with pagination
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page  query int false "Page number"  default(1)
// @Param        limit query int false "Page size"    default(10)
// @Success      200 {object} httputil.SuccessResponse{data=Page}
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /api/v1/users [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.service.ListUsers(r.Context(), page, limit)
	if err != nil {
		h.respondServiceError(w, logger, err, "failed to list users")
		return
	}

	httputil.RespondSuccess(w, result, "", http.StatusOK)
}

// Update handles partial user updates
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Param        request body UpdateUserRequest true "Fields to update"
// @Success      200 {object} httputil.SuccessResponse{data=User}
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Failure      409 {object} httputil.ErrorResponse "Email already exists"
// @Router       /api/v1/users/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := h.userIDFromURL(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	updated, err := h.service.UpdateUser(r.Context(), id, UpdateUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.respondServiceError(w, logger, err, "failed to update user")
		return
	}

	logger.Info("user updated", "user_id", updated.ID)

	httputil.RespondSuccess(w, updated, "User updated successfully", http.StatusOK)
}

// Delete handles user deletion
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Success      200 {object} httputil.SuccessResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid user ID"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /api/v1/users/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := h.userIDFromURL(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		h.respondServiceError(w, logger, err, "failed to delete user")
		return
	}

	logger.Info("user deleted", "user_id", id)

	httputil.RespondSuccess(w, nil, "User deleted successfully", http.StatusOK)
}

func (h *Handler) userIDFromURL(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondError(w, "invalid user ID", httputil.CodeValidationFailed, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, logger *logging.Logger, err error, internalMsg string) {
	switch {
	case errors.Is(err, ErrNotFound):
		httputil.RespondError(w, err.Error(), httputil.CodeUserNotFound, http.StatusNotFound)
	case errors.Is(err, ErrDuplicateEmail):
		httputil.RespondError(w, err.Error(), httputil.CodeEmailAlreadyExists, http.StatusConflict)
	case errors.Is(err, ErrEmailRequired):
		httputil.RespondError(w, err.Error(), httputil.CodeEmailRequired, http.StatusBadRequest)
	case errors.Is(err, ErrInvalidEmailFormat):
		httputil.RespondError(w, err.Error(), httputil.CodeInvalidEmailFormat, http.StatusBadRequest)
	case errors.Is(err, ErrPasswordRequired):
		httputil.RespondError(w, err.Error(), httputil.CodePasswordRequired, http.StatusBadRequest)
	case errors.Is(err, ErrPasswordTooShort):
		httputil.RespondError(w, err.Error(), httputil.CodePasswordTooShort, http.StatusBadRequest)
	case errors.Is(err, ErrPasswordTooWeak):
		httputil.RespondError(w, err.Error(), httputil.CodePasswordTooWeak, http.StatusBadRequest)
	default:
		logger.Error(internalMsg, "error", err.Error())
		httputil.RespondError(w, internalMsg, httputil.CodeInternalError, http.StatusInternalServerError)
	}
}

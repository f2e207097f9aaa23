package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/baadal-bistro/api/internal/database"
	"github.com/baadal-bistro/api/internal/enum"
	"github.com/baadal-bistro/api/internal/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

// UserStore defines the database methods needed by user handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type UserStore interface {
	ListUsers(ctx context.Context) ([]database.User, error)
	CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error)
	UpdateUserRole(ctx context.Context, arg database.UpdateUserRoleParams) (database.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// UserHandler handles staff management endpoints. Admin only.
type UserHandler struct {
	store UserStore
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(store UserStore) *UserHandler {
	return &UserHandler{store: store}
}

// RegisterRoutes registers user endpoints on the given Chi router.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Patch("/{id}/role", h.UpdateRole)
	r.Delete("/{id}", h.Delete)
}

type createUserRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

// List handles GET /users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		logger.L.WithError(err).Error("list users")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]userResponse, len(users))
	for i, u := range users {
		resp[i] = toUserResponse(u)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.FullName == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email, full_name and password are required")
		return
	}
	if !enum.IsValidRole(req.Role) {
		writeError(w, http.StatusBadRequest, "invalid role")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.L.WithError(err).Error("hash password")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user, err := h.store.CreateUser(r.Context(), database.CreateUserParams{
		Email:          req.Email,
		FullName:       req.FullName,
		Role:           req.Role,
		HashedPassword: string(hashed),
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			writeError(w, http.StatusConflict, "email already in use")
			return
		}
		logger.L.WithError(err).Error("create user")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// UpdateRole handles PATCH /users/{id}/role.
func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	var req updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !enum.IsValidRole(req.Role) {
		writeError(w, http.StatusBadRequest, "invalid role")
		return
	}

	user, err := h.store.UpdateUserRole(r.Context(), database.UpdateUserRoleParams{ID: id, Role: req.Role})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		logger.L.WithError(err).Error("update user role")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// Delete handles DELETE /users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	if _, err := h.store.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		logger.L.WithError(err).Error("delete user")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

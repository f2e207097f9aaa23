package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/baadal-bistro/api/internal/database"
	"github.com/baadal-bistro/api/internal/enum"
	"github.com/baadal-bistro/api/internal/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// MenuStore defines the database methods needed by menu handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type MenuStore interface {
	ListMenuItems(ctx context.Context) ([]database.MenuItem, error)
	ListAvailableMenuItems(ctx context.Context) ([]database.MenuItem, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (database.MenuItem, error)
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// MenuHandler handles menu endpoints. Reads are open to all staff; writes
// are admin only, enforced by the router.
type MenuHandler struct {
	store MenuStore
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(store MenuStore) *MenuHandler {
	return &MenuHandler{store: store}
}

// RegisterReadRoutes registers the staff-facing read endpoints.
func (h *MenuHandler) RegisterReadRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
}

// RegisterWriteRoutes registers the admin-facing write endpoints.
func (h *MenuHandler) RegisterWriteRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

type menuItemRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Price       string `json:"price"`
	IsAvailable *bool  `json:"is_available"`
}

type menuItemResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Price       string    `json:"price"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toMenuItemResponse(m database.MenuItem) menuItemResponse {
	return menuItemResponse{
		ID:          m.ID,
		Name:        m.Name,
		Category:    m.Category,
		Price:       numericToString(m.Price),
		IsAvailable: m.IsAvailable,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// parsePrice validates a non-negative decimal price from the request body.
func parsePrice(s string) (pgtype.Numeric, error) {
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return pgtype.Numeric{}, errors.New("invalid price")
	}
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n, nil
}

// List handles GET /menu. Waiters get only available items with
// ?available=true; admins see everything by default.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		items []database.MenuItem
		err   error
	)
	if r.URL.Query().Get("available") == "true" {
		items, err = h.store.ListAvailableMenuItems(r.Context())
	} else {
		items, err = h.store.ListMenuItems(r.Context())
	}
	if err != nil {
		logger.L.WithError(err).Error("list menu items")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]menuItemResponse, len(items))
	for i, m := range items {
		resp[i] = toMenuItemResponse(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /menu/{id}.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid menu item ID")
		return
	}

	item, err := h.store.GetMenuItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "menu item not found")
			return
		}
		logger.L.WithError(err).Error("get menu item")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// Create handles POST /menu.
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !enum.IsValidCategory(req.Category) {
		writeError(w, http.StatusBadRequest, "invalid category")
		return
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid price")
		return
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	item, err := h.store.CreateMenuItem(r.Context(), database.CreateMenuItemParams{
		Name:        req.Name,
		Category:    req.Category,
		Price:       price,
		IsAvailable: available,
	})
	if err != nil {
		logger.L.WithError(err).Error("create menu item")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, toMenuItemResponse(item))
}

// Update handles PUT /menu/{id}.
func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid menu item ID")
		return
	}

	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !enum.IsValidCategory(req.Category) {
		writeError(w, http.StatusBadRequest, "invalid category")
		return
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid price")
		return
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	item, err := h.store.UpdateMenuItem(r.Context(), database.UpdateMenuItemParams{
		ID:          id,
		Name:        req.Name,
		Category:    req.Category,
		Price:       price,
		IsAvailable: available,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "menu item not found")
			return
		}
		logger.L.WithError(err).Error("update menu item")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// Delete handles DELETE /menu/{id}. Order lines keep their own name and
// price snapshot, so deleting a menu item never rewrites history.
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid menu item ID")
		return
	}

	if _, err := h.store.DeleteMenuItem(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "menu item not found")
			return
		}
		logger.L.WithError(err).Error("delete menu item")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

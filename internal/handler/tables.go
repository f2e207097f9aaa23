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
	"github.com/baadal-bistro/api/internal/service"
	"github.com/baadal-bistro/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Broadcaster pushes events to connected clients. Satisfied by *ws.Hub.
type Broadcaster interface {
	BroadcastJSON(eventType string, payload any)
}

// TableServicer defines the service methods needed by table handlers.
// Satisfied by *service.TableService; narrow interface for testability.
type TableServicer interface {
	MarkOccupied(ctx context.Context, id uuid.UUID) (database.Table, error)
	MarkAvailable(ctx context.Context, id uuid.UUID) (database.Table, error)
	MarkBilling(ctx context.Context, id uuid.UUID) (database.Table, error)
	MarkClosed(ctx context.Context, id uuid.UUID) (database.Table, error)
}

// TableStore defines the database methods needed by table CRUD handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type TableStore interface {
	ListTables(ctx context.Context) ([]database.Table, error)
	GetTable(ctx context.Context, id uuid.UUID) (database.Table, error)
	CreateTable(ctx context.Context, arg database.CreateTableParams) (database.Table, error)
	DeleteTable(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// TableHandler handles the floor plan endpoints.
type TableHandler struct {
	svc   TableServicer
	store TableStore
	hub   Broadcaster
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(svc TableServicer, store TableStore, hub Broadcaster) *TableHandler {
	return &TableHandler{svc: svc, store: store, hub: hub}
}

// RegisterReadRoutes registers the staff-facing endpoints.
func (h *TableHandler) RegisterReadRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Patch("/{id}/status", h.UpdateStatus)
}

// RegisterWriteRoutes registers the admin-facing endpoints.
func (h *TableHandler) RegisterWriteRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Delete("/{id}", h.Delete)
}

type createTableRequest struct {
	Number string `json:"number"`
	Floor  string `json:"floor"`
}

type tableStatusRequest struct {
	Status string `json:"status"`
}

type tableResponse struct {
	ID        uuid.UUID `json:"id"`
	Number    string    `json:"number"`
	Floor     string    `json:"floor"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toTableResponse(t database.Table) tableResponse {
	return tableResponse{ID: t.ID, Number: t.Number, Floor: t.Floor, Status: t.Status, CreatedAt: t.CreatedAt}
}

func (h *TableHandler) broadcastTable(t database.Table) {
	if h.hub != nil {
		h.hub.BroadcastJSON(ws.EventTableUpdated, toTableResponse(t))
	}
}

// List handles GET /tables.
func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	tables, err := h.store.ListTables(r.Context())
	if err != nil {
		logger.L.WithError(err).Error("list tables")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]tableResponse, len(tables))
	for i, t := range tables {
		resp[i] = toTableResponse(t)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /tables.
func (h *TableHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Number == "" {
		writeError(w, http.StatusBadRequest, "number is required")
		return
	}
	if req.Floor == "" {
		req.Floor = "1"
	}

	table, err := h.store.CreateTable(r.Context(), database.CreateTableParams{
		Number: req.Number,
		Floor:  req.Floor,
		Status: enum.TableStatusAvailable,
	})
	if err != nil {
		logger.L.WithError(err).Error("create table")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, toTableResponse(table))
}

// Delete handles DELETE /tables/{id}. A table with guests cannot be removed
// from the floor plan.
func (h *TableHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid table ID")
		return
	}

	table, err := h.store.GetTable(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "table not found")
			return
		}
		logger.L.WithError(err).Error("get table")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if table.Status == enum.TableStatusOccupied || table.Status == enum.TableStatusBilling {
		writeError(w, http.StatusConflict, "table is in use")
		return
	}

	if _, err := h.store.DeleteTable(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "table not found")
			return
		}
		logger.L.WithError(err).Error("delete table")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateStatus handles PATCH /tables/{id}/status.
func (h *TableHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid table ID")
		return
	}

	var req tableStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var table database.Table
	switch req.Status {
	case enum.TableStatusOccupied:
		table, err = h.svc.MarkOccupied(r.Context(), id)
	case enum.TableStatusAvailable:
		table, err = h.svc.MarkAvailable(r.Context(), id)
	case enum.TableStatusBilling:
		table, err = h.svc.MarkBilling(r.Context(), id)
	case enum.TableStatusClosed:
		table, err = h.svc.MarkClosed(r.Context(), id)
	default:
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTableNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrTableNotOccupied),
			errors.Is(err, service.ErrTableHasOpenOrder),
			errors.Is(err, service.ErrTableClosed):
			writeError(w, http.StatusConflict, err.Error())
		default:
			logger.L.WithError(err).Error("update table status")
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.broadcastTable(table)
	writeJSON(w, http.StatusOK, toTableResponse(table))
}

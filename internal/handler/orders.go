package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/baadal-bistro/api/internal/billing"
	"github.com/baadal-bistro/api/internal/database"
	"github.com/baadal-bistro/api/internal/enum"
	"github.com/baadal-bistro/api/internal/logger"
	"github.com/baadal-bistro/api/internal/middleware"
	"github.com/baadal-bistro/api/internal/receipt"
	"github.com/baadal-bistro/api/internal/service"
	"github.com/baadal-bistro/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	GetOpenOrder(ctx context.Context, tableID uuid.UUID) (*service.OrderWithItems, error)
	AddItems(ctx context.Context, req service.AddItemsRequest) (*service.OrderWithItems, error)
	CreateParcelOrder(ctx context.Context, req service.ParcelOrderRequest) (*service.OrderWithItems, error)
	RemoveLineQuantity(ctx context.Context, req service.RemoveLineRequest) (*service.RemoveLineResult, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (database.Order, error)
}

// OrderStore defines the database methods needed by order read handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOpenOrders(ctx context.Context) ([]database.Order, error)
	ListOrdersByStatus(ctx context.Context, status string) ([]database.Order, error)
	ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
}

// OrderHandler handles the order lifecycle endpoints.
type OrderHandler struct {
	svc   OrderServicer
	store OrderStore
	hub   Broadcaster
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, store OrderStore, hub Broadcaster) *OrderHandler {
	return &OrderHandler{svc: svc, store: store, hub: hub}
}

// RegisterTableRoutes registers the table-scoped ordering endpoints.
func (h *OrderHandler) RegisterTableRoutes(r chi.Router) {
	r.Post("/{id}/items", h.AddItems)
	r.Get("/{id}/order", h.GetOpenOrder)
}

// --- Request / Response types ---

type cartItemRequest struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int32  `json:"quantity"`
}

type addItemsRequest struct {
	Items []cartItemRequest `json:"items"`
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

type orderResponse struct {
	ID             uuid.UUID           `json:"id"`
	TableID        *uuid.UUID          `json:"table_id"`
	TableNumber    *string             `json:"table_number"`
	OrderType      string              `json:"order_type"`
	Status         string              `json:"status"`
	TotalAmount    string              `json:"total_amount"`
	OfferPercent   *int32              `json:"offer_percent"`
	DiscountAmount *string             `json:"discount_amount"`
	ParcelCharge   *string             `json:"parcel_charge"`
	FinalAmount    *string             `json:"final_amount"`
	PaymentType    *string             `json:"payment_type"`
	CustomerPhone  *string             `json:"customer_phone"`
	WhatsappSent   bool                `json:"whatsapp_sent"`
	CreatedBy      uuid.UUID           `json:"created_by"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	PaidAt         *time.Time          `json:"paid_at"`
	Items          []orderItemResponse `json:"items"`
}

type orderItemResponse struct {
	ID         uuid.UUID `json:"id"`
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Name       string    `json:"name"`
	Price      string    `json:"price"`
	Quantity   int32     `json:"quantity"`
}

func toOrderItemResponse(it database.OrderItem) orderItemResponse {
	return orderItemResponse{
		ID:         it.ID,
		MenuItemID: it.MenuItemID,
		Name:       it.Name,
		Price:      numericToString(it.Price),
		Quantity:   it.Quantity,
	}
}

func toOrderResponse(o database.Order, items []database.OrderItem) orderResponse {
	resp := orderResponse{
		ID:           o.ID,
		OrderType:    o.OrderType,
		Status:       o.Status,
		TotalAmount:  numericToString(o.TotalAmount),
		WhatsappSent: o.WhatsappSent,
		CreatedBy:    o.CreatedBy,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}

	if o.TableID.Valid {
		id := uuid.UUID(o.TableID.Bytes)
		resp.TableID = &id
	}
	if o.TableNumber.Valid {
		resp.TableNumber = &o.TableNumber.String
	}
	if o.OfferPercent.Valid {
		resp.OfferPercent = &o.OfferPercent.Int32
	}
	if o.DiscountAmount.Valid {
		s := numericToString(o.DiscountAmount)
		resp.DiscountAmount = &s
	}
	if o.ParcelCharge.Valid {
		s := numericToString(o.ParcelCharge)
		resp.ParcelCharge = &s
	}
	if o.FinalAmount.Valid {
		s := numericToString(o.FinalAmount)
		resp.FinalAmount = &s
	}
	if o.PaymentType.Valid {
		resp.PaymentType = &o.PaymentType.String
	}
	if o.CustomerPhone.Valid {
		resp.CustomerPhone = &o.CustomerPhone.String
	}
	if o.PaidAt.Valid {
		resp.PaidAt = &o.PaidAt.Time
	}

	resp.Items = make([]orderItemResponse, len(items))
	for i, it := range items {
		resp.Items[i] = toOrderItemResponse(it)
	}
	return resp
}

func (h *OrderHandler) broadcastOrder(o database.Order, items []database.OrderItem) {
	if h.hub != nil {
		h.hub.BroadcastJSON(ws.EventOrderUpdated, toOrderResponse(o, items))
	}
}

// --- Handlers ---

// AddItems handles POST /tables/{id}/items.
func (h *OrderHandler) AddItems(w http.ResponseWriter, r *http.Request) {
	tableID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid table ID")
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req addItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.AddItems(r.Context(), service.AddItemsRequest{
		TableID:   tableID,
		CreatedBy: claims.UserID,
		Items:     toServiceItems(req.Items),
	})
	if err != nil {
		writeOrderError(w, err, "add items")
		return
	}

	h.broadcastOrder(result.Order, result.Items)
	writeJSON(w, http.StatusOK, toOrderResponse(result.Order, result.Items))
}

// GetOpenOrder handles GET /tables/{id}/order.
func (h *OrderHandler) GetOpenOrder(w http.ResponseWriter, r *http.Request) {
	tableID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid table ID")
		return
	}

	result, err := h.svc.GetOpenOrder(r.Context(), tableID)
	if err != nil {
		writeOrderError(w, err, "get open order")
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(result.Order, result.Items))
}

// CreateParcel handles POST /orders/parcel.
func (h *OrderHandler) CreateParcel(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req addItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.CreateParcelOrder(r.Context(), service.ParcelOrderRequest{
		CreatedBy: claims.UserID,
		Items:     toServiceItems(req.Items),
	})
	if err != nil {
		writeOrderError(w, err, "create parcel order")
		return
	}

	h.broadcastOrder(result.Order, result.Items)
	writeJSON(w, http.StatusCreated, toOrderResponse(result.Order, result.Items))
}

// List handles GET /orders. Defaults to open orders; ?status= filters.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		orders []database.Order
		err    error
	)
	if status := r.URL.Query().Get("status"); status != "" {
		if status != enum.OrderStatusPending && status != enum.OrderStatusPreparing && status != enum.OrderStatusPaid {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		orders, err = h.store.ListOrdersByStatus(r.Context(), status)
	} else {
		orders, err = h.store.ListOpenOrders(r.Context())
	}
	if err != nil {
		logger.L.WithError(err).Error("list orders")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		items, err := h.store.ListOrderItems(r.Context(), o.ID)
		if err != nil {
			logger.L.WithError(err).Error("list order items")
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		resp[i] = toOrderResponse(o, items)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		logger.L.WithError(err).Error("get order")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	items, err := h.store.ListOrderItems(r.Context(), orderID)
	if err != nil {
		logger.L.WithError(err).Error("list order items")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order, items))
}

// UpdateStatus handles PATCH /orders/{id}/status. Only the kitchen
// transitions are allowed here; paid is reached through checkout.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	var req orderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.svc.UpdateStatus(r.Context(), orderID, req.Status)
	if err != nil {
		writeOrderError(w, err, "update order status")
		return
	}

	items, err := h.store.ListOrderItems(r.Context(), orderID)
	if err != nil {
		logger.L.WithError(err).Error("list order items")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.broadcastOrder(order, items)
	writeJSON(w, http.StatusOK, toOrderResponse(order, items))
}

// RemoveLine handles DELETE /orders/{id}/items/{itemID}?qty=N.
// Without qty the whole line is removed.
func (h *OrderHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}
	lineID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order item ID")
		return
	}

	qty := int32(1<<31 - 1) // whole line by default
	if s := r.URL.Query().Get("qty"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, "invalid qty")
			return
		}
		qty = int32(v)
	}

	result, err := h.svc.RemoveLineQuantity(r.Context(), service.RemoveLineRequest{
		OrderID:  orderID,
		LineID:   lineID,
		Quantity: qty,
	})
	if err != nil {
		writeOrderError(w, err, "remove order line")
		return
	}

	if result.Cancelled {
		h.broadcastOrder(result.Order, nil)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.broadcastOrder(result.Order, result.Items)
	writeJSON(w, http.StatusOK, toOrderResponse(result.Order, result.Items))
}

// --- Helpers ---

func toServiceItems(items []cartItemRequest) []service.ItemRequest {
	out := make([]service.ItemRequest, len(items))
	for i, it := range items {
		out[i] = service.ItemRequest{MenuItemID: it.MenuItemID, Quantity: it.Quantity}
	}
	return out
}

// writeOrderError maps known service errors to HTTP status codes.
func writeOrderError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidMenuItemID),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidPaymentType),
		errors.Is(err, service.ErrInvalidCharge),
		errors.Is(err, billing.ErrInvalidPercent),
		errors.Is(err, receipt.ErrInvalidPhone):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrTableNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrNoOpenOrder),
		errors.Is(err, service.ErrLineNotFound),
		errors.Is(err, service.ErrMenuItemNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrTableClosed),
		errors.Is(err, service.ErrTableNotOccupied),
		errors.Is(err, service.ErrItemUnavailable),
		errors.Is(err, service.ErrOrderNotOpen),
		errors.Is(err, service.ErrAlreadyPaid),
		errors.Is(err, service.ErrOrderNotPaid),
		errors.Is(err, service.ErrMultipleOpenOrders):
		writeError(w, http.StatusConflict, err.Error())
	default:
		logger.L.WithError(err).Error(op)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

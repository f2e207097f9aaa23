package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/baadal-bistro/api/internal/database"
	"github.com/baadal-bistro/api/internal/logger"
	"github.com/baadal-bistro/api/internal/receipt"
	"github.com/baadal-bistro/api/internal/service"
	"github.com/baadal-bistro/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CheckoutServicer defines the service methods needed by checkout handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type CheckoutServicer interface {
	Checkout(ctx context.Context, req service.CheckoutRequest) (*service.OrderWithItems, error)
	RecordWhatsAppShare(ctx context.Context, orderID uuid.UUID, phone string) (database.Order, error)
}

// CheckoutStore defines the database methods needed to render receipts
// and refresh table state after settlement.
type CheckoutStore interface {
	GetTable(ctx context.Context, id uuid.UUID) (database.Table, error)
	ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
}

// CheckoutHandler handles order settlement and receipt sharing.
type CheckoutHandler struct {
	svc      CheckoutServicer
	store    CheckoutStore
	hub      Broadcaster
	cafeName string
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(svc CheckoutServicer, store CheckoutStore, hub Broadcaster, cafeName string) *CheckoutHandler {
	return &CheckoutHandler{svc: svc, store: store, hub: hub, cafeName: cafeName}
}

// RegisterRoutes registers checkout endpoints on an /orders subrouter.
func (h *CheckoutHandler) RegisterRoutes(r chi.Router) {
	r.Post("/{id}/checkout", h.Checkout)
	r.Post("/{id}/whatsapp", h.ShareWhatsApp)
}

type checkoutRequest struct {
	OfferPercent  int    `json:"offer_percent"`
	ParcelCharge  string `json:"parcel_charge"`
	PaymentType   string `json:"payment_type"`
	CustomerPhone string `json:"customer_phone"`
}

// checkoutResponse is the settled order, plus the rendered bill when the
// request carried a customer phone.
type checkoutResponse struct {
	orderResponse
	BillText     string `json:"bill_text,omitempty"`
	WhatsappLink string `json:"whatsapp_link,omitempty"`
}

type whatsappRequest struct {
	Phone string `json:"phone"`
}

type whatsappResponse struct {
	BillText     string        `json:"bill_text"`
	WhatsappLink string        `json:"whatsapp_link"`
	Order        orderResponse `json:"order"`
}

// Checkout handles POST /orders/{id}/checkout. Amounts are recomputed server
// side from the stored subtotal; the client never supplies totals. When the
// request carries a customer_phone the bill text and wa.me link ride along in
// the response so the cashier can share the receipt straight away.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.Checkout(r.Context(), service.CheckoutRequest{
		OrderID:       orderID,
		OfferPercent:  req.OfferPercent,
		ParcelCharge:  req.ParcelCharge,
		PaymentType:   req.PaymentType,
		CustomerPhone: req.CustomerPhone,
	})
	if err != nil {
		writeOrderError(w, err, "checkout order")
		return
	}

	if h.hub != nil {
		h.hub.BroadcastJSON(ws.EventOrderUpdated, toOrderResponse(result.Order, result.Items))
	}
	h.broadcastFreedTable(r.Context(), result.Order)

	resp := checkoutResponse{orderResponse: toOrderResponse(result.Order, result.Items)}
	if result.Order.WhatsappSent && result.Order.CustomerPhone.Valid {
		text := receipt.FormatBill(h.buildBill(result.Order, result.Items))
		resp.BillText = text
		resp.WhatsappLink = receipt.WhatsAppLink(result.Order.CustomerPhone.String, text)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ShareWhatsApp handles POST /orders/{id}/whatsapp. It records the share on
// the paid order and returns the rendered bill with a wa.me link.
func (h *CheckoutHandler) ShareWhatsApp(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	var req whatsappRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.svc.RecordWhatsAppShare(r.Context(), orderID, req.Phone)
	if err != nil {
		writeOrderError(w, err, "record whatsapp share")
		return
	}

	items, err := h.store.ListOrderItems(r.Context(), order.ID)
	if err != nil {
		logger.L.WithError(err).Error("list order items")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	bill := h.buildBill(order, items)
	text := receipt.FormatBill(bill)
	link := receipt.WhatsAppLink(order.CustomerPhone.String, text)

	writeJSON(w, http.StatusOK, whatsappResponse{
		BillText:     text,
		WhatsappLink: link,
		Order:        toOrderResponse(order, items),
	})
}

// broadcastFreedTable pushes the table's post-checkout state. Settling a
// dine-in order frees its table inside the service transaction.
func (h *CheckoutHandler) broadcastFreedTable(ctx context.Context, order database.Order) {
	if h.hub == nil || !order.TableID.Valid {
		return
	}
	table, err := h.store.GetTable(ctx, order.TableID.Bytes)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			logger.L.WithError(err).Error("get table after checkout")
		}
		return
	}
	h.hub.BroadcastJSON(ws.EventTableUpdated, toTableResponse(table))
}

func (h *CheckoutHandler) buildBill(order database.Order, items []database.OrderItem) receipt.Bill {
	lines := make([]receipt.Line, len(items))
	for i, it := range items {
		lines[i] = receipt.Line{
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    numericToDecimal(it.Price),
		}
	}

	bill := receipt.Bill{
		CafeName:     h.cafeName,
		OrderID:      order.ID.String(),
		Lines:        lines,
		Subtotal:     numericToDecimal(order.TotalAmount),
		Discount:     numericToDecimal(order.DiscountAmount),
		ParcelCharge: numericToDecimal(order.ParcelCharge),
		Total:        numericToDecimal(order.FinalAmount),
	}
	if order.TableNumber.Valid {
		bill.TableNumber = order.TableNumber.String
	}
	if order.OfferPercent.Valid {
		bill.OfferPercent = int(order.OfferPercent.Int32)
	}
	if order.PaidAt.Valid {
		bill.IssuedAt = order.PaidAt.Time
	} else {
		bill.IssuedAt = order.UpdatedAt
	}
	return bill
}

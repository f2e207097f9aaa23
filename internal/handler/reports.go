package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/baadal-bistro/api/internal/database"
	"github.com/baadal-bistro/api/internal/logger"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// ReportStore defines the database methods needed by report handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type ReportStore interface {
	SalesSummary(ctx context.Context, arg database.SalesSummaryParams) (database.SalesSummaryRow, error)
	SalesByPaymentType(ctx context.Context, arg database.SalesSummaryParams) ([]database.SalesByPaymentTypeRow, error)
}

// ReportHandler handles sales reporting endpoints. Admin only.
type ReportHandler struct {
	store ReportStore
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(store ReportStore) *ReportHandler {
	return &ReportHandler{store: store}
}

// RegisterRoutes registers report endpoints on the given Chi router.
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/sales", h.Sales)
}

type salesByPaymentResponse struct {
	PaymentType string `json:"payment_type"`
	OrderCount  int64  `json:"order_count"`
	NetSales    string `json:"net_sales"`
}

type salesReportResponse struct {
	From          string                   `json:"from"`
	To            string                   `json:"to"`
	OrderCount    int64                    `json:"order_count"`
	GrossSales    string                   `json:"gross_sales"`
	DiscountGiven string                   `json:"discount_given"`
	ParcelCharges string                   `json:"parcel_charges"`
	NetSales      string                   `json:"net_sales"`
	ByPaymentType []salesByPaymentResponse `json:"by_payment_type"`
}

// Sales handles GET /reports/sales?from=YYYY-MM-DD&to=YYYY-MM-DD.
// Dates are inclusive; both default to today. Paid orders are bucketed by
// their paid_at timestamp.
func (h *ReportHandler) Sales(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	from, err := parseReportDate(r.URL.Query().Get("from"), now)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from date, expected YYYY-MM-DD")
		return
	}
	to, err := parseReportDate(r.URL.Query().Get("to"), now)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to date, expected YYYY-MM-DD")
		return
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "to must not be before from")
		return
	}
	// Half-open range: the day after "to" is the exclusive upper bound.
	end := to.AddDate(0, 0, 1)

	params := database.SalesSummaryParams{
		From: pgtype.Timestamptz{Time: from, Valid: true},
		To:   pgtype.Timestamptz{Time: end, Valid: true},
	}

	summary, err := h.store.SalesSummary(r.Context(), params)
	if err != nil {
		logger.L.WithError(err).Error("sales summary")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	byType, err := h.store.SalesByPaymentType(r.Context(), params)
	if err != nil {
		logger.L.WithError(err).Error("sales by payment type")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := salesReportResponse{
		From:          from.Format("2006-01-02"),
		To:            to.Format("2006-01-02"),
		OrderCount:    summary.OrderCount,
		GrossSales:    numericToString(summary.GrossSales),
		DiscountGiven: numericToString(summary.DiscountGiven),
		ParcelCharges: numericToString(summary.ParcelCharges),
		NetSales:      numericToString(summary.NetSales),
		ByPaymentType: make([]salesByPaymentResponse, len(byType)),
	}
	for i, row := range byType {
		resp.ByPaymentType[i] = salesByPaymentResponse{
			PaymentType: row.PaymentType,
			OrderCount:  row.OrderCount,
			NetSales:    numericToString(row.NetSales),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// parseReportDate parses a YYYY-MM-DD query value, defaulting to the start of
// today in the server's timezone.
func parseReportDate(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), nil
	}
	return time.ParseInLocation("2006-01-02", s, now.Location())
}

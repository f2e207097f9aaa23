package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/baadal-bistro/api/internal/auth"
	"github.com/baadal-bistro/api/internal/database"
	"github.com/baadal-bistro/api/internal/enum"
	"github.com/baadal-bistro/api/internal/handler"
	"github.com/baadal-bistro/api/internal/middleware"
	"github.com/baadal-bistro/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// --- Mock OrderServicer ---

type mockOrderService struct {
	getOpenOrderFn       func(ctx context.Context, tableID uuid.UUID) (*service.OrderWithItems, error)
	addItemsFn           func(ctx context.Context, req service.AddItemsRequest) (*service.OrderWithItems, error)
	createParcelOrderFn  func(ctx context.Context, req service.ParcelOrderRequest) (*service.OrderWithItems, error)
	removeLineQuantityFn func(ctx context.Context, req service.RemoveLineRequest) (*service.RemoveLineResult, error)
	updateStatusFn       func(ctx context.Context, orderID uuid.UUID, status string) (database.Order, error)
}

func (m *mockOrderService) GetOpenOrder(ctx context.Context, tableID uuid.UUID) (*service.OrderWithItems, error) {
	if m.getOpenOrderFn != nil {
		return m.getOpenOrderFn(ctx, tableID)
	}
	return nil, service.ErrNoOpenOrder
}

func (m *mockOrderService) AddItems(ctx context.Context, req service.AddItemsRequest) (*service.OrderWithItems, error) {
	if m.addItemsFn != nil {
		return m.addItemsFn(ctx, req)
	}
	return nil, service.ErrTableNotFound
}

func (m *mockOrderService) CreateParcelOrder(ctx context.Context, req service.ParcelOrderRequest) (*service.OrderWithItems, error) {
	if m.createParcelOrderFn != nil {
		return m.createParcelOrderFn(ctx, req)
	}
	return nil, service.ErrEmptyCart
}

func (m *mockOrderService) RemoveLineQuantity(ctx context.Context, req service.RemoveLineRequest) (*service.RemoveLineResult, error) {
	if m.removeLineQuantityFn != nil {
		return m.removeLineQuantityFn(ctx, req)
	}
	return nil, service.ErrOrderNotFound
}

func (m *mockOrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (database.Order, error) {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, orderID, status)
	}
	return database.Order{}, service.ErrOrderNotFound
}

// --- Mock OrderStore ---

type mockOrderReadStore struct {
	getOrderFn           func(ctx context.Context, id uuid.UUID) (database.Order, error)
	listOpenOrdersFn     func(ctx context.Context) ([]database.Order, error)
	listOrdersByStatusFn func(ctx context.Context, status string) ([]database.Order, error)
	listOrderItemsFn     func(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
}

func (m *mockOrderReadStore) GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error) {
	if m.getOrderFn != nil {
		return m.getOrderFn(ctx, id)
	}
	return database.Order{}, pgx.ErrNoRows
}

func (m *mockOrderReadStore) ListOpenOrders(ctx context.Context) ([]database.Order, error) {
	if m.listOpenOrdersFn != nil {
		return m.listOpenOrdersFn(ctx)
	}
	return []database.Order{}, nil
}

func (m *mockOrderReadStore) ListOrdersByStatus(ctx context.Context, status string) ([]database.Order, error) {
	if m.listOrdersByStatusFn != nil {
		return m.listOrdersByStatusFn(ctx, status)
	}
	return []database.Order{}, nil
}

func (m *mockOrderReadStore) ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error) {
	if m.listOrderItemsFn != nil {
		return m.listOrderItemsFn(ctx, orderID)
	}
	return []database.OrderItem{}, nil
}

// --- Mock Broadcaster ---

type mockBroadcaster struct {
	events []string
}

func (m *mockBroadcaster) BroadcastJSON(eventType string, payload any) {
	m.events = append(m.events, eventType)
}

// --- Test helpers ---

const testJWTSecret = "test-secret-for-handlers"

func testNumeric(t *testing.T, s string) pgtype.Numeric {
	t.Helper()
	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		t.Fatalf("scan numeric %q: %v", s, err)
	}
	return n
}

func testClaims(role string) *auth.Claims {
	return &auth.Claims{UserID: uuid.New(), Role: role}
}

func setupOrderRouter(svc *mockOrderService, store *mockOrderReadStore, hub *mockBroadcaster) *chi.Mux {
	var b handler.Broadcaster
	if hub != nil {
		b = hub
	}
	h := handler.NewOrderHandler(svc, store, b)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Route("/tables", h.RegisterTableRoutes)
	// Mirrors the role-split registration in internal/router.
	r.Route("/orders", func(r chi.Router) {
		r.Post("/parcel", h.CreateParcel)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Patch("/{id}/status", h.UpdateStatus)
		r.Delete("/{id}/items/{itemID}", h.RemoveLine)
	})
	return r
}

func doAuthRequest(t *testing.T, router http.Handler, method, path string, body interface{}, claims *auth.Claims) *httptest.ResponseRecorder {
	t.Helper()

	token, err := auth.GenerateToken(testJWTSecret, claims.UserID, claims.Role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

// --- Test data builders ---

func testOrderWithItems(t *testing.T, tableID uuid.UUID, tableNumber string) *service.OrderWithItems {
	t.Helper()
	orderID := uuid.New()
	now := time.Now()
	return &service.OrderWithItems{
		Order: database.Order{
			ID:          orderID,
			TableID:     pgtype.UUID{Bytes: tableID, Valid: true},
			TableNumber: pgtype.Text{String: tableNumber, Valid: true},
			OrderType:   enum.OrderTypeDineIn,
			Status:      enum.OrderStatusPending,
			TotalAmount: testNumeric(t, "360.00"),
			CreatedBy:   uuid.New(),
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		Items: []database.OrderItem{
			{
				ID:         uuid.New(),
				OrderID:    orderID,
				MenuItemID: uuid.New(),
				Name:       "Espresso",
				Price:      testNumeric(t, "120.00"),
				Quantity:   3,
			},
		},
	}
}

// --- AddItems tests ---

func TestAddItems_HappyPath(t *testing.T) {
	tableID := uuid.New()
	claims := testClaims(enum.UserRoleWaiter)
	menuItemID := uuid.New()

	svc := &mockOrderService{
		addItemsFn: func(ctx context.Context, req service.AddItemsRequest) (*service.OrderWithItems, error) {
			if req.TableID != tableID {
				t.Errorf("table_id: got %v, want %v", req.TableID, tableID)
			}
			if req.CreatedBy != claims.UserID {
				t.Errorf("created_by: got %v, want %v", req.CreatedBy, claims.UserID)
			}
			if len(req.Items) != 1 || req.Items[0].Quantity != 3 {
				t.Errorf("items: got %+v", req.Items)
			}
			return testOrderWithItems(t, tableID, "T1"), nil
		},
	}
	hub := &mockBroadcaster{}
	router := setupOrderRouter(svc, &mockOrderReadStore{}, hub)

	rr := doAuthRequest(t, router, "POST", "/tables/"+tableID.String()+"/items", map[string]interface{}{
		"items": []map[string]interface{}{
			{"menu_item_id": menuItemID.String(), "quantity": 3},
		},
	}, claims)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["status"] != "pending" {
		t.Errorf("status: got %v, want pending", resp["status"])
	}
	if resp["total_amount"] != "360.00" {
		t.Errorf("total_amount: got %v, want 360.00", resp["total_amount"])
	}
	if resp["table_number"] != "T1" {
		t.Errorf("table_number: got %v, want T1", resp["table_number"])
	}
	items := resp["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("items count: got %d, want 1", len(items))
	}
	item := items[0].(map[string]interface{})
	if item["name"] != "Espresso" {
		t.Errorf("item name: got %v, want Espresso", item["name"])
	}
	if item["quantity"] != float64(3) {
		t.Errorf("item quantity: got %v, want 3", item["quantity"])
	}

	if len(hub.events) != 1 || hub.events[0] != "order.updated" {
		t.Errorf("broadcast events: got %v, want [order.updated]", hub.events)
	}
}

func TestAddItems_InvalidTableID(t *testing.T) {
	claims := testClaims(enum.UserRoleWaiter)
	router := setupOrderRouter(&mockOrderService{}, &mockOrderReadStore{}, nil)

	rr := doAuthRequest(t, router, "POST", "/tables/not-a-uuid/items", map[string]interface{}{
		"items": []map[string]interface{}{},
	}, claims)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
}

func TestAddItems_EmptyCart(t *testing.T) {
	tableID := uuid.New()
	claims := testClaims(enum.UserRoleWaiter)

	svc := &mockOrderService{
		addItemsFn: func(ctx context.Context, req service.AddItemsRequest) (*service.OrderWithItems, error) {
			return nil, service.ErrEmptyCart
		},
	}
	router := setupOrderRouter(svc, &mockOrderReadStore{}, nil)

	rr := doAuthRequest(t, router, "POST", "/tables/"+tableID.String()+"/items", map[string]interface{}{
		"items": []map[string]interface{}{},
	}, claims)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["error"] != "items are required" {
		t.Errorf("error: got %v, want 'items are required'", resp["error"])
	}
}

func TestAddItems_TableNotFound(t *testing.T) {
	tableID := uuid.New()
	claims := testClaims(enum.UserRoleWaiter)

	svc := &mockOrderService{
		addItemsFn: func(ctx context.Context, req service.AddItemsRequest) (*service.OrderWithItems, error) {
			return nil, service.ErrTableNotFound
		},
	}
	router := setupOrderRouter(svc, &mockOrderReadStore{}, nil)

	rr := doAuthRequest(t, router, "POST", "/tables/"+tableID.String()+"/items", map[string]interface{}{
		"items": []map[string]interface{}{
			{"menu_item_id": uuid.New().String(), "quantity": 1},
		},
	}, claims)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusNotFound, rr.Body.String())
	}
}

func TestAddItems_TableClosed(t *testing.T) {
	tableID := uuid.New()
	claims := testClaims(enum.UserRoleWaiter)

	svc := &mockOrderService{
		addItemsFn: func(ctx context.Context, req service.AddItemsRequest) (*service.OrderWithItems, error) {
			return nil, service.ErrTableClosed
		},
	}
	router := setupOrderRouter(svc, &mockOrderReadStore{}, nil)

	rr := doAuthRequest(t, router, "POST", "/tables/"+tableID.String()+"/items", map[string]interface{}{
		"items": []map[string]interface{}{
			{"menu_item_id": uuid.New().String(), "quantity": 1},
		},
	}, claims)

	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusConflict, rr.Body.String())
	}
}

func TestAddItems_NoAuth(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, &mockOrderReadStore{}, nil)

	req := httptest.NewRequest("POST", "/tables/"+uuid.New().String()+"/items", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusUnauthorized, rr.Body.String())
	}
}

// --- GetOpenOrder tests ---

func TestGetOpenOrder_HappyPath(t *testing.T) {
	tableID := uuid.New()
	claims := testClaims(enum.UserRoleWaiter)

	svc := &mockOrderService{
		getOpenOrderFn: func(ctx context.Context, id uuid.UUID) (*service.OrderWithItems, error) {
			if id != tableID {
				t.Errorf("table_id: got %v, want %v", id, tableID)
			}
			return testOrderWithItems(t, tableID, "T1"), nil
		},
	}
	router := setupOrderRouter(svc, &mockOrderReadStore{}, nil)

	rr := doAuthRequest(t, router, "GET", "/tables/"+tableID.String()+"/order", nil, claims)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["order_type"] != "dine_in" {
		t.Errorf("order_type: got %v, want dine_in", resp["order_type"])
	}
}

func TestGetOpenOrder_NoOpenOrder(t *testing.T) {
	tableID := uuid.New()
	claims := testClaims(enum.UserRoleWaiter)

	router := setupOrderRouter(&mockOrderService{}, &mockOrderReadStore{}, nil)
	rr := doAuthRequest(t, router, "GET", "/tables/"+tableID.String()+"/order", nil, claims)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusNotFound, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["error"] != "table has no open order" {
		t.Errorf("error: got %v, want 'table has no open order'", resp["error"])
	}
}

// --- Parcel tests ---

func TestCreateParcel_HappyPath(t *testing.T) {
	claims := testClaims(enum.UserRoleWaiter)
	orderID := uuid.New()
	now := time.Now()

	svc := &mockOrderService{
		createParcelOrderFn: func(ctx context.Context, req service.ParcelOrderRequest) (*service.OrderWithItems, error) {
			if req.CreatedBy != claims.UserID {
				t.Errorf("created_by: got %v, want %v", req.CreatedBy, claims.UserID)
			}
			return &service.OrderWithItems{
				Order: database.Order{
					ID:          orderID,
					OrderType:   enum.OrderTypeParcel,
					Status:      enum.OrderStatusPending,
					TotalAmount: testNumeric(t, "180.00"),
					CreatedBy:   claims.UserID,
					CreatedAt:   now,
					UpdatedAt:   now,
				},
				Items: []database.OrderItem{
					{ID: uuid.New(), OrderID: orderID, MenuItemID: uuid.New(), Name: "Cold Coffee", Price: testNumeric(t, "180.00"), Quantity: 1},
				},
			}, nil
		},
	}
	hub := &mockBroadcaster{}
	router := setupOrderRouter(svc, &mockOrderReadStore{}, hub)

	rr := doAuthRequest(t, router, "POST", "/orders/parcel", map[string]interface{}{
		"items": []map[string]interface{}{
			{"menu_item_id": uuid.New().String(), "quantity": 1},
		},
	}, claims)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["order_type"] != "parcel" {
		t.Errorf("order_type: got %v, want parcel", resp["order_type"])
	}
	if resp["table_id"] != nil {
		t.Errorf("table_id: expected nil, got %v", resp["table_id"])
	}
	if len(hub.events) != 1 {
		t.Errorf("broadcast events: got %v, want one order.updated", hub.events)
	}
}

// --- List / Get tests ---

func TestOrderList_DefaultsToOpenOrders(t *testing.T) {
	claims := testClaims(enum.UserRoleCashier)
	order := testOrderWithItems(t, uuid.New(), "T2")

	called := false
	store := &mockOrderReadStore{
		listOpenOrdersFn: func(ctx context.Context) ([]database.Order, error) {
			called = true
			return []database.Order{order.Order}, nil
		},
		listOrderItemsFn: func(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error) {
			return order.Items, nil
		},
	}
	router := setupOrderRouter(&mockOrderService{}, store, nil)

	rr := doAuthRequest(t, router, "GET", "/orders/", nil, claims)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if !called {
		t.Error("expected ListOpenOrders to be called")
	}

	var resp []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 1 {
		t.Fatalf("orders count: got %d, want 1", len(resp))
	}
}

func TestOrderList_StatusFilter(t *testing.T) {
	claims := testClaims(enum.UserRoleCashier)

	store := &mockOrderReadStore{
		listOrdersByStatusFn: func(ctx context.Context, status string) ([]database.Order, error) {
			if status != enum.OrderStatusPaid {
				t.Errorf("status: got %v, want paid", status)
			}
			return []database.Order{}, nil
		},
	}
	router := setupOrderRouter(&mockOrderService{}, store, nil)

	rr := doAuthRequest(t, router, "GET", "/orders/?status=paid", nil, claims)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
}

func TestOrderList_InvalidStatusFilter(t *testing.T) {
	claims := testClaims(enum.UserRoleCashier)
	router := setupOrderRouter(&mockOrderService{}, &mockOrderReadStore{}, nil)

	rr := doAuthRequest(t, router, "GET", "/orders/?status=cooked", nil, claims)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
}

func TestOrderGet_NotFound(t *testing.T) {
	claims := testClaims(enum.UserRoleCashier)
	router := setupOrderRouter(&mockOrderService{}, &mockOrderReadStore{}, nil)

	rr := doAuthRequest(t, router, "GET", "/orders/"+uuid.New().String(), nil, claims)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusNotFound, rr.Body.String())
	}
}

// --- UpdateStatus tests ---

func TestOrderUpdateStatus_HappyPath(t *testing.T) {
	claims := testClaims(enum.UserRoleWaiter)
	order := testOrderWithItems(t, uuid.New(), "T3")
	order.Order.Status = enum.OrderStatusPreparing

	svc := &mockOrderService{
		updateStatusFn: func(ctx context.Context, orderID uuid.UUID, status string) (database.Order, error) {
			if status != enum.OrderStatusPreparing {
				t.Errorf("status: got %v, want preparing", status)
			}
			return order.Order, nil
		},
	}
	store := &mockOrderReadStore{
		listOrderItemsFn: func(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error) {
			return order.Items, nil
		},
	}
	hub := &mockBroadcaster{}
	router := setupOrderRouter(svc, store, hub)

	rr := doAuthRequest(t, router, "PATCH", "/orders/"+order.Order.ID.String()+"/status", map[string]interface{}{
		"status": "preparing",
	}, claims)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["status"] != "preparing" {
		t.Errorf("status: got %v, want preparing", resp["status"])
	}
	if len(hub.events) != 1 {
		t.Errorf("broadcast events: got %v, want one order.updated", hub.events)
	}
}

func TestOrderUpdateStatus_PaidRejected(t *testing.T) {
	claims := testClaims(enum.UserRoleWaiter)

	svc := &mockOrderService{
		updateStatusFn: func(ctx context.Context, orderID uuid.UUID, status string) (database.Order, error) {
			return database.Order{}, service.ErrInvalidStatus
		},
	}
	router := setupOrderRouter(svc, &mockOrderReadStore{}, nil)

	rr := doAuthRequest(t, router, "PATCH", "/orders/"+uuid.New().String()+"/status", map[string]interface{}{
		"status": "paid",
	}, claims)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
}

// --- RemoveLine tests ---

func TestRemoveLine_Partial(t *testing.T) {
	claims := testClaims(enum.UserRoleWaiter)
	order := testOrderWithItems(t, uuid.New(), "T4")
	lineID := order.Items[0].ID

	svc := &mockOrderService{
		removeLineQuantityFn: func(ctx context.Context, req service.RemoveLineRequest) (*service.RemoveLineResult, error) {
			if req.LineID != lineID {
				t.Errorf("line_id: got %v, want %v", req.LineID, lineID)
			}
			if req.Quantity != 1 {
				t.Errorf("quantity: got %d, want 1", req.Quantity)
			}
			return &service.RemoveLineResult{Order: order.Order, Items: order.Items}, nil
		},
	}
	hub := &mockBroadcaster{}
	router := setupOrderRouter(svc, &mockOrderReadStore{}, hub)

	rr := doAuthRequest(t, router, "DELETE", "/orders/"+order.Order.ID.String()+"/items/"+lineID.String()+"?qty=1", nil, claims)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if len(hub.events) != 1 {
		t.Errorf("broadcast events: got %v, want one order.updated", hub.events)
	}
}

func TestRemoveLine_Cancelled(t *testing.T) {
	claims := testClaims(enum.UserRoleWaiter)
	order := testOrderWithItems(t, uuid.New(), "T5")

	svc := &mockOrderService{
		removeLineQuantityFn: func(ctx context.Context, req service.RemoveLineRequest) (*service.RemoveLineResult, error) {
			return &service.RemoveLineResult{Order: order.Order, Cancelled: true}, nil
		},
	}
	router := setupOrderRouter(svc, &mockOrderReadStore{}, nil)

	rr := doAuthRequest(t, router, "DELETE", "/orders/"+order.Order.ID.String()+"/items/"+order.Items[0].ID.String(), nil, claims)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusNoContent, rr.Body.String())
	}
}

func TestRemoveLine_InvalidQty(t *testing.T) {
	claims := testClaims(enum.UserRoleWaiter)
	router := setupOrderRouter(&mockOrderService{}, &mockOrderReadStore{}, nil)

	rr := doAuthRequest(t, router, "DELETE", "/orders/"+uuid.New().String()+"/items/"+uuid.New().String()+"?qty=-2", nil, claims)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
}

func TestRemoveLine_PaidOrder(t *testing.T) {
	claims := testClaims(enum.UserRoleWaiter)

	svc := &mockOrderService{
		removeLineQuantityFn: func(ctx context.Context, req service.RemoveLineRequest) (*service.RemoveLineResult, error) {
			return nil, service.ErrOrderNotOpen
		},
	}
	router := setupOrderRouter(svc, &mockOrderReadStore{}, nil)

	rr := doAuthRequest(t, router, "DELETE", "/orders/"+uuid.New().String()+"/items/"+uuid.New().String(), nil, claims)

	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusConflict, rr.Body.String())
	}
}

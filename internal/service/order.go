package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/baadal-bistro/api/internal/billing"
	"github.com/baadal-bistro/api/internal/database"
	"github.com/baadal-bistro/api/internal/enum"
	"github.com/baadal-bistro/api/internal/logger"
	"github.com/baadal-bistro/api/internal/receipt"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Errors returned by the order service.
var (
	ErrEmptyCart          = errors.New("items are required")
	ErrInvalidQuantity    = errors.New("quantity must be > 0")
	ErrInvalidMenuItemID  = errors.New("invalid menu_item_id")
	ErrMenuItemNotFound   = errors.New("menu item not found")
	ErrItemUnavailable    = errors.New("menu item is not available")
	ErrTableNotFound      = errors.New("table not found")
	ErrTableClosed        = errors.New("table is not accepting orders")
	ErrTableNotOccupied   = errors.New("table is not occupied")
	ErrNoOpenOrder        = errors.New("table has no open order")
	ErrMultipleOpenOrders = errors.New("table has more than one open order")
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderNotOpen       = errors.New("order is not open")
	ErrAlreadyPaid        = errors.New("order is already paid")
	ErrOrderNotPaid       = errors.New("order is not paid")
	ErrLineNotFound       = errors.New("order line not found")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrInvalidPaymentType = errors.New("invalid payment_type")
	ErrInvalidCharge      = errors.New("invalid parcel_charge")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed for the order lifecycle.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetTableForUpdate(ctx context.Context, id uuid.UUID) (database.Table, error)
	OccupyTable(ctx context.Context, id uuid.UUID) (int64, error)
	ReleaseTable(ctx context.Context, id uuid.UUID) (int64, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (database.MenuItem, error)
	ListOpenOrdersByTable(ctx context.Context, tableID uuid.UUID) ([]database.Order, error)
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	UpdateOrderTotal(ctx context.Context, arg database.UpdateOrderTotalParams) (database.Order, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	MarkOrderPaid(ctx context.Context, arg database.MarkOrderPaidParams) (database.Order, error)
	UpdateOrderWhatsapp(ctx context.Context, arg database.UpdateOrderWhatsappParams) (database.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	UpdateOrderItemQuantity(ctx context.Context, arg database.UpdateOrderItemQuantityParams) (database.OrderItem, error)
	DeleteOrderItem(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewOrderStore func(db database.DBTX) OrderStore

// ItemRequest is one cart line in an add-items or parcel request.
type ItemRequest struct {
	MenuItemID string
	Quantity   int32
}

// AddItemsRequest adds cart items to a table's open order, creating the
// order first if the table has none.
type AddItemsRequest struct {
	TableID   uuid.UUID
	CreatedBy uuid.UUID
	Items     []ItemRequest
}

// ParcelOrderRequest creates a takeaway order not bound to any table.
type ParcelOrderRequest struct {
	CreatedBy uuid.UUID
	Items     []ItemRequest
}

// RemoveLineRequest removes quantity from one line of an open order.
type RemoveLineRequest struct {
	OrderID  uuid.UUID
	LineID   uuid.UUID
	Quantity int32
}

// CheckoutRequest settles an open order.
type CheckoutRequest struct {
	OrderID       uuid.UUID
	OfferPercent  int
	ParcelCharge  string // decimal, empty means zero
	PaymentType   string
	CustomerPhone string
}

// OrderWithItems is an order and its lines.
type OrderWithItems struct {
	Order database.Order
	Items []database.OrderItem
}

// RemoveLineResult reports the state of the order after a line edit.
// Cancelled is set when the edit emptied the order and the service is
// configured to cancel empty orders.
type RemoveLineResult struct {
	Order     database.Order
	Items     []database.OrderItem
	Cancelled bool
}

// OrderService handles the order lifecycle business logic.
type OrderService struct {
	pool              TxBeginner
	newStore          NewOrderStore
	cancelEmptyOrders bool
}

// NewOrderService creates a new OrderService. When cancelEmptyOrders is set,
// removing the last line deletes the order and frees its table; otherwise the
// empty order stays open at a zero total.
func NewOrderService(pool TxBeginner, newStore NewOrderStore, cancelEmptyOrders bool) *OrderService {
	return &OrderService{pool: pool, newStore: newStore, cancelEmptyOrders: cancelEmptyOrders}
}

// cartLine is a validated request line with its menu item id parsed.
type cartLine struct {
	menuItemID uuid.UUID
	quantity   int32
}

// foldItems validates request lines and merges duplicates of the same menu
// item into a single line.
func foldItems(items []ItemRequest) ([]cartLine, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	index := make(map[uuid.UUID]int)
	var lines []cartLine
	for i, item := range items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}
		id, err := uuid.Parse(item.MenuItemID)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidMenuItemID)
		}
		if at, ok := index[id]; ok {
			lines[at].quantity += item.Quantity
			continue
		}
		index[id] = len(lines)
		lines = append(lines, cartLine{menuItemID: id, quantity: item.Quantity})
	}
	return lines, nil
}

// GetOpenOrder returns the table's single open order with its lines.
func (s *OrderService) GetOpenOrder(ctx context.Context, tableID uuid.UUID) (*OrderWithItems, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	order, err := s.openOrderForTable(ctx, store, tableID)
	if err != nil {
		return nil, err
	}
	items, err := store.ListOrderItems(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &OrderWithItems{Order: order, Items: items}, nil
}

// openOrderForTable resolves the table's open order. More than one open
// order means the uniqueness invariant was breached outside this service;
// it is reported, never silently repaired.
func (s *OrderService) openOrderForTable(ctx context.Context, store OrderStore, tableID uuid.UUID) (database.Order, error) {
	open, err := store.ListOpenOrdersByTable(ctx, tableID)
	if err != nil {
		return database.Order{}, fmt.Errorf("list open orders: %w", err)
	}
	switch len(open) {
	case 0:
		return database.Order{}, ErrNoOpenOrder
	case 1:
		return open[0], nil
	default:
		logger.L.WithField("table_id", tableID).Error("table has multiple open orders")
		return database.Order{}, ErrMultipleOpenOrders
	}
}

// AddItems merges cart items into the table's open order inside one
// transaction. If the table has no open order, a pending dine-in order is
// created and the table is flipped to occupied in the same transaction, so
// two waiters racing on an empty table cannot both create an order.
func (s *OrderService) AddItems(ctx context.Context, req AddItemsRequest) (*OrderWithItems, error) {
	lines, err := foldItems(req.Items)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	table, err := store.GetTableForUpdate(ctx, req.TableID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("get table: %w", err)
	}
	if table.Status == enum.TableStatusBilling || table.Status == enum.TableStatusClosed {
		return nil, ErrTableClosed
	}

	order, err := s.openOrderForTable(ctx, store, table.ID)
	if errors.Is(err, ErrNoOpenOrder) {
		order, err = store.CreateOrder(ctx, database.CreateOrderParams{
			TableID:     pgtype.UUID{Bytes: table.ID, Valid: true},
			TableNumber: pgtype.Text{String: table.Number, Valid: true},
			OrderType:   enum.OrderTypeDineIn,
			Status:      enum.OrderStatusPending,
			TotalAmount: decimalToNumeric(decimal.Zero),
			CreatedBy:   req.CreatedBy,
		})
		if err != nil {
			return nil, fmt.Errorf("create order: %w", err)
		}
		// CAS occupy. Zero rows means the table was already occupied,
		// which is fine when its previous order was settled moments ago.
		if _, err := store.OccupyTable(ctx, table.ID); err != nil {
			return nil, fmt.Errorf("occupy table: %w", err)
		}
	} else if err != nil {
		return nil, err
	}

	if err := s.applyLines(ctx, store, order.ID, lines); err != nil {
		return nil, err
	}

	result, err := s.recalcTotal(ctx, store, order.ID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return result, nil
}

// CreateParcelOrder creates a takeaway order with the given items. No table
// is involved, so there is nothing to occupy.
func (s *OrderService) CreateParcelOrder(ctx context.Context, req ParcelOrderRequest) (*OrderWithItems, error) {
	lines, err := foldItems(req.Items)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		OrderType:   enum.OrderTypeParcel,
		Status:      enum.OrderStatusPending,
		TotalAmount: decimalToNumeric(decimal.Zero),
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.applyLines(ctx, store, order.ID, lines); err != nil {
		return nil, err
	}

	result, err := s.recalcTotal(ctx, store, order.ID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return result, nil
}

// applyLines merges validated cart lines into the order. A line for a menu
// item already on the order has its quantity summed; new items are added
// with the menu price and name snapshotted at order time.
func (s *OrderService) applyLines(ctx context.Context, store OrderStore, orderID uuid.UUID, lines []cartLine) error {
	existing, err := store.ListOrderItems(ctx, orderID)
	if err != nil {
		return fmt.Errorf("list order items: %w", err)
	}
	byMenuItem := make(map[uuid.UUID]database.OrderItem, len(existing))
	for _, it := range existing {
		byMenuItem[it.MenuItemID] = it
	}

	for i, line := range lines {
		if current, ok := byMenuItem[line.menuItemID]; ok {
			_, err := store.UpdateOrderItemQuantity(ctx, database.UpdateOrderItemQuantityParams{
				ID:       current.ID,
				Quantity: current.Quantity + line.quantity,
			})
			if err != nil {
				return fmt.Errorf("item[%d]: update quantity: %w", i, err)
			}
			continue
		}

		menuItem, err := store.GetMenuItem(ctx, line.menuItemID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("item[%d]: %w", i, ErrMenuItemNotFound)
			}
			return fmt.Errorf("item[%d]: get menu item: %w", i, err)
		}
		if !menuItem.IsAvailable {
			return fmt.Errorf("item[%d]: %w", i, ErrItemUnavailable)
		}
		_, err = store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:    orderID,
			MenuItemID: menuItem.ID,
			Name:       menuItem.Name,
			Price:      menuItem.Price,
			Quantity:   line.quantity,
		})
		if err != nil {
			return fmt.Errorf("item[%d]: create order item: %w", i, err)
		}
	}
	return nil
}

// recalcTotal rereads the order lines, sums them and persists the subtotal.
func (s *OrderService) recalcTotal(ctx context.Context, store OrderStore, orderID uuid.UUID) (*OrderWithItems, error) {
	items, err := store.ListOrderItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	subtotal := decimal.Zero
	for _, it := range items {
		price := numericToDecimal(it.Price)
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt32(it.Quantity)))
	}
	order, err := store.UpdateOrderTotal(ctx, database.UpdateOrderTotalParams{
		ID:          orderID,
		TotalAmount: decimalToNumeric(subtotal),
	})
	if err != nil {
		return nil, fmt.Errorf("update order total: %w", err)
	}
	return &OrderWithItems{Order: order, Items: items}, nil
}

// RemoveLineQuantity subtracts quantity from one line of an open order.
// Removing at least the line's current quantity drops the whole line.
func (s *OrderService) RemoveLineQuantity(ctx context.Context, req RemoveLineRequest) (*RemoveLineResult, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.GetOrderForUpdate(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if !enum.IsOpenOrderStatus(order.Status) {
		return nil, ErrOrderNotOpen
	}

	items, err := store.ListOrderItems(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	var line *database.OrderItem
	for i := range items {
		if items[i].ID == req.LineID {
			line = &items[i]
			break
		}
	}
	if line == nil {
		return nil, ErrLineNotFound
	}

	if remaining := line.Quantity - req.Quantity; remaining > 0 {
		_, err = store.UpdateOrderItemQuantity(ctx, database.UpdateOrderItemQuantityParams{
			ID:       line.ID,
			Quantity: remaining,
		})
	} else {
		_, err = store.DeleteOrderItem(ctx, line.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("update line: %w", err)
	}

	result, err := s.recalcTotal(ctx, store, order.ID)
	if err != nil {
		return nil, err
	}

	cancelled := false
	if len(result.Items) == 0 && s.cancelEmptyOrders {
		if order.TableID.Valid {
			released, err := store.ReleaseTable(ctx, order.TableID.Bytes)
			if err != nil {
				return nil, fmt.Errorf("release table: %w", err)
			}
			if released == 0 {
				logger.L.WithField("order_id", order.ID).Error("open order on a table that is not occupied")
				return nil, ErrTableNotOccupied
			}
		}
		if _, err := store.DeleteOrder(ctx, order.ID); err != nil {
			return nil, fmt.Errorf("delete empty order: %w", err)
		}
		cancelled = true
		result.Order = order
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &RemoveLineResult{Order: result.Order, Items: result.Items, Cancelled: cancelled}, nil
}

// UpdateStatus moves an open order between pending and preparing.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (database.Order, error) {
	if !enum.IsOpenOrderStatus(status) {
		return database.Order{}, ErrInvalidStatus
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.GetOrderForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}
	if !enum.IsOpenOrderStatus(order.Status) {
		return database.Order{}, ErrOrderNotOpen
	}

	order, err = store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{ID: orderID, Status: status})
	if err != nil {
		return database.Order{}, fmt.Errorf("update status: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return database.Order{}, fmt.Errorf("commit tx: %w", err)
	}
	return order, nil
}

// Checkout settles an open order: the discount and final amount are
// recomputed server side from the stored subtotal, the order is marked paid
// and its table is freed, all in one transaction. A second checkout of the
// same order sees the paid status and fails with ErrAlreadyPaid; a dine-in
// order whose table is no longer occupied fails with ErrTableNotOccupied.
// Supplying a customer phone records the receipt share on the paid order.
func (s *OrderService) Checkout(ctx context.Context, req CheckoutRequest) (*OrderWithItems, error) {
	if !enum.IsValidPaymentType(req.PaymentType) {
		return nil, ErrInvalidPaymentType
	}
	parcelCharge := decimal.Zero
	if req.ParcelCharge != "" {
		var err error
		parcelCharge, err = decimal.NewFromString(req.ParcelCharge)
		if err != nil || parcelCharge.IsNegative() {
			return nil, ErrInvalidCharge
		}
	}
	customerPhone := pgtype.Text{}
	if req.CustomerPhone != "" {
		clean, err := receipt.CleanPhone(req.CustomerPhone)
		if err != nil {
			return nil, err
		}
		customerPhone = pgtype.Text{String: clean, Valid: true}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.GetOrderForUpdate(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order.Status == enum.OrderStatusPaid {
		return nil, ErrAlreadyPaid
	}

	subtotal := numericToDecimal(order.TotalAmount)
	discount, err := billing.Discount(subtotal, req.OfferPercent)
	if err != nil {
		return nil, err
	}
	final := billing.Final(subtotal, discount, parcelCharge)

	if order.TableID.Valid {
		released, err := store.ReleaseTable(ctx, order.TableID.Bytes)
		if err != nil {
			return nil, fmt.Errorf("release table: %w", err)
		}
		if released == 0 {
			logger.L.WithField("order_id", order.ID).Error("open order on a table that is not occupied")
			return nil, ErrTableNotOccupied
		}
	}

	order, err = store.MarkOrderPaid(ctx, database.MarkOrderPaidParams{
		ID:             order.ID,
		OfferPercent:   pgtype.Int4{Int32: int32(req.OfferPercent), Valid: true},
		DiscountAmount: decimalToNumeric(discount),
		ParcelCharge:   decimalToNumeric(parcelCharge),
		FinalAmount:    decimalToNumeric(final),
		PaymentType:    pgtype.Text{String: req.PaymentType, Valid: true},
		CustomerPhone:  customerPhone,
		WhatsappSent:   customerPhone.Valid,
	})
	if err != nil {
		return nil, fmt.Errorf("mark order paid: %w", err)
	}

	items, err := store.ListOrderItems(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &OrderWithItems{Order: order, Items: items}, nil
}

// RecordWhatsAppShare stores the customer phone on a paid order and stamps
// the share time.
func (s *OrderService) RecordWhatsAppShare(ctx context.Context, orderID uuid.UUID, phone string) (database.Order, error) {
	clean, err := receipt.CleanPhone(phone)
	if err != nil {
		return database.Order{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.GetOrderForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}
	if order.Status != enum.OrderStatusPaid {
		return database.Order{}, ErrOrderNotPaid
	}

	order, err = store.UpdateOrderWhatsapp(ctx, database.UpdateOrderWhatsappParams{
		ID:            orderID,
		CustomerPhone: pgtype.Text{String: clean, Valid: true},
	})
	if err != nil {
		return database.Order{}, fmt.Errorf("update whatsapp: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return database.Order{}, fmt.Errorf("commit tx: %w", err)
	}
	return order, nil
}

// --- Helpers ---

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}

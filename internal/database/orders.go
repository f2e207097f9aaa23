package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, table_id, table_number, order_type, status, total_amount,
	offer_percent, discount_amount, parcel_charge, final_amount, payment_type,
	customer_phone, whatsapp_sent, whatsapp_sent_at, created_by, created_at, updated_at, paid_at`

func scanOrder(row interface{ Scan(...any) error }) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.TableID, &o.TableNumber, &o.OrderType, &o.Status, &o.TotalAmount,
		&o.OfferPercent, &o.DiscountAmount, &o.ParcelCharge, &o.FinalAmount, &o.PaymentType,
		&o.CustomerPhone, &o.WhatsappSent, &o.WhatsappSentAt, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt, &o.PaidAt,
	)
	return o, err
}

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

// GetOrderForUpdate locks the order row; checkout and line edits take this
// lock so a concurrent second checkout observes the paid status.
func (q *Queries) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
	return scanOrder(row)
}

// ListOpenOrdersByTable returns every order for the table still in an open
// status. The schema's partial unique index keeps this at one row; more than
// one means the invariant was breached outside this application.
func (q *Queries) ListOpenOrdersByTable(ctx context.Context, tableID uuid.UUID) ([]Order, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE table_id = $1 AND status IN ('pending', 'preparing')
		ORDER BY created_at`, tableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (q *Queries) ListOrdersByStatus(ctx context.Context, status string) ([]Order, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE status = $1 ORDER BY created_at`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (q *Queries) ListOpenOrders(ctx context.Context) ([]Order, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE status IN ('pending', 'preparing') ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

type CreateOrderParams struct {
	TableID     pgtype.UUID
	TableNumber pgtype.Text
	OrderType   string
	Status      string
	TotalAmount pgtype.Numeric
	CreatedBy   uuid.UUID
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO orders (table_id, table_number, order_type, status, total_amount, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+orderColumns,
		arg.TableID, arg.TableNumber, arg.OrderType, arg.Status, arg.TotalAmount, arg.CreatedBy)
	return scanOrder(row)
}

type UpdateOrderTotalParams struct {
	ID          uuid.UUID
	TotalAmount pgtype.Numeric
}

func (q *Queries) UpdateOrderTotal(ctx context.Context, arg UpdateOrderTotalParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE orders SET total_amount = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+orderColumns,
		arg.ID, arg.TotalAmount)
	return scanOrder(row)
}

type UpdateOrderStatusParams struct {
	ID     uuid.UUID
	Status string
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE orders SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+orderColumns,
		arg.ID, arg.Status)
	return scanOrder(row)
}

type MarkOrderPaidParams struct {
	ID             uuid.UUID
	OfferPercent   pgtype.Int4
	DiscountAmount pgtype.Numeric
	ParcelCharge   pgtype.Numeric
	FinalAmount    pgtype.Numeric
	PaymentType    pgtype.Text
	CustomerPhone  pgtype.Text
	WhatsappSent   bool
}

func (q *Queries) MarkOrderPaid(ctx context.Context, arg MarkOrderPaidParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE orders SET
			status = 'paid',
			offer_percent = $2,
			discount_amount = $3,
			parcel_charge = $4,
			final_amount = $5,
			payment_type = $6,
			customer_phone = $7,
			whatsapp_sent = $8,
			whatsapp_sent_at = CASE WHEN $8 THEN now() ELSE NULL END,
			paid_at = now(),
			updated_at = now()
		WHERE id = $1
		RETURNING `+orderColumns,
		arg.ID, arg.OfferPercent, arg.DiscountAmount, arg.ParcelCharge,
		arg.FinalAmount, arg.PaymentType, arg.CustomerPhone, arg.WhatsappSent)
	return scanOrder(row)
}

type UpdateOrderWhatsappParams struct {
	ID            uuid.UUID
	CustomerPhone pgtype.Text
}

func (q *Queries) UpdateOrderWhatsapp(ctx context.Context, arg UpdateOrderWhatsappParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE orders SET customer_phone = $2, whatsapp_sent = true, whatsapp_sent_at = now()
		WHERE id = $1
		RETURNING `+orderColumns,
		arg.ID, arg.CustomerPhone)
	return scanOrder(row)
}

func (q *Queries) DeleteOrder(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, `DELETE FROM orders WHERE id = $1 RETURNING id`, id)
	var deleted uuid.UUID
	err := row.Scan(&deleted)
	return deleted, err
}

// --- Order items ---

const orderItemColumns = `id, order_id, menu_item_id, name, price, quantity`

func scanOrderItem(row interface{ Scan(...any) error }) (OrderItem, error) {
	var it OrderItem
	err := row.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Name, &it.Price, &it.Quantity)
	return it, err
}

func (q *Queries) ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+orderItemColumns+` FROM order_items
		WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		it, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

type CreateOrderItemParams struct {
	OrderID    uuid.UUID
	MenuItemID uuid.UUID
	Name       string
	Price      pgtype.Numeric
	Quantity   int32
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO order_items (order_id, menu_item_id, name, price, quantity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+orderItemColumns,
		arg.OrderID, arg.MenuItemID, arg.Name, arg.Price, arg.Quantity)
	return scanOrderItem(row)
}

type UpdateOrderItemQuantityParams struct {
	ID       uuid.UUID
	Quantity int32
}

func (q *Queries) UpdateOrderItemQuantity(ctx context.Context, arg UpdateOrderItemQuantityParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE order_items SET quantity = $2 WHERE id = $1
		RETURNING `+orderItemColumns,
		arg.ID, arg.Quantity)
	return scanOrderItem(row)
}

func (q *Queries) DeleteOrderItem(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, `DELETE FROM order_items WHERE id = $1 RETURNING id`, id)
	var deleted uuid.UUID
	err := row.Scan(&deleted)
	return deleted, err
}

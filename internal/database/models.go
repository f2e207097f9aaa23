package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID             uuid.UUID
	Email          string
	FullName       string
	Role           string
	HashedPassword string
	CreatedAt      time.Time
}

type MenuItem struct {
	ID          uuid.UUID
	Name        string
	Category    string
	Price       pgtype.Numeric
	IsAvailable bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Table struct {
	ID        uuid.UUID
	Number    string
	Floor     string
	Status    string
	CreatedAt time.Time
}

// Order lines snapshot menu item name and price at add time; later menu edits
// never change an existing order.
type Order struct {
	ID             uuid.UUID
	TableID        pgtype.UUID
	TableNumber    pgtype.Text
	OrderType      string
	Status         string
	TotalAmount    pgtype.Numeric
	OfferPercent   pgtype.Int4
	DiscountAmount pgtype.Numeric
	ParcelCharge   pgtype.Numeric
	FinalAmount    pgtype.Numeric
	PaymentType    pgtype.Text
	CustomerPhone  pgtype.Text
	WhatsappSent   bool
	WhatsappSentAt pgtype.Timestamptz
	CreatedBy      uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
	PaidAt         pgtype.Timestamptz
}

type OrderItem struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	MenuItemID uuid.UUID
	Name       string
	Price      pgtype.Numeric
	Quantity   int32
}

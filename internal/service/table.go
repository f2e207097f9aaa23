package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/baadal-bistro/api/internal/database"
	"github.com/baadal-bistro/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrTableHasOpenOrder guards against freeing or closing a table while an
// order is still open on it.
var ErrTableHasOpenOrder = errors.New("table has an open order")

// TableStore defines the DB methods needed for table state changes.
// Satisfied by *database.Queries.
type TableStore interface {
	GetTable(ctx context.Context, id uuid.UUID) (database.Table, error)
	OccupyTable(ctx context.Context, id uuid.UUID) (int64, error)
	ReleaseTable(ctx context.Context, id uuid.UUID) (int64, error)
	SetTableStatus(ctx context.Context, arg database.SetTableStatusParams) (database.Table, error)
	ListOpenOrdersByTable(ctx context.Context, tableID uuid.UUID) ([]database.Order, error)
}

// TableService handles manual table state changes. Order creation and
// checkout move tables on their own; these methods cover the floor staff
// overriding state by hand.
type TableService struct {
	store TableStore
}

// NewTableService creates a new TableService.
func NewTableService(store TableStore) *TableService {
	return &TableService{store: store}
}

// MarkOccupied seats guests at a table. Marking an already occupied table
// is a no-op, not an error, so a double tap on the floor plan is harmless.
func (s *TableService) MarkOccupied(ctx context.Context, id uuid.UUID) (database.Table, error) {
	rows, err := s.store.OccupyTable(ctx, id)
	if err != nil {
		return database.Table{}, fmt.Errorf("occupy table: %w", err)
	}

	table, err := s.store.GetTable(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Table{}, ErrTableNotFound
		}
		return database.Table{}, fmt.Errorf("get table: %w", err)
	}
	if rows == 0 && table.Status != enum.TableStatusOccupied {
		return database.Table{}, ErrTableClosed
	}
	return table, nil
}

// MarkAvailable frees a table. Refused while the table still has an open
// order; settle or cancel the order first.
func (s *TableService) MarkAvailable(ctx context.Context, id uuid.UUID) (database.Table, error) {
	open, err := s.store.ListOpenOrdersByTable(ctx, id)
	if err != nil {
		return database.Table{}, fmt.Errorf("list open orders: %w", err)
	}
	if len(open) > 0 {
		return database.Table{}, ErrTableHasOpenOrder
	}

	rows, err := s.store.ReleaseTable(ctx, id)
	if err != nil {
		return database.Table{}, fmt.Errorf("release table: %w", err)
	}

	table, err := s.store.GetTable(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Table{}, ErrTableNotFound
		}
		return database.Table{}, fmt.Errorf("get table: %w", err)
	}
	if rows == 0 {
		switch table.Status {
		case enum.TableStatusAvailable:
			return database.Table{}, ErrTableNotOccupied
		default:
			return database.Table{}, ErrTableClosed
		}
	}
	return table, nil
}

// MarkBilling parks an occupied table while the bill is being settled.
// Waiters cannot add items to a billing table.
func (s *TableService) MarkBilling(ctx context.Context, id uuid.UUID) (database.Table, error) {
	table, err := s.store.GetTable(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Table{}, ErrTableNotFound
		}
		return database.Table{}, fmt.Errorf("get table: %w", err)
	}
	switch table.Status {
	case enum.TableStatusBilling:
		return table, nil
	case enum.TableStatusOccupied:
	default:
		return database.Table{}, ErrTableNotOccupied
	}

	table, err = s.store.SetTableStatus(ctx, database.SetTableStatusParams{
		ID:     id,
		Status: enum.TableStatusBilling,
	})
	if err != nil {
		return database.Table{}, fmt.Errorf("set table status: %w", err)
	}
	return table, nil
}

// MarkClosed takes a table out of service. Refused while an order is open.
func (s *TableService) MarkClosed(ctx context.Context, id uuid.UUID) (database.Table, error) {
	open, err := s.store.ListOpenOrdersByTable(ctx, id)
	if err != nil {
		return database.Table{}, fmt.Errorf("list open orders: %w", err)
	}
	if len(open) > 0 {
		return database.Table{}, ErrTableHasOpenOrder
	}

	table, err := s.store.SetTableStatus(ctx, database.SetTableStatusParams{
		ID:     id,
		Status: enum.TableStatusClosed,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Table{}, ErrTableNotFound
		}
		return database.Table{}, fmt.Errorf("set table status: %w", err)
	}
	return table, nil
}

package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const menuItemColumns = `id, name, category, price, is_available, created_at, updated_at`

func scanMenuItem(row interface{ Scan(...any) error }) (MenuItem, error) {
	var m MenuItem
	err := row.Scan(&m.ID, &m.Name, &m.Category, &m.Price, &m.IsAvailable, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func (q *Queries) ListMenuItems(ctx context.Context) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, `SELECT `+menuItemColumns+` FROM menu_items ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (q *Queries) ListAvailableMenuItems(ctx context.Context) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+menuItemColumns+` FROM menu_items
		WHERE is_available ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (q *Queries) GetMenuItem(ctx context.Context, id uuid.UUID) (MenuItem, error) {
	row := q.db.QueryRow(ctx, `SELECT `+menuItemColumns+` FROM menu_items WHERE id = $1`, id)
	return scanMenuItem(row)
}

type CreateMenuItemParams struct {
	Name        string
	Category    string
	Price       pgtype.Numeric
	IsAvailable bool
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO menu_items (name, category, price, is_available)
		VALUES ($1, $2, $3, $4)
		RETURNING `+menuItemColumns,
		arg.Name, arg.Category, arg.Price, arg.IsAvailable)
	return scanMenuItem(row)
}

type UpdateMenuItemParams struct {
	ID          uuid.UUID
	Name        string
	Category    string
	Price       pgtype.Numeric
	IsAvailable bool
}

func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE menu_items
		SET name = $2, category = $3, price = $4, is_available = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+menuItemColumns,
		arg.ID, arg.Name, arg.Category, arg.Price, arg.IsAvailable)
	return scanMenuItem(row)
}

func (q *Queries) DeleteMenuItem(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, `DELETE FROM menu_items WHERE id = $1 RETURNING id`, id)
	var deleted uuid.UUID
	err := row.Scan(&deleted)
	return deleted, err
}

package database

import (
	"context"

	"github.com/google/uuid"
)

const tableColumns = `id, number, floor, status, created_at`

func scanTable(row interface{ Scan(...any) error }) (Table, error) {
	var t Table
	err := row.Scan(&t.ID, &t.Number, &t.Floor, &t.Status, &t.CreatedAt)
	return t, err
}

func (q *Queries) ListTables(ctx context.Context) ([]Table, error) {
	rows, err := q.db.Query(ctx, `SELECT `+tableColumns+` FROM tables ORDER BY number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func (q *Queries) GetTable(ctx context.Context, id uuid.UUID) (Table, error) {
	row := q.db.QueryRow(ctx, `SELECT `+tableColumns+` FROM tables WHERE id = $1`, id)
	return scanTable(row)
}

// GetTableForUpdate locks the table row for the rest of the transaction.
// Order creation takes this lock first so two waiters racing on the same
// empty table are serialized.
func (q *Queries) GetTableForUpdate(ctx context.Context, id uuid.UUID) (Table, error) {
	row := q.db.QueryRow(ctx, `SELECT `+tableColumns+` FROM tables WHERE id = $1 FOR UPDATE`, id)
	return scanTable(row)
}

type CreateTableParams struct {
	Number string
	Floor  string
	Status string
}

func (q *Queries) CreateTable(ctx context.Context, arg CreateTableParams) (Table, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO tables (number, floor, status)
		VALUES ($1, $2, $3)
		RETURNING `+tableColumns,
		arg.Number, arg.Floor, arg.Status)
	return scanTable(row)
}

func (q *Queries) DeleteTable(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, `DELETE FROM tables WHERE id = $1 RETURNING id`, id)
	var deleted uuid.UUID
	err := row.Scan(&deleted)
	return deleted, err
}

// OccupyTable is a compare-and-set: only the available -> occupied edge
// writes. Returns the number of rows changed (0 when the table was not
// available).
func (q *Queries) OccupyTable(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, `
		UPDATE tables SET status = 'occupied'
		WHERE id = $1 AND status = 'available'`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ReleaseTable frees a table at checkout. Billing counts as occupied here:
// a cashier may have parked the table in billing before settling.
func (q *Queries) ReleaseTable(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, `
		UPDATE tables SET status = 'available'
		WHERE id = $1 AND status IN ('occupied', 'billing')`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type SetTableStatusParams struct {
	ID     uuid.UUID
	Status string
}

func (q *Queries) SetTableStatus(ctx context.Context, arg SetTableStatusParams) (Table, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE tables SET status = $2 WHERE id = $1
		RETURNING `+tableColumns,
		arg.ID, arg.Status)
	return scanTable(row)
}

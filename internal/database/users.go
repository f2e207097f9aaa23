package database

import (
	"context"

	"github.com/google/uuid"
)

const userColumns = `id, email, full_name, role, hashed_password, created_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.HashedPassword, &u.CreatedAt)
	return u, err
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

type CreateUserParams struct {
	Email          string
	FullName       string
	Role           string
	HashedPassword string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO users (email, full_name, role, hashed_password)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		arg.Email, arg.FullName, arg.Role, arg.HashedPassword)
	return scanUser(row)
}

type UpdateUserRoleParams struct {
	ID   uuid.UUID
	Role string
}

func (q *Queries) UpdateUserRole(ctx context.Context, arg UpdateUserRoleParams) (User, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE users SET role = $2 WHERE id = $1
		RETURNING `+userColumns,
		arg.ID, arg.Role)
	return scanUser(row)
}

func (q *Queries) DeleteUser(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, `DELETE FROM users WHERE id = $1 RETURNING id`, id)
	var deleted uuid.UUID
	err := row.Scan(&deleted)
	return deleted, err
}

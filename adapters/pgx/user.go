package pgx

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lborres/quill/core"
)

const userColumns = `id, email, name, role, bio, avatar, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*core.User, error) {
	user := &core.User{}
	var role string
	err := row.Scan(&user.ID, &user.Email, &user.Name, &role, &user.Bio, &user.Avatar, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	user.Role = core.Role(role)
	return user, nil
}

func (a *Adapter) CreateUser(ctx context.Context, user *core.User) error {
	query := `INSERT INTO public.users (email, name, role, bio, avatar, is_active) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at, updated_at`
	var id string
	var createdAt, updatedAt time.Time

	err := a.pool.QueryRow(ctx, query, user.Email, user.Name, string(user.Role), user.Bio, user.Avatar, user.IsActive).Scan(&id, &createdAt, &updatedAt)
	if err != nil {
		return userErrors.translate(err)
	}

	user.ID = id
	user.CreatedAt = createdAt
	user.UpdatedAt = updatedAt
	return nil
}

func (a *Adapter) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	q := `SELECT ` + userColumns + ` FROM public.users WHERE id = $1`

	user, err := scanUser(a.pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, userErrors.translate(err)
	}
	return user, nil
}

func (a *Adapter) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	q := `SELECT ` + userColumns + ` FROM public.users WHERE email = $1`

	user, err := scanUser(a.pool.QueryRow(ctx, q, email))
	if err != nil {
		return nil, userErrors.translate(err)
	}
	return user, nil
}

// ListUsers returns every user, newest first.
func (a *Adapter) ListUsers(ctx context.Context) ([]*core.User, error) {
	q := `SELECT ` + userColumns + ` FROM public.users ORDER BY created_at DESC`

	rows, err := a.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*core.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (a *Adapter) UpdateUser(ctx context.Context, user *core.User) error {
	q := `UPDATE public.users SET email = $1, name = $2, role = $3, bio = $4, avatar = $5, is_active = $6, updated_at = now() WHERE id = $7 RETURNING updated_at`
	var updatedAt time.Time
	err := a.pool.QueryRow(ctx, q, user.Email, user.Name, string(user.Role), user.Bio, user.Avatar, user.IsActive, user.ID).Scan(&updatedAt)
	if err != nil {
		return userErrors.translate(err)
	}
	user.UpdatedAt = updatedAt
	return nil
}

// DeleteUser removes the user; accounts go with it through the foreign key.
func (a *Adapter) DeleteUser(ctx context.Context, id string) error {
	tag, err := a.pool.Exec(ctx, `DELETE FROM public.users WHERE id = $1`, id)
	if err != nil {
		return userErrors.translate(err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrUserNotFound
	}
	return nil
}

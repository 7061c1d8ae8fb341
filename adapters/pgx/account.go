package pgx

import (
	"context"
	"time"

	"github.com/lborres/quill/core"
)

func (a *Adapter) CreateAccount(ctx context.Context, acc *core.Account) error {
	query := `INSERT INTO public.accounts (user_id, provider_id, account_id, password)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, created_at, updated_at`

	var id string
	var createdAt, updatedAt time.Time
	err := a.pool.QueryRow(ctx, query,
		acc.UserID, acc.ProviderID, acc.AccountID, acc.Password,
	).Scan(&id, &createdAt, &updatedAt)

	if err != nil {
		return userErrors.translate(err)
	}

	acc.ID = id
	acc.CreatedAt = createdAt
	acc.UpdatedAt = updatedAt
	return nil
}

// GetAccountByUserAndProvider returns the user's single account for the
// provider. The (user_id, provider_id) pair is unique.
func (a *Adapter) GetAccountByUserAndProvider(ctx context.Context, userID, providerID string) (*core.Account, error) {
	query := `SELECT id, user_id, provider_id, account_id, password, created_at, updated_at
	          FROM public.accounts WHERE user_id = $1 AND provider_id = $2`

	acc := &core.Account{}
	err := a.pool.QueryRow(ctx, query, userID, providerID).Scan(
		&acc.ID, &acc.UserID, &acc.ProviderID, &acc.AccountID, &acc.Password, &acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		return nil, accountErrors.translate(err)
	}

	return acc, nil
}

func (a *Adapter) UpdateAccount(ctx context.Context, acc *core.Account) error {
	query := `UPDATE public.accounts SET account_id = $1, password = $2, updated_at = now()
	          WHERE id = $3 RETURNING updated_at`

	var updatedAt time.Time
	err := a.pool.QueryRow(ctx, query, acc.AccountID, acc.Password, acc.ID).Scan(&updatedAt)
	if err != nil {
		return accountErrors.translate(err)
	}

	acc.UpdatedAt = updatedAt
	return nil
}

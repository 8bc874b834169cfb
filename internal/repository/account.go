package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/buddyai/buddy-server-go/internal/database"
	"github.com/buddyai/buddy-server-go/internal/model"
)

type AccountRepository interface {
	FindByUserAndProvider(ctx context.Context, userID, providerID string) (*model.Account, error)
	Create(ctx context.Context, params model.CreateAccountParams) (*model.Account, error)
	WithTx(tx *sqlx.Tx) AccountRepository
}

type accountRepo struct {
	db database.DBTX
}

func NewAccountRepository(db *sqlx.DB) AccountRepository {
	return &accountRepo{db: db}
}

func (r *accountRepo) WithTx(tx *sqlx.Tx) AccountRepository {
	return &accountRepo{db: tx}
}

func (r *accountRepo) FindByUserAndProvider(ctx context.Context, userID, providerID string) (*model.Account, error) {
	var account model.Account
	err := r.db.GetContext(ctx, &account, `
		SELECT * FROM accounts
		WHERE user_id = $1 AND provider_id = $2
		ORDER BY created_at
		LIMIT 1
	`, userID, providerID)
	return HandleNotFound(&account, err)
}

func (r *accountRepo) Create(ctx context.Context, params model.CreateAccountParams) (*model.Account, error) {
	var account model.Account
	err := r.db.GetContext(ctx, &account, `
		INSERT INTO accounts (id, account_id, provider_id, user_id, password)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *
	`, params.ID, params.AccountID, params.ProviderID, params.UserID, params.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("insert account: %w", mapWriteError(err))
	}
	return &account, nil
}

package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/buddyai/buddy-server-go/internal/database"
	"github.com/buddyai/buddy-server-go/internal/model"
)

type VerificationRepository interface {
	Create(ctx context.Context, params model.CreateVerificationParams) (*model.Verification, error)
	FindActive(ctx context.Context, identifier, valueHash string) (*model.Verification, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int64, error)
	WithTx(tx *sqlx.Tx) VerificationRepository
}

type verificationRepo struct {
	db database.DBTX
}

func NewVerificationRepository(db *sqlx.DB) VerificationRepository {
	return &verificationRepo{db: db}
}

func (r *verificationRepo) WithTx(tx *sqlx.Tx) VerificationRepository {
	return &verificationRepo{db: tx}
}

func (r *verificationRepo) Create(ctx context.Context, params model.CreateVerificationParams) (*model.Verification, error) {
	var v model.Verification
	err := r.db.GetContext(ctx, &v, `
		INSERT INTO verifications (id, identifier, value, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`, params.ID, params.Identifier, params.ValueHash, params.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *verificationRepo) FindActive(ctx context.Context, identifier, valueHash string) (*model.Verification, error) {
	var v model.Verification
	err := r.db.GetContext(ctx, &v, `
		SELECT * FROM verifications
		WHERE identifier = $1 AND value = $2 AND expires_at > NOW()
	`, identifier, valueHash)
	return HandleNotFound(&v, err)
}

func (r *verificationRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM verifications WHERE id = $1`, id)
	return err
}

func (r *verificationRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM verifications WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

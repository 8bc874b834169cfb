package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/buddyai/buddy-server-go/internal/database"
	"github.com/buddyai/buddy-server-go/internal/model"
)

type CallIntentRepository interface {
	Create(ctx context.Context, meetingID string) (*model.CallIntent, error)
	MarkCompleted(ctx context.Context, meetingID string) error
	// RecordFailure bumps the attempt counter and marks the intent failed once
	// maxAttempts is reached.
	RecordFailure(ctx context.Context, meetingID, reason string, maxAttempts int) (*model.CallIntent, error)
	FindPending(ctx context.Context, olderThan time.Time, limit int) ([]model.CallIntent, error)
	CountByStatus(ctx context.Context, status model.CallIntentStatus) (int, error)
	WithTx(tx *sqlx.Tx) CallIntentRepository
}

type callIntentRepo struct {
	db database.DBTX
}

func NewCallIntentRepository(db *sqlx.DB) CallIntentRepository {
	return &callIntentRepo{db: db}
}

func (r *callIntentRepo) WithTx(tx *sqlx.Tx) CallIntentRepository {
	return &callIntentRepo{db: tx}
}

func (r *callIntentRepo) Create(ctx context.Context, meetingID string) (*model.CallIntent, error) {
	var intent model.CallIntent
	err := r.db.GetContext(ctx, &intent, `
		INSERT INTO call_intents (id, meeting_id)
		VALUES ($1, $2)
		RETURNING *
	`, uuid.NewString(), meetingID)
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

func (r *callIntentRepo) MarkCompleted(ctx context.Context, meetingID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE call_intents SET
			status = 'completed',
			attempts = attempts + 1,
			last_error = NULL,
			updated_at = NOW()
		WHERE meeting_id = $1
	`, meetingID)
	return err
}

func (r *callIntentRepo) RecordFailure(ctx context.Context, meetingID, reason string, maxAttempts int) (*model.CallIntent, error) {
	var intent model.CallIntent
	err := r.db.GetContext(ctx, &intent, `
		UPDATE call_intents SET
			attempts = attempts + 1,
			last_error = $2,
			status = CASE WHEN attempts + 1 >= $3 THEN 'failed' ELSE status END,
			updated_at = NOW()
		WHERE meeting_id = $1
		RETURNING *
	`, meetingID, reason, maxAttempts)
	return HandleNotFound(&intent, err)
}

func (r *callIntentRepo) FindPending(ctx context.Context, olderThan time.Time, limit int) ([]model.CallIntent, error) {
	intents := []model.CallIntent{}
	err := r.db.SelectContext(ctx, &intents, `
		SELECT * FROM call_intents
		WHERE status = 'pending' AND updated_at < $1
		ORDER BY updated_at
		LIMIT $2
	`, olderThan, limit)
	if err != nil {
		return nil, err
	}
	return intents, nil
}

func (r *callIntentRepo) CountByStatus(ctx context.Context, status model.CallIntentStatus) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM call_intents WHERE status = $1`, string(status))
	return count, err
}

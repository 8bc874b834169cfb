package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/buddyai/buddy-server-go/internal/database"
	"github.com/buddyai/buddy-server-go/internal/model"
)

type MeetingRepository interface {
	FindMany(ctx context.Context, filter MeetingFilter) ([]model.MeetingWithAgent, error)
	Count(ctx context.Context, filter MeetingFilter) (int, error)
	FindByID(ctx context.Context, id string) (*model.Meeting, error)
	FindByIDForUser(ctx context.Context, id, userID string) (*model.MeetingWithAgent, error)
	Create(ctx context.Context, params model.CreateMeetingParams) (*model.Meeting, error)
	// Update and Delete only touch rows owned by userID and return nil when none matched.
	Update(ctx context.Context, id, userID string, params model.UpdateMeetingParams) (*model.Meeting, error)
	Delete(ctx context.Context, id, userID string) (*model.Meeting, error)
	// Transition applies params only while the meeting is in one of the from
	// statuses, returning nil when the meeting is missing or in another state.
	Transition(ctx context.Context, id string, from []model.MeetingStatus, params model.UpdateMeetingParams) (*model.Meeting, error)
	WithTx(tx *sqlx.Tx) MeetingRepository
}

type meetingRepo struct {
	db database.DBTX
}

func NewMeetingRepository(db *sqlx.DB) MeetingRepository {
	return &meetingRepo{db: db}
}

func (r *meetingRepo) WithTx(tx *sqlx.Tx) MeetingRepository {
	return &meetingRepo{db: tx}
}

func (r *meetingRepo) FindMany(ctx context.Context, filter MeetingFilter) ([]model.MeetingWithAgent, error) {
	query, args := buildMeetingListQuery(filter)
	meetings := []model.MeetingWithAgent{}
	if err := r.db.SelectContext(ctx, &meetings, query, args...); err != nil {
		return nil, fmt.Errorf("select meetings: %w", err)
	}
	return meetings, nil
}

func (r *meetingRepo) Count(ctx context.Context, filter MeetingFilter) (int, error) {
	query, args := buildMeetingCountQuery(filter)
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count meetings: %w", err)
	}
	return count, nil
}

func (r *meetingRepo) FindByID(ctx context.Context, id string) (*model.Meeting, error) {
	var meeting model.Meeting
	err := r.db.GetContext(ctx, &meeting, `SELECT * FROM meetings WHERE id = $1`, id)
	return HandleNotFound(&meeting, err)
}

func (r *meetingRepo) FindByIDForUser(ctx context.Context, id, userID string) (*model.MeetingWithAgent, error) {
	var meeting model.MeetingWithAgent
	err := r.db.GetContext(ctx, &meeting, meetingSelect+`
		WHERE m.id = $1 AND m.user_id = $2
	`, id, userID)
	return HandleNotFound(&meeting, err)
}

func (r *meetingRepo) Create(ctx context.Context, params model.CreateMeetingParams) (*model.Meeting, error) {
	var meeting model.Meeting
	err := r.db.GetContext(ctx, &meeting, `
		INSERT INTO meetings (id, name, user_id, agent_id)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`, params.ID, params.Name, params.UserID, params.AgentID)
	if err != nil {
		return nil, fmt.Errorf("insert meeting: %w", err)
	}
	return &meeting, nil
}

const meetingSetClause = `
			name = COALESCE($%[1]d, name),
			agent_id = COALESCE($%[2]d, agent_id),
			status = COALESCE($%[3]d, status),
			started_at = COALESCE($%[4]d, started_at),
			ended_at = COALESCE($%[5]d, ended_at),
			transcript_url = COALESCE($%[6]d, transcript_url),
			recording_url = COALESCE($%[7]d, recording_url),
			summary = COALESCE($%[8]d, summary),
			updated_at = NOW()`

// setArgs returns the SET clause numbered from offset+1 and its arguments.
func setArgs(offset int, p model.UpdateMeetingParams) (string, []any) {
	var status *string
	if p.Status != nil {
		s := string(*p.Status)
		status = &s
	}
	clause := fmt.Sprintf(meetingSetClause,
		offset+1, offset+2, offset+3, offset+4, offset+5, offset+6, offset+7, offset+8)
	return clause, []any{p.Name, p.AgentID, status, p.StartedAt, p.EndedAt, p.TranscriptURL, p.RecordingURL, p.Summary}
}

func (r *meetingRepo) Update(ctx context.Context, id, userID string, params model.UpdateMeetingParams) (*model.Meeting, error) {
	set, setValues := setArgs(2, params)
	args := append([]any{id, userID}, setValues...)

	var meeting model.Meeting
	err := r.db.GetContext(ctx, &meeting, `
		UPDATE meetings SET`+set+`
		WHERE id = $1 AND user_id = $2
		RETURNING *
	`, args...)
	return HandleNotFound(&meeting, err)
}

func (r *meetingRepo) Delete(ctx context.Context, id, userID string) (*model.Meeting, error) {
	var meeting model.Meeting
	err := r.db.GetContext(ctx, &meeting, `
		DELETE FROM meetings
		WHERE id = $1 AND user_id = $2
		RETURNING *
	`, id, userID)
	return HandleNotFound(&meeting, err)
}

func (r *meetingRepo) Transition(ctx context.Context, id string, from []model.MeetingStatus, params model.UpdateMeetingParams) (*model.Meeting, error) {
	statuses := make([]string, len(from))
	for i, s := range from {
		statuses[i] = string(s)
	}

	set, setValues := setArgs(2, params)
	args := append([]any{id, pq.Array(statuses)}, setValues...)

	var meeting model.Meeting
	err := r.db.GetContext(ctx, &meeting, `
		UPDATE meetings SET`+set+`
		WHERE id = $1 AND status = ANY($2::meeting_status[])
		RETURNING *
	`, args...)
	return HandleNotFound(&meeting, err)
}

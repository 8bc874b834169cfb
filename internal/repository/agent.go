package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/buddyai/buddy-server-go/internal/database"
	"github.com/buddyai/buddy-server-go/internal/model"
)

type AgentRepository interface {
	FindMany(ctx context.Context, filter AgentFilter) ([]model.AgentWithMeetingCount, error)
	Count(ctx context.Context, filter AgentFilter) (int, error)
	FindByID(ctx context.Context, id string) (*model.Agent, error)
	FindByIDForUser(ctx context.Context, id, userID string) (*model.AgentWithMeetingCount, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Agent, error)
	Create(ctx context.Context, params model.CreateAgentParams) (*model.Agent, error)
	// Update and Delete only touch rows owned by userID and return nil when none matched.
	Update(ctx context.Context, id, userID string, params model.UpdateAgentParams) (*model.Agent, error)
	Delete(ctx context.Context, id, userID string) (*model.Agent, error)
	WithTx(tx *sqlx.Tx) AgentRepository
}

type agentRepo struct {
	db database.DBTX
}

func NewAgentRepository(db *sqlx.DB) AgentRepository {
	return &agentRepo{db: db}
}

func (r *agentRepo) WithTx(tx *sqlx.Tx) AgentRepository {
	return &agentRepo{db: tx}
}

func (r *agentRepo) FindMany(ctx context.Context, filter AgentFilter) ([]model.AgentWithMeetingCount, error) {
	query, args := buildAgentListQuery(filter)
	agents := []model.AgentWithMeetingCount{}
	if err := r.db.SelectContext(ctx, &agents, query, args...); err != nil {
		return nil, fmt.Errorf("select agents: %w", err)
	}
	return agents, nil
}

func (r *agentRepo) Count(ctx context.Context, filter AgentFilter) (int, error) {
	query, args := buildAgentCountQuery(filter)
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count agents: %w", err)
	}
	return count, nil
}

func (r *agentRepo) FindByID(ctx context.Context, id string) (*model.Agent, error) {
	var agent model.Agent
	err := r.db.GetContext(ctx, &agent, `SELECT * FROM agents WHERE id = $1`, id)
	return HandleNotFound(&agent, err)
}

func (r *agentRepo) FindByIDForUser(ctx context.Context, id, userID string) (*model.AgentWithMeetingCount, error) {
	var agent model.AgentWithMeetingCount
	err := r.db.GetContext(ctx, &agent, agentSelect+`
		WHERE a.id = $1 AND a.user_id = $2
	`, id, userID)
	return HandleNotFound(&agent, err)
}

func (r *agentRepo) FindByIDs(ctx context.Context, ids []string) ([]model.Agent, error) {
	agents := []model.Agent{}
	if len(ids) == 0 {
		return agents, nil
	}
	err := r.db.SelectContext(ctx, &agents, `SELECT * FROM agents WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	return agents, nil
}

func (r *agentRepo) Create(ctx context.Context, params model.CreateAgentParams) (*model.Agent, error) {
	var agent model.Agent
	err := r.db.GetContext(ctx, &agent, `
		INSERT INTO agents (id, name, user_id, instructions)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`, params.ID, params.Name, params.UserID, params.Instructions)
	if err != nil {
		return nil, fmt.Errorf("insert agent: %w", err)
	}
	return &agent, nil
}

func (r *agentRepo) Update(ctx context.Context, id, userID string, params model.UpdateAgentParams) (*model.Agent, error) {
	var agent model.Agent
	err := r.db.GetContext(ctx, &agent, `
		UPDATE agents SET
			name = COALESCE($3, name),
			instructions = COALESCE($4, instructions),
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING *
	`, id, userID, params.Name, params.Instructions)
	return HandleNotFound(&agent, err)
}

func (r *agentRepo) Delete(ctx context.Context, id, userID string) (*model.Agent, error) {
	var agent model.Agent
	err := r.db.GetContext(ctx, &agent, `
		DELETE FROM agents
		WHERE id = $1 AND user_id = $2
		RETURNING *
	`, id, userID)
	return HandleNotFound(&agent, err)
}

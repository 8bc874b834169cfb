package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	apperrors "github.com/buddyai/buddy-server-go/internal/errors"
	"github.com/buddyai/buddy-server-go/internal/model"
	"github.com/buddyai/buddy-server-go/internal/repository"
)

type ListAgentsParams struct {
	PageParams
	Search *string
}

type AgentService struct {
	agentRepo repository.AgentRepository
}

func NewAgentService(agentRepo repository.AgentRepository) *AgentService {
	return &AgentService{agentRepo: agentRepo}
}

func (s *AgentService) GetMany(ctx context.Context, userID string, params ListAgentsParams) (Page[model.AgentWithMeetingCount], error) {
	page := params.PageParams.Normalize()
	filter := repository.AgentFilter{
		UserID: userID,
		Search: params.Search,
		Limit:  page.PageSize,
		Offset: page.Offset(),
	}

	items, err := s.agentRepo.FindMany(ctx, filter)
	if err != nil {
		return Page[model.AgentWithMeetingCount]{}, apperrors.Database(fmt.Errorf("list agents: %w", err))
	}

	total, err := s.agentRepo.Count(ctx, filter)
	if err != nil {
		return Page[model.AgentWithMeetingCount]{}, apperrors.Database(fmt.Errorf("count agents: %w", err))
	}

	return NewPage(items, total, page.PageSize), nil
}

func (s *AgentService) GetOne(ctx context.Context, userID, id string) (*model.AgentWithMeetingCount, error) {
	agent, err := s.agentRepo.FindByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, apperrors.Database(fmt.Errorf("find agent: %w", err))
	}
	if agent == nil {
		return nil, apperrors.NotFound("Agent")
	}
	return agent, nil
}

func (s *AgentService) Create(ctx context.Context, userID, name, instructions string) (*model.Agent, error) {
	agent, err := s.agentRepo.Create(ctx, model.CreateAgentParams{
		ID:           newID(),
		Name:         name,
		UserID:       userID,
		Instructions: instructions,
	})
	if err != nil {
		return nil, apperrors.Database(fmt.Errorf("create agent: %w", err))
	}

	log.Info().Str("agentId", agent.ID).Str("userId", userID).Msg("agent created")
	return agent, nil
}

func (s *AgentService) Update(ctx context.Context, userID, id string, params model.UpdateAgentParams) (*model.Agent, error) {
	agent, err := s.agentRepo.Update(ctx, id, userID, params)
	if err != nil {
		return nil, apperrors.Database(fmt.Errorf("update agent: %w", err))
	}
	if agent == nil {
		return nil, apperrors.NotFound("Agent")
	}
	return agent, nil
}

// Remove deletes the agent. Its meetings go with it through the foreign key.
func (s *AgentService) Remove(ctx context.Context, userID, id string) (*model.Agent, error) {
	agent, err := s.agentRepo.Delete(ctx, id, userID)
	if err != nil {
		return nil, apperrors.Database(fmt.Errorf("delete agent: %w", err))
	}
	if agent == nil {
		return nil, apperrors.NotFound("Agent")
	}

	log.Info().Str("agentId", id).Str("userId", userID).Msg("agent removed")
	return agent, nil
}

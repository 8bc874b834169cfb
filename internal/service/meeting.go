package service

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/buddyai/buddy-server-go/internal/database"
	apperrors "github.com/buddyai/buddy-server-go/internal/errors"
	"github.com/buddyai/buddy-server-go/internal/model"
	"github.com/buddyai/buddy-server-go/internal/repository"
)

type ListMeetingsParams struct {
	PageParams
	Search  *string
	AgentID *string
	Status  *model.MeetingStatus
}

type MeetingService struct {
	db          database.TxRunner
	meetingRepo repository.MeetingRepository
	agentRepo   repository.AgentRepository
	intentRepo  repository.CallIntentRepository
	provisioner *CallProvisioner
}

func NewMeetingService(
	db database.TxRunner,
	meetingRepo repository.MeetingRepository,
	agentRepo repository.AgentRepository,
	intentRepo repository.CallIntentRepository,
	provisioner *CallProvisioner,
) *MeetingService {
	return &MeetingService{
		db:          db,
		meetingRepo: meetingRepo,
		agentRepo:   agentRepo,
		intentRepo:  intentRepo,
		provisioner: provisioner,
	}
}

func (s *MeetingService) GetMany(ctx context.Context, userID string, params ListMeetingsParams) (Page[model.MeetingWithAgent], error) {
	page := params.PageParams.Normalize()
	filter := repository.MeetingFilter{
		UserID:  userID,
		AgentID: params.AgentID,
		Status:  params.Status,
		Search:  params.Search,
		Limit:   page.PageSize,
		Offset:  page.Offset(),
	}

	items, err := s.meetingRepo.FindMany(ctx, filter)
	if err != nil {
		return Page[model.MeetingWithAgent]{}, apperrors.Database(fmt.Errorf("list meetings: %w", err))
	}

	total, err := s.meetingRepo.Count(ctx, filter)
	if err != nil {
		return Page[model.MeetingWithAgent]{}, apperrors.Database(fmt.Errorf("count meetings: %w", err))
	}

	return NewPage(items, total, page.PageSize), nil
}

func (s *MeetingService) GetOne(ctx context.Context, userID, id string) (*model.MeetingWithAgent, error) {
	meeting, err := s.meetingRepo.FindByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, apperrors.Database(fmt.Errorf("find meeting: %w", err))
	}
	if meeting == nil {
		return nil, apperrors.NotFound("Meeting")
	}
	return meeting, nil
}

// Create stores the meeting with a pending call intent, then provisions the
// call. A provisioning failure leaves the meeting in place and is reported to
// the caller with the meeting id; the reconciliation sweep retries it.
func (s *MeetingService) Create(ctx context.Context, userID, name, agentID string) (*model.Meeting, error) {
	agent, err := s.findOwnedAgent(ctx, userID, agentID)
	if err != nil {
		return nil, err
	}

	var meeting *model.Meeting
	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		meeting, err = s.meetingRepo.WithTx(tx).Create(ctx, model.CreateMeetingParams{
			ID:      newID(),
			Name:    name,
			UserID:  userID,
			AgentID: agent.ID,
		})
		if err != nil {
			return fmt.Errorf("create meeting: %w", err)
		}

		if _, err := s.intentRepo.WithTx(tx).Create(ctx, meeting.ID); err != nil {
			return fmt.Errorf("create call intent: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}

	log.Info().Str("meetingId", meeting.ID).Str("userId", userID).Msg("meeting created")

	if err := s.provisioner.Provision(ctx, ProvisionSourceCreate, meeting, agent); err != nil {
		return nil, apperrors.External("video", err).WithDetails(map[string]string{"meetingId": meeting.ID})
	}

	return meeting, nil
}

func (s *MeetingService) Update(ctx context.Context, userID, id string, params model.UpdateMeetingParams) (*model.Meeting, error) {
	if params.AgentID != nil {
		if _, err := s.findOwnedAgent(ctx, userID, *params.AgentID); err != nil {
			return nil, err
		}
	}

	meeting, err := s.meetingRepo.Update(ctx, id, userID, params)
	if err != nil {
		return nil, apperrors.Database(fmt.Errorf("update meeting: %w", err))
	}
	if meeting == nil {
		return nil, apperrors.NotFound("Meeting")
	}
	return meeting, nil
}

func (s *MeetingService) Remove(ctx context.Context, userID, id string) (*model.Meeting, error) {
	meeting, err := s.meetingRepo.Delete(ctx, id, userID)
	if err != nil {
		return nil, apperrors.Database(fmt.Errorf("delete meeting: %w", err))
	}
	if meeting == nil {
		return nil, apperrors.NotFound("Meeting")
	}

	log.Info().Str("meetingId", id).Str("userId", userID).Msg("meeting removed")
	return meeting, nil
}

func (s *MeetingService) findOwnedAgent(ctx context.Context, userID, agentID string) (*model.Agent, error) {
	agent, err := s.agentRepo.FindByIDForUser(ctx, agentID, userID)
	if err != nil {
		return nil, apperrors.Database(fmt.Errorf("find agent: %w", err))
	}
	if agent == nil {
		return nil, apperrors.NotFound("Agent")
	}
	return &agent.Agent, nil
}

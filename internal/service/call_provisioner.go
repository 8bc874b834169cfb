package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/buddyai/buddy-server-go/internal/avatar"
	"github.com/buddyai/buddy-server-go/internal/config"
	"github.com/buddyai/buddy-server-go/internal/metrics"
	"github.com/buddyai/buddy-server-go/internal/model"
	"github.com/buddyai/buddy-server-go/internal/repository"
	"github.com/buddyai/buddy-server-go/internal/stream"
)

const (
	ProvisionSourceCreate    = "create"
	ProvisionSourceReconcile = "reconcile"

	platformRoleAdmin = "admin"
)

var errVideoNotConfigured = fmt.Errorf("video platform is not configured")

type ReconcileResult struct {
	Scanned   int
	Completed int
	Failed    int
}

// CallProvisioner creates the video call for a meeting and registers the
// agent as a participant. Every attempt is recorded on the meeting's call
// intent so the reconciliation sweep can pick up failures.
type CallProvisioner struct {
	video       VideoPlatform
	intentRepo  repository.CallIntentRepository
	meetingRepo repository.MeetingRepository
	agentRepo   repository.AgentRepository
	metrics     *metrics.Metrics
	now         func() time.Time
}

func NewCallProvisioner(
	video VideoPlatform,
	intentRepo repository.CallIntentRepository,
	meetingRepo repository.MeetingRepository,
	agentRepo repository.AgentRepository,
	m *metrics.Metrics,
) *CallProvisioner {
	return &CallProvisioner{
		video:       video,
		intentRepo:  intentRepo,
		meetingRepo: meetingRepo,
		agentRepo:   agentRepo,
		metrics:     m,
		now:         time.Now,
	}
}

// Provision runs one attempt for the meeting and records its outcome.
func (p *CallProvisioner) Provision(ctx context.Context, source string, meeting *model.Meeting, agent *model.Agent) error {
	err := p.provision(ctx, meeting, agent)
	p.metrics.Provisioned(source, err)

	if err != nil {
		intent, recordErr := p.intentRepo.RecordFailure(ctx, meeting.ID, err.Error(), config.MaxProvisionAttempts)
		if recordErr != nil {
			log.Error().Err(recordErr).Str("meetingId", meeting.ID).Msg("failed to record call provisioning failure")
		}

		event := log.Warn().Err(err).Str("meetingId", meeting.ID).Str("source", source)
		if intent != nil {
			event = event.Int("attempts", intent.Attempts).Str("intentStatus", string(intent.Status))
		}
		event.Msg("call provisioning failed")
		return err
	}

	if err := p.intentRepo.MarkCompleted(ctx, meeting.ID); err != nil {
		log.Error().Err(err).Str("meetingId", meeting.ID).Msg("failed to mark call intent completed")
	}

	log.Info().Str("meetingId", meeting.ID).Str("source", source).Msg("call provisioned")
	return nil
}

func (p *CallProvisioner) provision(ctx context.Context, meeting *model.Meeting, agent *model.Agent) error {
	if p.video == nil {
		return errVideoNotConfigured
	}

	err := p.video.GetOrCreateCall(ctx, config.DefaultCallType, meeting.ID, stream.CallData{
		CreatedByID: meeting.UserID,
		Custom: map[string]any{
			"meetingId":   meeting.ID,
			"meetingName": meeting.Name,
		},
		SettingsOverride: &stream.CallSettings{
			Transcription: &stream.TranscriptionSettings{
				Language:          "en",
				Mode:              "auto-on",
				ClosedCaptionMode: "auto-on",
			},
			Recording: &stream.RecordingSettings{
				Mode:    "auto-on",
				Quality: "1080p",
			},
		},
	})
	if err != nil {
		return err
	}

	if err := p.video.UpsertUsers(ctx, stream.User{
		ID:    agent.ID,
		Name:  agent.Name,
		Role:  platformRoleAdmin,
		Image: avatar.ForAgent(agent.Name),
	}); err != nil {
		return fmt.Errorf("upsert agent participant: %w", err)
	}

	return nil
}

// ReconcilePending retries provisioning for intents left pending by earlier
// failures. Fresh intents are skipped so an in-flight create is not raced.
func (p *CallProvisioner) ReconcilePending(ctx context.Context) (ReconcileResult, error) {
	var result ReconcileResult

	intents, err := p.intentRepo.FindPending(ctx, p.now().Add(-config.ReconcileMinAge), config.ReconcileBatchSize)
	if err != nil {
		return result, fmt.Errorf("find pending call intents: %w", err)
	}
	result.Scanned = len(intents)

	for _, intent := range intents {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		meeting, err := p.meetingRepo.FindByID(ctx, intent.MeetingID)
		if err != nil {
			return result, fmt.Errorf("find meeting %s: %w", intent.MeetingID, err)
		}
		if meeting == nil {
			continue
		}

		agent, err := p.agentRepo.FindByID(ctx, meeting.AgentID)
		if err != nil {
			return result, fmt.Errorf("find agent %s: %w", meeting.AgentID, err)
		}
		if agent == nil {
			continue
		}

		if err := p.Provision(ctx, ProvisionSourceReconcile, meeting, agent); err != nil {
			result.Failed++
			continue
		}
		result.Completed++
	}

	return result, nil
}

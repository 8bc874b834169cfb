package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/buddyai/buddy-server-go/internal/metrics"
	"github.com/buddyai/buddy-server-go/internal/model"
	"github.com/buddyai/buddy-server-go/internal/repository"
)

// MeetingStatusEventType is the stream event name for meeting transitions.
const MeetingStatusEventType = "meeting.status"

// Webhook outcomes, also used as metric labels.
const (
	CallEventApplied = "applied"
	CallEventIgnored = "ignored"
	CallEventSkipped = "skipped"
)

// CallEventService applies call platform events to meetings. Transitions
// only move forward; anything else is acknowledged and ignored.
type CallEventService struct {
	meetingRepo repository.MeetingRepository
	publisher   EventPublisher
	metrics     *metrics.Metrics
	now         func() time.Time
}

func NewCallEventService(meetingRepo repository.MeetingRepository, publisher EventPublisher, m *metrics.Metrics) *CallEventService {
	return &CallEventService{
		meetingRepo: meetingRepo,
		publisher:   publisher,
		metrics:     m,
		now:         time.Now,
	}
}

// Handle returns the outcome of the event. Errors are reserved for storage
// failures so the platform retries delivery.
func (s *CallEventService) Handle(ctx context.Context, event model.CallEvent) (string, error) {
	outcome, err := s.handle(ctx, event)
	if err != nil {
		s.metrics.WebhookEvent(event.Type, "error")
		return "", err
	}
	s.metrics.WebhookEvent(event.Type, outcome)
	return outcome, nil
}

func (s *CallEventService) handle(ctx context.Context, event model.CallEvent) (string, error) {
	meetingID := event.MeetingID()

	switch event.Type {
	case model.CallEventSessionStarted:
		now := s.now()
		return s.transition(ctx, event, meetingID, model.MeetingStatusesBefore(model.MeetingStatusActive), model.UpdateMeetingParams{
			Status:    statusPtr(model.MeetingStatusActive),
			StartedAt: &now,
		})

	case model.CallEventSessionEnded:
		now := s.now()
		return s.transition(ctx, event, meetingID, model.MeetingStatusesBefore(model.MeetingStatusProcessing), model.UpdateMeetingParams{
			Status:  statusPtr(model.MeetingStatusProcessing),
			EndedAt: &now,
		})

	case model.CallEventTranscriptionReady:
		if event.CallTranscription == nil || event.CallTranscription.URL == "" {
			return s.ignore(event, "missing transcription url"), nil
		}
		url := event.CallTranscription.URL
		return s.transition(ctx, event, meetingID, []model.MeetingStatus{model.MeetingStatusProcessing}, model.UpdateMeetingParams{
			TranscriptURL: &url,
		})

	case model.CallEventRecordingReady:
		if event.CallRecording == nil || event.CallRecording.URL == "" {
			return s.ignore(event, "missing recording url"), nil
		}
		url := event.CallRecording.URL
		return s.transition(ctx, event, meetingID, []model.MeetingStatus{model.MeetingStatusProcessing}, model.UpdateMeetingParams{
			RecordingURL: &url,
		})

	case model.CallEventSummaryReady:
		summary := event.Summary
		return s.transition(ctx, event, meetingID, model.MeetingStatusesBefore(model.MeetingStatusCompleted), model.UpdateMeetingParams{
			Status:  statusPtr(model.MeetingStatusCompleted),
			Summary: &summary,
		})

	case model.CallEventParticipantLeft:
		log.Info().Str("meetingId", meetingID).Msg("call participant left")
		return CallEventSkipped, nil

	default:
		log.Debug().Str("type", event.Type).Msg("unhandled call event")
		return CallEventSkipped, nil
	}
}

func (s *CallEventService) transition(
	ctx context.Context,
	event model.CallEvent,
	meetingID string,
	from []model.MeetingStatus,
	params model.UpdateMeetingParams,
) (string, error) {
	if meetingID == "" {
		return s.ignore(event, "missing meeting id"), nil
	}

	meeting, err := s.meetingRepo.Transition(ctx, meetingID, from, params)
	if err != nil {
		return "", fmt.Errorf("apply %s to meeting %s: %w", event.Type, meetingID, err)
	}
	if meeting == nil {
		return s.ignore(event, "meeting missing or not in an allowed state"), nil
	}

	log.Info().
		Str("meetingId", meeting.ID).
		Str("type", event.Type).
		Str("status", string(meeting.Status)).
		Msg("call event applied")

	if s.publisher != nil {
		payload := model.MeetingStatusEvent{
			MeetingID: meeting.ID,
			Status:    meeting.Status,
			EventType: event.Type,
		}
		if err := s.publisher.PublishJSON(ctx, meeting.UserID, MeetingStatusEventType, payload); err != nil {
			log.Warn().Err(err).Str("meetingId", meeting.ID).Msg("failed to publish meeting status event")
		}
	}

	return CallEventApplied, nil
}

func (s *CallEventService) ignore(event model.CallEvent, reason string) string {
	log.Warn().
		Str("type", event.Type).
		Str("callCid", event.CallCID).
		Str("reason", reason).
		Msg("call event ignored")
	return CallEventIgnored
}

func statusPtr(s model.MeetingStatus) *model.MeetingStatus {
	return &s
}

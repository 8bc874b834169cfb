package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/buddyai/buddy-server-go/internal/avatar"
	"github.com/buddyai/buddy-server-go/internal/config"
	apperrors "github.com/buddyai/buddy-server-go/internal/errors"
	"github.com/buddyai/buddy-server-go/internal/model"
	"github.com/buddyai/buddy-server-go/internal/repository"
)

const unknownSpeakerName = "Unknown"

type TranscriptService struct {
	meetingRepo repository.MeetingRepository
	userRepo    repository.UserRepository
	agentRepo   repository.AgentRepository
	fetcher     TranscriptFetcher
}

func NewTranscriptService(
	meetingRepo repository.MeetingRepository,
	userRepo repository.UserRepository,
	agentRepo repository.AgentRepository,
	fetcher TranscriptFetcher,
) *TranscriptService {
	return &TranscriptService{
		meetingRepo: meetingRepo,
		userRepo:    userRepo,
		agentRepo:   agentRepo,
		fetcher:     fetcher,
	}
}

// GetTranscript returns the meeting transcript with each line attributed to
// a speaker. A missing, unreachable or malformed transcript yields an empty
// list.
func (s *TranscriptService) GetTranscript(ctx context.Context, userID, meetingID string) ([]model.TranscriptLine, error) {
	meeting, err := s.meetingRepo.FindByIDForUser(ctx, meetingID, userID)
	if err != nil {
		return nil, apperrors.Database(fmt.Errorf("find meeting: %w", err))
	}
	if meeting == nil {
		return nil, apperrors.NotFound("Meeting")
	}

	lines := []model.TranscriptLine{}
	if meeting.TranscriptURL == nil || *meeting.TranscriptURL == "" || s.fetcher == nil {
		return lines, nil
	}

	data, err := s.fetcher.Fetch(ctx, *meeting.TranscriptURL)
	if err != nil {
		log.Warn().Err(err).Str("meetingId", meetingID).Msg("failed to fetch transcript")
		return lines, nil
	}

	items, err := ParseTranscript(data)
	if err != nil {
		log.Warn().Err(err).Str("meetingId", meetingID).Msg("failed to parse transcript")
		return lines, nil
	}
	if len(items) == 0 {
		return lines, nil
	}

	speakers, err := s.resolveSpeakers(ctx, items)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	for _, item := range items {
		speaker, ok := speakers[item.SpeakerID]
		if !ok {
			speaker = model.Speaker{
				Name:  unknownSpeakerName,
				Image: avatar.URI(unknownSpeakerName, avatar.Initials),
				Kind:  model.SpeakerUnknown,
			}
		}
		lines = append(lines, model.TranscriptLine{TranscriptItem: item, User: speaker})
	}

	return lines, nil
}

// resolveSpeakers looks up every distinct speaker id among users and agents.
// A user wins when an id matches both.
func (s *TranscriptService) resolveSpeakers(ctx context.Context, items []model.TranscriptItem) (map[string]model.Speaker, error) {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.SpeakerID]; ok {
			continue
		}
		seen[item.SpeakerID] = struct{}{}
		ids = append(ids, item.SpeakerID)
	}

	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find speaker users: %w", err)
	}
	agents, err := s.agentRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find speaker agents: %w", err)
	}

	speakers := make(map[string]model.Speaker, len(users)+len(agents))
	for _, agent := range agents {
		speakers[agent.ID] = model.Speaker{
			ID:    agent.ID,
			Name:  agent.Name,
			Image: avatar.ForAgent(agent.Name),
			Kind:  model.SpeakerAgent,
		}
	}
	for _, user := range users {
		speakers[user.ID] = model.Speaker{
			ID:    user.ID,
			Name:  user.Name,
			Image: avatar.ForUser(user.Image, user.Name),
			Kind:  model.SpeakerUser,
		}
	}
	return speakers, nil
}

// ParseTranscript decodes newline-delimited JSON transcript items. Blank
// lines are skipped; any malformed line fails the whole document.
func ParseTranscript(data []byte) ([]model.TranscriptItem, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64<<10), config.MaxTranscriptBytes)

	items := []model.TranscriptItem{}
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var item model.TranscriptItem
		if err := json.Unmarshal(line, &item); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan transcript: %w", err)
	}

	return items, nil
}

package service

import (
	"context"
	"time"

	"github.com/buddyai/buddy-server-go/internal/avatar"
	"github.com/buddyai/buddy-server-go/internal/config"
	apperrors "github.com/buddyai/buddy-server-go/internal/errors"
	"github.com/buddyai/buddy-server-go/internal/model"
	"github.com/buddyai/buddy-server-go/internal/stream"
)

// TokenService mints client tokens for the video and chat platforms after
// registering the caller there.
type TokenService struct {
	video VideoPlatform
	chat  ChatPlatform
	now   func() time.Time
}

func NewTokenService(video VideoPlatform, chat ChatPlatform) *TokenService {
	return &TokenService{video: video, chat: chat, now: time.Now}
}

func (s *TokenService) VideoToken(ctx context.Context, user *model.User) (string, error) {
	if s.video == nil {
		return "", apperrors.NotConfigured("Video calling")
	}

	if err := s.video.UpsertUsers(ctx, stream.User{
		ID:    user.ID,
		Name:  user.Name,
		Role:  platformRoleAdmin,
		Image: avatar.ForUser(user.Image, user.Name),
	}); err != nil {
		return "", apperrors.External("video", err)
	}

	now := s.now()
	token, err := s.video.CreateToken(user.ID, now.Add(config.VideoTokenTTL), now.Add(-config.VideoTokenClockSkew))
	if err != nil {
		return "", apperrors.Internal("Failed to create video token").WithCause(err)
	}
	return token, nil
}

// ChatToken returns a non-expiring chat token.
func (s *TokenService) ChatToken(ctx context.Context, user *model.User) (string, error) {
	if s.chat == nil {
		return "", apperrors.NotConfigured("Chat")
	}

	token, err := s.chat.CreateToken(user.ID, time.Time{}, time.Time{})
	if err != nil {
		return "", apperrors.Internal("Failed to create chat token").WithCause(err)
	}

	if err := s.chat.UpsertUsers(ctx, stream.User{
		ID:    user.ID,
		Name:  user.Name,
		Role:  platformRoleAdmin,
		Image: avatar.ForUser(user.Image, user.Name),
	}); err != nil {
		return "", apperrors.External("chat", err)
	}

	return token, nil
}

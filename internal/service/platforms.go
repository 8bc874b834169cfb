package service

import (
	"context"
	"time"

	"github.com/buddyai/buddy-server-go/internal/stream"
)

// VideoPlatform is the subset of the video API the service layer drives.
type VideoPlatform interface {
	GetOrCreateCall(ctx context.Context, callType, callID string, data stream.CallData) error
	UpsertUsers(ctx context.Context, users ...stream.User) error
	CreateToken(userID string, expiresAt, issuedAt time.Time) (string, error)
}

// ChatPlatform is the subset of the chat API the service layer drives.
type ChatPlatform interface {
	UpsertUsers(ctx context.Context, users ...stream.User) error
	CreateToken(userID string, expiresAt, issuedAt time.Time) (string, error)
}

// TranscriptFetcher loads a transcript document by URL.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// EventPublisher pushes an event onto a user's live stream.
type EventPublisher interface {
	PublishJSON(ctx context.Context, userID, eventType string, payload any) error
}

var (
	_ VideoPlatform = (*stream.VideoClient)(nil)
	_ ChatPlatform  = (*stream.ChatClient)(nil)
)

package stream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

type TranscriptionSettings struct {
	Language          string `json:"language,omitempty"`
	Mode              string `json:"mode"`
	ClosedCaptionMode string `json:"closed_caption_mode,omitempty"`
}

type RecordingSettings struct {
	Mode    string `json:"mode"`
	Quality string `json:"quality,omitempty"`
}

type CallSettings struct {
	Transcription *TranscriptionSettings `json:"transcription,omitempty"`
	Recording     *RecordingSettings     `json:"recording,omitempty"`
}

type CallData struct {
	CreatedByID      string         `json:"created_by_id"`
	Custom           map[string]any `json:"custom,omitempty"`
	SettingsOverride *CallSettings  `json:"settings_override,omitempty"`
}

// VideoClient manages video users, calls and tokens.
type VideoClient struct {
	*client
}

func NewVideoClient(cfg Config) *VideoClient {
	return &VideoClient{client: newClient("stream video", cfg, "/api/v2/users")}
}

// GetOrCreateCall creates the call if it does not exist. Repeating it for an
// existing call is harmless.
func (c *VideoClient) GetOrCreateCall(ctx context.Context, callType, callID string, data CallData) error {
	path := fmt.Sprintf("/api/v2/video/call/%s/%s", url.PathEscape(callType), url.PathEscape(callID))
	if err := c.do(ctx, http.MethodPost, path, map[string]any{"data": data}, nil); err != nil {
		return fmt.Errorf("create call %s:%s: %w", callType, callID, err)
	}
	return nil
}

package model

import (
	"strings"
	"time"
)

// Call platform webhook event types.
const (
	CallEventSessionStarted     = "call.session_started"
	CallEventParticipantLeft    = "call.session_participant_left"
	CallEventSessionEnded       = "call.session_ended"
	CallEventTranscriptionReady = "call.transcription_ready"
	CallEventRecordingReady     = "call.recording_ready"
	CallEventSummaryReady       = "call.summary_ready"
)

type CallAsset struct {
	Filename string `json:"filename,omitempty"`
	URL      string `json:"url"`
}

type CallEvent struct {
	Type              string     `json:"type"`
	CallCID           string     `json:"call_cid"`
	CreatedAt         time.Time  `json:"created_at"`
	CallTranscription *CallAsset `json:"call_transcription,omitempty"`
	CallRecording     *CallAsset `json:"call_recording,omitempty"`
	Summary           string     `json:"summary,omitempty"`
}

// MeetingID extracts the call id from a "<type>:<id>" call cid.
func (e CallEvent) MeetingID() string {
	_, id, found := strings.Cut(e.CallCID, ":")
	if !found {
		return ""
	}
	return id
}

// MeetingStatusEvent is published to a user's event stream whenever a
// meeting changes state.
type MeetingStatusEvent struct {
	MeetingID string        `json:"meetingId"`
	Status    MeetingStatus `json:"status"`
	EventType string        `json:"eventType"`
}

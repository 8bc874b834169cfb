package model

// TranscriptItem is one line of the NDJSON transcript produced by the call platform.
type TranscriptItem struct {
	SpeakerID string `json:"speaker_id"`
	Type      string `json:"type"`
	Text      string `json:"text"`
	StartTs   int64  `json:"start_ts"`
	StopTs    int64  `json:"stop_ts"`
}

type SpeakerKind string

const (
	SpeakerUser    SpeakerKind = "user"
	SpeakerAgent   SpeakerKind = "agent"
	SpeakerUnknown SpeakerKind = "unknown"
)

type Speaker struct {
	ID    string      `json:"id,omitempty"`
	Name  string      `json:"name"`
	Image string      `json:"image"`
	Kind  SpeakerKind `json:"kind"`
}

type TranscriptLine struct {
	TranscriptItem
	User Speaker `json:"user"`
}

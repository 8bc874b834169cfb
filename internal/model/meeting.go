package model

import "time"

type Meeting struct {
	ID            string        `db:"id" json:"id"`
	Name          string        `db:"name" json:"name"`
	UserID        string        `db:"user_id" json:"userId"`
	AgentID       string        `db:"agent_id" json:"agentId"`
	Status        MeetingStatus `db:"status" json:"status"`
	StartedAt     *time.Time    `db:"started_at" json:"startedAt"`
	EndedAt       *time.Time    `db:"ended_at" json:"endedAt"`
	TranscriptURL *string       `db:"transcript_url" json:"transcriptUrl"`
	RecordingURL  *string       `db:"recording_url" json:"recordingUrl"`
	Summary       *string       `db:"summary" json:"summary"`
	CreatedAt     time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updatedAt"`
}

// MeetingWithAgent is a meeting joined with its agent. Duration is in seconds
// and only present once the meeting has both started and ended.
type MeetingWithAgent struct {
	Meeting
	Agent    Agent    `db:"agent" json:"agent"`
	Duration *float64 `db:"duration" json:"duration"`
}

type CreateMeetingParams struct {
	ID      string
	Name    string
	UserID  string
	AgentID string
}

// UpdateMeetingParams leaves columns untouched where the field is nil.
type UpdateMeetingParams struct {
	Name          *string
	AgentID       *string
	Status        *MeetingStatus
	StartedAt     *time.Time
	EndedAt       *time.Time
	TranscriptURL *string
	RecordingURL  *string
	Summary       *string
}

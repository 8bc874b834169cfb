package model

import "time"

type Agent struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	UserID       string    `db:"user_id" json:"userId"`
	Instructions string    `db:"instructions" json:"instructions"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

type AgentWithMeetingCount struct {
	Agent
	MeetingCount int `db:"meeting_count" json:"meetingCount"`
}

type CreateAgentParams struct {
	ID           string
	Name         string
	UserID       string
	Instructions string
}

type UpdateAgentParams struct {
	Name         *string
	Instructions *string
}

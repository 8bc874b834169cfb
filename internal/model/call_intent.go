package model

import "time"

// CallIntent records that a meeting still needs its video call provisioned.
type CallIntent struct {
	ID        string           `db:"id" json:"id"`
	MeetingID string           `db:"meeting_id" json:"meetingId"`
	Status    CallIntentStatus `db:"status" json:"status"`
	Attempts  int              `db:"attempts" json:"attempts"`
	LastError *string          `db:"last_error" json:"lastError,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time        `db:"updated_at" json:"updatedAt"`
}

package schema

type MeetingList struct {
	Page     int     `json:"page" validate:"gte=0,max=1000000"`
	PageSize int     `json:"pageSize" validate:"gte=0"`
	Search   *string `json:"search" validate:"omitempty,max=255"`
	AgentID  *string `json:"agentId" validate:"omitempty,min=1"`
	Status   *string `json:"status" validate:"omitempty,oneof=upcoming active completed processing cancelled"`
}

type MeetingInsert struct {
	Name    string `json:"name" validate:"required,max=255"`
	AgentID string `json:"agentId" validate:"required"`
}

// MeetingUpdate carries optional fields; absent fields keep their stored value.
// Transcript and recording URLs are written only by call events.
type MeetingUpdate struct {
	ID      string  `json:"id" validate:"required"`
	Name    *string `json:"name" validate:"omitempty,min=1,max=255"`
	AgentID *string `json:"agentId" validate:"omitempty,min=1"`
	Status  *string `json:"status" validate:"omitempty,oneof=upcoming active completed processing cancelled"`
	Summary *string `json:"summary"`
}

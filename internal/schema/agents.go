package schema

type AgentList struct {
	Page     int     `json:"page" validate:"gte=0,max=1000000"`
	PageSize int     `json:"pageSize" validate:"gte=0"`
	Search   *string `json:"search" validate:"omitempty,max=255"`
}

type AgentInsert struct {
	Name         string `json:"name" validate:"required,max=255"`
	Instructions string `json:"instructions" validate:"required"`
}

type AgentUpdate struct {
	ID           string `json:"id" validate:"required"`
	Name         string `json:"name" validate:"required,max=255"`
	Instructions string `json:"instructions" validate:"required"`
}

type ByID struct {
	ID string `json:"id" validate:"required"`
}

// Empty is the input of procedures that take no arguments.
type Empty struct{}

package model

type MeetingStatus string

const (
	MeetingStatusUpcoming   MeetingStatus = "upcoming"
	MeetingStatusActive     MeetingStatus = "active"
	MeetingStatusCompleted  MeetingStatus = "completed"
	MeetingStatusProcessing MeetingStatus = "processing"
	MeetingStatusCancelled  MeetingStatus = "cancelled"
)

var meetingTransitions = map[MeetingStatus][]MeetingStatus{
	MeetingStatusUpcoming:   {MeetingStatusActive, MeetingStatusCancelled},
	MeetingStatusActive:     {MeetingStatusProcessing, MeetingStatusCancelled},
	MeetingStatusProcessing: {MeetingStatusCompleted, MeetingStatusCancelled},
}

func (s MeetingStatus) IsValid() bool {
	switch s {
	case MeetingStatusUpcoming, MeetingStatusActive, MeetingStatusCompleted,
		MeetingStatusProcessing, MeetingStatusCancelled:
		return true
	}
	return false
}

func (s MeetingStatus) IsTerminal() bool {
	return s == MeetingStatusCompleted || s == MeetingStatusCancelled
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
func (s MeetingStatus) CanTransitionTo(next MeetingStatus) bool {
	for _, allowed := range meetingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// MeetingStatusesBefore returns every status that may legally move to next.
func MeetingStatusesBefore(next MeetingStatus) []MeetingStatus {
	var from []MeetingStatus
	for _, s := range []MeetingStatus{MeetingStatusUpcoming, MeetingStatusActive, MeetingStatusProcessing} {
		if s.CanTransitionTo(next) {
			from = append(from, s)
		}
	}
	return from
}

type CallIntentStatus string

const (
	CallIntentPending   CallIntentStatus = "pending"
	CallIntentCompleted CallIntentStatus = "completed"
	CallIntentFailed    CallIntentStatus = "failed"
)

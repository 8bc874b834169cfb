package service

import "github.com/google/uuid"

// newID returns the identifier used for user-facing rows.
func newID() string {
	return uuid.NewString()
}

func newRequestID() string {
	return uuid.NewString()
}

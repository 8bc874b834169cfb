package model

import "time"

// Session is an authenticated browser session. Token holds the HMAC of the
// cookie value, never the raw token.
type Session struct {
	ID        string    `db:"id" json:"id"`
	Token     string    `db:"token" json:"-"`
	ExpiresAt time.Time `db:"expires_at" json:"expiresAt"`
	IPAddress *string   `db:"ip_address" json:"ipAddress,omitempty"`
	UserAgent *string   `db:"user_agent" json:"userAgent,omitempty"`
	UserID    string    `db:"user_id" json:"userId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type CreateSessionParams struct {
	ID        string
	TokenHash string
	ExpiresAt time.Time
	IPAddress *string
	UserAgent *string
	UserID    string
	Now       time.Time
}

package model

import "time"

type Verification struct {
	ID         string    `db:"id" json:"id"`
	Identifier string    `db:"identifier" json:"identifier"`
	Value      string    `db:"value" json:"-"`
	ExpiresAt  time.Time `db:"expires_at" json:"expiresAt"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

type CreateVerificationParams struct {
	ID         string
	Identifier string
	ValueHash  string
	ExpiresAt  time.Time
}

// internal/model/credential.go
package model

import "time"

// Credential is one connected Gmail mailbox. Token fields are nulled on
// disconnect; the row itself is kept for history.
type Credential struct {
	ID           int        `db:"id" json:"id"`
	OwnerID      string     `db:"owner_id" json:"owner_id"`
	Email        string     `db:"email" json:"email"`
	AccessToken  string     `db:"access_token" json:"-"`
	RefreshToken *string    `db:"refresh_token" json:"-"`
	ExpiresAt    *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// Connected reports whether this credential can still mint access tokens.
func (c *Credential) Connected() bool {
	return c != nil && c.RefreshToken != nil && *c.RefreshToken != ""
}

// internal/model/pending_auto_reply.go
package model

import "time"

// PendingAutoReply statuses. A row starts pending, becomes sent exactly once,
// or dead after too many failed attempts.
const (
	AutoReplyPending = "pending"
	AutoReplySent    = "sent"
	AutoReplyDead    = "dead"
)

type PendingAutoReply struct {
	ID            int        `db:"id" json:"id"`
	LeadID        *int       `db:"lead_id" json:"lead_id,omitempty"`
	LeadName      string     `db:"lead_name" json:"lead_name"`
	FromEmail     string     `db:"from_email" json:"from_email"`
	Subject       string     `db:"subject" json:"subject"`
	ResponseText  string     `db:"response_text" json:"response_text"`
	ScheduledTime time.Time  `db:"scheduled_time" json:"scheduled_time"`
	Sent          bool       `db:"sent" json:"sent"`
	SentAt        *time.Time `db:"sent_at" json:"sent_at,omitempty"`
	AttemptCount  int        `db:"attempt_count" json:"attempt_count"`
	NextAttemptAt *time.Time `db:"next_attempt_at" json:"next_attempt_at,omitempty"`
	ClaimedBy     *string    `db:"claimed_by" json:"-"`
	LastError     string     `db:"last_error" json:"last_error,omitempty"`
	Status        string     `db:"status" json:"status"`
}

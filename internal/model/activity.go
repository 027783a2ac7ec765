// internal/model/activity.go
package model

import "time"

// Activity types recorded against a lead. Rows are insert-only.
const (
	ActivityEmailSent        = "email_sent"
	ActivityEmailReceived    = "email_received"
	ActivityCallMade         = "call_made"
	ActivityWhatsappMessage  = "whatsapp_message"
	ActivityMeetingScheduled = "meeting_scheduled"
)

type Activity struct {
	ID           int       `db:"id" json:"id"`
	LeadID       *int      `db:"lead_id" json:"lead_id,omitempty"` // nil for unmatched senders
	ActivityType string    `db:"activity_type" json:"activity_type"`
	Body         string    `db:"body" json:"body"`
	Datetime     time.Time `db:"datetime" json:"datetime"`
}

// internal/model/lead.go
package model

import "time"

type Lead struct {
	ID        int       `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	Source    string    `db:"source" json:"source"` // email, whatsapp, social
	Status    string    `db:"status" json:"status"` // new, contacted, qualified, lost
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

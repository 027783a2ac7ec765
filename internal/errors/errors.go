// internal/errors/errors.go
package appErrors

import "fmt"

// ErrInvalidLead means the lead is missing an id or email address.
// Never retried; the caller must fix the input.
type ErrInvalidLead struct {
	Reason string
}

func (e *ErrInvalidLead) Error() string {
	return fmt.Sprintf("invalid lead: %s", e.Reason)
}

func NewInvalidLead(reason string) error {
	return &ErrInvalidLead{Reason: reason}
}

// ErrNotConnected means no Gmail credential exists for the owner.
type ErrNotConnected struct{}

func (e *ErrNotConnected) Error() string {
	return "no Gmail account connected, please connect Gmail account"
}

func NewNotConnected() error {
	return &ErrNotConnected{}
}

// ErrNoRefreshToken is terminal: refresh tokens do not self-heal, the user
// must reconnect their Gmail account.
type ErrNoRefreshToken struct {
	Email string
}

func (e *ErrNoRefreshToken) Error() string {
	return fmt.Sprintf("no refresh token stored for %s, reconnect your Gmail account", e.Email)
}

func NewNoRefreshToken(email string) error {
	return &ErrNoRefreshToken{Email: email}
}

// ErrRefreshFailed means the token endpoint did not return a usable access token.
type ErrRefreshFailed struct {
	Detail string
}

func (e *ErrRefreshFailed) Error() string {
	return fmt.Sprintf("failed to refresh access token: %s", e.Detail)
}

func NewRefreshFailed(detail string) error {
	return &ErrRefreshFailed{Detail: detail}
}

// ErrTransport means the mail provider rejected the send.
type ErrTransport struct {
	Status int
	Body   string
}

func (e *ErrTransport) Error() string {
	return fmt.Sprintf("gmail send failed (status %d): %s", e.Status, e.Body)
}

func NewTransport(status int, body string) error {
	return &ErrTransport{Status: status, Body: body}
}

// ErrLeadNotFound is a sentinel error
type ErrLeadNotFound struct {
	LeadID int
}

func (e *ErrLeadNotFound) Error() string {
	return fmt.Sprintf("lead with ID %d not found", e.LeadID)
}

// Helper constructor
func NewLeadNotFound(id int) error {
	return &ErrLeadNotFound{LeadID: id}
}

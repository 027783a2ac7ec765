// internal/service/send_service.go
package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	appErrors "github.com/smartleadhq/smartlead-backend/internal/errors"
	"github.com/smartleadhq/smartlead-backend/internal/gmail"
	"github.com/smartleadhq/smartlead-backend/internal/model"
	"github.com/smartleadhq/smartlead-backend/internal/repository"
)

// EmailContent is the subject/body pair for one outbound email. The AI
// content generator upstream produces these; callers may omit it and get
// the default follow-up template.
type EmailContent struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SendResult separates delivery from bookkeeping. Once the transport has
// accepted a message we never report the send itself as failed, even if the
// status/activity writes afterwards blow up.
type SendResult struct {
	Delivered         bool   `json:"delivered"`
	BookkeepingOK     bool   `json:"bookkeeping_ok"`
	Message           string `json:"message"`
	ProviderMessageID string `json:"provider_message_id,omitempty"`
}

// LeadEmailSender is the dispatcher's view of the send pipeline.
type LeadEmailSender interface {
	SendEmailToLead(ctx context.Context, lead *model.Lead, content *EmailContent) (*SendResult, error)
	SendToRecipient(ctx context.Context, lead *model.Lead, to string, content EmailContent) (*SendResult, error)
}

// SendService orchestrates one outbound email: credential → token refresh →
// encode → submit → record activity and lead status.
type SendService struct {
	LeadRepo       repository.LeadRepositoryInterface
	ActivityRepo   repository.ActivityRepositoryInterface
	CredentialRepo repository.CredentialRepositoryInterface
	Tokens         TokenRefresher
	Mailer         gmail.Mailer
	OwnerID        string
}

// SendEmailToLead validates the lead and sends to its address. A nil content
// falls back to the default follow-up template.
func (s *SendService) SendEmailToLead(ctx context.Context, lead *model.Lead, content *EmailContent) (*SendResult, error) {
	if lead == nil || lead.ID == 0 {
		return nil, appErrors.NewInvalidLead("missing lead id")
	}
	if lead.Email == "" {
		return nil, appErrors.NewInvalidLead("lead has no email address")
	}

	c := EmailContent{}
	if content != nil {
		c = *content
	}
	if c.Subject == "" && c.Body == "" {
		c = DefaultFollowUpContent(lead.FirstName)
	}

	return s.SendToRecipient(ctx, lead, lead.Email, c)
}

// SendEmailToLeadID fetches the lead first; used by the queued-send paths.
func (s *SendService) SendEmailToLeadID(ctx context.Context, leadID int, content *EmailContent) (*SendResult, error) {
	lead, err := s.LeadRepo.GetByID(leadID)
	if err != nil {
		return nil, err
	}
	return s.SendEmailToLead(ctx, lead, content)
}

// SendToRecipient is the core pipeline. lead may be nil for replies to
// senders that never matched a lead; bookkeeping degrades accordingly.
func (s *SendService) SendToRecipient(ctx context.Context, lead *model.Lead, to string, content EmailContent) (*SendResult, error) {
	if to == "" {
		return nil, appErrors.NewInvalidLead("missing recipient address")
	}

	cred, err := s.CredentialRepo.GetActive(s.OwnerID)
	if err != nil {
		return nil, err
	}
	if cred == nil || !cred.Connected() {
		return nil, appErrors.NewNotConnected()
	}

	// Always refresh before sending. A refresh failure aborts the send;
	// we never submit with a possibly-stale token.
	accessToken, err := s.Tokens.RefreshAccessToken(ctx, cred.Email)
	if err != nil {
		return nil, err
	}

	raw := gmail.EncodeMessage(cred.Email, to, content.Subject, content.Body)

	providerID, err := s.Mailer.Send(ctx, accessToken, raw)
	if err != nil {
		return nil, err
	}

	result := &SendResult{
		Delivered:         true,
		BookkeepingOK:     true,
		Message:           "email sent",
		ProviderMessageID: providerID,
	}

	// Best-effort bookkeeping. The email is already out, so failures here
	// only degrade the result message.
	if err := s.recordSend(lead, to, content.Subject); err != nil {
		logrus.WithError(err).WithField("to", to).Warn("email sent but failed to update records")
		result.BookkeepingOK = false
		result.Message = "email sent but failed to update records"
	}

	return result, nil
}

func (s *SendService) recordSend(lead *model.Lead, to, subject string) error {
	var leadID *int
	if lead != nil {
		leadID = &lead.ID
		if err := s.LeadRepo.UpdateStatus(lead.ID, "contacted"); err != nil {
			return err
		}
	}

	activity := &model.Activity{
		LeadID:       leadID,
		ActivityType: model.ActivityEmailSent,
		Body:         fmt.Sprintf("Email sent to %s with subject %q", to, subject),
	}
	return s.ActivityRepo.Create(activity)
}

var _ LeadEmailSender = (*SendService)(nil)

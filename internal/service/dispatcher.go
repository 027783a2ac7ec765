// internal/service/dispatcher.go
package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/smartleadhq/smartlead-backend/internal/model"
	"github.com/smartleadhq/smartlead-backend/internal/repository"
)

const dueBatchSize = 50

// AutoReplyDispatcher drains the scheduled-reply queue. Each poll fetches
// due rows in scheduled order and sends them one at a time so a batch never
// bursts the mail transport.
type AutoReplyDispatcher struct {
	ReplyRepo   repository.AutoReplyRepositoryInterface
	LeadRepo    repository.LeadRepositoryInterface
	Sender      LeadEmailSender
	MaxAttempts int

	// Now is swappable for tests.
	Now func() time.Time
}

func NewAutoReplyDispatcher(replyRepo repository.AutoReplyRepositoryInterface, leadRepo repository.LeadRepositoryInterface, sender LeadEmailSender, maxAttempts int) *AutoReplyDispatcher {
	if maxAttempts < 1 {
		maxAttempts = 5
	}
	return &AutoReplyDispatcher{
		ReplyRepo:   replyRepo,
		LeadRepo:    leadRepo,
		Sender:      sender,
		MaxAttempts: maxAttempts,
		Now:         time.Now,
	}
}

// Start polls on the given interval until the context is cancelled.
func (d *AutoReplyDispatcher) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logrus.WithField("interval", interval).Info("auto-reply dispatcher running")
	for {
		select {
		case <-ctx.Done():
			logrus.Info("auto-reply dispatcher stopped")
			return
		case <-ticker.C:
			if _, err := d.RunOnce(ctx); err != nil {
				logrus.WithError(err).Error("auto-reply dispatch cycle failed")
			}
		}
	}
}

// RunOnce processes one dispatch cycle and returns how many replies were
// sent. A failing item never blocks the rest of the batch.
func (d *AutoReplyDispatcher) RunOnce(ctx context.Context) (int, error) {
	now := d.Now()
	due, err := d.ReplyRepo.ListDue(now, dueBatchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, reply := range due {
		claimID := uuid.NewString()
		claimed, err := d.ReplyRepo.Claim(reply.ID, claimID)
		if err != nil {
			logrus.WithError(err).WithField("reply_id", reply.ID).Error("failed to claim auto-reply")
			continue
		}
		if !claimed {
			// Another dispatcher instance got there first.
			continue
		}

		if d.dispatchOne(ctx, reply) {
			sent++
		}
	}
	return sent, nil
}

func (d *AutoReplyDispatcher) dispatchOne(ctx context.Context, reply *model.PendingAutoReply) bool {
	lead, to := d.resolveRecipient(reply)

	content := EmailContent{Subject: reply.Subject, Body: reply.ResponseText}

	var err error
	if lead != nil {
		_, err = d.Sender.SendEmailToLead(ctx, lead, &content)
	} else {
		_, err = d.Sender.SendToRecipient(ctx, nil, to, content)
	}

	if err != nil {
		d.recordFailure(reply, err)
		return false
	}

	if err := d.ReplyRepo.MarkSent(reply.ID, d.Now()); err != nil {
		logrus.WithError(err).WithField("reply_id", reply.ID).Error("sent auto-reply but failed to mark it sent")
		return false
	}

	logrus.WithFields(logrus.Fields{
		"reply_id": reply.ID,
		"to":       to,
	}).Info("auto-reply sent")
	return true
}

// resolveRecipient prefers the linked lead's address. Replies from senders
// that never matched a lead go back to the inbound from address.
func (d *AutoReplyDispatcher) resolveRecipient(reply *model.PendingAutoReply) (*model.Lead, string) {
	if reply.LeadID != nil {
		lead, err := d.LeadRepo.GetByID(*reply.LeadID)
		if err == nil && lead != nil && lead.Email != "" {
			return lead, lead.Email
		}
	}
	return nil, reply.FromEmail
}

func (d *AutoReplyDispatcher) recordFailure(reply *model.PendingAutoReply, sendErr error) {
	attempt := reply.AttemptCount + 1
	log := logrus.WithFields(logrus.Fields{
		"reply_id": reply.ID,
		"attempt":  attempt,
	}).WithError(sendErr)

	if attempt >= d.MaxAttempts {
		log.Error("auto-reply exhausted its attempts, moving to dead letter")
		if err := d.ReplyRepo.MarkDead(reply.ID, sendErr.Error()); err != nil {
			logrus.WithError(err).WithField("reply_id", reply.ID).Error("failed to dead-letter auto-reply")
		}
		return
	}

	next := d.Now().Add(retryDelay(attempt))
	log.WithField("next_attempt_at", next).Warn("auto-reply send failed, will retry")
	if err := d.ReplyRepo.MarkFailed(reply.ID, sendErr.Error(), next); err != nil {
		logrus.WithError(err).WithField("reply_id", reply.ID).Error("failed to record auto-reply failure")
	}
}

// retryDelay walks the exponential backoff schedule to the given attempt.
func retryDelay(attempt int) time.Duration {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Minute
	b.MaxInterval = time.Hour
	b.RandomizationFactor = 0

	delay := b.NextBackOff()
	for i := 1; i < attempt; i++ {
		delay = b.NextBackOff()
	}
	return delay
}

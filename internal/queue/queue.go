package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/smartleadhq/smartlead-backend/internal/service"
)

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue is an in-process pub/sub queue with retry, used by the
// server binary for async send jobs that don't need to survive a restart.
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(payload any) error
}

func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		handlers: make(map[string][]func(payload any) error),
	}
}

// EmailJob is the payload on the email_sends topic.
type EmailJob struct {
	LeadID  int    `json:"lead_id"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body,omitempty"`
}

const maxJobRetries = 3

// Publish sends a message to all subscribers.
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	for _, handler := range handlers {
		go q.processJob(topic, handler, payload)
	}
	return nil
}

// processJob retries failed handlers with exponential backoff before giving up.
func (q *InMemoryQueue) processJob(topic string, handler func(payload any) error, payload any) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxElapsedTime = 0

	attempt := 0
	operation := func() error {
		attempt++
		err := handler(payload)
		if err == nil {
			return nil
		}
		logrus.WithError(err).WithFields(logrus.Fields{
			"topic":   topic,
			"attempt": attempt,
		}).Warn("queue job failed")
		if attempt > maxJobRetries {
			return backoff.Permanent(err)
		}
		return err
	}

	if err := backoff.Retry(operation, b); err != nil {
		logrus.WithError(err).WithField("topic", topic).Error("queue job permanently failed")
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// EmailSendTopic is the in-process topic queued lead emails go through.
const EmailSendTopic = "email_sends"

// LeadEmailSender is what the subscriber needs from the send pipeline.
type LeadEmailSender interface {
	SendEmailToLeadID(ctx context.Context, leadID int, content *service.EmailContent) (*service.SendResult, error)
}

// StartEmailSendSubscriber wires the send pipeline onto the email_sends topic.
func StartEmailSendSubscriber(q Queue, sender LeadEmailSender) {
	go func() {
		err := q.Subscribe(EmailSendTopic, func(payload any) error {
			job, ok := payload.(EmailJob)
			if !ok {
				logrus.Warn("invalid payload type on email_sends, expected EmailJob")
				return nil // no retry for garbage
			}

			var content *service.EmailContent
			if job.Subject != "" || job.Body != "" {
				content = &service.EmailContent{Subject: job.Subject, Body: job.Body}
			}

			result, err := sender.SendEmailToLeadID(context.Background(), job.LeadID, content)
			if err != nil {
				return err // triggers retry in queue
			}

			logrus.WithFields(logrus.Fields{
				"lead_id":   job.LeadID,
				"delivered": result.Delivered,
			}).Info("queued email processed")
			return nil
		})

		if err != nil {
			logrus.WithError(err).Error("failed to start subscriber for email_sends")
		}
	}()
}

package main

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"github.com/smartleadhq/smartlead-backend/internal/config"
	"github.com/smartleadhq/smartlead-backend/internal/db"
	"github.com/smartleadhq/smartlead-backend/internal/gmail"
	"github.com/smartleadhq/smartlead-backend/internal/queue"
	"github.com/smartleadhq/smartlead-backend/internal/repository"
	"github.com/smartleadhq/smartlead-backend/internal/service"
)

const sendQueueName = "email_sends"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal("failed to load config: ", err)
	}

	conn, err := db.Connect(cfg.DB.DSN())
	if err != nil {
		logrus.Fatal("failed to connect to DB: ", err)
	}

	// Repositories
	credentialRepo := &repository.CredentialRepository{DB: conn}
	leadRepo := &repository.LeadRepository{DB: conn}
	activityRepo := &repository.ActivityRepository{DB: conn}
	replyRepo := &repository.AutoReplyRepository{DB: conn}

	oauthClient := gmail.NewOAuthClient(cfg.Gmail.ClientID, cfg.Gmail.ClientSecret, cfg.Gmail.RedirectURI)

	tokenService := &service.TokenService{
		CredentialRepo: credentialRepo,
		OAuth:          oauthClient,
		OwnerID:        cfg.Gmail.OwnerID,
	}

	sendService := &service.SendService{
		LeadRepo:       leadRepo,
		ActivityRepo:   activityRepo,
		CredentialRepo: credentialRepo,
		Tokens:         tokenService,
		Mailer:         gmail.NewTransport(),
		OwnerID:        cfg.Gmail.OwnerID,
	}

	// Scheduled auto-reply dispatcher
	dispatcher := service.NewAutoReplyDispatcher(replyRepo, leadRepo, sendService, cfg.AutoRep.MaxAttempts)
	go dispatcher.Start(context.Background(), cfg.AutoRep.PollInterval)

	// Connect to RabbitMQ for queued send jobs
	mq, err := amqp.Dial(cfg.AmqpURL)
	if err != nil {
		logrus.Fatal("Failed to connect to RabbitMQ: ", err)
	}
	defer mq.Close()

	ch, err := mq.Channel()
	if err != nil {
		logrus.Fatal("Failed to open a channel: ", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		sendQueueName, // name
		true,          // durable
		false,         // delete when unused
		false,         // exclusive
		false,         // no-wait
		nil,           // arguments
	)
	if err != nil {
		logrus.Fatal("Failed to declare queue: ", err)
	}

	msgs, err := ch.Consume(
		q.Name,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logrus.Fatal("Failed to register consumer: ", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var job queue.EmailJob
			if err := json.Unmarshal(d.Body, &job); err != nil {
				logrus.WithError(err).Warn("invalid send job, dropping")
				d.Ack(false)
				continue
			}

			if err := processSendJob(job, sendService); err != nil {
				logrus.WithError(err).WithField("lead_id", job.LeadID).Error("failed to process send job")
				// Retry logic: requeue up to 3 times
				var retryCount int
				if d.Headers["x-retry-count"] != nil {
					retryCount, _ = d.Headers["x-retry-count"].(int)
				}
				if retryCount < 3 {
					d.Nack(false, true) // requeue
					continue
				}
			}

			d.Ack(false)
		}
	}()

	logrus.Info("Worker running, waiting for send jobs...")
	<-forever
}

func processSendJob(job queue.EmailJob, svc *service.SendService) error {
	var content *service.EmailContent
	if job.Subject != "" || job.Body != "" {
		content = &service.EmailContent{Subject: job.Subject, Body: job.Body}
	}

	result, err := svc.SendEmailToLeadID(context.Background(), job.LeadID, content)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"lead_id":        job.LeadID,
		"delivered":      result.Delivered,
		"bookkeeping_ok": result.BookkeepingOK,
	}).Info("send job processed")
	return nil
}

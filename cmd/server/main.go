// cmd/server/main.go
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/smartleadhq/smartlead-backend/internal/config"
	"github.com/smartleadhq/smartlead-backend/internal/controller"
	"github.com/smartleadhq/smartlead-backend/internal/db"
	"github.com/smartleadhq/smartlead-backend/internal/gmail"
	"github.com/smartleadhq/smartlead-backend/internal/queue"
	"github.com/smartleadhq/smartlead-backend/internal/repository"
	"github.com/smartleadhq/smartlead-backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	conn, err := db.Connect(cfg.DB.DSN())
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	logrus.Info("✅ Connected to database")

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

	q := queue.NewInMemoryQueue()
	queue.StartEmailSendSubscriber(q, sendService)

	oauthController := &controller.OAuthController{
		CredentialRepo: credentialRepo,
		OAuth:          oauthClient,
		OwnerID:        cfg.Gmail.OwnerID,
	}

	leadController := &controller.LeadController{
		LeadRepo:     leadRepo,
		ActivityRepo: activityRepo,
		SendService:  sendService,
		Queue:        q,
	}

	replyController := &controller.AutoReplyController{ReplyRepo: replyRepo}

	r := chi.NewRouter()

	// Gmail connection flow
	r.Get("/auth/gmail/connect", oauthController.Connect)
	r.Get("/auth/gmail/callback", oauthController.Callback)
	r.Post("/auth/gmail/disconnect", oauthController.Disconnect)
	r.Get("/auth/gmail/status", oauthController.Status)

	// Leads and sending
	r.Get("/leads", leadController.ListLeads)
	r.Get("/leads/{id}", leadController.GetLead)
	r.Get("/leads/{id}/activities", leadController.ListActivities)
	r.Post("/leads/{id}/send-email", leadController.SendEmail)
	r.Post("/leads/{id}/queue-email", leadController.QueueEmail)

	// Scheduled auto-replies
	r.Get("/auto-replies/pending", replyController.ListPending)

	logrus.Infof("🚀 Server running on :%s", cfg.Port)
	logrus.Fatal(http.ListenAndServe(":"+cfg.Port, r))
}

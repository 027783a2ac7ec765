// internal/controller/lead_controller.go
package controller

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	appErrors "github.com/smartleadhq/smartlead-backend/internal/errors"
	"github.com/smartleadhq/smartlead-backend/internal/queue"
	"github.com/smartleadhq/smartlead-backend/internal/repository"
	"github.com/smartleadhq/smartlead-backend/internal/service"
)

type LeadController struct {
	LeadRepo     repository.LeadRepositoryInterface
	ActivityRepo repository.ActivityRepositoryInterface
	SendService  *service.SendService
	Queue        queue.Queue
}

func (c *LeadController) ListLeads(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	source := r.URL.Query().Get("source")
	status := r.URL.Query().Get("status")

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	leads, total, err := c.LeadRepo.ListLeads(offset, pageSize, source, status)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	totalPages := (total + pageSize - 1) / pageSize
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data": leads,
		"pagination": map[string]int{
			"page":        page,
			"page_size":   pageSize,
			"total_count": total,
			"total_pages": totalPages,
		},
	})
}

func (c *LeadController) GetLead(w http.ResponseWriter, r *http.Request) {
	id, err := leadID(r)
	if err != nil {
		http.Error(w, "invalid lead id", http.StatusBadRequest)
		return
	}

	lead, err := c.LeadRepo.GetByID(id)
	if err != nil {
		if _, ok := err.(*appErrors.ErrLeadNotFound); ok {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(lead)
}

func (c *LeadController) ListActivities(w http.ResponseWriter, r *http.Request) {
	id, err := leadID(r)
	if err != nil {
		http.Error(w, "invalid lead id", http.StatusBadRequest)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	activities, err := c.ActivityRepo.ListByLead(id, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"data": activities})
}

// SendEmail runs the send pipeline synchronously and reports the two-part
// result. Expected failure modes come back as {success:false, error}
// instead of bare 500s so the UI can show remediation hints.
func (c *LeadController) SendEmail(w http.ResponseWriter, r *http.Request) {
	id, err := leadID(r)
	if err != nil {
		http.Error(w, "invalid lead id", http.StatusBadRequest)
		return
	}

	content, err := decodeContent(r)
	if err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	result, err := c.SendService.SendEmailToLeadID(r.Context(), id, content)
	if err != nil {
		writeSendError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"result":  result,
	})
}

// QueueEmail publishes an async send job to the in-process queue.
func (c *LeadController) QueueEmail(w http.ResponseWriter, r *http.Request) {
	id, err := leadID(r)
	if err != nil {
		http.Error(w, "invalid lead id", http.StatusBadRequest)
		return
	}

	content, err := decodeContent(r)
	if err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	job := queue.EmailJob{LeadID: id}
	if content != nil {
		job.Subject = content.Subject
		job.Body = content.Body
	}

	if err := c.Queue.Publish(queue.EmailSendTopic, job); err != nil {
		logrus.WithError(err).Error("failed to enqueue email job")
		http.Error(w, "failed to queue email", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"queued":  true,
		"lead_id": id,
	})
}

func leadID(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
}

func decodeContent(r *http.Request) (*service.EmailContent, error) {
	if r.Body == nil || r.ContentLength == 0 {
		return nil, nil
	}
	var body struct {
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.Subject == "" && body.Body == "" {
		return nil, nil
	}
	return &service.EmailContent{Subject: body.Subject, Body: body.Body}, nil
}

// writeSendError maps pipeline failures to statuses the UI understands.
func writeSendError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := "internal"

	switch err.(type) {
	case *appErrors.ErrInvalidLead:
		status = http.StatusBadRequest
		code = "invalid_lead"
	case *appErrors.ErrLeadNotFound:
		status = http.StatusNotFound
		code = "lead_not_found"
	case *appErrors.ErrNotConnected:
		status = http.StatusConflict
		code = "not_connected"
	case *appErrors.ErrNoRefreshToken:
		status = http.StatusConflict
		code = "no_refresh_token"
	case *appErrors.ErrRefreshFailed:
		status = http.StatusBadGateway
		code = "refresh_failed"
	case *appErrors.ErrTransport:
		status = http.StatusBadGateway
		code = "transport_error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"code":    code,
		"error":   err.Error(),
	})
}

package service_test

import (
	"context"
	"sort"
	"sync"
	"time"

	appErrors "github.com/smartleadhq/smartlead-backend/internal/errors"
	"github.com/smartleadhq/smartlead-backend/internal/model"
)

// --- Mock credential repository ---

type tokenUpdate struct {
	Email       string
	AccessToken string
	ExpiresAt   time.Time
}

type mockCredentialRepo struct {
	mu           sync.Mutex
	creds        map[string]*model.Credential // keyed by email
	activeEmail  string
	tokenUpdates []tokenUpdate
	updateErr    error
}

func newMockCredentialRepo() *mockCredentialRepo {
	return &mockCredentialRepo{creds: map[string]*model.Credential{}}
}

func (m *mockCredentialRepo) addCredential(email, accessToken string, refreshToken *string) {
	m.creds[email] = &model.Credential{
		ID:           len(m.creds) + 1,
		OwnerID:      "default",
		Email:        email,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		CreatedAt:    time.Now(),
	}
	m.activeEmail = email
}

func (m *mockCredentialRepo) Upsert(c *model.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds[c.Email] = c
	m.activeEmail = c.Email
	return nil
}

func (m *mockCredentialRepo) GetActive(ownerID string) (*model.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.activeEmail == "" {
		return nil, nil
	}
	return m.creds[m.activeEmail], nil
}

func (m *mockCredentialRepo) GetByEmail(ownerID, email string) (*model.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creds[email], nil
}

func (m *mockCredentialRepo) UpdateToken(ownerID, email, accessToken string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	m.tokenUpdates = append(m.tokenUpdates, tokenUpdate{Email: email, AccessToken: accessToken, ExpiresAt: expiresAt})
	if c, ok := m.creds[email]; ok {
		c.AccessToken = accessToken
		c.ExpiresAt = &expiresAt
	}
	return nil
}

func (m *mockCredentialRepo) Clear(ownerID, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.creds[email]; ok {
		c.AccessToken = ""
		c.RefreshToken = nil
		c.ExpiresAt = nil
	}
	return nil
}

// --- Mock lead repository ---

type mockLeadRepo struct {
	leads         map[int]*model.Lead
	statusUpdates map[int]string
	updateErr     error
}

func newMockLeadRepo(leads ...*model.Lead) *mockLeadRepo {
	m := &mockLeadRepo{leads: map[int]*model.Lead{}, statusUpdates: map[int]string{}}
	for _, l := range leads {
		m.leads[l.ID] = l
	}
	return m
}

func (m *mockLeadRepo) GetByID(id int) (*model.Lead, error) {
	lead, ok := m.leads[id]
	if !ok {
		return nil, appErrors.NewLeadNotFound(id)
	}
	return lead, nil
}

func (m *mockLeadRepo) ListLeads(offset, limit int, source, status string) ([]*model.Lead, int, error) {
	return []*model.Lead{}, 0, nil
}

func (m *mockLeadRepo) UpdateStatus(leadID int, status string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.statusUpdates[leadID] = status
	if l, ok := m.leads[leadID]; ok {
		l.Status = status
	}
	return nil
}

// --- Mock activity repository ---

type mockActivityRepo struct {
	activities []model.Activity
	createErr  error
}

func (m *mockActivityRepo) Create(a *model.Activity) error {
	if m.createErr != nil {
		return m.createErr
	}
	a.ID = len(m.activities) + 1
	m.activities = append(m.activities, *a)
	return nil
}

func (m *mockActivityRepo) ListByLead(leadID, limit int) ([]model.Activity, error) {
	return m.activities, nil
}

// --- Mock auto-reply repository ---

type mockReplyRepo struct {
	mu      sync.Mutex
	replies map[int]*model.PendingAutoReply
}

func newMockReplyRepo(replies ...*model.PendingAutoReply) *mockReplyRepo {
	m := &mockReplyRepo{replies: map[int]*model.PendingAutoReply{}}
	for _, r := range replies {
		m.replies[r.ID] = r
	}
	return m
}

func (m *mockReplyRepo) ListDue(now time.Time, limit int) ([]*model.PendingAutoReply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	due := []*model.PendingAutoReply{}
	for _, r := range m.replies {
		if r.Sent || r.Status != model.AutoReplyPending {
			continue
		}
		if r.ScheduledTime.After(now) {
			continue
		}
		if r.NextAttemptAt != nil && r.NextAttemptAt.After(now) {
			continue
		}
		due = append(due, r)
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ScheduledTime.Before(due[j].ScheduledTime) })
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (m *mockReplyRepo) ListPending() ([]*model.PendingAutoReply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pending := []*model.PendingAutoReply{}
	for _, r := range m.replies {
		if !r.Sent {
			pending = append(pending, r)
		}
	}
	return pending, nil
}

func (m *mockReplyRepo) Claim(id int, claimID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.replies[id]
	if !ok || r.Sent || r.ClaimedBy != nil {
		return false, nil
	}
	r.ClaimedBy = &claimID
	return true, nil
}

func (m *mockReplyRepo) MarkSent(id int, sentAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.replies[id]
	r.Sent = true
	r.Status = model.AutoReplySent
	r.SentAt = &sentAt
	r.ClaimedBy = nil
	return nil
}

func (m *mockReplyRepo) MarkFailed(id int, lastError string, nextAttemptAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.replies[id]
	r.ClaimedBy = nil
	r.AttemptCount++
	r.LastError = lastError
	r.NextAttemptAt = &nextAttemptAt
	return nil
}

func (m *mockReplyRepo) MarkDead(id int, lastError string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.replies[id]
	r.ClaimedBy = nil
	r.AttemptCount++
	r.LastError = lastError
	r.Status = model.AutoReplyDead
	return nil
}

// --- Mock token refresher ---

type mockRefresher struct {
	token string
	err   error
	calls int
}

func (m *mockRefresher) RefreshAccessToken(ctx context.Context, email string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.token, nil
}

// --- Mock mailer ---

type sentMessage struct {
	AccessToken string
	Raw         string
}

type mockMailer struct {
	sent []sentMessage
	err  error
}

func (m *mockMailer) Send(ctx context.Context, accessToken, raw string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, sentMessage{AccessToken: accessToken, Raw: raw})
	return "provider-msg-1", nil
}

func strPtr(s string) *string { return &s }

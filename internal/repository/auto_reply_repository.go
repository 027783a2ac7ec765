package repository

import (
	"database/sql"
	"time"

	"github.com/smartleadhq/smartlead-backend/internal/model"
)

// AutoReplyRepositoryInterface is the dispatcher's view of the scheduled
// reply queue. Claim is the optimistic lease that keeps two dispatcher
// instances from double-sending the same row.
type AutoReplyRepositoryInterface interface {
	ListDue(now time.Time, limit int) ([]*model.PendingAutoReply, error)
	ListPending() ([]*model.PendingAutoReply, error)
	Claim(id int, claimID string) (bool, error)
	MarkSent(id int, sentAt time.Time) error
	MarkFailed(id int, lastError string, nextAttemptAt time.Time) error
	MarkDead(id int, lastError string) error
}

type AutoReplyRepository struct {
	DB *sql.DB
}

const autoReplyColumns = `id, lead_id, lead_name, from_email, subject, response_text,
        scheduled_time, sent, sent_at, attempt_count, next_attempt_at, claimed_by, last_error, status`

// ListDue returns unsent pending replies that are due and not waiting on a
// retry backoff window, in scheduled order.
func (r *AutoReplyRepository) ListDue(now time.Time, limit int) ([]*model.PendingAutoReply, error) {
	query := `
        SELECT ` + autoReplyColumns + `
        FROM pending_auto_replies
        WHERE sent = false
          AND status = 'pending'
          AND scheduled_time <= $1
          AND (next_attempt_at IS NULL OR next_attempt_at <= $1)
        ORDER BY scheduled_time ASC
        LIMIT $2
    `
	return r.queryReplies(query, now, limit)
}

// ListPending returns every unsent row for observers (the settings surface
// re-fetches this after each dispatch batch).
func (r *AutoReplyRepository) ListPending() ([]*model.PendingAutoReply, error) {
	query := `
        SELECT ` + autoReplyColumns + `
        FROM pending_auto_replies
        WHERE sent = false
        ORDER BY scheduled_time ASC
    `
	return r.queryReplies(query)
}

func (r *AutoReplyRepository) queryReplies(query string, args ...interface{}) ([]*model.PendingAutoReply, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	replies := []*model.PendingAutoReply{}
	for rows.Next() {
		p := &model.PendingAutoReply{}
		if err := rows.Scan(
			&p.ID, &p.LeadID, &p.LeadName, &p.FromEmail, &p.Subject, &p.ResponseText,
			&p.ScheduledTime, &p.Sent, &p.SentAt, &p.AttemptCount, &p.NextAttemptAt,
			&p.ClaimedBy, &p.LastError, &p.Status,
		); err != nil {
			return nil, err
		}
		replies = append(replies, p)
	}
	return replies, nil
}

// Claim atomically leases the row for one dispatch attempt. Returns false
// when another instance already holds it or it was sent in the meantime.
func (r *AutoReplyRepository) Claim(id int, claimID string) (bool, error) {
	query := `
        UPDATE pending_auto_replies
        SET claimed_by = $2
        WHERE id = $1 AND sent = false AND claimed_by IS NULL
    `
	res, err := r.DB.Exec(query, id, claimID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// MarkSent flips the row to sent exactly once and releases the claim.
// Never transitions back.
func (r *AutoReplyRepository) MarkSent(id int, sentAt time.Time) error {
	query := `
        UPDATE pending_auto_replies
        SET sent = true, status = 'sent', sent_at = $2, claimed_by = NULL, last_error = ''
        WHERE id = $1
    `
	_, err := r.DB.Exec(query, id, sentAt)
	return err
}

// MarkFailed releases the claim and schedules the next attempt.
func (r *AutoReplyRepository) MarkFailed(id int, lastError string, nextAttemptAt time.Time) error {
	query := `
        UPDATE pending_auto_replies
        SET claimed_by = NULL, attempt_count = attempt_count + 1, last_error = $2, next_attempt_at = $3
        WHERE id = $1
    `
	_, err := r.DB.Exec(query, id, lastError, nextAttemptAt)
	return err
}

// MarkDead moves a row past its attempt budget out of the polling set.
func (r *AutoReplyRepository) MarkDead(id int, lastError string) error {
	query := `
        UPDATE pending_auto_replies
        SET claimed_by = NULL, attempt_count = attempt_count + 1, last_error = $2, status = 'dead'
        WHERE id = $1
    `
	_, err := r.DB.Exec(query, id, lastError)
	return err
}

var _ AutoReplyRepositoryInterface = (*AutoReplyRepository)(nil)

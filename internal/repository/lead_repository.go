package repository

import (
	"database/sql"
	"fmt"

	appErrors "github.com/smartleadhq/smartlead-backend/internal/errors"
	"github.com/smartleadhq/smartlead-backend/internal/model"
)

// LeadRepositoryInterface defines methods used by services and handlers.
type LeadRepositoryInterface interface {
	GetByID(id int) (*model.Lead, error)
	ListLeads(offset, limit int, source, status string) ([]*model.Lead, int, error)
	UpdateStatus(leadID int, status string) error
}

// LeadRepository is the concrete implementation
type LeadRepository struct {
	DB *sql.DB
}

// GetByID fetches a lead by ID
func (r *LeadRepository) GetByID(id int) (*model.Lead, error) {
	query := `
        SELECT id, first_name, last_name, email, phone, source, status, created_at
        FROM leads WHERE id = $1
    `
	var l model.Lead
	err := r.DB.QueryRow(query, id).Scan(&l.ID, &l.FirstName, &l.LastName, &l.Email, &l.Phone, &l.Source, &l.Status, &l.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewLeadNotFound(id)
		}
		return nil, err
	}
	return &l, nil
}

func (r *LeadRepository) ListLeads(offset, limit int, source, status string) ([]*model.Lead, int, error) {
	leads := []*model.Lead{}
	query := `SELECT id, first_name, last_name, email, phone, source, status, created_at FROM leads WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if source != "" {
		query += fmt.Sprintf(" AND source=$%d", argPos)
		args = append(args, source)
		argPos++
	}
	if status != "" {
		query += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, status)
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		l := &model.Lead{}
		if err := rows.Scan(&l.ID, &l.FirstName, &l.LastName, &l.Email, &l.Phone, &l.Source, &l.Status, &l.CreatedAt); err != nil {
			return nil, 0, err
		}
		leads = append(leads, l)
	}

	// Count total
	countQuery := `SELECT COUNT(*) FROM leads WHERE 1=1`
	argsCount := []interface{}{}
	argPosCount := 1
	if source != "" {
		countQuery += fmt.Sprintf(" AND source=$%d", argPosCount)
		argsCount = append(argsCount, source)
		argPosCount++
	}
	if status != "" {
		countQuery += fmt.Sprintf(" AND status=$%d", argPosCount)
		argsCount = append(argsCount, status)
	}

	var total int
	if err := r.DB.QueryRow(countQuery, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return leads, total, nil
}

// UpdateStatus is the send pipeline's bookkeeping write. The pipeline is a
// writer but not the owner of the lead record.
func (r *LeadRepository) UpdateStatus(leadID int, status string) error {
	query := `UPDATE leads SET status=$1 WHERE id=$2`
	_, err := r.DB.Exec(query, status, leadID)
	return err
}

var _ LeadRepositoryInterface = (*LeadRepository)(nil)

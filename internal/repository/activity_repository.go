package repository

import (
	"database/sql"
	"time"

	"github.com/smartleadhq/smartlead-backend/internal/model"
)

// ActivityRepositoryInterface covers the insert-only activity log. Rows are
// never updated or deleted once written.
type ActivityRepositoryInterface interface {
	Create(a *model.Activity) error
	ListByLead(leadID, limit int) ([]model.Activity, error)
}

type ActivityRepository struct {
	DB *sql.DB
}

// Create inserts a new activity row and fills in the generated ID.
func (r *ActivityRepository) Create(a *model.Activity) error {
	if a.Datetime.IsZero() {
		a.Datetime = time.Now()
	}
	query := `
        INSERT INTO activities (lead_id, activity_type, body, datetime)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `
	return r.DB.QueryRow(query, a.LeadID, a.ActivityType, a.Body, a.Datetime).Scan(&a.ID)
}

func (r *ActivityRepository) ListByLead(leadID, limit int) ([]model.Activity, error) {
	if limit < 1 {
		limit = 50
	}
	query := `
        SELECT id, lead_id, activity_type, body, datetime
        FROM activities
        WHERE lead_id = $1
        ORDER BY datetime DESC
        LIMIT $2
    `
	rows, err := r.DB.Query(query, leadID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := []model.Activity{}
	for rows.Next() {
		var a model.Activity
		if err := rows.Scan(&a.ID, &a.LeadID, &a.ActivityType, &a.Body, &a.Datetime); err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, nil
}

var _ ActivityRepositoryInterface = (*ActivityRepository)(nil)

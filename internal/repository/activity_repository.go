package repository

import (
	"context"

	"github.com/continu8/backoffice/internal/domain"
)

// ActivityRepository stores timeline entries.
type ActivityRepository interface {
	Create(ctx context.Context, activity *domain.Activity) error
	ListByLead(ctx context.Context, leadID string) ([]domain.Activity, error)
}

type activityRepository struct {
	db DBTX
}

// NewActivityRepository builds repository.
func NewActivityRepository(db DBTX) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, activity *domain.Activity) error {
	const query = `
        INSERT INTO activities (type, title, description, lead_id, client_id, ticket_id, user_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, occurred_at`
	return r.db.QueryRow(ctx, query,
		activity.Type,
		activity.Title,
		activity.Description,
		activity.LeadID,
		activity.ClientID,
		activity.TicketID,
		activity.UserID,
	).Scan(&activity.ID, &activity.OccurredAt)
}

func (r *activityRepository) ListByLead(ctx context.Context, leadID string) ([]domain.Activity, error) {
	const query = `
        SELECT id, type, title, description, lead_id, client_id, ticket_id, user_id, occurred_at
        FROM activities WHERE lead_id=$1 ORDER BY occurred_at DESC`
	rows, err := r.db.Query(ctx, query, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Activity
	for rows.Next() {
		var activity domain.Activity
		if err := rows.Scan(
			&activity.ID,
			&activity.Type,
			&activity.Title,
			&activity.Description,
			&activity.LeadID,
			&activity.ClientID,
			&activity.TicketID,
			&activity.UserID,
			&activity.OccurredAt,
		); err != nil {
			return nil, err
		}
		result = append(result, activity)
	}
	return result, rows.Err()
}

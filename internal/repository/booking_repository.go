package repository

import (
	"context"

	"github.com/continu8/backoffice/internal/domain"
)

// BookingRepository persists discovery-call bookings.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) error
}

type bookingRepository struct {
	db DBTX
}

// NewBookingRepository builds repository.
func NewBookingRepository(db DBTX) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	const query = `
        INSERT INTO bookings (lead_id, scheduled_at, duration_minutes, meeting_type, status, timezone, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		booking.LeadID,
		booking.ScheduledAt,
		booking.Duration,
		booking.MeetingType,
		booking.Status,
		booking.Timezone,
		booking.Notes,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	const query = `
        SELECT id, lead_id, scheduled_at, duration_minutes, meeting_type, status, timezone, notes, created_at, updated_at
        FROM bookings WHERE id=$1`
	var booking domain.Booking
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&booking.ID,
		&booking.LeadID,
		&booking.ScheduledAt,
		&booking.Duration,
		&booking.MeetingType,
		&booking.Status,
		&booking.Timezone,
		&booking.Notes,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	const query = `
        UPDATE bookings SET scheduled_at=$1, status=$2, timezone=$3, notes=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at`
	return r.db.QueryRow(ctx, query,
		booking.ScheduledAt,
		booking.Status,
		booking.Timezone,
		booking.Notes,
		booking.ID,
	).Scan(&booking.UpdatedAt)
}

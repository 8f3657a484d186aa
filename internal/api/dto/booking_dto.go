package dto

import (
	"time"

	"github.com/continu8/backoffice/internal/domain"
)

// SlotsQuery asks for open call slots on a day.
type SlotsQuery struct {
	Date string `query:"date" validate:"required,datetime=2006-01-02"`
}

// SlotsResponse lists HH:MM start times.
type SlotsResponse struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

// CancelBookingRequest payload.
type CancelBookingRequest struct {
	Reason *string `json:"reason" validate:"omitempty,max=1000"`
}

// RescheduleBookingRequest payload.
type RescheduleBookingRequest struct {
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
}

// CompleteBookingRequest payload.
type CompleteBookingRequest struct {
	Notes *string `json:"notes" validate:"omitempty,max=5000"`
}

// BookingResponse describes a booking.
type BookingResponse struct {
	ID          string               `json:"id"`
	LeadID      *string              `json:"lead_id"`
	ScheduledAt time.Time            `json:"scheduled_at"`
	Duration    int                  `json:"duration"`
	MeetingType string               `json:"meeting_type"`
	Status      domain.BookingStatus `json:"status"`
	Timezone    string               `json:"timezone"`
	Notes       *string              `json:"notes"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

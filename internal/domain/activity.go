package domain

import "time"

// ActivityType identifies what an activity log entry records.
type ActivityType string

const (
	ActivityTicketStatusChanged ActivityType = "ticket_status_changed"
	ActivityBookingSubmitted    ActivityType = "booking_submitted"
	ActivityStatusChange        ActivityType = "status_change"
	ActivityAssignment          ActivityType = "assignment"
	ActivityConversion          ActivityType = "conversion"
	ActivityCall                ActivityType = "call"
)

// Activity is an immutable timeline entry attached to a lead, client or ticket.
type Activity struct {
	ID          string
	Type        ActivityType
	Title       string
	Description *string
	LeadID      *string
	ClientID    *string
	TicketID    *string
	UserID      *string
	OccurredAt  time.Time
}

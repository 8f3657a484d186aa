package domain

import "time"

// BookingStatus enumerates the discovery-call lifecycle.
type BookingStatus string

const (
	BookingStatusScheduled BookingStatus = "scheduled"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusNoShow    BookingStatus = "no_show"
)

const (
	MeetingTypeDiscoveryCall = "discovery_call"
	DefaultBookingMinutes    = 60
	DefaultBookingTimezone   = "Africa/Johannesburg"
)

// Booking is a scheduled call with a lead. LeadID is nil once the lead has
// been deleted.
type Booking struct {
	ID          string
	LeadID      *string
	ScheduledAt time.Time
	Duration    int
	MeetingType string
	Status      BookingStatus
	Timezone    string
	Notes       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

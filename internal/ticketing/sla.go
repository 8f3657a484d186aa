// Package ticketing holds the pure support-ticket rules: SLA windows, ticket
// numbering, status changes and comment visibility.
package ticketing

import (
	"time"

	"github.com/continu8/backoffice/internal/domain"
)

var responseWindows = map[domain.TicketPriority]time.Duration{
	domain.TicketPriorityUrgent: 24 * time.Hour,
	domain.TicketPriorityHigh:   48 * time.Hour,
	domain.TicketPriorityMedium: 72 * time.Hour,
	domain.TicketPriorityLow:    120 * time.Hour,
}

// ResponseWindow returns how long the team has to respond to a ticket of the
// given priority. Priorities are validated upstream; an unknown one yields 0.
func ResponseWindow(p domain.TicketPriority) time.Duration {
	return responseWindows[p]
}

// SLADeadline is fixed at creation and never recomputed on priority edits.
func SLADeadline(createdAt time.Time, p domain.TicketPriority) time.Time {
	return createdAt.Add(ResponseWindow(p))
}

// ValidPriority reports whether p has an SLA window.
func ValidPriority(p domain.TicketPriority) bool {
	_, ok := responseWindows[p]
	return ok
}

package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen          TicketStatus = "open"
	TicketStatusInProgress    TicketStatus = "in_progress"
	TicketStatusWaitingClient TicketStatus = "waiting_client"
	TicketStatusResolved      TicketStatus = "resolved"
	TicketStatusClosed        TicketStatus = "closed"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// TicketCategory classifies the request.
type TicketCategory string

const (
	TicketCategoryTechnical      TicketCategory = "technical"
	TicketCategoryBilling        TicketCategory = "billing"
	TicketCategoryGeneral        TicketCategory = "general"
	TicketCategoryFeatureRequest TicketCategory = "feature_request"
)

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID           string
	TicketNumber string
	Subject      string
	Description  string
	Priority     TicketPriority
	Category     *TicketCategory
	Status       TicketStatus
	SLADeadline  time.Time
	ClientID     *string
	CreatedBy    string
	AssignedTo   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsOverdue reports whether the SLA deadline has passed at now.
func (t *Ticket) IsOverdue(now time.Time) bool {
	return now.After(t.SLADeadline)
}

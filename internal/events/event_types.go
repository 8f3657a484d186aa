package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/continu8/backoffice/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket.created"
	EventTicketStatusChanged EventType = "ticket.status_changed"
	EventTicketCommentAdded  EventType = "ticket.comment_added"
	EventBookingSubmitted    EventType = "lead.booking_submitted"
	EventLeadConverted       EventType = "lead.converted"
)

// Event represents a domain event emitted by services after their write
// has committed. SubjectID is the ticket or lead the event is about.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	SubjectID string          `json:"subject_id"`
	ActorID   *string         `json:"actor_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewEvent stamps an event and encodes its payload.
func NewEvent(eventType EventType, subjectID string, actorID *string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   raw,
	}, nil
}

// Decode unmarshals the payload into v.
func (e Event) Decode(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketNumber string                 `json:"ticket_number"`
	Subject      string                 `json:"subject"`
	Description  string                 `json:"description"`
	Priority     domain.TicketPriority  `json:"priority"`
	Category     *domain.TicketCategory `json:"category,omitempty"`
	ClientID     *string                `json:"client_id,omitempty"`
	CreatedBy    string                 `json:"created_by"`
	SLADeadline  time.Time              `json:"sla_deadline"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	TicketNumber string              `json:"ticket_number"`
	Subject      string              `json:"subject"`
	OldStatus    domain.TicketStatus `json:"old_status"`
	NewStatus    domain.TicketStatus `json:"new_status"`
	CreatedBy    string              `json:"created_by"`
}

// TicketCommentAddedPayload payload. Only public comments are published.
type TicketCommentAddedPayload struct {
	TicketNumber string `json:"ticket_number"`
	Subject      string `json:"subject"`
	CommentID    string `json:"comment_id"`
	Content      string `json:"content"`
	AuthorID     string `json:"author_id"`
	CreatedBy    string `json:"created_by"`
}

// BookingSubmittedPayload payload.
type BookingSubmittedPayload struct {
	ContactName        string          `json:"contact_name"`
	CompanyName        string          `json:"company_name"`
	Email              string          `json:"email"`
	Score              int             `json:"score"`
	Tier               domain.LeadTier `json:"tier"`
	MeetsIdealCriteria bool            `json:"meets_ideal_criteria"`
	ScheduledAt        *time.Time      `json:"scheduled_at,omitempty"`
}

// LeadConvertedPayload payload.
type LeadConvertedPayload struct {
	ClientID    string `json:"client_id"`
	CompanyName string `json:"company_name"`
}

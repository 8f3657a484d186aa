package dto

import (
	"time"

	"github.com/continu8/backoffice/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject     string                 `json:"subject" validate:"required,min=5,max=200"`
	Description string                 `json:"description" validate:"required,min=20"`
	Priority    domain.TicketPriority  `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Category    *domain.TicketCategory `json:"category" validate:"omitempty,oneof=technical billing general feature_request"`
	ClientID    *string                `json:"client_id" validate:"omitempty,uuid"`
}

// UpdateTicketRequest payload. Every field is optional; assigned_to may be
// null to unassign.
type UpdateTicketRequest struct {
	Subject     *string                `json:"subject" validate:"omitempty,min=5,max=200"`
	Description *string                `json:"description" validate:"omitempty,min=20"`
	Status      *domain.TicketStatus   `json:"status" validate:"omitempty,oneof=open in_progress waiting_client resolved closed"`
	Priority    *domain.TicketPriority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	AssignedTo  OptionalString         `json:"assigned_to" validate:"omitempty,uuid"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content    string `json:"content" validate:"required,min=1"`
	IsInternal bool   `json:"is_internal"`
}

// TicketListQuery captures list filters. "all" or empty means no filter.
type TicketListQuery struct {
	Status     string `query:"status" validate:"omitempty,oneof=all open in_progress waiting_client resolved closed"`
	Priority   string `query:"priority" validate:"omitempty,oneof=all low medium high urgent"`
	AssignedTo string `query:"assigned_to" validate:"omitempty,uuid"`
	ClientID   string `query:"client_id" validate:"omitempty,uuid"`
	Search     string `query:"search" validate:"omitempty,max=100"`
	Page       int    `query:"page" validate:"omitempty,min=1"`
	PageSize   int    `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// TicketResponse is the list and header view of a ticket.
type TicketResponse struct {
	ID           string                 `json:"id"`
	TicketNumber string                 `json:"ticket_number"`
	Subject      string                 `json:"subject"`
	Description  string                 `json:"description"`
	Priority     domain.TicketPriority  `json:"priority"`
	Category     *domain.TicketCategory `json:"category"`
	Status       domain.TicketStatus    `json:"status"`
	SLADeadline  time.Time              `json:"sla_deadline"`
	SLADue       string                 `json:"sla_due"`
	IsOverdue    bool                   `json:"is_overdue"`
	ClientID     *string                `json:"client_id"`
	CreatedBy    string                 `json:"created_by"`
	AssignedTo   *string                `json:"assigned_to"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// TicketDetailResponse adds the thread and files to a ticket.
type TicketDetailResponse struct {
	TicketResponse
	Comments    []CommentResponse    `json:"comments"`
	Attachments []AttachmentResponse `json:"attachments"`
}

// CommentResponse represents a thread comment.
type CommentResponse struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticket_id"`
	Content    string    `json:"content"`
	AuthorID   string    `json:"author_id"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}

// AttachmentResponse describes an uploaded file.
type AttachmentResponse struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticket_id"`
	FileName   string    `json:"file_name"`
	FileURL    string    `json:"file_url"`
	FileSize   int64     `json:"file_size"`
	FileType   string    `json:"file_type"`
	UploadedBy string    `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

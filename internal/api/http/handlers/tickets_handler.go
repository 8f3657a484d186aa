package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/xeonx/timeago"

	"github.com/continu8/backoffice/internal/api/dto"
	"github.com/continu8/backoffice/internal/domain"
	"github.com/continu8/backoffice/internal/service"
	"github.com/continu8/backoffice/internal/validation"
	apperrors "github.com/continu8/backoffice/pkg/util"
)

// TicketsHandler manages ticket endpoints for clients and staff.
type TicketsHandler struct {
	service  *service.TicketService
	validate *validation.Validator
	now      func() time.Time
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, validate *validation.Validator) *TicketsHandler {
	return &TicketsHandler{service: ticketService, validate: validate, now: time.Now}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := bindBody(c, h.validate, &req); err != nil {
		return err
	}
	ticket, err := h.service.Create(c.UserContext(), actor, service.TicketCreateInput{
		Subject:     req.Subject,
		Description: req.Description,
		Priority:    req.Priority,
		Category:    req.Category,
		ClientID:    req.ClientID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": h.ticketResponse(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var query dto.TicketListQuery
	if err := bindQuery(c, h.validate, &query); err != nil {
		return err
	}
	limit, offset := page(query.Page, query.PageSize)
	filter := service.TicketListFilter{
		AssignedTo: filterValue(query.AssignedTo),
		ClientID:   filterValue(query.ClientID),
		Search:     filterValue(query.Search),
		Limit:      limit,
		Offset:     offset,
	}
	if status := filterValue(query.Status); status != nil {
		s := domain.TicketStatus(*status)
		filter.Status = &s
	}
	if priority := filterValue(query.Priority); priority != nil {
		p := domain.TicketPriority(*priority)
		filter.Priority = &p
	}
	tickets, err := h.service.List(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.ticketResponses(tickets)})
}

// MyTickets GET /tickets/mine.
func (h *TicketsHandler) MyTickets(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	limit, offset := page(parseInt(c.Query("page"), 1), parseInt(c.Query("page_size"), defaultPageSize))
	tickets, err := h.service.Mine(c.UserContext(), actor, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.ticketResponses(tickets)})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	detail, err := h.service.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	resp := dto.TicketDetailResponse{
		TicketResponse: h.ticketResponse(detail.Ticket),
		Comments:       make([]dto.CommentResponse, 0, len(detail.Comments)),
		Attachments:    make([]dto.AttachmentResponse, 0, len(detail.Attachments)),
	}
	for i := range detail.Comments {
		resp.Comments = append(resp.Comments, commentResponse(&detail.Comments[i]))
	}
	for i := range detail.Attachments {
		resp.Attachments = append(resp.Attachments, attachmentResponse(&detail.Attachments[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// UpdateTicket PATCH /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := bindBody(c, h.validate, &req); err != nil {
		return err
	}
	input := service.TicketUpdateInput{
		Subject:     req.Subject,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	}
	if req.AssignedTo.Set {
		if req.AssignedTo.Value == nil {
			input.Unassign = true
		} else {
			input.AssignedTo = req.AssignedTo.Value
		}
	}
	ticket, err := h.service.Update(c.UserContext(), actor, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.ticketResponse(ticket)})
}

// AddComment POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := bindBody(c, h.validate, &req); err != nil {
		return err
	}
	comment, err := h.service.AddComment(c.UserContext(), actor, c.Params("id"), req.Content, req.IsInternal)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

// UploadAttachment POST /tickets/:id/attachments (multipart field "file").
func (h *TicketsHandler) UploadAttachment(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	header, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("file is required", map[string]any{"fields": map[string]string{"file": "is required"}})
	}
	file, err := header.Open()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	defer file.Close()

	attachment, err := h.service.UploadAttachment(c.UserContext(), actor, c.Params("id"), service.AttachmentUpload{
		FileName:    header.Filename,
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": attachmentResponse(attachment)})
}

func (h *TicketsHandler) ticketResponses(tickets []domain.Ticket) []dto.TicketResponse {
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, h.ticketResponse(&tickets[i]))
	}
	return items
}

func (h *TicketsHandler) ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	now := h.now()
	return dto.TicketResponse{
		ID:           ticket.ID,
		TicketNumber: ticket.TicketNumber,
		Subject:      ticket.Subject,
		Description:  ticket.Description,
		Priority:     ticket.Priority,
		Category:     ticket.Category,
		Status:       ticket.Status,
		SLADeadline:  ticket.SLADeadline,
		SLADue:       timeago.English.FormatReference(ticket.SLADeadline, now),
		IsOverdue:    ticket.IsOverdue(now),
		ClientID:     ticket.ClientID,
		CreatedBy:    ticket.CreatedBy,
		AssignedTo:   ticket.AssignedTo,
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
	}
}

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:         comment.ID,
		TicketID:   comment.TicketID,
		Content:    comment.Content,
		AuthorID:   comment.AuthorID,
		IsInternal: comment.IsInternal,
		CreatedAt:  comment.CreatedAt,
	}
}

func attachmentResponse(att *domain.Attachment) dto.AttachmentResponse {
	return dto.AttachmentResponse{
		ID:         att.ID,
		TicketID:   att.TicketID,
		FileName:   att.FileName,
		FileURL:    att.FileURL,
		FileSize:   att.FileSize,
		FileType:   att.FileType,
		UploadedBy: att.UploadedBy,
		CreatedAt:  att.CreatedAt,
	}
}

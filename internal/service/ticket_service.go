package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/continu8/backoffice/internal/domain"
	"github.com/continu8/backoffice/internal/events"
	"github.com/continu8/backoffice/internal/observability"
	"github.com/continu8/backoffice/internal/repository"
	"github.com/continu8/backoffice/internal/storage"
	"github.com/continu8/backoffice/internal/ticketing"
	apperrors "github.com/continu8/backoffice/pkg/util"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets     repository.TicketRepository
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository
	activities  repository.ActivityRepository
	contacts    repository.ContactRepository
	numbers     ticketing.NumberAllocator
	store       storage.ObjectStore
	publisher   events.Publisher
	metrics     *observability.Metrics
	logger      *zap.Logger
	maxUpload   int64
	now         func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	CommentRepo    repository.CommentRepository
	AttachmentRepo repository.AttachmentRepository
	ActivityRepo   repository.ActivityRepository
	ContactRepo    repository.ContactRepository
	Numbers        ticketing.NumberAllocator
	Store          storage.ObjectStore
	Publisher      events.Publisher
	Metrics        *observability.Metrics
	Logger         *zap.Logger
	MaxUploadBytes int64
	Clock          func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Subject     string
	Description string
	Priority    domain.TicketPriority
	Category    *domain.TicketCategory
	ClientID    *string
}

// TicketUpdateInput carries a partial update. Nil fields are left alone.
// Unassign clears the assignee when set.
type TicketUpdateInput struct {
	Subject     *string
	Description *string
	Status      *domain.TicketStatus
	Priority    *domain.TicketPriority
	AssignedTo  *string
	Unassign    bool
}

// TicketListFilter describes list filters. Nil fields do not filter.
type TicketListFilter struct {
	Status     *domain.TicketStatus
	Priority   *domain.TicketPriority
	AssignedTo *string
	ClientID   *string
	Search     *string
	Limit      int
	Offset     int
}

// TicketDetail is a ticket with the thread its viewer may see.
type TicketDetail struct {
	Ticket      *domain.Ticket
	Comments    []domain.Comment
	Attachments []domain.Attachment
}

// AttachmentUpload describes a file being attached to a ticket.
type AttachmentUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	maxUpload := deps.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	return &TicketService{
		tickets:     deps.TicketRepo,
		comments:    deps.CommentRepo,
		attachments: deps.AttachmentRepo,
		activities:  deps.ActivityRepo,
		contacts:    deps.ContactRepo,
		numbers:     deps.Numbers,
		store:       deps.Store,
		publisher:   deps.Publisher,
		metrics:     deps.Metrics,
		logger:      logger,
		maxUpload:   maxUpload,
		now:         clock,
	}
}

// Create opens a ticket. Client creators have client_id forced from their
// contact record; the SLA deadline is fixed from the creation time.
func (s *TicketService) Create(ctx context.Context, actor Actor, input TicketCreateInput) (*domain.Ticket, error) {
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !ticketing.ValidPriority(priority) {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}

	clientID := input.ClientID
	if actor.Role == domain.RoleClient {
		contact, err := s.clientContact(ctx, actor)
		if err != nil {
			return nil, err
		}
		clientID = nil
		if contact != nil {
			clientID = strPtr(contact.ClientID)
		}
	}

	subject := strings.TrimSpace(input.Subject)
	description := strings.TrimSpace(input.Description)
	if err := checkTicketText(&subject, &description); err != nil {
		return nil, err
	}

	number, err := s.numbers.Next(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	now := s.now().UTC()
	ticket := &domain.Ticket{
		TicketNumber: number,
		Subject:      subject,
		Description:  description,
		Priority:     priority,
		Category:     input.Category,
		Status:       domain.TicketStatusOpen,
		SLADeadline:  ticketing.SLADeadline(now, priority),
		ClientID:     clientID,
		CreatedBy:    actor.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.metrics.TicketCreated(ticket.Priority)

	publishEvent(ctx, s.publisher, s.logger, events.EventTicketCreated, ticket.ID, actor.ref(), events.TicketCreatedPayload{
		TicketNumber: ticket.TicketNumber,
		Subject:      ticket.Subject,
		Description:  ticket.Description,
		Priority:     ticket.Priority,
		Category:     ticket.Category,
		ClientID:     ticket.ClientID,
		CreatedBy:    ticket.CreatedBy,
		SLADeadline:  ticket.SLADeadline,
	})
	return ticket, nil
}

// Update applies a partial edit. Clients may only change the subject and
// description of tickets they can see; status, priority and assignee are
// staff fields. A priority edit never moves the SLA deadline. Every status
// write is logged and announced, even one that repeats the current status.
func (s *TicketService) Update(ctx context.Context, actor Actor, ticketID string, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.loadVisible(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}

	if !actor.IsStaff() && (input.Priority != nil || input.AssignedTo != nil || input.Unassign) {
		return nil, apperrors.NewForbidden("only staff can change priority or assignee")
	}

	oldStatus := ticket.Status
	if input.Status != nil {
		if err := ticketing.CheckTransition(actor.Role, ticket.Status, *input.Status); err != nil {
			return nil, transitionError(err)
		}
		ticket.Status = *input.Status
	}
	var subject, description *string
	if input.Subject != nil {
		subject = strPtr(strings.TrimSpace(*input.Subject))
	}
	if input.Description != nil {
		description = strPtr(strings.TrimSpace(*input.Description))
	}
	if err := checkTicketText(subject, description); err != nil {
		return nil, err
	}
	if subject != nil {
		ticket.Subject = *subject
	}
	if description != nil {
		ticket.Description = *description
	}
	if input.Priority != nil {
		if !ticketing.ValidPriority(*input.Priority) {
			return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": *input.Priority})
		}
		ticket.Priority = *input.Priority
	}
	switch {
	case input.Unassign:
		ticket.AssignedTo = nil
	case input.AssignedTo != nil:
		ticket.AssignedTo = input.AssignedTo
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.NotFoundOr(err, "ticket", map[string]any{"id": ticketID})
	}

	if input.Status != nil {
		s.recordStatusChange(ctx, actor, ticket)
		publishEvent(ctx, s.publisher, s.logger, events.EventTicketStatusChanged, ticket.ID, actor.ref(), events.TicketStatusChangedPayload{
			TicketNumber: ticket.TicketNumber,
			Subject:      ticket.Subject,
			OldStatus:    oldStatus,
			NewStatus:    ticket.Status,
			CreatedBy:    ticket.CreatedBy,
		})
	}
	return ticket, nil
}

// Get returns a ticket with the comments the actor may see and its files.
func (s *TicketService) Get(ctx context.Context, actor Actor, ticketID string) (*TicketDetail, error) {
	ticket, err := s.loadVisible(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	attachments, err := s.attachments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &TicketDetail{
		Ticket:      ticket,
		Comments:    ticketing.VisibleComments(comments, actor.Role),
		Attachments: attachments,
	}, nil
}

// List returns tickets matching filter. Client listings are always scoped
// to what the client can see.
func (s *TicketService) List(ctx context.Context, actor Actor, filter TicketListFilter) ([]domain.Ticket, error) {
	limit, offset := pageBounds(filter.Limit, filter.Offset)
	repoFilter := repository.TicketFilter{
		Status:     filter.Status,
		Priority:   filter.Priority,
		AssignedTo: filter.AssignedTo,
		ClientID:   filter.ClientID,
		Search:     filter.Search,
		Limit:      limit,
		Offset:     offset,
	}
	if !actor.IsStaff() {
		contact, err := s.clientContact(ctx, actor)
		if err != nil {
			return nil, err
		}
		requester := &repository.TicketRequester{ProfileID: actor.ID}
		if contact != nil {
			requester.ClientID = strPtr(contact.ClientID)
		}
		repoFilter.Requester = requester
	}
	tickets, err := s.tickets.List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// Mine lists the tickets of the caller's client company.
func (s *TicketService) Mine(ctx context.Context, actor Actor, limit, offset int) ([]domain.Ticket, error) {
	contact, err := s.clientContact(ctx, actor)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, apperrors.NewNotFound("client association", nil)
	}
	limit, offset = pageBounds(limit, offset)
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{
		ClientID: strPtr(contact.ClientID),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// AddComment appends to the thread. Clients cannot post internal notes; a
// public comment notifies the ticket creator.
func (s *TicketService) AddComment(ctx context.Context, actor Actor, ticketID, content string, internal bool) (*domain.Comment, error) {
	ticket, err := s.loadVisible(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("comment content is required", map[string]any{"fields": map[string]string{"content": "is required"}})
	}

	comment := &domain.Comment{
		TicketID:   ticket.ID,
		Content:    content,
		AuthorID:   actor.ID,
		IsInternal: ticketing.EffectiveInternal(internal, actor.Role),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.tickets.Touch(ctx, ticket.ID); err != nil {
		s.logger.Warn("touch ticket failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
	}

	if ticketing.NotifiesCreator(*comment) {
		publishEvent(ctx, s.publisher, s.logger, events.EventTicketCommentAdded, ticket.ID, actor.ref(), events.TicketCommentAddedPayload{
			TicketNumber: ticket.TicketNumber,
			Subject:      ticket.Subject,
			CommentID:    comment.ID,
			Content:      comment.Content,
			AuthorID:     comment.AuthorID,
			CreatedBy:    ticket.CreatedBy,
		})
	}
	return comment, nil
}

// UploadAttachment stores a file and records it on the ticket. The size
// limit is checked before anything is written; if the metadata insert
// fails the stored object is removed again.
func (s *TicketService) UploadAttachment(ctx context.Context, actor Actor, ticketID string, upload AttachmentUpload) (*domain.Attachment, error) {
	if upload.Size > s.maxUpload {
		return nil, apperrors.NewPayloadTooLarge("file exceeds upload limit", map[string]any{
			"max_bytes": s.maxUpload,
			"size":      upload.Size,
		})
	}
	if upload.Size <= 0 || upload.Body == nil {
		return nil, apperrors.NewValidationError("file is required", map[string]any{"fields": map[string]string{"file": "is required"}})
	}
	ticket, err := s.loadVisible(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}

	key := storage.AttachmentKey(ticket.ID, upload.FileName, s.now())
	if err := s.store.Put(ctx, key, io.LimitReader(upload.Body, s.maxUpload)); err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("store attachment: %w", err))
	}

	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	attachment := &domain.Attachment{
		TicketID:   ticket.ID,
		FileName:   upload.FileName,
		FilePath:   key,
		FileURL:    s.store.PublicURL(key),
		FileSize:   upload.Size,
		FileType:   contentType,
		UploadedBy: actor.ID,
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		if rmErr := s.store.Remove(ctx, key); rmErr != nil {
			s.logger.Error("remove orphaned attachment failed", zap.String("key", key), zap.Error(rmErr))
		}
		return nil, apperrors.MapError(err)
	}
	return attachment, nil
}

// loadVisible fetches a ticket and hides it from clients who neither
// created it nor belong to its client company.
func (s *TicketService) loadVisible(ctx context.Context, actor Actor, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "ticket", map[string]any{"id": ticketID})
	}
	if actor.IsStaff() || ticket.CreatedBy == actor.ID {
		return ticket, nil
	}
	contact, err := s.clientContact(ctx, actor)
	if err != nil {
		return nil, err
	}
	if contact != nil && ticket.ClientID != nil && *ticket.ClientID == contact.ClientID {
		return ticket, nil
	}
	return nil, apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
}

// clientContact returns the caller's contact record, or nil when the
// profile is not linked to a client.
func (s *TicketService) clientContact(ctx context.Context, actor Actor) (*domain.Contact, error) {
	contact, err := s.contacts.GetByProfileID(ctx, actor.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return contact, nil
}

func (s *TicketService) recordStatusChange(ctx context.Context, actor Actor, ticket *domain.Ticket) {
	entry := &domain.Activity{
		Type:        domain.ActivityTicketStatusChanged,
		Title:       fmt.Sprintf("Ticket status changed to %s", ticket.Status),
		Description: strPtr(fmt.Sprintf("Ticket #%s status changed", ticket.TicketNumber)),
		ClientID:    ticket.ClientID,
		TicketID:    strPtr(ticket.ID),
		UserID:      actor.ref(),
	}
	if err := s.activities.Create(ctx, entry); err != nil {
		s.logger.Warn("record ticket activity failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
	}
}

const (
	subjectMinLen     = 5
	subjectMaxLen     = 200
	descriptionMinLen = 20
)

// checkTicketText applies the length rules to already trimmed text. Nil
// fields are not being set.
func checkTicketText(subject, description *string) error {
	fields := map[string]string{}
	if subject != nil {
		switch n := utf8.RuneCountInString(*subject); {
		case n < subjectMinLen:
			fields["subject"] = fmt.Sprintf("must be at least %d characters", subjectMinLen)
		case n > subjectMaxLen:
			fields["subject"] = fmt.Sprintf("must be at most %d characters", subjectMaxLen)
		}
	}
	if description != nil && utf8.RuneCountInString(*description) < descriptionMinLen {
		fields["description"] = fmt.Sprintf("must be at least %d characters", descriptionMinLen)
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError("validation failed", map[string]any{"fields": fields})
	}
	return nil
}

func transitionError(err error) error {
	switch {
	case errors.Is(err, ticketing.ErrStatusForbidden):
		return apperrors.NewForbidden(err.Error())
	case errors.Is(err, ticketing.ErrUnknownStatus):
		return apperrors.NewValidationError(err.Error(), nil)
	default:
		return apperrors.MapError(err)
	}
}

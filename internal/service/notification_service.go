package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/continu8/backoffice/internal/config"
	"github.com/continu8/backoffice/internal/domain"
	"github.com/continu8/backoffice/internal/events"
	"github.com/continu8/backoffice/internal/notify"
	"github.com/continu8/backoffice/internal/observability"
	"github.com/continu8/backoffice/internal/repository"
)

const (
	channelEmail = "email"
	channelSlack = "slack"
)

// NotificationService turns domain events into emails and team chat
// messages. Delivery failures are logged and counted; they never fail the
// event.
type NotificationService struct {
	dispatcher events.Dispatcher
	profiles   repository.ProfileRepository
	email      notify.EmailSender
	chat       notify.ChatNotifier
	renderer   *notify.Renderer
	metrics    *observability.Metrics
	logger     *zap.Logger
	cfg        config.NotificationConfig
	appURL     string
}

// NotificationDependencies bundles collaborators for notifications.
type NotificationDependencies struct {
	Dispatcher  events.Dispatcher
	ProfileRepo repository.ProfileRepository
	Email       notify.EmailSender
	Chat        notify.ChatNotifier
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	Config      config.NotificationConfig
	AppURL      string
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: deps.Dispatcher,
		profiles:   deps.ProfileRepo,
		email:      deps.Email,
		chat:       deps.Chat,
		renderer:   notify.NewRenderer(),
		metrics:    deps.Metrics,
		logger:     logger,
		cfg:        deps.Config,
		appURL:     strings.TrimRight(deps.AppURL, "/"),
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketCommentAdded, n.handleTicketCommentAdded)
	n.dispatcher.Subscribe(events.EventBookingSubmitted, n.handleBookingSubmitted)
	n.dispatcher.Subscribe(events.EventLeadConverted, n.handleLeadConverted)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	var payload events.TicketCreatedPayload
	if err := event.Decode(&payload); err != nil {
		return err
	}
	n.logger.Info("TicketCreated", zap.String("ticket_id", event.SubjectID), zap.String("ticket_number", payload.TicketNumber))

	creator := n.profile(ctx, payload.CreatedBy)
	category := "general"
	if payload.Category != nil {
		category = string(*payload.Category)
	}
	data := notify.TicketCreatedData{
		TicketNumber: payload.TicketNumber,
		Subject:      payload.Subject,
		Description:  payload.Description,
		Priority:     string(payload.Priority),
		Category:     category,
		CreatedBy:    "Unknown",
		SLADeadline:  payload.SLADeadline.UTC().Format(time.RFC1123),
	}
	if creator != nil {
		data.CreatedBy = displayName(creator)
		if creator.Email != "" {
			client := data
			client.RecipientName = displayName(creator)
			client.TicketURL = n.portalTicketURL(event.SubjectID)
			n.sendEmail(ctx, event.Type, creator.Email,
				fmt.Sprintf("Support Ticket Created - %s", payload.TicketNumber),
				notify.TemplateTicketCreatedClient, client)
		}
	}

	if n.cfg.TeamEmail != "" {
		team := data
		team.TicketURL = n.dashboardTicketURL(event.SubjectID)
		n.sendEmail(ctx, event.Type, n.cfg.TeamEmail,
			fmt.Sprintf("New Support Ticket: %s [%s]", payload.Subject, payload.TicketNumber),
			notify.TemplateTicketCreatedTeam, team)
	}

	n.sendChat(ctx, event.Type, fmt.Sprintf("New %s priority ticket %s: %s\n%s",
		payload.Priority, payload.TicketNumber, payload.Subject, n.dashboardTicketURL(event.SubjectID)))
	return nil
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	var payload events.TicketStatusChangedPayload
	if err := event.Decode(&payload); err != nil {
		return err
	}
	n.logger.Info("TicketStatusChanged",
		zap.String("ticket_id", event.SubjectID),
		zap.String("old_status", string(payload.OldStatus)),
		zap.String("new_status", string(payload.NewStatus)))

	creator := n.profile(ctx, payload.CreatedBy)
	if creator == nil || creator.Email == "" {
		return nil
	}
	n.sendEmail(ctx, event.Type, creator.Email,
		fmt.Sprintf("Ticket %s Status Updated", payload.TicketNumber),
		notify.TemplateTicketStatus, notify.TicketStatusData{
			RecipientName: displayName(creator),
			TicketNumber:  payload.TicketNumber,
			Subject:       payload.Subject,
			NewStatus:     string(payload.NewStatus),
			TicketURL:     n.portalTicketURL(event.SubjectID),
		})
	return nil
}

func (n *NotificationService) handleTicketCommentAdded(ctx context.Context, event events.Event) error {
	var payload events.TicketCommentAddedPayload
	if err := event.Decode(&payload); err != nil {
		return err
	}
	n.logger.Info("TicketCommentAdded", zap.String("ticket_id", event.SubjectID), zap.String("comment_id", payload.CommentID))

	creator := n.profile(ctx, payload.CreatedBy)
	if creator == nil || creator.Email == "" {
		return nil
	}
	author := "Support Team"
	if p := n.profile(ctx, payload.AuthorID); p != nil && p.FullName != "" {
		author = p.FullName
	}
	n.sendEmail(ctx, event.Type, creator.Email,
		fmt.Sprintf("New Comment on Ticket %s", payload.TicketNumber),
		notify.TemplateTicketComment, notify.TicketCommentData{
			RecipientName: displayName(creator),
			TicketNumber:  payload.TicketNumber,
			Subject:       payload.Subject,
			Author:        author,
			Content:       payload.Content,
			TicketURL:     n.portalTicketURL(event.SubjectID),
		})
	return nil
}

func (n *NotificationService) handleBookingSubmitted(ctx context.Context, event events.Event) error {
	var payload events.BookingSubmittedPayload
	if err := event.Decode(&payload); err != nil {
		return err
	}
	n.logger.Info("BookingSubmitted",
		zap.String("lead_id", event.SubjectID),
		zap.Int("score", payload.Score),
		zap.String("tier", string(payload.Tier)))

	data := notify.BookingData{
		ContactName:        payload.ContactName,
		CompanyName:        payload.CompanyName,
		Email:              payload.Email,
		Score:              payload.Score,
		Tier:               string(payload.Tier),
		MeetsIdealCriteria: payload.MeetsIdealCriteria,
	}
	if payload.ScheduledAt != nil {
		data.ScheduledAt = payload.ScheduledAt.UTC().Format(time.RFC1123)
	}
	if n.cfg.TeamEmail != "" {
		n.sendEmail(ctx, event.Type, n.cfg.TeamEmail,
			fmt.Sprintf("New Strategy Call Booking: %s [%s]", payload.CompanyName, payload.Tier),
			notify.TemplateBookingTeam, data)
	}
	n.sendChat(ctx, event.Type, fmt.Sprintf("New booking from %s (%s): score %d, %s",
		payload.CompanyName, payload.ContactName, payload.Score, payload.Tier))
	return nil
}

func (n *NotificationService) handleLeadConverted(ctx context.Context, event events.Event) error {
	var payload events.LeadConvertedPayload
	if err := event.Decode(&payload); err != nil {
		return err
	}
	n.logger.Info("LeadConverted", zap.String("lead_id", event.SubjectID), zap.String("client_id", payload.ClientID))
	n.sendChat(ctx, event.Type, fmt.Sprintf("%s is now a client", payload.CompanyName))
	return nil
}

func (n *NotificationService) sendEmail(ctx context.Context, eventType events.EventType, to, subject, template string, data any) {
	if n.email == nil {
		return
	}
	err := n.deliverEmail(ctx, to, subject, template, data)
	n.metrics.NotificationSent(string(eventType), channelEmail, err)
	if err != nil {
		n.logger.Error("send email failed",
			zap.String("event_type", string(eventType)),
			zap.String("subject", subject),
			zap.Error(err))
	}
}

func (n *NotificationService) deliverEmail(ctx context.Context, to, subject, template string, data any) error {
	markdown, err := notify.Markdown(template, data)
	if err != nil {
		return err
	}
	html, err := n.renderer.HTML(markdown)
	if err != nil {
		return err
	}
	return n.email.Send(ctx, notify.EmailMessage{To: []string{to}, Subject: subject, HTML: html})
}

func (n *NotificationService) sendChat(ctx context.Context, eventType events.EventType, text string) {
	if n.chat == nil {
		return
	}
	err := n.chat.Notify(ctx, text)
	n.metrics.NotificationSent(string(eventType), channelSlack, err)
	if err != nil {
		n.logger.Error("send chat message failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}

// profile looks up a recipient; unknown or failing lookups yield nil.
func (n *NotificationService) profile(ctx context.Context, id string) *domain.Profile {
	if n.profiles == nil || id == "" {
		return nil
	}
	p, err := n.profiles.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			n.logger.Warn("load profile failed", zap.String("profile_id", id), zap.Error(err))
		}
		return nil
	}
	return p
}

func (n *NotificationService) portalTicketURL(ticketID string) string {
	return n.appURL + "/portal/tickets/" + ticketID
}

func (n *NotificationService) dashboardTicketURL(ticketID string) string {
	return n.appURL + "/dashboard/tickets/" + ticketID
}

func displayName(p *domain.Profile) string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Email
}

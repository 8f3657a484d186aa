package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/continu8/backoffice/internal/domain"
	"github.com/continu8/backoffice/internal/repository"
	apperrors "github.com/continu8/backoffice/pkg/util"
)

// DiscoverySlots are the start times offered for a discovery call.
var DiscoverySlots = []string{"09:00", "10:00", "11:00", "13:00", "14:00", "15:00", "16:00"}

// LeadStatusUpdater moves a lead through the pipeline.
type LeadStatusUpdater interface {
	UpdateStatus(ctx context.Context, actor Actor, leadID string, status domain.LeadStatus) (*domain.Lead, error)
}

// BookingService manages scheduled discovery calls.
type BookingService struct {
	bookings   repository.BookingRepository
	activities repository.ActivityRepository
	leads      LeadStatusUpdater
	logger     *zap.Logger
}

// BookingDependencies bundles collaborators for the booking service.
type BookingDependencies struct {
	BookingRepo  repository.BookingRepository
	ActivityRepo repository.ActivityRepository
	Leads        LeadStatusUpdater
	Logger       *zap.Logger
}

// NewBookingService constructs the service.
func NewBookingService(deps BookingDependencies) *BookingService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		bookings:   deps.BookingRepo,
		activities: deps.ActivityRepo,
		leads:      deps.Leads,
		logger:     logger,
	}
}

// Slots lists the call start times offered on date (YYYY-MM-DD). Every day
// offers the same fixed list.
func (s *BookingService) Slots(date string) ([]string, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, apperrors.NewValidationError("date must be YYYY-MM-DD", map[string]any{"date": date})
	}
	slots := make([]string, len(DiscoverySlots))
	copy(slots, DiscoverySlots)
	return slots, nil
}

// Cancel marks a booking cancelled, keeping the reason in its notes.
func (s *BookingService) Cancel(ctx context.Context, bookingID string, reason *string) (*domain.Booking, error) {
	booking, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	booking.Status = domain.BookingStatusCancelled
	if reason != nil && strings.TrimSpace(*reason) != "" {
		booking.Notes = strPtr(strings.TrimSpace(*reason))
	}
	return s.save(ctx, booking)
}

// Reschedule moves a booking to a new start time.
func (s *BookingService) Reschedule(ctx context.Context, bookingID string, scheduledAt time.Time) (*domain.Booking, error) {
	if scheduledAt.IsZero() {
		return nil, apperrors.NewValidationError("scheduled_at is required", nil)
	}
	booking, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	booking.ScheduledAt = scheduledAt.UTC()
	return s.save(ctx, booking)
}

// Complete closes a held call: the booking is marked completed, the lead
// moves to contacted and a call activity is logged. A converted lead keeps
// its status; a booking whose lead was deleted only changes itself.
func (s *BookingService) Complete(ctx context.Context, actor Actor, bookingID string, notes *string) (*domain.Booking, error) {
	booking, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	booking.Status = domain.BookingStatusCompleted
	if notes != nil && strings.TrimSpace(*notes) != "" {
		booking.Notes = strPtr(strings.TrimSpace(*notes))
	}
	if _, err := s.save(ctx, booking); err != nil {
		return nil, err
	}

	if booking.LeadID == nil {
		return booking, nil
	}
	leadID := *booking.LeadID

	if _, err := s.leads.UpdateStatus(ctx, actor, leadID, domain.LeadStatusContacted); err != nil {
		if !apperrors.IsCode(err, apperrors.CodeConflict) {
			return nil, err
		}
		s.logger.Info("lead already converted, status kept", zap.String("lead_id", leadID))
	}

	description := "Strategy call completed"
	if notes != nil && strings.TrimSpace(*notes) != "" {
		description = strings.TrimSpace(*notes)
	}
	entry := &domain.Activity{
		Type:        domain.ActivityCall,
		Title:       "Discovery call completed",
		Description: strPtr(description),
		LeadID:      strPtr(leadID),
		UserID:      actor.ref(),
	}
	if err := s.activities.Create(ctx, entry); err != nil {
		s.logger.Warn("record call activity failed", zap.String("booking_id", booking.ID), zap.Error(err))
	}
	return booking, nil
}

func (s *BookingService) load(ctx context.Context, bookingID string) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "booking", map[string]any{"id": bookingID})
	}
	return booking, nil
}

func (s *BookingService) save(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, apperrors.NotFoundOr(err, "booking", map[string]any{"id": booking.ID})
	}
	return booking, nil
}

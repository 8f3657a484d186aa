package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/continu8/backoffice/internal/domain"
	"github.com/continu8/backoffice/internal/events"
	"github.com/continu8/backoffice/internal/leadscore"
	"github.com/continu8/backoffice/internal/observability"
	"github.com/continu8/backoffice/internal/repository"
	apperrors "github.com/continu8/backoffice/pkg/util"
)

// LeadTxRepos are the repositories a lead write uses inside one transaction.
type LeadTxRepos struct {
	Leads      repository.LeadRepository
	Clients    repository.ClientRepository
	Contacts   repository.ContactRepository
	Activities repository.ActivityRepository
}

// NewLeadTxRepos binds the postgres repositories to db.
func NewLeadTxRepos(db repository.DBTX) LeadTxRepos {
	return LeadTxRepos{
		Leads:      repository.NewLeadRepository(db),
		Clients:    repository.NewClientRepository(db),
		Contacts:   repository.NewContactRepository(db),
		Activities: repository.NewActivityRepository(db),
	}
}

// LeadService runs the intake, pipeline and conversion workflows.
type LeadService struct {
	leads      repository.LeadRepository
	activities repository.ActivityRepository
	bookings   repository.BookingRepository
	uow        repository.UnitOfWork
	txRepos    func(repository.DBTX) LeadTxRepos
	publisher  events.Publisher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// LeadDependencies bundles collaborators for the lead service.
type LeadDependencies struct {
	LeadRepo     repository.LeadRepository
	ActivityRepo repository.ActivityRepository
	BookingRepo  repository.BookingRepository
	UnitOfWork   repository.UnitOfWork
	TxRepos      func(repository.DBTX) LeadTxRepos
	Publisher    events.Publisher
	Metrics      *observability.Metrics
	Logger       *zap.Logger
	Clock        func() time.Time
}

// IntakeInput is a submitted strategy-call form.
type IntakeInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	JobTitle  string

	CompanyName   string
	Website       string
	Industry      string
	AnnualRevenue domain.RevenueRange
	EmployeeCount string

	PrimaryChallenge  string
	OtherChallenge    string
	PainPoints        string
	DesiredOutcomes   string
	Timeline          domain.Timeline
	MonthlyBudget     domain.BudgetRange
	DecisionAuthority domain.DecisionAuthority
	DecisionTimeframe domain.DecisionTimeframe
	CurrentSolutions  string

	PreferredDate   string
	PreferredTime   string
	Timezone        string
	AdditionalNotes string
}

// IntakeResult reports the stored lead and its qualification.
type IntakeResult struct {
	Lead    *domain.Lead
	Result  leadscore.Result
	Booking *domain.Booking
}

// ManualLeadInput is a lead typed in by staff.
type ManualLeadInput struct {
	CompanyName       string
	ContactName       string
	ContactEmail      string
	ContactPhone      *string
	AnnualRevenue     *domain.RevenueRange
	EmployeeCount     *string
	PrimaryChallenge  *string
	MonthlyBudget     *domain.BudgetRange
	DecisionAuthority *domain.DecisionAuthority
	Source            string
}

// LeadListFilter describes pipeline filters.
type LeadListFilter struct {
	Status     *domain.LeadStatus
	AssignedTo *string
	Search     *string
	Limit      int
	Offset     int
}

// LeadDetail is a lead with its activity timeline.
type LeadDetail struct {
	Lead       *domain.Lead
	Activities []domain.Activity
}

// NewLeadService constructs the service.
func NewLeadService(deps LeadDependencies) *LeadService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	txRepos := deps.TxRepos
	if txRepos == nil {
		txRepos = NewLeadTxRepos
	}
	return &LeadService{
		leads:      deps.LeadRepo,
		activities: deps.ActivityRepo,
		bookings:   deps.BookingRepo,
		uow:        deps.UnitOfWork,
		txRepos:    txRepos,
		publisher:  deps.Publisher,
		metrics:    deps.Metrics,
		logger:     logger,
		now:        clock,
	}
}

// SubmitBooking scores an intake form, stores the lead and, when a date and
// time were picked, schedules the discovery call. A failed booking insert is
// logged and does not fail the submission.
func (s *LeadService) SubmitBooking(ctx context.Context, input IntakeInput) (*IntakeResult, error) {
	result := leadscore.Evaluate(leadscore.Answers{
		AnnualRevenue:     input.AnnualRevenue,
		MonthlyBudget:     input.MonthlyBudget,
		DecisionAuthority: input.DecisionAuthority,
		Timeline:          input.Timeline,
		DecisionTimeframe: input.DecisionTimeframe,
	})

	tier := result.Tier
	lead := &domain.Lead{
		FirstName:          strings.TrimSpace(input.FirstName),
		LastName:           strings.TrimSpace(input.LastName),
		Email:              strings.TrimSpace(input.Email),
		Phone:              optional(strings.TrimSpace(input.Phone)),
		JobTitle:           optional(strings.TrimSpace(input.JobTitle)),
		CompanyName:        strings.TrimSpace(input.CompanyName),
		Website:            optional(strings.TrimSpace(input.Website)),
		Industry:           optional(strings.TrimSpace(input.Industry)),
		AnnualRevenue:      &input.AnnualRevenue,
		EmployeeCount:      optional(input.EmployeeCount),
		PrimaryChallenge:   optional(input.PrimaryChallenge),
		OtherChallenge:     optional(strings.TrimSpace(input.OtherChallenge)),
		PainPoints:         optional(strings.TrimSpace(input.PainPoints)),
		DesiredOutcomes:    optional(strings.TrimSpace(input.DesiredOutcomes)),
		Timeline:           &input.Timeline,
		MonthlyBudget:      &input.MonthlyBudget,
		DecisionAuthority:  &input.DecisionAuthority,
		DecisionTimeframe:  &input.DecisionTimeframe,
		CurrentSolutions:   optional(strings.TrimSpace(input.CurrentSolutions)),
		Source:             domain.LeadSourceWebsiteBooking,
		LeadScore:          result.Score,
		Tier:               &tier,
		Status:             domain.LeadStatusNew,
		MeetsIdealCriteria: result.MeetsIdealCriteria,
		QualificationNotes: optional(result.QualificationNotes),
	}
	lead.ContactName = strings.TrimSpace(lead.FirstName + " " + lead.LastName)

	if err := s.leads.Create(ctx, lead); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.metrics.LeadScored(result.Score, result.Tier)

	out := &IntakeResult{Lead: lead, Result: result}
	if input.PreferredDate != "" && input.PreferredTime != "" {
		booking, err := s.scheduleCall(ctx, lead.ID, input)
		if err != nil {
			s.logger.Error("create booking failed", zap.String("lead_id", lead.ID), zap.Error(err))
		} else {
			out.Booking = booking
		}
	}

	entry := &domain.Activity{
		Type:        domain.ActivityBookingSubmitted,
		Title:       "Strategy call booking submitted",
		Description: strPtr(fmt.Sprintf("Lead score: %d (%s)", result.Score, result.Tier)),
		LeadID:      strPtr(lead.ID),
	}
	if err := s.activities.Create(ctx, entry); err != nil {
		s.logger.Warn("record booking activity failed", zap.String("lead_id", lead.ID), zap.Error(err))
	}

	payload := events.BookingSubmittedPayload{
		ContactName:        lead.ContactName,
		CompanyName:        lead.CompanyName,
		Email:              lead.Email,
		Score:              result.Score,
		Tier:               result.Tier,
		MeetsIdealCriteria: result.MeetsIdealCriteria,
	}
	if out.Booking != nil {
		payload.ScheduledAt = &out.Booking.ScheduledAt
	}
	publishEvent(ctx, s.publisher, s.logger, events.EventBookingSubmitted, lead.ID, nil, payload)
	return out, nil
}

func (s *LeadService) scheduleCall(ctx context.Context, leadID string, input IntakeInput) (*domain.Booking, error) {
	timezone := input.Timezone
	if timezone == "" {
		timezone = domain.DefaultBookingTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	scheduledAt, err := time.ParseInLocation("2006-01-02 15:04", input.PreferredDate+" "+input.PreferredTime, loc)
	if err != nil {
		return nil, fmt.Errorf("parse preferred slot: %w", err)
	}
	booking := &domain.Booking{
		LeadID:      strPtr(leadID),
		ScheduledAt: scheduledAt.UTC(),
		Duration:    domain.DefaultBookingMinutes,
		MeetingType: domain.MeetingTypeDiscoveryCall,
		Status:      domain.BookingStatusScheduled,
		Timezone:    timezone,
		Notes:       optional(strings.TrimSpace(input.AdditionalNotes)),
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// CreateManual stores a lead entered by staff. Manual leads are not scored
// and are assumed to meet the ideal criteria.
func (s *LeadService) CreateManual(ctx context.Context, actor Actor, input ManualLeadInput) (*domain.Lead, error) {
	source := strings.TrimSpace(input.Source)
	if source == "" {
		source = domain.LeadSourceDirect
	}
	contactName := strings.TrimSpace(input.ContactName)
	first, last, _ := strings.Cut(contactName, " ")
	lead := &domain.Lead{
		FirstName:          first,
		LastName:           strings.TrimSpace(last),
		ContactName:        contactName,
		Email:              strings.TrimSpace(input.ContactEmail),
		Phone:              input.ContactPhone,
		CompanyName:        strings.TrimSpace(input.CompanyName),
		AnnualRevenue:      input.AnnualRevenue,
		EmployeeCount:      input.EmployeeCount,
		PrimaryChallenge:   input.PrimaryChallenge,
		MonthlyBudget:      input.MonthlyBudget,
		DecisionAuthority:  input.DecisionAuthority,
		Source:             source,
		Status:             domain.LeadStatusNew,
		MeetsIdealCriteria: true,
	}
	if err := s.leads.Create(ctx, lead); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("lead created", zap.String("lead_id", lead.ID), zap.String("actor_id", actor.ID))
	return lead, nil
}

// List returns leads matching filter, newest first.
func (s *LeadService) List(ctx context.Context, filter LeadListFilter) ([]domain.Lead, error) {
	limit, offset := pageBounds(filter.Limit, filter.Offset)
	leads, err := s.leads.List(ctx, repository.LeadFilter{
		Status:     filter.Status,
		AssignedTo: filter.AssignedTo,
		Search:     filter.Search,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return leads, nil
}

// Get returns a lead and its timeline.
func (s *LeadService) Get(ctx context.Context, leadID string) (*LeadDetail, error) {
	lead, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "lead", map[string]any{"id": leadID})
	}
	activities, err := s.activities.ListByLead(ctx, leadID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &LeadDetail{Lead: lead, Activities: activities}, nil
}

// UpdateStatus moves a lead through the pipeline and stamps the entry time
// of the new status. converted is reserved for Convert and a converted lead
// no longer moves.
func (s *LeadService) UpdateStatus(ctx context.Context, actor Actor, leadID string, status domain.LeadStatus) (*domain.Lead, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid lead status", map[string]any{"status": status})
	}
	if status == domain.LeadStatusConverted {
		return nil, apperrors.NewValidationError("use the convert operation to convert a lead", map[string]any{"status": status})
	}
	lead, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "lead", map[string]any{"id": leadID})
	}
	if lead.Status == domain.LeadStatusConverted {
		return nil, apperrors.NewConflict("lead already converted", map[string]any{"id": leadID})
	}

	now := s.now().UTC()
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx repository.DBTX) error {
		repos := s.txRepos(tx)
		if _, err := lockUnconverted(ctx, repos.Leads, leadID); err != nil {
			return err
		}
		if err := repos.Leads.UpdateStatus(ctx, leadID, status, now); err != nil {
			return err
		}
		return repos.Activities.Create(ctx, &domain.Activity{
			Type:   domain.ActivityStatusChange,
			Title:  fmt.Sprintf("Lead status changed to %s", status),
			LeadID: strPtr(leadID),
			UserID: actor.ref(),
		})
	})
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "lead", map[string]any{"id": leadID})
	}

	lead.Status = status
	lead.Stamp(status, now)
	lead.UpdatedAt = now
	return lead, nil
}

// Assign hands a lead to a team member.
func (s *LeadService) Assign(ctx context.Context, actor Actor, leadID, assignee string) error {
	if err := s.leads.Assign(ctx, leadID, strPtr(assignee)); err != nil {
		return apperrors.NotFoundOr(err, "lead", map[string]any{"id": leadID})
	}
	entry := &domain.Activity{
		Type:   domain.ActivityAssignment,
		Title:  "Lead assigned",
		LeadID: strPtr(leadID),
		UserID: actor.ref(),
	}
	if err := s.activities.Create(ctx, entry); err != nil {
		s.logger.Warn("record assignment activity failed", zap.String("lead_id", leadID), zap.Error(err))
	}
	return nil
}

// AddActivity appends a free-form timeline entry to a lead.
func (s *LeadService) AddActivity(ctx context.Context, actor Actor, leadID string, activityType domain.ActivityType, title string, description *string) (*domain.Activity, error) {
	if _, err := s.leads.GetByID(ctx, leadID); err != nil {
		return nil, apperrors.NotFoundOr(err, "lead", map[string]any{"id": leadID})
	}
	entry := &domain.Activity{
		Type:        activityType,
		Title:       strings.TrimSpace(title),
		Description: description,
		LeadID:      strPtr(leadID),
		UserID:      actor.ref(),
	}
	if err := s.activities.Create(ctx, entry); err != nil {
		return nil, apperrors.MapError(err)
	}
	return entry, nil
}

// Convert turns a lead into a client with a primary contact. Every write
// happens in one transaction, so a failure leaves no partial client behind.
func (s *LeadService) Convert(ctx context.Context, actor Actor, leadID string) (string, error) {
	lead, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		return "", apperrors.NotFoundOr(err, "lead", map[string]any{"id": leadID})
	}
	if lead.Status == domain.LeadStatusConverted {
		return "", apperrors.NewConflict("lead already converted", map[string]any{"id": leadID})
	}

	now := s.now().UTC()
	var client *domain.Client
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx repository.DBTX) error {
		repos := s.txRepos(tx)
		locked, err := lockUnconverted(ctx, repos.Leads, leadID)
		if err != nil {
			return err
		}
		lead = locked
		client = &domain.Client{
			CompanyName:   lead.CompanyName,
			Website:       lead.Website,
			Industry:      lead.Industry,
			EmployeeCount: lead.EmployeeCount,
			Status:        domain.ClientStatusOnboarding,
		}
		if err := repos.Clients.Create(ctx, client); err != nil {
			return fmt.Errorf("create client: %w", err)
		}
		contact := &domain.Contact{
			ClientID:  client.ID,
			FirstName: lead.FirstName,
			LastName:  lead.LastName,
			Email:     lead.Email,
			Phone:     lead.Phone,
			JobTitle:  lead.JobTitle,
			IsPrimary: true,
		}
		if err := repos.Contacts.Create(ctx, contact); err != nil {
			return fmt.Errorf("create primary contact: %w", err)
		}
		if err := repos.Leads.UpdateStatus(ctx, lead.ID, domain.LeadStatusConverted, now); err != nil {
			return fmt.Errorf("mark lead converted: %w", err)
		}
		if err := repos.Activities.Create(ctx, &domain.Activity{
			Type:     domain.ActivityConversion,
			Title:    "Lead converted to client",
			LeadID:   strPtr(lead.ID),
			ClientID: strPtr(client.ID),
			UserID:   actor.ref(),
		}); err != nil {
			return fmt.Errorf("record conversion activity: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", apperrors.NotFoundOr(err, "lead", map[string]any{"id": leadID})
	}

	publishEvent(ctx, s.publisher, s.logger, events.EventLeadConverted, lead.ID, actor.ref(), events.LeadConvertedPayload{
		ClientID:    client.ID,
		CompanyName: client.CompanyName,
	})
	return client.ID, nil
}

// lockUnconverted re-reads a lead under a row lock so a conversion committed
// after the caller's first read is seen before anything is written.
func lockUnconverted(ctx context.Context, leads repository.LeadRepository, leadID string) (*domain.Lead, error) {
	lead, err := leads.GetForUpdate(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if lead.Status == domain.LeadStatusConverted {
		return nil, apperrors.NewConflict("lead already converted", map[string]any{"id": leadID})
	}
	return lead, nil
}

// Delete removes a lead and its activity log. Its bookings stay, detached
// from the lead.
func (s *LeadService) Delete(ctx context.Context, leadID string) error {
	if err := s.leads.Delete(ctx, leadID); err != nil {
		return apperrors.NotFoundOr(err, "lead", map[string]any{"id": leadID})
	}
	return nil
}

package service

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/continu8/backoffice/internal/domain"
	"github.com/continu8/backoffice/internal/events"
	"github.com/continu8/backoffice/internal/repository"
	"github.com/continu8/backoffice/internal/testutil"
	apperrors "github.com/continu8/backoffice/pkg/util"
)

var salesActor = Actor{ID: "sales-1", Role: domain.RoleSales}

type leadFixture struct {
	svc        *LeadService
	leads      *testutil.LeadRepo
	activities *testutil.ActivityRepo
	bookings   *testutil.BookingRepo
	clients    *testutil.ClientRepo
	contacts   *testutil.ContactRepo
	publisher  *testutil.Publisher
	deps       LeadDependencies
	now        time.Time
}

func newLeadFixture(t *testing.T) *leadFixture {
	t.Helper()
	f := &leadFixture{
		leads:      testutil.NewLeadRepo(),
		activities: &testutil.ActivityRepo{},
		bookings:   testutil.NewBookingRepo(),
		clients:    &testutil.ClientRepo{},
		contacts:   &testutil.ContactRepo{},
		publisher:  &testutil.Publisher{},
		now:        time.Date(2025, 4, 10, 12, 0, 0, 0, time.UTC),
	}
	uow := &testutil.UnitOfWork{Snapshots: []func() func(){
		f.leads.Snapshot,
		f.activities.Snapshot,
		f.clients.Snapshot,
		f.contacts.Snapshot,
	}}
	f.deps = LeadDependencies{
		LeadRepo:     f.leads,
		ActivityRepo: f.activities,
		BookingRepo:  f.bookings,
		UnitOfWork:   uow,
		TxRepos: func(repository.DBTX) LeadTxRepos {
			return LeadTxRepos{Leads: f.leads, Clients: f.clients, Contacts: f.contacts, Activities: f.activities}
		},
		Publisher: f.publisher,
		Clock:     func() time.Time { return f.now },
	}
	f.svc = NewLeadService(f.deps)
	return f
}

// interleavedLeadRepo runs afterRead once, right after the first GetByID
// returns, to commit a competing write between a read and its transaction.
type interleavedLeadRepo struct {
	*testutil.LeadRepo
	afterRead func()
}

func (r *interleavedLeadRepo) GetByID(ctx context.Context, id string) (*domain.Lead, error) {
	lead, err := r.LeadRepo.GetByID(ctx, id)
	if hook := r.afterRead; hook != nil {
		r.afterRead = nil
		hook()
	}
	return lead, err
}

// racingService returns a service whose initial lead read is followed by
// competing.
func (f *leadFixture) racingService(competing func()) *LeadService {
	deps := f.deps
	deps.LeadRepo = &interleavedLeadRepo{LeadRepo: f.leads, afterRead: competing}
	return NewLeadService(deps)
}

func intake(revenue domain.RevenueRange, budget domain.BudgetRange) IntakeInput {
	return IntakeInput{
		FirstName:         "Thandi",
		LastName:          "Nkosi",
		Email:             "thandi@example.com",
		CompanyName:       "Nkosi Logistics",
		AnnualRevenue:     revenue,
		MonthlyBudget:     budget,
		DecisionAuthority: domain.AuthorityFinalDecisionMaker,
		Timeline:          domain.TimelineUrgent,
		DecisionTimeframe: domain.DecisionReadyNow,
	}
}

func TestLeadService_SubmitBookingHotLead(t *testing.T) {
	f := newLeadFixture(t)

	out, err := f.svc.SubmitBooking(context.Background(), intake(domain.Revenue100MTo200M, domain.Budget60KTo100K))
	require.NoError(t, err)

	assert.Equal(t, 95, out.Result.Score)
	assert.Equal(t, domain.LeadTierHot, out.Result.Tier)
	assert.True(t, out.Result.MeetsIdealCriteria)
	assert.Nil(t, out.Booking)

	stored := f.leads.Leads[out.Lead.ID]
	require.NotNil(t, stored)
	assert.Equal(t, domain.LeadStatusNew, stored.Status, "tier never replaces the pipeline status")
	require.NotNil(t, stored.Tier)
	assert.Equal(t, domain.LeadTierHot, *stored.Tier)
	assert.Equal(t, "Thandi Nkosi", stored.ContactName)
	assert.Equal(t, domain.LeadSourceWebsiteBooking, stored.Source)
	assert.Nil(t, stored.QualificationNotes)

	assert.Len(t, f.activities.OfType(domain.ActivityBookingSubmitted), 1)
	assert.Len(t, f.publisher.OfType(events.EventBookingSubmitted), 1)
}

func TestLeadService_SubmitBookingColdLead(t *testing.T) {
	f := newLeadFixture(t)

	out, err := f.svc.SubmitBooking(context.Background(), intake(domain.RevenueUnder5M, domain.BudgetUnder30K))
	require.NoError(t, err)

	assert.Equal(t, 30, out.Result.Score)
	assert.Equal(t, domain.LeadTierCold, out.Result.Tier)
	assert.False(t, out.Result.MeetsIdealCriteria)
	require.NotNil(t, out.Lead.QualificationNotes)
	assert.Contains(t, *out.Lead.QualificationNotes, "Revenue")
	assert.Contains(t, *out.Lead.QualificationNotes, "Budget")
}

func TestLeadService_SubmitBookingSchedulesCall(t *testing.T) {
	f := newLeadFixture(t)
	in := intake(domain.Revenue25MTo50M, domain.Budget60KTo100K)
	in.PreferredDate = "2025-05-02"
	in.PreferredTime = "10:00"

	out, err := f.svc.SubmitBooking(context.Background(), in)
	require.NoError(t, err)

	require.NotNil(t, out.Booking)
	assert.Equal(t, time.Date(2025, 5, 2, 8, 0, 0, 0, time.UTC), out.Booking.ScheduledAt)
	assert.Equal(t, domain.DefaultBookingTimezone, out.Booking.Timezone)
	assert.Equal(t, domain.DefaultBookingMinutes, out.Booking.Duration)
	assert.Equal(t, domain.BookingStatusScheduled, out.Booking.Status)
	require.NotNil(t, out.Booking.LeadID)
	assert.Equal(t, out.Lead.ID, *out.Booking.LeadID)
}

func TestLeadService_BookingFailureKeepsLead(t *testing.T) {
	f := newLeadFixture(t)
	f.bookings.CreateErr = testutil.ErrBoom
	in := intake(domain.Revenue25MTo50M, domain.Budget60KTo100K)
	in.PreferredDate = "2025-05-02"
	in.PreferredTime = "10:00"

	out, err := f.svc.SubmitBooking(context.Background(), in)
	require.NoError(t, err)

	assert.Nil(t, out.Booking)
	assert.Len(t, f.leads.Leads, 1)
}

func TestLeadService_CreateManual(t *testing.T) {
	f := newLeadFixture(t)

	lead, err := f.svc.CreateManual(context.Background(), salesActor, ManualLeadInput{
		CompanyName:  "Karoo Foods",
		ContactName:  "Pieter van der Merwe",
		ContactEmail: "pieter@karoo.example",
	})
	require.NoError(t, err)

	assert.Equal(t, "Pieter", lead.FirstName)
	assert.Equal(t, "van der Merwe", lead.LastName)
	assert.Equal(t, domain.LeadSourceDirect, lead.Source)
	assert.Equal(t, domain.LeadStatusNew, lead.Status)
	assert.True(t, lead.MeetsIdealCriteria)
	assert.Nil(t, lead.Tier)
}

func TestLeadService_UpdateStatusStampsTimestamp(t *testing.T) {
	f := newLeadFixture(t)
	lead, err := f.svc.CreateManual(context.Background(), salesActor, ManualLeadInput{CompanyName: "Acme", ContactName: "Ann Lee", ContactEmail: "ann@acme.example"})
	require.NoError(t, err)

	updated, err := f.svc.UpdateStatus(context.Background(), salesActor, lead.ID, domain.LeadStatusQualified)
	require.NoError(t, err)

	assert.Equal(t, domain.LeadStatusQualified, updated.Status)
	require.NotNil(t, updated.QualifiedAt)
	assert.Equal(t, f.now, *updated.QualifiedAt)
	assert.Nil(t, updated.ContactedAt)

	changes := f.activities.OfType(domain.ActivityStatusChange)
	require.Len(t, changes, 1)
	assert.Equal(t, "Lead status changed to qualified", changes[0].Title)
}

func TestLeadService_UpdateStatusRejectsConvertedAndUnknown(t *testing.T) {
	f := newLeadFixture(t)
	lead, err := f.svc.CreateManual(context.Background(), salesActor, ManualLeadInput{CompanyName: "Acme", ContactName: "Ann", ContactEmail: "ann@acme.example"})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), salesActor, lead.ID, domain.LeadStatusConverted)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	_, err = f.svc.UpdateStatus(context.Background(), salesActor, lead.ID, "archived")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	_, err = f.svc.UpdateStatus(context.Background(), salesActor, "missing", domain.LeadStatusWon)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestLeadService_UpdateStatusRollsBackOnActivityFailure(t *testing.T) {
	f := newLeadFixture(t)
	lead, err := f.svc.CreateManual(context.Background(), salesActor, ManualLeadInput{CompanyName: "Acme", ContactName: "Ann", ContactEmail: "ann@acme.example"})
	require.NoError(t, err)
	f.activities.CreateErr = testutil.ErrBoom

	_, err = f.svc.UpdateStatus(context.Background(), salesActor, lead.ID, domain.LeadStatusWon)
	require.Error(t, err)

	stored := f.leads.Leads[lead.ID]
	assert.Equal(t, domain.LeadStatusNew, stored.Status)
	assert.Nil(t, stored.WonAt)
}

func TestLeadService_ConvertCreatesClientAndContact(t *testing.T) {
	f := newLeadFixture(t)
	out, err := f.svc.SubmitBooking(context.Background(), intake(domain.Revenue50MTo100M, domain.Budget100KTo150K))
	require.NoError(t, err)

	clientID, err := f.svc.Convert(context.Background(), salesActor, out.Lead.ID)
	require.NoError(t, err)

	require.Len(t, f.clients.Clients, 1)
	client := f.clients.Clients[0]
	assert.Equal(t, clientID, client.ID)
	assert.Equal(t, "Nkosi Logistics", client.CompanyName)
	assert.Equal(t, domain.ClientStatusOnboarding, client.Status)

	require.Len(t, f.contacts.Contacts, 1)
	contact := f.contacts.Contacts[0]
	assert.Equal(t, clientID, contact.ClientID)
	assert.True(t, contact.IsPrimary)
	assert.Equal(t, "thandi@example.com", contact.Email)

	stored := f.leads.Leads[out.Lead.ID]
	assert.Equal(t, domain.LeadStatusConverted, stored.Status)
	require.NotNil(t, stored.ConvertedAt)

	assert.Len(t, f.activities.OfType(domain.ActivityConversion), 1)
	assert.Len(t, f.publisher.OfType(events.EventLeadConverted), 1)
}

func TestLeadService_ConvertIsAtomic(t *testing.T) {
	f := newLeadFixture(t)
	lead, err := f.svc.CreateManual(context.Background(), salesActor, ManualLeadInput{CompanyName: "Acme", ContactName: "Ann Lee", ContactEmail: "ann@acme.example"})
	require.NoError(t, err)
	f.contacts.CreateErr = testutil.ErrBoom

	_, err = f.svc.Convert(context.Background(), salesActor, lead.ID)
	require.Error(t, err)

	assert.Empty(t, f.clients.Clients, "no orphan client after a failed conversion")
	assert.Equal(t, domain.LeadStatusNew, f.leads.Leads[lead.ID].Status)
	assert.Empty(t, f.publisher.OfType(events.EventLeadConverted))
}

func TestLeadService_ConvertedLeadIsTerminal(t *testing.T) {
	f := newLeadFixture(t)
	lead, err := f.svc.CreateManual(context.Background(), salesActor, ManualLeadInput{CompanyName: "Acme", ContactName: "Ann", ContactEmail: "ann@acme.example"})
	require.NoError(t, err)
	_, err = f.svc.Convert(context.Background(), salesActor, lead.ID)
	require.NoError(t, err)

	_, err = f.svc.Convert(context.Background(), salesActor, lead.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))

	_, err = f.svc.UpdateStatus(context.Background(), salesActor, lead.ID, domain.LeadStatusLost)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
	assert.Len(t, f.clients.Clients, 1)
}

func TestLeadService_ConvertLosesToConversionCommittedAfterRead(t *testing.T) {
	f := newLeadFixture(t)
	ctx := context.Background()
	lead, err := f.svc.CreateManual(ctx, salesActor, ManualLeadInput{CompanyName: "Acme", ContactName: "Ann Lee", ContactEmail: "ann@acme.example"})
	require.NoError(t, err)

	racing := f.racingService(func() {
		_, err := f.svc.Convert(ctx, salesActor, lead.ID)
		require.NoError(t, err)
	})

	_, err = racing.Convert(ctx, salesActor, lead.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))

	assert.Len(t, f.clients.Clients, 1)
	assert.Len(t, f.contacts.Contacts, 1)
	assert.Len(t, f.activities.OfType(domain.ActivityConversion), 1)
	assert.Len(t, f.publisher.OfType(events.EventLeadConverted), 1)
}

func TestLeadService_StatusChangeKeepsConversionCommittedAfterRead(t *testing.T) {
	f := newLeadFixture(t)
	ctx := context.Background()
	lead, err := f.svc.CreateManual(ctx, salesActor, ManualLeadInput{CompanyName: "Acme", ContactName: "Ann Lee", ContactEmail: "ann@acme.example"})
	require.NoError(t, err)

	racing := f.racingService(func() {
		_, err := f.svc.Convert(ctx, salesActor, lead.ID)
		require.NoError(t, err)
	})

	_, err = racing.UpdateStatus(ctx, salesActor, lead.ID, domain.LeadStatusLost)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))

	stored := f.leads.Leads[lead.ID]
	assert.Equal(t, domain.LeadStatusConverted, stored.Status)
	assert.Nil(t, stored.LostAt)
	assert.Empty(t, f.activities.OfType(domain.ActivityStatusChange))
}

func TestLeadService_AssignAndActivities(t *testing.T) {
	f := newLeadFixture(t)
	ctx := context.Background()
	lead, err := f.svc.CreateManual(ctx, salesActor, ManualLeadInput{CompanyName: "Acme", ContactName: "Ann", ContactEmail: "ann@acme.example"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Assign(ctx, salesActor, lead.ID, "sales-2"))
	_, err = f.svc.AddActivity(ctx, salesActor, lead.ID, "note", "Sent pricing deck", nil)
	require.NoError(t, err)

	detail, err := f.svc.Get(ctx, lead.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Lead.AssignedTo)
	assert.Equal(t, "sales-2", *detail.Lead.AssignedTo)
	assert.Len(t, detail.Activities, 2)

	_, err = f.svc.AddActivity(ctx, salesActor, "missing", "note", "x", nil)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestLeadService_Delete(t *testing.T) {
	f := newLeadFixture(t)
	ctx := context.Background()
	lead, err := f.svc.CreateManual(ctx, salesActor, ManualLeadInput{CompanyName: "Acme", ContactName: "Ann", ContactEmail: "ann@acme.example"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, lead.ID))
	assert.True(t, apperrors.IsCode(f.svc.Delete(ctx, lead.ID), apperrors.CodeNotFound))
}

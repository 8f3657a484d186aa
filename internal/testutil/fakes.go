// Package testutil holds in-memory fakes of the repositories, stores and
// publishers so service and handler tests run without Postgres or Redis.
package testutil

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/continu8/backoffice/internal/domain"
	"github.com/continu8/backoffice/internal/events"
	"github.com/continu8/backoffice/internal/repository"
)

type TicketRepo struct {
	mu      sync.Mutex
	Tickets map[string]*domain.Ticket
	order   []string
}

func NewTicketRepo() *TicketRepo {
	return &TicketRepo{Tickets: map[string]*domain.Ticket{}}
}

func (r *TicketRepo) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.Tickets)), nil
}

func (r *TicketRepo) Create(_ context.Context, t *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.Tickets {
		if existing.TicketNumber == t.TicketNumber {
			return &pgconn.PgError{Code: "23505", ConstraintName: "idx_tickets_number"}
		}
	}
	t.ID = uuid.NewString()
	stored := *t
	r.Tickets[t.ID] = &stored
	r.order = append(r.order, t.ID)
	return nil
}

func (r *TicketRepo) Update(_ context.Context, t *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Tickets[t.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *t
	r.Tickets[t.ID] = &stored
	return nil
}

func (r *TicketRepo) Touch(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.Tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	t.UpdatedAt = time.Now()
	return nil
}

func (r *TicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.Tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *t
	return &out, nil
}

func (r *TicketRepo) List(_ context.Context, f repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Ticket
	for _, id := range r.order {
		t := r.Tickets[id]
		if f.Status != nil && t.Status != *f.Status {
			continue
		}
		if f.ClientID != nil && (t.ClientID == nil || *t.ClientID != *f.ClientID) {
			continue
		}
		if f.Requester != nil {
			sameClient := f.Requester.ClientID != nil && t.ClientID != nil && *t.ClientID == *f.Requester.ClientID
			if t.CreatedBy != f.Requester.ProfileID && !sameClient {
				continue
			}
		}
		out = append(out, *t)
	}
	return out, nil
}

type CommentRepo struct {
	Comments []domain.Comment
}

func (r *CommentRepo) Create(_ context.Context, c *domain.Comment) error {
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	r.Comments = append(r.Comments, *c)
	return nil
}

func (r *CommentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Comment, error) {
	var out []domain.Comment
	for _, c := range r.Comments {
		if c.TicketID == ticketID {
			out = append(out, c)
		}
	}
	return out, nil
}

type AttachmentRepo struct {
	Attachments []domain.Attachment
	CreateErr   error
}

func (r *AttachmentRepo) Create(_ context.Context, a *domain.Attachment) error {
	if r.CreateErr != nil {
		return r.CreateErr
	}
	a.ID = uuid.NewString()
	r.Attachments = append(r.Attachments, *a)
	return nil
}

func (r *AttachmentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Attachment, error) {
	var out []domain.Attachment
	for _, a := range r.Attachments {
		if a.TicketID == ticketID {
			out = append(out, a)
		}
	}
	return out, nil
}

type ActivityRepo struct {
	Activities []domain.Activity
	CreateErr  error
}

func (r *ActivityRepo) Create(_ context.Context, a *domain.Activity) error {
	if r.CreateErr != nil {
		return r.CreateErr
	}
	a.ID = uuid.NewString()
	a.OccurredAt = time.Now()
	r.Activities = append(r.Activities, *a)
	return nil
}

func (r *ActivityRepo) ListByLead(_ context.Context, leadID string) ([]domain.Activity, error) {
	var out []domain.Activity
	for _, a := range r.Activities {
		if a.LeadID != nil && *a.LeadID == leadID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *ActivityRepo) OfType(t domain.ActivityType) []domain.Activity {
	var out []domain.Activity
	for _, a := range r.Activities {
		if a.Type == t {
			out = append(out, a)
		}
	}
	return out
}

func (r *ActivityRepo) Snapshot() func() {
	saved := append([]domain.Activity(nil), r.Activities...)
	return func() { r.Activities = saved }
}

type ContactRepo struct {
	Contacts  []domain.Contact
	CreateErr error
}

func (r *ContactRepo) Create(_ context.Context, c *domain.Contact) error {
	if r.CreateErr != nil {
		return r.CreateErr
	}
	c.ID = uuid.NewString()
	r.Contacts = append(r.Contacts, *c)
	return nil
}

func (r *ContactRepo) GetByProfileID(_ context.Context, profileID string) (*domain.Contact, error) {
	for _, c := range r.Contacts {
		if c.ProfileID != nil && *c.ProfileID == profileID {
			out := c
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *ContactRepo) Snapshot() func() {
	saved := append([]domain.Contact(nil), r.Contacts...)
	return func() { r.Contacts = saved }
}

type ClientRepo struct {
	Clients []domain.Client
}

func (r *ClientRepo) Create(_ context.Context, c *domain.Client) error {
	c.ID = uuid.NewString()
	r.Clients = append(r.Clients, *c)
	return nil
}

func (r *ClientRepo) Snapshot() func() {
	saved := append([]domain.Client(nil), r.Clients...)
	return func() { r.Clients = saved }
}

type ProfileRepo struct {
	Profiles map[string]*domain.Profile
}

func (r *ProfileRepo) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	p, ok := r.Profiles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

type LeadRepo struct {
	Leads map[string]*domain.Lead
}

func NewLeadRepo() *LeadRepo {
	return &LeadRepo{Leads: map[string]*domain.Lead{}}
}

func (r *LeadRepo) Create(_ context.Context, l *domain.Lead) error {
	l.ID = uuid.NewString()
	now := time.Now()
	l.CreatedAt, l.UpdatedAt = now, now
	stored := *l
	r.Leads[l.ID] = &stored
	return nil
}

func (r *LeadRepo) GetByID(_ context.Context, id string) (*domain.Lead, error) {
	l, ok := r.Leads[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *l
	return &out, nil
}

func (r *LeadRepo) GetForUpdate(ctx context.Context, id string) (*domain.Lead, error) {
	return r.GetByID(ctx, id)
}

func (r *LeadRepo) List(_ context.Context, f repository.LeadFilter) ([]domain.Lead, error) {
	var out []domain.Lead
	for _, l := range r.Leads {
		if f.Status != nil && l.Status != *f.Status {
			continue
		}
		if f.Search != nil && !strings.Contains(strings.ToLower(l.CompanyName), strings.ToLower(*f.Search)) {
			continue
		}
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *LeadRepo) UpdateStatus(_ context.Context, id string, status domain.LeadStatus, at time.Time) error {
	l, ok := r.Leads[id]
	if !ok || l.Status == domain.LeadStatusConverted {
		return pgx.ErrNoRows
	}
	l.Status = status
	l.Stamp(status, at)
	l.UpdatedAt = at
	return nil
}

func (r *LeadRepo) Assign(_ context.Context, id string, assignee *string) error {
	l, ok := r.Leads[id]
	if !ok {
		return pgx.ErrNoRows
	}
	l.AssignedTo = assignee
	return nil
}

func (r *LeadRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.Leads[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.Leads, id)
	return nil
}

func (r *LeadRepo) Snapshot() func() {
	saved := make(map[string]*domain.Lead, len(r.Leads))
	for id, l := range r.Leads {
		cp := *l
		saved[id] = &cp
	}
	return func() { r.Leads = saved }
}

type BookingRepo struct {
	Bookings  map[string]*domain.Booking
	CreateErr error
}

func NewBookingRepo() *BookingRepo {
	return &BookingRepo{Bookings: map[string]*domain.Booking{}}
}

func (r *BookingRepo) Create(_ context.Context, b *domain.Booking) error {
	if r.CreateErr != nil {
		return r.CreateErr
	}
	b.ID = uuid.NewString()
	stored := *b
	r.Bookings[b.ID] = &stored
	return nil
}

func (r *BookingRepo) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	b, ok := r.Bookings[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *b
	return &out, nil
}

func (r *BookingRepo) Update(_ context.Context, b *domain.Booking) error {
	if _, ok := r.Bookings[b.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *b
	r.Bookings[b.ID] = &stored
	return nil
}

// UnitOfWork restores every registered fake when the callback fails.
type UnitOfWork struct {
	Snapshots []func() func()
}

func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.DBTX) error) error {
	restores := make([]func(), 0, len(u.Snapshots))
	for _, snap := range u.Snapshots {
		restores = append(restores, snap())
	}
	if err := fn(ctx, nil); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}

type ObjectStore struct {
	Objects map[string][]byte
	Removed []string
}

func NewObjectStore() *ObjectStore {
	return &ObjectStore{Objects: map[string][]byte{}}
}

func (s *ObjectStore) Put(_ context.Context, key string, r io.Reader) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	s.Objects[key] = buf.Bytes()
	return nil
}

func (s *ObjectStore) Remove(_ context.Context, key string) error {
	delete(s.Objects, key)
	s.Removed = append(s.Removed, key)
	return nil
}

func (s *ObjectStore) PublicURL(key string) string {
	return "http://files.test/" + key
}

type Publisher struct {
	mu     sync.Mutex
	Events []events.Event
	Err    error
}

func (p *Publisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Events = append(p.Events, e)
	return nil
}

func (p *Publisher) OfType(t events.EventType) []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Event
	for _, e := range p.Events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

var ErrBoom = errors.New("boom")

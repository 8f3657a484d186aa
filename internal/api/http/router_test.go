package http

import (
	"bytes"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/continu8/backoffice/internal/api/dto"
	"github.com/continu8/backoffice/internal/api/http/handlers"
	"github.com/continu8/backoffice/internal/auth"
	"github.com/continu8/backoffice/internal/domain"
	"github.com/continu8/backoffice/internal/observability"
	"github.com/continu8/backoffice/internal/repository"
	"github.com/continu8/backoffice/internal/service"
	"github.com/continu8/backoffice/internal/testutil"
	"github.com/continu8/backoffice/internal/ticketing"
	"github.com/continu8/backoffice/internal/validation"
)

const (
	supportID = "6f1c8a52-7a0e-4c61-9d6c-2f0b7d1e5a01"
	salesID   = "6f1c8a52-7a0e-4c61-9d6c-2f0b7d1e5a02"
	clientID  = "6f1c8a52-7a0e-4c61-9d6c-2f0b7d1e5a03"
)

type testServer struct {
	app    *fiber.App
	tokens *auth.TokenManager
	leads  *testutil.LeadRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	tickets := testutil.NewTicketRepo()
	activities := &testutil.ActivityRepo{}
	contacts := &testutil.ContactRepo{}
	clients := &testutil.ClientRepo{}
	leads := testutil.NewLeadRepo()
	bookings := testutil.NewBookingRepo()
	profiles := &testutil.ProfileRepo{Profiles: map[string]*domain.Profile{
		supportID: {ID: supportID, FullName: "Sam Support", Role: domain.RoleSupport},
		salesID:   {ID: salesID, FullName: "Sally Sales", Role: domain.RoleSales},
		clientID:  {ID: clientID, FullName: "Lerato Dube", Role: domain.RoleClient},
	}}

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     tickets,
		CommentRepo:    &testutil.CommentRepo{},
		AttachmentRepo: &testutil.AttachmentRepo{},
		ActivityRepo:   activities,
		ContactRepo:    contacts,
		Numbers:        ticketing.NewCountAllocator(tickets),
		Store:          testutil.NewObjectStore(),
		Publisher:      &testutil.Publisher{},
	})
	leadService := service.NewLeadService(service.LeadDependencies{
		LeadRepo:     leads,
		ActivityRepo: activities,
		BookingRepo:  bookings,
		UnitOfWork: &testutil.UnitOfWork{Snapshots: []func() func(){
			leads.Snapshot, activities.Snapshot, clients.Snapshot, contacts.Snapshot,
		}},
		TxRepos: func(repository.DBTX) service.LeadTxRepos {
			return service.LeadTxRepos{Leads: leads, Clients: clients, Contacts: contacts, Activities: activities}
		},
		Publisher: &testutil.Publisher{},
	})
	bookingService := service.NewBookingService(service.BookingDependencies{
		BookingRepo:  bookings,
		ActivityRepo: activities,
		Leads:        leadService,
	})

	validate := validation.New()
	validate.RegisterCustomType(dto.OptionalStringValue, dto.OptionalString{})
	tokens := auth.NewTokenManager("test-secret", 5)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger, metrics)})
	RegisterMiddlewares(app, logger, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("backoffice", "test", nil),
		Tickets:        handlers.NewTicketsHandler(ticketService, validate),
		Leads:          handlers.NewLeadsHandler(leadService, validate),
		Bookings:       handlers.NewBookingsHandler(bookingService, validate),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, profiles),
		Gatherer:       prometheus.NewRegistry(),
	})
	return &testServer{app: app, tokens: tokens, leads: leads}
}

func (s *testServer) do(t *testing.T, method, path, profileID string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if profileID != "" {
		token, _, err := s.tokens.GenerateToken(profileID)
		require.NoError(t, err)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func errorCode(body map[string]any) string {
	envelope, _ := body["error"].(map[string]any)
	code, _ := envelope["code"].(string)
	return code
}

func data(body map[string]any) map[string]any {
	d, _ := body["data"].(map[string]any)
	return d
}

func validTicket() map[string]any {
	return map[string]any{
		"subject":     "Printer offline",
		"description": "The office printer stopped responding this morning.",
		"priority":    "urgent",
	}
}

func TestRoutes_RequireAuthentication(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, nethttp.MethodGet, "/tickets", "", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))
}

func TestRoutes_UnknownRoute(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, nethttp.MethodGet, "/nope", "", nil)
	assert.Equal(t, nethttp.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestRoutes_LeadsAreStaffOnly(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, nethttp.MethodGet, "/leads", clientID, nil)
	assert.Equal(t, nethttp.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	status, _ = s.do(t, nethttp.MethodGet, "/leads", salesID, nil)
	assert.Equal(t, nethttp.StatusOK, status)
}

func TestRoutes_DeleteLeadNeedsSalesOrAdmin(t *testing.T) {
	s := newTestServer(t)
	status, body := s.do(t, nethttp.MethodPost, "/leads", salesID, map[string]any{
		"company_name":  "Karoo Foods",
		"contact_name":  "Pieter van der Merwe",
		"contact_email": "pieter@karoo.example",
	})
	require.Equal(t, nethttp.StatusCreated, status)
	leadID := data(body)["id"].(string)

	status, _ = s.do(t, nethttp.MethodDelete, "/leads/"+leadID, supportID, nil)
	assert.Equal(t, nethttp.StatusForbidden, status)

	status, _ = s.do(t, nethttp.MethodDelete, "/leads/"+leadID, salesID, nil)
	assert.Equal(t, nethttp.StatusNoContent, status)
	assert.Empty(t, s.leads.Leads)
}

func TestRoutes_MalformedIDIsNotFound(t *testing.T) {
	s := newTestServer(t)

	cases := []struct{ method, path string }{
		{nethttp.MethodGet, "/tickets/TKT-00001"},
		{nethttp.MethodPatch, "/leads/42/status"},
		{nethttp.MethodPost, "/bookings/abc/cancel"},
	}
	for _, tc := range cases {
		status, body := s.do(t, tc.method, tc.path, salesID, map[string]any{"status": "won"})
		assert.Equal(t, nethttp.StatusNotFound, status, tc.path)
		assert.Equal(t, "NOT_FOUND", errorCode(body), tc.path)
	}
}

func TestRoutes_ValidationEnvelope(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, nethttp.MethodPost, "/tickets", supportID, map[string]any{
		"subject":     "Hi",
		"description": "too short",
		"priority":    "whenever",
	})

	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
	details := body["error"].(map[string]any)["details"].(map[string]any)
	fields := details["fields"].(map[string]any)
	assert.Contains(t, fields, "subject")
	assert.Contains(t, fields, "description")
	assert.Contains(t, fields, "priority")
}

func TestRoutes_StaffClosesOpenTicketDirectly(t *testing.T) {
	s := newTestServer(t)
	status, body := s.do(t, nethttp.MethodPost, "/tickets", clientID, validTicket())
	require.Equal(t, nethttp.StatusCreated, status)
	created := data(body)
	assert.Equal(t, "TKT-00001", created["ticket_number"])
	assert.Equal(t, "open", created["status"])
	assert.Equal(t, false, created["is_overdue"])

	status, body = s.do(t, nethttp.MethodPatch, "/tickets/"+created["id"].(string), supportID, map[string]any{"status": "closed"})
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "closed", data(body)["status"])
}

func TestRoutes_ClientCannotSetStatus(t *testing.T) {
	s := newTestServer(t)
	_, body := s.do(t, nethttp.MethodPost, "/tickets", clientID, validTicket())
	id := data(body)["id"].(string)

	status, body := s.do(t, nethttp.MethodPatch, "/tickets/"+id, clientID, map[string]any{"status": "resolved"})
	assert.Equal(t, nethttp.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))
}

func TestRoutes_AssigneeCanBeCleared(t *testing.T) {
	s := newTestServer(t)
	_, body := s.do(t, nethttp.MethodPost, "/tickets", supportID, validTicket())
	id := data(body)["id"].(string)

	status, body := s.do(t, nethttp.MethodPatch, "/tickets/"+id, supportID, map[string]any{"assigned_to": supportID})
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, supportID, data(body)["assigned_to"])

	status, body = s.do(t, nethttp.MethodPatch, "/tickets/"+id, supportID, map[string]any{"assigned_to": nil})
	require.Equal(t, nethttp.StatusOK, status)
	assert.Nil(t, data(body)["assigned_to"])

	status, body = s.do(t, nethttp.MethodPatch, "/tickets/"+id, supportID, map[string]any{"assigned_to": "not-a-uuid"})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
}

func TestRoutes_PublicBookingScoresLead(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, nethttp.MethodPost, "/bookings", "", map[string]any{
		"first_name":         "Thandi",
		"last_name":          "Nkosi",
		"email":              "thandi@example.com",
		"phone":              "+27821234567",
		"job_title":          "COO",
		"company_name":       "Nkosi Logistics",
		"industry":           "Logistics",
		"annual_revenue":     "100m_200m",
		"employee_count":     "100_200",
		"primary_challenge":  "disconnected_systems",
		"pain_points":        "Dispatch and billing run on separate spreadsheets.",
		"desired_outcomes":   "One system of record for orders and invoices.",
		"timeline":           "urgent_1_month",
		"monthly_budget":     "60k_100k",
		"decision_authority": "final_decision_maker",
		"decision_timeframe": "ready_now",
	})

	require.Equal(t, nethttp.StatusCreated, status)
	result := data(body)
	assert.EqualValues(t, 95, result["score"])
	assert.Equal(t, "hot", result["tier"])
	assert.Equal(t, true, result["meets_ideal_criteria"])
}

func TestRoutes_Slots(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, nethttp.MethodGet, "/bookings/slots?date=2025-05-02", "", nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Len(t, data(body)["slots"], 7)

	status, body = s.do(t, nethttp.MethodGet, "/bookings/slots", "", nil)
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
}

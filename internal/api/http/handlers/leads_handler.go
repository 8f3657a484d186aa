package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/continu8/backoffice/internal/api/dto"
	"github.com/continu8/backoffice/internal/domain"
	"github.com/continu8/backoffice/internal/service"
	"github.com/continu8/backoffice/internal/validation"
)

// LeadsHandler serves the public intake form and the staff pipeline.
type LeadsHandler struct {
	service  *service.LeadService
	validate *validation.Validator
}

// NewLeadsHandler constructs handler.
func NewLeadsHandler(leadService *service.LeadService, validate *validation.Validator) *LeadsHandler {
	return &LeadsHandler{service: leadService, validate: validate}
}

// SubmitBooking POST /bookings.
func (h *LeadsHandler) SubmitBooking(c *fiber.Ctx) error {
	var req dto.IntakeRequest
	if err := bindBody(c, h.validate, &req); err != nil {
		return err
	}
	result, err := h.service.SubmitBooking(c.UserContext(), service.IntakeInput{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		Phone:             req.Phone,
		JobTitle:          req.JobTitle,
		CompanyName:       req.CompanyName,
		Website:           req.Website,
		Industry:          req.Industry,
		AnnualRevenue:     req.AnnualRevenue,
		EmployeeCount:     req.EmployeeCount,
		PrimaryChallenge:  req.PrimaryChallenge,
		OtherChallenge:    req.OtherChallenge,
		PainPoints:        req.PainPoints,
		DesiredOutcomes:   req.DesiredOutcomes,
		Timeline:          req.Timeline,
		MonthlyBudget:     req.MonthlyBudget,
		DecisionAuthority: req.DecisionAuthority,
		DecisionTimeframe: req.DecisionTimeframe,
		CurrentSolutions:  req.CurrentSolutions,
		PreferredDate:     req.PreferredDate,
		PreferredTime:     req.PreferredTime,
		Timezone:          req.Timezone,
		AdditionalNotes:   req.AdditionalNotes,
	})
	if err != nil {
		return err
	}
	resp := dto.IntakeResponse{
		LeadID:             result.Lead.ID,
		Score:              result.Result.Score,
		Tier:               result.Result.Tier,
		MeetsIdealCriteria: result.Result.MeetsIdealCriteria,
	}
	if result.Booking != nil {
		resp.BookingID = &result.Booking.ID
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": resp})
}

// CreateLead POST /leads.
func (h *LeadsHandler) CreateLead(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateLeadRequest
	if err := bindBody(c, h.validate, &req); err != nil {
		return err
	}
	lead, err := h.service.CreateManual(c.UserContext(), actor, service.ManualLeadInput{
		CompanyName:       req.CompanyName,
		ContactName:       req.ContactName,
		ContactEmail:      req.ContactEmail,
		ContactPhone:      req.ContactPhone,
		AnnualRevenue:     req.AnnualRevenue,
		EmployeeCount:     req.EmployeeCount,
		PrimaryChallenge:  req.PrimaryChallenge,
		MonthlyBudget:     req.MonthlyBudget,
		DecisionAuthority: req.DecisionAuthority,
		Source:            req.Source,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": leadResponse(lead)})
}

// ListLeads GET /leads.
func (h *LeadsHandler) ListLeads(c *fiber.Ctx) error {
	var query dto.LeadListQuery
	if err := bindQuery(c, h.validate, &query); err != nil {
		return err
	}
	limit, offset := page(query.Page, query.PageSize)
	filter := service.LeadListFilter{
		AssignedTo: filterValue(query.AssignedTo),
		Search:     filterValue(query.Search),
		Limit:      limit,
		Offset:     offset,
	}
	if status := filterValue(query.Status); status != nil {
		s := domain.LeadStatus(*status)
		filter.Status = &s
	}
	leads, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.LeadResponse, 0, len(leads))
	for i := range leads {
		items = append(items, leadResponse(&leads[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetLead GET /leads/:id.
func (h *LeadsHandler) GetLead(c *fiber.Ctx) error {
	detail, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	resp := dto.LeadDetailResponse{
		LeadResponse: leadResponse(detail.Lead),
		Activities:   make([]dto.ActivityResponse, 0, len(detail.Activities)),
	}
	for i := range detail.Activities {
		resp.Activities = append(resp.Activities, activityResponse(&detail.Activities[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// UpdateStatus PATCH /leads/:id/status.
func (h *LeadsHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.UpdateLeadStatusRequest
	if err := bindBody(c, h.validate, &req); err != nil {
		return err
	}
	lead, err := h.service.UpdateStatus(c.UserContext(), actor, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": leadResponse(lead)})
}

// Assign PATCH /leads/:id/assignee.
func (h *LeadsHandler) Assign(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.AssignLeadRequest
	if err := bindBody(c, h.validate, &req); err != nil {
		return err
	}
	if err := h.service.Assign(c.UserContext(), actor, c.Params("id"), req.AssignedTo); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": c.Params("id"), "assigned_to": req.AssignedTo}})
}

// AddActivity POST /leads/:id/activities.
func (h *LeadsHandler) AddActivity(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateActivityRequest
	if err := bindBody(c, h.validate, &req); err != nil {
		return err
	}
	activity, err := h.service.AddActivity(c.UserContext(), actor, c.Params("id"), req.Type, req.Title, req.Description)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": activityResponse(activity)})
}

// Convert POST /leads/:id/convert.
func (h *LeadsHandler) Convert(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	clientID, err := h.service.Convert(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.ConvertLeadResponse{ClientID: clientID}})
}

// DeleteLead DELETE /leads/:id.
func (h *LeadsHandler) DeleteLead(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func leadResponse(lead *domain.Lead) dto.LeadResponse {
	return dto.LeadResponse{
		ID:                 lead.ID,
		FirstName:          lead.FirstName,
		LastName:           lead.LastName,
		ContactName:        lead.ContactName,
		Email:              lead.Email,
		Phone:              lead.Phone,
		JobTitle:           lead.JobTitle,
		CompanyName:        lead.CompanyName,
		Website:            lead.Website,
		Industry:           lead.Industry,
		AnnualRevenue:      lead.AnnualRevenue,
		EmployeeCount:      lead.EmployeeCount,
		PrimaryChallenge:   lead.PrimaryChallenge,
		OtherChallenge:     lead.OtherChallenge,
		PainPoints:         lead.PainPoints,
		DesiredOutcomes:    lead.DesiredOutcomes,
		Timeline:           lead.Timeline,
		MonthlyBudget:      lead.MonthlyBudget,
		DecisionAuthority:  lead.DecisionAuthority,
		DecisionTimeframe:  lead.DecisionTimeframe,
		CurrentSolutions:   lead.CurrentSolutions,
		Source:             lead.Source,
		AssignedTo:         lead.AssignedTo,
		LeadScore:          lead.LeadScore,
		Tier:               lead.Tier,
		Status:             lead.Status,
		MeetsIdealCriteria: lead.MeetsIdealCriteria,
		QualificationNotes: lead.QualificationNotes,
		ContactedAt:        lead.ContactedAt,
		QualifiedAt:        lead.QualifiedAt,
		ProposalAt:         lead.ProposalAt,
		NegotiationAt:      lead.NegotiationAt,
		WonAt:              lead.WonAt,
		LostAt:             lead.LostAt,
		ConvertedAt:        lead.ConvertedAt,
		CreatedAt:          lead.CreatedAt,
		UpdatedAt:          lead.UpdatedAt,
	}
}

func activityResponse(activity *domain.Activity) dto.ActivityResponse {
	return dto.ActivityResponse{
		ID:          activity.ID,
		Type:        activity.Type,
		Title:       activity.Title,
		Description: activity.Description,
		LeadID:      activity.LeadID,
		ClientID:    activity.ClientID,
		TicketID:    activity.TicketID,
		UserID:      activity.UserID,
		OccurredAt:  activity.OccurredAt,
	}
}

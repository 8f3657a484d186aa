package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/continu8/backoffice/internal/api/dto"
	"github.com/continu8/backoffice/internal/domain"
	"github.com/continu8/backoffice/internal/service"
	"github.com/continu8/backoffice/internal/validation"
)

// BookingsHandler manages discovery call bookings.
type BookingsHandler struct {
	service  *service.BookingService
	validate *validation.Validator
}

// NewBookingsHandler constructs handler.
func NewBookingsHandler(bookingService *service.BookingService, validate *validation.Validator) *BookingsHandler {
	return &BookingsHandler{service: bookingService, validate: validate}
}

// Slots GET /bookings/slots?date=YYYY-MM-DD.
func (h *BookingsHandler) Slots(c *fiber.Ctx) error {
	var query dto.SlotsQuery
	if err := bindQuery(c, h.validate, &query); err != nil {
		return err
	}
	slots, err := h.service.Slots(query.Date)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SlotsResponse{Date: query.Date, Slots: slots}})
}

// Cancel POST /bookings/:id/cancel.
func (h *BookingsHandler) Cancel(c *fiber.Ctx) error {
	var req dto.CancelBookingRequest
	if err := bindOptionalBody(c, h.validate, &req); err != nil {
		return err
	}
	booking, err := h.service.Cancel(c.UserContext(), c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": bookingResponse(booking)})
}

// Reschedule POST /bookings/:id/reschedule.
func (h *BookingsHandler) Reschedule(c *fiber.Ctx) error {
	var req dto.RescheduleBookingRequest
	if err := bindBody(c, h.validate, &req); err != nil {
		return err
	}
	booking, err := h.service.Reschedule(c.UserContext(), c.Params("id"), req.ScheduledAt)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": bookingResponse(booking)})
}

// Complete POST /bookings/:id/complete.
func (h *BookingsHandler) Complete(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.CompleteBookingRequest
	if err := bindOptionalBody(c, h.validate, &req); err != nil {
		return err
	}
	booking, err := h.service.Complete(c.UserContext(), actor, c.Params("id"), req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": bookingResponse(booking)})
}

func bookingResponse(booking *domain.Booking) dto.BookingResponse {
	return dto.BookingResponse{
		ID:          booking.ID,
		LeadID:      booking.LeadID,
		ScheduledAt: booking.ScheduledAt,
		Duration:    booking.Duration,
		MeetingType: booking.MeetingType,
		Status:      booking.Status,
		Timezone:    booking.Timezone,
		Notes:       booking.Notes,
		CreatedAt:   booking.CreatedAt,
		UpdatedAt:   booking.UpdatedAt,
	}
}

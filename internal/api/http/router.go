package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/continu8/backoffice/internal/api/http/handlers"
	"github.com/continu8/backoffice/internal/auth"
	"github.com/continu8/backoffice/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Leads          *handlers.LeadsHandler
	Bookings       *handlers.BookingsHandler
	AuthMiddleware *auth.AuthMiddleware
	Gatherer       prometheus.Gatherer
	FilesRoot      string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}
	if cfg.FilesRoot != "" {
		app.Static("/files", cfg.FilesRoot, fiber.Static{Download: true})
	}

	bookings := app.Group("/bookings")
	bookings.Post("", cfg.Leads.SubmitBooking)
	bookings.Get("/slots", cfg.Bookings.Slots)

	requireAuth := cfg.AuthMiddleware.Handle
	id := requireUUIDParam("id")

	tickets := app.Group("/tickets", requireAuth)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/mine", cfg.Tickets.MyTickets)
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("/:id", id, cfg.Tickets.GetTicket)
	tickets.Patch("/:id", id, cfg.Tickets.UpdateTicket)
	tickets.Post("/:id/comments", id, cfg.Tickets.AddComment)
	tickets.Post("/:id/attachments", id, cfg.Tickets.UploadAttachment)

	leads := app.Group("/leads", requireAuth, auth.RequireStaff())
	leads.Get("", cfg.Leads.ListLeads)
	leads.Post("", cfg.Leads.CreateLead)
	leads.Get("/:id", id, cfg.Leads.GetLead)
	leads.Patch("/:id/status", id, cfg.Leads.UpdateStatus)
	leads.Patch("/:id/assignee", id, cfg.Leads.Assign)
	leads.Post("/:id/activities", id, cfg.Leads.AddActivity)
	leads.Post("/:id/convert", id, cfg.Leads.Convert)
	leads.Delete("/:id", auth.RequireRole(domain.RoleAdmin, domain.RoleSales), id, cfg.Leads.DeleteLead)

	staff := []fiber.Handler{requireAuth, auth.RequireStaff()}
	bookings.Post("/:id/cancel", append(staff, id, cfg.Bookings.Cancel)...)
	bookings.Post("/:id/reschedule", append(staff, id, cfg.Bookings.Reschedule)...)
	bookings.Post("/:id/complete", append(staff, id, cfg.Bookings.Complete)...)
}

package notify

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

var statusLabels = map[string]string{
	"open":           "Open",
	"in_progress":    "In Progress",
	"waiting_client": "Waiting on Client",
	"resolved":       "Resolved",
	"closed":         "Closed",
}

// StatusLabel renders a ticket status for people.
func StatusLabel(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return status
}

var funcs = template.FuncMap{
	"status": StatusLabel,
	"quote": func(s string) string {
		return "> " + strings.ReplaceAll(strings.TrimSpace(s), "\n", "\n> ")
	},
}

var templates = template.Must(template.New("email").Funcs(funcs).Parse(`
{{define "ticket_created_client"}}# Support ticket created

Hi {{.RecipientName}},

We received your request **{{.TicketNumber}}**: {{.Subject}}.

Priority: {{.Priority}}

{{quote .Description}}

[View your ticket]({{.TicketURL}})
{{end}}

{{define "ticket_created_team"}}# New support ticket {{.TicketNumber}}

**{{.Subject}}**

- Priority: {{.Priority}}
- Category: {{.Category}}
- Raised by: {{.CreatedBy}}
- SLA deadline: {{.SLADeadline}}

{{quote .Description}}

[Open in dashboard]({{.TicketURL}})
{{end}}

{{define "ticket_status"}}# Ticket status updated

Hi {{.RecipientName}},

The status of your ticket **{{.TicketNumber}}** ({{.Subject}}) is now **{{status .NewStatus}}**.

[View your ticket]({{.TicketURL}})
{{end}}

{{define "ticket_comment"}}# New comment on your ticket

Hi {{.RecipientName}},

{{.Author}} commented on **{{.TicketNumber}}** ({{.Subject}}):

{{quote .Content}}

[View your ticket]({{.TicketURL}})
{{end}}

{{define "booking_team"}}# New strategy call booking

**{{.CompanyName}}** ({{.ContactName}}, {{.Email}})

- Score: {{.Score}} ({{.Tier}})
- Meets ideal criteria: {{if .MeetsIdealCriteria}}yes{{else}}no{{end}}
{{- if .ScheduledAt}}
- Requested slot: {{.ScheduledAt}}
{{- end}}
{{end}}
`))

// TicketCreatedData fills ticket creation emails.
type TicketCreatedData struct {
	RecipientName string
	TicketNumber  string
	Subject       string
	Description   string
	Priority      string
	Category      string
	CreatedBy     string
	SLADeadline   string
	TicketURL     string
}

// TicketStatusData fills the status update email.
type TicketStatusData struct {
	RecipientName string
	TicketNumber  string
	Subject       string
	NewStatus     string
	TicketURL     string
}

// TicketCommentData fills the new comment email.
type TicketCommentData struct {
	RecipientName string
	TicketNumber  string
	Subject       string
	Author        string
	Content       string
	TicketURL     string
}

// BookingData fills the team booking email.
type BookingData struct {
	ContactName        string
	CompanyName        string
	Email              string
	Score              int
	Tier               string
	MeetsIdealCriteria bool
	ScheduledAt        string
}

// Template names.
const (
	TemplateTicketCreatedClient = "ticket_created_client"
	TemplateTicketCreatedTeam   = "ticket_created_team"
	TemplateTicketStatus        = "ticket_status"
	TemplateTicketComment       = "ticket_comment"
	TemplateBookingTeam         = "booking_team"
)

// Markdown executes the named email template.
func Markdown(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("execute %s template: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}
